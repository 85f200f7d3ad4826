package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/spf13/cobra"

	"screen-capture-ocr/src/config"
	"screen-capture-ocr/src/singleinstance"
)

type stressOptions struct {
	n        int
	command  string
	deadline time.Duration

	// Zero takes the bound from SINGLEINSTANCE_PORT_START/_END.
	portStart int
	portEnd   int
}

type counts struct {
	ok, busy, none, err int32
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	opts := &stressOptions{}
	cmd := newRootCmd(opts)
	return cmd.Execute()
}

func newRootCmd(opts *stressOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "stress-forward",
		Short:         "Stress test command forwarding to the running instance",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := singleinstance.ParseCommand(opts.command)
			if err != nil {
				return err
			}
			res := runWithOptions(singleinstance.NewClient(portRange(*opts)), c, *opts)
			report(cmd.OutOrStdout(), *opts, res)
			return nil
		},
	}

	cmd.Flags().IntVar(&opts.n, "n", 50, "number of concurrent clients")
	cmd.Flags().StringVar(&opts.command, "command", "show", "show|text|sum: command forwarded by every client")
	cmd.Flags().DurationVar(&opts.deadline, "deadline", 5*time.Second, "per-client timeout")
	cmd.Flags().IntVar(&opts.portStart, "port-start", 0, "first port to scan (default from config)")
	cmd.Flags().IntVar(&opts.portEnd, "port-end", 0, "last port to scan (default from config)")

	return cmd
}

// portRange resolves the ports to scan: flags first, then the loaded config.
func portRange(opts stressOptions) singleinstance.PortRange {
	start, end := opts.portStart, opts.portEnd
	if cfg, err := config.Load(); err == nil {
		if start == 0 {
			start = cfg.InstancePortStart
		}
		if end == 0 {
			end = cfg.InstancePortEnd
		}
	}
	return singleinstance.NewPortRange(start, end)
}

// runWithOptions fires opts.n concurrent sends of c and tallies the replies.
func runWithOptions(client singleinstance.Client, c singleinstance.Command, opts stressOptions) *counts {
	var wg sync.WaitGroup
	res := &counts{}
	for i := 0; i < opts.n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ctx, cancel := context.WithTimeout(context.Background(), opts.deadline)
			defer cancel()
			found, err := client.Send(ctx, c)
			switch {
			case err != nil && strings.Contains(err.Error(), "BUSY"):
				atomic.AddInt32(&res.busy, 1)
			case err != nil:
				atomic.AddInt32(&res.err, 1)
			case found:
				atomic.AddInt32(&res.ok, 1)
			default:
				atomic.AddInt32(&res.none, 1)
			}
		}()
	}
	wg.Wait()
	return res
}

func report(w io.Writer, opts stressOptions, res *counts) {
	fmt.Fprintf(w, "launched=%d ok=%d busy=%d none=%d err=%d\n", opts.n, res.ok, res.busy, res.none, res.err)
}
