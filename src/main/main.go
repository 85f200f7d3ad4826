package main

import (
	"context"
	"fmt"
	"image"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"fyne.io/fyne/v2/app"
	"github.com/spf13/cobra"

	"screen-capture-ocr/src/clipboard"
	"screen-capture-ocr/src/config"
	"screen-capture-ocr/src/eventloop"
	"screen-capture-ocr/src/gui"
	"screen-capture-ocr/src/hotkey"
	"screen-capture-ocr/src/logutil"
	"screen-capture-ocr/src/ocr"
	"screen-capture-ocr/src/runtimeinit"
	"screen-capture-ocr/src/screenshot"
	"screen-capture-ocr/src/singleinstance"
)

const forwardTimeout = 3 * time.Second

type mainOptions struct {
	start      string
	apiKeyPath string
	engine     string
}

// forwarder is the part of singleinstance.Client used on a second launch.
type forwarder interface {
	Send(ctx context.Context, cmd singleinstance.Command) (bool, error)
}

func main() {
	opts := &mainOptions{}
	cmd := newRootCmd(opts)
	cmd.SetArgs(normalizeLegacyArgs(os.Args)[1:])
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd(opts *mainOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:          "screen-capture-ocr",
		Short:        "Select a screen area and extract its text or sum its numbers",
		SilenceUsage: true,
		Args:         cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			forward, err := commandFor(opts.start)
			if err != nil {
				return err
			}
			return run(opts, forward)
		},
	}
	cmd.Flags().StringVar(&opts.start, "start", "", "Start a selection right away: text or sum")
	cmd.Flags().StringVar(&opts.apiKeyPath, "api-key-path", "", "Path to the API key file for the vision engine")
	cmd.Flags().StringVar(&opts.engine, "engine", "", "OCR engine: tesseract, gosseract or vision")
	return cmd
}

// normalizeLegacyArgs maps Go-style single-dash long flags to the GNU form
// cobra expects.
func normalizeLegacyArgs(args []string) []string {
	out := make([]string, len(args))
	copy(out, args)
	for i := 1; i < len(out); i++ {
		for _, name := range []string{"start", "api-key-path", "engine"} {
			if out[i] == "-"+name || strings.HasPrefix(out[i], "-"+name+"=") {
				out[i] = "-" + out[i]
			}
		}
	}
	return out
}

// commandFor maps the --start value to the command forwarded to a resident.
func commandFor(start string) (singleinstance.Command, error) {
	switch strings.ToLower(strings.TrimSpace(start)) {
	case "":
		return singleinstance.CmdShow, nil
	case "text":
		return singleinstance.CmdText, nil
	case "sum":
		return singleinstance.CmdSum, nil
	}
	return "", fmt.Errorf("invalid --start %q: expected text or sum", start)
}

// forwardToResident reports whether a running instance answered. A resident
// that rejects cmd (for example while busy) still counts.
func forwardToResident(ctx context.Context, client forwarder, cmd singleinstance.Command) bool {
	ctx, cancel := context.WithTimeout(ctx, forwardTimeout)
	defer cancel()
	found, err := client.Send(ctx, cmd)
	if err != nil {
		log.Printf("forward %s: %v", cmd, err)
	}
	return found
}

// instancePorts reads the single-instance range before anything binds. Config
// errors are reported later by Bootstrap, so the defaults are used here.
func instancePorts(opts *mainOptions) singleinstance.PortRange {
	cfg, err := config.LoadWithOptions(config.LoadOptions{
		APIKeyPathOverride: opts.apiKeyPath,
		EngineOverride:     opts.engine,
	})
	if err != nil {
		return singleinstance.DefaultPortRange()
	}
	return singleinstance.NewPortRange(cfg.InstancePortStart, cfg.InstancePortEnd)
}

func run(opts *mainOptions, forward singleinstance.Command) error {
	// Ensure DPI awareness before creating any windows or querying metrics.
	enableDPIAwareness()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ports := instancePorts(opts)
	srv := singleinstance.NewServer(ports)
	if err := srv.Start(ctx); err != nil {
		log.Printf("single instance: %v (ports %s)", err, ports)
		if forwardToResident(ctx, singleinstance.NewClient(ports), forward) {
			log.Printf("forwarded %s to the running instance", forward)
			return nil
		}
		return fmt.Errorf("another instance holds port %d but did not answer", ports.Start)
	}
	defer srv.Close()
	log.Printf("single instance: listening on port %d", srv.Port())

	a := app.NewWithID(gui.AppID)

	rt, err := runtimeinit.Bootstrap(ctx, runtimeinit.Options{
		LoadOptions: config.LoadOptions{
			APIKeyPathOverride: opts.apiKeyPath,
			EngineOverride:     opts.engine,
		},
		SetupLogging: logutil.Setup,
	})
	if err != nil {
		log.Printf("startup failed: %v", err)
		gui.ShowFatal(a, "Error", err.Error())
		os.Exit(1)
	}
	cfg := rt.Config
	logMonitorConfiguration()

	if err := clipboard.Init(); err != nil {
		// Copy buttons report the failure; OCR keeps working.
		log.Printf("clipboard unavailable: %v", err)
	}

	var loop *eventloop.Loop
	g := gui.New(a, gui.Options{
		OnText:     func() { loop.Trigger(ocr.ModeExtractText) },
		OnSum:      func() { loop.Trigger(ocr.ModeCalculateSum) },
		HotkeyHint: gui.HotkeyHint(cfg.HotkeyText, cfg.HotkeySum),
	})

	loop = eventloop.New(cfg, eventloop.Options{
		Selector:  gui.NewOverlaySelector(a, gui.TintOrBlack(cfg.OverlayColor, cfg.OverlayAlpha)),
		Recognize: rt.Recognizer.Recognize,
		Capture:   captureRegion,
		Presenter: gui.NewPresenter(a, g.Window()),
		UI:        g,
		Server:    srv,
	})

	if err := loop.StartHotkeys(cfg.HotkeyText, cfg.HotkeySum); err != nil {
		log.Printf("hotkeys disabled: %v", err)
	}
	defer hotkey.Stop()

	switch forward {
	case singleinstance.CmdText:
		loop.Trigger(ocr.ModeExtractText)
	case singleinstance.CmdSum:
		loop.Trigger(ocr.ModeCalculateSum)
	}

	go func() {
		if err := loop.Run(ctx); err != nil && err != context.Canceled {
			log.Printf("event loop stopped: %v", err)
		}
	}()

	// Handle SIGINT/SIGTERM
	go func() {
		ch := make(chan os.Signal, 1)
		signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
		select {
		case <-ch:
			g.Quit()
		case <-ctx.Done():
		}
	}()

	log.Printf("%s ready (text %q, sum %q, deadline %ds)", gui.AppTitle, cfg.HotkeyText, cfg.HotkeySum, cfg.OCRDeadlineSec)
	g.Run()
	cancel()
	return nil
}

func captureRegion(region screenshot.Region) (image.Image, error) {
	img, err := screenshot.CaptureRegion(region)
	if err != nil {
		return nil, err
	}
	return img, nil
}
