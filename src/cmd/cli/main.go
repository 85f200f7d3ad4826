package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"io"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/disintegration/imaging"
	"github.com/spf13/cobra"

	"screen-capture-ocr/src/config"
	"screen-capture-ocr/src/logutil"
	"screen-capture-ocr/src/ocr"
	"screen-capture-ocr/src/processor"
	"screen-capture-ocr/src/runtimeinit"
	"screen-capture-ocr/src/screenshot"
)

const (
	maxFileSizeMB = 10
	maxFileSize   = maxFileSizeMB * 1024 * 1024
)

var pngMagic = []byte{0x89, 'P', 'N', 'G', 0x0d, 0x0a, 0x1a, 0x0a}

type recognizeFunc func(ctx context.Context, img image.Image, mode ocr.Mode) (string, error)

type cliOptions struct {
	filePath   string
	mode       string
	rect       string
	engine     string
	jsonOutput bool
	verbose    bool
	apiKeyPath string
}

// tool holds the streams and the recognizer so runs can be driven in tests.
type tool struct {
	stdin     io.Reader
	stdout    io.Writer
	stderr    io.Writer
	recognize recognizeFunc
	deadline  time.Duration
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	return runWithArgs(normalizeLegacyArgs(os.Args))
}

func runWithArgs(args []string) error {
	if len(args) == 0 {
		args = []string{"ocr-tool"}
	}

	opts := &cliOptions{}
	cmd := newRootCmd(opts, nil)
	cmd.SetArgs(args[1:])
	return cmd.Execute()
}

// newRootCmd builds the command. A nil t bootstraps the configured engine.
func newRootCmd(opts *cliOptions, t *tool) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "ocr-tool",
		Short:         "Extract text or sum the numbers in a PNG image",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			mode, err := ocr.ParseMode(opts.mode)
			if err != nil {
				return err
			}
			if t == nil {
				t, err = bootstrap(cmd.Context(), *opts)
				if err != nil {
					return err
				}
			}
			return t.process(cmd.Context(), *opts, mode)
		},
	}

	cmd.Flags().StringVar(&opts.filePath, "file", "", "Path to PNG file (use '-' for stdin)")
	cmd.Flags().StringVar(&opts.mode, "mode", "text", "What to do with the image: text or sum")
	cmd.Flags().StringVar(&opts.rect, "rect", "", "Only read the area x1,y1,x2,y2 of the image")
	cmd.Flags().StringVar(&opts.engine, "engine", "", "OCR engine: tesseract, gosseract or vision")
	cmd.Flags().BoolVar(&opts.jsonOutput, "json", false, "Output results as JSON")
	cmd.Flags().BoolVarP(&opts.verbose, "verbose", "v", false, "Verbose output to stderr")
	cmd.Flags().StringVar(&opts.apiKeyPath, "api-key-path", "", "Path to API key file for the vision engine")
	_ = cmd.MarkFlagRequired("file")

	return cmd
}

func bootstrap(ctx context.Context, opts cliOptions) (*tool, error) {
	// Configure logging BEFORE any other operations.
	if !opts.verbose {
		log.SetOutput(io.Discard)
	} else {
		log.SetOutput(os.Stderr)
	}
	if ctx == nil {
		ctx = context.Background()
	}

	rt, err := runtimeinit.Bootstrap(ctx, runtimeinit.Options{
		LoadOptions: config.LoadOptions{
			APIKeyPathOverride: opts.apiKeyPath,
			EngineOverride:     opts.engine,
		},
	})
	if err != nil {
		return nil, err
	}
	return &tool{
		stdin:     os.Stdin,
		stdout:    os.Stdout,
		stderr:    os.Stderr,
		recognize: rt.Recognizer.Recognize,
		deadline:  time.Duration(rt.Config.OCRDeadlineSec) * time.Second,
	}, nil
}

func normalizeLegacyArgs(args []string) []string {
	if len(args) == 0 {
		return args
	}

	normalized := make([]string, len(args))
	copy(normalized, args)

	for i := 1; i < len(normalized); i++ {
		arg := normalized[i]
		for _, name := range []string{"file", "mode", "rect", "engine", "json", "verbose", "api-key-path"} {
			if arg == "-"+name || strings.HasPrefix(arg, "-"+name+"=") {
				normalized[i] = "-" + arg
				break
			}
		}
	}

	return normalized
}

func validatePNG(data []byte) error {
	if len(data) == 0 {
		return fmt.Errorf("input file is empty")
	}
	if len(data) > maxFileSize {
		return fmt.Errorf("input file exceeds maximum size of %d MB", maxFileSizeMB)
	}
	if len(data) < len(pngMagic) || !bytes.Equal(data[:len(pngMagic)], pngMagic) {
		return fmt.Errorf("input is not a valid PNG file (invalid magic number)")
	}
	return nil
}

// parseRect reads "x1,y1,x2,y2" in image pixels. Corners may be given in any order.
func parseRect(s string) (screenshot.Region, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return screenshot.Region{}, fmt.Errorf("invalid --rect %q: expected x1,y1,x2,y2", s)
	}
	var v [4]int
	for i, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return screenshot.Region{}, fmt.Errorf("invalid --rect %q: %w", s, err)
		}
		v[i] = n
	}
	return screenshot.NewRegion(screenshot.Point{X: v[0], Y: v[1]}, screenshot.Point{X: v[2], Y: v[3]}), nil
}

// cropTo cuts region out of img. Parts outside the image are dropped, so a
// region that misses the image yields an empty bitmap.
func cropTo(img image.Image, region screenshot.Region) image.Image {
	b := img.Bounds()
	rect := region.Rect().Add(b.Min).Intersect(b)
	if rect.Empty() {
		return image.NewNRGBA(image.Rectangle{})
	}
	return imaging.Crop(img, rect)
}

func (t *tool) readInput(filePath string, verbose bool) ([]byte, error) {
	if filePath == "-" {
		t.verbosef(verbose, "Reading image from stdin")
		data, err := io.ReadAll(io.LimitReader(t.stdin, maxFileSize+1))
		if err != nil {
			return nil, fmt.Errorf("failed to read from stdin: %w", err)
		}
		return data, nil
	}
	t.verbosef(verbose, "Reading image from file: %s", filePath)
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", filePath, err)
	}
	return data, nil
}

func (t *tool) process(ctx context.Context, opts cliOptions, mode ocr.Mode) error {
	if ctx == nil {
		ctx = context.Background()
	}
	data, err := t.readInput(opts.filePath, opts.verbose)
	if err != nil {
		return err
	}
	if err := validatePNG(data); err != nil {
		return err
	}
	t.verbosef(opts.verbose, "Read %d bytes, PNG validation passed", len(data))

	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("failed to decode PNG: %w", err)
	}
	if opts.rect != "" {
		region, err := parseRect(opts.rect)
		if err != nil {
			return err
		}
		img = cropTo(img, region)
		t.verbosef(opts.verbose, "Cropped to %v", img.Bounds())
	}

	if t.deadline > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, t.deadline)
		defer cancel()
	}

	start := time.Now()
	text, err := t.recognize(ctx, img, mode)
	elapsed := time.Since(start)
	if err != nil {
		t.verbosef(opts.verbose, "OCR failed after %v: %v", elapsed, err)
		return fmt.Errorf("OCR failed: %w", err)
	}
	t.verbosef(opts.verbose, "OCR completed in %v: %s", elapsed, logutil.Preview(text, 80))

	result, err := processor.Process(mode, text)
	noNumbers := errors.Is(err, processor.ErrNoNumbers)
	if err != nil && !noNumbers {
		return err
	}
	result.Text = text
	return t.output(result, mode, opts.filePath, elapsed, opts.jsonOutput, noNumbers)
}

type OCRResult struct {
	Text           string    `json:"text"`
	Mode           string    `json:"mode"`
	Numbers        []float64 `json:"numbers,omitempty"`
	Total          *float64  `json:"total,omitempty"`
	FormattedTotal string    `json:"formatted_total,omitempty"`
	Message        string    `json:"message,omitempty"`
	Source         string    `json:"source"`
	Timestamp      string    `json:"timestamp"`
	Duration       float64   `json:"duration_seconds"`
	CharCount      int       `json:"character_count"`
}

const noNumbersMessage = "No numbers were found in the selected area."

func (t *tool) output(result processor.Result, mode ocr.Mode, source string, elapsed time.Duration, jsonOutput, noNumbers bool) error {
	if jsonOutput {
		out := OCRResult{
			Text:      result.Text,
			Mode:      mode.String(),
			Source:    source,
			Timestamp: time.Now().UTC().Format(time.RFC3339),
			Duration:  elapsed.Seconds(),
			CharCount: len(result.Text),
		}
		if mode == ocr.ModeCalculateSum {
			if noNumbers {
				out.Message = noNumbersMessage
			} else {
				total := result.Total
				out.Numbers = result.Numbers
				out.Total = &total
				out.FormattedTotal = result.FormattedTotal()
			}
		}

		encoder := json.NewEncoder(t.stdout)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(out); err != nil {
			return fmt.Errorf("failed to encode JSON output: %w", err)
		}
		return nil
	}

	switch {
	case mode != ocr.ModeCalculateSum:
		fmt.Fprint(t.stdout, result.Text)
	case noNumbers:
		fmt.Fprintln(t.stderr, noNumbersMessage)
	default:
		fmt.Fprintln(t.stdout, result.NumbersText())
		fmt.Fprintf(t.stdout, "Total Sum: %s\n", result.FormattedTotal())
	}
	return nil
}

func (t *tool) verbosef(verbose bool, format string, args ...any) {
	if verbose {
		fmt.Fprintf(t.stderr, "[verbose] "+format+"\n", args...)
	}
}
