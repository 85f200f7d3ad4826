package ocr

import (
	"context"
	"errors"
	"fmt"
	"image"
	"strings"
)

// Mode selects the OCR configuration and the result processor for one run.
type Mode int

const (
	ModeExtractText Mode = iota
	ModeCalculateSum
)

func (m Mode) String() string {
	switch m {
	case ModeExtractText:
		return "extract_text"
	case ModeCalculateSum:
		return "calculate_sum"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// ParseMode accepts the names used by the CLI and the single-instance protocol.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "text", "extract", "extract_text":
		return ModeExtractText, nil
	case "sum", "calculate", "calculate_sum":
		return ModeCalculateSum, nil
	}
	return 0, fmt.Errorf("unknown mode %q (want text or sum)", s)
}

// SumWhitelist biases recognition toward numeric tokens.
const SumWhitelist = "0123456789.-"

// PSMSingleBlock is Tesseract's "assume a single uniform block of text".
const PSMSingleBlock = 6

// Config is the engine configuration derived from a Mode.
type Config struct {
	// PageSegMode is 0 when the engine default applies.
	PageSegMode int
	Whitelist   string
}

// ConfigFor returns the recognition configuration for mode.
func ConfigFor(mode Mode) Config {
	if mode == ModeCalculateSum {
		return Config{PageSegMode: PSMSingleBlock, Whitelist: SumWhitelist}
	}
	return Config{}
}

// ErrBindingUnavailable is returned when the in-process Tesseract binding was
// not compiled in.
var ErrBindingUnavailable = errors.New("tesseract binding not compiled in (build with -tags gosseract)")

// Engine turns a bitmap into text.
type Engine interface {
	Name() string
	Recognize(ctx context.Context, img image.Image, mode Mode) (string, error)
}

// Recognizer wraps an Engine with the shared behaviour every engine gets:
// empty images short-circuit and sum captures are optionally preprocessed.
type Recognizer struct {
	engine     Engine
	preprocess bool
}

func NewRecognizer(engine Engine, preprocess bool) *Recognizer {
	return &Recognizer{engine: engine, preprocess: preprocess}
}

// Engine returns the wrapped engine.
func (r *Recognizer) Engine() Engine { return r.engine }

// Recognize runs OCR on img using the configuration for mode.
func (r *Recognizer) Recognize(ctx context.Context, img image.Image, mode Mode) (string, error) {
	if img == nil || img.Bounds().Empty() {
		return "", nil
	}
	if r.preprocess && mode == ModeCalculateSum {
		img = Preprocess(img)
	}
	text, err := r.engine.Recognize(ctx, img, mode)
	if err != nil {
		return "", fmt.Errorf("%s: %w", r.engine.Name(), err)
	}
	return text, nil
}

type recognizeResult struct {
	text string
	err  error
}

// runWithContext runs a blocking recognition call and returns early when ctx
// ends. The call keeps running in the background in that case.
func runWithContext(ctx context.Context, fn func() (string, error)) (string, error) {
	if ctx.Done() == nil {
		return fn()
	}
	resCh := make(chan recognizeResult, 1)
	go func() {
		var r recognizeResult
		defer func() {
			if p := recover(); p != nil {
				r.err = fmt.Errorf("engine panicked: %v", p)
			}
			resCh <- r
		}()
		r.text, r.err = fn()
	}()
	select {
	case r := <-resCh:
		return r.text, r.err
	case <-ctx.Done():
		return "", ctx.Err()
	}
}
