package session

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log"
	"time"

	"screen-capture-ocr/src/logutil"
	"screen-capture-ocr/src/ocr"
	"screen-capture-ocr/src/processor"
	"screen-capture-ocr/src/screenshot"
)

var ErrSelectionCancelled = errors.New("selection cancelled")

const (
	defaultDeadline = 20 * time.Second

	noNumbersTitle   = "No Numbers"
	noNumbersMessage = "No numbers were found in the selected area."
)

// Stage names the pipeline step a recoverable error came from.
type Stage string

const (
	StageSelect    Stage = "select"
	StageCapture   Stage = "capture"
	StageOCR       Stage = "ocr"
	StageCalculate Stage = "calculate"
)

// RunError is a recoverable failure of one run. The loop keeps going.
type RunError struct {
	Stage Stage
	Err   error
}

func (e *RunError) Error() string { return fmt.Sprintf("%s: %v", e.Stage, e.Err) }
func (e *RunError) Unwrap() error { return e.Err }

// Title is the dialog title shown for the failure.
func (e *RunError) Title() string {
	switch e.Stage {
	case StageSelect:
		return "Selection Error"
	case StageCapture:
		return "Capture Error"
	case StageCalculate:
		return "Calculation Error"
	default:
		return "OCR Error"
	}
}

type RegionSelectorFunc func(ctx context.Context, mode ocr.Mode) (screenshot.Region, bool, error)

type CaptureFunc func(region screenshot.Region) (image.Image, error)

type RecognizeFunc func(ctx context.Context, img image.Image, mode ocr.Mode) (string, error)

// Presenter displays the outcome of a run. Implementations must be safe to
// call from a worker goroutine.
type Presenter interface {
	ShowText(text string)
	ShowSum(result processor.Result)
	ShowError(title string, err error)
	ShowInfo(title, message string)
}

type Options struct {
	Mode ocr.Mode
	// Deadline bounds the OCR call. Zero means 20s.
	Deadline time.Duration
	// SettleDelay is waited after the overlay is gone and before pixels are grabbed.
	SettleDelay  time.Duration
	SelectRegion RegionSelectorFunc
	Capture      CaptureFunc
	Recognize    RecognizeFunc
	Presenter    Presenter
	// HideMain and RestoreMain bracket the run; RestoreMain always runs.
	HideMain    func()
	RestoreMain func()
}

type Result struct {
	Region    screenshot.Region
	Text      string
	Processed processor.Result
}

// Execute performs one select → capture → recognize → process → present run.
// Nothing is presented unless every step succeeded.
func Execute(ctx context.Context, opts Options) (Result, error) {
	if opts.SelectRegion == nil {
		return Result{}, errors.New("SelectRegion is required")
	}
	if opts.Recognize == nil {
		return Result{}, errors.New("Recognize is required")
	}
	if opts.Presenter == nil {
		return Result{}, errors.New("Presenter is required")
	}
	capture := opts.Capture
	if capture == nil {
		capture = captureScreen
	}
	deadline := opts.Deadline
	if deadline <= 0 {
		deadline = defaultDeadline
	}

	if opts.HideMain != nil {
		opts.HideMain()
	}
	if opts.RestoreMain != nil {
		defer opts.RestoreMain()
	}

	region, cancelled, err := opts.SelectRegion(ctx, opts.Mode)
	if err != nil {
		return Result{}, fail(opts.Presenter, StageSelect, err)
	}
	if cancelled {
		log.Printf("session: selection cancelled")
		return Result{}, ErrSelectionCancelled
	}
	log.Printf("session: %s region %s", opts.Mode, region)

	if err := sleepCtx(ctx, opts.SettleDelay); err != nil {
		return Result{}, err
	}

	img, err := capture(region)
	if err != nil {
		return Result{}, fail(opts.Presenter, StageCapture, err)
	}

	jobCtx, cancel := context.WithTimeout(ctx, deadline)
	defer cancel()
	start := time.Now()
	text, err := opts.Recognize(jobCtx, img, opts.Mode)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			err = fmt.Errorf("no result within %s: %w", deadline, err)
		}
		return Result{}, fail(opts.Presenter, StageOCR, err)
	}
	log.Printf("session: recognized %d chars in %s: \"%s\"", len(text), time.Since(start).Round(time.Millisecond), logutil.Preview(text, 60))

	processed, err := processor.Process(opts.Mode, text)
	switch {
	case errors.Is(err, processor.ErrNoNumbers):
		opts.Presenter.ShowInfo(noNumbersTitle, noNumbersMessage)
		return Result{Region: region, Text: text}, err
	case err != nil:
		return Result{}, fail(opts.Presenter, StageCalculate, err)
	}

	if opts.Mode == ocr.ModeCalculateSum {
		opts.Presenter.ShowSum(processed)
	} else {
		opts.Presenter.ShowText(processed.Text)
	}
	return Result{Region: region, Text: text, Processed: processed}, nil
}

func fail(p Presenter, stage Stage, err error) error {
	runErr := &RunError{Stage: stage, Err: err}
	log.Printf("session: %v", runErr)
	p.ShowError(runErr.Title(), err)
	return runErr
}

func captureScreen(region screenshot.Region) (image.Image, error) {
	img, err := screenshot.CaptureRegion(region)
	if err != nil {
		return nil, err
	}
	return img, nil
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
