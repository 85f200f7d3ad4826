package eventloop

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log"
	"time"

	"screen-capture-ocr/src/config"
	"screen-capture-ocr/src/hotkey"
	"screen-capture-ocr/src/ocr"
	"screen-capture-ocr/src/overlay"
	"screen-capture-ocr/src/processor"
	"screen-capture-ocr/src/session"
	"screen-capture-ocr/src/singleinstance"
	"screen-capture-ocr/src/worker"
)

const (
	StatusReady      = "OCR Ready"
	StatusSelecting  = "Select an area..."
	StatusProcessing = "Processing..."
	StatusBusy       = "Busy, please retry"
)

// UI is the part of the main window the loop drives. Calls come from the loop
// and worker goroutines; implementations marshal onto their UI thread.
type UI interface {
	SetStatus(status string)
	ShowMain()
	HideMain()
	RestoreMain()
}

type Options struct {
	Selector  overlay.Selector
	Recognize session.RecognizeFunc
	Capture   session.CaptureFunc
	Presenter session.Presenter
	UI        UI
	// Server is an already started single-instance server, or nil.
	Server singleinstance.Server
}

// Loop is the single-threaded coordinator for button, tray, hotkey and
// forwarded triggers. It owns the busy flag; the run itself happens on the pool.
type Loop struct {
	opts        Options
	pool        *worker.Pool
	busy        bool
	triggers    chan ocr.Mode
	done        chan error
	deadline    time.Duration
	settleDelay time.Duration
}

// New creates a new event loop with defaults based on config.
// If cfg is nil or cfg.OCRDeadlineSec <= 0, a 20s deadline is used.
func New(cfg *config.Config, opts Options) *Loop {
	deadlineSec := 20
	settleMs := 150
	if cfg != nil {
		if cfg.OCRDeadlineSec > 0 {
			deadlineSec = cfg.OCRDeadlineSec
		}
		settleMs = cfg.OverlaySettleMs
	}
	return &Loop{
		opts:        opts,
		pool:        worker.New(1),
		triggers:    make(chan ocr.Mode, 4),
		done:        make(chan error, 1),
		deadline:    time.Duration(deadlineSec) * time.Second,
		settleDelay: time.Duration(settleMs) * time.Millisecond,
	}
}

// Trigger asks for a run in mode. Safe from any goroutine; never blocks.
func (l *Loop) Trigger(mode ocr.Mode) {
	select {
	case l.triggers <- mode:
	default:
		log.Printf("eventloop: trigger queue full, dropping %s", mode)
	}
}

// StartHotkeys registers the text and sum combinations. Empty combos are skipped.
func (l *Loop) StartHotkeys(textCombo, sumCombo string) error {
	if textCombo == "" && sumCombo == "" {
		return nil
	}
	return hotkey.Listen(
		hotkey.Binding{Combo: textCombo, Callback: func() { l.Trigger(ocr.ModeExtractText) }},
		hotkey.Binding{Combo: sumCombo, Callback: func() { l.Trigger(ocr.ModeCalculateSum) }},
	)
}

// Deadline returns the configured OCR deadline for this loop.
func (l *Loop) Deadline() time.Duration { return l.deadline }

// Run processes triggers until ctx is cancelled.
func (l *Loop) Run(ctx context.Context) error {
	defer l.pool.Close()

	var commands <-chan singleinstance.Command
	if l.opts.Server != nil {
		ch := make(chan singleinstance.Command, 4)
		commands = ch
		go l.forwardCommands(ctx, ch)
	}

	l.setStatus(StatusReady)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case mode := <-l.triggers:
			l.start(ctx, mode)
		case cmd, ok := <-commands:
			if !ok {
				commands = nil
				continue
			}
			l.handleCommand(ctx, cmd)
		case err := <-l.done:
			l.finish(err)
		}
	}
}

// forwardCommands feeds server commands into ch until ctx ends or the server
// fails. It never blocks on ch once ctx is done.
func (l *Loop) forwardCommands(ctx context.Context, ch chan<- singleinstance.Command) {
	defer close(ch)
	for {
		cmd, err := l.opts.Server.Next(ctx)
		if err != nil {
			return
		}
		select {
		case ch <- cmd:
		case <-ctx.Done():
			return
		}
	}
}

func (l *Loop) handleCommand(ctx context.Context, cmd singleinstance.Command) {
	log.Printf("eventloop: forwarded command %s", cmd)
	switch cmd {
	case singleinstance.CmdShow:
		if l.opts.UI != nil {
			l.opts.UI.ShowMain()
		}
	case singleinstance.CmdText:
		l.start(ctx, ocr.ModeExtractText)
	case singleinstance.CmdSum:
		l.start(ctx, ocr.ModeCalculateSum)
	}
}

func (l *Loop) start(ctx context.Context, mode ocr.Mode) {
	if l.busy {
		log.Printf("eventloop: busy, rejecting %s", mode)
		l.setStatus(StatusBusy)
		return
	}
	l.busy = true
	l.setStatus(StatusSelecting)

	opts := session.Options{
		Mode:         mode,
		Deadline:     l.deadline,
		SettleDelay:  l.settleDelay,
		SelectRegion: l.opts.Selector.Select,
		Capture:      l.opts.Capture,
		Recognize:    l.recognize,
		Presenter:    l.opts.Presenter,
	}
	if ui := l.opts.UI; ui != nil {
		opts.HideMain = ui.HideMain
		opts.RestoreMain = ui.RestoreMain
	}

	submitted := l.pool.Submit(ctx, func(ctx context.Context) {
		var err error
		// done must be signalled even if the run panics, or busy never clears.
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("run panicked: %v", r)
			}
			l.done <- err
		}()
		_, err = session.Execute(ctx, opts)
	})
	if !submitted {
		l.busy = false
		l.setStatus(StatusBusy)
	}
}

func (l *Loop) recognize(ctx context.Context, img image.Image, mode ocr.Mode) (string, error) {
	l.setStatus(StatusProcessing)
	return l.opts.Recognize(ctx, img, mode)
}

func (l *Loop) finish(err error) {
	l.busy = false
	var runErr *session.RunError
	switch {
	case err == nil:
		log.Printf("eventloop: run completed")
	case errors.Is(err, session.ErrSelectionCancelled):
		log.Printf("eventloop: run cancelled")
	case errors.Is(err, processor.ErrNoNumbers):
		log.Printf("eventloop: run found no numbers")
	case errors.As(err, &runErr):
		log.Printf("eventloop: run failed at %s: %v", runErr.Stage, runErr.Err)
	default:
		log.Printf("eventloop: run ended: %v", err)
	}
	l.setStatus(StatusReady)
}

func (l *Loop) setStatus(s string) {
	if l.opts.UI != nil {
		l.opts.UI.SetStatus(s)
	}
}
