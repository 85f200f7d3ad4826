package session

import (
	"context"
	"errors"
	"image"
	"reflect"
	"strings"
	"testing"
	"time"

	"screen-capture-ocr/src/ocr"
	"screen-capture-ocr/src/processor"
	"screen-capture-ocr/src/screenshot"
)

type recordingPresenter struct {
	texts  []string
	sums   []processor.Result
	errors []string
	infos  []string
}

func (p *recordingPresenter) ShowText(text string)            { p.texts = append(p.texts, text) }
func (p *recordingPresenter) ShowSum(r processor.Result)      { p.sums = append(p.sums, r) }
func (p *recordingPresenter) ShowError(title string, _ error) { p.errors = append(p.errors, title) }
func (p *recordingPresenter) ShowInfo(title, msg string)      { p.infos = append(p.infos, title+": "+msg) }

func (p *recordingPresenter) presented() int {
	return len(p.texts) + len(p.sums)
}

var testRegion = screenshot.Region{X1: 10, Y1: 10, X2: 110, Y2: 60}

func selectRegion(r screenshot.Region) RegionSelectorFunc {
	return func(ctx context.Context, mode ocr.Mode) (screenshot.Region, bool, error) {
		return r, false, nil
	}
}

func captureOK(region screenshot.Region) (image.Image, error) {
	return image.NewRGBA(image.Rect(0, 0, region.Width(), region.Height())), nil
}

func recognizeText(text string) RecognizeFunc {
	return func(ctx context.Context, img image.Image, mode ocr.Mode) (string, error) {
		return text, nil
	}
}

func TestExecuteSumEndToEnd(t *testing.T) {
	p := &recordingPresenter{}
	var captured screenshot.Region
	res, err := Execute(context.Background(), Options{
		Mode:         ocr.ModeCalculateSum,
		SelectRegion: selectRegion(testRegion),
		Capture: func(r screenshot.Region) (image.Image, error) {
			captured = r
			return captureOK(r)
		},
		Recognize: recognizeText("100\n200\n300"),
		Presenter: p,
	})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if captured != testRegion {
		t.Errorf("captured %v, want %v", captured, testRegion)
	}
	if len(p.sums) != 1 {
		t.Fatalf("expected one sum window, got %+v", p)
	}
	sum := p.sums[0]
	if got := sum.FormattedNumbers(); !reflect.DeepEqual(got, []string{"100.00", "200.00", "300.00"}) {
		t.Errorf("numbers = %q", got)
	}
	if sum.FormattedTotal() != "600.00" {
		t.Errorf("total = %q", sum.FormattedTotal())
	}
	if res.Processed.Total != 600 {
		t.Errorf("result total = %v", res.Processed.Total)
	}
}

func TestExecuteTextMode(t *testing.T) {
	p := &recordingPresenter{}
	var gotMode ocr.Mode = -1
	_, err := Execute(context.Background(), Options{
		Mode:         ocr.ModeExtractText,
		SelectRegion: selectRegion(testRegion),
		Capture:      captureOK,
		Recognize: func(ctx context.Context, img image.Image, mode ocr.Mode) (string, error) {
			gotMode = mode
			return "Hello\nWorld", nil
		},
		Presenter: p,
	})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if gotMode != ocr.ModeExtractText {
		t.Errorf("engine got mode %v", gotMode)
	}
	if !reflect.DeepEqual(p.texts, []string{"Hello\nWorld"}) {
		t.Errorf("texts = %q", p.texts)
	}
}

func TestExecuteNoNumbersIsInformational(t *testing.T) {
	p := &recordingPresenter{}
	_, err := Execute(context.Background(), Options{
		Mode:         ocr.ModeCalculateSum,
		SelectRegion: selectRegion(testRegion),
		Capture:      captureOK,
		Recognize:    recognizeText("nothing here"),
		Presenter:    p,
	})
	if !errors.Is(err, processor.ErrNoNumbers) {
		t.Fatalf("expected ErrNoNumbers, got %v", err)
	}
	var runErr *RunError
	if errors.As(err, &runErr) {
		t.Error("no numbers must not be a run error")
	}
	if len(p.infos) != 1 || !strings.HasPrefix(p.infos[0], "No Numbers: ") {
		t.Errorf("infos = %q", p.infos)
	}
	if p.presented() != 0 || len(p.errors) != 0 {
		t.Errorf("unexpected output %+v", p)
	}
}

func TestExecuteStageErrors(t *testing.T) {
	boom := errors.New("boom")
	huge := "1" + strings.Repeat("0", 400)
	tests := []struct {
		name  string
		opts  Options
		stage Stage
		title string
	}{
		{
			name: "select",
			opts: Options{
				SelectRegion: func(ctx context.Context, mode ocr.Mode) (screenshot.Region, bool, error) {
					return screenshot.Region{}, false, boom
				},
				Recognize: recognizeText("1"),
			},
			stage: StageSelect, title: "Selection Error",
		},
		{
			name: "capture",
			opts: Options{
				SelectRegion: selectRegion(testRegion),
				Capture:      func(screenshot.Region) (image.Image, error) { return nil, boom },
				Recognize:    recognizeText("1"),
			},
			stage: StageCapture, title: "Capture Error",
		},
		{
			name: "ocr",
			opts: Options{
				SelectRegion: selectRegion(testRegion),
				Capture:      captureOK,
				Recognize: func(ctx context.Context, img image.Image, mode ocr.Mode) (string, error) {
					return "", boom
				},
			},
			stage: StageOCR, title: "OCR Error",
		},
		{
			name: "calculate",
			opts: Options{
				Mode:         ocr.ModeCalculateSum,
				SelectRegion: selectRegion(testRegion),
				Capture:      captureOK,
				Recognize:    recognizeText("5 " + huge),
			},
			stage: StageCalculate, title: "Calculation Error",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &recordingPresenter{}
			tt.opts.Presenter = p
			_, err := Execute(context.Background(), tt.opts)
			var runErr *RunError
			if !errors.As(err, &runErr) {
				t.Fatalf("expected RunError, got %v", err)
			}
			if runErr.Stage != tt.stage {
				t.Errorf("stage = %s, want %s", runErr.Stage, tt.stage)
			}
			if !reflect.DeepEqual(p.errors, []string{tt.title}) {
				t.Errorf("error dialogs = %q", p.errors)
			}
			if p.presented() != 0 {
				t.Error("partial result presented")
			}
		})
	}
}

func TestExecuteCancelled(t *testing.T) {
	p := &recordingPresenter{}
	captured := false
	_, err := Execute(context.Background(), Options{
		SelectRegion: func(ctx context.Context, mode ocr.Mode) (screenshot.Region, bool, error) {
			return screenshot.Region{}, true, nil
		},
		Capture: func(r screenshot.Region) (image.Image, error) {
			captured = true
			return captureOK(r)
		},
		Recognize: recognizeText("1"),
		Presenter: p,
	})
	if !errors.Is(err, ErrSelectionCancelled) {
		t.Fatalf("expected ErrSelectionCancelled, got %v", err)
	}
	if captured {
		t.Error("cancelled selection must not capture")
	}
	if p.presented() != 0 || len(p.errors) != 0 || len(p.infos) != 0 {
		t.Errorf("cancel must be silent, got %+v", p)
	}
}

func TestExecuteDeadline(t *testing.T) {
	p := &recordingPresenter{}
	_, err := Execute(context.Background(), Options{
		Deadline:     20 * time.Millisecond,
		SelectRegion: selectRegion(testRegion),
		Capture:      captureOK,
		Recognize: func(ctx context.Context, img image.Image, mode ocr.Mode) (string, error) {
			<-ctx.Done()
			return "", ctx.Err()
		},
		Presenter: p,
	})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline error, got %v", err)
	}
	if !reflect.DeepEqual(p.errors, []string{"OCR Error"}) {
		t.Errorf("error dialogs = %q", p.errors)
	}
}

func TestExecuteHideRestore(t *testing.T) {
	var calls []string
	p := &recordingPresenter{}
	_, _ = Execute(context.Background(), Options{
		SelectRegion: func(ctx context.Context, mode ocr.Mode) (screenshot.Region, bool, error) {
			calls = append(calls, "select")
			return screenshot.Region{}, true, nil
		},
		Recognize:   recognizeText(""),
		Presenter:   p,
		HideMain:    func() { calls = append(calls, "hide") },
		RestoreMain: func() { calls = append(calls, "restore") },
	})
	if !reflect.DeepEqual(calls, []string{"hide", "select", "restore"}) {
		t.Errorf("calls = %v", calls)
	}
}

func TestExecuteSettleDelay(t *testing.T) {
	start := time.Now()
	_, err := Execute(context.Background(), Options{
		SettleDelay:  30 * time.Millisecond,
		SelectRegion: selectRegion(testRegion),
		Capture:      captureOK,
		Recognize:    recognizeText("x"),
		Presenter:    &recordingPresenter{},
	})
	if err != nil {
		t.Fatal(err)
	}
	if time.Since(start) < 30*time.Millisecond {
		t.Error("capture ran before the settle delay elapsed")
	}
}

func TestExecuteRequiresDependencies(t *testing.T) {
	if _, err := Execute(context.Background(), Options{}); err == nil {
		t.Error("expected error without SelectRegion")
	}
	if _, err := Execute(context.Background(), Options{SelectRegion: selectRegion(testRegion)}); err == nil {
		t.Error("expected error without Recognize")
	}
	if _, err := Execute(context.Background(), Options{SelectRegion: selectRegion(testRegion), Recognize: recognizeText("")}); err == nil {
		t.Error("expected error without Presenter")
	}
}
