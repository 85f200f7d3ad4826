package gui

import (
	"fmt"
	"log"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"screen-capture-ocr/src/clipboard"
	"screen-capture-ocr/src/processor"
	"screen-capture-ocr/src/session"
)

const (
	textWindowTitle = "Extracted Text"
	sumWindowTitle  = "Calculation Result"
)

var (
	textWindowSize = fyne.NewSize(400, 300)
	sumWindowSize  = fyne.NewSize(300, 400)
)

// Presenter shows run results in their own windows and errors as dialogs on
// the main window. Every method may be called from any goroutine.
type Presenter struct {
	app    fyne.App
	parent fyne.Window
	copy   func(string) error
}

var _ session.Presenter = (*Presenter)(nil)

func NewPresenter(app fyne.App, parent fyne.Window) *Presenter {
	return &Presenter{app: app, parent: parent, copy: clipboard.Write}
}

func (p *Presenter) ShowText(text string) {
	fyne.Do(func() {
		w := p.app.NewWindow(textWindowTitle)
		w.SetContent(p.textView(text, w).root)
		w.Resize(textWindowSize)
		w.CenterOnScreen()
		w.Show()
		w.RequestFocus()
	})
}

func (p *Presenter) ShowSum(result processor.Result) {
	fyne.Do(func() {
		w := p.app.NewWindow(sumWindowTitle)
		w.SetContent(p.sumView(result, w).root)
		w.Resize(sumWindowSize)
		w.CenterOnScreen()
		w.Show()
		w.RequestFocus()
	})
}

func (p *Presenter) ShowError(title string, err error) {
	fyne.Do(func() {
		dialog.NewCustom(title, "OK", errorContent(err).root, p.parent).Show()
	})
}

func (p *Presenter) ShowInfo(title, message string) {
	fyne.Do(func() {
		dialog.ShowInformation(title, message, p.parent)
	})
}

type errorView struct {
	root fyne.CanvasObject
	icon *widget.Icon
	body *widget.Label
}

// errorContent lays out err next to the theme's error icon.
func errorContent(err error) errorView {
	icon := widget.NewIcon(theme.ErrorIcon())
	body := widget.NewLabel(err.Error())
	body.Wrapping = fyne.TextWrapWord
	return errorView{
		root: container.NewBorder(nil, nil, container.NewCenter(icon), nil, body),
		icon: icon,
		body: body,
	}
}

type textView struct {
	root    fyne.CanvasObject
	body    *widget.Label
	copyBtn *widget.Button
}

func (p *Presenter) textView(text string, w fyne.Window) textView {
	body := widget.NewLabel(text)
	body.Wrapping = fyne.TextWrapWord
	copyBtn := widget.NewButtonWithIcon("Copy to Clipboard", theme.ContentCopyIcon(), nil)
	copyBtn.OnTapped = func() { p.copyText(text, copyBtn, w) }
	return textView{
		root:    container.NewBorder(container.NewPadded(copyBtn), nil, nil, nil, container.NewVScroll(body)),
		body:    body,
		copyBtn: copyBtn,
	}
}

type sumView struct {
	root       fyne.CanvasObject
	numbers    *widget.Label
	total      *widget.Label
	copySum    *widget.Button
	copyNumber *widget.Button
}

func (p *Presenter) sumView(result processor.Result, w fyne.Window) sumView {
	numbers := widget.NewLabel(result.NumbersText())
	total := widget.NewLabelWithStyle(fmt.Sprintf("Total Sum: %s", result.FormattedTotal()),
		fyne.TextAlignCenter, fyne.TextStyle{Bold: true})

	copySum := widget.NewButtonWithIcon("Copy Sum to Clipboard", theme.ContentCopyIcon(), nil)
	copySum.OnTapped = func() { p.copyText(result.PlainTotal(), copySum, w) }
	copyNumbers := widget.NewButton("Copy Numbers to Clipboard", nil)
	copyNumbers.OnTapped = func() { p.copyText(result.NumbersText(), copyNumbers, w) }

	top := widget.NewLabelWithStyle("Numbers found:", fyne.TextAlignLeading, fyne.TextStyle{Bold: true})
	bottom := container.NewVBox(total, copySum, copyNumbers)
	return sumView{
		root:       container.NewBorder(top, container.NewPadded(bottom), nil, nil, container.NewVScroll(numbers)),
		numbers:    numbers,
		total:      total,
		copySum:    copySum,
		copyNumber: copyNumbers,
	}
}

func (p *Presenter) copyText(text string, btn *widget.Button, w fyne.Window) {
	if err := p.copy(text); err != nil {
		log.Printf("gui: clipboard write failed: %v", err)
		dialog.ShowError(fmt.Errorf("could not copy to clipboard: %w", err), w)
		return
	}
	btn.SetIcon(theme.ConfirmIcon())
}
