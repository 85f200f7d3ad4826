package gui

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"
)

// ShowFatal shows a startup failure and blocks until the user dismisses it.
// The caller exits afterwards. Must run on the main goroutine before any
// other window is shown.
func ShowFatal(a fyne.App, title, message string) {
	w := a.NewWindow(title)
	w.SetIcon(AppIcon)
	w.SetContent(fatalContent(message, a.Quit))
	w.SetOnClosed(a.Quit)
	w.Resize(fyne.NewSize(420, 160))
	w.CenterOnScreen()
	w.ShowAndRun()
}

func fatalContent(message string, quit func()) fyne.CanvasObject {
	body := widget.NewLabel(message)
	body.Wrapping = fyne.TextWrapWord
	return container.NewBorder(nil, container.NewCenter(widget.NewButton("Quit", quit)), nil, nil, body)
}
