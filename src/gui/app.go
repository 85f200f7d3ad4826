package gui

import (
	"fmt"
	"log"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/widget"
)

const (
	AppID    = "io.github.screen-capture-ocr"
	AppTitle = "Screen Capture OCR"

	initialStatus     = "OCR Ready"
	startDrawingLabel = "Start Drawing"
	calculateSumLabel = "Calculate Sum"
)

var mainWindowSize = fyne.NewSize(300, 200)

type Options struct {
	// OnText and OnSum are invoked on the UI thread and must only hand off.
	OnText func()
	OnSum  func()
	// HotkeyHint is shown under the buttons, e.g. "Ctrl+Alt+T / Ctrl+Alt+S".
	HotkeyHint string
}

// App is the main window with its two actions, the status line and the tray
// menu. It satisfies eventloop.UI.
type App struct {
	fyne    fyne.App
	main    fyne.Window
	status  *widget.Label
	textBtn *widget.Button
	sumBtn  *widget.Button
	tray    bool
}

// New builds the main window. When a system tray exists, closing the window
// only hides it and quitting goes through the tray menu.
func New(a fyne.App, opts Options) *App {
	g := &App{fyne: a, main: a.NewWindow(AppTitle)}
	g.main.SetIcon(AppIcon)

	g.textBtn = widget.NewButton(startDrawingLabel, opts.OnText)
	g.sumBtn = widget.NewButton(calculateSumLabel, opts.OnSum)
	g.status = widget.NewLabelWithStyle(initialStatus, fyne.TextAlignCenter, fyne.TextStyle{Italic: true})

	rows := []fyne.CanvasObject{g.textBtn, g.sumBtn, g.status}
	if opts.HotkeyHint != "" {
		rows = append(rows, widget.NewLabelWithStyle(opts.HotkeyHint, fyne.TextAlignCenter, fyne.TextStyle{Monospace: true}))
	}
	g.main.SetContent(container.NewPadded(container.NewVBox(rows...)))
	g.main.Resize(mainWindowSize)
	g.main.CenterOnScreen()
	g.main.SetMaster()

	g.tray = g.installTray(opts)
	if g.tray {
		// With a tray the window only hides; Quit lives in the tray menu.
		g.main.SetCloseIntercept(g.main.Hide)
	}
	return g
}

func (g *App) installTray(opts Options) bool {
	desk, ok := g.fyne.(desktop.App)
	if !ok {
		return false
	}
	menu := fyne.NewMenu(AppTitle,
		fyne.NewMenuItem("Show", func() {
			g.main.Show()
			g.main.RequestFocus()
		}),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem(startDrawingLabel, opts.OnText),
		fyne.NewMenuItem(calculateSumLabel, opts.OnSum),
	)
	desk.SetSystemTrayMenu(menu)
	desk.SetSystemTrayIcon(AppIcon)
	log.Printf("gui: system tray installed")
	return true
}

func (g *App) Window() fyne.Window { return g.main }

func (g *App) SetStatus(status string) {
	fyne.Do(func() { g.status.SetText(status) })
}

func (g *App) ShowMain() {
	fyne.Do(func() {
		g.main.Show()
		g.main.RequestFocus()
	})
}

// HideMain waits for the window to be gone so it is not in the frozen screen.
func (g *App) HideMain() {
	fyne.DoAndWait(g.main.Hide)
}

func (g *App) RestoreMain() {
	fyne.Do(g.main.Show)
}

// Run shows the main window and blocks on the UI loop. It must be called from
// the main goroutine.
func (g *App) Run() {
	g.main.ShowAndRun()
}

// Quit stops the UI loop from any goroutine.
func (g *App) Quit() {
	fyne.Do(g.fyne.Quit)
}

// HotkeyHint formats the configured combinations for the main window.
func HotkeyHint(text, sum string) string {
	switch {
	case text != "" && sum != "":
		return fmt.Sprintf("Text: %s   Sum: %s", text, sum)
	case text != "":
		return fmt.Sprintf("Text: %s", text)
	case sum != "":
		return fmt.Sprintf("Sum: %s", sum)
	}
	return ""
}
