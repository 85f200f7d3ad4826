package gui

import "fyne.io/fyne/v2"

// appIconSVG is the tray and window icon: a dashed selection frame with a
// text cursor inside.
const appIconSVG = `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 16 16" width="16" height="16">
  <rect x="1.5" y="2.5" width="13" height="11" fill="none" stroke="#0078d4" stroke-width="1.5" stroke-dasharray="2,1"/>
  <line x1="5" y1="6" x2="11" y2="6" stroke="#333333" stroke-width="1.2" stroke-linecap="round"/>
  <line x1="5" y1="8.5" x2="9.5" y2="8.5" stroke="#333333" stroke-width="1.2" stroke-linecap="round"/>
  <line x1="5" y1="11" x2="10.5" y2="11" stroke="#333333" stroke-width="1.2" stroke-linecap="round"/>
  <line x1="12.5" y1="7" x2="12.5" y2="12" stroke="#d40000" stroke-width="1"/>
</svg>`

// AppIcon is shared by the main window and the system tray.
var AppIcon = fyne.NewStaticResource("screen-capture-ocr.svg", []byte(appIconSVG))
