package ui

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"
)

// RunApp opens the main window and blocks until it closes. Delete and
// Backspace remove the selected shape from the local scene only.
func RunApp(board *BoardWidget, status string, onExport func()) {
	a := app.New()
	w := a.NewWindow("inkroom")
	w.Resize(fyne.NewSize(1024, 768))

	toolbar := NewToolbar(board, onExport)
	statusBar := widget.NewLabel(status)
	w.SetContent(container.NewBorder(toolbar, statusBar, nil, nil, board))

	w.Canvas().SetOnTypedKey(func(ev *fyne.KeyEvent) {
		switch ev.Name {
		case fyne.KeyDelete, fyne.KeyBackspace:
			board.DeleteSelected()
		}
	})

	w.ShowAndRun()
}
