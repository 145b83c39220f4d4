package ui

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/widget"

	"inkroom/internal/engine"
)

// NewToolbar builds the tool picker row. onExport, when non-nil, gets an
// extra button that snapshots the board to PDF.
func NewToolbar(board *BoardWidget, onExport func()) fyne.CanvasObject {
	tools := []struct {
		label string
		tool  engine.Tool
	}{
		{"Pencil", engine.ToolPencil},
		{"Rect", engine.ToolRect},
		{"Circle", engine.ToolCircle},
		{"Freehand", engine.ToolFreehand},
		{"Triangle", engine.ToolTriangle},
		{"Arrow", engine.ToolArrow},
		{"Hand", engine.ToolHand},
	}

	items := []fyne.CanvasObject{widget.NewLabel("Tool:")}
	for _, t := range tools {
		tool := t.tool
		items = append(items, widget.NewButton(t.label, func() {
			board.SetTool(tool)
		}))
	}
	if onExport != nil {
		items = append(items, widget.NewSeparator(), widget.NewButton("Export PDF", onExport))
	}
	items = append(items, layout.NewSpacer())
	return container.NewHBox(items...)
}
