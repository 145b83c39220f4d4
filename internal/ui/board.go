package ui

import (
	"image/color"
	"math"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/widget"

	"inkroom/internal/engine"
	"inkroom/internal/scene"
	"inkroom/internal/shape"
)

// Grid spacing in world units; constant regardless of zoom so the grid
// density tracks the canvas, not the screen.
const gridSpacing = 50

// Arrow head geometry, world units. Shared by preview and committed
// rendering so both draw the identical head.
const (
	arrowHeadLength = 12
	arrowHeadAngle  = math.Pi / 7
)

var (
	colorBackground = color.White
	colorGrid       = color.NRGBA{A: 13}
	colorInk        = color.Black
)

// BoardWidget is the drawing surface. All input lands here and is handed to
// the engine; painting reads the engine's scene and camera back out. Events
// that target other widgets (the toolbar) never reach it, so an overlay
// click cannot start a stroke.
type BoardWidget struct {
	widget.BaseWidget
	engine *engine.Engine
}

var _ fyne.Widget = (*BoardWidget)(nil)
var _ fyne.Draggable = (*BoardWidget)(nil)
var _ fyne.Scrollable = (*BoardWidget)(nil)
var _ desktop.Mouseable = (*BoardWidget)(nil)

func NewBoardWidget(e *engine.Engine) *BoardWidget {
	b := &BoardWidget{engine: e}
	e.OnRender = b.Refresh
	b.ExtendBaseWidget(b)
	return b
}

func (b *BoardWidget) Engine() *engine.Engine { return b.engine }

func (b *BoardWidget) SetTool(t engine.Tool) { b.engine.SetTool(t) }

func (b *BoardWidget) DeleteSelected() { b.engine.DeleteSelected() }

func (b *BoardWidget) MouseDown(ev *desktop.MouseEvent) {
	middle := ev.Button == desktop.MouseButtonTertiary
	b.engine.PointerDown(float64(ev.Position.X), float64(ev.Position.Y), middle)
	b.Refresh()
}

func (b *BoardWidget) MouseUp(ev *desktop.MouseEvent) {
	b.engine.PointerUp(float64(ev.Position.X), float64(ev.Position.Y))
	b.Refresh()
}

func (b *BoardWidget) Dragged(ev *fyne.DragEvent) {
	b.engine.PointerMove(float64(ev.Position.X), float64(ev.Position.Y))
}

// Commit happens in MouseUp, which the desktop driver also delivers at the
// end of a drag.
func (b *BoardWidget) DragEnd() {}

func (b *BoardWidget) Scrolled(ev *fyne.ScrollEvent) {
	dir := 1
	if ev.Scrolled.DY < 0 {
		dir = -1
	}
	b.engine.Wheel(float64(ev.Position.X), float64(ev.Position.Y), dir)
}

func (b *BoardWidget) CreateRenderer() fyne.WidgetRenderer {
	r := &boardRenderer{board: b}
	r.rebuild()
	return r
}

// boardRenderer repaints the whole viewport on every refresh: background,
// grid, committed shapes in scene order, then the live preview on top.
type boardRenderer struct {
	board   *BoardWidget
	objects []fyne.CanvasObject
}

func (r *boardRenderer) Objects() []fyne.CanvasObject { return r.objects }

func (r *boardRenderer) Refresh() {
	r.rebuild()
	canvas.Refresh(r.board)
}

func (r *boardRenderer) Layout(fyne.Size) {
	r.rebuild()
}

func (r *boardRenderer) MinSize() fyne.Size {
	return fyne.NewSize(300, 300)
}

func (r *boardRenderer) Destroy() {}

func (r *boardRenderer) rebuild() {
	size := r.board.Size()
	cam := r.board.engine.Camera()

	bg := canvas.NewRectangle(colorBackground)
	bg.Resize(size)
	objects := []fyne.CanvasObject{bg}
	objects = append(objects, gridLines(cam, size)...)

	for _, sh := range r.board.engine.Scene().All() {
		objects = append(objects, shapeObjects(sh, cam)...)
	}
	if pv, ok := r.board.engine.Preview(); ok {
		objects = append(objects, shapeObjects(pv, cam)...)
	}
	r.objects = objects
}

// gridLines lays a line every gridSpacing world units across the viewport.
func gridLines(cam *scene.Camera, size fyne.Size) []fyne.CanvasObject {
	var lines []fyne.CanvasObject
	step := gridSpacing * cam.Scale

	x := math.Mod(cam.OffsetX, step)
	if x < 0 {
		x += step
	}
	for ; x < float64(size.Width); x += step {
		l := canvas.NewLine(colorGrid)
		l.StrokeWidth = 1
		l.Position1 = fyne.NewPos(float32(x), 0)
		l.Position2 = fyne.NewPos(float32(x), size.Height)
		lines = append(lines, l)
	}

	y := math.Mod(cam.OffsetY, step)
	if y < 0 {
		y += step
	}
	for ; y < float64(size.Height); y += step {
		l := canvas.NewLine(colorGrid)
		l.StrokeWidth = 1
		l.Position1 = fyne.NewPos(0, float32(y))
		l.Position2 = fyne.NewPos(size.Width, float32(y))
		lines = append(lines, l)
	}
	return lines
}

// shapeObjects projects one shape through the camera into canvas objects.
func shapeObjects(sh shape.Shape, cam *scene.Camera) []fyne.CanvasObject {
	switch v := sh.(type) {
	case shape.Rect:
		return []fyne.CanvasObject{boxOutline(cam, v.X, v.Y, v.Width, v.Height)}
	case shape.Circle:
		c := canvas.NewCircle(color.Transparent)
		c.StrokeColor = colorInk
		c.StrokeWidth = 2
		x1, y1 := cam.WorldToScreen(v.CenterX-v.Radius, v.CenterY-v.Radius)
		x2, y2 := cam.WorldToScreen(v.CenterX+v.Radius, v.CenterY+v.Radius)
		c.Position1 = fyne.NewPos(float32(x1), float32(y1))
		c.Position2 = fyne.NewPos(float32(x2), float32(y2))
		return []fyne.CanvasObject{c}
	case shape.Triangle:
		apexX, apexY := v.X+v.Width/2, v.Y
		leftX, leftY := v.X, v.Y+v.Height
		rightX, rightY := v.X+v.Width, v.Y+v.Height
		return []fyne.CanvasObject{
			inkLine(cam, apexX, apexY, leftX, leftY),
			inkLine(cam, leftX, leftY, rightX, rightY),
			inkLine(cam, rightX, rightY, apexX, apexY),
		}
	case shape.Pencil:
		return []fyne.CanvasObject{inkLine(cam, v.StartX, v.StartY, v.EndX, v.EndY)}
	case shape.Arrow:
		return arrowObjects(cam, v)
	case shape.Freehand:
		if len(v.Points) < 2 {
			return nil
		}
		out := make([]fyne.CanvasObject, 0, len(v.Points)-1)
		for i := 1; i < len(v.Points); i++ {
			out = append(out, inkLine(cam, v.Points[i-1].X, v.Points[i-1].Y, v.Points[i].X, v.Points[i].Y))
		}
		return out
	}
	return nil
}

// arrowObjects draws the shaft plus a triangular head swept arrowHeadAngle
// to either side of the shaft direction.
func arrowObjects(cam *scene.Camera, a shape.Arrow) []fyne.CanvasObject {
	angle := math.Atan2(a.EndY-a.StartY, a.EndX-a.StartX)
	leftX := a.EndX - arrowHeadLength*math.Cos(angle-arrowHeadAngle)
	leftY := a.EndY - arrowHeadLength*math.Sin(angle-arrowHeadAngle)
	rightX := a.EndX - arrowHeadLength*math.Cos(angle+arrowHeadAngle)
	rightY := a.EndY - arrowHeadLength*math.Sin(angle+arrowHeadAngle)
	return []fyne.CanvasObject{
		inkLine(cam, a.StartX, a.StartY, a.EndX, a.EndY),
		inkLine(cam, a.EndX, a.EndY, leftX, leftY),
		inkLine(cam, a.EndX, a.EndY, rightX, rightY),
		inkLine(cam, leftX, leftY, rightX, rightY),
	}
}

func inkLine(cam *scene.Camera, x1, y1, x2, y2 float64) *canvas.Line {
	l := canvas.NewLine(colorInk)
	l.StrokeWidth = 2
	sx1, sy1 := cam.WorldToScreen(x1, y1)
	sx2, sy2 := cam.WorldToScreen(x2, y2)
	l.Position1 = fyne.NewPos(float32(sx1), float32(sy1))
	l.Position2 = fyne.NewPos(float32(sx2), float32(sy2))
	return l
}

// boxOutline handles rects dragged in any direction: the screen box is
// normalized even when width or height is negative.
func boxOutline(cam *scene.Camera, x, y, w, h float64) *canvas.Rectangle {
	rect := canvas.NewRectangle(color.Transparent)
	rect.StrokeColor = colorInk
	rect.StrokeWidth = 2

	x1, y1 := cam.WorldToScreen(x, y)
	x2, y2 := cam.WorldToScreen(x+w, y+h)
	if x2 < x1 {
		x1, x2 = x2, x1
	}
	if y2 < y1 {
		y1, y2 = y2, y1
	}
	rect.Move(fyne.NewPos(float32(x1), float32(y1)))
	rect.Resize(fyne.NewSize(float32(x2-x1), float32(y2-y1)))
	return rect
}
