// Package engine is the pointer/keyboard state machine behind the board
// widget. It owns the active tool, the camera and the scene, and turns drag
// gestures into committed shapes. It has no UI dependency so the whole
// interaction lifecycle runs headless in tests.
package engine

import (
	"inkroom/internal/scene"
	"inkroom/internal/shape"
)

// Tool selects what a drag gesture produces. Hand never produces a shape,
// it only pans.
type Tool string

const (
	ToolPencil   Tool = "pencil"
	ToolRect     Tool = "rect"
	ToolCircle   Tool = "circle"
	ToolFreehand Tool = "freehand"
	ToolTriangle Tool = "triangle"
	ToolArrow    Tool = "arrow"
	ToolHand     Tool = "hand"
)

type state int

const (
	stateIdle state = iota
	statePanning
	stateDrawing
)

// Engine drives the scene and camera from pointer input.
//
// OnCommit fires once per finalized shape, after it has been appended to the
// scene; the sync client hangs off it. OnRender fires whenever the picture
// changed and the widget should repaint.
type Engine struct {
	OnCommit func(shape.Shape)
	OnRender func()

	sc  *scene.Scene
	cam *scene.Camera

	tool Tool
	st   state

	// anchor of the current drag, world coordinates
	anchorX, anchorY float64
	// current pointer, world coordinates, valid while drawing
	curX, curY float64
	// last pointer, screen coordinates, valid while panning
	lastX, lastY float64

	freehand []shape.Point

	selected int
}

func New(sc *scene.Scene, cam *scene.Camera) *Engine {
	return &Engine{sc: sc, cam: cam, tool: ToolPencil, selected: -1}
}

func (e *Engine) Scene() *scene.Scene   { return e.sc }
func (e *Engine) Camera() *scene.Camera { return e.cam }
func (e *Engine) Tool() Tool            { return e.tool }

func (e *Engine) SetTool(t Tool) { e.tool = t }

// Selected returns the index of the currently selected shape, or -1.
func (e *Engine) Selected() int { return e.selected }

// PointerDown starts a pan (hand tool or middle button) or a drag for the
// active drawing tool. Every press also re-runs selection against the scene,
// independent of which gesture starts.
func (e *Engine) PointerDown(sx, sy float64, middle bool) {
	wx, wy := e.cam.ScreenToWorld(sx, sy)
	if i, ok := e.sc.HitTest(wx, wy); ok {
		e.selected = i
	} else {
		e.selected = -1
	}

	if e.tool == ToolHand || middle {
		e.st = statePanning
		e.lastX, e.lastY = sx, sy
		return
	}

	e.st = stateDrawing
	e.anchorX, e.anchorY = wx, wy
	e.curX, e.curY = wx, wy
	if e.tool == ToolFreehand {
		e.freehand = []shape.Point{{X: wx, Y: wy}}
	}
}

// PointerMove advances a pan or extends the in-progress drag and requests a
// repaint. Idle moves are ignored.
func (e *Engine) PointerMove(sx, sy float64) {
	switch e.st {
	case statePanning:
		e.cam.Pan(sx-e.lastX, sy-e.lastY)
		e.lastX, e.lastY = sx, sy
		e.render()
	case stateDrawing:
		wx, wy := e.cam.ScreenToWorld(sx, sy)
		e.curX, e.curY = wx, wy
		if e.tool == ToolFreehand {
			e.freehand = append(e.freehand, shape.Point{X: wx, Y: wy})
		}
		e.render()
	}
}

// PointerUp ends the gesture. A finished drawing drag commits one shape:
// appended to the scene, handed to OnCommit, repainted. A drag that produced
// no shape (hand tool) commits nothing.
func (e *Engine) PointerUp(sx, sy float64) {
	if e.st == statePanning {
		e.st = stateIdle
		return
	}
	if e.st != stateDrawing {
		return
	}
	e.st = stateIdle

	wx, wy := e.cam.ScreenToWorld(sx, sy)
	sh := e.commitGeometry(wx, wy)
	e.freehand = nil
	if sh == nil {
		return
	}
	e.sc.Append(sh)
	e.render()
	if e.OnCommit != nil {
		e.OnCommit(sh)
	}
}

// Preview returns the shape the current drag would commit, for the renderer
// to draw live. It is never appended to the scene.
func (e *Engine) Preview() (shape.Shape, bool) {
	if e.st != stateDrawing {
		return nil, false
	}
	sh := e.commitGeometry(e.curX, e.curY)
	if sh == nil {
		return nil, false
	}
	return sh, true
}

// commitGeometry builds the active tool's shape from the drag anchor to the
// world point (wx, wy). Preview and commit share it so they can never
// disagree.
func (e *Engine) commitGeometry(wx, wy float64) shape.Shape {
	width := wx - e.anchorX
	height := wy - e.anchorY

	switch e.tool {
	case ToolRect:
		return shape.Rect{X: e.anchorX, Y: e.anchorY, Width: width, Height: height}
	case ToolCircle:
		r := max(abs(width), abs(height)) / 2
		return shape.Circle{CenterX: e.anchorX + width/2, CenterY: e.anchorY + height/2, Radius: r}
	case ToolTriangle:
		return shape.Triangle{X: e.anchorX, Y: e.anchorY, Width: width, Height: height}
	case ToolPencil:
		return shape.Pencil{StartX: e.anchorX, StartY: e.anchorY, EndX: wx, EndY: wy}
	case ToolArrow:
		return shape.Arrow{StartX: e.anchorX, StartY: e.anchorY, EndX: wx, EndY: wy}
	case ToolFreehand:
		pts := make([]shape.Point, len(e.freehand))
		copy(pts, e.freehand)
		return shape.Freehand{Points: pts}
	}
	return nil
}

// Wheel zooms at the pointer, in any state, including mid-drag.
func (e *Engine) Wheel(sx, sy float64, dir int) {
	e.cam.ZoomAt(sx, sy, dir)
	e.render()
}

// DeleteSelected removes the selected shape from the local scene. Peers are
// not told; a reload resurrects the shape from history.
func (e *Engine) DeleteSelected() {
	if e.selected < 0 {
		return
	}
	if e.sc.RemoveAt(e.selected) {
		e.selected = -1
		e.render()
	}
}

// AppendRemote adds a shape received from the relay and repaints.
func (e *Engine) AppendRemote(sh shape.Shape) {
	e.sc.Append(sh)
	e.render()
}

func (e *Engine) render() {
	if e.OnRender != nil {
		e.OnRender()
	}
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

func max(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}
