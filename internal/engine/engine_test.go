package engine

import (
	"testing"

	"inkroom/internal/scene"
	"inkroom/internal/shape"
)

func newEngine() *Engine {
	return New(scene.New(), scene.NewCamera())
}

func TestDragCommitsRectAtIdentity(t *testing.T) {
	e := newEngine()
	e.SetTool(ToolRect)

	var committed shape.Shape
	e.OnCommit = func(s shape.Shape) { committed = s }

	e.PointerDown(10, 10, false)
	e.PointerMove(40, 25)
	e.PointerUp(60, 40)

	want := shape.Rect{X: 10, Y: 10, Width: 50, Height: 30}
	if committed != want {
		t.Errorf("want %#v, got %#v", want, committed)
	}
	if e.Scene().Len() != 1 {
		t.Errorf("committed shape should be in the scene")
	}
}

func TestDragCommitsCircleFromBoundingBox(t *testing.T) {
	e := newEngine()
	e.SetTool(ToolCircle)

	e.PointerDown(0, 0, false)
	e.PointerUp(40, 20)

	got, _ := e.Scene().At(0)
	want := shape.Circle{CenterX: 20, CenterY: 10, Radius: 20}
	if got != want {
		t.Errorf("want %#v, got %#v", want, got)
	}
}

func TestCommitUnderCameraUsesWorldCoordinates(t *testing.T) {
	e := newEngine()
	e.SetTool(ToolRect)
	e.Camera().OffsetX = 100
	e.Camera().OffsetY = 50
	e.Camera().Scale = 2

	e.PointerDown(100, 50, false) // world (0, 0)
	e.PointerUp(120, 70)          // world (10, 10)

	got, _ := e.Scene().At(0)
	want := shape.Rect{X: 0, Y: 0, Width: 10, Height: 10}
	if got != want {
		t.Errorf("want %#v, got %#v", want, got)
	}
}

func TestHandToolPansAndCommitsNothing(t *testing.T) {
	e := newEngine()
	e.SetTool(ToolHand)

	e.PointerDown(10, 10, false)
	e.PointerMove(30, 25)
	e.PointerUp(30, 25)

	if e.Camera().OffsetX != 20 || e.Camera().OffsetY != 15 {
		t.Errorf("pan should advance the offset by the screen delta, got (%v,%v)",
			e.Camera().OffsetX, e.Camera().OffsetY)
	}
	if e.Scene().Len() != 0 {
		t.Errorf("hand tool must not commit a shape")
	}
}

func TestMiddleButtonPansRegardlessOfTool(t *testing.T) {
	e := newEngine()
	e.SetTool(ToolRect)

	e.PointerDown(0, 0, true)
	e.PointerMove(5, 5)
	e.PointerUp(5, 5)

	if e.Camera().OffsetX != 5 || e.Camera().OffsetY != 5 {
		t.Errorf("middle-button drag should pan")
	}
	if e.Scene().Len() != 0 {
		t.Errorf("middle-button drag must not draw")
	}
}

func TestFreehandAccumulatesPath(t *testing.T) {
	e := newEngine()
	e.SetTool(ToolFreehand)

	e.PointerDown(0, 0, false)
	e.PointerMove(1, 1)
	e.PointerMove(2, 0)
	e.PointerUp(2, 0)

	got, _ := e.Scene().At(0)
	f, ok := got.(shape.Freehand)
	if !ok {
		t.Fatalf("want freehand, got %T", got)
	}
	if len(f.Points) != 3 {
		t.Errorf("want 3 points (seed + 2 moves), got %d", len(f.Points))
	}
	if f.Points[0] != (shape.Point{X: 0, Y: 0}) {
		t.Errorf("path should be seeded at the press point")
	}
}

func TestPreviewMatchesCommitAndIsNotAppended(t *testing.T) {
	e := newEngine()
	e.SetTool(ToolArrow)

	e.PointerDown(0, 0, false)
	e.PointerMove(30, 40)

	pv, ok := e.Preview()
	if !ok {
		t.Fatalf("drag in progress should have a preview")
	}
	if e.Scene().Len() != 0 {
		t.Fatalf("preview must not be appended to the scene")
	}

	e.PointerUp(30, 40)
	got, _ := e.Scene().At(0)
	if got != pv {
		t.Errorf("committed shape %#v differs from last preview %#v", got, pv)
	}
}

func TestSelectionAndLocalDelete(t *testing.T) {
	e := newEngine()
	e.Scene().Append(shape.Circle{CenterX: 50, CenterY: 50, Radius: 10})
	e.SetTool(ToolHand)

	e.PointerDown(50, 50, false)
	e.PointerUp(50, 50)
	if e.Selected() != 0 {
		t.Fatalf("press at the circle center should select it, got %d", e.Selected())
	}

	e.DeleteSelected()
	if e.Scene().Len() != 0 {
		t.Errorf("delete should remove the selected shape")
	}
	if e.Selected() != -1 {
		t.Errorf("selection should clear after delete")
	}

	// No selection: delete is a no-op.
	e.DeleteSelected()
}

func TestPressOnEmptySpaceClearsSelection(t *testing.T) {
	e := newEngine()
	e.Scene().Append(shape.Circle{CenterX: 50, CenterY: 50, Radius: 10})
	e.SetTool(ToolHand)

	e.PointerDown(50, 50, false)
	e.PointerUp(50, 50)
	e.PointerDown(500, 500, false)
	e.PointerUp(500, 500)

	if e.Selected() != -1 {
		t.Errorf("press on empty space should clear the selection")
	}
}

func TestWheelZoomsMidDrag(t *testing.T) {
	e := newEngine()
	e.SetTool(ToolRect)

	e.PointerDown(0, 0, false)
	e.Wheel(100, 100, 1)
	if e.Camera().Scale != 1.1 {
		t.Errorf("wheel should zoom even while drawing, scale=%v", e.Camera().Scale)
	}
}

func TestRemoteAppendRepaints(t *testing.T) {
	e := newEngine()
	renders := 0
	e.OnRender = func() { renders++ }

	e.AppendRemote(shape.Pencil{EndX: 5, EndY: 5})
	if e.Scene().Len() != 1 {
		t.Errorf("remote shape should land in the scene")
	}
	if renders != 1 {
		t.Errorf("remote append should request a repaint")
	}
}
