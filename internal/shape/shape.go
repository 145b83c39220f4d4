// Package shape defines the drawable primitives shared by the client and
// the relay. Geometry is always in world coordinates; a shape never changes
// after it has been created.
package shape

import (
	"encoding/json"
	"fmt"
)

// Point is a single world-coordinate vertex.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Shape is the closed set of drawable variants. The concrete types below are
// the only implementations.
type Shape interface {
	// Contains reports whether the world point (x, y) hits the shape under
	// the per-variant selection policy.
	Contains(x, y float64) bool

	kind() string
}

// Width and height may be negative: a rect dragged up/left keeps its anchor
// as x,y.
type Rect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

type Circle struct {
	CenterX float64 `json:"centerX"`
	CenterY float64 `json:"centerY"`
	Radius  float64 `json:"radius"`
}

// Triangle is stored as its bounding box; the apex sits at (x+width/2, y)
// and the base spans the bottom edge.
type Triangle struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Pencil is a single straight segment.
type Pencil struct {
	StartX float64 `json:"startX"`
	StartY float64 `json:"startY"`
	EndX   float64 `json:"endX"`
	EndY   float64 `json:"endY"`
}

// Arrow is a segment plus a filled triangular head at the end point.
type Arrow struct {
	StartX float64 `json:"startX"`
	StartY float64 `json:"startY"`
	EndX   float64 `json:"endX"`
	EndY   float64 `json:"endY"`
}

// Freehand is a polyline; it needs at least two points to render.
type Freehand struct {
	Points []Point `json:"points"`
}

func (Rect) kind() string     { return "rect" }
func (Circle) kind() string   { return "circle" }
func (Triangle) kind() string { return "triangle" }
func (Pencil) kind() string   { return "pencil" }
func (Arrow) kind() string    { return "arrow" }
func (Freehand) kind() string { return "freehand" }

// SegmentTolerance pads segment and vertex hit tests, in world units.
const SegmentTolerance = 5

func (r Rect) Contains(x, y float64) bool {
	return inBox(x, y, r.X, r.Y, r.X+r.Width, r.Y+r.Height, 0)
}

func (c Circle) Contains(x, y float64) bool {
	dx := x - c.CenterX
	dy := y - c.CenterY
	return dx*dx+dy*dy <= c.Radius*c.Radius
}

// The triangle test uses its bounding box, not the exact edges.
func (t Triangle) Contains(x, y float64) bool {
	return inBox(x, y, t.X, t.Y, t.X+t.Width, t.Y+t.Height, 0)
}

func (p Pencil) Contains(x, y float64) bool {
	return inBox(x, y, p.StartX, p.StartY, p.EndX, p.EndY, SegmentTolerance)
}

func (a Arrow) Contains(x, y float64) bool {
	return inBox(x, y, a.StartX, a.StartY, a.EndX, a.EndY, SegmentTolerance)
}

// A freehand shape is hit when the point is near any of its vertices, not
// the interpolated path between them.
func (f Freehand) Contains(x, y float64) bool {
	for _, p := range f.Points {
		dx := x - p.X
		dy := y - p.Y
		if dx*dx+dy*dy <= SegmentTolerance*SegmentTolerance {
			return true
		}
	}
	return false
}

// inBox tests containment in the box spanned by two corners in any order,
// expanded by pad on every side.
func inBox(x, y, x0, y0, x1, y1, pad float64) bool {
	if x0 > x1 {
		x0, x1 = x1, x0
	}
	if y0 > y1 {
		y0, y1 = y1, y0
	}
	return x >= x0-pad && x <= x1+pad && y >= y0-pad && y <= y1+pad
}

// envelope is the tagged JSON form every peer speaks:
// {"type":"rect","x":...}. Only the fields of the tagged variant are read.
type envelope struct {
	Type string `json:"type"`

	X      float64 `json:"x,omitempty"`
	Y      float64 `json:"y,omitempty"`
	Width  float64 `json:"width,omitempty"`
	Height float64 `json:"height,omitempty"`

	CenterX float64 `json:"centerX,omitempty"`
	CenterY float64 `json:"centerY,omitempty"`
	Radius  float64 `json:"radius,omitempty"`

	StartX float64 `json:"startX,omitempty"`
	StartY float64 `json:"startY,omitempty"`
	EndX   float64 `json:"endX,omitempty"`
	EndY   float64 `json:"endY,omitempty"`

	Points []Point `json:"points,omitempty"`
}

// Marshal encodes a shape in its tagged wire form.
func Marshal(s Shape) ([]byte, error) {
	var e envelope
	e.Type = s.kind()
	switch v := s.(type) {
	case Rect:
		e.X, e.Y, e.Width, e.Height = v.X, v.Y, v.Width, v.Height
	case Circle:
		e.CenterX, e.CenterY, e.Radius = v.CenterX, v.CenterY, v.Radius
	case Triangle:
		e.X, e.Y, e.Width, e.Height = v.X, v.Y, v.Width, v.Height
	case Pencil:
		e.StartX, e.StartY, e.EndX, e.EndY = v.StartX, v.StartY, v.EndX, v.EndY
	case Arrow:
		e.StartX, e.StartY, e.EndX, e.EndY = v.StartX, v.StartY, v.EndX, v.EndY
	case Freehand:
		e.Points = v.Points
	default:
		return nil, fmt.Errorf("shape: unknown variant %T", s)
	}
	return json.Marshal(e)
}

// Unmarshal decodes a tagged wire form back into its variant.
func Unmarshal(data []byte) (Shape, error) {
	var e envelope
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, fmt.Errorf("shape: decode: %w", err)
	}
	switch e.Type {
	case "rect":
		return Rect{X: e.X, Y: e.Y, Width: e.Width, Height: e.Height}, nil
	case "circle":
		return Circle{CenterX: e.CenterX, CenterY: e.CenterY, Radius: e.Radius}, nil
	case "triangle":
		return Triangle{X: e.X, Y: e.Y, Width: e.Width, Height: e.Height}, nil
	case "pencil":
		return Pencil{StartX: e.StartX, StartY: e.StartY, EndX: e.EndX, EndY: e.EndY}, nil
	case "arrow":
		return Arrow{StartX: e.StartX, StartY: e.StartY, EndX: e.EndX, EndY: e.EndY}, nil
	case "freehand":
		return Freehand{Points: e.Points}, nil
	}
	return nil, fmt.Errorf("shape: unknown type %q", e.Type)
}
