// Package export writes a PDF snapshot of a scene.
package export

import (
	"fmt"
	"math"

	"github.com/jung-kurt/gofpdf"

	"inkroom/internal/shape"
)

// pdfScale maps world units to millimeters on an A4 page.
const pdfScale = 3

// ToPDF renders the shapes in draw order to a one-page PDF at path.
func ToPDF(path string, shapes []shape.Shape) error {
	p := gofpdf.New("P", "mm", "A4", "")
	p.AddPage()
	p.SetDrawColor(0, 0, 0)
	p.SetFillColor(0, 0, 0)
	p.SetLineWidth(0.5)

	for _, sh := range shapes {
		drawShape(p, sh)
	}
	if err := p.OutputFileAndClose(path); err != nil {
		return fmt.Errorf("export: write %s: %w", path, err)
	}
	return nil
}

func drawShape(p *gofpdf.Fpdf, sh shape.Shape) {
	switch v := sh.(type) {
	case shape.Rect:
		x, y, w, h := v.X, v.Y, v.Width, v.Height
		if w < 0 {
			x, w = x+w, -w
		}
		if h < 0 {
			y, h = y+h, -h
		}
		p.Rect(mm(x), mm(y), mm(w), mm(h), "D")
	case shape.Circle:
		p.Circle(mm(v.CenterX), mm(v.CenterY), mm(v.Radius), "D")
	case shape.Triangle:
		p.Polygon([]gofpdf.PointType{
			{X: mm(v.X + v.Width/2), Y: mm(v.Y)},
			{X: mm(v.X), Y: mm(v.Y + v.Height)},
			{X: mm(v.X + v.Width), Y: mm(v.Y + v.Height)},
		}, "D")
	case shape.Pencil:
		p.Line(mm(v.StartX), mm(v.StartY), mm(v.EndX), mm(v.EndY))
	case shape.Arrow:
		p.Line(mm(v.StartX), mm(v.StartY), mm(v.EndX), mm(v.EndY))
		angle := math.Atan2(v.EndY-v.StartY, v.EndX-v.StartX)
		const headLen, headAngle = 12, math.Pi / 7
		p.Polygon([]gofpdf.PointType{
			{X: mm(v.EndX), Y: mm(v.EndY)},
			{X: mm(v.EndX - headLen*math.Cos(angle-headAngle)), Y: mm(v.EndY - headLen*math.Sin(angle-headAngle))},
			{X: mm(v.EndX - headLen*math.Cos(angle+headAngle)), Y: mm(v.EndY - headLen*math.Sin(angle+headAngle))},
		}, "F")
	case shape.Freehand:
		for i := 1; i < len(v.Points); i++ {
			p.Line(mm(v.Points[i-1].X), mm(v.Points[i-1].Y), mm(v.Points[i].X), mm(v.Points[i].Y))
		}
	}
}

func mm(world float64) float64 {
	return world / pdfScale
}
