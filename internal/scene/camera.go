package scene

// Zoom limits and step. One wheel notch multiplies or divides the scale by
// ZoomFactor, clamped to [MinScale, MaxScale].
const (
	MinScale   = 0.2
	MaxScale   = 5.0
	ZoomFactor = 1.1
)

// Camera is the pan/zoom transform between world and screen space:
// screen = world*Scale + Offset.
type Camera struct {
	OffsetX float64
	OffsetY float64
	Scale   float64
}

func NewCamera() *Camera {
	return &Camera{Scale: 1}
}

func (c *Camera) WorldToScreen(wx, wy float64) (float64, float64) {
	return wx*c.Scale + c.OffsetX, wy*c.Scale + c.OffsetY
}

func (c *Camera) ScreenToWorld(sx, sy float64) (float64, float64) {
	return (sx - c.OffsetX) / c.Scale, (sy - c.OffsetY) / c.Scale
}

// Pan shifts the camera by a screen-space delta.
func (c *Camera) Pan(dx, dy float64) {
	c.OffsetX += dx
	c.OffsetY += dy
}

// ZoomAt steps the scale by one notch (dir > 0 zooms in) and re-anchors the
// offset so the world point under the screen point (sx, sy) stays put.
func (c *Camera) ZoomAt(sx, sy float64, dir int) {
	wx, wy := c.ScreenToWorld(sx, sy)

	old := c.Scale
	if dir > 0 {
		c.Scale *= ZoomFactor
	} else {
		c.Scale /= ZoomFactor
	}
	if c.Scale < MinScale {
		c.Scale = MinScale
	}
	if c.Scale > MaxScale {
		c.Scale = MaxScale
	}

	c.OffsetX -= wx*c.Scale - wx*old
	c.OffsetY -= wy*c.Scale - wy*old
}
