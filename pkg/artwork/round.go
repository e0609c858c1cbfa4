package artwork

import (
	"image"
	"image/color"
	"image/draw"
)

// Edge selects the side of the image whose two corners get rounded.
type Edge int

const (
	EdgeLeft Edge = iota
	EdgeRight
	EdgeTop
	EdgeBottom
)

func (e Edge) String() string {
	switch e {
	case EdgeLeft:
		return "left"
	case EdgeRight:
		return "right"
	case EdgeTop:
		return "top"
	case EdgeBottom:
		return "bottom"
	default:
		return "invalid"
	}
}

// ParseEdge maps "left", "right", "top" or "bottom" to an Edge.
func ParseEdge(s string) (Edge, error) {
	for _, e := range []Edge{EdgeLeft, EdgeRight, EdgeTop, EdgeBottom} {
		if e.String() == s {
			return e, nil
		}
	}
	return 0, ErrInvalidEdge
}

// RoundEdge clips img to a rectangle whose two corners on edge have radius r
// and whose other corners are square. Pixels outside the shape become fully
// transparent; pixels inside are copied unchanged. Coverage is decided by the
// pixel center, so applying the transform to its own output is a no-op.
// The radius is clamped to half of the shorter side.
func RoundEdge(img image.Image, r int, edge Edge) (*image.RGBA, error) {
	if img == nil {
		return nil, ErrNilImage
	}
	b := img.Bounds()
	if b.Empty() {
		return nil, ErrEmptyImage
	}
	if edge < EdgeLeft || edge > EdgeBottom {
		return nil, ErrInvalidEdge
	}

	w, h := b.Dx(), b.Dy()
	out := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(out, out.Bounds(), img, b.Min, draw.Src)

	r = min(max(r, 0), min(w, h)/2)
	if r == 0 {
		return out, nil
	}

	for _, c := range roundedCorners(w, h, r, edge) {
		clearCorner(out, c, r)
	}
	return out, nil
}

type corner struct {
	// x0, y0 is the top-left of the r x r box; cx, cy the arc center in
	// doubled coordinates so pixel centers stay integral.
	x0, y0 int
	cx, cy int
}

func roundedCorners(w, h, r int, edge Edge) []corner {
	tl := corner{x0: 0, y0: 0, cx: 2 * r, cy: 2 * r}
	tr := corner{x0: w - r, y0: 0, cx: 2 * (w - r), cy: 2 * r}
	bl := corner{x0: 0, y0: h - r, cx: 2 * r, cy: 2 * (h - r)}
	br := corner{x0: w - r, y0: h - r, cx: 2 * (w - r), cy: 2 * (h - r)}

	switch edge {
	case EdgeRight:
		return []corner{tr, br}
	case EdgeTop:
		return []corner{tl, tr}
	case EdgeBottom:
		return []corner{bl, br}
	default:
		return []corner{tl, bl}
	}
}

func clearCorner(img *image.RGBA, c corner, r int) {
	r2 := 4 * r * r
	for y := c.y0; y < c.y0+r; y++ {
		for x := c.x0; x < c.x0+r; x++ {
			dx := 2*x + 1 - c.cx
			dy := 2*y + 1 - c.cy
			if dx*dx+dy*dy > r2 {
				img.SetRGBA(x, y, color.RGBA{})
			}
		}
	}
}
