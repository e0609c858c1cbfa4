package artwork

import (
	"image"

	xdraw "golang.org/x/image/draw"
)

// FitWithin returns the size of a w x h image scaled so that its longest
// edge is at most maxEdge. The aspect ratio is preserved and both sides stay
// at least 1px. Sizes already within bounds are returned unchanged.
func FitWithin(w, h, maxEdge int) (int, int) {
	if maxEdge <= 0 || (w <= maxEdge && h <= maxEdge) {
		return w, h
	}
	if w >= h {
		nh := h * maxEdge / w
		return maxEdge, max(nh, 1)
	}
	nw := w * maxEdge / h
	return max(nw, 1), maxEdge
}

// Downscale returns img unchanged when it fits within maxEdge, otherwise a
// new RGBA image scaled with an approximate bilinear filter.
func Downscale(img image.Image, maxEdge int) (image.Image, error) {
	if img == nil {
		return nil, ErrNilImage
	}
	b := img.Bounds()
	if b.Empty() {
		return nil, ErrEmptyImage
	}
	w, h := FitWithin(b.Dx(), b.Dy(), maxEdge)
	if w == b.Dx() && h == b.Dy() {
		return img, nil
	}
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	xdraw.ApproxBiLinear.Scale(dst, dst.Bounds(), img, b, xdraw.Src, nil)
	return dst, nil
}

// Sample produces the small palette input: a copy bounded by edge on its
// longest side. Unlike Downscale it always copies, so the caller may hand the
// result to another goroutine while the source keeps being used.
func Sample(img image.Image, edge int) (*image.RGBA, error) {
	if img == nil {
		return nil, ErrNilImage
	}
	b := img.Bounds()
	if b.Empty() {
		return nil, ErrEmptyImage
	}
	w, h := FitWithin(b.Dx(), b.Dy(), edge)
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	if w == b.Dx() && h == b.Dy() {
		xdraw.Copy(dst, image.Point{}, img, b, xdraw.Src, nil)
		return dst, nil
	}
	xdraw.ApproxBiLinear.Scale(dst, dst.Bounds(), img, b, xdraw.Src, nil)
	return dst, nil
}
