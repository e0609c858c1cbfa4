package artwork

import (
	"fmt"
	"hash/fnv"
	"image"
	"reflect"

	"github.com/dmitrymomot/nowplaying/pkg/media"
)

// Identity is a cheap change-detecting key for album art.
type Identity struct {
	Key    string
	Width  int
	Height int

	// source pins keyless art to the image value it was derived from. The
	// reference also keeps the image alive, so its address cannot be reused
	// by a different cover while the identity is held.
	source image.Image
}

// IsZero reports whether id refers to no art at all.
func (id Identity) IsZero() bool {
	return id == Identity{}
}

func (id Identity) String() string {
	if id.IsZero() {
		return "none"
	}
	return fmt.Sprintf("%dx%d_%s", id.Width, id.Height, id.Key)
}

// IdentityOf derives the identity of art. ok is false when there is no image.
//
// A host supplied key wins. Without one, the identity is bound to the image
// value itself: the same *image.RGBA yields the same identity, a freshly
// decoded copy of identical pixels does not. Non-pointer images fall back to
// a hash over every pixel.
func IdentityOf(art *media.Art) (id Identity, ok bool) {
	if art == nil || art.Image == nil {
		return Identity{}, false
	}
	b := art.Image.Bounds()
	if b.Empty() {
		return Identity{}, false
	}
	id = Identity{Key: art.Key, Width: b.Dx(), Height: b.Dy()}
	if id.Key != "" {
		return id, true
	}
	if v := reflect.ValueOf(art.Image); v.Kind() == reflect.Pointer {
		id.Key = fmt.Sprintf("obj%x", v.Pointer())
		id.source = art.Image
		return id, true
	}
	id.Key = contentHash(art.Image)
	return id, true
}

func contentHash(img image.Image) string {
	b := img.Bounds()
	h := fnv.New64a()
	var buf [8]byte
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			r, g, bl, a := img.At(x, y).RGBA()
			buf[0], buf[1] = byte(r>>8), byte(r)
			buf[2], buf[3] = byte(g>>8), byte(g)
			buf[4], buf[5] = byte(bl>>8), byte(bl)
			buf[6], buf[7] = byte(a>>8), byte(a)
			_, _ = h.Write(buf[:])
		}
	}
	return fmt.Sprintf("px%016x", h.Sum64())
}
