package palette

import (
	"container/heap"
	"image/color"
	"slices"
)

// vbox is a set of quantized colors, kept sorted along the split dimension.
type vbox struct {
	colors []uint16
	minC   [3]int
	maxC   [3]int
	pop    int
}

func newVbox(colors []uint16, hist map[uint16]int) *vbox {
	b := &vbox{colors: colors, minC: [3]int{quantMask, quantMask, quantMask}}
	for _, c := range colors {
		r, g, bl := channels(c)
		for i, v := range [3]int{r, g, bl} {
			b.minC[i] = min(b.minC[i], v)
			b.maxC[i] = max(b.maxC[i], v)
		}
		b.pop += hist[c]
	}
	return b
}

func (b *vbox) volume() int {
	return (b.maxC[0] - b.minC[0] + 1) * (b.maxC[1] - b.minC[1] + 1) * (b.maxC[2] - b.minC[2] + 1)
}

func (b *vbox) longestDim() int {
	dim, span := 0, -1
	for i := range 3 {
		if s := b.maxC[i] - b.minC[i]; s > span {
			dim, span = i, s
		}
	}
	return dim
}

// split cuts the box at the population median of its longest dimension.
func (b *vbox) split(hist map[uint16]int) (*vbox, *vbox) {
	dim := b.longestDim()
	sorted := slices.Clone(b.colors)
	slices.SortStableFunc(sorted, func(x, y uint16) int {
		return component(x, dim) - component(y, dim)
	})

	half := b.pop / 2
	acc, cut := 0, 0
	for i, c := range sorted {
		acc += hist[c]
		if acc >= half {
			cut = i
			break
		}
	}
	// Both halves must be non-empty.
	cut = min(max(cut, 0), len(sorted)-2)
	return newVbox(sorted[:cut+1], hist), newVbox(sorted[cut+1:], hist)
}

func (b *vbox) average(hist map[uint16]int) Swatch {
	var rs, gs, bs, total int
	for _, c := range b.colors {
		n := hist[c]
		col := unquantize(c)
		rs += int(col.R) * n
		gs += int(col.G) * n
		bs += int(col.B) * n
		total += n
	}
	if total == 0 {
		return Swatch{}
	}
	return Swatch{
		Color:      color.RGBA{R: uint8(rs / total), G: uint8(gs / total), B: uint8(bs / total), A: 0xff},
		Population: total,
	}
}

func component(c uint16, dim int) int {
	r, g, b := channels(c)
	switch dim {
	case 0:
		return r
	case 1:
		return g
	default:
		return b
	}
}

// boxQueue orders boxes by volume, largest first.
type boxQueue []*vbox

func (q boxQueue) Len() int           { return len(q) }
func (q boxQueue) Less(i, j int) bool { return q[i].volume() > q[j].volume() }
func (q boxQueue) Swap(i, j int)      { q[i], q[j] = q[j], q[i] }
func (q *boxQueue) Push(x any)        { *q = append(*q, x.(*vbox)) }
func (q *boxQueue) Pop() any {
	old := *q
	n := len(old)
	item := old[n-1]
	*q = old[:n-1]
	return item
}

func medianCut(colors []uint16, hist map[uint16]int, maxColors int) []Swatch {
	q := &boxQueue{newVbox(colors, hist)}
	var done []*vbox

	for q.Len() > 0 && q.Len()+len(done) < maxColors {
		b := heap.Pop(q).(*vbox)
		if len(b.colors) < 2 {
			done = append(done, b)
			continue
		}
		left, right := b.split(hist)
		heap.Push(q, left)
		heap.Push(q, right)
	}

	boxes := append(done, *q...)
	swatches := make([]Swatch, 0, len(boxes))
	for _, b := range boxes {
		if s := b.average(hist); s.Population > 0 {
			swatches = append(swatches, s)
		}
	}
	slices.SortStableFunc(swatches, func(a, b Swatch) int { return b.Population - a.Population })
	return swatches
}
