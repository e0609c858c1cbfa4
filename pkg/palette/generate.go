package palette

import (
	"image"
	"image/color"
	"math"
	"slices"
)

// DefaultMaxColors is the number of swatches Generate aims for.
const DefaultMaxColors = 16

const (
	quantBits  = 5
	quantShift = 8 - quantBits
	quantMask  = (1 << quantBits) - 1

	minAlpha = 128
)

// Target identifies one of the six palette roles.
type Target int

const (
	LightVibrant Target = iota
	Vibrant
	DarkVibrant
	LightMuted
	Muted
	DarkMuted
)

func (t Target) String() string {
	switch t {
	case LightVibrant:
		return "light_vibrant"
	case Vibrant:
		return "vibrant"
	case DarkVibrant:
		return "dark_vibrant"
	case LightMuted:
		return "light_muted"
	case Muted:
		return "muted"
	case DarkMuted:
		return "dark_muted"
	default:
		return "unknown"
	}
}

// Priority is the order in which Select looks for a background color.
var Priority = []Target{DarkVibrant, Vibrant, DarkMuted, Muted}

type targetSpec struct {
	target                          Target
	minSat, targetSat, maxSat       float64
	minLight, targetLight, maxLight float64
}

const (
	weightSaturation = 0.24
	weightLightness  = 0.52
	weightPopulation = 0.24
)

// Evaluated in this order; a swatch can serve a single target only.
var targetSpecs = []targetSpec{
	{LightVibrant, 0.35, 1, 1, 0.55, 0.74, 1},
	{Vibrant, 0.35, 1, 1, 0.3, 0.5, 0.7},
	{DarkVibrant, 0.35, 1, 1, 0, 0.26, 0.45},
	{LightMuted, 0, 0.3, 0.4, 0.55, 0.74, 1},
	{Muted, 0, 0.3, 0.4, 0.3, 0.5, 0.7},
	{DarkMuted, 0, 0.3, 0.4, 0, 0.26, 0.45},
}

// Swatch is a representative color and the number of pixels it stands for.
type Swatch struct {
	Color      color.RGBA
	Population int
}

// HSL returns hue in degrees, saturation and lightness in [0,1].
func (s Swatch) HSL() (h, sat, l float64) {
	return rgbToHSL(s.Color)
}

// Palette is the result of Generate.
type Palette struct {
	Swatches []Swatch
	targets  map[Target]Swatch
}

// Swatch returns the swatch assigned to t.
func (p Palette) Swatch(t Target) (Swatch, bool) {
	s, ok := p.targets[t]
	return s, ok
}

// Dominant returns the most populous swatch.
func (p Palette) Dominant() (Swatch, bool) {
	if len(p.Swatches) == 0 {
		return Swatch{}, false
	}
	return slices.MaxFunc(p.Swatches, func(a, b Swatch) int { return a.Population - b.Population }), true
}

// Select returns the first available color in Priority order, or fallback.
func Select(p Palette, fallback color.RGBA) color.RGBA {
	for _, t := range Priority {
		if s, ok := p.Swatch(t); ok {
			return s.Color
		}
	}
	return fallback
}

// Generate builds a palette of at most maxColors swatches from img.
// Transparent pixels and near black, near white colors are ignored.
func Generate(img image.Image, maxColors int) Palette {
	if maxColors <= 0 {
		maxColors = DefaultMaxColors
	}
	if img == nil || img.Bounds().Empty() {
		return Palette{targets: map[Target]Swatch{}}
	}

	hist := histogram(img)
	colors := make([]uint16, 0, len(hist))
	for c := range hist {
		colors = append(colors, c)
	}
	slices.Sort(colors)

	var swatches []Swatch
	if len(colors) <= maxColors {
		for _, c := range colors {
			swatches = append(swatches, Swatch{Color: unquantize(c), Population: hist[c]})
		}
	} else {
		swatches = medianCut(colors, hist, maxColors)
	}

	kept := swatches[:0]
	for _, s := range swatches {
		if allowed(s.Color) {
			kept = append(kept, s)
		}
	}

	p := Palette{Swatches: kept, targets: make(map[Target]Swatch, len(targetSpecs))}
	p.assignTargets()
	return p
}

func histogram(img image.Image) map[uint16]int {
	b := img.Bounds()
	hist := make(map[uint16]int)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			c := color.RGBAModel.Convert(img.At(x, y)).(color.RGBA)
			if c.A < minAlpha {
				continue
			}
			c = unpremultiply(c)
			if !allowed(c) {
				continue
			}
			hist[quantize(c)]++
		}
	}
	return hist
}

func (p *Palette) assignTargets() {
	if len(p.Swatches) == 0 {
		return
	}
	maxPop := 0
	for _, s := range p.Swatches {
		maxPop = max(maxPop, s.Population)
	}

	used := make(map[int]bool)
	for _, spec := range targetSpecs {
		best, bestScore := -1, math.Inf(-1)
		for i, s := range p.Swatches {
			if used[i] {
				continue
			}
			_, sat, l := s.HSL()
			if sat < spec.minSat || sat > spec.maxSat || l < spec.minLight || l > spec.maxLight {
				continue
			}
			score := weightSaturation*(1-math.Abs(sat-spec.targetSat)) +
				weightLightness*(1-math.Abs(l-spec.targetLight)) +
				weightPopulation*float64(s.Population)/float64(maxPop)
			if score > bestScore {
				best, bestScore = i, score
			}
		}
		if best >= 0 {
			used[best] = true
			p.targets[spec.target] = p.Swatches[best]
		}
	}
}

// allowed filters colors that make poor backgrounds: near black, near white
// and the skin-tone band.
func allowed(c color.RGBA) bool {
	h, s, l := rgbToHSL(c)
	if l <= 0.05 || l >= 0.95 {
		return false
	}
	return !(h >= 10 && h <= 37 && s <= 0.82)
}

func quantize(c color.RGBA) uint16 {
	return uint16(c.R>>quantShift)<<(2*quantBits) | uint16(c.G>>quantShift)<<quantBits | uint16(c.B>>quantShift)
}

func channels(q uint16) (r, g, b int) {
	return int(q>>(2*quantBits)) & quantMask, int(q>>quantBits) & quantMask, int(q) & quantMask
}

func unquantize(q uint16) color.RGBA {
	r, g, b := channels(q)
	return color.RGBA{R: expand(r), G: expand(g), B: expand(b), A: 0xff}
}

func expand(v int) uint8 {
	return uint8(v<<quantShift | v>>(quantBits-quantShift))
}

func unpremultiply(c color.RGBA) color.RGBA {
	if c.A == 0xff || c.A == 0 {
		return c
	}
	a := uint32(c.A)
	return color.RGBA{
		R: uint8(min(uint32(c.R)*0xff/a, 0xff)),
		G: uint8(min(uint32(c.G)*0xff/a, 0xff)),
		B: uint8(min(uint32(c.B)*0xff/a, 0xff)),
		A: 0xff,
	}
}

func rgbToHSL(c color.RGBA) (h, s, l float64) {
	r, g, b := float64(c.R)/255, float64(c.G)/255, float64(c.B)/255
	hi, lo := max(r, g, b), min(r, g, b)
	l = (hi + lo) / 2
	d := hi - lo
	if d == 0 {
		return 0, 0, l
	}
	s = d / (1 - math.Abs(2*l-1))
	switch hi {
	case r:
		h = math.Mod((g-b)/d, 6)
	case g:
		h = (b-r)/d + 2
	default:
		h = (r-g)/d + 4
	}
	h *= 60
	if h < 0 {
		h += 360
	}
	return h, min(s, 1), l
}
