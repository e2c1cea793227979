package effects

import (
	"image"

	"golang.org/x/image/draw"

	"github.com/semo00000/champ-electrostatique/internal/surface"
)

const (
	// BloomStrength is the additive weight of the blurred layer.
	BloomStrength = 0.3
	// LowQualityMinDiv keeps the bloom buffer small on tiers 0 and 1.
	LowQualityMinDiv = 10
)

// BloomDiv is the downscale factor actually used for a tier's nominal
// factor.
func BloomDiv(div, quality int) int {
	if quality <= 1 && div < LowQualityMinDiv {
		return LowQualityMinDiv
	}
	if div < 1 {
		return 1
	}
	return div
}

// BloomBlur is the blur radius in buffer pixels.
func BloomBlur(quality int) int {
	if quality >= 2 {
		return 6
	}
	return 4
}

// Bloom downsamples the frame, blurs it and adds it back. Buffers are kept
// between frames and reallocated only when the frame or factor changes.
type Bloom struct {
	small   *image.RGBA
	scratch *image.RGBA
	full    *image.RGBA
}

func NewBloom() *Bloom { return &Bloom{} }

func ensure(img *image.RGBA, w, h int) *image.RGBA {
	if img != nil && img.Rect.Dx() == w && img.Rect.Dy() == h {
		return img
	}
	return image.NewRGBA(image.Rect(0, 0, w, h))
}

// Apply blooms frame in place using downscale factor div and blur radius.
func (b *Bloom) Apply(frame *image.RGBA, div, radius int) {
	fw, fh := frame.Rect.Dx(), frame.Rect.Dy()
	if fw == 0 || fh == 0 {
		return
	}
	if div < 1 {
		div = 1
	}
	sw, sh := max(1, fw/div), max(1, fh/div)
	b.small = ensure(b.small, sw, sh)
	b.scratch = ensure(b.scratch, sw, sh)
	b.full = ensure(b.full, fw, fh)

	draw.ApproxBiLinear.Scale(b.small, b.small.Rect, frame, frame.Rect, draw.Src, nil)
	boxBlur(b.small, b.scratch, radius)
	draw.BiLinear.Scale(b.full, b.full.Rect, b.small, b.small.Rect, draw.Src, nil)
	surface.DrawAdditive(frame, b.full, BloomStrength)
}

// boxBlur runs a vertical then a horizontal running-sum box filter. tmp must
// match img's size.
func boxBlur(img, tmp *image.RGBA, r int) {
	if r <= 0 {
		return
	}
	w, h := img.Rect.Dx(), img.Rect.Dy()
	pass(img.Pix, tmp.Pix, w, h, 4, img.Stride, r)
	pass(tmp.Pix, img.Pix, h, w, img.Stride, 4, r)
}

// pass blurs n lines of length l. step moves along a line, stride between
// lines.
func pass(src, dst []uint8, lines, l, stride, step, r int) {
	win := 2*r + 1
	for y := 0; y < lines; y++ {
		base := y * stride
		for c := 0; c < 4; c++ {
			sum := 0
			at := func(i int) int {
				i = min(max(i, 0), l-1)
				return int(src[base+i*step+c])
			}
			for i := -r; i <= r; i++ {
				sum += at(i)
			}
			for x := 0; x < l; x++ {
				dst[base+x*step+c] = uint8(sum / win)
				sum += at(x+r+1) - at(x-r)
			}
		}
	}
}
