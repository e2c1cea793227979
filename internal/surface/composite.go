package surface

import (
	"image"
	"image/color"
	"image/draw"
)

// DrawOver composites src onto dst with a global opacity.
func DrawOver(dst, src *image.RGBA, alpha float64) {
	if alpha <= 0 {
		return
	}
	if alpha >= 1 {
		draw.Draw(dst, dst.Rect, src, src.Rect.Min, draw.Over)
		return
	}
	mask := image.NewUniform(color.Alpha{A: uint8(alpha*255 + .5)})
	draw.DrawMask(dst, dst.Rect, src, src.Rect.Min, mask, image.Point{}, draw.Over)
}

// DrawAdditive adds alpha·src to dst per channel, saturating at 255. src and
// dst must share bounds.
func DrawAdditive(dst, src *image.RGBA, alpha float64) {
	if alpha <= 0 || !dst.Rect.Eq(src.Rect) {
		return
	}
	k := uint32(alpha*256 + .5)
	for i := 0; i+3 < len(dst.Pix) && i+3 < len(src.Pix); i += 4 {
		for c := 0; c < 4; c++ {
			v := uint32(dst.Pix[i+c]) + uint32(src.Pix[i+c])*k>>8
			if v > 255 {
				v = 255
			}
			dst.Pix[i+c] = uint8(v)
		}
	}
}

// Composite draws this surface onto dst.
func (s *Surface) Composite(dst *image.RGBA, alpha float64, additive bool) {
	if additive {
		DrawAdditive(dst, s.img, alpha)
		return
	}
	DrawOver(dst, s.img, alpha)
}
