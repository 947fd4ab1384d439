package domain

import (
	"fmt"
	"image"
	"image/color"
)

// Atmosphere is the airlight chromaticity (R, G, B) used for every fog image.
var Atmosphere = [3]float64{200, 200, 200}

// rainNeutral is the diff value that leaves a pixel unchanged.
const rainNeutral = 255

// CompositeFog blends clean with the airlight according to an 8-bit
// transmittance map. Single-channel maps apply to all three channels.
func CompositeFog(clean, transmittance image.Image) (*image.NRGBA, error) {
	cb, tb := clean.Bounds(), transmittance.Bounds()
	if err := sameSize(cb, tb); err != nil {
		return nil, err
	}

	out := image.NewNRGBA(image.Rect(0, 0, cb.Dx(), cb.Dy()))
	for y := 0; y < cb.Dy(); y++ {
		for x := 0; x < cb.Dx(); x++ {
			c := samples8(clean, cb.Min.X+x, cb.Min.Y+y)
			t := samples8(transmittance, tb.Min.X+x, tb.Min.Y+y)
			i := out.PixOffset(x, y)
			for ch := 0; ch < 3; ch++ {
				tv := float64(t[ch]) / 255
				out.Pix[i+ch] = clampFloat(float64(c[ch])*tv + Atmosphere[ch]*(1-tv))
			}
			out.Pix[i+3] = 0xff
		}
	}
	return out, nil
}

// CompositeRain adds a differential rain layer to clean. 16-bit layers keep
// their native sample values so streaks brighter than the neutral point survive.
func CompositeRain(clean, diff image.Image) (*image.NRGBA, error) {
	cb, db := clean.Bounds(), diff.Bounds()
	if err := sameSize(cb, db); err != nil {
		return nil, err
	}

	out := image.NewNRGBA(image.Rect(0, 0, cb.Dx(), cb.Dy()))
	for y := 0; y < cb.Dy(); y++ {
		for x := 0; x < cb.Dx(); x++ {
			c := samples8(clean, cb.Min.X+x, cb.Min.Y+y)
			d := samplesWide(diff, db.Min.X+x, db.Min.Y+y)
			i := out.PixOffset(x, y)
			for ch := 0; ch < 3; ch++ {
				out.Pix[i+ch] = clampInt(d[ch] - rainNeutral + int32(c[ch]))
			}
			out.Pix[i+3] = 0xff
		}
	}
	return out, nil
}

func sameSize(a, b image.Rectangle) error {
	if a.Dx() != b.Dx() || a.Dy() != b.Dy() {
		return fmt.Errorf("%w: clean image is %dx%d, auxiliary image is %dx%d",
			ErrSizeMismatch, a.Dx(), a.Dy(), b.Dx(), b.Dy())
	}
	return nil
}

func clampFloat(v float64) uint8 {
	switch {
	case v <= 0:
		return 0
	case v >= 255:
		return 255
	default:
		return uint8(v)
	}
}

func clampInt(v int32) uint8 {
	switch {
	case v < 0:
		return 0
	case v > 255:
		return 255
	default:
		return uint8(v)
	}
}

// samples8 returns the 8-bit R, G, B samples at (x, y).
func samples8(img image.Image, x, y int) [3]uint8 {
	switch m := img.(type) {
	case *image.Gray:
		v := m.Pix[m.PixOffset(x, y)]
		return [3]uint8{v, v, v}
	case *image.RGBA:
		i := m.PixOffset(x, y)
		return [3]uint8{m.Pix[i], m.Pix[i+1], m.Pix[i+2]}
	case *image.NRGBA:
		i := m.PixOffset(x, y)
		return [3]uint8{m.Pix[i], m.Pix[i+1], m.Pix[i+2]}
	default:
		c := color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
		return [3]uint8{c.R, c.G, c.B}
	}
}

// samplesWide returns raw samples at (x, y): 16-bit images yield their stored
// values, everything else its 8-bit values.
func samplesWide(img image.Image, x, y int) [3]int32 {
	switch m := img.(type) {
	case *image.Gray16:
		i := m.PixOffset(x, y)
		v := int32(m.Pix[i])<<8 | int32(m.Pix[i+1])
		return [3]int32{v, v, v}
	case *image.RGBA64:
		return be16x3(m.Pix[m.PixOffset(x, y):])
	case *image.NRGBA64:
		return be16x3(m.Pix[m.PixOffset(x, y):])
	default:
		s := samples8(img, x, y)
		return [3]int32{int32(s[0]), int32(s[1]), int32(s[2])}
	}
}

func be16x3(p []uint8) [3]int32 {
	return [3]int32{
		int32(p[0])<<8 | int32(p[1]),
		int32(p[2])<<8 | int32(p[3]),
		int32(p[4])<<8 | int32(p[5]),
	}
}
