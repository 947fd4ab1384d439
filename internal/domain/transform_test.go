package domain

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCenterCrop(t *testing.T) {
	src := gradient(10, 6)
	out := CenterCrop{Width: 4, Height: 2}.TransformOriginalImage(src)

	assert.Equal(t, image.Rect(0, 0, 4, 2), out.Bounds())
	// start x = 10/2 - 4/2 = 3, start y = 6/2 - 2/2 = 2
	r, g, _, _ := out.At(0, 0).RGBA()
	assert.Equal(t, uint32(3*16), r>>8)
	assert.Equal(t, uint32(2*16), g>>8)
}

func TestCenterCrop_SmallerThanWindow(t *testing.T) {
	src := gradient(4, 4)
	out := CenterCrop{Width: 8, Height: 2}.TransformOriginalImage(src)
	assert.Equal(t, image.Rect(0, 0, 4, 2), out.Bounds())
}

func TestResize(t *testing.T) {
	src := uniformRGBA(20, 10, color.RGBA{R: 40, G: 80, B: 120, A: 255})
	out := Resize{Width: 8, Height: 4}.TransformOriginalImage(src)

	assert.Equal(t, image.Rect(0, 0, 8, 4), out.Bounds())
	c := color.NRGBAModel.Convert(out.At(3, 2)).(color.NRGBA)
	assert.InDelta(t, 40, int(c.R), 1)
	assert.InDelta(t, 80, int(c.G), 1)
	assert.InDelta(t, 120, int(c.B), 1)

	same := Resize{Width: 20, Height: 10}.TransformOriginalImage(src)
	assert.Same(t, src, same)
}

func TestResize_SamplesNearestNeighbourhood(t *testing.T) {
	src := image.NewGray(image.Rect(0, 0, 4, 2))
	for y := range 2 {
		for x, v := range []uint8{0, 100, 200, 50} {
			src.SetGray(x, y, color.Gray{Y: v})
		}
	}

	out := Resize{Width: 2, Height: 1}.TransformOriginalImage(src)

	var got []uint8
	for x := range 2 {
		got = append(got, color.NRGBAModel.Convert(out.At(x, 0)).(color.NRGBA).R)
	}
	assert.Equal(t, []uint8{50, 125}, got)
}

func TestIdentity(t *testing.T) {
	src := gradient(2, 2)
	assert.Same(t, src, Identity{}.TransformOriginalImage(src))
}
