package domain

import (
	"image"

	"golang.org/x/image/draw"
)

// ImageTransformer normalizes the geometry of an original image so it matches
// the resolution of the auxiliary data published for its dataset.
type ImageTransformer interface {
	TransformOriginalImage(img image.Image) image.Image
}

// Identity leaves images untouched.
type Identity struct{}

func (Identity) TransformOriginalImage(img image.Image) image.Image { return img }

// CenterCrop keeps the centered Width x Height window (KITTI: 1216x352).
// Images smaller than the window keep their overlapping part.
type CenterCrop struct {
	Width, Height int
}

func (c CenterCrop) TransformOriginalImage(img image.Image) image.Image {
	b := img.Bounds()
	x0 := b.Min.X + b.Dx()/2 - c.Width/2
	y0 := b.Min.Y + b.Dy()/2 - c.Height/2
	win := image.Rect(x0, y0, x0+c.Width, y0+c.Height).Intersect(b)

	dst := image.NewNRGBA(image.Rect(0, 0, win.Dx(), win.Dy()))
	draw.Draw(dst, dst.Bounds(), img, win.Min, draw.Src)
	return dst
}

// Resize scales to exactly Width x Height with 2x2 bilinear interpolation
// (Cityscapes: 1024x512). Downscaling samples only the four nearest source
// pixels, the way the published weather layers were rendered.
type Resize struct {
	Width, Height int
}

func (r Resize) TransformOriginalImage(img image.Image) image.Image {
	if b := img.Bounds(); b.Dx() == r.Width && b.Dy() == r.Height {
		return img
	}
	dst := image.NewNRGBA(image.Rect(0, 0, r.Width, r.Height))
	draw.ApproxBiLinear.Scale(dst, dst.Bounds(), img, img.Bounds(), draw.Src, nil)
	return dst
}
