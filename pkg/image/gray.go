package image

import (
	"fmt"
	stdimage "image"
	"image/color"
	"math"

	"mrireg/pkg/domain"
	"mrireg/pkg/geometry"
)

// FromGray converts a standard library image to a 2D float image with
// intensities in [0, 1]. The grid uses unit spacing with the origin at
// pixel (0, 0); color input is reduced to luminance through the Gray16
// conversion of each pixel.
func FromGray(src stdimage.Image) (*DiscreteImage, error) {
	bounds := src.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w < 1 || h < 1 {
		return nil, fmt.Errorf("image: empty source %dx%d", w, h)
	}

	grid, err := domain.NewGrid(geometry.Pt(0, 0), geometry.Vec(1, 1), []int{w, h})
	if err != nil {
		return nil, err
	}

	data := make([]float64, w*h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			r, _, _, _ := color.Gray16Model.Convert(src.At(bounds.Min.X+x, bounds.Min.Y+y)).RGBA()
			data[y*w+x] = float64(r) / 65535.0
		}
	}
	return &DiscreteImage{grid: grid, samples: data}, nil
}

// ToGray16 renders a 2D image to a 16-bit grayscale picture, clamping
// values to [0, 1]. It fails for images of any other dimension.
func (img *DiscreteImage) ToGray16() (*stdimage.Gray16, error) {
	if img.Dim() != 2 {
		return nil, fmt.Errorf("image: cannot render a %dD image to 2D grayscale", img.Dim())
	}
	size := img.grid.Size()
	w, h := size[0], size[1]

	out := stdimage.NewGray16(stdimage.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			v := img.samples[y*w+x]
			if math.IsNaN(v) {
				v = 0
			}
			v = math.Max(0, math.Min(1, v))
			out.SetGray16(x, y, color.Gray16{Y: uint16(v*65535.0 + 0.5)})
		}
	}
	return out, nil
}
