// Package capture derives presentation data from screen captures: the bar
// panel tints itself with the average color of the wallpaper strip behind
// the menu bar. The capture itself happens in pkg/macos; this package is the
// pure image math.
package capture

import (
	"errors"
	"image"
	"image/color"
)

// ErrEmptyImage is returned when the capture has no visible pixels to
// average (zero size, or fully transparent).
var ErrEmptyImage = errors.New("capture: no visible pixels to average")

// AverageColor computes the alpha-weighted mean color of img. Transparent
// pixels contribute nothing, so a rounded-corner capture is not dragged
// toward black by its empty corners.
func AverageColor(img image.Image) (color.NRGBA, error) {
	bounds := img.Bounds()
	if bounds.Empty() {
		return color.NRGBA{}, ErrEmptyImage
	}

	var rSum, gSum, bSum, aSum uint64
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			r, g, b, a := img.At(x, y).RGBA()
			if a == 0 {
				continue
			}
			// RGBA returns premultiplied 16-bit channels; weighting by
			// alpha and dividing by the alpha sum un-premultiplies the
			// average in one step.
			rSum += uint64(r)
			gSum += uint64(g)
			bSum += uint64(b)
			aSum += uint64(a)
		}
	}
	if aSum == 0 {
		return color.NRGBA{}, ErrEmptyImage
	}

	return color.NRGBA{
		R: uint8((rSum * 0xff) / aSum),
		G: uint8((gSum * 0xff) / aSum),
		B: uint8((bSum * 0xff) / aSum),
		A: 0xff,
	}, nil
}

// Brightness returns the perceived luminance of c in [0, 1], used to pick a
// contrasting divider tint over the averaged background.
func Brightness(c color.NRGBA) float64 {
	// Rec. 601 luma coefficients.
	return (0.299*float64(c.R) + 0.587*float64(c.G) + 0.114*float64(c.B)) / 255.0
}
