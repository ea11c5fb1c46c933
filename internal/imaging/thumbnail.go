// Package imaging downscales uploaded profile pictures.
package imaging

import (
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	"image/png"
	"io"
)

// Thumbnail decodes src, scales it down to fit within maxW x maxH preserving
// aspect ratio, and encodes the result to dst. Images already inside the
// bounds are re-encoded unchanged. PNG input stays PNG; everything else is
// written as JPEG.
func Thumbnail(dst io.Writer, src io.Reader, maxW, maxH int) error {
	img, format, err := image.Decode(src)
	if err != nil {
		return fmt.Errorf("decode image: %w", err)
	}

	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w > maxW || h > maxH {
		outW, outH := fit(w, h, maxW, maxH)
		img = scale(img, outW, outH)
	}

	if format == "png" {
		return png.Encode(dst, img)
	}
	return jpeg.Encode(dst, img, &jpeg.Options{Quality: 85})
}

func fit(w, h, maxW, maxH int) (int, int) {
	scaleW := float64(maxW) / float64(w)
	scaleH := float64(maxH) / float64(h)
	s := scaleW
	if scaleH < s {
		s = scaleH
	}
	outW := int(float64(w) * s)
	outH := int(float64(h) * s)
	if outW < 1 {
		outW = 1
	}
	if outH < 1 {
		outH = 1
	}
	return outW, outH
}

// scale is a nearest-neighbor resize. Profile thumbnails are small enough
// that sampling quality does not matter.
func scale(img image.Image, outW, outH int) image.Image {
	bounds := img.Bounds()
	out := image.NewRGBA(image.Rect(0, 0, outW, outH))
	for y := 0; y < outH; y++ {
		srcY := bounds.Min.Y + y*bounds.Dy()/outH
		for x := 0; x < outW; x++ {
			srcX := bounds.Min.X + x*bounds.Dx()/outW
			out.Set(x, y, img.At(srcX, srcY))
		}
	}
	return out
}
