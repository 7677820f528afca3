// internal/media/image.go
package media

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"

	_ "image/gif"
	_ "image/jpeg"

	"remoteflow/internal/models"
)

// EncodePNG serializes an RGB float image into a PNG container for
// upload.
func EncodePNG(img models.Image) ([]byte, error) {
	if img.Width <= 0 || img.Height <= 0 {
		return nil, fmt.Errorf("invalid image dimensions %dx%d", img.Width, img.Height)
	}
	if len(img.Pix) != img.Width*img.Height*3 {
		return nil, fmt.Errorf("pixel buffer length %d does not match %dx%d", len(img.Pix), img.Width, img.Height)
	}

	out := image.NewNRGBA(image.Rect(0, 0, img.Width, img.Height))
	for y := 0; y < img.Height; y++ {
		for x := 0; x < img.Width; x++ {
			i := (y*img.Width + x) * 3
			out.SetNRGBA(x, y, color.NRGBA{
				R: floatToByte(img.Pix[i]),
				G: floatToByte(img.Pix[i+1]),
				B: floatToByte(img.Pix[i+2]),
				A: 255,
			})
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, out); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// DecodeImage converts downloaded PNG/JPEG/GIF bytes into an RGB float
// image.
func DecodeImage(data []byte) (models.Image, error) {
	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return models.Image{}, err
	}

	bounds := src.Bounds()
	out := models.NewImage(bounds.Dx(), bounds.Dy())
	i := 0
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			r, g, b, _ := src.At(x, y).RGBA()
			out.Pix[i] = float32(r>>8) / 255
			out.Pix[i+1] = float32(g>>8) / 255
			out.Pix[i+2] = float32(b>>8) / 255
			i += 3
		}
	}
	return out, nil
}

func floatToByte(v float32) uint8 {
	if v <= 0 {
		return 0
	}
	if v >= 1 {
		return 255
	}
	return uint8(v*255 + 0.5)
}
