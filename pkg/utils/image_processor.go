package utils

import (
	"bytes"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"io"

	"marketplace-backend/pkg/logger"

	"github.com/chai2010/webp"
	"github.com/disintegration/imaging"
)

// ImageOptions bounds the stored rendition of an uploaded photo.
type ImageOptions struct {
	MaxSide int
	Quality float32
}

// Product photos are shown in listings; evidence and ID cards are read by
// admins, so they keep more detail.
var (
	ProductImage  = ImageOptions{MaxSide: 1600, Quality: 80}
	DocumentImage = ImageOptions{MaxSide: 2400, Quality: 90}
)

var imageTypes = map[string]bool{
	"image/jpeg": true, "image/jpg": true, "image/png": true, "image/gif": true, "image/webp": true,
}

func IsImage(contentType string) bool {
	return imageTypes[contentType]
}

// ProcessImage applies EXIF orientation, fits the longest side into
// opts.MaxSide and encodes to WebP, or JPEG when WebP fails.
func ProcessImage(r io.Reader, filename string, opts ImageOptions) ([]byte, string, error) {
	img, err := imaging.Decode(r, imaging.AutoOrientation(true))
	if err != nil {
		return nil, "", err
	}
	b := img.Bounds()
	if b.Dx() > opts.MaxSide || b.Dy() > opts.MaxSide {
		img = imaging.Fit(img, opts.MaxSide, opts.MaxSide, imaging.Lanczos)
	}

	var buf bytes.Buffer
	err = webp.Encode(&buf, img, &webp.Options{Quality: opts.Quality})
	if err == nil {
		return buf.Bytes(), "image/webp", nil
	}
	logger.Warn().Err(err).Str("file", filename).Msg("WebP encode failed, using JPEG")
	buf.Reset()
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: int(opts.Quality)}); err != nil {
		return nil, "", err
	}
	return buf.Bytes(), "image/jpeg", nil
}
