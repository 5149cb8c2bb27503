package utils

import (
	"bytes"
	"encoding/base64"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"strings"

	"github.com/orangery/ams/shared/errors"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

const (
	jpegQuality = 85
	// header checks run before any pixel is decoded
	maxDecodedPixels = 4_000_000
	maxSideFactor    = 16
)

// PictureNormalizer turns an uploaded profile picture into a bounded JPEG.
type PictureNormalizer struct {
	maxSide  int
	maxBytes int
}

func NewPictureNormalizer(maxSide, maxMB int) *PictureNormalizer {
	return &PictureNormalizer{maxSide: maxSide, maxBytes: maxMB << 20}
}

// Normalize decodes a base64 image (png, jpeg, gif or webp), scales it down so its longest
// side fits maxSide and re-encodes it as JPEG. Re-encoding drops any metadata.
func (p *PictureNormalizer) Normalize(encoded string) ([]byte, error) {
	if _, payload, ok := strings.Cut(encoded, ";base64,"); ok && strings.HasPrefix(encoded, "data:") {
		encoded = payload
	}
	if base64.StdEncoding.DecodedLen(len(encoded)) > p.maxBytes+3 {
		return nil, errors.BadRequest("Profile picture is too large")
	}
	raw, err := base64.StdEncoding.DecodeString(strings.TrimSpace(encoded))
	if err != nil {
		return nil, errors.BadRequest("Profile picture is not valid base64")
	}
	if len(raw) > p.maxBytes {
		return nil, errors.BadRequest("Profile picture is too large")
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(raw))
	if err != nil {
		return nil, errors.BadRequest("Profile picture is not a supported image")
	}
	if p.tooBig(cfg.Width, cfg.Height) {
		return nil, errors.BadRequest("Profile picture dimensions are too large")
	}
	src, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, errors.BadRequest("Profile picture is not a supported image")
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, p.fit(src), &jpeg.Options{Quality: jpegQuality}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (p *PictureNormalizer) tooBig(w, h int) bool {
	if int64(w)*int64(h) > maxDecodedPixels {
		return true
	}
	limit := p.maxSide * maxSideFactor
	return p.maxSide > 0 && (w > limit || h > limit)
}

func (p *PictureNormalizer) fit(src image.Image) image.Image {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	if p.maxSide <= 0 || (w <= p.maxSide && h <= p.maxSide) {
		return src
	}
	if w >= h {
		h = max(1, h*p.maxSide/w)
		w = p.maxSide
	} else {
		w = max(1, w*p.maxSide/h)
		h = p.maxSide
	}
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, b, draw.Over, nil)
	return dst
}
