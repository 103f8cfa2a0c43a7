// Package imageprep normalizes client-supplied images before they are sent to the
// generator or archived.
package imageprep

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"net/http"
	"strings"

	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

const (
	MaxEncodedBytes = 10 << 20
	MaxDimension    = 1024
	jpegQuality     = 85
)

var (
	ErrEmpty       = errors.New("image is empty")
	ErrTooLarge    = errors.New("image is too large")
	ErrInvalidData = errors.New("image data is not valid base64")
	ErrUnsupported = errors.New("unsupported image format")
)

type Image struct {
	Bytes    []byte
	MimeType string
	Width    int
	Height   int
}

// Ext is the file extension matching MimeType.
func (i *Image) Ext() string { return "jpg" }

// FromBase64 decodes a base64 payload or data URL, checks it is a supported
// image, scales it down to MaxDimension and re-encodes it as JPEG.
func FromBase64(payload string) (*Image, error) {
	payload = strings.TrimSpace(payload)
	if strings.HasPrefix(payload, "data:") {
		if i := strings.Index(payload, ","); i >= 0 {
			payload = payload[i+1:]
		}
	}
	payload = strings.TrimSpace(payload)
	if payload == "" {
		return nil, ErrEmpty
	}
	if base64.StdEncoding.DecodedLen(len(payload)) > MaxEncodedBytes {
		return nil, ErrTooLarge
	}

	raw, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		raw, err = base64.RawStdEncoding.DecodeString(strings.TrimRight(payload, "="))
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidData, err)
	}
	return Normalize(raw)
}

func Normalize(raw []byte) (*Image, error) {
	if len(raw) == 0 {
		return nil, ErrEmpty
	}
	if len(raw) > MaxEncodedBytes {
		return nil, ErrTooLarge
	}
	if !supported(raw) {
		return nil, ErrUnsupported
	}

	img, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnsupported, err)
	}
	img = fit(img, MaxDimension)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return nil, fmt.Errorf("encode jpeg: %w", err)
	}
	b := img.Bounds()
	return &Image{Bytes: buf.Bytes(), MimeType: "image/jpeg", Width: b.Dx(), Height: b.Dy()}, nil
}

func supported(raw []byte) bool {
	switch http.DetectContentType(raw) {
	case "image/jpeg", "image/png", "image/gif", "image/webp":
		return true
	}
	return false
}

// fit scales img down so its longest side is at most max.
func fit(img image.Image, max int) image.Image {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w <= max && h <= max {
		return img
	}
	nw, nh := max, max
	if w > h {
		nh = h * max / w
	} else {
		nw = w * max / h
	}
	if nw < 1 {
		nw = 1
	}
	if nh < 1 {
		nh = 1
	}
	dst := image.NewRGBA(image.Rect(0, 0, nw, nh))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, b, draw.Over, nil)
	return dst
}
