package imageprep

import (
	"bytes"
	"encoding/base64"
	"errors"
	"image"
	"image/color"
	"image/png"
	"testing"
)

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		img.Set(x, 0, color.RGBA{G: 200, A: 255})
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

func TestFromBase64_DataURLAndResize(t *testing.T) {
	payload := "data:image/png;base64," + base64.StdEncoding.EncodeToString(pngBytes(t, 2048, 512))
	img, err := FromBase64(payload)
	if err != nil {
		t.Fatalf("FromBase64: %v", err)
	}
	if img.MimeType != "image/jpeg" || img.Width != 1024 || img.Height != 256 {
		t.Fatalf("unexpected image: %s %dx%d", img.MimeType, img.Width, img.Height)
	}
	if _, _, err := image.Decode(bytes.NewReader(img.Bytes)); err != nil {
		t.Fatalf("output is not decodable: %v", err)
	}
}

func TestFromBase64_SmallImageKeepsSize(t *testing.T) {
	img, err := FromBase64(base64.StdEncoding.EncodeToString(pngBytes(t, 40, 30)))
	if err != nil {
		t.Fatalf("FromBase64: %v", err)
	}
	if img.Width != 40 || img.Height != 30 {
		t.Fatalf("unexpected size %dx%d", img.Width, img.Height)
	}
}

func TestFromBase64_Errors(t *testing.T) {
	cases := map[string]error{
		"":                      ErrEmpty,
		"data:image/png;base64,": ErrEmpty,
		"!!!not base64!!!":      ErrInvalidData,
		base64.StdEncoding.EncodeToString([]byte("hello, this is text")): ErrUnsupported,
	}
	for in, want := range cases {
		if _, err := FromBase64(in); !errors.Is(err, want) {
			t.Fatalf("FromBase64(%q) = %v, want %v", in, err, want)
		}
	}
}
