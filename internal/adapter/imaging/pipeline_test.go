package imaging

import (
	"bytes"
	"encoding/base64"
	"errors"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/trungkien2003ntk/BookRetrieval/internal/domain"
)

func encodePNG(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func solidImage(w, h int, c color.Color) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

func TestFromBase64Shape(t *testing.T) {
	p := NewPipeline()

	raw := encodePNG(t, solidImage(640, 480, color.NRGBA{R: 200, G: 100, B: 50, A: 255}))
	encoded := base64.StdEncoding.EncodeToString(raw)

	tensor, err := p.FromBase64(encoded)
	if err != nil {
		t.Fatal(err)
	}

	if tensor.Channels != 3 || tensor.Height != 224 || tensor.Width != 224 {
		t.Errorf("unexpected shape: %dx%dx%d", tensor.Channels, tensor.Height, tensor.Width)
	}
	if len(tensor.Pixels) != tensor.Len() {
		t.Errorf("expected %d pixel values, got %d", tensor.Len(), len(tensor.Pixels))
	}
}

func TestNormalizeRange(t *testing.T) {
	p := NewPipeline()

	tensor, err := p.FromBytes(encodePNG(t, solidImage(300, 300, color.NRGBA{R: 255, G: 0, B: 128, A: 255})))
	if err != nil {
		t.Fatal(err)
	}

	plane := tensor.Height * tensor.Width
	if got := tensor.Pixels[0]; got != 1 {
		t.Errorf("expected red channel 1.0, got %f", got)
	}
	if got := tensor.Pixels[plane]; got != -1 {
		t.Errorf("expected green channel -1.0, got %f", got)
	}
	for _, v := range tensor.Pixels {
		if v < -1 || v > 1 {
			t.Fatalf("pixel value %f outside [-1, 1]", v)
		}
	}
}

func TestAlphaDropped(t *testing.T) {
	p := NewPipeline()

	// Semi-transparent source still yields a 3-channel tensor with the raw
	// color values, alpha discarded.
	tensor, err := p.FromBytes(encodePNG(t, solidImage(256, 256, color.NRGBA{R: 255, G: 255, B: 255, A: 10})))
	if err != nil {
		t.Fatal(err)
	}
	if tensor.Channels != 3 {
		t.Errorf("expected 3 channels, got %d", tensor.Channels)
	}
	if got := tensor.Pixels[0]; got != 1 {
		t.Errorf("expected alpha-ignored white pixel 1.0, got %f", got)
	}
}

func TestGrayscaleExpanded(t *testing.T) {
	p := NewPipeline()

	gray := image.NewGray(image.Rect(0, 0, 320, 240))
	for i := range gray.Pix {
		gray.Pix[i] = 127
	}

	tensor, err := p.FromBytes(encodePNG(t, gray))
	if err != nil {
		t.Fatal(err)
	}
	if tensor.Channels != 3 {
		t.Errorf("expected grayscale expanded to 3 channels, got %d", tensor.Channels)
	}

	plane := tensor.Height * tensor.Width
	if tensor.Pixels[0] != tensor.Pixels[plane] || tensor.Pixels[0] != tensor.Pixels[2*plane] {
		t.Error("expected equal channel values for grayscale input")
	}
}

func TestTallAndWideImages(t *testing.T) {
	p := NewPipeline()

	for _, dims := range []struct{ w, h int }{{1000, 250}, {250, 1000}, {100, 100}} {
		tensor, err := p.FromBytes(encodePNG(t, solidImage(dims.w, dims.h, color.NRGBA{R: 1, G: 2, B: 3, A: 255})))
		if err != nil {
			t.Fatalf("%dx%d: %v", dims.w, dims.h, err)
		}
		if tensor.Height != 224 || tensor.Width != 224 {
			t.Errorf("%dx%d: expected 224x224 crop, got %dx%d", dims.w, dims.h, tensor.Height, tensor.Width)
		}
	}
}

func TestMalformedBase64(t *testing.T) {
	p := NewPipeline()

	_, err := p.FromBase64("!!not-base64!!")
	if err == nil {
		t.Fatal("expected decode error")
	}
	if !errors.Is(err, domain.ErrImageDecode) {
		t.Errorf("expected ErrImageDecode, got %v", err)
	}
}

func TestUnreadableImageBytes(t *testing.T) {
	p := NewPipeline()

	encoded := base64.StdEncoding.EncodeToString([]byte("plain text, not an image"))
	_, err := p.FromBase64(encoded)
	if err == nil {
		t.Fatal("expected decode error")
	}
	if !errors.Is(err, domain.ErrImageDecode) {
		t.Errorf("expected ErrImageDecode, got %v", err)
	}
}

func TestBase64Whitespace(t *testing.T) {
	p := NewPipeline()

	raw := encodePNG(t, solidImage(300, 300, color.NRGBA{A: 255}))
	encoded := base64.StdEncoding.EncodeToString(raw)
	wrapped := encoded[:40] + "\n" + encoded[40:80] + "\r\n" + encoded[80:]

	if _, err := p.FromBase64(wrapped); err != nil {
		t.Fatalf("expected line-wrapped base64 to decode, got %v", err)
	}
}
