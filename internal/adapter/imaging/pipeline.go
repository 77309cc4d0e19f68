package imaging

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"io"
	"strings"

	// Decoders for the formats the catalog and API accept.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	xdraw "golang.org/x/image/draw"

	"github.com/trungkien2003ntk/BookRetrieval/internal/domain"
)

const (
	defaultResizeTo = 244
	defaultCropTo   = 224
)

// Pipeline converts raw image bytes into the fixed-shape tensor the image
// embedding model expects: 3-channel RGB, shortest side resized to 244,
// 224x224 center crop, pixel values scaled to [-1, 1]. The steps and
// constants must stay aligned with whatever preprocessing the indexed image
// vectors were produced with, or query and index vectors drift apart.
type Pipeline struct {
	resizeTo int
	cropTo   int
}

func NewPipeline() *Pipeline {
	return &Pipeline{
		resizeTo: defaultResizeTo,
		cropTo:   defaultCropTo,
	}
}

// FromBase64 decodes a base64 payload and transforms the decoded image.
// Malformed base64 and unreadable image bytes report domain.ErrImageDecode.
func (p *Pipeline) FromBase64(encoded string) (domain.ImageTensor, error) {
	raw, err := decodeBase64(encoded)
	if err != nil {
		return domain.ImageTensor{}, fmt.Errorf("%w: %v", domain.ErrImageDecode, err)
	}
	return p.FromBytes(raw)
}

// FromBytes decodes raw image bytes and transforms the result.
func (p *Pipeline) FromBytes(raw []byte) (domain.ImageTensor, error) {
	img, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return domain.ImageTensor{}, fmt.Errorf("%w: %v", domain.ErrImageDecode, err)
	}
	return p.Transform(img), nil
}

// FromReader reads and transforms an image from r (used by ingestion, which
// works with files rather than base64 payloads).
func (p *Pipeline) FromReader(r io.Reader) (domain.ImageTensor, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return domain.ImageTensor{}, fmt.Errorf("failed to read image: %w", err)
	}
	return p.FromBytes(raw)
}

// Transform runs the normalization pipeline on a decoded image.
func (p *Pipeline) Transform(img image.Image) domain.ImageTensor {
	rgb := toRGB(img)
	resized := p.resizeShortestSide(rgb)
	cropped := p.centerCrop(resized)
	return normalize(cropped)
}

// toRGB copies the image into an opaque NRGBA buffer: alpha is dropped (not
// composited) and grayscale expands to three channels. Must happen before
// scaling, which would otherwise premultiply color values by alpha.
func toRGB(img image.Image) *image.NRGBA {
	bounds := img.Bounds()
	dst := image.NewNRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	xdraw.Draw(dst, dst.Bounds(), img, bounds.Min, xdraw.Src)
	for i := 3; i < len(dst.Pix); i += 4 {
		dst.Pix[i] = 0xff
	}
	return dst
}

// resizeShortestSide scales the image so its shortest side equals the resize
// target, preserving aspect ratio.
func (p *Pipeline) resizeShortestSide(img *image.NRGBA) *image.NRGBA {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w <= 0 || h <= 0 {
		return image.NewNRGBA(image.Rect(0, 0, p.resizeTo, p.resizeTo))
	}

	var newW, newH int
	if w <= h {
		newW = p.resizeTo
		newH = (h*p.resizeTo + w/2) / w
	} else {
		newH = p.resizeTo
		newW = (w*p.resizeTo + h/2) / h
	}

	dst := image.NewNRGBA(image.Rect(0, 0, newW, newH))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, xdraw.Src, nil)
	return dst
}

// centerCrop cuts the central cropTo x cropTo square.
func (p *Pipeline) centerCrop(img *image.NRGBA) *image.NRGBA {
	w, h := img.Bounds().Dx(), img.Bounds().Dy()
	x0 := (w - p.cropTo) / 2
	y0 := (h - p.cropTo) / 2

	dst := image.NewNRGBA(image.Rect(0, 0, p.cropTo, p.cropTo))
	xdraw.Draw(dst, dst.Bounds(), img, image.Pt(img.Bounds().Min.X+x0, img.Bounds().Min.Y+y0), xdraw.Src)
	return dst
}

// normalize converts the cropped image into a CHW float32 tensor with each
// channel linearly mapped from [0, 255] to [-1, 1].
func normalize(img *image.NRGBA) domain.ImageTensor {
	w, h := img.Bounds().Dx(), img.Bounds().Dy()
	tensor := domain.ImageTensor{
		Channels: 3,
		Height:   h,
		Width:    w,
		Pixels:   make([]float32, 3*h*w),
	}

	plane := h * w
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			off := img.PixOffset(x, y)
			idx := y*w + x
			for c := 0; c < 3; c++ {
				tensor.Pixels[c*plane+idx] = float32(img.Pix[off+c])/127.5 - 1
			}
		}
	}
	return tensor
}

// decodeBase64 accepts standard base64 with or without padding and tolerates
// embedded whitespace, which clients routinely produce when chunking long
// payloads.
func decodeBase64(encoded string) ([]byte, error) {
	cleaned := strings.Map(func(r rune) rune {
		switch r {
		case ' ', '\t', '\r', '\n':
			return -1
		}
		return r
	}, encoded)

	raw, err := base64.StdEncoding.DecodeString(cleaned)
	if err == nil {
		return raw, nil
	}
	return base64.RawStdEncoding.DecodeString(cleaned)
}
