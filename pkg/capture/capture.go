// Package capture produces the images submitted for translation.
//
// A Source yields one Image per call: the camera variant shoots a frame at a
// fixed low JPEG quality, the gallery variant reads a user-chosen file as-is.
// Either way the payload is base64-encoded once, here, and never re-encoded
// downstream.
package capture

import (
	"context"
	"encoding/base64"
	"math"
	"net/http"
)

// Kind identifies which capture variant produced an image.
type Kind string

const (
	KindCamera  Kind = "camera"
	KindGallery Kind = "gallery"
)

// ShutterQuality is the compression quality used for camera shots.
const ShutterQuality = 0.1

// OriginalQuality marks images submitted without recompression.
const OriginalQuality = 1.0

// Image is a captured photo ready to be submitted.
type Image struct {
	// Base64 is the standard base64 encoding of the image bytes.
	Base64 string

	// Quality is the compression quality in [0,1] the bytes were produced at.
	Quality float64

	// Source is the variant that produced the image.
	Source Kind

	// MIME is the sniffed content type, e.g. "image/jpeg".
	MIME string
}

// NewImage encodes data as an Image. Quality is clamped to [0,1].
func NewImage(data []byte, quality float64, src Kind) *Image {
	return &Image{
		Base64:  base64.StdEncoding.EncodeToString(data),
		Quality: clampQuality(quality),
		Source:  src,
		MIME:    http.DetectContentType(data),
	}
}

// Bytes decodes the base64 payload back to raw image bytes.
func (img *Image) Bytes() ([]byte, error) {
	return base64.StdEncoding.DecodeString(img.Base64)
}

// Source yields a single captured image per call.
type Source interface {
	Capture(ctx context.Context) (*Image, error)
}

// SourceFunc adapts a function to the Source interface.
type SourceFunc func(ctx context.Context) (*Image, error)

// Capture calls f(ctx).
func (f SourceFunc) Capture(ctx context.Context) (*Image, error) {
	return f(ctx)
}

// FromBytes returns a gallery Source serving data unchanged.
// Used for uploads where the picking already happened on the client.
func FromBytes(data []byte) Source {
	return SourceFunc(func(ctx context.Context) (*Image, error) {
		if err := ctx.Err(); err != nil {
			return nil, WrapError(KindGallery, err)
		}
		if err := checkImage(data, DefaultMaxBytes); err != nil {
			return nil, WrapError(KindGallery, err)
		}
		return NewImage(data, OriginalQuality, KindGallery), nil
	})
}

// JPEGQuality maps a [0,1] quality to the 1-100 scale JPEG encoders use.
func JPEGQuality(q float64) int {
	n := int(math.Round(clampQuality(q) * 100))
	if n < 1 {
		return 1
	}
	return n
}

func clampQuality(q float64) float64 {
	switch {
	case math.IsNaN(q) || q < 0:
		return 0
	case q > 1:
		return 1
	}
	return q
}
