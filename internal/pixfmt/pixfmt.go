// Package pixfmt enumerates the raw pixel layouts a decoded frame buffer
// can be stored in, and sizes buffers for them.
package pixfmt

import "fmt"

// Format tags a decoded frame's pixel layout. Only raw, unconverted
// layouts are represented here: post-decode conversion to a delivery
// format (JPEG, PNG, ...) happens outside the cache entirely.
type Format int32

const (
	Invalid Format = iota
	RGB24          // 3 bytes/pixel, packed
	RGBA32         // 4 bytes/pixel, packed
	Gray8          // 1 byte/pixel
	YUV420P        // planar, 4:2:0 chroma subsampling
)

func (f Format) String() string {
	switch f {
	case RGB24:
		return "rgb24"
	case RGBA32:
		return "rgba32"
	case Gray8:
		return "gray8"
	case YUV420P:
		return "yuv420p"
	default:
		return "invalid"
	}
}

// ContentType returns the MIME type for a raw buffer of this format,
// served as-is with no further conversion.
func (f Format) ContentType() string {
	switch f {
	case RGB24, RGBA32, Gray8, YUV420P:
		return "application/octet-stream; pix-fmt=" + f.String()
	default:
		return "application/octet-stream"
	}
}

// Valid reports whether f is a recognised, decodable format.
func (f Format) Valid() bool {
	switch f {
	case RGB24, RGBA32, Gray8, YUV420P:
		return true
	default:
		return false
	}
}

// ByteSize returns the exact number of bytes a decoded frame buffer of
// the given format and geometry occupies. It is the sole source of truth
// for buffer sizing: the frame cache must use exactly this value, never
// a cached or inferred one.
func ByteSize(format Format, w, h int) (int, error) {
	if w <= 0 || h <= 0 {
		return 0, fmt.Errorf("pixfmt: non-positive geometry %dx%d", w, h)
	}
	if !format.Valid() {
		return 0, fmt.Errorf("pixfmt: unrecognised format %d", format)
	}

	switch format {
	case RGB24:
		return w * h * 3, nil
	case RGBA32:
		return w * h * 4, nil
	case Gray8:
		return w * h, nil
	case YUV420P:
		cw, ch := (w+1)/2, (h+1)/2
		return w*h + 2*cw*ch, nil
	default:
		return 0, fmt.Errorf("pixfmt: unrecognised format %d", format)
	}
}
