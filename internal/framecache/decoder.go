package framecache

import (
	"context"

	"github.com/vidframe/frameserver/internal/fileid"
	"github.com/vidframe/frameserver/internal/pixfmt"
)

// Decoder renders one frame into dst. dst is exactly
// pixfmt.ByteSize(format, w, h) bytes and must be filled entirely on
// success; on error the coordinator makes no promises about dst's
// contents.
//
// The signature takes the fingerprint's fields individually rather
// than a Fingerprint value so that internal/decode can implement this
// interface while importing only internal/fileid and internal/pixfmt,
// never this package: Go's structural typing lets the two packages
// stay mutually unaware of each other.
type Decoder interface {
	Decode(ctx context.Context, fileID fileid.ID, frame int64, dst []byte, w, h int, format pixfmt.Format) error
}
