package decode

import (
	"context"
	"fmt"

	"github.com/vidframe/frameserver/internal/fileid"
	"github.com/vidframe/frameserver/internal/pixfmt"
)

// TestPattern synthesizes a deterministic frame from its fingerprint
// fields alone: no subprocess, no filesystem access. Used by tests and
// for running the server against fixtures that aren't real video.
type TestPattern struct {
	// FailFileIDs makes Decode fail for the named file ids, to
	// exercise the decode-failure path without a genuinely corrupt file.
	FailFileIDs map[fileid.ID]bool
}

// Decode implements framecache.Decoder.
func (d TestPattern) Decode(_ context.Context, fileID fileid.ID, frame int64, dst []byte, _, _ int, _ pixfmt.Format) error {
	if d.FailFileIDs[fileID] {
		return fmt.Errorf("decode: test pattern configured to fail for file %d", fileID)
	}
	seed := byte(uint64(fileID)*31 + uint64(frame))
	for i := range dst {
		dst[i] = seed + byte(i)
	}
	return nil
}
