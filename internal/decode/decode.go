// Package decode provides Decoder implementations satisfying
// framecache.Decoder structurally: an ffmpeg subprocess wrapper for
// real video files, and a synthetic test-pattern generator for tests
// and local development without a media toolchain installed.
//
// Neither type imports internal/framecache; they only need
// internal/fileid and internal/pixfmt, matching the parameter types
// framecache.Decoder.Decode actually declares.
package decode

import (
	"fmt"

	"github.com/vidframe/frameserver/internal/fileid"
)

// PathResolver maps a fileid.ID back to a filesystem path. It is
// satisfied by *fileid.Registry.
type PathResolver interface {
	Path(id fileid.ID) (string, bool)
}

// unresolvedPathError reports a fileID the resolver does not know
// about; this can only happen if a caller fabricates a Fingerprint
// with an id never returned by Registry.Lookup.
type unresolvedPathError struct {
	id fileid.ID
}

func (e unresolvedPathError) Error() string {
	return fmt.Sprintf("decode: no path registered for file id %d", e.id)
}
