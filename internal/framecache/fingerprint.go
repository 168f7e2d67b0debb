// Package framecache implements a bounded, concurrent, reference-counted
// decoded-frame cache: a fixed number of line slots, each holding at most
// one decoded frame, looked up by an exact fingerprint and evicted by LRU
// among the lines that are not currently pinned.
//
// The state machine is explicit: flags are never mutated directly from
// outside this package, only through the methods on cacheLine that
// enforce the IN_USE/refcnt coupling by construction.
package framecache

import (
	"github.com/vidframe/frameserver/internal/fileid"
	"github.com/vidframe/frameserver/internal/pixfmt"
)

// Fingerprint is the cache key: a file id, output geometry, pixel format
// and frame number. Two lines with the same Fingerprint may never
// coexist in the index.
type Fingerprint struct {
	FileID fileid.ID
	Width  int16
	Height int16
	Format pixfmt.Format
	Frame  int64
}

func (fp Fingerprint) empty() bool {
	return fp == Fingerprint{}
}
