// Package fileid assigns small stable integer identifiers to file paths
// for the duration of one server process: a process-lifetime registry,
// not a real media index (no probing, no rename tracking).
package fileid

import (
	"sync"

	"github.com/cespare/xxhash/v2"
)

// ID is the small integer stored in a cache Fingerprint.
type ID uint16

// Registry maps resolved paths to process-lifetime IDs.
//
// Lookup is keyed by path, not by hash: byHash is only a fast
// pre-filter (most lookups are repeats of a path already seen) and
// every candidate it returns is confirmed against the stored path
// before being trusted, so a 64-bit hash collision between two
// distinct paths can never alias one file's id onto another's.
type Registry struct {
	mu     sync.RWMutex
	byHash map[uint64][]ID
	paths  []string // index i -> path for id i+1 (id 0 is never assigned)
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{byHash: make(map[uint64][]ID)}
}

// Lookup returns the existing ID for path, or assigns and returns a new
// one. It returns an error once the registry has exhausted the 16-bit id
// space (65535 distinct files in one process lifetime).
func (r *Registry) Lookup(path string) (ID, error) {
	h := xxhash.Sum64String(path)

	r.mu.RLock()
	id, ok := r.find(h, path)
	r.mu.RUnlock()
	if ok {
		return id, nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	// Re-check: another goroutine may have registered path while we were
	// waiting for the write lock.
	if id, ok := r.find(h, path); ok {
		return id, nil
	}
	if len(r.paths) >= int(^ID(0)) {
		return 0, errTooManyFiles
	}
	r.paths = append(r.paths, path)
	id := ID(len(r.paths))
	r.byHash[h] = append(r.byHash[h], id)
	return id, nil
}

// find looks up path among the ids bucketed under its hash, verifying
// the stored path for each candidate rather than trusting the hash
// alone.
func (r *Registry) find(h uint64, path string) (ID, bool) {
	for _, id := range r.byHash[h] {
		if r.paths[id-1] == path {
			return id, true
		}
	}
	return 0, false
}

// Path returns the path an ID was assigned to, if any.
func (r *Registry) Path(id ID) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if id == 0 || int(id) > len(r.paths) {
		return "", false
	}
	return r.paths[id-1], true
}

var errTooManyFiles = registryErr("fileid: registry exhausted the 16-bit id space")

type registryErr string

func (e registryErr) Error() string { return string(e) }
