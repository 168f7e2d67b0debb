// Package decoderpool tracks a bounded set of expensive per-file
// decoder resources, separately from framecache's own line eviction: a
// Pool entry is a warm resource for a *file* (a subprocess handle, a
// demuxer context, or in this codebase's case a serialization slot
// around ffmpeg invocations), not a decoded frame buffer, and it is
// evicted by popularity (TinyLFU admission/frequency), never by exact
// smallest-LRU-among-unpinned the way framecache evicts lines. Using
// TinyLFU here, and never for the frame cache's own eviction, keeps
// that distinction real rather than nominal.
package decoderpool

import (
	"hash/maphash"
	"sync"

	"github.com/dgryski/go-tinylfu"

	"github.com/vidframe/frameserver/internal/fileid"
)

// Slot is an expensive, reusable per-file decoder resource: a
// long-lived subprocess, a demuxer context, or similar. The pool only
// manages its lifetime; it has no idea what a Slot actually does.
type Slot interface {
	Close()
}

// Pool bounds the number of concurrently warm Slots, evicting the
// least popular file's slot (by TinyLFU admission/frequency, not by
// recency) when a new file needs a slot and the pool is full.
type Pool struct {
	mu    sync.Mutex
	getFn func(fileid.ID) (Slot, bool)
	addFn func(fileid.ID, Slot)
}

// New builds a Pool holding at most capacity warm slots. onEvict, if
// non-nil, is called synchronously from inside Put, with the pool's
// internal lock held, whenever TinyLFU's admission policy displaces a
// slot; the typical use is calling the evicted Slot's Close.
func New(capacity int, onEvict func(fileid.ID, Slot)) *Pool {
	if capacity < 1 {
		capacity = 1
	}
	seed := maphash.MakeSeed()
	hashFn := func(id fileid.ID) uint64 { return maphash.Comparable(seed, id) }

	if onEvict != nil {
		cache := tinylfu.New[fileid.ID, Slot](capacity, capacity*10, hashFn, tinylfu.OnEvict(onEvict))
		return &Pool{getFn: cache.Get, addFn: cache.Add}
	}
	cache := tinylfu.New[fileid.ID, Slot](capacity, capacity*10, hashFn)
	return &Pool{getFn: cache.Get, addFn: cache.Add}
}

// Get returns the warm slot for id, if the pool is currently holding
// one.
func (p *Pool) Get(id fileid.ID) (Slot, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.getFn(id)
}

// Put admits a slot for id, possibly evicting another file's slot per
// TinyLFU's policy (which may invoke onEvict synchronously).
func (p *Pool) Put(id fileid.ID, s Slot) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.addFn(id, s)
}
