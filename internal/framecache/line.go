package framecache

// State is the tagged view of a line's flag bitset, exposed to callers
// (the stats surface, tests) that need to name a line's condition
// without reaching into the flag bits themselves.
type State int

const (
	// StateEmpty: unpopulated, reusable without blocking.
	StateEmpty State = iota
	// StateDecoding: a decode is in flight; not yet valid.
	StateDecoding
	// StateReady: holds a valid, unpinned frame; an eviction candidate.
	StateReady
	// StatePinned: holds a valid frame with at least one active hold.
	StatePinned
	// StateFailed: holds a zero/garbage buffer from a failed decode,
	// pinned to the caller that triggered the decode; not a hit target.
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateEmpty:
		return "empty"
	case StateDecoding:
		return "decoding"
	case StateReady:
		return "ready"
	case StatePinned:
		return "pinned"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// flagBits packs decoding/in-use/valid state into one byte; callers
// outside this package see it only as State, never the bits
// themselves.
type flagBits uint8

const (
	flagDecoding flagBits = 1 << iota
	flagInUse
	flagValid
)

// cacheLine is one decoded-frame slot. All mutation of flags, refcnt
// and lru happens through the methods below, under the coordinator's
// write lock; there is no exported setter for any of these fields, so
// a caller cannot get IN_USE and refcnt out of sync by bypassing the
// state machine.
type cacheLine struct {
	fp     Fingerprint
	flags  flagBits
	refcnt int
	lru    int64
	buffer []byte
}

// state derives the tagged State from the flag bits.
func (l *cacheLine) state() State {
	switch {
	case l.flags&flagDecoding != 0:
		return StateDecoding
	case l.flags&flagInUse != 0 && l.flags&flagValid != 0:
		return StatePinned
	case l.flags&flagInUse != 0:
		return StateFailed
	case l.flags&flagValid != 0:
		return StateReady
	default:
		return StateEmpty
	}
}

// pinned reports whether the line must not be evicted or mutated in
// place: it is DECODING or IN_USE.
func (l *cacheLine) pinned() bool {
	return l.flags&(flagDecoding|flagInUse) != 0
}

// reset clears a line back to Empty. Called only on eviction/flush,
// after the caller has removed it from the index.
func (l *cacheLine) reset() {
	l.fp = Fingerprint{}
	l.flags = 0
	l.refcnt = 0
	l.lru = 0
}

// beginDecode transitions Empty or Ready to Decoding under the new
// fingerprint. The caller is responsible for index bookkeeping (remove
// the old key before calling this, insert the new key after), since
// the fingerprint itself changes here.
func (l *cacheLine) beginDecode(fp Fingerprint) {
	l.fp = fp
	l.flags = flagDecoding
	l.refcnt = 0
	l.lru = 0
}

// finishDecodeOK transitions Decoding to Pinned.
func (l *cacheLine) finishDecodeOK(now int64) {
	l.flags = flagValid | flagInUse
	l.refcnt = 1
	l.lru = now
}

// finishDecodeFailed transitions Decoding to Failed.
func (l *cacheLine) finishDecodeFailed() {
	l.flags = flagInUse
	l.refcnt = 1
}

// hit transitions a Ready line to Pinned on a successful lookup.
func (l *cacheLine) hit(now int64) {
	l.flags |= flagInUse
	l.refcnt++
	l.lru = now
}

// unpin decrements refcnt and, if it reaches zero, clears IN_USE.
// Returns the refcnt after the decrement.
func (l *cacheLine) unpin() int {
	l.refcnt--
	if l.refcnt <= 0 {
		l.refcnt = 0
		l.flags &^= flagInUse
	}
	return l.refcnt
}

// bufferMatches reports whether the line's current buffer can be
// reused as-is for a new geometry/format: same byte length AND caller
// has already confirmed w/h/format are unchanged. Length alone is not
// sufficient proof (two distinct geometries can coincide in byte
// size), so callers must compare geometry before relying on this.
func (l *cacheLine) bufferMatches(byteSize int) bool {
	return l.buffer != nil && len(l.buffer) == byteSize
}
