package framecache

// index is the associative lookup from Fingerprint to cacheLine,
// backed by a fixed-size slice of preallocated lines and a native Go
// map for O(1) exact-key lookup. Fingerprint is used directly as the
// map key: it's a small comparable struct, so the native map meets the
// cost target without a custom hash table.
//
// All lines the cache will ever hold are allocated up front; "reusing
// a victim" means repurposing one of these slots in place rather than
// allocating a new cacheLine, which lets a line's buffer survive
// across evictions.
type index struct {
	lines []*cacheLine
	byKey map[Fingerprint]*cacheLine
}

func newIndex(capacity int) *index {
	lines := make([]*cacheLine, capacity)
	for i := range lines {
		lines[i] = &cacheLine{}
	}
	return &index{
		lines: lines,
		byKey: make(map[Fingerprint]*cacheLine, capacity),
	}
}

func (ix *index) capacity() int { return len(ix.lines) }

func (ix *index) size() int { return len(ix.byKey) }

// lookup returns the line indexed under fp, if any.
func (ix *index) lookup(fp Fingerprint) (*cacheLine, bool) {
	l, ok := ix.byKey[fp]
	return l, ok
}

// claim finds a slot to hold a new decode under fp: an Empty line if
// one exists, otherwise the unpinned line with the smallest lru. It
// reports ok=false if every line is pinned.
//
// Ties in lru are broken by slice iteration order.
//
// claim also reports the victim's previous Fingerprint, so the caller
// can decide whether the victim's existing buffer is reusable: reuse
// requires identical width/height/format, not merely identical byte
// length.
func (ix *index) claim(fp Fingerprint) (line *cacheLine, oldFP Fingerprint, ok bool) {
	var victim *cacheLine
	var victimLRU int64
	haveVictim := false

	for _, l := range ix.lines {
		if l.state() == StateEmpty {
			victim = l
			haveVictim = true
			break
		}
		if l.pinned() {
			continue
		}
		// Ready line: unpinned, eligible for eviction.
		if !haveVictim || l.lru < victimLRU {
			victim = l
			victimLRU = l.lru
			haveVictim = true
		}
	}

	if !haveVictim {
		return nil, Fingerprint{}, false
	}

	oldFP = victim.fp
	if !victim.fp.empty() {
		delete(ix.byKey, victim.fp)
	}
	victim.beginDecode(fp)
	ix.byKey[fp] = victim
	return victim, oldFP, true
}

// remove deletes l from the index and resets it to Empty. The caller
// must hold the write lock and must only call this on an unpinned
// line (transition 7).
func (ix *index) remove(l *cacheLine) {
	if !l.fp.empty() {
		delete(ix.byKey, l.fp)
	}
	l.reset()
}

// forEach calls fn for every line currently holding a fingerprint
// (i.e. every line the map indexes), in undefined order.
func (ix *index) forEach(fn func(*cacheLine)) {
	for _, l := range ix.byKey {
		fn(l)
	}
}

// resizeTo grows or shrinks the backing slice to newCap. The caller
// must have already purged the index when shrinking (resize's
// contract: shrink implies a prior full purge), so every line here is
// Empty at call time; growing just appends fresh Empty lines.
func (ix *index) resizeTo(newCap int) {
	if newCap == len(ix.lines) {
		return
	}
	if newCap < len(ix.lines) {
		ix.lines = ix.lines[:newCap]
		return
	}
	for i := len(ix.lines); i < newCap; i++ {
		ix.lines = append(ix.lines, &cacheLine{})
	}
}
