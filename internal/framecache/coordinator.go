package framecache

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/vidframe/frameserver/internal/fcerrors"
	"github.com/vidframe/frameserver/internal/fileid"
	"github.com/vidframe/frameserver/internal/pixfmt"
)

// initialConstructionCapacity is the line count a Coordinator is built
// with before its caller applies the configured capacity via Resize.
// Construction and configured sizing are two separate steps so a
// Coordinator always starts from a known-good index even before its
// caller has finished reading configuration.
const initialConstructionCapacity = 48

// MinCapacity and MaxCapacity bound the capacity a caller may configure
// through the CLI/config layer. Resize itself only enforces a floor of
// 1; the [2, 8192] range is this package's advertised configuration
// contract, enforced by internal/config before Resize is called.
const (
	MinCapacity = 2
	MaxCapacity = 8192
)

const (
	acquireMaxAttempts = 250
	acquireRetryDelay  = 5 * time.Millisecond
	purgePollDelay     = 5 * time.Millisecond
)

// Coordinator is the public façade: the only way to mutate the cache.
// It owns the single reader-writer lock that protects the index and
// every line's flags/refcnt/lru; callers never see a *cacheLine.
type Coordinator struct {
	mu     sync.RWMutex
	ix     *index
	clock  func() int64
	logger *slog.Logger

	hits   uint64
	misses uint64
}

// New constructs a Coordinator with the construction-time line count
// (48, see initialConstructionCapacity). Callers must follow with
// Resize to the operator-configured capacity before serving traffic,
// same as the source's startup sequence.
func New(clock func() int64, logger *slog.Logger) *Coordinator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Coordinator{
		ix:     newIndex(initialConstructionCapacity),
		clock:  clock,
		logger: logger,
	}
}

// Acquire returns a pinned Handle to a line holding the decoded frame
// named by fp, decoding through dec on a miss.
//
// It blocks for up to ~1s (250 retries at 5ms) if every line is pinned
// when a miss needs a victim, then fails with
// fcerrors.ErrCacheExhausted.
//
// Concurrent misses on the same fingerprint are not coalesced: each
// caller claims its own line and runs its own decode.
func (c *Coordinator) Acquire(ctx context.Context, fp Fingerprint, dec Decoder) (Handle, error) {
	if err := validateFingerprint(fp); err != nil {
		return Handle{}, err
	}

	for attempt := 0; ; attempt++ {
		line, hit, claimed, oldFP := c.acquireOnce(fp)
		switch {
		case hit:
			return newHandle(line), nil
		case claimed:
			return c.decodeInto(ctx, fp, oldFP, line, dec)
		}
		if attempt >= acquireMaxAttempts-1 {
			return Handle{}, fcerrors.ErrCacheExhausted
		}
		select {
		case <-ctx.Done():
			return Handle{}, ctx.Err()
		case <-time.After(acquireRetryDelay):
		}
	}
}

// acquireOnce performs one lookup-or-claim pass under the write lock.
func (c *Coordinator) acquireOnce(fp Fingerprint) (line *cacheLine, hit, claimed bool, oldFP Fingerprint) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if l, ok := c.ix.lookup(fp); ok && l.flags&flagValid != 0 {
		now := c.clock()
		l.hit(now)
		c.hits++
		return l, true, false, Fingerprint{}
	}

	if l, prevFP, ok := c.ix.claim(fp); ok {
		return l, false, true, prevFP
	}
	return nil, false, false, Fingerprint{}
}

// decodeInto runs the external decoder with the lock released, then
// re-locks to record the outcome. The buffer is sized/reused with the
// lock released as well; the claimed line is DECODING, so no other
// caller reuses it meanwhile.
func (c *Coordinator) decodeInto(ctx context.Context, fp, oldFP Fingerprint, line *cacheLine, dec Decoder) (Handle, error) {
	// fp was already validated by Acquire, so the only way ByteSize can
	// fail here is a programmer error in this package itself.
	byteSize, err := pixfmt.ByteSize(fp.Format, int(fp.Width), int(fp.Height))
	if err != nil {
		panic(fcerrors.AssertionFailed("framecache: validated fingerprint rejected by pixfmt.ByteSize: %v", err))
	}

	sameGeometry := oldFP.Width == fp.Width && oldFP.Height == fp.Height && oldFP.Format == fp.Format
	if !sameGeometry || !line.bufferMatches(byteSize) {
		line.buffer = make([]byte, byteSize)
	}

	decodeErr := dec.Decode(ctx, fp.FileID, fp.Frame, line.buffer, int(fp.Width), int(fp.Height), fp.Format)

	c.mu.Lock()
	defer c.mu.Unlock()

	if decodeErr != nil {
		c.logger.Warn("frame decode failed",
			"file_id", fp.FileID, "frame", fp.Frame, "error", decodeErr)
		line.finishDecodeFailed()
		return newHandle(line), nil
	}

	line.finishDecodeOK(c.clock())
	c.misses++
	return newHandle(line), nil
}

// Release unpins h (transition 6). Releasing a zero Handle, or a
// Handle already released, is a programmer error and panics rather
// than returning an error: there is no recovery from a caller that has
// lost track of its own pins.
func (c *Coordinator) Release(h Handle) {
	line := h.consume()
	if line == nil {
		panic(fcerrors.AssertionFailed("framecache: release of a nil or already-released handle"))
	}
	c.mu.Lock()
	line.unpin()
	c.mu.Unlock()
}

// Flush removes every unpinned line matching id, or every unpinned
// line when id is nil (a wildcard expressed as a nil pointer rather
// than a sentinel integer). It does not wait for pinned lines.
// resetCounters controls whether the hit/miss counters are zeroed;
// zeroing them on every partial flush was surprising enough to make
// explicit as a caller-controlled choice rather than an implicit side
// effect.
func (c *Coordinator) Flush(id *fileid.ID, resetCounters bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.ix.forEach(func(l *cacheLine) {
		if l.pinned() {
			return
		}
		if id != nil && l.fp.FileID != *id {
			return
		}
		c.ix.remove(l)
	})
	if resetCounters {
		c.hits, c.misses = 0, 0
	}
}

// Purge removes every line, waiting for pinned lines to become
// unpinned (busy-poll at ~5ms, releasing the lock between polls so
// pinners can complete). It always resets the hit/miss counters.
// Purge terminates only if every outstanding handle is eventually
// released.
func (c *Coordinator) Purge() {
	c.purgeAnd(nil)
}

func (c *Coordinator) purgeAnd(then func()) {
	for {
		c.mu.Lock()
		anyPinned := false
		c.ix.forEach(func(l *cacheLine) {
			if l.pinned() {
				anyPinned = true
				return
			}
			c.ix.remove(l)
		})
		if !anyPinned {
			c.hits, c.misses = 0, 0
			if then != nil {
				then()
			}
			c.mu.Unlock()
			return
		}
		c.mu.Unlock()
		time.Sleep(purgePollDelay)
	}
}

// Resize sets the index's capacity. Shrinking first performs a full
// Purge so no pinned line is ever discarded by the resize itself; the
// purge and the capacity change happen under one unbroken lock
// acquisition so no Acquire can slip a new line in between the purge
// completing and the shrink taking effect.
func (c *Coordinator) Resize(newCap int) {
	if newCap < 1 {
		newCap = 1
	}

	c.mu.RLock()
	shrinking := newCap < c.ix.capacity()
	c.mu.RUnlock()

	if shrinking {
		c.purgeAnd(func() { c.ix.resizeTo(newCap) })
		return
	}

	c.mu.Lock()
	c.ix.resizeTo(newCap)
	c.mu.Unlock()
}

func validateFingerprint(fp Fingerprint) error {
	if fp.Width <= 0 || fp.Height <= 0 {
		return fcerrors.AssertionFailed("framecache: acquire with non-positive geometry %dx%d", fp.Width, fp.Height)
	}
	if !fp.Format.Valid() {
		return fcerrors.AssertionFailed("framecache: acquire with unrecognised pixel format %d", fp.Format)
	}
	return nil
}
