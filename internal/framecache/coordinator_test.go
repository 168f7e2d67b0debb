package framecache

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/vidframe/frameserver/internal/fileid"
	"github.com/vidframe/frameserver/internal/pixfmt"
)

type fakeClock struct {
	mu sync.Mutex
	t  int64
}

func (c *fakeClock) now() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) advance(d int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t += d
}

type stubDecoder struct {
	fail byte // non-zero: fail every call
	fill byte
}

func (d stubDecoder) Decode(_ context.Context, _ fileid.ID, _ int64, dst []byte, _, _ int, _ pixfmt.Format) error {
	if d.fail != 0 {
		return errors.New("stub decode failure")
	}
	for i := range dst {
		dst[i] = d.fill
	}
	return nil
}

func fp(id fileid.ID, frame int64) Fingerprint {
	return Fingerprint{FileID: id, Width: 320, Height: 180, Format: pixfmt.RGB24, Frame: frame}
}

func newTestCoordinator(t *testing.T, capacity int) (*Coordinator, *fakeClock) {
	t.Helper()
	clk := &fakeClock{t: 1}
	c := New(clk.now, nil)
	c.Resize(capacity)
	return c, clk
}

// Scenario 1: cold miss then hit.
func TestAcquireColdMissThenHit(t *testing.T) {
	c, _ := newTestCoordinator(t, 4)
	dec := stubDecoder{fill: 7}
	f := fp(1, 100)

	h1, err := c.Acquire(context.Background(), f, dec)
	if err != nil {
		t.Fatal(err)
	}
	if snap := c.Stats(); snap.Misses != 1 || snap.Hits != 0 {
		t.Fatalf("after miss: hits=%d misses=%d", snap.Hits, snap.Misses)
	}
	buf1 := h1.Buffer()
	c.Release(h1)

	h2, err := c.Acquire(context.Background(), f, dec)
	if err != nil {
		t.Fatal(err)
	}
	if snap := c.Stats(); snap.Misses != 1 || snap.Hits != 1 {
		t.Fatalf("after hit: hits=%d misses=%d", snap.Hits, snap.Misses)
	}
	if &buf1[0] != &h2.Buffer()[0] {
		t.Fatal("hit did not return the same backing buffer")
	}
	c.Release(h2)
}

// Scenario 2: eviction by LRU.
func TestEvictionByLRU(t *testing.T) {
	c, clk := newTestCoordinator(t, 2)
	dec := stubDecoder{fill: 1}

	h1, err := c.Acquire(context.Background(), fp(1, 10), dec)
	if err != nil {
		t.Fatal(err)
	}
	c.Release(h1)
	clk.advance(1)

	h2, err := c.Acquire(context.Background(), fp(1, 20), dec)
	if err != nil {
		t.Fatal(err)
	}
	c.Release(h2)
	clk.advance(1)

	h3, err := c.Acquire(context.Background(), fp(1, 30), dec)
	if err != nil {
		t.Fatal(err)
	}
	c.Release(h3)

	before := c.Stats().Misses
	h4, err := c.Acquire(context.Background(), fp(1, 10), dec)
	if err != nil {
		t.Fatal(err)
	}
	c.Release(h4)
	if got := c.Stats().Misses; got != before+1 {
		t.Fatalf("re-acquiring evicted frame should miss: misses %d -> %d", before, got)
	}
}

// Scenario 3: pinned survives eviction.
func TestPinnedSurvivesEviction(t *testing.T) {
	c, clk := newTestCoordinator(t, 2)
	dec := stubDecoder{fill: 1}

	h1, err := c.Acquire(context.Background(), fp(1, 10), dec)
	if err != nil {
		t.Fatal(err)
	}
	clk.advance(1)

	h2, err := c.Acquire(context.Background(), fp(1, 20), dec)
	if err != nil {
		t.Fatal(err)
	}
	c.Release(h2)
	clk.advance(1)

	// (1,30) should evict (1,20), not the held (1,10).
	h3, err := c.Acquire(context.Background(), fp(1, 30), dec)
	if err != nil {
		t.Fatal(err)
	}
	c.Release(h3)

	before := c.Stats().Misses
	h1b, err := c.Acquire(context.Background(), fp(1, 10), dec)
	if err != nil {
		t.Fatal(err)
	}
	if got := c.Stats().Misses; got != before {
		t.Fatalf("held line should not have been evicted: misses %d -> %d", before, got)
	}
	c.Release(h1)
	c.Release(h1b)
}

// Scenario 4: exhaustion and recovery within the retry window.
func TestAcquireExhaustionThenRelease(t *testing.T) {
	c, _ := newTestCoordinator(t, 1)
	dec := stubDecoder{fill: 1}

	h1, err := c.Acquire(context.Background(), fp(1, 10), dec)
	if err != nil {
		t.Fatal(err)
	}

	releaseAfter := 20 * time.Millisecond
	go func() {
		time.Sleep(releaseAfter)
		c.Release(h1)
	}()

	start := time.Now()
	h2, err := c.Acquire(context.Background(), fp(1, 20), dec)
	if err != nil {
		t.Fatalf("acquire should have succeeded once the holder released: %v", err)
	}
	if elapsed := time.Since(start); elapsed < releaseAfter {
		t.Fatalf("acquire returned before the releasing goroutine ran: %v", elapsed)
	}
	c.Release(h2)
}

func TestAcquireExhaustionFails(t *testing.T) {
	c, _ := newTestCoordinator(t, 1)
	dec := stubDecoder{fill: 1}

	h1, err := c.Acquire(context.Background(), fp(1, 10), dec)
	if err != nil {
		t.Fatal(err)
	}
	defer c.Release(h1)

	_, err = c.Acquire(context.Background(), fp(1, 20), dec)
	if err == nil {
		t.Fatal("expected exhaustion error")
	}
}

// Scenario 5: decode failure passthrough.
func TestDecodeFailurePassthrough(t *testing.T) {
	c, _ := newTestCoordinator(t, 4)
	failing := stubDecoder{fail: 1}

	h, err := c.Acquire(context.Background(), fp(1, 50), failing)
	if err != nil {
		t.Fatalf("a decode failure is not an Acquire error: %v", err)
	}
	if len(h.Buffer()) == 0 {
		t.Fatal("buffer should still be present and correctly sized")
	}
	c.Release(h)

	before := c.Stats().Misses
	h2, err := c.Acquire(context.Background(), fp(1, 50), stubDecoder{fill: 9})
	if err != nil {
		t.Fatal(err)
	}
	if got := c.Stats().Misses; got != before+1 {
		t.Fatal("a failed-decode line must not satisfy a later lookup as a hit")
	}
	c.Release(h2)
}

// Scenario 6: flush by file id.
func TestFlushByFileID(t *testing.T) {
	c, _ := newTestCoordinator(t, 8)
	dec := stubDecoder{fill: 1}

	h1, err := c.Acquire(context.Background(), fp(1, 1), dec)
	if err != nil {
		t.Fatal(err)
	}
	c.Release(h1)
	h2, err := c.Acquire(context.Background(), fp(2, 1), dec)
	if err != nil {
		t.Fatal(err)
	}
	c.Release(h2)

	id := fileid.ID(2)
	c.Flush(&id, false)

	snap := c.Stats()
	for _, l := range snap.Lines {
		if l.FileID == 2 {
			t.Fatal("flush(2) left a line for file 2 behind")
		}
	}

	beforeMisses := c.Stats().Misses
	h1b, err := c.Acquire(context.Background(), fp(1, 1), dec)
	if err != nil {
		t.Fatal(err)
	}
	defer c.Release(h1b)
	if got := c.Stats().Misses; got != beforeMisses {
		t.Fatal("flush(2) should not have disturbed file 1's cached line")
	}
}

func TestReleaseDoubleReleasePanics(t *testing.T) {
	c, _ := newTestCoordinator(t, 4)
	h, err := c.Acquire(context.Background(), fp(1, 1), stubDecoder{fill: 1})
	if err != nil {
		t.Fatal(err)
	}
	c.Release(h)

	defer func() {
		if recover() == nil {
			t.Fatal("double release should panic")
		}
	}()
	c.Release(h)
}

func TestPurgeWaitsForRelease(t *testing.T) {
	c, _ := newTestCoordinator(t, 2)
	h, err := c.Acquire(context.Background(), fp(1, 1), stubDecoder{fill: 1})
	if err != nil {
		t.Fatal(err)
	}

	done := make(chan struct{})
	go func() {
		c.Purge()
		close(done)
	}()

	select {
	case <-done:
		t.Fatal("purge returned while a handle was still held")
	case <-time.After(30 * time.Millisecond):
	}

	c.Release(h)
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("purge did not terminate after release")
	}

	if snap := c.Stats(); len(snap.Lines) != 0 || snap.Hits != 0 || snap.Misses != 0 {
		t.Fatalf("purge should clear all lines and reset counters: %+v", snap)
	}
}

func TestResizeShrinkPurges(t *testing.T) {
	c, _ := newTestCoordinator(t, 8)
	dec := stubDecoder{fill: 1}
	h, err := c.Acquire(context.Background(), fp(1, 1), dec)
	if err != nil {
		t.Fatal(err)
	}
	c.Release(h)

	c.Resize(2)
	if snap := c.Stats(); snap.Capacity != 2 || len(snap.Lines) != 0 {
		t.Fatalf("shrink should purge and set new capacity: %+v", snap)
	}
}

func TestAcquireRejectsInvalidGeometry(t *testing.T) {
	c, _ := newTestCoordinator(t, 4)
	bad := Fingerprint{FileID: 1, Width: 0, Height: 10, Format: pixfmt.RGB24, Frame: 1}
	if _, err := c.Acquire(context.Background(), bad, stubDecoder{fill: 1}); err == nil {
		t.Fatal("expected an error for non-positive geometry")
	}
}
