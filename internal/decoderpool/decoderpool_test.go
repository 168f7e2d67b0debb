package decoderpool

import (
	"testing"

	"github.com/vidframe/frameserver/internal/fileid"
)

type fakeSlot struct {
	closed *bool
}

func (s fakeSlot) Close() {
	if s.closed != nil {
		*s.closed = true
	}
}

func TestGetPutRoundTrip(t *testing.T) {
	p := New(4, nil)
	s := fakeSlot{}
	p.Put(1, s)

	got, ok := p.Get(1)
	if !ok {
		t.Fatal("expected slot for file 1")
	}
	if got != Slot(s) {
		t.Fatal("Get returned a different slot than was Put")
	}

	if _, ok := p.Get(2); ok {
		t.Fatal("unexpected slot for file never Put")
	}
}

// TestEvictionDoesNotPanic exercises the pool well past its capacity.
// TinyLFU's admission policy decides internally whether a new key
// displaces an existing one, so this does not assert a particular
// eviction count — only that the pool and its onEvict callback remain
// well-behaved under sustained pressure.
func TestEvictionDoesNotPanic(t *testing.T) {
	var evicted []fileid.ID
	p := New(2, func(id fileid.ID, s Slot) {
		evicted = append(evicted, id)
		s.Close()
	})

	for i := 0; i < 50; i++ {
		id := fileid.ID(i % 5)
		p.Put(id, fakeSlot{})
	}
	for _, id := range evicted {
		// every evicted id must be one we actually inserted (0..4)
		if id > 4 {
			t.Errorf("onEvict reported id %d, which was never inserted", id)
		}
	}
}
