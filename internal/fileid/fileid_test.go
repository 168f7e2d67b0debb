package fileid

import (
	"testing"

	"github.com/cespare/xxhash/v2"
)

func TestLookupStable(t *testing.T) {
	r := NewRegistry()

	a, err := r.Lookup("/videos/a.mov")
	if err != nil {
		t.Fatal(err)
	}
	b, err := r.Lookup("/videos/b.mov")
	if err != nil {
		t.Fatal(err)
	}
	if a == b {
		t.Fatalf("distinct paths got the same id %d", a)
	}

	again, err := r.Lookup("/videos/a.mov")
	if err != nil {
		t.Fatal(err)
	}
	if again != a {
		t.Fatalf("Lookup(a) = %d, then %d", a, again)
	}
}

func TestPathRoundTrip(t *testing.T) {
	r := NewRegistry()
	id, err := r.Lookup("/videos/c.mov")
	if err != nil {
		t.Fatal(err)
	}
	path, ok := r.Path(id)
	if !ok || path != "/videos/c.mov" {
		t.Fatalf("Path(%d) = %q, %v", id, path, ok)
	}
	if _, ok := r.Path(0); ok {
		t.Fatal("Path(0) should never resolve")
	}
	if _, ok := r.Path(id + 100); ok {
		t.Fatal("Path of unassigned id should not resolve")
	}
}

// TestLookupHashCollisionDoesNotAlias plants a bogus id in a's byHash
// bucket, after a's own id, and checks that Lookup of another path
// returns neither a's id nor the bogus one, and that a repeat Lookup of
// a still returns a's id.
func TestLookupHashCollisionDoesNotAlias(t *testing.T) {
	r := NewRegistry()
	a, err := r.Lookup("/videos/a.mov")
	if err != nil {
		t.Fatal(err)
	}

	h := xxhash.Sum64String("/videos/a.mov")
	r.byHash[h] = append(r.byHash[h], 9999) // a bogus id under a's hash bucket

	b, err := r.Lookup("/videos/b.mov")
	if err != nil {
		t.Fatal(err)
	}
	if b == a || b == 9999 {
		t.Fatalf("Lookup(b) = %d, should not alias a's id or the bogus collider", b)
	}

	again, err := r.Lookup("/videos/a.mov")
	if err != nil {
		t.Fatal(err)
	}
	if again != a {
		t.Fatalf("Lookup(a) after a bogus collider was planted = %d, want %d", again, a)
	}
}

func TestLookupConcurrent(t *testing.T) {
	r := NewRegistry()
	done := make(chan ID, 64)
	for i := 0; i < 64; i++ {
		go func() {
			id, err := r.Lookup("/videos/shared.mov")
			if err != nil {
				t.Error(err)
			}
			done <- id
		}()
	}
	first := <-done
	for i := 1; i < 64; i++ {
		if id := <-done; id != first {
			t.Fatalf("concurrent Lookup of same path diverged: %d vs %d", first, id)
		}
	}
}
