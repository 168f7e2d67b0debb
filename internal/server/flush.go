package server

import (
	"net/http"
	"strconv"

	"github.com/vidframe/frameserver/internal/fileid"
)

// handleFlush implements POST /admin/flush?id=&reset=. A full flush
// (no id) resets the hit/miss counters by default; a single-file flush
// does not, unless the caller overrides it with reset=0/1.
func (h *Handler) handleFlush(w http.ResponseWriter, r *http.Request) (int, error) {
	q := r.URL.Query()

	var idPtr *fileid.ID
	resetDefault := true
	if s := q.Get("id"); s != "" {
		n, err := strconv.ParseUint(s, 10, 16)
		if err != nil {
			return http.StatusBadRequest, err
		}
		id := fileid.ID(n)
		idPtr = &id
		resetDefault = false
	}

	reset := resetDefault
	if s := q.Get("reset"); s != "" {
		b, err := strconv.ParseBool(s)
		if err != nil {
			return http.StatusBadRequest, err
		}
		reset = b
	}

	// Flush (not Purge) either way: Purge blocks the request until every
	// pinned line drains, which is the wrong shape for an HTTP handler.
	// A full flush still only reclaims lines that are unpinned right now.
	h.Cache.Flush(idPtr, reset)

	w.WriteHeader(http.StatusNoContent)
	return 0, nil
}
