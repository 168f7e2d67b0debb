package server

import (
	"encoding/json"
	"net/http"
	"strings"
)

// sessionInfo reports what is actually known about a file — its
// resolved path and assigned id — rather than inventing
// geometry/duration/framerate fields no component here ever computes,
// since this design has no media-probing component.
type sessionInfo struct {
	Path   string `json:"path"`
	FileID uint16 `json:"file_id"`
}

// handleInfo implements GET /info/{path}.
func (h *Handler) handleInfo(w http.ResponseWriter, r *http.Request) (int, error) {
	reqPath := strings.TrimPrefix(r.URL.Path, "/info")
	resolved, err := h.Root.Resolve(reqPath)
	if err != nil {
		return http.StatusNotFound, err
	}
	id, err := h.Paths.Lookup(resolved)
	if err != nil {
		return http.StatusInternalServerError, err
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(sessionInfo{Path: resolved, FileID: uint16(id)}); err != nil {
		return http.StatusInternalServerError, err
	}
	return 0, nil
}
