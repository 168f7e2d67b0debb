// Package server exposes internal/framecache over HTTP: a hot frame-
// serving path plus an operator-facing status/metrics/admin surface.
//
// Handler is a struct of dependencies plus an optional error Logger;
// ServeHTTP dispatches by method/path and each handler method returns
// a status code and error for the caller to log.
package server

import (
	"bytes"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/vidframe/frameserver/internal/docroot"
	"github.com/vidframe/frameserver/internal/fcerrors"
	"github.com/vidframe/frameserver/internal/fileid"
	"github.com/vidframe/frameserver/internal/framecache"
	"github.com/vidframe/frameserver/internal/pixfmt"
)

var errUnsupportedMethod = errors.New("server: unsupported method")

// PathResolver is satisfied by *fileid.Registry; kept as an interface
// here purely so tests can substitute a fake without touching fileid.
type PathResolver interface {
	Lookup(path string) (fileid.ID, error)
	Path(id fileid.ID) (string, bool)
}

var _ PathResolver = (*fileid.Registry)(nil)

// Handler wires the frame cache to HTTP. Every field is required
// except Logger.
type Handler struct {
	Cache   *framecache.Coordinator
	Root    *docroot.Root
	Paths   PathResolver
	Decoder framecache.Decoder

	// Logger is an optional error/audit logger, called once per request
	// with the response error (nil on success).
	Logger func(*http.Request, error)
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var status int
	var err error

	switch {
	case r.Method == http.MethodGet && strings.HasPrefix(r.URL.Path, "/frame/"):
		status, err = h.handleFrame(w, r)
	case r.Method == http.MethodGet && strings.HasPrefix(r.URL.Path, "/info/"):
		status, err = h.handleInfo(w, r)
	case r.Method == http.MethodGet && r.URL.Path == "/status":
		status, err = h.handleStatusHTML(w, r)
	case r.Method == http.MethodGet && r.URL.Path == "/status.json":
		status, err = h.handleStatusJSON(w, r)
	case r.Method == http.MethodGet && r.URL.Path == "/metrics":
		status, err = h.handleMetrics(w, r)
	case r.Method == http.MethodPost && r.URL.Path == "/admin/flush":
		status, err = h.handleFlush(w, r)
	default:
		status, err = http.StatusNotFound, errUnsupportedMethod
	}

	if status != 0 {
		http.Error(w, http.StatusText(status), status)
	}
	if h.Logger != nil {
		h.Logger(r, err)
	}
}

// handleFrame implements GET /frame/{path}?w=&h=&format=&frame=, the
// hot path: resolve the request path under the document root, assign
// or look up a fileid.ID, build a Fingerprint from the query string,
// acquire a handle from the cache, and serve the pinned buffer.
func (h *Handler) handleFrame(w http.ResponseWriter, r *http.Request) (int, error) {
	reqPath := strings.TrimPrefix(r.URL.Path, "/frame")
	resolved, err := h.Root.Resolve(reqPath)
	if err != nil {
		return http.StatusNotFound, err
	}

	id, err := h.Paths.Lookup(resolved)
	if err != nil {
		return http.StatusInternalServerError, err
	}

	fp, err := parseFingerprint(id, r.URL.Query())
	if err != nil {
		return http.StatusBadRequest, err
	}

	handle, err := h.Cache.Acquire(r.Context(), fp, h.Decoder)
	if err != nil {
		return mapAcquireError(err)
	}
	defer h.Cache.Release(handle)

	buf := handle.Buffer()
	w.Header().Set("Content-Type", fp.Format.ContentType())
	serveBytes(w, r, buf)
	return 0, nil
}

func mapAcquireError(err error) (int, error) {
	if fcerrors.Is(err, fcerrors.ErrCacheExhausted) {
		return http.StatusServiceUnavailable, err
	}
	return http.StatusInternalServerError, err
}

func parseFingerprint(id fileid.ID, q interface{ Get(string) string }) (framecache.Fingerprint, error) {
	w, err := parseDim(q.Get("w"))
	if err != nil {
		return framecache.Fingerprint{}, err
	}
	ht, err := parseDim(q.Get("h"))
	if err != nil {
		return framecache.Fingerprint{}, err
	}
	format, err := parseFormat(q.Get("format"))
	if err != nil {
		return framecache.Fingerprint{}, err
	}
	frame, err := parseFrame(q.Get("frame"))
	if err != nil {
		return framecache.Fingerprint{}, err
	}
	return framecache.Fingerprint{
		FileID: id,
		Width:  int16(w),
		Height: int16(ht),
		Format: format,
		Frame:  frame,
	}, nil
}

var errParamGeometry = errors.New("server: invalid width/height")

func parseDim(s string) (int, error) {
	if s == "" {
		return 0, errParamGeometry
	}
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 || n > (1<<15-1) {
		return 0, errParamGeometry
	}
	return n, nil
}

func parseFormat(s string) (pixfmt.Format, error) {
	switch s {
	case "", "rgb24":
		return pixfmt.RGB24, nil
	case "rgba32":
		return pixfmt.RGBA32, nil
	case "gray8":
		return pixfmt.Gray8, nil
	case "yuv420p":
		return pixfmt.YUV420P, nil
	default:
		return pixfmt.Invalid, errors.New("server: unrecognised format " + s)
	}
}

func parseFrame(s string) (int64, error) {
	if s == "" {
		return 0, nil
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil || n < 0 {
		return 0, errors.New("server: invalid frame number " + s)
	}
	return n, nil
}

// serveBytes honors Range requests against a complete in-memory buffer
// via the standard library's Range/If-Range/conditional-GET handling.
func serveBytes(w http.ResponseWriter, r *http.Request, buf []byte) {
	http.ServeContent(w, r, "", time.Time{}, bytes.NewReader(buf))
}
