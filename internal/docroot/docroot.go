// Package docroot resolves HTTP request paths to files on disk,
// confining every lookup to a configured document root and an
// optional glob allow-list.
//
// Allow-list patterns are matched with doublestar.Match, which
// validates the pattern and reports malformed-pattern errors rather
// than silently treating them as "no match" — worth surfacing since a
// pattern here is an operator configuration error, not a hot-path
// concern checked millions of times per second.
package docroot

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// ErrOutsideRoot is returned when a request path lexically escapes the
// configured document root (e.g. via "..").
var ErrOutsideRoot = errors.New("docroot: path escapes document root")

// ErrNotAllowed is returned when a path is inside the root but matches
// none of the configured allow-list patterns.
var ErrNotAllowed = errors.New("docroot: path not permitted by allow-list")

// Root confines path resolution to one base directory.
type Root struct {
	base  string
	allow []string // doublestar patterns, relative to base; empty means allow all
}

// New validates base as an existing directory and returns a Root.
// allow is a set of doublestar patterns; if empty, every path under
// base is permitted.
func New(base string, allow []string) (*Root, error) {
	abs, err := filepath.Abs(base)
	if err != nil {
		return nil, err
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return nil, errors.New("docroot: base is not a directory: " + abs)
	}
	return &Root{base: abs, allow: append([]string(nil), allow...)}, nil
}

// Resolve maps an HTTP request path (e.g. "/videos/clip.mov") to an
// absolute path under the document root, enforcing that it neither
// escapes the root nor is excluded by the allow-list. It does not stat
// the result — callers decide how to handle a missing file.
func (r *Root) Resolve(reqPath string) (string, error) {
	rel := strings.TrimPrefix(reqPath, "/")
	if rel == "" {
		return "", ErrNotAllowed
	}

	clean := filepath.Clean(rel)
	if clean == "." || clean == ".." || strings.HasPrefix(clean, "../") || filepath.IsAbs(clean) {
		return "", ErrOutsideRoot
	}

	if len(r.allow) > 0 {
		matched := false
		for _, pattern := range r.allow {
			ok, err := doublestar.Match(pattern, clean)
			if err != nil {
				return "", err
			}
			if ok {
				matched = true
				break
			}
		}
		if !matched {
			return "", ErrNotAllowed
		}
	}

	full := filepath.Join(r.base, clean)
	if full != r.base && !strings.HasPrefix(full, r.base+string(filepath.Separator)) {
		return "", ErrOutsideRoot
	}
	return full, nil
}
