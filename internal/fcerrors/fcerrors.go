// Package fcerrors is the error taxonomy shared by the frame cache and
// the server that sits on top of it.
package fcerrors

import "github.com/cockroachdb/errors"

// ErrCacheExhausted is returned by Acquire when every line was pinned for
// the full wait. The HTTP layer maps this to 503 Service Unavailable.
var ErrCacheExhausted = errors.New("framecache: exhausted: all lines pinned")

// ErrDecodeFailed wraps a decoder's non-nil error. It is never surfaced
// as a request failure: the coordinator still returns a pinned handle so
// the caller can serve whatever the decoder left in the buffer.
func ErrDecodeFailed(cause error) error {
	return errors.Wrap(cause, "framecache: decode failed")
}

// ErrAlloc wraps a buffer-sizing/allocation failure. The frame cache
// does not return it: Acquire validates geometry and format before
// sizing a buffer, and a sizing failure after that panics as an
// assertion.
func ErrAlloc(cause error) error {
	return errors.Wrap(cause, "framecache: buffer allocation failed")
}

// AssertionFailed reports a programmer error: double-release, release of
// a nil handle, or any other violation of the cache's own calling
// convention. It returns an assertion-failure error and does not panic
// itself: Acquire returns it for an invalid fingerprint, while Release
// panics with it on a nil or already-released handle.
func AssertionFailed(format string, args ...any) error {
	return errors.AssertionFailedf(format, args...)
}

// Is re-exports errors.Is for callers that only import fcerrors.
func Is(err, target error) bool { return errors.Is(err, target) }
