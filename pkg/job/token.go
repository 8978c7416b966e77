package job

import "sync/atomic"

// CancelToken is a cooperative cancellation flag. The caller sets it
// from its own goroutine; the engine polls it at cell boundaries and
// between batch items, never mid-page.
type CancelToken struct {
	flag atomic.Bool
}

// NewCancelToken creates an unset token.
func NewCancelToken() *CancelToken {
	return &CancelToken{}
}

// Cancel requests cancellation. Safe to call repeatedly and from any
// goroutine.
func (t *CancelToken) Cancel() {
	t.flag.Store(true)
}

// Cancelled reports whether cancellation was requested. A nil token
// never cancels.
func (t *CancelToken) Cancelled() bool {
	return t != nil && t.flag.Load()
}
