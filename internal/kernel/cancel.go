package kernel

import "sync/atomic"

// Cancel is a cooperative cancellation handle: the caller sets it from
// any goroutine, the kernel polls it at most every I iterations (and at
// every VIZ state transition).
type Cancel struct {
	flag atomic.Bool
}

// NewCancel returns a fresh, unset cancellation handle.
func NewCancel() *Cancel { return &Cancel{} }

// Set requests cancellation.
func (c *Cancel) Set() { c.flag.Store(true) }

// Requested reports whether cancellation has been requested. A nil
// receiver is treated as never cancelled, so callers may pass a nil
// *Cancel to mean "no cancellation support needed".
func (c *Cancel) Requested() bool {
	if c == nil {
		return false
	}
	return c.flag.Load()
}
