package model

import "sync/atomic"

// Counter counts the comments emitted during a crawl.
//
// It is used only for progress reporting, never for control decisions.
// The count is atomic so that a Counter shared by several concurrent crawls
// (batch mode) still reflects the true total.
type Counter struct {
	n atomic.Int64
}

// Inc increments the counter by one and returns the new value.
func (c *Counter) Inc() int64 {
	return c.n.Add(1)
}

// Load returns the current value.
func (c *Counter) Load() int64 {
	return c.n.Load()
}
