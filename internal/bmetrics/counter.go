// Package bmetrics provides the small set of counters and gauges an
// Index reports on: values appended, chunks flushed, query counts and
// matches; the Index records no gauge. Shaped after go-ethereum's
// metrics package (NewCounter/Inc/Dec/Clear/Snapshot), trimmed to what a
// single-process library needs rather than a full registry+exporter
// stack.
package bmetrics

import "sync/atomic"

// Counter is a cumulative, thread-safe int64 counter.
type Counter struct {
	count atomic.Int64
}

// NewCounter returns a Counter starting at zero.
func NewCounter() *Counter { return &Counter{} }

func (c *Counter) Inc(n int64) { c.count.Add(n) }
func (c *Counter) Dec(n int64) { c.count.Add(-n) }
func (c *Counter) Clear()      { c.count.Store(0) }

// Snapshot returns the counter's current value. Named to match
// go-ethereum's Counter.Snapshot().Count() shape even though this
// implementation has no separate mutable/snapshot distinction.
func (c *Counter) Snapshot() CounterSnapshot { return CounterSnapshot(c.count.Load()) }

type CounterSnapshot int64

func (s CounterSnapshot) Count() int64 { return int64(s) }
