package bmetrics

import "sync/atomic"

// Gauge holds a single instantaneous int64 value, such as the current
// in-memory bitmap byte size of a live or parked chunk set.
type Gauge struct {
	value atomic.Int64
}

// NewGauge returns a Gauge starting at zero.
func NewGauge() *Gauge { return &Gauge{} }

func (g *Gauge) Update(v int64) { g.value.Store(v) }
func (g *Gauge) Value() int64   { return g.value.Load() }
