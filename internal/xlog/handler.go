package xlog

import "sync"

// Handler processes a single Record: format it, filter it, ship it
// somewhere. Composing handlers (LvlFilterHandler, SyncHandler) wrap an
// inner Handler the way go-ethereum's log package does.
type Handler interface {
	Log(r Record) error
}

// FuncHandler adapts a plain function to a Handler.
type FuncHandler func(r Record) error

func (f FuncHandler) Log(r Record) error { return f(r) }

// LvlFilterHandler discards any record below minLevel before it reaches h.
func LvlFilterHandler(minLevel Level, h Handler) Handler {
	return FuncHandler(func(r Record) error {
		if r.Level < minLevel {
			return nil
		}
		return h.Log(r)
	})
}

// SyncHandler serializes calls into h with a mutex, needed whenever h's
// underlying writer (a file, a terminal) isn't itself safe for concurrent
// writes.
func SyncHandler(h Handler) Handler {
	var mu sync.Mutex
	return FuncHandler(func(r Record) error {
		mu.Lock()
		defer mu.Unlock()
		return h.Log(r)
	})
}

// MultiHandler fans a record out to every handler in hs, returning the
// first error encountered (if any) after all of them have run.
func MultiHandler(hs ...Handler) Handler {
	return FuncHandler(func(r Record) error {
		var firstErr error
		for _, h := range hs {
			if err := h.Log(r); err != nil && firstErr == nil {
				firstErr = err
			}
		}
		return firstErr
	})
}

// DiscardHandler drops every record, used when logging is disabled.
func DiscardHandler() Handler {
	return FuncHandler(func(Record) error { return nil })
}
