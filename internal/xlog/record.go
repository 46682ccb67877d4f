package xlog

import "time"

// Record is one log event: a level, a message and an even-length list of
// key/value pairs, which a Handler renders or ships elsewhere.
type Record struct {
	Time    time.Time
	Level   Level
	Msg     string
	Ctx     []any
}
