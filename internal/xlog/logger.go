package xlog

import (
	"io"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"
)

// Logger is a leveled, structured logger in the style of go-ethereum's
// log package: a Logger carries a fixed context (key/value pairs applied
// to every record) and dispatches to a swappable Handler.
type Logger struct {
	ctx     []any
	handler atomic.Pointer[Handler]
}

// New returns a root-style Logger with ctx as its permanent context and
// DiscardHandler as its initial handler.
func New(ctx ...any) *Logger {
	l := &Logger{ctx: ctx}
	var h Handler = DiscardHandler()
	l.handler.Store(&h)
	return l
}

// With returns a child Logger with extra appended to the parent's
// context, sharing the parent's handler.
func (l *Logger) With(extra ...any) *Logger {
	child := &Logger{ctx: append(append([]any{}, l.ctx...), extra...)}
	h := *l.handler.Load()
	child.handler.Store(&h)
	return child
}

// SetHandler replaces l's handler.
func (l *Logger) SetHandler(h Handler) { l.handler.Store(&h) }

func (l *Logger) write(level Level, msg string, ctx []any) {
	h := *l.handler.Load()
	if h == nil {
		return
	}
	r := Record{Time: time.Now(), Level: level, Msg: msg, Ctx: append(append([]any{}, l.ctx...), ctx...)}
	_ = h.Log(r)
}

func (l *Logger) Trace(msg string, ctx ...any) { l.write(LevelTrace, msg, ctx) }
func (l *Logger) Debug(msg string, ctx ...any) { l.write(LevelDebug, msg, ctx) }
func (l *Logger) Info(msg string, ctx ...any)  { l.write(LevelInfo, msg, ctx) }
func (l *Logger) Warn(msg string, ctx ...any)  { l.write(LevelWarn, msg, ctx) }
func (l *Logger) Error(msg string, ctx ...any) { l.write(LevelError, msg, ctx) }
func (l *Logger) Crit(msg string, ctx ...any)  { l.write(LevelCrit, msg, ctx) }

// StreamHandler returns a Handler that formats every Record with format
// and writes it to w, synchronized with a mutex.
func StreamHandler(w io.Writer, format Format) Handler {
	var mu sync.Mutex
	return FuncHandler(func(r Record) error {
		mu.Lock()
		defer mu.Unlock()
		_, err := w.Write(format(r))
		return err
	})
}

// NewTerminalHandler returns a StreamHandler writing to w, colorized
// automatically when w is a terminal (matching go-ethereum's use of
// mattn/go-isatty to detect this and mattn/go-colorable to make ANSI
// codes work on Windows consoles too).
func NewTerminalHandler(w io.Writer, forceColor bool) Handler {
	useColor := forceColor
	if f, ok := w.(*os.File); ok {
		useColor = useColor || isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
		if useColor {
			w = colorable.NewColorable(f)
		}
	}
	return StreamHandler(w, TerminalFormat(useColor))
}
