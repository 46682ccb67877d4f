package xlog

import (
	"fmt"
	"math/big"
	"strconv"
	"strings"
)

// Format renders a Record to bytes for a particular sink (terminal,
// plain file, ...).
type Format func(r Record) []byte

const timeFormat = "2006-01-02T15:04:05-0700"

var (
	levelColor = map[Level]int{
		LevelTrace: 34, // blue
		LevelDebug: 36, // cyan
		LevelInfo:  32, // green
		LevelWarn:  33, // yellow
		LevelError: 31, // red
		LevelCrit:  35, // magenta
	}
)

// TerminalFormat renders a Record as "LVL[time] msg key=val ...", ANSI
// colorizing the level and message when useColor is true.
func TerminalFormat(useColor bool) Format {
	return func(r Record) []byte {
		var b strings.Builder
		lvl := r.Level.alignedString()
		if useColor {
			fmt.Fprintf(&b, "\x1b[%dm%s\x1b[0m", levelColor[r.Level], lvl)
		} else {
			b.WriteString(lvl)
		}
		fmt.Fprintf(&b, "[%s] %s", r.Time.Format(timeFormat), formatMessage(r.Msg))
		writeContext(&b, r.Ctx)
		b.WriteByte('\n')
		return []byte(b.String())
	}
}

// LogfmtFormat renders a Record as plain logfmt, with no color and no
// column alignment, suitable for non-terminal sinks (files, pipes).
func LogfmtFormat() Format {
	return func(r Record) []byte {
		var b strings.Builder
		fmt.Fprintf(&b, "t=%s lvl=%s msg=%s", r.Time.Format(timeFormat), r.Level, formatLogfmtValue(r.Msg))
		writeContext(&b, r.Ctx)
		b.WriteByte('\n')
		return []byte(b.String())
	}
}

func writeContext(b *strings.Builder, ctx []any) {
	for i := 0; i+1 < len(ctx); i += 2 {
		key, _ := ctx[i].(string)
		b.WriteByte(' ')
		b.WriteString(key)
		b.WriteByte('=')
		b.WriteString(formatLogfmtValue(ctx[i+1]))
	}
}

func formatMessage(msg string) string {
	if needsQuoting(msg) {
		return strconv.Quote(msg)
	}
	return msg
}

func formatLogfmtValue(v any) string {
	switch x := v.(type) {
	case nil:
		return "<nil>"
	case string:
		return formatMessage(x)
	case error:
		return formatMessage(x.Error())
	case int64:
		return FormatLogfmtInt64(x)
	case uint64:
		return FormatLogfmtUint64(x)
	case int:
		return FormatLogfmtInt64(int64(x))
	case uint:
		return FormatLogfmtUint64(uint64(x))
	case *big.Int:
		return formatLogfmtBigInt(x)
	case fmt.Stringer:
		return formatMessage(x.String())
	default:
		return formatMessage(fmt.Sprintf("%+v", v))
	}
}

func needsQuoting(s string) bool {
	for _, r := range s {
		if r <= ' ' || r == '=' || r == '"' || r > '~' {
			return true
		}
	}
	return len(s) == 0
}

// FormatLogfmtInt64 formats n with thousands separators, as go-ethereum's
// log package does for large counters in human-read terminal output.
func FormatLogfmtInt64(n int64) string {
	if n < 0 {
		return "-" + FormatLogfmtUint64(uint64(-n))
	}
	return FormatLogfmtUint64(uint64(n))
}

// FormatLogfmtUint64 formats n with thousands separators once it reaches
// six digits; smaller values are left unpunctuated to keep short counts
// readable.
func FormatLogfmtUint64(n uint64) string {
	s := strconv.FormatUint(n, 10)
	if len(s) < 6 {
		return s
	}
	return groupThousands(s)
}

func formatLogfmtBigInt(n *big.Int) string {
	s := n.String()
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}
	s = groupThousands(s)
	if neg {
		return "-" + s
	}
	return s
}

func groupThousands(digits string) string {
	n := len(digits)
	if n <= 3 {
		return digits
	}
	var b strings.Builder
	lead := n % 3
	if lead == 0 {
		lead = 3
	}
	b.WriteString(digits[:lead])
	for i := lead; i < n; i += 3 {
		b.WriteByte(',')
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}
