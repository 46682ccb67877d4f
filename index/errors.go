package index

import (
	"errors"
	"fmt"
)

// Kind discriminates the three error categories an Index operation can
// fail with.
type Kind int

const (
	// KindParameters covers invalid build options, an operation invalid
	// for the index's Mode, or create() called on an existing path.
	KindParameters Kind = iota
	// KindFile covers any underlying filesystem failure: open, seek,
	// read, write, create_dir, remove_dir.
	KindFile
	// KindBitmap covers a codec self-check failure on deserialize, or a
	// serialize buffer too small.
	KindBitmap
)

func (k Kind) String() string {
	switch k {
	case KindParameters:
		return "parameters"
	case KindFile:
		return "file"
	case KindBitmap:
		return "bitmap"
	default:
		return "unknown"
	}
}

// Error is the discriminated error every Index operation returns on
// failure. It carries enough information to identify the failing
// component: Kind names the category, and Unwrap exposes the underlying
// cause (if any) for errors.Is/errors.As.
type Error struct {
	Kind Kind
	msg  string
	err  error
}

func (e *Error) Error() string {
	if e.err != nil {
		return fmt.Sprintf("bitrush-index: %s: %s: %v", e.Kind, e.msg, e.err)
	}
	return fmt.Sprintf("bitrush-index: %s: %s", e.Kind, e.msg)
}

func (e *Error) Unwrap() error { return e.err }

// Is allows errors.Is(err, ErrParameters) / ErrFile / ErrBitmap to match
// by Kind regardless of the wrapped cause or message.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && t.msg == ""
}

// Sentinels usable with errors.Is to test an error's Kind without caring
// about its message or cause, e.g. errors.Is(err, index.ErrParameters).
var (
	ErrParameters = &Error{Kind: KindParameters}
	ErrFile       = &Error{Kind: KindFile}
	ErrBitmap     = &Error{Kind: KindBitmap}
)

func parametersError(format string, args ...any) error {
	return &Error{Kind: KindParameters, msg: fmt.Sprintf(format, args...)}
}

func fileError(op string, cause error) error {
	return &Error{Kind: KindFile, msg: op, err: cause}
}

func bitmapError(op string, cause error) error {
	return &Error{Kind: KindBitmap, msg: op, err: cause}
}

// asIndexError reports whether err (or something it wraps) is one of
// this package's *Error values, for callers that need the Kind without an
// exhaustive type switch.
func asIndexError(err error) (*Error, bool) {
	var e *Error
	ok := errors.As(err, &e)
	return e, ok
}
