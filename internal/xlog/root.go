package xlog

import "os"

var root = New()

// Root returns the package's default Logger, initially discarding every
// record until SetDefault installs a real handler.
func Root() *Logger { return root }

// SetDefault installs h as Root()'s handler, filtered to records at or
// above minLevel.
func SetDefault(minLevel Level, h Handler) {
	root.SetHandler(LvlFilterHandler(minLevel, h))
}

// SetDefaultTerminal is a convenience wrapper installing a terminal
// handler writing to os.Stderr at minLevel.
func SetDefaultTerminal(minLevel Level) {
	SetDefault(minLevel, NewTerminalHandler(os.Stderr, false))
}
