package xlog

import (
	"bufio"
	"os"
)

// asyncFileWriter buffers writes to a log file and counts how many
// records the file holds, including those already in it when it was
// opened, so a caller can decide when to rotate.
type asyncFileWriter struct {
	file  *os.File
	buf   *bufio.Writer
	count int
}

// prepFile opens path for appending (creating it if needed) and counts
// the newline-terminated records already in it, so a reopened log file
// picks its count back up instead of restarting at zero.
func prepFile(path string) (*asyncFileWriter, error) {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_RDWR, 0o644)
	if err != nil {
		return nil, err
	}
	count, err := countLines(f)
	if err != nil {
		f.Close()
		return nil, err
	}
	return &asyncFileWriter{file: f, buf: bufio.NewWriter(f), count: count}, nil
}

func countLines(f *os.File) (int, error) {
	if _, err := f.Seek(0, 0); err != nil {
		return 0, err
	}
	defer f.Seek(0, 2)

	count := 0
	buf := make([]byte, 32*1024)
	for {
		n, err := f.Read(buf)
		for _, b := range buf[:n] {
			if b == '\n' {
				count++
			}
		}
		if err != nil {
			break
		}
	}
	return count, nil
}

func (w *asyncFileWriter) Write(p []byte) (int, error) {
	n, err := w.buf.Write(p)
	if err == nil {
		w.count++
	}
	return n, err
}

// Close flushes any buffered bytes and closes the underlying file.
func (w *asyncFileWriter) Close() error {
	if err := w.buf.Flush(); err != nil {
		w.file.Close()
		return err
	}
	return w.file.Close()
}

// FileHandler returns a Handler that appends LogfmtFormat-rendered
// records to the file at path.
func FileHandler(path string) (Handler, error) {
	w, err := prepFile(path)
	if err != nil {
		return nil, err
	}
	format := LogfmtFormat()
	h := FuncHandler(func(r Record) error {
		if _, err := w.Write(format(r)); err != nil {
			return err
		}
		return w.buf.Flush()
	})
	return SyncHandler(h), nil
}
