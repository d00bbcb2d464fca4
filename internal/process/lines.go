// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package process

import (
	"bytes"
	"io"
)

// LineWriter forwards whole lines to W as they complete. Partial lines are
// held until a newline arrives or Flush is called.
type LineWriter struct {
	W   io.Writer
	buf []byte
}

func (l *LineWriter) Write(p []byte) (int, error) {
	l.buf = append(l.buf, p...)
	for {
		i := bytes.IndexByte(l.buf, '\n')
		if i < 0 {
			break
		}
		if _, err := l.W.Write(l.buf[:i+1]); err != nil {
			return len(p), err
		}
		l.buf = l.buf[i+1:]
	}
	return len(p), nil
}

// Flush writes any buffered partial line.
func (l *LineWriter) Flush() error {
	if len(l.buf) == 0 {
		return nil
	}
	_, err := l.W.Write(l.buf)
	l.buf = nil
	return err
}
