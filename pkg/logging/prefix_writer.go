package logging

import (
	"bytes"
	"io"
)

// PrefixWriter wraps an io.Writer and writes a prefix in front of each
// complete line. Partial lines are held until their newline arrives.
type PrefixWriter struct {
	prefix  []byte
	writer  io.Writer
	pending bytes.Buffer
}

// NewPrefixWriter creates a new PrefixWriter.
func NewPrefixWriter(prefix string, w io.Writer) *PrefixWriter {
	return &PrefixWriter{
		prefix: []byte(prefix),
		writer: w,
	}
}

// Write implements io.Writer.
func (pw *PrefixWriter) Write(p []byte) (int, error) {
	pw.pending.Write(p)

	for {
		data := pw.pending.Bytes()
		idx := bytes.IndexByte(data, '\n')
		if idx < 0 {
			break
		}
		line := make([]byte, 0, len(pw.prefix)+idx+1)
		line = append(line, pw.prefix...)
		line = append(line, data[:idx+1]...)
		pw.pending.Next(idx + 1)
		if _, err := pw.writer.Write(line); err != nil {
			return 0, err
		}
	}

	return len(p), nil
}

// Flush writes any buffered partial line, prefixed, without a newline.
func (pw *PrefixWriter) Flush() error {
	if pw.pending.Len() == 0 {
		return nil
	}
	line := append(append([]byte{}, pw.prefix...), pw.pending.Bytes()...)
	pw.pending.Reset()
	_, err := pw.writer.Write(line)
	return err
}
