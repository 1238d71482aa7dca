package helpers

import (
	"bytes"
	"io"
)

// PrefixWriter is an io.Writer that adds a prefix to each line. Incomplete
// lines are buffered until a newline arrives, so the prefix only ever appears
// at the start of a line. Used when interleaving log streams from multiple
// stack services.
type PrefixWriter struct {
	writer io.Writer
	prefix []byte
	buf    bytes.Buffer
}

func NewPrefixWriter(writer io.Writer, prefix string) *PrefixWriter {
	return &PrefixWriter{
		writer: writer,
		prefix: []byte(prefix),
	}
}

func (pw *PrefixWriter) Write(p []byte) (n int, err error) {
	pw.buf.Write(p)

	for {
		line, err := pw.buf.ReadBytes('\n')
		if err != nil {
			if err == io.EOF {
				// Put the incomplete tail back and wait for more data.
				pw.buf.Write(line)
				break
			}
			return n, err
		}

		if _, wErr := pw.writer.Write(pw.prefix); wErr != nil {
			return n, wErr
		}
		if _, wErr := pw.writer.Write(line); wErr != nil {
			return n, wErr
		}
	}

	return len(p), nil
}
