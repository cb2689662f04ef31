package execrunner

import "bytes"

// boundedWriter keeps the first max bytes written and drops the rest,
// remembering that truncation happened. Downstream steps can emit gigabytes
// on stderr; the artifact only needs the head.
type boundedWriter struct {
	buf       bytes.Buffer
	max       int
	truncated bool
}

func newBoundedWriter(max int) *boundedWriter {
	return &boundedWriter{max: max}
}

func (w *boundedWriter) Write(p []byte) (int, error) {
	n := len(p)

	remain := w.max - w.buf.Len()
	if remain <= 0 {
		if n > 0 {
			w.truncated = true
		}
		return n, nil
	}

	if len(p) > remain {
		p = p[:remain]
		w.truncated = true
	}
	w.buf.Write(p)
	return n, nil
}

func (w *boundedWriter) Bytes() []byte   { return w.buf.Bytes() }
func (w *boundedWriter) Truncated() bool { return w.truncated }
