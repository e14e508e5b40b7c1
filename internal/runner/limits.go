package runner

import "bytes"

// maxStderrBytes caps the diagnostic text kept from a failing analyzer.
const maxStderrBytes = 64 << 10

// boundedBuffer is an io.Writer that keeps at most capBytes and silently
// drops the rest. Writes always report success so the child never sees a
// broken pipe because of the cap.
type boundedBuffer struct {
	buf       bytes.Buffer
	capBytes  int
	truncated bool
}

func newBoundedBuffer(capBytes int) *boundedBuffer {
	return &boundedBuffer{capBytes: capBytes}
}

func (b *boundedBuffer) Write(p []byte) (int, error) {
	remaining := b.capBytes - b.buf.Len()
	if remaining <= 0 {
		if len(p) > 0 {
			b.truncated = true
		}
		return len(p), nil
	}
	if len(p) > remaining {
		_, _ = b.buf.Write(p[:remaining])
		b.truncated = true
		return len(p), nil
	}
	return b.buf.Write(p)
}

// Bytes returns the retained prefix.
func (b *boundedBuffer) Bytes() []byte { return b.buf.Bytes() }

// Len is the number of retained bytes.
func (b *boundedBuffer) Len() int { return b.buf.Len() }

// Truncated reports whether any input was dropped.
func (b *boundedBuffer) Truncated() bool { return b.truncated }
