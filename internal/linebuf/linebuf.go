package linebuf

import "bytes"

var crlf = []byte("\r\n")

// Buffer accumulates a single line byte by byte. It never grows past the maximal size,
// so a peer can't make us allocate arbitrary amounts of memory by omitting the terminator.
type Buffer struct {
	memory  []byte
	maxSize int
}

func New(initialSize, maxSize int) *Buffer {
	return &Buffer{
		memory:  make([]byte, 0, min(initialSize, maxSize)),
		maxSize: maxSize,
	}
}

// AppendByte writes a single byte, checking whether it won't exceed the limit.
func (b *Buffer) AppendByte(c byte) (ok bool) {
	if len(b.memory)+1 > b.maxSize {
		return false
	}

	b.memory = append(b.memory, c)
	return true
}

// Limit changes the maximal size. It's applied starting from the next appended byte.
func (b *Buffer) Limit(maxSize int) {
	b.maxSize = maxSize
}

// Len returns the number of accumulated bytes, terminator included.
func (b *Buffer) Len() int {
	return len(b.memory)
}

// Cap returns the capacity of the memory, that is how long a line may get without
// re-allocating.
func (b *Buffer) Cap() int {
	return cap(b.memory)
}

// Line returns the accumulated line without its terminator. The terminator is determined
// by matching the suffix: CRLF strips two bytes, a bare LF strips one. The returned slice
// is valid until the next Reset.
func (b *Buffer) Line() []byte {
	line := b.memory
	if bytes.HasSuffix(line, crlf) {
		return line[:len(line)-len(crlf)]
	}

	if n := len(line); n > 0 && line[n-1] == '\n' {
		return line[:n-1]
	}

	return line
}

// Reset just resets the pointer, so the old line may be overridden by the new one.
func (b *Buffer) Reset() {
	b.memory = b.memory[:0]
}
