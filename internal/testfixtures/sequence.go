package testfixtures

import (
	"fmt"
	"sync"
)

// Sequence produces deterministic identifiers such as "guest-001".
type Sequence struct {
	mu      sync.Mutex
	prefix  string
	counter uint64
}

// NewSequence returns a sequence using prefix, or "id" when prefix is empty.
func NewSequence(prefix string) *Sequence {
	if prefix == "" {
		prefix = "id"
	}
	return &Sequence{prefix: prefix}
}

// Next returns the next identifier.
func (s *Sequence) Next() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.counter++
	return fmt.Sprintf("%s-%03d", s.prefix, s.counter)
}

// NextFunc exposes Next for injection as an id generator.
func (s *Sequence) NextFunc() func() string {
	if s == nil {
		return func() string { return "" }
	}
	return s.Next
}

// ByteSource is an io.Reader that replays a fixed byte pattern forever. It
// makes random access code draws predictable.
type ByteSource struct {
	mu      sync.Mutex
	pattern []byte
	offset  int
}

// NewByteSource returns a reader cycling through pattern.
func NewByteSource(pattern ...byte) *ByteSource {
	if len(pattern) == 0 {
		pattern = []byte{0}
	}
	return &ByteSource{pattern: pattern}
}

// Read fills p from the pattern.
func (b *ByteSource) Read(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i := range p {
		p[i] = b.pattern[b.offset]
		b.offset = (b.offset + 1) % len(b.pattern)
	}
	return len(p), nil
}
