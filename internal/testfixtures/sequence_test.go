package testfixtures

import (
	"io"
	"testing"
)

func TestSequenceProducesPaddedIDs(t *testing.T) {
	seq := NewSequence("guest")

	if first, second := seq.Next(), seq.Next(); first != "guest-001" || second != "guest-002" {
		t.Fatalf("unexpected identifiers: %q, %q", first, second)
	}
}

func TestByteSourceCycles(t *testing.T) {
	src := NewByteSource(1, 2, 3)
	buf := make([]byte, 7)
	if _, err := io.ReadFull(src, buf); err != nil {
		t.Fatalf("read: %v", err)
	}
	want := []byte{1, 2, 3, 1, 2, 3, 1}
	for i := range want {
		if buf[i] != want[i] {
			t.Fatalf("buf = %v, want %v", buf, want)
		}
	}
}
