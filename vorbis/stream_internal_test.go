package vorbis

import (
	"encoding/binary"
	"errors"
	"io"
	"testing"

	"github.com/mycophonic/primordium/fault"
)

type stubSource struct {
	err error
}

func (s *stubSource) Read([]float32) (int, error) {
	return 0, s.err
}

// Mid-stream decoder failures surface through the output sink, so they must
// stay classified as decode faults.
func TestReaderTagsMidStreamErrors(t *testing.T) {
	t.Parallel()

	r := &reader{src: &stubSource{err: errors.New("corrupt page")}, samples: make([]float32, 16)}

	if _, err := r.Read(make([]byte, 4)); !errors.Is(err, fault.ErrReadFailure) {
		t.Errorf("error not classified as read failure: %v", err)
	}
}

func TestReaderPassesEOFUntouched(t *testing.T) {
	t.Parallel()

	r := &reader{src: &stubSource{err: io.EOF}, samples: make([]float32, 16)}

	if _, err := r.Read(make([]byte, 4)); !errors.Is(err, io.EOF) || errors.Is(err, fault.ErrReadFailure) {
		t.Errorf("end of stream must stay a plain EOF, got: %v", err)
	}
}

// tailSource delivers one last sample together with EOF.
type tailSource struct {
	done bool
}

func (s *tailSource) Read(p []float32) (int, error) {
	if s.done {
		return 0, io.EOF
	}

	s.done = true
	p[0] = 1.0

	return 1, io.EOF
}

// Samples delivered alongside the terminal error are played before EOF is
// surfaced.
func TestReaderDrainsBeforeEOF(t *testing.T) {
	t.Parallel()

	r := &reader{src: &tailSource{}, samples: make([]float32, 16)}

	buf := make([]byte, 4)

	n, err := r.Read(buf)
	if err != nil {
		t.Fatalf("first read: %v", err)
	}

	if n != 2 {
		t.Fatalf("first read: got %d bytes, want 2", n)
	}

	if got := int16(binary.LittleEndian.Uint16(buf)); got != 0x7FFF {
		t.Errorf("sample: got %#x, want 0x7fff", got)
	}

	if _, err := r.Read(buf); !errors.Is(err, io.EOF) {
		t.Errorf("second read: got %v, want EOF", err)
	}
}
