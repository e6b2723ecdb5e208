// Package vorbis adapts an Ogg Vorbis stream into lazily decoded raw PCM.
package vorbis

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/jfreymuth/oggvorbis"

	"github.com/mycophonic/primordium/fault"

	"github.com/mycophonic/sporocarp"
)

// chunkSamples is how many float32 samples are pulled from the vorbis
// decoder per refill.
const chunkSamples = 8192

// Stream opens an Ogg Vorbis stream and returns a reader producing
// interleaved little-endian signed 16-bit PCM bytes, decoded on demand.
func Stream(rs io.ReadSeeker) (io.Reader, sporocarp.PCMFormat, error) {
	src, err := oggvorbis.NewReader(rs)
	if err != nil {
		return nil, sporocarp.PCMFormat{}, fmt.Errorf("creating vorbis decoder: %w", err)
	}

	format := sporocarp.PCMFormat{
		SampleRate: src.SampleRate(),
		BitDepth:   sporocarp.Depth16,
		Channels:   uint(src.Channels()), //nolint:gosec // channel count is always small positive
	}

	return &reader{src: src, samples: make([]float32, chunkSamples)}, format, nil
}

// sampleReader is the slice of the oggvorbis decoder the reader pulls from.
type sampleReader interface {
	Read(p []float32) (int, error)
}

type reader struct {
	src     sampleReader
	samples []float32
	buf     []byte // converted bytes not yet delivered
	off     int
	err     error // deferred decode error, surfaced after buffered bytes drain
}

func (r *reader) Read(p []byte) (int, error) {
	for r.off == len(r.buf) {
		if r.err != nil {
			return 0, r.err
		}

		r.refill()
	}

	n := copy(p, r.buf[r.off:])
	r.off += n

	return n, nil
}

func (r *reader) refill() {
	readN, readErr := r.src.Read(r.samples)

	if cap(r.buf) < readN*2 {
		r.buf = make([]byte, readN*2)
	} else {
		r.buf = r.buf[:readN*2]
	}

	r.off = 0

	for i, s := range r.samples[:readN] {
		scaled := math.Round(float64(s) * math.MaxInt16)
		scaled = max(math.MinInt16, min(math.MaxInt16, scaled))

		binary.LittleEndian.PutUint16(r.buf[i*2:], uint16(int16(scaled))) //nolint:gosec // clamped to int16 range
	}

	if readErr != nil {
		if errors.Is(readErr, io.EOF) {
			r.err = io.EOF
		} else {
			r.err = fmt.Errorf("%w: decoding vorbis: %w", fault.ErrReadFailure, readErr)
		}
	}
}
