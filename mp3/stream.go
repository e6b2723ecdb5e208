// Package mp3 adapts an MP3 stream into lazily decoded raw PCM using a
// pure-Go decoder.
package mp3

import (
	"errors"
	"fmt"
	"io"

	gomp3 "github.com/hajimehoshi/go-mp3"

	"github.com/mycophonic/primordium/fault"

	"github.com/mycophonic/sporocarp"
)

const channels = 2 // go-mp3 always decodes to stereo

// Stream opens an MP3 stream and returns a reader producing interleaved
// little-endian signed 16-bit PCM bytes, decoded on demand. The output is
// always stereo (2 channels) at the source sample rate.
func Stream(rs io.ReadSeeker) (io.Reader, sporocarp.PCMFormat, error) {
	decoder, err := gomp3.NewDecoder(rs)
	if err != nil {
		return nil, sporocarp.PCMFormat{}, fmt.Errorf("creating mp3 decoder: %w", err)
	}

	format := sporocarp.PCMFormat{
		SampleRate: decoder.SampleRate(),
		BitDepth:   sporocarp.Depth16,
		Channels:   channels,
	}

	// The decoder is itself a lazy PCM reader; the wrapper only tags its
	// mid-stream failures as decode faults.
	return &reader{src: decoder}, format, nil
}

type reader struct {
	src io.Reader
}

func (r *reader) Read(p []byte) (int, error) {
	n, err := r.src.Read(p)
	if err != nil && !errors.Is(err, io.EOF) {
		return n, fmt.Errorf("%w: decoding mp3: %w", fault.ErrReadFailure, err)
	}

	return n, err
}
