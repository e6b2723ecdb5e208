// Package flac adapts a FLAC stream into lazily decoded raw PCM.
package flac

import (
	"errors"
	"fmt"
	"io"

	goflac "github.com/mewkiz/flac"
	"github.com/mewkiz/flac/frame"

	"github.com/mycophonic/primordium/fault"

	"github.com/mycophonic/sporocarp"
)

// ErrBitDepth is returned when a FLAC stream has an unsupported bit depth.
var ErrBitDepth = errors.New("unsupported bit depth")

// Stream opens a FLAC stream and returns a reader producing interleaved
// little-endian signed PCM bytes, decoded one FLAC frame at a time as the
// consumer pulls. Native bit depth is preserved (16-bit FLAC produces s16le,
// 24-bit produces s24le, etc.). The returned reader is not restartable.
func Stream(rs io.ReadSeeker) (io.Reader, sporocarp.PCMFormat, error) {
	stream, err := goflac.New(rs)
	if err != nil {
		return nil, sporocarp.PCMFormat{}, fmt.Errorf("%w: %w", fault.ErrReadFailure, err)
	}

	info := stream.Info

	bitDepth, err := sporocarp.ToBitDepth(info.BitsPerSample)
	if err != nil {
		return nil, sporocarp.PCMFormat{}, fmt.Errorf("%w: %w", ErrBitDepth, err)
	}

	format := sporocarp.PCMFormat{
		SampleRate: int(info.SampleRate),
		BitDepth:   bitDepth,
		Channels:   uint(info.NChannels),
	}

	return &reader{stream: stream, format: format}, format, nil
}

// reader pulls one FLAC frame per refill and serves its interleaved bytes.
type reader struct {
	stream *goflac.Stream
	format sporocarp.PCMFormat
	buf    []byte // interleaved bytes of the current frame, not yet delivered
	off    int
	done   bool
}

func (r *reader) Read(p []byte) (int, error) {
	for r.off == len(r.buf) {
		if r.done {
			return 0, io.EOF
		}

		if err := r.refill(); err != nil {
			return 0, err
		}
	}

	n := copy(p, r.buf[r.off:])
	r.off += n

	return n, nil
}

func (r *reader) refill() error {
	audioFrame, err := r.stream.ParseNext()
	if errors.Is(err, io.EOF) {
		r.done = true
		_ = r.stream.Close()

		return nil
	}

	if err != nil {
		r.done = true
		_ = r.stream.Close()

		return fmt.Errorf("%w: %w", fault.ErrReadFailure, err)
	}

	blockSize := int(audioFrame.BlockSize)
	nChannels := int(r.format.Channels)
	frameBytes := blockSize * nChannels * r.format.BitDepth.BytesPerSample()

	if cap(r.buf) < frameBytes {
		r.buf = make([]byte, frameBytes)
	} else {
		r.buf = r.buf[:frameBytes]
	}

	r.off = 0
	interleave(r.buf, audioFrame.Subframes, blockSize, nChannels, r.format.BitDepth)

	return nil
}

// interleave writes decoded subframe samples into dst as interleaved little-endian signed PCM.
func interleave(dst []byte, subframes []*frame.Subframe, blockSize, nChannels int, depth sporocarp.BitDepth) {
	pos := 0

	switch depth {
	case sporocarp.Depth4, sporocarp.Depth8:
		// 4-bit sign-extended to 8-bit, 8-bit native. Both stored as 1 byte.
		for i := range blockSize {
			for ch := range nChannels {
				dst[pos] = byte(int8(subframes[ch].Samples[i])) //nolint:gosec // Intentional int32-to-int8 truncation.
				pos++
			}
		}
	case sporocarp.Depth12, sporocarp.Depth16:
		// 12-bit sign-extended to 16-bit, 16-bit native. Both stored as 2 bytes LE.
		if nChannels == 2 {
			left := subframes[0].Samples
			right := subframes[1].Samples

			for i := range blockSize {
				l := left[i]
				r := right[i]
				dst[pos] = byte(l)
				dst[pos+1] = byte(l >> 8)
				dst[pos+2] = byte(r)
				dst[pos+3] = byte(r >> 8)
				pos += 4
			}
		} else {
			for i := range blockSize {
				for ch := range nChannels {
					s := subframes[ch].Samples[i]
					dst[pos] = byte(s)
					dst[pos+1] = byte(s >> 8)
					pos += 2
				}
			}
		}
	case sporocarp.Depth20, sporocarp.Depth24:
		// 20-bit sign-extended to 24-bit, 24-bit native. Both stored as 3 bytes LE.
		for i := range blockSize {
			for ch := range nChannels {
				s := subframes[ch].Samples[i]
				dst[pos] = byte(s)
				dst[pos+1] = byte(s >> 8)
				dst[pos+2] = byte(s >> 16)
				pos += 3
			}
		}
	case sporocarp.Depth32:
		for i := range blockSize {
			for ch := range nChannels {
				s := subframes[ch].Samples[i]
				dst[pos] = byte(s)
				dst[pos+1] = byte(s >> 8)
				dst[pos+2] = byte(s >> 16)
				dst[pos+3] = byte(s >> 24)
				pos += 4
			}
		}
	default:
		panic(fmt.Sprintf("flac: interleave called with unsupported bit depth %d", depth))
	}
}
