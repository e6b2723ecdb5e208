// Package pcm converts decoded PCM streams into the format the output
// device consumes: interleaved little-endian signed 16-bit, at most two
// channels.
package pcm

import (
	"errors"
	"io"

	"github.com/mycophonic/sporocarp"
)

// deviceChannels is the most channels the output device is opened with.
// Streams with more channels keep their first two (front left/right).
const deviceChannels = 2

// chunkFrames is how many source frames are converted per refill.
const chunkFrames = 4096

// Normalize wraps src so that it delivers s16le PCM at no more than two
// channels, and returns the resulting format. A stream that is already
// 16-bit with one or two channels is passed through untouched.
func Normalize(src io.Reader, format sporocarp.PCMFormat) (io.Reader, sporocarp.PCMFormat) {
	if format.BitDepth == sporocarp.Depth16 && format.Channels <= deviceChannels {
		return src, format
	}

	outChannels := min(format.Channels, deviceChannels)

	out := sporocarp.PCMFormat{
		SampleRate: format.SampleRate,
		BitDepth:   sporocarp.Depth16,
		Channels:   outChannels,
	}

	conv := &converter{
		src:       src,
		srcFormat: format,
		out:       out,
		in:        make([]byte, 0, chunkFrames*format.FrameSize()),
	}

	return conv, out
}

// converter reads whole source frames and rewrites each sample to s16le.
type converter struct {
	src       io.Reader
	srcFormat sporocarp.PCMFormat
	out       sporocarp.PCMFormat
	in        []byte // raw source bytes, possibly ending mid-frame
	buf       []byte // converted bytes not yet delivered
	off       int
	err       error // deferred source error, surfaced after buffered bytes drain
}

func (c *converter) Read(p []byte) (int, error) {
	for c.off == len(c.buf) {
		if c.err != nil {
			return 0, c.err
		}

		c.refill()
	}

	n := copy(p, c.buf[c.off:])
	c.off += n

	return n, nil
}

func (c *converter) refill() {
	frameSize := c.srcFormat.FrameSize()

	want := chunkFrames*frameSize - len(c.in)
	c.in = c.in[:len(c.in)+want]

	readN, readErr := io.ReadFull(c.src, c.in[len(c.in)-want:])
	c.in = c.in[:len(c.in)-want+readN]

	frames := len(c.in) / frameSize
	c.convert(frames)

	// Carry a trailing partial frame over to the next refill.
	rest := copy(c.in, c.in[frames*frameSize:])
	c.in = c.in[:rest]

	if readErr != nil && !errors.Is(readErr, io.ErrUnexpectedEOF) {
		c.err = readErr
	} else if readErr != nil {
		// Source ended; a dangling partial frame is dropped.
		c.err = io.EOF
	}
}

func (c *converter) convert(frames int) {
	srcSampleSize := c.srcFormat.BitDepth.BytesPerSample()
	srcFrameSize := c.srcFormat.FrameSize()
	outFrameSize := c.out.FrameSize()

	if cap(c.buf) < frames*outFrameSize {
		c.buf = make([]byte, frames*outFrameSize)
	} else {
		c.buf = c.buf[:frames*outFrameSize]
	}

	c.off = 0
	pos := 0

	for i := range frames {
		base := i * srcFrameSize

		for ch := range int(c.out.Channels) {
			s := loadSample(c.in[base+ch*srcSampleSize:], srcSampleSize)
			s = rescale(s, c.srcFormat.BitDepth)

			c.buf[pos] = byte(s)
			c.buf[pos+1] = byte(s >> 8)
			pos += 2
		}
	}
}

// loadSample sign-extends a little-endian sample of the given container size.
func loadSample(b []byte, size int) int32 {
	switch size {
	case 1:
		return int32(int8(b[0]))
	case 2:
		return int32(int16(uint16(b[0]) | uint16(b[1])<<8))
	case 3:
		v := int32(b[0]) | int32(b[1])<<8 | int32(b[2])<<16
		if v&0x800000 != 0 {
			v |= -0x1000000 // sign extend
		}

		return v
	default:
		return int32(uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16 | uint32(b[3])<<24) //nolint:gosec
	}
}

// rescale maps a sample at its native depth onto the 16-bit range.
// Depths below 16 shift up, depths above shift down (dropping low bits).
func rescale(s int32, depth sporocarp.BitDepth) int32 {
	if depth < sporocarp.Depth16 {
		return s << (sporocarp.Depth16 - depth)
	}

	return s >> (depth - sporocarp.Depth16)
}
