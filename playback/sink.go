// Package playback feeds a decoded PCM stream to the default audio output
// device and waits for it to drain.
package playback

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/hajimehoshi/oto/v2"

	"github.com/mycophonic/sporocarp"
)

var (
	// ErrDeviceUnavailable is returned when the default output device
	// cannot be acquired or fails mid-stream.
	ErrDeviceUnavailable = errors.New("audio output device unavailable")
	// ErrUnsupportedFormat is returned when the PCM format cannot be
	// played on the device.
	ErrUnsupportedFormat = errors.New("format not playable on output device")
)

// drainPollInterval is how often Wait checks whether the device queue has
// emptied.
const drainPollInterval = 50 * time.Millisecond

// Sink owns the output device session for the lifetime of one playback.
type Sink struct {
	ctx    *oto.Context
	player oto.Player
	format sporocarp.PCMFormat
}

// Open validates the PCM format and acquires the default audio output
// device. The call blocks until the device is ready to accept samples.
func Open(format sporocarp.PCMFormat) (*Sink, error) {
	if format.BitDepth != sporocarp.Depth16 {
		return nil, fmt.Errorf("%w: %d-bit", ErrUnsupportedFormat, format.BitDepth)
	}

	if format.Channels != 1 && format.Channels != 2 {
		return nil, fmt.Errorf("%w: %d channels", ErrUnsupportedFormat, format.Channels)
	}

	if format.SampleRate <= 0 {
		return nil, fmt.Errorf("%w: sample rate %d", ErrUnsupportedFormat, format.SampleRate)
	}

	ctx, ready, err := oto.NewContext(format.SampleRate, int(format.Channels), format.BitDepth.BytesPerSample())
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDeviceUnavailable, err)
	}

	<-ready

	return &Sink{ctx: ctx, format: format}, nil
}

// Format returns the PCM format the device was opened with.
func (s *Sink) Format() sporocarp.PCMFormat {
	return s.format
}

// Play enqueues the stream for playback. The sink takes ownership of the
// stream: it is consumed incrementally by the device and is not replayable.
func (s *Sink) Play(stream io.Reader) {
	s.player = s.ctx.NewPlayer(stream)
	s.player.Play()
}

// Wait blocks the calling goroutine until the enqueued stream has finished
// playing. There is no timeout and no cancellation.
func (s *Sink) Wait() error {
	if s.player == nil {
		return nil
	}

	for s.player.IsPlaying() {
		time.Sleep(drainPollInterval)
	}

	// A wrapped error keeps the source's classification intact: a decode
	// fault surfacing mid-stream stays a decode fault, not a device one.
	if err := s.player.Err(); err != nil {
		return fmt.Errorf("playback: %w", err)
	}

	return nil
}

// Close releases the playback queue. The device context itself has no
// close; it lives until the process exits.
func (s *Sink) Close() error {
	if s.player == nil {
		return nil
	}

	if err := s.player.Close(); err != nil {
		return fmt.Errorf("closing player: %w", err)
	}

	return nil
}
