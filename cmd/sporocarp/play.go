package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
	"github.com/urfave/cli/v3"

	"github.com/mycophonic/primordium/fault"

	"github.com/mycophonic/sporocarp"
	"github.com/mycophonic/sporocarp/detect"
	"github.com/mycophonic/sporocarp/flac"
	"github.com/mycophonic/sporocarp/mp3"
	"github.com/mycophonic/sporocarp/pcm"
	"github.com/mycophonic/sporocarp/playback"
	"github.com/mycophonic/sporocarp/vorbis"
	"github.com/mycophonic/sporocarp/version"
	"github.com/mycophonic/sporocarp/wav"
)

var (
	errInvalidArgCount   = errors.New("expected exactly one argument: file path")
	errAlreadyRunning    = errors.New("another instance is already playing")
	errOpenFailure       = errors.New("cannot open file")
	errDecodeFailure     = errors.New("cannot decode file")
	errUnsupportedFormat = errors.New("unsupported audio format")
)

// Exit codes, one per failure class.
const (
	exitFailure = 1
	exitUsage   = 2
	exitIO      = 3
	exitDecode  = 4
	exitDevice  = 5
)

// exitCode maps a pipeline error onto the exit code of its failure class.
func exitCode(err error) int {
	switch {
	case errors.Is(err, errInvalidArgCount):
		return exitUsage
	case errors.Is(err, errOpenFailure):
		return exitIO
	case errors.Is(err, errDecodeFailure),
		errors.Is(err, errUnsupportedFormat),
		errors.Is(err, fault.ErrReadFailure):
		return exitDecode
	case errors.Is(err, playback.ErrDeviceUnavailable),
		errors.Is(err, playback.ErrUnsupportedFormat):
		return exitDevice
	default:
		return exitFailure
	}
}

func runPlay(_ context.Context, cmd *cli.Command) error {
	if cmd.NArg() != 1 {
		return fmt.Errorf("%w: got %d", errInvalidArgCount, cmd.NArg())
	}

	path := cmd.Args().First()

	lock := flock.New(filepath.Join(os.TempDir(), version.Name()+".lock"))

	held, err := lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquiring instance lock: %w", err)
	}

	if !held {
		return errAlreadyRunning
	}
	defer func() { _ = lock.Unlock() }()

	file, err := os.Open(path) //nolint:gosec // CLI tool opens user-specified audio files
	if err != nil {
		return fmt.Errorf("%w: %w", errOpenFailure, err)
	}
	defer file.Close()

	stream, format, err := openPlayable(file, path)
	if err != nil {
		return err
	}

	device, deviceFormat := pcm.Normalize(stream, format)

	_, _ = fmt.Fprintf(os.Stderr, "%s: %s, %s\n", path, codec, format)

	sink, err := playback.Open(deviceFormat)
	if err != nil {
		return err
	}
	defer sink.Close()

	if deviceFormat != format {
		_, _ = fmt.Fprintf(os.Stderr, "playing as %s\n", sink.Format())
	}

	sink.Play(device)

	return sink.Wait()
}

// openPlayable sniffs the file's codec and builds its lazy PCM stream.
// The file is already open, so a sniff failure is content trouble, not an
// IO failure: it classifies as a decode error.
func openPlayable(file *os.File, path string) (io.Reader, sporocarp.PCMFormat, error) {
	codec, err := detect.Identify(file)
	if err != nil {
		return nil, sporocarp.PCMFormat{}, fmt.Errorf("%w: %s: %w", errDecodeFailure, path, err)
	}

	return openStream(codec, file, path)
}

type streamFunc func(io.ReadSeeker) (io.Reader, sporocarp.PCMFormat, error)

// openStream dispatches on the detected codec and returns the lazy PCM
// stream, wrapping any construction failure as a decode error.
func openStream(codec detect.Codec, file *os.File, path string) (io.Reader, sporocarp.PCMFormat, error) {
	var open streamFunc

	switch codec {
	case detect.FLAC:
		open = flac.Stream
	case detect.MP3:
		open = mp3.Stream
	case detect.Vorbis:
		open = vorbis.Stream
	case detect.WAV:
		open = wav.Stream
	case detect.MP4:
		return nil, sporocarp.PCMFormat{},
			fmt.Errorf("%s: %s: %w", path, detect.DescribeMP4(file), errUnsupportedFormat)
	case detect.Unknown:
		return nil, sporocarp.PCMFormat{}, fmt.Errorf("%s: %w", path, errUnsupportedFormat)
	default:
		return nil, sporocarp.PCMFormat{}, fmt.Errorf("%s: %w", path, errUnsupportedFormat)
	}

	stream, format, err := open(file)
	if err != nil {
		return nil, sporocarp.PCMFormat{}, fmt.Errorf("%w: decoding %s: %w", errDecodeFailure, codec, err)
	}

	return stream, format, nil
}
