package main

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/mycophonic/primordium/fault"

	"github.com/mycophonic/sporocarp/detect"
	"github.com/mycophonic/sporocarp/playback"
)

func TestExitCode(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		err  error
		want int
	}{
		{"invalid_args", fmt.Errorf("%w: got 2", errInvalidArgCount), exitUsage},
		{"open_failure", fmt.Errorf("%w: no such file", errOpenFailure), exitIO},
		{"decode_failure", fmt.Errorf("%w: decoding FLAC: bad frame", errDecodeFailure), exitDecode},
		{"unsupported_format", fmt.Errorf("x.bin: %w", errUnsupportedFormat), exitDecode},
		{"read_failure", fmt.Errorf("%w: short read", fault.ErrReadFailure), exitDecode},
		{"device_unavailable", fmt.Errorf("%w: no backend", playback.ErrDeviceUnavailable), exitDevice},
		{"device_format", fmt.Errorf("%w: 6 channels", playback.ErrUnsupportedFormat), exitDevice},
		{"already_running", errAlreadyRunning, exitFailure},
		{"anything_else", errors.New("boom"), exitFailure},
	}

	for _, testCase := range cases {
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			if got := exitCode(testCase.err); got != testCase.want {
				t.Errorf("exitCode(%v): got %d, want %d", testCase.err, got, testCase.want)
			}
		})
	}
}

func TestOpenStreamUnknownCodec(t *testing.T) {
	t.Parallel()

	_, _, err := openStream(detect.Unknown, nil, "mystery.bin")
	if !errors.Is(err, errUnsupportedFormat) {
		t.Errorf("got error %v, want %v", err, errUnsupportedFormat)
	}

	if exitCode(err) != exitDecode {
		t.Errorf("unknown codec should map to the decode exit code")
	}
}

// TestOpenPlayableShortFile covers a readable file too small to even sniff:
// the open succeeded, so the failure belongs to the decode class.
func TestOpenPlayableShortFile(t *testing.T) {
	t.Parallel()

	tmp := filepath.Join(t.TempDir(), "tiny.txt")
	if err := os.WriteFile(tmp, []byte("hi"), 0o600); err != nil {
		t.Fatal(err)
	}

	file, err := os.Open(tmp)
	if err != nil {
		t.Fatal(err)
	}
	defer file.Close()

	_, _, streamErr := openPlayable(file, tmp)
	if !errors.Is(streamErr, errDecodeFailure) {
		t.Errorf("got error %v, want %v", streamErr, errDecodeFailure)
	}

	if errors.Is(streamErr, errOpenFailure) {
		t.Error("sniff failure must not classify as an open failure")
	}

	if got := exitCode(streamErr); got != exitDecode {
		t.Errorf("exitCode: got %d, want %d", got, exitDecode)
	}
}

func TestOpenStreamCorruptInput(t *testing.T) {
	t.Parallel()

	tmp := filepath.Join(t.TempDir(), "garbage.flac")

	payload := append([]byte("fLaC"), bytes.Repeat([]byte{0xDE, 0xAD}, 64)...)
	if err := os.WriteFile(tmp, payload, 0o600); err != nil {
		t.Fatal(err)
	}

	file, err := os.Open(tmp)
	if err != nil {
		t.Fatal(err)
	}
	defer file.Close()

	_, _, streamErr := openStream(detect.FLAC, file, tmp)
	if !errors.Is(streamErr, errDecodeFailure) {
		t.Errorf("got error %v, want %v", streamErr, errDecodeFailure)
	}
}
