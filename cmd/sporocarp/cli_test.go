package main

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/containerd/nerdctl/mod/tigron/test"

	"github.com/mycophonic/agar/pkg/agar"
)

func projectRoot() string {
	_, thisFile, _, _ := runtime.Caller(0) //nolint:dogsled // runtime.Caller returns 4 values, only file is needed

	return filepath.Dir(filepath.Dir(filepath.Dir(thisFile)))
}

// binaryPath returns the absolute path to the sporocarp binary.
func binaryPath() string {
	return filepath.Join(projectRoot(), "bin", "sporocarp")
}

// TestCLIFailures drives the built binary through every failure class that
// does not require an audio device. Successful-playback scenarios need
// hardware and are exercised manually.
func TestCLIFailures(t *testing.T) {
	if _, err := os.Stat(binaryPath()); err != nil {
		t.Skipf("binary not built: %v", err)
	}

	testCase := agar.Setup(binaryPath())
	testCase.Description = "failure exit codes and messages"

	testCase.SubTests = []*test.Case{
		{
			Description: "no arguments",
			Command: func(_ test.Data, helpers test.Helpers) test.TestableCommand {
				return helpers.Command()
			},
			Expected: func(_ test.Data, _ test.Helpers) *test.Expected {
				return &test.Expected{
					ExitCode: exitUsage,
					Errors:   []error{errors.New("expected exactly one argument")},
				}
			},
		},
		{
			Description: "two arguments",
			Command: func(_ test.Data, helpers test.Helpers) test.TestableCommand {
				return helpers.Command("a.mp3", "b.mp3")
			},
			Expected: func(_ test.Data, _ test.Helpers) *test.Expected {
				return &test.Expected{
					ExitCode: exitUsage,
					Errors:   []error{errors.New("expected exactly one argument")},
				}
			},
		},
		{
			Description: "missing file",
			Command: func(data test.Data, helpers test.Helpers) test.TestableCommand {
				return helpers.Command(data.Temp().Path("does-not-exist.mp3"))
			},
			Expected: func(_ test.Data, _ test.Helpers) *test.Expected {
				return &test.Expected{
					ExitCode: exitIO,
					Errors:   []error{errors.New("cannot open file")},
				}
			},
		},
		{
			Description: "unrecognized content",
			Setup: func(data test.Data, _ test.Helpers) {
				path := data.Temp().Path("garbage.mp3")
				_ = os.WriteFile(path, []byte("this is not audio data at all"), 0o600)
			},
			Command: func(data test.Data, helpers test.Helpers) test.TestableCommand {
				return helpers.Command(data.Temp().Path("garbage.mp3"))
			},
			Expected: func(_ test.Data, _ test.Helpers) *test.Expected {
				return &test.Expected{
					ExitCode: exitDecode,
					Errors:   []error{errors.New("unsupported audio format")},
				}
			},
		},
		{
			Description: "truncated wav",
			Setup: func(data test.Data, _ test.Helpers) {
				path := data.Temp().Path("corrupt.wav")
				_ = os.WriteFile(path, []byte("RIFF\x24\x00\x00\x00WAVE"), 0o600)
			},
			Command: func(data test.Data, helpers test.Helpers) test.TestableCommand {
				return helpers.Command(data.Temp().Path("corrupt.wav"))
			},
			Expected: func(_ test.Data, _ test.Helpers) *test.Expected {
				return &test.Expected{
					ExitCode: exitDecode,
					Errors:   []error{errors.New("cannot decode file")},
				}
			},
		},
	}

	testCase.Run(t)
}
