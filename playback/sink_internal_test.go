package playback

import (
	"testing"

	"github.com/mycophonic/sporocarp"
)

func TestSinkFormat(t *testing.T) {
	t.Parallel()

	format := sporocarp.PCMFormat{SampleRate: 44100, BitDepth: sporocarp.Depth16, Channels: 2}

	sink := &Sink{format: format}
	if sink.Format() != format {
		t.Errorf("Format: got %+v, want %+v", sink.Format(), format)
	}
}

func TestWaitAndCloseBeforePlay(t *testing.T) {
	t.Parallel()

	sink := &Sink{}

	if err := sink.Wait(); err != nil {
		t.Errorf("Wait with nothing enqueued: %v", err)
	}

	if err := sink.Close(); err != nil {
		t.Errorf("Close with nothing enqueued: %v", err)
	}
}
