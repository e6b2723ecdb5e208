package detect

import (
	"fmt"
	"io"
	"strings"

	"github.com/abema/go-mp4"
)

// DescribeMP4 probes an MP4/M4A container and returns a short description of
// its contents, for use in diagnostics when the payload cannot be played.
// The reader position is reset to the start before returning.
func DescribeMP4(reader io.ReadSeeker) string {
	info, probeErr := mp4.Probe(reader)

	_, _ = reader.Seek(0, io.SeekStart)

	if probeErr != nil {
		return "MP4/M4A container"
	}

	brand := strings.TrimSpace(string(info.MajorBrand[:]))

	for _, track := range info.Tracks {
		if track.Codec == mp4.CodecMP4A {
			return fmt.Sprintf("MP4/M4A container (%s brand, mp4a audio track)", brand)
		}
	}

	return fmt.Sprintf("MP4/M4A container (%s brand, %d track(s))", brand, len(info.Tracks))
}
