// Package wav reads and writes RIFF/WAVE files carrying raw PCM.
package wav

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/mycophonic/sporocarp"
)

// WAV format constants.
const (
	wavFormatPCM        = 1
	wavFormatIEEEFloat  = 3
	wavFormatExtensible = 0xFFFE
)

// GUID for PCM in WAVEFORMATEXTENSIBLE.
//
//nolint:gochecknoglobals
var wavGUIDPCM = [16]byte{
	0x01, 0x00, 0x00, 0x00, 0x00, 0x00, 0x10, 0x00,
	0x80, 0x00, 0x00, 0xaa, 0x00, 0x38, 0x9b, 0x71,
}

var (
	ErrNotWAV          = errors.New("not a WAV file")
	ErrUnsupportedFmt  = errors.New("unsupported WAV format")
	ErrNoFmtChunk      = errors.New("missing fmt chunk")
	ErrNoDataChunk     = errors.New("missing data chunk")
	ErrTruncated       = errors.New("data chunk truncated")
	ErrInvalidBitDepth = errors.New("invalid bit depth")
)

// Stream parses a WAV file and returns a reader over the PCM bytes of its
// data chunk. The chunk list is scanned up front (fmt may follow data), then
// the reader is positioned at the start of the data chunk; sample bytes are
// pulled from the file on demand.
func Stream(rs io.ReadSeeker) (io.Reader, sporocarp.PCMFormat, error) {
	var format sporocarp.PCMFormat

	// Read RIFF header
	var riffHeader [12]byte
	if _, err := io.ReadFull(rs, riffHeader[:]); err != nil {
		return nil, format, fmt.Errorf("reading RIFF header: %w", err)
	}

	if string(riffHeader[0:4]) != "RIFF" || string(riffHeader[8:12]) != "WAVE" {
		return nil, format, ErrNotWAV
	}

	var (
		dataOffset int64
		dataSize   uint32
		dataFound  bool
		fmtFound   bool
	)

	for {
		var chunkHeader [8]byte
		if _, err := io.ReadFull(rs, chunkHeader[:]); err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
				break
			}

			return nil, format, fmt.Errorf("reading chunk header: %w", err)
		}

		chunkID := string(chunkHeader[0:4])
		chunkSize := binary.LittleEndian.Uint32(chunkHeader[4:8])

		switch chunkID {
		case "fmt ":
			if err := parseFmtChunk(rs, chunkSize, &format); err != nil {
				return nil, format, err
			}

			fmtFound = true

		case "data":
			offset, err := rs.Seek(0, io.SeekCurrent)
			if err != nil {
				return nil, format, fmt.Errorf("locating data chunk: %w", err)
			}

			dataOffset = offset
			dataSize = chunkSize
			dataFound = true

			if _, err := rs.Seek(int64(chunkSize), io.SeekCurrent); err != nil {
				return nil, format, fmt.Errorf("skipping data chunk: %w", err)
			}

		default:
			// Skip unknown chunks
			if _, err := rs.Seek(int64(chunkSize), io.SeekCurrent); err != nil {
				return nil, format, fmt.Errorf("skipping chunk %s: %w", chunkID, err)
			}
		}

		// Chunks are word-aligned (pad byte if odd size)
		if chunkSize%2 == 1 {
			if _, err := rs.Seek(1, io.SeekCurrent); err != nil {
				return nil, format, fmt.Errorf("seeking past pad byte: %w", err)
			}
		}
	}

	if !fmtFound {
		return nil, format, ErrNoFmtChunk
	}

	if !dataFound {
		return nil, format, ErrNoDataChunk
	}

	end, err := rs.Seek(0, io.SeekEnd)
	if err != nil {
		return nil, format, fmt.Errorf("measuring file: %w", err)
	}

	if dataOffset+int64(dataSize) > end {
		return nil, format, fmt.Errorf("%w: header declares %d bytes, %d present",
			ErrTruncated, dataSize, end-dataOffset)
	}

	if _, err := rs.Seek(dataOffset, io.SeekStart); err != nil {
		return nil, format, fmt.Errorf("seeking to data chunk: %w", err)
	}

	return io.LimitReader(rs, int64(dataSize)), format, nil
}

func parseFmtChunk(rs io.ReadSeeker, size uint32, format *sporocarp.PCMFormat) error {
	if size < 16 {
		return ErrUnsupportedFmt
	}

	var buf [40]byte // Max size for WAVEFORMATEXTENSIBLE

	toRead := min(size, 40)

	if _, err := io.ReadFull(rs, buf[:toRead]); err != nil {
		return fmt.Errorf("reading fmt chunk: %w", err)
	}

	// Skip remaining bytes if chunk is larger than what we consumed.
	if size > 40 {
		if _, err := rs.Seek(int64(size-40), io.SeekCurrent); err != nil {
			return fmt.Errorf("skipping fmt chunk tail: %w", err)
		}
	}

	audioFormat := binary.LittleEndian.Uint16(buf[0:2])
	channels := binary.LittleEndian.Uint16(buf[2:4])
	sampleRate := binary.LittleEndian.Uint32(buf[4:8])
	bitsPerSample := binary.LittleEndian.Uint16(buf[14:16])

	switch audioFormat {
	case wavFormatPCM:
		// Standard PCM, we're good

	case wavFormatExtensible:
		if size < 40 {
			return ErrUnsupportedFmt
		}
		// SubFormat GUID at buf[24:40]
		var subFormat [16]byte
		copy(subFormat[:], buf[24:40])

		if subFormat != wavGUIDPCM {
			return ErrUnsupportedFmt // Not PCM (could be float, etc.)
		}

	case wavFormatIEEEFloat:
		return ErrUnsupportedFmt

	default:
		return ErrUnsupportedFmt
	}

	if channels == 0 || sampleRate == 0 {
		return fmt.Errorf("%w: %d channel(s) at %d Hz", ErrUnsupportedFmt, channels, sampleRate)
	}

	format.SampleRate = int(sampleRate)
	format.Channels = uint(channels)

	switch bitsPerSample {
	case 16, 24, 32:
		format.BitDepth = sporocarp.BitDepth(bitsPerSample)
	default:
		return fmt.Errorf("%w: %d", ErrInvalidBitDepth, bitsPerSample)
	}

	return nil
}

// Encode writes PCM samples as a canonical 44-byte-header WAV file.
func Encode(w io.Writer, pcm []byte, format sporocarp.PCMFormat) error {
	switch format.BitDepth {
	case 16, 24, 32:
		// Valid
	default:
		return fmt.Errorf("%w: %d (must be 16, 24, or 32)", ErrInvalidBitDepth, format.BitDepth)
	}

	channels := uint16(format.Channels)       //nolint:gosec // channel count is always small positive
	sampleRate := uint32(format.SampleRate)   //nolint:gosec // validated by callers
	bitsPerSample := uint16(format.BitDepth)  //nolint:gosec // validated above
	byteRate := sampleRate * uint32(channels) * uint32(bitsPerSample) / 8
	blockAlign := channels * bitsPerSample / 8
	dataSize := uint32(len(pcm))

	var header [44]byte

	copy(header[0:4], "RIFF")
	binary.LittleEndian.PutUint32(header[4:8], dataSize+36)
	copy(header[8:12], "WAVE")
	copy(header[12:16], "fmt ")
	binary.LittleEndian.PutUint32(header[16:20], 16) // fmt chunk size
	binary.LittleEndian.PutUint16(header[20:22], wavFormatPCM)
	binary.LittleEndian.PutUint16(header[22:24], channels)
	binary.LittleEndian.PutUint32(header[24:28], sampleRate)
	binary.LittleEndian.PutUint32(header[28:32], byteRate)
	binary.LittleEndian.PutUint16(header[32:34], blockAlign)
	binary.LittleEndian.PutUint16(header[34:36], bitsPerSample)
	copy(header[36:40], "data")
	binary.LittleEndian.PutUint32(header[40:44], dataSize)

	if _, err := w.Write(header[:]); err != nil {
		return fmt.Errorf("writing WAV header: %w", err)
	}

	if _, err := w.Write(pcm); err != nil {
		return fmt.Errorf("writing PCM data: %w", err)
	}

	return nil
}
