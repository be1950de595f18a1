package audio

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/flac"
	"github.com/gopxl/beep/mp3"
	"github.com/gopxl/beep/vorbis"
	"github.com/gopxl/beep/wav"
)

// Sentinel errors
var (
	ErrUnsupportedFormat = errors.New("unsupported audio format")
)

type decodeFunc func(f *os.File) (beep.StreamSeekCloser, beep.Format, error)

var (
	decodeWAV    decodeFunc = func(f *os.File) (beep.StreamSeekCloser, beep.Format, error) { return wav.Decode(f) }
	decodeMP3    decodeFunc = func(f *os.File) (beep.StreamSeekCloser, beep.Format, error) { return mp3.Decode(f) }
	decodeFLAC   decodeFunc = func(f *os.File) (beep.StreamSeekCloser, beep.Format, error) { return flac.Decode(f) }
	decodeVorbis decodeFunc = func(f *os.File) (beep.StreamSeekCloser, beep.Format, error) { return vorbis.Decode(f) }
)

// decoders keyed by lowercase file extension, used when the header is not recognized
var decoders = map[string]decodeFunc{
	".wav":  decodeWAV,
	".wave": decodeWAV,
	".mp3":  decodeMP3,
	".flac": decodeFLAC,
	".ogg":  decodeVorbis,
}

// headerSize covers the longest signature checked by sniff
const headerSize = 12

// sniff picks a decoder from the leading bytes of a file
func sniff(header []byte) (decodeFunc, bool) {
	switch {
	case len(header) >= 12 && bytes.Equal(header[:4], []byte("RIFF")) && bytes.Equal(header[8:12], []byte("WAVE")):
		return decodeWAV, true
	case bytes.HasPrefix(header, []byte("fLaC")):
		return decodeFLAC, true
	case bytes.HasPrefix(header, []byte("OggS")):
		return decodeVorbis, true
	case bytes.HasPrefix(header, []byte("ID3")):
		return decodeMP3, true
	case len(header) >= 2 && header[0] == 0xFF && header[1]&0xE0 == 0xE0:
		// MPEG audio frame sync
		return decodeMP3, true
	}
	return nil, false
}

// decoderFor chooses by content first and falls back to the extension
func decoderFor(f *os.File) (decodeFunc, error) {
	header := make([]byte, headerSize)
	n, err := io.ReadFull(f, header)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return nil, err
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return nil, err
	}

	if decode, ok := sniff(header[:n]); ok {
		return decode, nil
	}
	if decode, ok := decoders[strings.ToLower(filepath.Ext(f.Name()))]; ok {
		return decode, nil
	}
	return nil, fmt.Errorf("%w: %s is not WAV, MP3, FLAC or Ogg Vorbis", ErrUnsupportedFormat, f.Name())
}

// LoadFile decodes a whole file into memory in the target format
// The decoder is picked from the file header, then the extension
// The file and decoder are closed before returning, on success or failure
func LoadFile(path string, format beep.Format) (Clip, error) {
	f, err := os.Open(path)
	if err != nil {
		return Clip{}, err
	}
	defer f.Close()

	decode, err := decoderFor(f)
	if err != nil {
		return Clip{}, err
	}

	streamer, srcFormat, err := decode(f)
	if err != nil {
		return Clip{}, fmt.Errorf("failed to decode %s: %w", path, err)
	}
	defer streamer.Close()

	clip, err := FromStreamer(streamer, srcFormat.SampleRate, format)
	if err != nil {
		return Clip{}, fmt.Errorf("failed to read samples from %s: %w", path, err)
	}
	return clip, nil
}
