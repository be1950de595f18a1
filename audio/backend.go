package audio

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"runtime"
	"strconv"

	"github.com/gopxl/beep"
)

// BackendType identifies an external playback tool
type BackendType int

const (
	BackendPulse BackendType = iota
	BackendPipeWire
	BackendALSA
	BackendSoX
	BackendFFplay
	BackendOSS
)

// Backend is a command that plays raw signed 16-bit little-endian PCM from stdin
type Backend struct {
	Type BackendType
	Name string
	Path string
	Args []string
}

var ErrNoAudioBackend = errors.New("no compatible audio backend found")

type candidate struct {
	typ  BackendType
	name string
	bin  string
	args func(rate, channels string) []string
}

// Priority: pacat > pw-cat > aplay > play (sox) > ffplay
var candidates = []candidate{
	{BackendPulse, "pacat", "pacat", func(r, c string) []string {
		return []string{"--raw", "--format=s16le", "--rate=" + r, "--channels=" + c, "--latency-msec=50", "--playback"}
	}},
	{BackendPipeWire, "pw-cat", "pw-cat", func(r, c string) []string {
		return []string{"--playback", "--format=s16", "--rate=" + r, "--channels=" + c, "--latency=50ms", "-"}
	}},
	{BackendALSA, "aplay", "aplay", func(r, c string) []string {
		return []string{"-t", "raw", "-f", "S16_LE", "-r", r, "-c", c, "-q"}
	}},
	{BackendSoX, "sox", "play", func(r, c string) []string {
		return []string{"-t", "raw", "-e", "signed", "-b", "16", "-c", c, "-r", r, "-", "-d", "-q"}
	}},
	{BackendFFplay, "ffplay", "ffplay", func(r, c string) []string {
		return []string{"-nodisp", "-autoexit", "-f", "s16le", "-ac", c, "-ar", r,
			"-probesize", "32", "-analyzeduration", "0", "-i", "pipe:0", "-loglevel", "quiet"}
	}},
}

// DetectBackend finds the first installed playback tool and configures it for format
// On FreeBSD the OSS device is used directly when no tool is found
func DetectBackend(format beep.Format) (*Backend, error) {
	rate := strconv.Itoa(int(format.SampleRate))
	channels := strconv.Itoa(pcmChannels(format))

	for _, c := range candidates {
		if path, err := exec.LookPath(c.bin); err == nil {
			return &Backend{Type: c.typ, Name: c.name, Path: path, Args: c.args(rate, channels)}, nil
		}
	}

	if runtime.GOOS == "freebsd" {
		if _, err := os.Stat("/dev/dsp"); err == nil {
			return &Backend{Type: BackendOSS, Name: "oss", Path: "/dev/dsp"}, nil
		}
	}

	return nil, ErrNoAudioBackend
}

// PlayThrough streams clip to the backend and waits for it to exit
func PlayThrough(b *Backend, clip Clip) error {
	channels := pcmChannels(clip.Format())

	if b.Type == BackendOSS {
		f, err := os.OpenFile(b.Path, os.O_WRONLY, 0)
		if err != nil {
			return fmt.Errorf("failed to open %s: %w", b.Path, err)
		}
		defer f.Close()
		return writePCM16(f, clip.Streamer(), channels)
	}

	cmd := exec.Command(b.Path, b.Args...)
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return fmt.Errorf("failed to open %s stdin: %w", b.Name, err)
	}
	if err := cmd.Start(); err != nil {
		stdin.Close()
		return fmt.Errorf("failed to start %s: %w", b.Name, err)
	}

	writeErr := writePCM16(stdin, clip.Streamer(), channels)
	stdin.Close()
	waitErr := cmd.Wait()

	if writeErr != nil {
		return fmt.Errorf("%s: %w", b.Name, writeErr)
	}
	if waitErr != nil {
		return fmt.Errorf("%s exited: %w", b.Name, waitErr)
	}
	return nil
}

func pcmChannels(format beep.Format) int {
	if format.NumChannels == 1 {
		return 1
	}
	return 2
}

// writePCM16 drains s as interleaved signed 16-bit little-endian frames
// Samples outside [-1, 1] are hard clipped
func writePCM16(w io.Writer, s beep.Streamer, channels int) error {
	samples := make([][2]float64, 512)
	out := make([]byte, len(samples)*channels*2)

	for {
		n, ok := s.Stream(samples)
		if n > 0 {
			idx := 0
			for _, frame := range samples[:n] {
				for ch := 0; ch < channels; ch++ {
					binary.LittleEndian.PutUint16(out[idx:], uint16(toInt16(frame[ch])))
					idx += 2
				}
			}
			if _, err := w.Write(out[:idx]); err != nil {
				return err
			}
		}
		if !ok {
			break
		}
	}
	return s.Err()
}

func toInt16(v float64) int16 {
	if v > 1 {
		v = 1
	} else if v < -1 {
		v = -1
	}
	return int16(v * 32767)
}
