package audio

import (
	"time"

	"github.com/gopxl/beep"
)

// Output defaults
const (
	DefaultSampleRate  = beep.SampleRate(44100)
	DefaultNumChannels = 2
	DefaultPrecision   = 2 // 16-bit

	resampleQuality = 4
)

// DefaultFormat is 44.1kHz stereo 16-bit
func DefaultFormat() beep.Format {
	return beep.Format{
		SampleRate:  DefaultSampleRate,
		NumChannels: DefaultNumChannels,
		Precision:   DefaultPrecision,
	}
}

// Clip is a decoded, in-memory piece of audio
// The zero value is an empty clip in DefaultFormat
type Clip struct {
	buf *beep.Buffer
}

// Empty returns a zero-duration clip
func Empty(format beep.Format) Clip {
	return Clip{buf: beep.NewBuffer(format)}
}

// FromStreamer buffers s in full, resampling to format's rate when needed
func FromStreamer(s beep.Streamer, from beep.SampleRate, format beep.Format) (Clip, error) {
	buf := beep.NewBuffer(format)
	src := conform(s, from, format.SampleRate)
	buf.Append(src)
	if err := src.Err(); err != nil {
		return Clip{}, err
	}
	return Clip{buf: buf}, nil
}

// Len returns the number of samples
func (c Clip) Len() int {
	if c.buf == nil {
		return 0
	}
	return c.buf.Len()
}

// IsEmpty reports a zero-duration clip
func (c Clip) IsEmpty() bool {
	return c.Len() == 0
}

// Format returns the sample format the clip is stored in
func (c Clip) Format() beep.Format {
	if c.buf == nil {
		return DefaultFormat()
	}
	return c.buf.Format()
}

// Duration returns the playback length
func (c Clip) Duration() time.Duration {
	return c.Format().SampleRate.D(c.Len())
}

// Streamer returns a fresh seekable stream over the whole clip
func (c Clip) Streamer() beep.StreamSeeker {
	if c.buf == nil {
		return beep.NewBuffer(DefaultFormat()).Streamer(0, 0)
	}
	return c.buf.Streamer(0, c.buf.Len())
}

// Assemble concatenates clips in order with no gap or cross-fade
// Clips stored at another sample rate are resampled to format
func Assemble(format beep.Format, clips ...Clip) Clip {
	streamers := make([]beep.Streamer, 0, len(clips))
	for _, c := range clips {
		if c.IsEmpty() {
			continue
		}
		streamers = append(streamers, conform(c.Streamer(), c.Format().SampleRate, format.SampleRate))
	}

	buf := beep.NewBuffer(format)
	if len(streamers) > 0 {
		buf.Append(beep.Seq(streamers...))
	}
	return Clip{buf: buf}
}

// conform wraps s in a resampler when the rates differ
func conform(s beep.Streamer, from, to beep.SampleRate) beep.Streamer {
	if from == to || from <= 0 || to <= 0 {
		return s
	}
	return beep.Resample(resampleQuality, from, to, s)
}
