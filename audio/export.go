package audio

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"
	"github.com/gopxl/beep/wav"
)

// Export container kinds
const (
	KindWAV = "wav"
)

// Export writes clip to path, all-or-nothing
// The encoded stream goes to a temporary sibling which is renamed into place
// only after a complete write; a failed export leaves no file at path
func Export(clip Clip, path, kind string) error {
	switch strings.ToLower(kind) {
	case "", KindWAV:
	default:
		return fmt.Errorf("%w: %q", ErrUnsupportedFormat, kind)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file in %s: %w", dir, err)
	}
	tmpPath := tmp.Name()

	if err := wav.Encode(tmp, clip.Streamer(), clip.Format()); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("failed to encode %s: %w", path, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("failed to flush %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to close %s: %w", path, err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to move output into %s: %w", path, err)
	}
	return nil
}

// ApplyGain scales the amplitude of clip by a linear factor
// 1 returns the clip unchanged, 0 or below silences it
func ApplyGain(clip Clip, gain float64) Clip {
	if gain == 1 || clip.IsEmpty() {
		return clip
	}

	buf := beep.NewBuffer(clip.Format())
	buf.Append(newVolume(clip.Streamer(), gain))
	return Clip{buf: buf}
}

// newVolume maps a linear factor onto a base-2 volume effect
// math.Log2(0) is -Inf, so 0 volume is handled as silent
func newVolume(s beep.Streamer, vol float64) beep.Streamer {
	if vol <= 0 {
		return &effects.Volume{Streamer: s, Base: 2, Volume: 0, Silent: true}
	}
	return &effects.Volume{Streamer: s, Base: 2, Volume: math.Log2(vol), Silent: false}
}
