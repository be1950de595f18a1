package audio

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/speaker"
)

// speakerBuffer is the device buffer length
const speakerBuffer = 100 * time.Millisecond

// playMu serializes access to the process-wide speaker
var playMu sync.Mutex

// Play sends clip to the default output device and blocks until it has finished
// When the device cannot be opened, an installed command-line player is used instead
func Play(clip Clip) error {
	if clip.IsEmpty() {
		return nil
	}

	playMu.Lock()
	defer playMu.Unlock()

	rate := clip.Format().SampleRate
	if err := speaker.Init(rate, rate.N(speakerBuffer)); err != nil {
		backend, detectErr := DetectBackend(clip.Format())
		if detectErr != nil {
			return fmt.Errorf("failed to initialize speaker: %w", err)
		}
		slog.Debug("speaker unavailable, piping to external player", "player", backend.Name, "error", err)
		return PlayThrough(backend, clip)
	}
	defer speaker.Close()

	done := make(chan struct{})
	speaker.Play(beep.Seq(clip.Streamer(), beep.Callback(func() {
		close(done)
	})))
	<-done
	return nil
}
