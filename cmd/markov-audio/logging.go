package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"
)

const (
	logDir      = "logs"
	logFileName = "markov-audio.log"
	maxLogSize  = 10 * 1024 * 1024 // Rotate beyond 10MB
)

// logLevel is shared by every handler so config can lower or raise it after setup
var logLevel = new(slog.LevelVar)

// setupLogging installs the default slog logger
// Without debug, warnings and errors go to stderr and nil is returned.
// With debug, records are mirrored into logs/markov-audio.log; the caller closes the file.
func setupLogging(debug bool) *os.File {
	var out io.Writer = os.Stderr
	var file *os.File

	logLevel.Set(slog.LevelWarn)
	if debug {
		logLevel.Set(slog.LevelDebug)

		f, err := openLogFile()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to open log file, logging to stderr only: %v\n", err)
		} else {
			file = f
			out = io.MultiWriter(os.Stderr, f)
		}
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(out, &slog.HandlerOptions{Level: logLevel})))
	return file
}

// openLogFile rotates an oversized log aside and opens a fresh one for append
func openLogFile() (*os.File, error) {
	if err := os.MkdirAll(logDir, 0755); err != nil {
		return nil, err
	}

	logPath := filepath.Join(logDir, logFileName)
	if info, err := os.Stat(logPath); err == nil && info.Size() > maxLogSize {
		stamp := time.Now().Format("20060102-150405")
		rotated := filepath.Join(logDir, fmt.Sprintf("markov-audio-%s.log", stamp))
		if err := os.Rename(logPath, rotated); err != nil {
			return nil, err
		}
	}

	return os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
}
