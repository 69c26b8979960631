package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/lmittmann/tint"
)

type Options struct {
	Level  slog.Level
	Format string
	// FilePath, when set, also writes JSON records to this file.
	FilePath string
	Output   io.Writer
}

// New builds the process logger. The returned closer releases the log file
// and is never nil.
func New(opts Options) (*slog.Logger, io.Closer, error) {
	out := opts.Output
	if out == nil {
		out = os.Stdout
	}

	var console slog.Handler
	switch strings.ToLower(strings.TrimSpace(opts.Format)) {
	case "json":
		console = slog.NewJSONHandler(out, &slog.HandlerOptions{Level: opts.Level, ReplaceAttr: redactPII})
	default:
		console = tint.NewHandler(out, &tint.Options{Level: opts.Level, ReplaceAttr: redactPII})
	}

	path := strings.TrimSpace(opts.FilePath)
	if path == "" {
		return slog.New(console), nopCloser{}, nil
	}

	file, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o640)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open log file: %w", err)
	}
	fileHandler := slog.NewJSONHandler(file, &slog.HandlerOptions{Level: opts.Level, ReplaceAttr: redactPII})
	return slog.New(MultiHandler(console, fileHandler)), file, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
