package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/bnema/serverctl/internal/domain"
	"gopkg.in/natefinch/lumberjack.v2"
)

const (
	logDirMode  = 0o700
	logFileName = "srvctl.log"
)

// Options controls where the CLI log goes and how much of it is kept.
type Options struct {
	Dir        string
	Level      string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
}

// New returns a JSON logger writing to a rotating file under opts.Dir. The
// returned closer releases the file; it must be called before exit.
func New(opts Options) (*slog.Logger, io.Closer, error) {
	level, err := domain.ParseLogLevel(opts.Level)
	if err != nil {
		return nil, nil, err
	}

	if strings.TrimSpace(opts.Dir) == "" {
		return Discard(), nopCloser{}, nil
	}

	if err := os.MkdirAll(opts.Dir, logDirMode); err != nil {
		return nil, nil, fmt.Errorf("create log directory: %w", err)
	}

	writer := &lumberjack.Logger{
		Filename:   filepath.Join(opts.Dir, logFileName),
		MaxSize:    valueOr(opts.MaxSizeMB, 10),
		MaxBackups: valueOr(opts.MaxBackups, 3),
		MaxAge:     valueOr(opts.MaxAgeDays, 28),
		Compress:   true,
	}

	handler := slog.NewJSONHandler(writer, &slog.HandlerOptions{Level: level})
	return slog.New(handler), writer, nil
}

func Discard() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func valueOr(value, fallback int) int {
	if value > 0 {
		return value
	}
	return fallback
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
