package domain

import (
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"
)

type StorageBackend string

const (
	StorageBackendChain  StorageBackend = "chain"
	StorageBackendFile   StorageBackend = "file"
	StorageBackendPass   StorageBackend = "pass"
	StorageBackendMemory StorageBackend = "memory"
	StorageBackendNone   StorageBackend = "none"
)

func ParseStorageBackend(raw string) (StorageBackend, error) {
	backend := StorageBackend(strings.ToLower(strings.TrimSpace(raw)))
	switch backend {
	case StorageBackendChain, StorageBackendFile, StorageBackendPass, StorageBackendMemory, StorageBackendNone:
		return backend, nil
	case "":
		return StorageBackendChain, nil
	default:
		return "", fmt.Errorf("unsupported storage backend %q", raw)
	}
}

// ParseLogLevel maps "debug", "info", "warn" and "error" to slog levels. An
// empty string is info.
func ParseLogLevel(raw string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unsupported log level %q", raw)
	}
}

// ParseServiceRoot requires an absolute URL. A trailing slash is dropped.
func ParseServiceRoot(raw string) (*url.URL, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, errors.New("service root is empty")
	}

	root, err := url.Parse(strings.TrimRight(strings.TrimSpace(raw), "/"))
	if err != nil {
		return nil, fmt.Errorf("parse service root: %w", err)
	}
	if root.Scheme == "" || root.Host == "" {
		return nil, fmt.Errorf("service root %q must be an absolute URL", raw)
	}
	return root, nil
}

// Settings is the user configuration, merged from the settings file, the
// environment and defaults.
type Settings struct {
	ServiceRoot    string
	StorageBackend StorageBackend
	SessionKey     string
	LogLevel       string
	FetchTimeout   time.Duration
}
