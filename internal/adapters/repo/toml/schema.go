package toml

import "fmt"

const currentSchemaVersion = 1

type fileSchema struct {
	Version        int    `toml:"version"`
	ServiceRoot    string `toml:"service_root,omitempty"`
	StorageBackend string `toml:"storage_backend,omitempty"`
	SessionKey     string `toml:"session_key,omitempty"`
	LogLevel       string `toml:"log_level,omitempty"`
	FetchTimeout   string `toml:"fetch_timeout,omitempty"`
}

func (s *fileSchema) applyDefaults() {
	if s.Version == 0 {
		s.Version = currentSchemaVersion
	}
}

func (s fileSchema) validateVersion() error {
	if s.Version > currentSchemaVersion {
		return fmt.Errorf("unsupported settings schema version %d (current %d)", s.Version, currentSchemaVersion)
	}

	return nil
}
