package toml

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/bnema/serverctl/internal/domain"
	"github.com/bnema/serverctl/internal/ports"
	toml "github.com/pelletier/go-toml/v2"
	"github.com/spf13/viper"
)

const (
	configType       = "toml"
	envPrefix        = "SRVCTL"
	settingsFileMode = 0o600
	settingsDirMode  = 0o700
	settingsDir      = ".srvctl"
	settingsFile     = "settings.toml"
	tempFilePattern  = ".settings-*.toml.tmp"
	settingsPathKey  = "settings.path"

	KeyServiceRoot    = "service_root"
	KeyStorageBackend = "storage_backend"
	KeySessionKey     = "session_key"
	KeyLogLevel       = "log_level"
	KeyFetchTimeout   = "fetch_timeout"

	DefaultServiceRoot  = "http://localhost:8080"
	DefaultSessionKey   = "session/logged-in-user"
	DefaultLogLevel     = "info"
	DefaultFetchTimeout = 15 * time.Second
)

var ErrUnknownSettingKey = errors.New("unknown setting key")

// Keys lists the settings accepted by Set, in display order.
var Keys = []string{KeyServiceRoot, KeyStorageBackend, KeySessionKey, KeyLogLevel, KeyFetchTimeout}

// Repository reads settings through viper (file, SRVCTL_* environment,
// defaults) and writes the settings file itself.
type Repository struct {
	cfg          *viper.Viper
	settingsPath string
	mu           *sync.RWMutex
}

var (
	lockRegistryMu sync.Mutex
	pathLockMap    = map[string]*sync.RWMutex{}
)

var _ ports.SettingsRepository = (*Repository)(nil)

func NewRepository(cfg *viper.Viper) (*Repository, error) {
	if cfg == nil {
		cfg = viper.New()
	}

	settingsPath := strings.TrimSpace(cfg.GetString(settingsPathKey))
	if settingsPath == "" {
		dir, err := Dir()
		if err != nil {
			return nil, err
		}
		settingsPath = filepath.Join(dir, settingsFile)
	}

	cfg.SetConfigFile(settingsPath)
	cfg.SetConfigType(configType)
	cfg.SetEnvPrefix(envPrefix)
	cfg.AutomaticEnv()
	cfg.SetDefault(KeyServiceRoot, DefaultServiceRoot)
	cfg.SetDefault(KeyStorageBackend, string(domain.StorageBackendChain))
	cfg.SetDefault(KeySessionKey, DefaultSessionKey)
	cfg.SetDefault(KeyLogLevel, DefaultLogLevel)
	cfg.SetDefault(KeyFetchTimeout, DefaultFetchTimeout.String())

	if err := readConfig(cfg); err != nil {
		return nil, err
	}

	return &Repository{cfg: cfg, settingsPath: settingsPath, mu: lockForPath(settingsPath)}, nil
}

// Dir is the per-user directory holding settings, state and logs.
func Dir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}

	return filepath.Join(homeDir, settingsDir), nil
}

func readConfig(cfg *viper.Viper) error {
	err := cfg.ReadInConfig()
	if err == nil {
		return nil
	}

	var configNotFound viper.ConfigFileNotFoundError
	if errors.As(err, &configNotFound) || errors.Is(err, os.ErrNotExist) {
		return nil
	}

	return fmt.Errorf("read settings file: %w", err)
}

func (r *Repository) Path() string {
	return r.settingsPath
}

func (r *Repository) Load(ctx context.Context) (domain.Settings, error) {
	if err := ctx.Err(); err != nil {
		return domain.Settings{}, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	if _, err := r.readSchema(); err != nil {
		return domain.Settings{}, err
	}

	backend, err := domain.ParseStorageBackend(r.cfg.GetString(KeyStorageBackend))
	if err != nil {
		return domain.Settings{}, err
	}

	fetchTimeout, err := parseTimeout(r.cfg.GetString(KeyFetchTimeout))
	if err != nil {
		return domain.Settings{}, err
	}

	return domain.Settings{
		ServiceRoot:    strings.TrimSpace(r.cfg.GetString(KeyServiceRoot)),
		StorageBackend: backend,
		SessionKey:     strings.TrimSpace(r.cfg.GetString(KeySessionKey)),
		LogLevel:       strings.TrimSpace(r.cfg.GetString(KeyLogLevel)),
		FetchTimeout:   fetchTimeout,
	}, nil
}

// Set validates value, stores it in the settings file, and makes it visible
// to later Load calls on this repository.
func (r *Repository) Set(ctx context.Context, key, value string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	file, err := r.readSchema()
	if err != nil {
		return err
	}

	value = strings.TrimSpace(value)
	switch key {
	case KeyServiceRoot:
		if _, err := domain.ParseServiceRoot(value); err != nil {
			return err
		}
		file.ServiceRoot = value
	case KeyStorageBackend:
		backend, err := domain.ParseStorageBackend(value)
		if err != nil {
			return err
		}
		file.StorageBackend = string(backend)
		value = string(backend)
	case KeySessionKey:
		if value == "" {
			return errors.New("session key is empty")
		}
		file.SessionKey = value
	case KeyLogLevel:
		if _, err := domain.ParseLogLevel(value); err != nil {
			return err
		}
		file.LogLevel = value
	case KeyFetchTimeout:
		if _, err := parseTimeout(value); err != nil {
			return err
		}
		file.FetchTimeout = value
	default:
		return fmt.Errorf("%w %q", ErrUnknownSettingKey, key)
	}

	if err := ctx.Err(); err != nil {
		return err
	}
	if err := r.writeSchema(file); err != nil {
		return err
	}

	r.cfg.Set(key, value)
	return nil
}

// File returns the raw values stored in the settings file, without
// environment or default values.
func (r *Repository) File(ctx context.Context) (map[string]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	file, err := r.readSchema()
	if err != nil {
		return nil, err
	}

	return map[string]string{
		KeyServiceRoot:    file.ServiceRoot,
		KeyStorageBackend: file.StorageBackend,
		KeySessionKey:     file.SessionKey,
		KeyLogLevel:       file.LogLevel,
		KeyFetchTimeout:   file.FetchTimeout,
	}, nil
}

func parseTimeout(raw string) (time.Duration, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return DefaultFetchTimeout, nil
	}

	timeout, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("parse fetch timeout %q: %w", raw, err)
	}
	if timeout < 0 {
		return 0, fmt.Errorf("fetch timeout %q is negative", raw)
	}

	return timeout, nil
}

func (r *Repository) readSchema() (fileSchema, error) {
	data, err := os.ReadFile(r.settingsPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fileSchema{Version: currentSchemaVersion}, nil
		}
		return fileSchema{}, fmt.Errorf("read settings file: %w", err)
	}

	var file fileSchema
	if err := toml.Unmarshal(data, &file); err != nil {
		return fileSchema{}, fmt.Errorf("decode settings file: %w", err)
	}
	if err := file.validateVersion(); err != nil {
		return fileSchema{}, err
	}
	file.applyDefaults()

	return file, nil
}

func lockForPath(path string) *sync.RWMutex {
	lockRegistryMu.Lock()
	defer lockRegistryMu.Unlock()

	if mu, ok := pathLockMap[path]; ok {
		return mu
	}

	mu := &sync.RWMutex{}
	pathLockMap[path] = mu
	return mu
}

// writeSchema replaces the settings file through a temp file in the same
// directory. The caller holds r.mu for writing.
func (r *Repository) writeSchema(file fileSchema) (err error) {
	file.applyDefaults()

	data, err := toml.Marshal(file)
	if err != nil {
		return fmt.Errorf("encode settings file: %w", err)
	}

	dir := filepath.Dir(r.settingsPath)
	if err := os.MkdirAll(dir, settingsDirMode); err != nil {
		return fmt.Errorf("create settings directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, tempFilePattern)
	if err != nil {
		return fmt.Errorf("create temp settings file: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmp.Name())
		}
	}()

	if _, err = tmp.Write(data); err != nil {
		return fmt.Errorf("write temp settings file: %w", err)
	}
	if err = tmp.Chmod(settingsFileMode); err != nil {
		return fmt.Errorf("chmod temp settings file: %w", err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("close temp settings file: %w", err)
	}
	if err = os.Rename(tmp.Name(), r.settingsPath); err != nil {
		return fmt.Errorf("replace settings file: %w", err)
	}

	return nil
}
