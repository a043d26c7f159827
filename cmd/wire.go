package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"path/filepath"
	"time"

	"github.com/bnema/serverctl/internal/adapters/api"
	"github.com/bnema/serverctl/internal/adapters/logging"
	serversview "github.com/bnema/serverctl/internal/adapters/render/servers"
	tomlrepo "github.com/bnema/serverctl/internal/adapters/repo/toml"
	chainstore "github.com/bnema/serverctl/internal/adapters/storage/chain"
	filestore "github.com/bnema/serverctl/internal/adapters/storage/file"
	memorystore "github.com/bnema/serverctl/internal/adapters/storage/memory"
	nopstore "github.com/bnema/serverctl/internal/adapters/storage/nop"
	passstore "github.com/bnema/serverctl/internal/adapters/storage/pass"
	"github.com/bnema/serverctl/internal/application"
	"github.com/bnema/serverctl/internal/domain"
	"github.com/bnema/serverctl/internal/ports"
	"github.com/spf13/viper"
)

const (
	logsDirName  = "logs"
	stateDirName = "state"

	shutdownTimeout = 5 * time.Second
)

type app struct {
	opts *globalOptions

	settingsRepo   *tomlrepo.Repository
	settings       domain.Settings
	logger         *slog.Logger
	logCloser      io.Closer
	serversRender  func(serversview.Listing, serversview.RenderOptions) (string, error)
	awaitServers   func(context.Context, io.Writer, string, func(context.Context) (domain.ServerCollection, error)) (domain.ServerCollection, error)
	httpClient     *http.Client
	now            func() time.Time
	service        *application.Service
	serviceWireErr error
}

// wire loads settings and opens the log. The service itself is built on
// first use so that commands like config and version never touch storage.
func (a *app) wire(ctx context.Context) error {
	repo, err := tomlrepo.NewRepository(viper.New())
	if err != nil {
		return fmt.Errorf("wire settings repository: %w", err)
	}

	settings, err := repo.Load(ctx)
	if err != nil {
		return fmt.Errorf("load settings: %w", err)
	}
	if a.opts.logLevel != "" {
		settings.LogLevel = a.opts.logLevel
	}
	if a.opts.ephemeral {
		settings.StorageBackend = domain.StorageBackendMemory
	}

	dir, err := tomlrepo.Dir()
	if err != nil {
		return err
	}

	logger, closer, err := logging.New(logging.Options{
		Dir:   filepath.Join(dir, logsDirName),
		Level: settings.LogLevel,
	})
	if err != nil {
		return fmt.Errorf("wire logger: %w", err)
	}

	a.settingsRepo = repo
	a.settings = settings
	a.logger = logger
	a.logCloser = closer
	a.serversRender = serversview.Render
	a.awaitServers = serversview.Await[domain.ServerCollection]
	a.httpClient = http.DefaultClient
	a.now = time.Now

	return nil
}

// Service builds the application service once per run. Building it
// hydrates the session and starts the first server fetch.
func (a *app) Service() (*application.Service, error) {
	if a.service != nil || a.serviceWireErr != nil {
		return a.service, a.serviceWireErr
	}

	a.service, a.serviceWireErr = a.buildService()
	return a.service, a.serviceWireErr
}

func (a *app) buildService() (*application.Service, error) {
	store, err := a.buildStore()
	if err != nil {
		return nil, fmt.Errorf("wire session storage: %w", err)
	}

	client := a.apiClient()

	svc, err := application.NewService(application.ServiceConfig{
		Store:        store,
		Servers:      client,
		Profiles:     client,
		Auth:         client,
		Clock:        ports.SystemClock{},
		Logger:       a.logger,
		SessionKey:   a.settings.SessionKey,
		FetchTimeout: a.settings.FetchTimeout,
	})
	if err != nil {
		return nil, fmt.Errorf("wire service: %w", err)
	}

	return svc, nil
}

func (a *app) apiClient() api.Client {
	return api.Client{
		BaseURL:        a.settings.ServiceRoot,
		HTTPClient:     a.httpClient,
		RequestTimeout: a.settings.FetchTimeout,
	}
}

func (a *app) buildStore() (ports.KeyValueStore, error) {
	dir, err := tomlrepo.Dir()
	if err != nil {
		return nil, err
	}
	fileRoot := filepath.Join(dir, stateDirName)

	switch a.settings.StorageBackend {
	case domain.StorageBackendMemory:
		return memorystore.NewStore(), nil
	case domain.StorageBackendNone:
		return nopstore.Store{}, nil
	case domain.StorageBackendFile:
		return filestore.NewStore(fileRoot), nil
	case domain.StorageBackendPass:
		return passstore.NewStore(passstore.DefaultPrefix), nil
	case domain.StorageBackendChain:
		return chainstore.NewPassFirstWithFileFallback(passstore.DefaultPrefix, fileRoot)
	default:
		return nil, fmt.Errorf("unsupported storage backend %q", a.settings.StorageBackend)
	}
}

func (a *app) close() error {
	if a.service != nil {
		a.service.Close()

		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		_ = a.service.Servers().Wait(ctx)
		cancel()
		a.service = nil
	}
	if a.logCloser == nil {
		return nil
	}

	err := a.logCloser.Close()
	a.logCloser = nil
	return err
}
