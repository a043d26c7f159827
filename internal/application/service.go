package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/bnema/serverctl/internal/domain"
	"github.com/bnema/serverctl/internal/ports"
	"github.com/bnema/serverctl/internal/reactive"
	"golang.org/x/sync/errgroup"
)

const (
	DefaultSessionKey = "session/logged-in-user"

	ownerLookupConcurrency = 4
)

var ErrMissingServerFetcher = errors.New("server fetcher is nil")

type ServiceConfig struct {
	Store    ports.KeyValueStore
	Servers  ports.ServerFetcher
	Profiles ports.ProfileFetcher
	Auth     ports.Authenticator
	Clock    ports.Clock
	Logger   *slog.Logger

	SessionKey     string
	FetchTimeout   time.Duration
	StorageTimeout time.Duration
}

// Service owns the current session, the server collection derived from it,
// and the profile cache. Build one per process and share it.
type Service struct {
	session  *reactive.PersistentCell[domain.Session]
	servers  *reactive.Derived[*domain.Session, domain.ServerCollection]
	profiles *ProfileCache
	resolver *ProfileResolver
	auth     ports.Authenticator
	clock    ports.Clock
	logger   *slog.Logger

	mu              sync.Mutex
	lastRefreshedAt time.Time

	unsubscribe func()
}

func NewService(cfg ServiceConfig) (*Service, error) {
	if cfg.Servers == nil {
		return nil, ErrMissingServerFetcher
	}
	if cfg.Clock == nil {
		cfg.Clock = ports.SystemClock{}
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.DiscardHandler)
	}
	if strings.TrimSpace(cfg.SessionKey) == "" {
		cfg.SessionKey = DefaultSessionKey
	}

	opts := []reactive.Option{reactive.WithLogger(cfg.Logger)}
	if cfg.StorageTimeout > 0 {
		opts = append(opts, reactive.WithStorageTimeout(cfg.StorageTimeout))
	}
	if cfg.FetchTimeout > 0 {
		opts = append(opts, reactive.WithFetchTimeout(cfg.FetchTimeout))
	}

	profiles := NewProfileCache()
	s := &Service{
		session:  reactive.NewPersistentCell(cfg.Store, cfg.SessionKey, domain.Session.Validate, opts...),
		profiles: profiles,
		resolver: NewProfileResolver(profiles, cfg.Profiles),
		auth:     cfg.Auth,
		clock:    cfg.Clock,
		logger:   cfg.Logger,
	}
	s.servers = reactive.NewDerived(s.session, signedOut, fetchServersWith(cfg.Servers), opts...)
	s.unsubscribe = s.servers.Subscribe(s.recordRefresh)

	return s, nil
}

func signedOut(session *domain.Session) bool {
	return session == nil
}

func fetchServersWith(fetcher ports.ServerFetcher) reactive.Resolver[*domain.Session, domain.ServerCollection] {
	return func(ctx context.Context, session *domain.Session) (domain.ServerCollection, error) {
		servers, err := fetcher.FetchServers(ctx, session.Authorization())
		if err != nil {
			return nil, err
		}
		if servers == nil {
			return domain.ServerCollection{}, nil
		}
		return domain.ServerCollection(servers), nil
	}
}

func (s *Service) recordRefresh(servers domain.ServerCollection) {
	if !servers.Loaded() {
		return
	}
	s.mu.Lock()
	s.lastRefreshedAt = s.clock.Now()
	s.mu.Unlock()
}

func (s *Service) Session() *reactive.PersistentCell[domain.Session] {
	return s.session
}

func (s *Service) Servers() *reactive.Derived[*domain.Session, domain.ServerCollection] {
	return s.servers
}

func (s *Service) Profiles() *ProfileCache {
	return s.profiles
}

func (s *Service) CurrentSession() (domain.Session, error) {
	session := s.session.Value()
	if session == nil {
		return domain.Session{}, domain.ErrNotSignedIn
	}
	return *session, nil
}

func (s *Service) Login(ctx context.Context, username, password string) (domain.Session, error) {
	if s.auth == nil {
		return domain.Session{}, errors.New("login is not configured")
	}

	session, err := s.auth.Login(ctx, username, password)
	if err != nil {
		return domain.Session{}, fmt.Errorf("login: %w", err)
	}
	if err := s.UseSession(session); err != nil {
		return domain.Session{}, err
	}

	return session, nil
}

// UseSession installs an already issued session as the current one.
func (s *Service) UseSession(session domain.Session) error {
	if err := session.Validate(); err != nil {
		return err
	}

	if current := s.session.Value(); current != nil && current.ID != session.ID {
		s.profiles.Clear()
	}
	s.session.Set(&session)
	s.logger.Info("session installed", slog.String("username", session.Username), slog.Int64("user_id", int64(session.ID)))

	return nil
}

func (s *Service) Logout() {
	s.session.Set(nil)
	s.profiles.Clear()
	s.logger.Info("session cleared")
}

// Refresh re-fetches the server collection for the current session.
func (s *Service) Refresh() {
	s.servers.Refresh()
}

// WaitForServers blocks until the server collection has settled and returns
// it. It reports domain.ErrNotSignedIn when there is no session and wraps
// domain.ErrFetchFailed when the last fetch failed.
//
// A session change made on one goroutine while another is still delivering
// notifications may not have started its fetch yet, so Wait can return the
// previous collection. Callers that change the session and wait from
// different goroutines must order those calls themselves.
func (s *Service) WaitForServers(ctx context.Context) (domain.ServerCollection, error) {
	if err := s.servers.Wait(ctx); err != nil {
		return nil, err
	}

	servers := s.servers.Value()
	if servers.Loaded() {
		return servers, nil
	}
	if err := s.servers.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrFetchFailed, err)
	}
	if s.session.Value() == nil {
		return nil, domain.ErrNotSignedIn
	}

	return nil, nil
}

func (s *Service) LastRefreshedAt() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastRefreshedAt
}

// OwnerNames resolves the usernames of every owner in servers. Owners that
// cannot be resolved are left out of the result.
func (s *Service) OwnerNames(ctx context.Context, servers domain.ServerCollection) map[domain.UserID]string {
	names := make(map[domain.UserID]string)
	session := s.session.Value()
	if session == nil {
		return names
	}
	names[session.ID] = session.Username

	var mu sync.Mutex
	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(ownerLookupConcurrency)
	for _, owner := range servers.OwnerIDs() {
		if owner == session.ID {
			continue
		}
		group.Go(func() error {
			entry, err := s.resolver.Resolve(groupCtx, session.Token, owner)
			if err != nil {
				s.logger.Debug("owner lookup failed", slog.Int64("user_id", int64(owner)), slog.Any("error", err))
				return nil
			}
			mu.Lock()
			names[owner] = entry.Username
			mu.Unlock()
			return nil
		})
	}
	_ = group.Wait()

	return names
}

func (s *Service) Close() {
	s.unsubscribe()
	s.servers.Close()
}
