package application

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/bnema/serverctl/internal/adapters/storage/memory"
	"github.com/bnema/serverctl/internal/domain"
	"github.com/bnema/serverctl/internal/ports/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type fixedClock struct {
	now time.Time
}

func (c fixedClock) Now() time.Time {
	return c.now
}

type stubAuthenticator struct {
	session domain.Session
	err     error
}

func (a stubAuthenticator) Login(_ context.Context, username, password string) (domain.Session, error) {
	if a.err != nil {
		return domain.Session{}, a.err
	}
	return a.session, nil
}

func waitCtx(t *testing.T) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	t.Cleanup(cancel)
	return ctx
}

func newTestService(t *testing.T, cfg ServiceConfig) *Service {
	t.Helper()
	if cfg.Store == nil {
		cfg.Store = memory.NewStore()
	}
	svc, err := NewService(cfg)
	require.NoError(t, err)
	t.Cleanup(svc.Close)
	return svc
}

var (
	adaSession = domain.Session{Username: "ada", Token: "token-ada", ID: 1}
	adaServers = []domain.ServerSummary{
		{ID: 10, Name: "alpha", CreatedAt: "2026-10-01T10:00:00Z", Description: "primary", Owner: 1},
		{ID: 11, Name: "beta", CreatedAt: "2026-10-02T10:00:00Z", Description: "shared", Owner: 2},
	}
)

func TestNewServiceRequiresServerFetcher(t *testing.T) {
	_, err := NewService(ServiceConfig{Store: memory.NewStore()})
	require.ErrorIs(t, err, ErrMissingServerFetcher)
}

func TestServiceStartsSignedOutWithoutFetching(t *testing.T) {
	servers := mocks.NewMockServerFetcher(t)
	svc := newTestService(t, ServiceConfig{Servers: servers})

	_, err := svc.WaitForServers(waitCtx(t))
	require.ErrorIs(t, err, domain.ErrNotSignedIn)

	_, err = svc.CurrentSession()
	require.ErrorIs(t, err, domain.ErrNotSignedIn)
}

func TestServiceLoginInstallsSessionAndFetchesServers(t *testing.T) {
	servers := mocks.NewMockServerFetcher(t)
	now := time.Date(2026, 10, 17, 9, 0, 0, 0, time.UTC)
	svc := newTestService(t, ServiceConfig{
		Servers: servers,
		Auth:    stubAuthenticator{session: adaSession},
		Clock:   fixedClock{now: now},
	})

	servers.EXPECT().FetchServers(mock.Anything, "token-ada").Return(adaServers, nil).Once()

	session, err := svc.Login(context.Background(), "ada", "secret")
	require.NoError(t, err)
	assert.Equal(t, adaSession, session)

	got, err := svc.WaitForServers(waitCtx(t))
	require.NoError(t, err)
	assert.Equal(t, domain.ServerCollection(adaServers), got)
	assert.Equal(t, now, svc.LastRefreshedAt())
}

func TestServiceLoginFailureKeepsPreviousState(t *testing.T) {
	servers := mocks.NewMockServerFetcher(t)
	svc := newTestService(t, ServiceConfig{
		Servers: servers,
		Auth:    stubAuthenticator{err: errors.New("invalid credentials")},
	})

	_, err := svc.Login(context.Background(), "ada", "wrong")
	require.ErrorContains(t, err, "invalid credentials")
	assert.Nil(t, svc.Session().Value())
}

func TestServiceHydratesPersistedSessionOnConstruction(t *testing.T) {
	store := memory.NewStore()
	require.NoError(t, store.Put(context.Background(), DefaultSessionKey, `{"username":"ada","token":"token-ada","id":1}`))

	servers := mocks.NewMockServerFetcher(t)
	servers.EXPECT().FetchServers(mock.Anything, "token-ada").Return([]domain.ServerSummary{}, nil).Once()

	svc := newTestService(t, ServiceConfig{Store: store, Servers: servers})

	session, err := svc.CurrentSession()
	require.NoError(t, err)
	assert.Equal(t, adaSession, session)

	got, err := svc.WaitForServers(waitCtx(t))
	require.NoError(t, err)
	assert.True(t, got.Loaded())
	assert.Empty(t, got)
}

func TestServiceLogoutClearsServersAndProfiles(t *testing.T) {
	store := memory.NewStore()
	servers := mocks.NewMockServerFetcher(t)
	svc := newTestService(t, ServiceConfig{Store: store, Servers: servers})

	servers.EXPECT().FetchServers(mock.Anything, "token-ada").Return(adaServers, nil).Once()
	require.NoError(t, svc.UseSession(adaSession))
	_, err := svc.WaitForServers(waitCtx(t))
	require.NoError(t, err)
	svc.Profiles().Put(2, domain.ProfileEntry{Username: "grace"})

	svc.Logout()

	assert.Nil(t, svc.Servers().Value())
	assert.Empty(t, svc.Profiles().All())
	raw, err := store.Get(context.Background(), DefaultSessionKey)
	require.NoError(t, err)
	assert.Equal(t, "null", raw)
}

func TestServiceFetchFailureSurfacesThroughWait(t *testing.T) {
	servers := mocks.NewMockServerFetcher(t)
	svc := newTestService(t, ServiceConfig{Servers: servers})

	servers.EXPECT().FetchServers(mock.Anything, "token-ada").Return(nil, errors.New("status 500")).Once()
	require.NoError(t, svc.UseSession(adaSession))

	got, err := svc.WaitForServers(waitCtx(t))
	require.ErrorIs(t, err, domain.ErrFetchFailed)
	assert.ErrorContains(t, err, "status 500")
	assert.Nil(t, got)
	assert.True(t, svc.LastRefreshedAt().IsZero())
}

func TestServiceRefreshRefetches(t *testing.T) {
	servers := mocks.NewMockServerFetcher(t)
	svc := newTestService(t, ServiceConfig{Servers: servers})

	servers.EXPECT().FetchServers(mock.Anything, "token-ada").Return(adaServers[:1], nil).Once()
	servers.EXPECT().FetchServers(mock.Anything, "token-ada").Return(adaServers, nil).Once()

	require.NoError(t, svc.UseSession(adaSession))
	first, err := svc.WaitForServers(waitCtx(t))
	require.NoError(t, err)
	assert.Len(t, first, 1)

	svc.Refresh()
	second, err := svc.WaitForServers(waitCtx(t))
	require.NoError(t, err)
	assert.Len(t, second, 2)
}

func TestServiceUseSessionRejectsInvalidSession(t *testing.T) {
	svc := newTestService(t, ServiceConfig{Servers: mocks.NewMockServerFetcher(t)})

	err := svc.UseSession(domain.Session{Username: "ada"})
	require.ErrorIs(t, err, domain.ErrMalformedValue)
	assert.Nil(t, svc.Session().Value())
}

func TestServiceSwitchingUserClearsProfiles(t *testing.T) {
	servers := mocks.NewMockServerFetcher(t)
	svc := newTestService(t, ServiceConfig{Servers: servers})
	servers.EXPECT().FetchServers(mock.Anything, mock.Anything).Return([]domain.ServerSummary{}, nil)

	require.NoError(t, svc.UseSession(adaSession))
	svc.Profiles().Put(5, domain.ProfileEntry{Username: "someone"})

	require.NoError(t, svc.UseSession(domain.Session{Username: "grace", Token: "token-grace", ID: 2}))
	_, err := svc.WaitForServers(waitCtx(t))
	require.NoError(t, err)

	assert.Empty(t, svc.Profiles().All())
}

func TestServiceOwnerNamesResolvesThroughCache(t *testing.T) {
	servers := mocks.NewMockServerFetcher(t)
	profiles := mocks.NewMockProfileFetcher(t)
	svc := newTestService(t, ServiceConfig{Servers: servers, Profiles: profiles})

	servers.EXPECT().FetchServers(mock.Anything, "token-ada").Return(adaServers, nil).Once()
	profiles.EXPECT().FetchProfile(mock.Anything, "token-ada", domain.UserID(2)).Return(domain.ProfileEntry{Username: "grace"}, nil).Once()

	require.NoError(t, svc.UseSession(adaSession))
	got, err := svc.WaitForServers(waitCtx(t))
	require.NoError(t, err)

	names := svc.OwnerNames(context.Background(), got)
	assert.Equal(t, map[domain.UserID]string{1: "ada", 2: "grace"}, names)

	again := svc.OwnerNames(context.Background(), got)
	assert.Equal(t, names, again)
}

func TestServiceOwnerNamesSkipsUnresolvableOwners(t *testing.T) {
	servers := mocks.NewMockServerFetcher(t)
	profiles := mocks.NewMockProfileFetcher(t)
	svc := newTestService(t, ServiceConfig{Servers: servers, Profiles: profiles})

	servers.EXPECT().FetchServers(mock.Anything, "token-ada").Return(adaServers, nil).Once()
	profiles.EXPECT().FetchProfile(mock.Anything, "token-ada", domain.UserID(2)).Return(domain.ProfileEntry{}, domain.ErrProfileNotFound).Once()

	require.NoError(t, svc.UseSession(adaSession))
	got, err := svc.WaitForServers(waitCtx(t))
	require.NoError(t, err)

	assert.Equal(t, map[domain.UserID]string{1: "ada"}, svc.OwnerNames(context.Background(), got))
}
