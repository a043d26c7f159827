package ports

import (
	"context"

	"github.com/bnema/serverctl/internal/domain"
)

type ServerFetcher interface {
	FetchServers(ctx context.Context, token string) ([]domain.ServerSummary, error)
}

type ProfileFetcher interface {
	FetchProfile(ctx context.Context, token string, id domain.UserID) (domain.ProfileEntry, error)
}

type Authenticator interface {
	Login(ctx context.Context, username, password string) (domain.Session, error)
}
