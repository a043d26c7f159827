package application

import (
	"context"
	"fmt"
	"strconv"

	"github.com/bnema/serverctl/internal/domain"
	"github.com/bnema/serverctl/internal/ports"
	"golang.org/x/sync/singleflight"
)

// ProfileResolver fills a ProfileCache on demand. Concurrent lookups for one
// id share a single remote call.
type ProfileResolver struct {
	cache   *ProfileCache
	fetcher ports.ProfileFetcher
	group   singleflight.Group
}

func NewProfileResolver(cache *ProfileCache, fetcher ports.ProfileFetcher) *ProfileResolver {
	return &ProfileResolver{cache: cache, fetcher: fetcher}
}

func (r *ProfileResolver) Resolve(ctx context.Context, token string, id domain.UserID) (domain.ProfileEntry, error) {
	if entry, ok := r.cache.Get(id); ok {
		return entry, nil
	}
	if r.fetcher == nil {
		return domain.ProfileEntry{}, fmt.Errorf("resolve profile %d: %w", id, domain.ErrProfileNotFound)
	}

	value, err, _ := r.group.Do(strconv.FormatInt(int64(id), 10), func() (any, error) {
		entry, err := r.fetcher.FetchProfile(ctx, token, id)
		if err != nil {
			return domain.ProfileEntry{}, err
		}
		if err := entry.Validate(); err != nil {
			return domain.ProfileEntry{}, err
		}
		r.cache.Put(id, entry)
		return entry, nil
	})
	if err != nil {
		return domain.ProfileEntry{}, fmt.Errorf("resolve profile %d: %w", id, err)
	}

	return value.(domain.ProfileEntry), nil
}
