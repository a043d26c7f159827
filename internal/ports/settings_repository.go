package ports

import (
	"context"

	"github.com/bnema/serverctl/internal/domain"
)

type SettingsRepository interface {
	Load(ctx context.Context) (domain.Settings, error)
	Set(ctx context.Context, key, value string) error
}
