package servers

import (
	"testing"
	"time"

	"github.com/bnema/serverctl/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderServersWithOwnerNames(t *testing.T) {
	now := time.Date(2026, 2, 14, 11, 0, 0, 0, time.UTC)

	output, err := Render(Listing{
		Session: &domain.Session{Username: "ada", Token: "tok-a", ID: 1},
		Servers: domain.ServerCollection{
			{ID: 10, Name: "build-box", CreatedAt: "2026-02-11T09:00:00Z", Description: "CI runners", Owner: 1},
			{ID: 11, Name: "shared-db", CreatedAt: "2026-02-14T08:00:00Z", Owner: 2},
		},
		Owners: map[domain.UserID]string{1: "ada", 2: "grace"},
	}, RenderOptions{Now: now, RefreshedAt: now.Add(-5 * time.Minute)})

	require.NoError(t, err)
	assert.Contains(t, output, "Servers")
	assert.Contains(t, output, "signed in as ada (#1)")
	assert.Contains(t, output, "servers: 2")
	assert.Contains(t, output, "refreshed 5 minutes ago")
	assert.Contains(t, output, "build-box (10)")
	assert.Contains(t, output, "CI runners")
	assert.Contains(t, output, "3 days ago (2026-02-11)")
	assert.Contains(t, output, "shared-db (11)")
	assert.Contains(t, output, "grace")
	assert.Contains(t, output, "3 hours ago")
}

func TestRenderFallsBackToOwnerID(t *testing.T) {
	output, err := Render(Listing{
		Session: &domain.Session{Username: "ada", Token: "tok-a", ID: 1},
		Servers: domain.ServerCollection{{ID: 12, Name: "orphan", CreatedAt: "last tuesday", Owner: 42}},
	}, RenderOptions{})

	require.NoError(t, err)
	assert.Contains(t, output, "#42")
	assert.Contains(t, output, "last tuesday")
	assert.NotContains(t, output, "refreshed")
}

func TestRenderAbsentCollection(t *testing.T) {
	output, err := Render(Listing{}, RenderOptions{})

	require.NoError(t, err)
	assert.Contains(t, output, "signed out")
	assert.Contains(t, output, "Server list unavailable")
	assert.NotContains(t, output, "servers:")
}

func TestRenderEmptyCollection(t *testing.T) {
	output, err := Render(Listing{
		Session: &domain.Session{Username: "ada", Token: "tok-a", ID: 1},
		Servers: domain.ServerCollection{},
	}, RenderOptions{})

	require.NoError(t, err)
	assert.Contains(t, output, "servers: 0")
	assert.Contains(t, output, "No servers.")
	assert.NotContains(t, output, "unavailable")
}

func TestFormatAge(t *testing.T) {
	now := time.Date(2026, 2, 14, 11, 0, 0, 0, time.UTC)

	assert.Equal(t, "just now", formatAge(now.Add(-10*time.Second), now))
	assert.Equal(t, "1 minute ago", formatAge(now.Add(-time.Minute), now))
	assert.Equal(t, "2 hours ago", formatAge(now.Add(-2*time.Hour), now))
	assert.Equal(t, "1 day ago", formatAge(now.Add(-30*time.Hour), now))
	assert.Equal(t, "at 09:30", formatAge(time.Date(2026, 2, 14, 9, 30, 0, 0, time.UTC), time.Time{}))
}
