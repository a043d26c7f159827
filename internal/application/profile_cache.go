package application

import (
	"maps"

	"github.com/bnema/serverctl/internal/domain"
	"github.com/bnema/serverctl/internal/reactive"
)

type Profiles map[domain.UserID]domain.ProfileEntry

// ProfileCache maps user ids to display profiles. Callers populate it; it
// never expires entries on its own.
type ProfileCache struct {
	subject *reactive.Subject[Profiles]
}

func NewProfileCache() *ProfileCache {
	return &ProfileCache{subject: reactive.NewSubject(Profiles{})}
}

func (c *ProfileCache) Get(id domain.UserID) (domain.ProfileEntry, bool) {
	entry, ok := c.subject.Value()[id]
	return entry, ok
}

func (c *ProfileCache) Put(id domain.UserID, entry domain.ProfileEntry) {
	c.subject.Update(func(current Profiles) Profiles {
		next := maps.Clone(current)
		next[id] = entry
		return next
	})
}

// All returns a snapshot that is safe to iterate and modify.
func (c *ProfileCache) All() Profiles {
	return maps.Clone(c.subject.Value())
}

func (c *ProfileCache) Clear() {
	c.subject.Set(Profiles{})
}

func (c *ProfileCache) Subscribe(listener reactive.Listener[Profiles]) func() {
	return c.subject.Subscribe(listener)
}
