package domain

type ServerSummary struct {
	ID          int64  `json:"id" validate:"gte=0"`
	Name        string `json:"name"`
	CreatedAt   string `json:"created_at"`
	Description string `json:"description"`
	Owner       UserID `json:"owner" validate:"gte=0"`
}

// ServerCollection is nil while unknown (not loaded, signed out, or the last
// refresh failed). A non-nil empty collection means the service reported zero servers.
type ServerCollection []ServerSummary

func (c ServerCollection) Loaded() bool {
	return c != nil
}

func (c ServerCollection) OwnerIDs() []UserID {
	ids := make([]UserID, 0, len(c))
	seen := make(map[UserID]struct{}, len(c))
	for _, server := range c {
		if _, ok := seen[server.Owner]; ok {
			continue
		}
		seen[server.Owner] = struct{}{}
		ids = append(ids, server.Owner)
	}
	return ids
}
