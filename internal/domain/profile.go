package domain

type ProfileEntry struct {
	Username string `json:"username" validate:"required"`
}
