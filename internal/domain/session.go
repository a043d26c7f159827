package domain

type UserID int64

// Session is the signed-in identity. A nil *Session means nobody is signed in.
type Session struct {
	Username string `json:"username" validate:"required"`
	Token    string `json:"token" validate:"required"`
	ID       UserID `json:"id"`
}

// Authorization returns the credential sent with authenticated requests.
func (s *Session) Authorization() string {
	if s == nil {
		return ""
	}
	return s.Token
}

func (s *Session) Equal(other *Session) bool {
	if s == nil || other == nil {
		return s == other
	}
	return *s == *other
}
