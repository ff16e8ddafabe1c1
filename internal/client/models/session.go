package models

// Session pairs the bearer credential with the profile it was issued for.
// The two are stored and cleared together.
type Session struct {
	Token string
	User  *User
}

// Valid reports whether both halves of the pair are present.
func (s Session) Valid() bool {
	return s.Token != "" && s.User != nil
}
