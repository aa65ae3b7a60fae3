package model

// Session represents the currently authenticated visitor.
// A session is all-or-nothing: Token and the identity fields are either all
// set or the session is absent. Partial records read back from storage are
// treated as corrupt and discarded.
type Session struct {
	Token       string `json:"-"`
	UserID      string `json:"id,omitempty"`
	Email       string `json:"email"`
	DisplayName string `json:"name"`
}

// Present reports whether the session carries both a credential and an identity.
func (s *Session) Present() bool {
	return s != nil && s.Token != "" && (s.Email != "" || s.DisplayName != "")
}
