package identity

// Identity discriminates an authenticated learner from an anonymous visitor.
// Exactly one of the two references is set; the zero value matches neither.
type Identity struct {
	userID  uint
	session string
}

// Authenticated builds an identity backed by a user account.
func Authenticated(userID uint) Identity {
	return Identity{userID: userID}
}

// Anonymous builds an identity backed by an ephemeral session handle.
func Anonymous(session string) Identity {
	return Identity{session: session}
}

// IsAuthenticated reports whether the identity references a user account.
func (i Identity) IsAuthenticated() bool {
	return i.userID != 0
}

// UserID returns the authenticated user id, or zero for anonymous identities.
func (i Identity) UserID() uint {
	return i.userID
}

// Session returns the anonymous session handle, or empty for authenticated identities.
func (i Identity) Session() string {
	return i.session
}

// IsZero reports whether the identity carries neither reference.
func (i Identity) IsZero() bool {
	return i.userID == 0 && i.session == ""
}
