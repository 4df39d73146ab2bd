package artwork

// Actor is the authenticated party performing an operation. The zero Actor is anonymous.
type Actor struct {
	UserID  uint
	IsAdmin bool
}

// Authenticated reports whether the actor identifies a user.
func (a Actor) Authenticated() bool {
	return a.UserID != 0
}
