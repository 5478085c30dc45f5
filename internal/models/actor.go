package models

// Actor is the principal an engine call is performed for. It is passed
// explicitly to every dispatcher and coordinator call.
type Actor struct {
	UserID    uint
	CompanyID uint
	Email     string
}

// IsZero reports whether the actor is unauthenticated.
func (a Actor) IsZero() bool {
	return a.UserID == 0
}
