package models

// UserKind discriminates the two identity variants that can hold a session
// or back a hangout member. Resolved once at the boundary; never interpolated
// into queries.
type UserKind string

const (
	UserKindAccount UserKind = "account"
	UserKindGuest   UserKind = "guest"
)

func (k UserKind) Valid() bool {
	return k == UserKindAccount || k == UserKindGuest
}

// Identity is the tagged union of an account or guest id.
type Identity struct {
	Kind UserKind `json:"kind"`
	ID   uint     `json:"id"`
}
