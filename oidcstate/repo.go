package oidcstate

import "time"

// StateEntry is the server-side half of one pending authorization flow,
// keyed by its nonce. The caller only ever sees the signed token.
type StateEntry struct {
	Nonce       string    // Random hex identifier of the flow
	ClientState string    // Opaque caller value, returned verbatim on validation
	Timestamp   time.Time // Issue time, millisecond precision
	ProviderID  string    // Provider the flow targets
	RedirectURI *string   // Optional post-authentication redirect
}

func (e *StateEntry) clone() *StateEntry {
	c := *e
	if e.RedirectURI != nil {
		uri := *e.RedirectURI
		c.RedirectURI = &uri
	}
	return &c
}

// Repo stores pending state entries. Implementations must be safe for
// concurrent use. TakeIf must check and remove the entry in one atomic step so
// that two concurrent validations of the same nonce cannot both succeed.
//
// TakeIf returns ErrNotFound when the nonce is unknown and
// ErrPreconditionFailed, leaving the entry in place, when match rejects it. A
// nil match takes the entry unconditionally.
type Repo interface {
	Upsert(entry *StateEntry) error
	TakeIf(nonce string, match func(*StateEntry) bool) (*StateEntry, error)
	DeleteOlderThan(cutoff time.Time) (int, error)
	Len() int
}
