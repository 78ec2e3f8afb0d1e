package models

import "time"

// AdminSession is the authenticated-administrator state carried by the
// session store. A session is in exactly one of three states: absent, live,
// or expired; expiry is a pure function of CreatedAt against the clock.
type AdminSession struct {
	Subject   string    `json:"subject"`
	CreatedAt time.Time `json:"created_at"`
	CSRFToken string    `json:"-"` // session-scoped, never serialized outward
}
