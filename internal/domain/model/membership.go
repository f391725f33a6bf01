package model

import "time"

// Membership is the single live subscription record per user. Only the
// membership updater mutates it; everything else reads it to gate premium
// features.
type Membership struct {
	UserID    string
	IsMember  bool
	Tier      Tier
	ExpiresAt time.Time
	UpdatedAt time.Time
}

// ActiveAt reports whether the membership grants premium access at t.
func (m *Membership) ActiveAt(t time.Time) bool {
	return m != nil && m.IsMember && m.ExpiresAt.After(t)
}

// DaysRemaining returns whole days of membership left at t, never negative.
func (m *Membership) DaysRemaining(t time.Time) int {
	if !m.ActiveAt(t) {
		return 0
	}
	return int(m.ExpiresAt.Sub(t).Hours() / 24)
}
