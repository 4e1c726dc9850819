package domain

import "time"

const DefaultInvitationTTL = 7 * 24 * time.Hour

type Invitation struct {
	ID        string
	Email     string
	TaskID    string
	Token     string
	InvitedBy string
	Accepted  bool
	ExpiresAt time.Time
	CreatedAt time.Time
}

// IsExpired reports whether now is past the expiry. Expiry is never stored
// as a state; it is derived every time the invitation is read.
func (i *Invitation) IsExpired(now time.Time) bool {
	return now.After(i.ExpiresAt)
}

// IsValid is true while the invitation can still be accepted.
func (i *Invitation) IsValid(now time.Time) bool {
	return !i.Accepted && !i.IsExpired(now)
}

// InvitationDetail is an invitation enriched with display data resolved by lookup.
type InvitationDetail struct {
	Invitation
	TaskTitle   string
	InviterName string
	// Valid is IsValid evaluated when the detail was built.
	Valid bool
}

const (
	DeletedTaskLabel = "Deleted task"
	DeletedUserLabel = "Deleted user"
)
