package domain

import (
	"strings"
	"time"
)

type Role string

const (
	RoleUser    Role = "user"
	RoleCreator Role = "creator"
	RoleAdmin   Role = "admin"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleCreator, RoleAdmin:
		return true
	}
	return false
}

// UserActions tracks what a user did as a participant.
type UserActions struct {
	ContestsParticipated int     `json:"contestsParticipated"`
	ContestsWon          int     `json:"contestsWon"`
	TotalWinnings        float64 `json:"totalWinnings"`
}

// CreatorActions tracks what a user did as a contest creator.
type CreatorActions struct {
	ContestsCreated   int     `json:"contestsCreated"`
	ContestsCompleted int     `json:"contestsCompleted"`
	TotalPrizePaid    float64 `json:"totalPrizePaid"`
}

// AdminActions tracks moderation decisions taken by an admin.
type AdminActions struct {
	Approved int `json:"approved"`
	Rejected int `json:"rejected"`
	Deleted  int `json:"deleted"`
}

// User is a registered account keyed by its normalized email.
type User struct {
	Email          string         `json:"email"`
	Name           string         `json:"name"`
	Bio            string         `json:"bio,omitempty"`
	Image          string         `json:"image,omitempty"`
	Role           Role           `json:"role"`
	UserActions    UserActions    `json:"userActions"`
	CreatorActions CreatorActions `json:"creatorActions"`
	AdminActions   AdminActions   `json:"adminActions"`
	CreatedAt      time.Time      `json:"createdAt"`
	UpdatedAt      time.Time      `json:"updatedAt"`
}

// CounterDelta is a set of increments applied to a user's counters in a
// single write. Zero fields are left untouched.
type CounterDelta struct {
	ContestsParticipated int
	ContestsWon          int
	TotalWinnings        float64
	ContestsCreated      int
	ContestsCompleted    int
	TotalPrizePaid       float64
	Approved             int
	Rejected             int
	Deleted              int
}

// IsZero reports whether the delta would change nothing.
func (d CounterDelta) IsZero() bool {
	return d == CounterDelta{}
}

// ProfileUpdate carries the self-service editable fields of a user.
type ProfileUpdate struct {
	Name  string
	Bio   string
	Image string
}

// CreatorRequest is an outstanding request to be promoted to creator.
type CreatorRequest struct {
	Email       string    `json:"email"`
	RequestedAt time.Time `json:"requestedAt"`
}

// NormalizeEmail makes emails comparable regardless of case and padding.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
