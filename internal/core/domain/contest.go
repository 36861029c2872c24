package domain

import (
	"strings"
	"time"
)

// ContestStatus represents the moderation state of a contest.
type ContestStatus string

const (
	ContestPending  ContestStatus = "pending"
	ContestApproved ContestStatus = "approved"
	ContestRejected ContestStatus = "rejected"
)

// validDecisions defines the allowed moderation transitions. Decided contests
// never return to pending.
var validDecisions = map[ContestStatus][]ContestStatus{
	ContestPending: {ContestApproved, ContestRejected},
}

// CanTransitionTo reports whether a transition from current status to next is valid.
func (s ContestStatus) CanTransitionTo(next ContestStatus) bool {
	for _, allowed := range validDecisions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// WinnerStatus is the one-way state of a contest's winner slot.
type WinnerStatus string

const (
	WinnerPending  WinnerStatus = "pending"
	WinnerDeclared WinnerStatus = "declared"
)

// Creator is the denormalized identity of the user who owns a contest.
type Creator struct {
	Email string `json:"email"`
	Name  string `json:"name"`
	Image string `json:"image,omitempty"`
}

// Winner is embedded in a contest and has no lifecycle of its own.
type Winner struct {
	Status       WinnerStatus `json:"status"`
	Name         string       `json:"name,omitempty"`
	Email        string       `json:"email,omitempty"`
	Image        string       `json:"image,omitempty"`
	SubmissionID string       `json:"submissionId,omitempty"`
	DeclaredAt   *time.Time   `json:"declaredAt,omitempty"`
}

// Contest is the core aggregate root.
type Contest struct {
	ID               string        `json:"id"`
	Slug             string        `json:"slug"`
	Name             string        `json:"name"`
	Description      string        `json:"description"`
	Image            string        `json:"image"`
	ContestType      string        `json:"contestType"`
	EntryFee         float64       `json:"entryFee"`
	PrizeMoney       float64       `json:"prizeMoney"`
	TaskInstruction  string        `json:"taskInstruction"`
	Deadline         time.Time     `json:"deadline"`
	Creator          Creator       `json:"creator"`
	Status           ContestStatus `json:"status"`
	ParticipantCount int           `json:"participantCount"`
	Winner           Winner        `json:"winner"`
	CreatedAt        time.Time     `json:"createdAt"`
	UpdatedAt        time.Time     `json:"updatedAt,omitempty"`
}

// NormalizeContestID returns the canonical lowercase form of a contest id as
// stored on payments and submissions.
func NormalizeContestID(id string) string {
	return strings.ToLower(strings.TrimSpace(id))
}

// AcceptsSubmissionsAt reports whether the deadline has not yet passed at t.
func (c *Contest) AcceptsSubmissionsAt(t time.Time) bool {
	return !t.After(c.Deadline)
}

// ContestDetails is the creator-editable field set of a contest.
type ContestDetails struct {
	Name            string
	Description     string
	Image           string
	ContestType     string
	EntryFee        float64
	PrizeMoney      float64
	TaskInstruction string
	Deadline        time.Time
}
