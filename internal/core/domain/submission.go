package domain

import "time"

// SubmissionStatus is the judging result of a submission.
type SubmissionStatus string

const (
	SubmissionPending     SubmissionStatus = "pending"
	SubmissionWinner      SubmissionStatus = "winner"
	SubmissionNotSelected SubmissionStatus = "not_selected"
)

// Participant is the denormalized identity of a paying user.
type Participant struct {
	Email string `json:"email"`
	Name  string `json:"name"`
	Image string `json:"image,omitempty"`
}

// Submission is a participant's single entry for a contest.
type Submission struct {
	ID               string           `json:"id"`
	ContestID        string           `json:"contestId"`
	ParticipantEmail string           `json:"participantEmail"`
	ParticipantName  string           `json:"participantName"`
	ParticipantImage string           `json:"participantImage,omitempty"`
	SubmissionLink   string           `json:"submissionLink"`
	Status           SubmissionStatus `json:"status"`
	SubmittedAt      time.Time        `json:"submittedAt"`
	UpdatedAt        time.Time        `json:"updatedAt"`
}
