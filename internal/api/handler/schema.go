package handler

import (
	"time"

	"github.com/contesthub/contest-service/internal/core/domain"
	"github.com/contesthub/contest-service/internal/core/ports"
)

// errorResponse is the standard error envelope returned on all 4xx/5xx responses.
type errorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind,omitempty"`
}

type messageResponse struct {
	Message string `json:"message"`
}

// --- Users ---

type registerUserRequest struct {
	Name  string `json:"name"  validate:"required,max=120"`
	Bio   string `json:"bio"   validate:"max=1000"`
	Image string `json:"image" validate:"omitempty,url"`
}

type registerUserResponse struct {
	User    *domain.User `json:"user"`
	Created bool         `json:"created"`
}

type updateProfileRequest struct {
	Name  string `json:"name"  validate:"required,max=120"`
	Bio   string `json:"bio"   validate:"max=1000"`
	Image string `json:"image" validate:"omitempty,url"`
}

type setRoleRequest struct {
	Role string `json:"role" validate:"required,oneof=user creator admin"`
}

type roleResponse struct {
	Role string `json:"role"`
}

// --- Contests ---

type contestRequest struct {
	Name            string    `json:"name"            validate:"required,max=200"`
	Description     string    `json:"description"     validate:"required"`
	Image           string    `json:"image"           validate:"omitempty,url"`
	ContestType     string    `json:"contestType"     validate:"required"`
	EntryFee        float64   `json:"entryFee"        validate:"gte=0"`
	PrizeMoney      float64   `json:"prizeMoney"      validate:"gte=0"`
	TaskInstruction string    `json:"taskInstruction" validate:"required"`
	Deadline        time.Time `json:"deadline"        validate:"required"`
}

func (r contestRequest) toDetails() domain.ContestDetails {
	return domain.ContestDetails{
		Name:            r.Name,
		Description:     r.Description,
		Image:           r.Image,
		ContestType:     r.ContestType,
		EntryFee:        r.EntryFee,
		PrizeMoney:      r.PrizeMoney,
		TaskInstruction: r.TaskInstruction,
		Deadline:        r.Deadline.UTC(),
	}
}

type createdResponse struct {
	ID string `json:"id"`
}

type decideContestRequest struct {
	Status string `json:"status" validate:"required,oneof=approved rejected"`
}

// --- Submissions ---

type submitTaskRequest struct {
	SubmissionLink   string `json:"submissionLink"   validate:"required,url"`
	ParticipantName  string `json:"participantName"  validate:"max=120"`
	ParticipantImage string `json:"participantImage" validate:"omitempty,url"`
}

type mySubmissionResponse struct {
	Submitted  bool               `json:"submitted"`
	Submission *domain.Submission `json:"submission,omitempty"`
}

// --- Payments ---

type participantRequest struct {
	Name  string `json:"name"  validate:"max=120"`
	Image string `json:"image" validate:"omitempty,url"`
}

type checkoutRequest struct {
	ContestID   string             `json:"contestId"   validate:"required"`
	Participant participantRequest `json:"participant"`
}

type checkoutResponse struct {
	URL string `json:"url"`
}

type confirmPaymentRequest struct {
	SessionID string `json:"sessionId" validate:"required"`
}

type hasPaidResponse struct {
	Paid bool `json:"paid"`
}

// participatedResponse is a payment joined with the live contest state.
type participatedResponse struct {
	*domain.Payment
	Deadline       *time.Time `json:"deadline,omitempty"`
	ContestStatus  string     `json:"contestStatus,omitempty"`
	WinnerStatus   string     `json:"winnerStatus,omitempty"`
	ContestMissing bool       `json:"contestMissing,omitempty"`
}

func toParticipatedResponse(items []ports.ParticipatedContest) []participatedResponse {
	out := make([]participatedResponse, 0, len(items))
	for _, it := range items {
		r := participatedResponse{Payment: it.Payment, ContestMissing: it.ContestMissing}
		if !it.ContestMissing {
			deadline := it.Deadline
			r.Deadline = &deadline
			r.ContestStatus = string(it.ContestStatus)
			r.WinnerStatus = string(it.WinnerStatus)
		}
		out = append(out, r)
	}
	return out
}
