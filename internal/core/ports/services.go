package ports

import (
	"context"
	"time"

	"github.com/contesthub/contest-service/internal/core/domain"
)

// Actor is the authenticated principal performing an operation. Role is empty
// for principals that have not registered yet.
type Actor struct {
	Email string
	Role  domain.Role
}

// --- RoleManager ---

// RegisterInput carries self-registration data. Email comes from the verified
// credential, never from the request body.
type RegisterInput struct {
	Email string
	Name  string
	Bio   string
	Image string
}

type RoleService interface {
	Register(ctx context.Context, in RegisterInput) (user *domain.User, created bool, err error)
	GetUser(ctx context.Context, email string) (*domain.User, error)
	GetRole(ctx context.Context, email string) (domain.Role, error)
	ListUsers(ctx context.Context, actor Actor) ([]*domain.User, error)
	SetRole(ctx context.Context, email string, role domain.Role, actor Actor) error
	UpdateProfile(ctx context.Context, email string, p domain.ProfileUpdate) (*domain.User, error)
	RequestCreatorPromotion(ctx context.Context, email string) (*domain.CreatorRequest, error)
	ListRequests(ctx context.Context, actor Actor) ([]*domain.CreatorRequest, error)
	ApprovePromotion(ctx context.Context, email string, actor Actor) error
	RejectPromotion(ctx context.Context, email string, actor Actor) error
}

// --- ContestLifecycle ---

type ContestService interface {
	Create(ctx context.Context, d domain.ContestDetails, actor Actor) (string, error)
	Edit(ctx context.Context, id string, d domain.ContestDetails, actor Actor) (*domain.Contest, error)
	Decide(ctx context.Context, id string, outcome domain.ContestStatus, actor Actor) error
	Delete(ctx context.Context, id string, actor Actor) error
	Get(ctx context.Context, id string) (*domain.Contest, error)
	ListApproved(ctx context.Context) ([]*domain.Contest, error)
	ListPopular(ctx context.Context, limit int) ([]*domain.Contest, error)
	ListByCreator(ctx context.Context, email string) ([]*domain.Contest, error)
	ListAll(ctx context.Context, actor Actor) ([]*domain.Contest, error)
}

// ParticipantCounter is the narrow hook the payment reconciler uses to bump a
// contest's participant count.
type ParticipantCounter interface {
	IncrementParticipantCount(ctx context.Context, contestID string) error
}

// --- SubmissionTracker ---

type SubmitInput struct {
	ContestID   string
	Participant domain.Participant
	Link        string
}

type SubmissionService interface {
	Submit(ctx context.Context, in SubmitInput) (*domain.Submission, error)
	GetForContest(ctx context.Context, contestID string, actor Actor) ([]*domain.Submission, error)
	// GetMine returns nil and no error when the participant has not submitted.
	GetMine(ctx context.Context, contestID, email string) (*domain.Submission, error)
}

// --- PaymentReconciler ---

// CheckoutInput names the contest to enter. Price and product details come
// from the stored contest, never from the client.
type CheckoutInput struct {
	ContestID   string
	Participant domain.Participant
}

// ConfirmResult identifies the payment a confirmed session maps to.
type ConfirmResult struct {
	TransactionID string `json:"transactionId"`
	PaymentID     string `json:"paymentId"`
	// AlreadyRecorded is true when an earlier confirmation created the payment.
	AlreadyRecorded bool `json:"alreadyRecorded"`
}

// ParticipatedContest joins a payment with the live state of its contest.
type ParticipatedContest struct {
	Payment       *domain.Payment
	Deadline      time.Time
	ContestStatus domain.ContestStatus
	WinnerStatus  domain.WinnerStatus
	// ContestMissing is set when the contest was deleted after payment.
	ContestMissing bool
}

type PaymentService interface {
	StartCheckout(ctx context.Context, in CheckoutInput) (string, error)
	Confirm(ctx context.Context, sessionID string) (*ConfirmResult, error)
	HasPaid(ctx context.Context, contestID, email string) (bool, error)
	ListMine(ctx context.Context, email string) ([]ParticipatedContest, error)
}

// --- WinnerSelector ---

type WinnerService interface {
	Declare(ctx context.Context, submissionID string, actor Actor) (*domain.Contest, error)
	ListWinnings(ctx context.Context, email string) ([]*domain.Contest, error)
}

// CounterIncrementer applies counter increments to a user. It is implemented
// by the role service, the only owner of user counters.
type CounterIncrementer interface {
	IncrementCounters(ctx context.Context, email string, delta domain.CounterDelta) error
}
