package ports

import (
	"context"
	"time"

	"github.com/contesthub/contest-service/internal/core/domain"
)

// UserRepository persists users keyed by normalized email.
type UserRepository interface {
	// InsertIfAbsent creates u unless a user with the same email exists, in
	// which case the stored user is returned with created=false.
	InsertIfAbsent(ctx context.Context, u *domain.User) (user *domain.User, created bool, err error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	// List returns all users, newest first.
	List(ctx context.Context) ([]*domain.User, error)
	SetRole(ctx context.Context, email string, role domain.Role, at time.Time) error
	UpdateProfile(ctx context.Context, email string, p domain.ProfileUpdate, at time.Time) error
	// Increment applies delta with a single atomic $inc.
	Increment(ctx context.Context, email string, delta domain.CounterDelta) error
}

// CreatorRequestRepository persists outstanding creator-promotion requests.
type CreatorRequestRepository interface {
	// Create fails with domain.ErrAlreadyRequested when one exists for the email.
	Create(ctx context.Context, r *domain.CreatorRequest) error
	List(ctx context.Context) ([]*domain.CreatorRequest, error)
	// Take atomically removes and returns the request for email.
	Take(ctx context.Context, email string) (*domain.CreatorRequest, error)
}

// ContestFilter narrows contest listings. Zero values mean no filter.
type ContestFilter struct {
	Status       domain.ContestStatus
	CreatorEmail string
	WinnerEmail  string
	// ByPopularity sorts by participantCount desc instead of createdAt desc.
	ByPopularity bool
	Limit        int
}

// ContestRepository persists contests. Every mutation is a single-document
// conditional write whose filter carries the required precondition.
type ContestRepository interface {
	Create(ctx context.Context, c *domain.Contest) (string, error)
	FindByID(ctx context.Context, id string) (*domain.Contest, error)
	FindByIDs(ctx context.Context, ids []string) ([]*domain.Contest, error)
	List(ctx context.Context, filter ContestFilter) ([]*domain.Contest, error)

	// UpdateDetails succeeds only while the contest is pending and owned by
	// creatorEmail; otherwise domain.ErrContestNotPending.
	UpdateDetails(ctx context.Context, id, creatorEmail string, d domain.ContestDetails, slug string, at time.Time) error
	// Decide moves a pending contest to outcome. A missing contest yields
	// domain.ErrContestNotFound, a decided one domain.ErrAlreadyProcessed.
	Decide(ctx context.Context, id string, outcome domain.ContestStatus, at time.Time) error
	DeletePendingByCreator(ctx context.Context, id, creatorEmail string) error
	// DeleteUnapproved removes a contest whose status is not approved.
	DeleteUnapproved(ctx context.Context, id string) error
	IncrementParticipants(ctx context.Context, id string) error
	// ClaimWinner sets the winner only while winner.status is pending;
	// otherwise domain.ErrAlreadyDeclared.
	ClaimWinner(ctx context.Context, id string, w domain.Winner) error
}

// SubmissionRepository persists one submission per (contest, participant).
type SubmissionRepository interface {
	// Upsert overwrites link and updatedAt of an existing pair, or inserts s
	// with its status. created reports which happened.
	Upsert(ctx context.Context, s *domain.Submission) (sub *domain.Submission, created bool, err error)
	FindByID(ctx context.Context, id string) (*domain.Submission, error)
	FindByContestAndParticipant(ctx context.Context, contestID, email string) (*domain.Submission, error)
	// ListByContest returns submissions newest first.
	ListByContest(ctx context.Context, contestID string) ([]*domain.Submission, error)
	// MarkResults grades winnerID as winner and every sibling as not_selected.
	MarkResults(ctx context.Context, contestID, winnerID string, at time.Time) error
}

// PaymentRepository persists payments keyed by provider transaction id.
type PaymentRepository interface {
	// InsertIfAbsent is the idempotency point of payment reconciliation: it
	// inserts p unless a payment with the same TransactionID exists, in which
	// case the stored payment is returned with inserted=false.
	InsertIfAbsent(ctx context.Context, p *domain.Payment) (payment *domain.Payment, inserted bool, err error)
	FindByTransactionID(ctx context.Context, transactionID string) (*domain.Payment, error)
	ExistsPaid(ctx context.Context, contestID, email string) (bool, error)
	// ListByParticipant returns a participant's payments, newest first.
	ListByParticipant(ctx context.Context, email string) ([]*domain.Payment, error)
}
