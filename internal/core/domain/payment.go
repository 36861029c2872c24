package domain

import "time"

const PaymentPaid = "paid"

// Payment is the durable record of a confirmed entry fee. TransactionID is the
// payment provider's payment-intent id and is unique across all payments.
type Payment struct {
	ID               string    `json:"id"`
	TransactionID    string    `json:"transactionId"`
	ContestID        string    `json:"contestId"`
	ParticipantEmail string    `json:"participantEmail"`
	ParticipantName  string    `json:"participantName"`
	ParticipantImage string    `json:"participantImage,omitempty"`
	Price            float64   `json:"price"`
	Status           string    `json:"status"`
	PaidAt           time.Time `json:"paidAt"`
	ContestName      string    `json:"name"`
	ContestImage     string    `json:"image"`
	Creator          Creator   `json:"creator"`
}

// CheckoutSessionStatus mirrors the provider's session states.
type CheckoutSessionStatus string

const (
	SessionOpen     CheckoutSessionStatus = "open"
	SessionComplete CheckoutSessionStatus = "complete"
	SessionExpired  CheckoutSessionStatus = "expired"
)

// CheckoutSession is the provider-side view of a hosted checkout.
type CheckoutSession struct {
	ID              string
	Status          CheckoutSessionStatus
	AmountTotal     int64 // minor units
	PaymentIntentID string
	Metadata        map[string]string
}

// Metadata keys attached to a checkout session and read back on confirmation.
const (
	MetaContestID        = "contestId"
	MetaParticipantEmail = "participantEmail"
	MetaParticipantName  = "participantName"
	MetaParticipantImage = "participantImage"
)
