package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/contesthub/contest-service/internal/core/domain"
)

// PaymentRepository implements ports.PaymentRepository using MongoDB.
type PaymentRepository struct {
	col *mongo.Collection
}

func NewPaymentRepository(db *mongo.Database) *PaymentRepository {
	return &PaymentRepository{col: db.Collection(collectionPayments)}
}

type paymentDoc struct {
	ID               primitive.ObjectID `bson:"_id,omitempty"`
	TransactionID    string             `bson:"transactionId"`
	ContestID        string             `bson:"contestId"`
	ParticipantEmail string             `bson:"participantEmail"`
	ParticipantName  string             `bson:"participantName"`
	ParticipantImage string             `bson:"participantImage,omitempty"`
	Price            float64            `bson:"price"`
	Status           string             `bson:"status"`
	PaidAt           time.Time          `bson:"paidAt"`
	Name             string             `bson:"name"`
	Image            string             `bson:"image"`
	Creator          creatorDoc         `bson:"creator"`
}

func (d *paymentDoc) toDomain() *domain.Payment {
	return &domain.Payment{
		ID:               d.ID.Hex(),
		TransactionID:    d.TransactionID,
		ContestID:        d.ContestID,
		ParticipantEmail: d.ParticipantEmail,
		ParticipantName:  d.ParticipantName,
		ParticipantImage: d.ParticipantImage,
		Price:            d.Price,
		Status:           d.Status,
		PaidAt:           d.PaidAt.UTC(),
		ContestName:      d.Name,
		ContestImage:     d.Image,
		Creator:          d.Creator.toDomain(),
	}
}

// InsertIfAbsent inserts p; a duplicate transactionId means another
// confirmation already recorded it and the stored payment is returned.
func (r *PaymentRepository) InsertIfAbsent(ctx context.Context, p *domain.Payment) (*domain.Payment, bool, error) {
	doc := paymentDoc{
		ID:               primitive.NewObjectID(),
		TransactionID:    p.TransactionID,
		ContestID:        p.ContestID,
		ParticipantEmail: p.ParticipantEmail,
		ParticipantName:  p.ParticipantName,
		ParticipantImage: p.ParticipantImage,
		Price:            p.Price,
		Status:           p.Status,
		PaidAt:           p.PaidAt,
		Name:             p.ContestName,
		Image:            p.ContestImage,
		Creator:          toCreatorDoc(p.Creator),
	}

	insertCtx, cancel := context.WithTimeout(ctx, defaultTimeout)
	_, err := r.col.InsertOne(insertCtx, doc)
	cancel()
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			existing, err := r.FindByTransactionID(ctx, p.TransactionID)
			if err != nil {
				return nil, false, err
			}
			return existing, false, nil
		}
		return nil, false, fmt.Errorf("insert payment: %w", err)
	}
	return doc.toDomain(), true, nil
}

func (r *PaymentRepository) FindByTransactionID(ctx context.Context, transactionID string) (*domain.Payment, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc paymentDoc
	if err := r.col.FindOne(ctx, bson.M{"transactionId": transactionID}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrPaymentNotFound
		}
		return nil, fmt.Errorf("find payment: %w", err)
	}
	return doc.toDomain(), nil
}

func (r *PaymentRepository) ExistsPaid(ctx context.Context, contestID, email string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	n, err := r.col.CountDocuments(ctx, bson.M{
		"contestId":        contestID,
		"participantEmail": email,
		"status":           domain.PaymentPaid,
	}, options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("count payments: %w", err)
	}
	return n > 0, nil
}

func (r *PaymentRepository) ListByParticipant(ctx context.Context, email string) ([]*domain.Payment, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cur, err := r.col.Find(ctx, bson.M{"participantEmail": email}, options.Find().SetSort(bson.D{{Key: "paidAt", Value: -1}}))
	if err != nil {
		return nil, fmt.Errorf("list payments: %w", err)
	}

	var docs []paymentDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode payments: %w", err)
	}

	out := make([]*domain.Payment, len(docs))
	for i := range docs {
		out[i] = docs[i].toDomain()
	}
	return out, nil
}
