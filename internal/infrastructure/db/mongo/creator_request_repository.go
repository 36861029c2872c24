package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/contesthub/contest-service/internal/core/domain"
)

// CreatorRequestRepository implements ports.CreatorRequestRepository using MongoDB.
type CreatorRequestRepository struct {
	coll *mongo.Collection
}

func NewCreatorRequestRepository(db *mongo.Database) *CreatorRequestRepository {
	return &CreatorRequestRepository{coll: db.Collection(collectionCreatorRequests)}
}

type creatorRequestDoc struct {
	Email       string    `bson:"email"`
	RequestedAt time.Time `bson:"requestedAt"`
}

func (d creatorRequestDoc) toDomain() *domain.CreatorRequest {
	return &domain.CreatorRequest{Email: d.Email, RequestedAt: d.RequestedAt.UTC()}
}

// Create inserts a request; the unique email index rejects a second one.
func (r *CreatorRequestRepository) Create(ctx context.Context, req *domain.CreatorRequest) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	_, err := r.coll.InsertOne(ctx, creatorRequestDoc{Email: req.Email, RequestedAt: req.RequestedAt})
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.ErrAlreadyRequested
		}
		return fmt.Errorf("insert creator request: %w", err)
	}
	return nil
}

func (r *CreatorRequestRepository) List(ctx context.Context) ([]*domain.CreatorRequest, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cur, err := r.coll.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "requestedAt", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("list creator requests: %w", err)
	}

	var docs []creatorRequestDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode creator requests: %w", err)
	}

	out := make([]*domain.CreatorRequest, len(docs))
	for i, d := range docs {
		out[i] = d.toDomain()
	}
	return out, nil
}

// Take removes the request in one FindOneAndDelete, so two admins acting on
// the same request cannot both succeed.
func (r *CreatorRequestRepository) Take(ctx context.Context, email string) (*domain.CreatorRequest, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc creatorRequestDoc
	if err := r.coll.FindOneAndDelete(ctx, bson.M{"email": email}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrCreatorRequestNotFound
		}
		return nil, fmt.Errorf("take creator request: %w", err)
	}
	return doc.toDomain(), nil
}
