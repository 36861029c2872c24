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

// SubmissionRepository implements ports.SubmissionRepository using MongoDB.
type SubmissionRepository struct {
	col *mongo.Collection
}

func NewSubmissionRepository(db *mongo.Database) *SubmissionRepository {
	return &SubmissionRepository{col: db.Collection(collectionSubmissions)}
}

type submissionDoc struct {
	ID               primitive.ObjectID `bson:"_id,omitempty"`
	ContestID        string             `bson:"contestId"`
	ParticipantEmail string             `bson:"participantEmail"`
	ParticipantName  string             `bson:"participantName"`
	ParticipantImage string             `bson:"participantImage,omitempty"`
	SubmissionLink   string             `bson:"submissionLink"`
	Status           string             `bson:"status"`
	SubmittedAt      time.Time          `bson:"submittedAt"`
	UpdatedAt        time.Time          `bson:"updatedAt"`
}

func (d *submissionDoc) toDomain() *domain.Submission {
	return &domain.Submission{
		ID:               d.ID.Hex(),
		ContestID:        d.ContestID,
		ParticipantEmail: d.ParticipantEmail,
		ParticipantName:  d.ParticipantName,
		ParticipantImage: d.ParticipantImage,
		SubmissionLink:   d.SubmissionLink,
		Status:           domain.SubmissionStatus(d.Status),
		SubmittedAt:      d.SubmittedAt.UTC(),
		UpdatedAt:        d.UpdatedAt.UTC(),
	}
}

// Upsert keys on (contestId, participantEmail). Two concurrent first
// submissions can both miss and race to insert; the unique index rejects one,
// which is retried once as a plain update.
func (r *SubmissionRepository) Upsert(ctx context.Context, s *domain.Submission) (*domain.Submission, bool, error) {
	filter := bson.M{"contestId": s.ContestID, "participantEmail": s.ParticipantEmail}
	update := bson.M{
		"$set": bson.M{
			"submissionLink": s.SubmissionLink,
			"updatedAt":      s.UpdatedAt,
		},
		"$setOnInsert": bson.M{
			"participantName":  s.ParticipantName,
			"participantImage": s.ParticipantImage,
			"status":           string(s.Status),
			"submittedAt":      s.SubmittedAt,
		},
	}

	created, err := r.upsertOnce(ctx, filter, update)
	if err != nil && mongo.IsDuplicateKeyError(err) {
		created, err = r.upsertOnce(ctx, filter, update)
	}
	if err != nil {
		return nil, false, fmt.Errorf("upsert submission: %w", err)
	}

	stored, err := r.FindByContestAndParticipant(ctx, s.ContestID, s.ParticipantEmail)
	if err != nil {
		return nil, false, err
	}
	return stored, created, nil
}

func (r *SubmissionRepository) upsertOnce(ctx context.Context, filter, update bson.M) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
	if err != nil {
		return false, err
	}
	return res.UpsertedCount == 1, nil
}

func (r *SubmissionRepository) FindByID(ctx context.Context, id string) (*domain.Submission, error) {
	oid, err := objectID(id, domain.ErrSubmissionNotFound)
	if err != nil {
		return nil, err
	}
	return r.findOne(ctx, bson.M{"_id": oid})
}

func (r *SubmissionRepository) FindByContestAndParticipant(ctx context.Context, contestID, email string) (*domain.Submission, error) {
	return r.findOne(ctx, bson.M{"contestId": contestID, "participantEmail": email})
}

func (r *SubmissionRepository) ListByContest(ctx context.Context, contestID string) ([]*domain.Submission, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cur, err := r.col.Find(ctx, bson.M{"contestId": contestID}, options.Find().SetSort(bson.D{{Key: "submittedAt", Value: -1}}))
	if err != nil {
		return nil, fmt.Errorf("list submissions: %w", err)
	}

	var docs []submissionDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode submissions: %w", err)
	}

	out := make([]*domain.Submission, len(docs))
	for i := range docs {
		out[i] = docs[i].toDomain()
	}
	return out, nil
}

// MarkResults grades the contest's submissions after the winner slot has been
// claimed. The two writes are not atomic together; re-running converges.
func (r *SubmissionRepository) MarkResults(ctx context.Context, contestID, winnerID string, at time.Time) error {
	oid, err := objectID(winnerID, domain.ErrSubmissionNotFound)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.UpdateOne(ctx,
		bson.M{"_id": oid, "contestId": contestID},
		bson.M{"$set": bson.M{"status": string(domain.SubmissionWinner), "updatedAt": at}},
	)
	if err != nil {
		return fmt.Errorf("mark winner submission: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrSubmissionNotFound
	}

	_, err = r.col.UpdateMany(ctx,
		bson.M{"contestId": contestID, "_id": bson.M{"$ne": oid}},
		bson.M{"$set": bson.M{"status": string(domain.SubmissionNotSelected), "updatedAt": at}},
	)
	if err != nil {
		return fmt.Errorf("mark other submissions: %w", err)
	}
	return nil
}

func (r *SubmissionRepository) findOne(ctx context.Context, filter bson.M) (*domain.Submission, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc submissionDoc
	if err := r.col.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrSubmissionNotFound
		}
		return nil, fmt.Errorf("find submission: %w", err)
	}
	return doc.toDomain(), nil
}
