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
	"github.com/contesthub/contest-service/internal/core/ports"
)

// ContestRepository implements ports.ContestRepository using MongoDB.
type ContestRepository struct {
	col *mongo.Collection
}

func NewContestRepository(db *mongo.Database) *ContestRepository {
	return &ContestRepository{col: db.Collection(collectionContests)}
}

type winnerDoc struct {
	Status       string     `bson:"status"`
	Name         string     `bson:"name,omitempty"`
	Email        string     `bson:"email,omitempty"`
	Image        string     `bson:"image,omitempty"`
	SubmissionID string     `bson:"submissionId,omitempty"`
	DeclaredAt   *time.Time `bson:"declaredAt,omitempty"`
}

type contestDoc struct {
	ID               primitive.ObjectID `bson:"_id,omitempty"`
	Slug             string             `bson:"slug"`
	Name             string             `bson:"name"`
	Description      string             `bson:"description"`
	Image            string             `bson:"image"`
	ContestType      string             `bson:"contestType"`
	EntryFee         float64            `bson:"entryFee"`
	PrizeMoney       float64            `bson:"prizeMoney"`
	TaskInstruction  string             `bson:"taskInstruction"`
	Deadline         time.Time          `bson:"deadline"`
	Creator          creatorDoc         `bson:"creator"`
	Status           string             `bson:"status"`
	ParticipantCount int                `bson:"participantCount"`
	Winner           winnerDoc          `bson:"winner"`
	CreatedAt        time.Time          `bson:"createdAt"`
	UpdatedAt        time.Time          `bson:"updatedAt,omitempty"`
}

func toWinnerDoc(w domain.Winner) winnerDoc {
	return winnerDoc{
		Status:       string(w.Status),
		Name:         w.Name,
		Email:        w.Email,
		Image:        w.Image,
		SubmissionID: w.SubmissionID,
		DeclaredAt:   w.DeclaredAt,
	}
}

func (d *contestDoc) toDomain() *domain.Contest {
	c := &domain.Contest{
		ID:               d.ID.Hex(),
		Slug:             d.Slug,
		Name:             d.Name,
		Description:      d.Description,
		Image:            d.Image,
		ContestType:      d.ContestType,
		EntryFee:         d.EntryFee,
		PrizeMoney:       d.PrizeMoney,
		TaskInstruction:  d.TaskInstruction,
		Deadline:         d.Deadline.UTC(),
		Creator:          d.Creator.toDomain(),
		Status:           domain.ContestStatus(d.Status),
		ParticipantCount: d.ParticipantCount,
		Winner: domain.Winner{
			Status:       domain.WinnerStatus(d.Winner.Status),
			Name:         d.Winner.Name,
			Email:        d.Winner.Email,
			Image:        d.Winner.Image,
			SubmissionID: d.Winner.SubmissionID,
			DeclaredAt:   d.Winner.DeclaredAt,
		},
		CreatedAt: d.CreatedAt.UTC(),
		UpdatedAt: d.UpdatedAt.UTC(),
	}
	if c.Winner.Status == "" {
		c.Winner.Status = domain.WinnerPending
	}
	return c
}

// Create inserts a new contest document and returns its generated id.
func (r *ContestRepository) Create(ctx context.Context, c *domain.Contest) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := contestDoc{
		ID:               primitive.NewObjectID(),
		Slug:             c.Slug,
		Name:             c.Name,
		Description:      c.Description,
		Image:            c.Image,
		ContestType:      c.ContestType,
		EntryFee:         c.EntryFee,
		PrizeMoney:       c.PrizeMoney,
		TaskInstruction:  c.TaskInstruction,
		Deadline:         c.Deadline,
		Creator:          toCreatorDoc(c.Creator),
		Status:           string(c.Status),
		ParticipantCount: c.ParticipantCount,
		Winner:           toWinnerDoc(c.Winner),
		CreatedAt:        c.CreatedAt,
		UpdatedAt:        c.UpdatedAt,
	}

	if _, err := r.col.InsertOne(ctx, doc); err != nil {
		return "", fmt.Errorf("insert contest: %w", err)
	}
	return doc.ID.Hex(), nil
}

func (r *ContestRepository) FindByID(ctx context.Context, id string) (*domain.Contest, error) {
	oid, err := objectID(id, domain.ErrContestNotFound)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc contestDoc
	if err := r.col.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrContestNotFound
		}
		return nil, fmt.Errorf("find contest: %w", err)
	}
	return doc.toDomain(), nil
}

// FindByIDs loads every contest in ids that exists; unknown ids are skipped.
func (r *ContestRepository) FindByIDs(ctx context.Context, ids []string) ([]*domain.Contest, error) {
	oids := make([]primitive.ObjectID, 0, len(ids))
	for _, id := range ids {
		if oid, err := primitive.ObjectIDFromHex(id); err == nil {
			oids = append(oids, oid)
		}
	}
	if len(oids) == 0 {
		return []*domain.Contest{}, nil
	}
	return r.find(ctx, bson.M{"_id": bson.M{"$in": oids}}, options.Find())
}

func (r *ContestRepository) List(ctx context.Context, f ports.ContestFilter) ([]*domain.Contest, error) {
	filter := bson.M{}
	if f.Status != "" {
		filter["status"] = string(f.Status)
	}
	if f.CreatorEmail != "" {
		filter["creator.email"] = f.CreatorEmail
	}
	if f.WinnerEmail != "" {
		filter["winner.email"] = f.WinnerEmail
		filter["winner.status"] = string(domain.WinnerDeclared)
	}

	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	if f.ByPopularity {
		opts.SetSort(bson.D{{Key: "participantCount", Value: -1}, {Key: "createdAt", Value: -1}})
	}
	if f.Limit > 0 {
		opts.SetLimit(int64(f.Limit))
	}
	return r.find(ctx, filter, opts)
}

func (r *ContestRepository) UpdateDetails(ctx context.Context, id, creatorEmail string, d domain.ContestDetails, slug string, at time.Time) error {
	oid, err := objectID(id, domain.ErrContestNotFound)
	if err != nil {
		return err
	}

	filter := bson.M{
		"_id":           oid,
		"status":        string(domain.ContestPending),
		"creator.email": creatorEmail,
	}
	update := bson.M{"$set": bson.M{
		"slug":            slug,
		"name":            d.Name,
		"description":     d.Description,
		"image":           d.Image,
		"contestType":     d.ContestType,
		"entryFee":        d.EntryFee,
		"prizeMoney":      d.PrizeMoney,
		"taskInstruction": d.TaskInstruction,
		"deadline":        d.Deadline,
		"updatedAt":       at,
	}}

	matched, err := r.updateOne(ctx, filter, update)
	if err != nil {
		return err
	}
	if !matched {
		return domain.ErrContestNotPending
	}
	return nil
}

// Decide applies pending → outcome in one conditional update. When nothing
// matches, a follow-up count tells a missing contest from a decided one.
func (r *ContestRepository) Decide(ctx context.Context, id string, outcome domain.ContestStatus, at time.Time) error {
	oid, err := objectID(id, domain.ErrContestNotFound)
	if err != nil {
		return err
	}

	filter := bson.M{"_id": oid, "status": string(domain.ContestPending)}
	update := bson.M{"$set": bson.M{"status": string(outcome), "updatedAt": at}}

	matched, err := r.updateOne(ctx, filter, update)
	if err != nil {
		return err
	}
	if matched {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	n, err := r.col.CountDocuments(ctx, bson.M{"_id": oid}, options.Count().SetLimit(1))
	if err != nil {
		return fmt.Errorf("count contest: %w", err)
	}
	if n == 0 {
		return domain.ErrContestNotFound
	}
	return domain.ErrAlreadyProcessed
}

func (r *ContestRepository) DeletePendingByCreator(ctx context.Context, id, creatorEmail string) error {
	oid, err := objectID(id, domain.ErrContestNotFound)
	if err != nil {
		return err
	}
	return r.deleteOne(ctx, bson.M{
		"_id":           oid,
		"status":        string(domain.ContestPending),
		"creator.email": creatorEmail,
	}, domain.ErrContestNotPending)
}

func (r *ContestRepository) DeleteUnapproved(ctx context.Context, id string) error {
	oid, err := objectID(id, domain.ErrContestNotFound)
	if err != nil {
		return err
	}
	return r.deleteOne(ctx, bson.M{
		"_id":    oid,
		"status": bson.M{"$ne": string(domain.ContestApproved)},
	}, domain.ErrContestApproved)
}

func (r *ContestRepository) IncrementParticipants(ctx context.Context, id string) error {
	oid, err := objectID(id, domain.ErrContestNotFound)
	if err != nil {
		return err
	}

	matched, err := r.updateOne(ctx, bson.M{"_id": oid}, bson.M{"$inc": bson.M{"participantCount": 1}})
	if err != nil {
		return err
	}
	if !matched {
		return domain.ErrContestNotFound
	}
	return nil
}

// ClaimWinner writes the winner only while the slot is still pending.
func (r *ContestRepository) ClaimWinner(ctx context.Context, id string, w domain.Winner) error {
	oid, err := objectID(id, domain.ErrContestNotFound)
	if err != nil {
		return err
	}

	filter := bson.M{"_id": oid, "winner.status": string(domain.WinnerPending)}
	update := bson.M{"$set": bson.M{"winner": toWinnerDoc(w)}}

	matched, err := r.updateOne(ctx, filter, update)
	if err != nil {
		return err
	}
	if !matched {
		return domain.ErrAlreadyDeclared
	}
	return nil
}

func (r *ContestRepository) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]*domain.Contest, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cur, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("find contests: %w", err)
	}

	var docs []contestDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode contests: %w", err)
	}

	out := make([]*domain.Contest, len(docs))
	for i := range docs {
		out[i] = docs[i].toDomain()
	}
	return out, nil
}

func (r *ContestRepository) updateOne(ctx context.Context, filter, update bson.M) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.UpdateOne(ctx, filter, update)
	if err != nil {
		return false, fmt.Errorf("update contest: %w", err)
	}
	return res.MatchedCount > 0, nil
}

func (r *ContestRepository) deleteOne(ctx context.Context, filter bson.M, noMatch error) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.DeleteOne(ctx, filter)
	if err != nil {
		return fmt.Errorf("delete contest: %w", err)
	}
	if res.DeletedCount == 0 {
		return noMatch
	}
	return nil
}
