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

// UserRepository implements ports.UserRepository using MongoDB.
type UserRepository struct {
	coll *mongo.Collection
}

func NewUserRepository(db *mongo.Database) *UserRepository {
	return &UserRepository{coll: db.Collection(collectionUsers)}
}

type userActionsDoc struct {
	ContestsParticipated int     `bson:"contestsParticipated"`
	ContestsWon          int     `bson:"contestsWon"`
	TotalWinnings        float64 `bson:"totalWinnings"`
}

type creatorActionsDoc struct {
	ContestsCreated   int     `bson:"contestsCreated"`
	ContestsCompleted int     `bson:"contestsCompleted"`
	TotalPrizePaid    float64 `bson:"totalPrizePaid"`
}

type adminActionsDoc struct {
	Approved int `bson:"approved"`
	Rejected int `bson:"rejected"`
	Deleted  int `bson:"deleted"`
}

type userDoc struct {
	ID             primitive.ObjectID `bson:"_id,omitempty"`
	Email          string             `bson:"email"`
	Name           string             `bson:"name"`
	Bio            string             `bson:"bio,omitempty"`
	Image          string             `bson:"image,omitempty"`
	Role           string             `bson:"role"`
	UserActions    userActionsDoc     `bson:"userActions"`
	CreatorActions creatorActionsDoc  `bson:"creatorActions"`
	AdminActions   adminActionsDoc    `bson:"adminActions"`
	CreatedAt      time.Time          `bson:"createdAt"`
	UpdatedAt      time.Time          `bson:"updatedAt"`
}

func (d *userDoc) toDomain() *domain.User {
	return &domain.User{
		Email: d.Email,
		Name:  d.Name,
		Bio:   d.Bio,
		Image: d.Image,
		Role:  domain.Role(d.Role),
		UserActions: domain.UserActions{
			ContestsParticipated: d.UserActions.ContestsParticipated,
			ContestsWon:          d.UserActions.ContestsWon,
			TotalWinnings:        d.UserActions.TotalWinnings,
		},
		CreatorActions: domain.CreatorActions{
			ContestsCreated:   d.CreatorActions.ContestsCreated,
			ContestsCompleted: d.CreatorActions.ContestsCompleted,
			TotalPrizePaid:    d.CreatorActions.TotalPrizePaid,
		},
		AdminActions: domain.AdminActions{
			Approved: d.AdminActions.Approved,
			Rejected: d.AdminActions.Rejected,
			Deleted:  d.AdminActions.Deleted,
		},
		CreatedAt: d.CreatedAt.UTC(),
		UpdatedAt: d.UpdatedAt.UTC(),
	}
}

// InsertIfAbsent inserts u and relies on the unique email index to detect an
// existing account.
func (r *UserRepository) InsertIfAbsent(ctx context.Context, u *domain.User) (*domain.User, bool, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := userDoc{
		Email:     u.Email,
		Name:      u.Name,
		Bio:       u.Bio,
		Image:     u.Image,
		Role:      string(u.Role),
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}

	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			existing, err := r.FindByEmail(ctx, u.Email)
			if err != nil {
				return nil, false, err
			}
			return existing, false, nil
		}
		return nil, false, fmt.Errorf("insert user: %w", err)
	}
	return doc.toDomain(), true, nil
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc userDoc
	if err := r.coll.FindOne(ctx, bson.M{"email": email}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return doc.toDomain(), nil
}

func (r *UserRepository) List(ctx context.Context) ([]*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cur, err := r.coll.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}

	var docs []userDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode users: %w", err)
	}

	out := make([]*domain.User, len(docs))
	for i := range docs {
		out[i] = docs[i].toDomain()
	}
	return out, nil
}

func (r *UserRepository) SetRole(ctx context.Context, email string, role domain.Role, at time.Time) error {
	return r.updateOne(ctx, email, bson.M{"$set": bson.M{"role": string(role), "updatedAt": at}})
}

func (r *UserRepository) UpdateProfile(ctx context.Context, email string, p domain.ProfileUpdate, at time.Time) error {
	return r.updateOne(ctx, email, bson.M{"$set": bson.M{
		"name":      p.Name,
		"bio":       p.Bio,
		"image":     p.Image,
		"updatedAt": at,
	}})
}

// Increment applies every non-zero field of delta in one $inc.
func (r *UserRepository) Increment(ctx context.Context, email string, delta domain.CounterDelta) error {
	inc := counterIncrements(delta)
	if len(inc) == 0 {
		return nil
	}
	return r.updateOne(ctx, email, bson.M{"$inc": inc})
}

func (r *UserRepository) updateOne(ctx context.Context, email string, update bson.M) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.coll.UpdateOne(ctx, bson.M{"email": email}, update)
	if err != nil {
		return fmt.Errorf("update user: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

// counterIncrements maps a delta onto dotted counter paths.
func counterIncrements(d domain.CounterDelta) bson.M {
	inc := bson.M{}
	addInt := func(path string, v int) {
		if v != 0 {
			inc[path] = v
		}
	}
	addFloat := func(path string, v float64) {
		if v != 0 {
			inc[path] = v
		}
	}

	addInt("userActions.contestsParticipated", d.ContestsParticipated)
	addInt("userActions.contestsWon", d.ContestsWon)
	addFloat("userActions.totalWinnings", d.TotalWinnings)
	addInt("creatorActions.contestsCreated", d.ContestsCreated)
	addInt("creatorActions.contestsCompleted", d.ContestsCompleted)
	addFloat("creatorActions.totalPrizePaid", d.TotalPrizePaid)
	addInt("adminActions.approved", d.Approved)
	addInt("adminActions.rejected", d.Rejected)
	addInt("adminActions.deleted", d.Deleted)
	return inc
}
