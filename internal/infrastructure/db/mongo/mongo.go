package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/contesthub/contest-service/internal/core/domain"
)

const defaultTimeout = 10 * time.Second

// Collection names.
const (
	collectionUsers           = "users"
	collectionCreatorRequests = "creatorRequests"
	collectionContests        = "contests"
	collectionSubmissions     = "submissions"
	collectionPayments        = "payments"
)

// Config captures the minimal settings required to establish a MongoDB connection.
type Config struct {
	URI      string
	Database string
	Timeout  time.Duration
}

// Connect establishes a MongoDB client pinned to the stable server API,
// verifies connectivity with a ping, and returns both the client and the
// selected database. A default timeout is applied when none is provided.
func Connect(ctx context.Context, cfg Config) (*mongo.Client, *mongo.Database, error) {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	connectCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	opts := options.Client().
		ApplyURI(cfg.URI).
		SetServerAPIOptions(options.ServerAPI(options.ServerAPIVersion1))

	client, err := mongo.Connect(connectCtx, opts)
	if err != nil {
		return nil, nil, fmt.Errorf("mongo connect: %w", err)
	}

	if err := client.Ping(connectCtx, nil); err != nil {
		_ = client.Disconnect(connectCtx)
		return nil, nil, fmt.Errorf("mongo ping: %w", err)
	}

	db := client.Database(cfg.Database)
	return client, db, nil
}

// objectID parses a hex id. Malformed ids can never match a document, so they
// map to notFound instead of a client error.
func objectID(id string, notFound error) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, notFound
	}
	return oid, nil
}

// creatorDoc is the embedded creator snapshot shared by contests and payments.
type creatorDoc struct {
	Email string `bson:"email"`
	Name  string `bson:"name"`
	Image string `bson:"image,omitempty"`
}

func toCreatorDoc(c domain.Creator) creatorDoc {
	return creatorDoc{Email: c.Email, Name: c.Name, Image: c.Image}
}

func (d creatorDoc) toDomain() domain.Creator {
	return domain.Creator{Email: d.Email, Name: d.Name, Image: d.Image}
}
