package mongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type collectionIndexes struct {
	collection string
	models     []mongo.IndexModel
}

// indexPlan lists every index the service relies on. The unique ones back
// the insert-if-absent writes and must exist before traffic is served.
func indexPlan() []collectionIndexes {
	return []collectionIndexes{
		{collectionUsers, []mongo.IndexModel{
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true).SetName("uniq_email")},
		}},
		{collectionCreatorRequests, []mongo.IndexModel{
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true).SetName("uniq_email")},
		}},
		{collectionContests, []mongo.IndexModel{
			{Keys: bson.D{{Key: "status", Value: 1}, {Key: "createdAt", Value: -1}}, Options: options.Index().SetName("status_created")},
			{Keys: bson.D{{Key: "status", Value: 1}, {Key: "participantCount", Value: -1}}, Options: options.Index().SetName("status_popularity")},
			{Keys: bson.D{{Key: "creator.email", Value: 1}}, Options: options.Index().SetName("creator_email")},
			{Keys: bson.D{{Key: "winner.email", Value: 1}}, Options: options.Index().SetName("winner_email")},
		}},
		{collectionSubmissions, []mongo.IndexModel{
			{Keys: bson.D{{Key: "contestId", Value: 1}, {Key: "participantEmail", Value: 1}}, Options: options.Index().SetUnique(true).SetName("uniq_contest_participant")},
		}},
		{collectionPayments, []mongo.IndexModel{
			{Keys: bson.D{{Key: "transactionId", Value: 1}}, Options: options.Index().SetUnique(true).SetName("uniq_transaction")},
			{Keys: bson.D{{Key: "contestId", Value: 1}, {Key: "participantEmail", Value: 1}}, Options: options.Index().SetName("contest_participant")},
			{Keys: bson.D{{Key: "participantEmail", Value: 1}, {Key: "paidAt", Value: -1}}, Options: options.Index().SetName("participant_paid")},
		}},
	}
}

// EnsureIndexes creates the indexes in indexPlan. CreateMany is idempotent for
// identical specifications.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	for _, ci := range indexPlan() {
		idxCtx, cancel := context.WithTimeout(ctx, defaultTimeout)
		_, err := db.Collection(ci.collection).Indexes().CreateMany(idxCtx, ci.models)
		cancel()
		if err != nil {
			return fmt.Errorf("ensure indexes on %s: %w", ci.collection, err)
		}
	}
	return nil
}
