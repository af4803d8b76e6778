// Package store implements the ledger's persistence interface on MongoDB.
package store

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	ledger "github.com/sow2grow/farm-mall-api/ledger"
	models "github.com/sow2grow/farm-mall-api/models"
)

// Collection names.
const (
	ColUsers       = "users"
	ColOrchards    = "orchards"
	ColPockets     = "pockets"
	ColBestowments = "bestowments"
)

// Mongo backs the orchard ledger with a MongoDB database. Pocket
// uniqueness is enforced by a unique index on (orchard_id, pocket_number)
// and the allocation commit runs in a multi-document transaction, so two
// racing claims for the same pocket cannot both succeed.
type Mongo struct {
	client *mongo.Client
	db     *mongo.Database
}

func NewMongo(client *mongo.Client, dbName string) *Mongo {
	return &Mongo{client: client, db: client.Database(dbName)}
}

// EnsureIndexes creates the indexes the ledger's correctness depends on.
// Called once at startup.
func (s *Mongo) EnsureIndexes(ctx context.Context) error {
	_, err := s.db.Collection(ColPockets).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{
			{Key: "orchard_id", Value: 1},
			{Key: "pocket_number", Value: 1},
		},
		Options: options.Index().SetUnique(true).SetName("uniq_orchard_pocket"),
	})
	if err != nil {
		return fmt.Errorf("create pocket index: %w", err)
	}

	_, err = s.db.Collection(ColUsers).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("uniq_user_email"),
	})
	if err != nil {
		return fmt.Errorf("create user email index: %w", err)
	}
	return nil
}

func (s *Mongo) Orchard(ctx context.Context, id primitive.ObjectID) (*models.Orchard, error) {
	var orchard models.Orchard
	err := s.db.Collection(ColOrchards).FindOne(ctx, bson.M{"_id": id}).Decode(&orchard)
	if err == mongo.ErrNoDocuments {
		return nil, ledger.ErrOrchardNotFound
	}
	if err != nil {
		return nil, err
	}
	return &orchard, nil
}

func (s *Mongo) ClaimedNumbers(ctx context.Context, orchardID primitive.ObjectID) ([]int, error) {
	opts := options.Find().SetProjection(bson.M{"pocket_number": 1})
	cursor, err := s.db.Collection(ColPockets).Find(ctx, bson.M{"orchard_id": orchardID}, opts)
	if err != nil {
		return nil, err
	}

	var docs []struct {
		PocketNumber int `bson:"pocket_number"`
	}
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}

	numbers := make([]int, 0, len(docs))
	for _, d := range docs {
		numbers = append(numbers, d.PocketNumber)
	}
	return numbers, nil
}

// CommitAllocation inserts the batch of pockets and updates the orchard
// counters in one transaction. If any insert trips the unique pocket
// index the whole transaction rolls back and ErrDuplicatePocket comes
// back, leaving no partial state.
func (s *Mongo) CommitAllocation(ctx context.Context, alloc ledger.Allocation) error {
	session, err := s.client.StartSession()
	if err != nil {
		return err
	}
	defer session.EndSession(ctx)

	docs := make([]interface{}, 0, len(alloc.Pockets))
	for _, p := range alloc.Pockets {
		docs = append(docs, p)
	}

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		if _, err := s.db.Collection(ColPockets).InsertMany(sc, docs); err != nil {
			return nil, err
		}

		res, err := s.db.Collection(ColOrchards).UpdateOne(sc,
			bson.M{"_id": alloc.OrchardID},
			bson.M{
				"$inc": bson.M{
					"filled_pockets": len(alloc.Pockets),
					"supporters":     1,
				},
				"$set": bson.M{
					"completion_rate": alloc.CompletionRate,
					"updated_at":      time.Now(),
				},
			},
		)
		if err != nil {
			return nil, err
		}
		if res.MatchedCount == 0 {
			return nil, ledger.ErrOrchardNotFound
		}
		return nil, nil
	})
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ledger.ErrDuplicatePocket
		}
		return err
	}
	return nil
}

// MarkCompleted flips the orchard to completed and records the payout.
// The payout_processed filter makes the flip one-shot even if two
// complete calls race past the ledger's precondition read.
func (s *Mongo) MarkCompleted(ctx context.Context, orchardID primitive.ObjectID) error {
	res, err := s.db.Collection(ColOrchards).UpdateOne(ctx,
		bson.M{"_id": orchardID, "payout_processed": false},
		bson.M{"$set": bson.M{
			"status":           models.OrchardCompleted,
			"payout_processed": true,
			"updated_at":       time.Now(),
		}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ledger.ErrPayoutProcessed
	}
	return nil
}

func (s *Mongo) CountView(ctx context.Context, orchardID primitive.ObjectID) error {
	_, err := s.db.Collection(ColOrchards).UpdateOne(ctx,
		bson.M{"_id": orchardID},
		bson.M{"$inc": bson.M{"views": 1}},
	)
	return err
}

// Pockets returns every pocket claimed on the orchard, ordered by
// pocket number.
func (s *Mongo) Pockets(ctx context.Context, orchardID primitive.ObjectID) ([]models.Pocket, error) {
	opts := options.Find().SetSort(bson.D{{Key: "pocket_number", Value: 1}})
	cursor, err := s.db.Collection(ColPockets).Find(ctx, bson.M{"orchard_id": orchardID}, opts)
	if err != nil {
		return nil, err
	}
	var pockets []models.Pocket
	if err := cursor.All(ctx, &pockets); err != nil {
		return nil, err
	}
	return pockets, nil
}

// DeleteOrchard removes the orchard and cascades to its pockets and
// bestowments.
func (s *Mongo) DeleteOrchard(ctx context.Context, orchardID primitive.ObjectID) error {
	res, err := s.db.Collection(ColOrchards).DeleteOne(ctx, bson.M{"_id": orchardID})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ledger.ErrOrchardNotFound
	}
	if _, err := s.db.Collection(ColPockets).DeleteMany(ctx, bson.M{"orchard_id": orchardID}); err != nil {
		return err
	}
	if _, err := s.db.Collection(ColBestowments).DeleteMany(ctx, bson.M{"orchard_id": orchardID}); err != nil {
		return err
	}
	return nil
}
