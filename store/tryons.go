package store

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/raushankrgupta/virtual-tryon/models"
)

// TryOnStore keeps one record per generation attempt. Records are appended
// and then finalized once, never shared between requests.
type TryOnStore struct {
	coll *mongo.Collection
	now  func() time.Time
}

func NewTryOnStore(db *mongo.Database) *TryOnStore {
	return &TryOnStore{coll: db.Collection(tryOnsCollection), now: time.Now}
}

// Create inserts a pending record and fills in its ID and CreatedAt
func (s *TryOnStore) Create(ctx context.Context, t *models.TryOn) error {
	if t.ID.IsZero() {
		t.ID = primitive.NewObjectID()
	}
	t.Status = models.TryOnStatusPending
	t.ResultURL = ""
	t.CreatedAt = s.now().UTC()

	if _, err := s.coll.InsertOne(ctx, t); err != nil {
		return fmt.Errorf("insert tryon: %w", err)
	}
	return nil
}

// MarkCompleted finalizes a pending record with its result image
func (s *TryOnStore) MarkCompleted(ctx context.Context, id primitive.ObjectID, resultURL string) error {
	return s.finalize(ctx, id, bson.M{
		"status":       models.TryOnStatusCompleted,
		"result_url":   resultURL,
		"completed_at": s.now().UTC(),
	})
}

// MarkFailed finalizes a pending record with the error shown to the user
func (s *TryOnStore) MarkFailed(ctx context.Context, id primitive.ObjectID, message string) error {
	return s.finalize(ctx, id, bson.M{
		"status":       models.TryOnStatusFailed,
		"error":        message,
		"completed_at": s.now().UTC(),
	})
}

func (s *TryOnStore) finalize(ctx context.Context, id primitive.ObjectID, set bson.M) error {
	filter := bson.M{"_id": id, "status": models.TryOnStatusPending}
	res, err := s.coll.UpdateOne(ctx, filter, bson.M{"$set": set})
	if err != nil {
		return fmt.Errorf("update tryon %s: %w", id.Hex(), err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// ListByUser returns every record of a user, newest first
func (s *TryOnStore) ListByUser(ctx context.Context, userID primitive.ObjectID) ([]models.TryOn, error) {
	findOptions := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})

	cursor, err := s.coll.Find(ctx, bson.M{"user_id": userID}, findOptions)
	if err != nil {
		return nil, fmt.Errorf("list tryons: %w", err)
	}
	defer cursor.Close(ctx)

	tryOns := []models.TryOn{}
	if err := cursor.All(ctx, &tryOns); err != nil {
		return nil, fmt.Errorf("decode tryons: %w", err)
	}
	return tryOns, nil
}
