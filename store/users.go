package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/raushankrgupta/virtual-tryon/models"
)

type UserStore struct {
	coll *mongo.Collection
}

func NewUserStore(db *mongo.Database) *UserStore {
	return &UserStore{coll: db.Collection(usersCollection)}
}

// FindBySubject looks a user up by identity-provider id
func (s *UserStore) FindBySubject(ctx context.Context, subject string) (*models.User, error) {
	var u models.User
	err := s.coll.FindOne(ctx, bson.M{"subject": subject}).Decode(&u)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	return &u, nil
}

// FindOrCreate returns the user for subject, creating it on first sight
func (s *UserStore) FindOrCreate(ctx context.Context, subject, email, name string) (*models.User, error) {
	update := bson.M{"$setOnInsert": bson.M{
		"subject":    subject,
		"email":      email,
		"name":       name,
		"created_at": time.Now().UTC(),
	}}
	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var u models.User
	if err := s.coll.FindOneAndUpdate(ctx, bson.M{"subject": subject}, update, opts).Decode(&u); err != nil {
		return nil, fmt.Errorf("upsert user: %w", err)
	}
	return &u, nil
}
