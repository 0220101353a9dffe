package store

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/raushankrgupta/virtual-tryon/models"
)

// MaxProducts caps a catalog listing
const MaxProducts = 20

// ProductFilter narrows the catalog. Empty fields match everything.
type ProductFilter struct {
	Category string
	Gender   string
}

type ProductStore struct {
	coll *mongo.Collection
}

func NewProductStore(db *mongo.Database) *ProductStore {
	return &ProductStore{coll: db.Collection(productsCollection)}
}

// List returns up to MaxProducts active products matching f
func (s *ProductStore) List(ctx context.Context, f ProductFilter) ([]models.Product, error) {
	cursor, err := s.coll.Find(ctx, productQuery(f), options.Find().SetLimit(MaxProducts))
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer cursor.Close(ctx)

	products := []models.Product{}
	if err := cursor.All(ctx, &products); err != nil {
		return nil, fmt.Errorf("decode products: %w", err)
	}
	return products, nil
}

func productQuery(f ProductFilter) bson.M {
	query := bson.M{"is_active": true}
	if f.Category != "" {
		query["category"] = f.Category
	}
	if f.Gender != "" {
		query["gender"] = f.Gender
	}
	return query
}
