package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	TryOnStatusPending   = "pending"
	TryOnStatusCompleted = "completed"
	TryOnStatusFailed    = "failed"
)

// TryOn represents one virtual try-on generation and its outcome.
// ResultURL is set if and only if Status is completed.
type TryOn struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID          primitive.ObjectID `bson:"user_id" json:"userId"`
	UserPhotoURL    string             `bson:"user_photo_url" json:"userPhotoUrl"`
	GarmentImageURL string             `bson:"garment_image_url" json:"productImageUrl"`
	Description     string             `bson:"description,omitempty" json:"description,omitempty"`
	ResultURL       string             `bson:"result_url,omitempty" json:"resultUrl,omitempty"`
	Status          string             `bson:"status" json:"status"`
	Error           string             `bson:"error,omitempty" json:"error,omitempty"`
	CreatedAt       time.Time          `bson:"created_at" json:"createdAt"`
	CompletedAt     *time.Time         `bson:"completed_at,omitempty" json:"completedAt,omitempty"`
}
