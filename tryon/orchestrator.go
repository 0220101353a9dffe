package tryon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/raushankrgupta/virtual-tryon/models"
)

var (
	ErrMissingInput      = errors.New("user photo and garment image are both required")
	ErrUploadFailed      = errors.New("photo upload failed")
	ErrInvalidTransition = errors.New("invalid try-on state transition")
	ErrPersistence       = errors.New("failed to save try-on")
)

// Photo is an image file as received from the user
type Photo struct {
	Filename    string
	ContentType string
	Data        []byte
}

type PhotoUploader interface {
	UploadPhoto(ctx context.Context, owner string, photo Photo) (string, error)
}

type GarmentResolver interface {
	Resolve(ctx context.Context, input string) (string, error)
}

type Generator interface {
	GenerateTryOn(ctx context.Context, userPhotoRef, garmentRef, description string) (string, error)
}

type TryOnStore interface {
	Create(ctx context.Context, t *models.TryOn) error
	MarkCompleted(ctx context.Context, id primitive.ObjectID, resultURL string) error
	MarkFailed(ctx context.Context, id primitive.ObjectID, message string) error
}

// Orchestrator drives sessions through their collaborators. It performs no
// retries: every failure ends the attempt.
type Orchestrator struct {
	uploader  PhotoUploader
	resolver  GarmentResolver
	generator Generator
	store     TryOnStore
}

func NewOrchestrator(uploader PhotoUploader, resolver GarmentResolver, generator Generator, store TryOnStore) *Orchestrator {
	return &Orchestrator{
		uploader:  uploader,
		resolver:  resolver,
		generator: generator,
		store:     store,
	}
}

func transitionError(from State, step string) error {
	return fmt.Errorf("%w: cannot %s from %s", ErrInvalidTransition, step, from)
}

// UploadPhoto stores the user's photo. On failure the session goes back to idle.
func (o *Orchestrator) UploadPhoto(ctx context.Context, s Session, photo Photo) (Session, error) {
	if s.State != StateIdle {
		return s, transitionError(s.State, "upload photo")
	}

	s.State = StatePhotoUploading
	url, err := o.uploader.UploadPhoto(ctx, s.Subject, photo)
	if err != nil {
		s.State = StateIdle
		return s, fmt.Errorf("%w: %w", ErrUploadFailed, err)
	}

	s.PhotoURL = url
	s.State = StatePhotoReady
	return s, nil
}

// ResolveGarment turns a product page or image link into the garment image.
// A previously resolved garment is replaced; on failure it is cleared.
func (o *Orchestrator) ResolveGarment(ctx context.Context, s Session, input string) (Session, error) {
	if s.State != StatePhotoReady && s.State != StateGarmentReady {
		return s, transitionError(s.State, "resolve garment")
	}

	s.State = StateGarmentResolving
	s.GarmentURL = ""
	url, err := o.resolver.Resolve(ctx, input)
	if err != nil {
		s.State = StatePhotoReady
		return s, err
	}

	s.GarmentURL = url
	s.State = StateGarmentReady
	return s, nil
}

// Generate creates the pending record, runs the model and finalizes the record.
// A generation error is returned as is so its message reaches the user unchanged.
func (o *Orchestrator) Generate(ctx context.Context, s Session) (Session, error) {
	if s.PhotoURL == "" || s.GarmentURL == "" {
		return s, ErrMissingInput
	}
	if s.State != StateGarmentReady {
		return s, transitionError(s.State, "generate")
	}

	s.State = StateGenerating
	record := &models.TryOn{
		UserID:          s.UserID,
		UserPhotoURL:    s.PhotoURL,
		GarmentImageURL: s.GarmentURL,
		Description:     s.Description,
	}
	if err := o.store.Create(ctx, record); err != nil {
		return fail(s, nil, fmt.Errorf("%w: %w", ErrPersistence, err))
	}

	resultURL, err := o.generator.GenerateTryOn(ctx, s.PhotoURL, s.GarmentURL, s.Description)
	if err != nil {
		o.markFailed(ctx, record, err)
		return fail(s, record, err)
	}

	if err := o.store.MarkCompleted(context.WithoutCancel(ctx), record.ID, resultURL); err != nil {
		err = fmt.Errorf("%w: %w", ErrPersistence, err)
		o.markFailed(ctx, record, err)
		return fail(s, record, err)
	}

	completedAt := time.Now().UTC()
	record.Status = models.TryOnStatusCompleted
	record.ResultURL = resultURL
	record.CompletedAt = &completedAt

	s.State = StateCompleted
	s.Result = record
	return s, nil
}

// markFailed records the failure even if the client has gone away
func (o *Orchestrator) markFailed(ctx context.Context, record *models.TryOn, cause error) {
	if err := o.store.MarkFailed(context.WithoutCancel(ctx), record.ID, cause.Error()); err != nil {
		slog.Warn("could not mark try-on failed", "tryon_id", record.ID.Hex(), "error", err)
	}
	record.Status = models.TryOnStatusFailed
	record.Error = cause.Error()
}

func fail(s Session, record *models.TryOn, err error) (Session, error) {
	s.State = StateFailed
	s.Result = record
	s.Err = err.Error()
	return s, err
}
