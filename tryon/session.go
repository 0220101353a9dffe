// Package tryon sequences a single virtual try-on: photo upload, garment
// resolution, generation and persistence of the result.
package tryon

import (
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/raushankrgupta/virtual-tryon/models"
)

type State string

const (
	StateIdle             State = "idle"
	StatePhotoUploading   State = "photo_uploading"
	StatePhotoReady       State = "photo_ready"
	StateGarmentResolving State = "garment_resolving"
	StateGarmentReady     State = "garment_ready"
	StateGenerating       State = "generating"
	StateCompleted        State = "completed"
	StateFailed           State = "failed"
)

// Session is the state of one try-on request. Every step takes a Session and
// returns the next one; nothing is shared between requests.
type Session struct {
	UserID  primitive.ObjectID
	Subject string

	State       State
	PhotoURL    string
	GarmentURL  string
	Description string

	// Result is the persisted record once generation has started
	Result *models.TryOn
	// Err is the message shown to the user when State is failed
	Err string
}

// NewSession starts an idle session for a user
func NewSession(userID primitive.ObjectID, subject string) Session {
	return Session{UserID: userID, Subject: subject, State: StateIdle}
}

// Restore rebuilds a session from references the client already holds,
// for example a photo uploaded in an earlier request.
func Restore(userID primitive.ObjectID, subject, photoURL, garmentURL, description string) Session {
	s := NewSession(userID, subject)
	s.PhotoURL = photoURL
	s.GarmentURL = garmentURL
	s.Description = description

	switch {
	case photoURL != "" && garmentURL != "":
		s.State = StateGarmentReady
	case photoURL != "":
		s.State = StatePhotoReady
	}
	return s
}

// Reset discards everything but the user so a new request can start
func Reset(s Session) Session {
	return NewSession(s.UserID, s.Subject)
}

// Terminal reports whether the session has finished, successfully or not
func (s Session) Terminal() bool {
	return s.State == StateCompleted || s.State == StateFailed
}
