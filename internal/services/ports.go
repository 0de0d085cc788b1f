package services

import (
	"context"
	"time"

	"github.com/AnshRaj112/socialapp-backend/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// OTPStore holds at most one pending code per email. Get returns
// store.ErrNotFound when none exists.
type OTPStore interface {
	Replace(ctx context.Context, otp models.OTP) error
	Get(ctx context.Context, email string) (*models.OTP, error)
	Delete(ctx context.Context, email string) error
}

// SessionStore maps token ids to users. Lookup reports false for unknown or
// expired ids.
type SessionStore interface {
	Create(ctx context.Context, id string, user primitive.ObjectID, ttl time.Duration) error
	Lookup(ctx context.Context, id string) (primitive.ObjectID, bool, error)
	Revoke(ctx context.Context, id string) error
	RevokeAll(ctx context.Context, user primitive.ObjectID) error
}

type Mailer interface {
	Send(ctx context.Context, to, subject, html string) error
}
