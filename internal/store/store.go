// Package store defines the Identity and Content store contracts. Drivers live
// in the subpackages (mongostore, memstore).
package store

import (
	"context"
	"errors"

	"github.com/AnshRaj112/socialapp-backend/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	ErrNotFound  = errors.New("store: not found")
	ErrDuplicate = errors.New("store: duplicate key")
)

// DuplicateError names the unique field that collided.
type DuplicateError struct {
	Field string
}

func (e *DuplicateError) Error() string { return "store: duplicate " + e.Field }

func (e *DuplicateError) Is(target error) bool { return target == ErrDuplicate }

// Store is the root data access interface.
type Store interface {
	Users() Users
	Posts() Posts

	// WithTx runs fn atomically where the driver supports it. fn must use the
	// Store and context it is handed, not the outer ones. If fn returns an
	// error nothing it wrote is kept.
	WithTx(ctx context.Context, fn func(ctx context.Context, tx Store) error) error

	EnsureIndexes(ctx context.Context) error
	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}

type Users interface {
	// Create inserts u. Returns *DuplicateError on username or email collision.
	Create(ctx context.Context, u *models.User) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)

	// ListByIDs returns the users that exist among ids, in no particular order.
	ListByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.User, error)

	// UpdateProfile writes username, fullname, bio, password, images and
	// updated_at from u.
	UpdateProfile(ctx context.Context, u *models.User) error
	MarkVerified(ctx context.Context, email string) (*models.User, error)

	// AddFollow and RemoveFollow write both sides of the edge.
	AddFollow(ctx context.Context, follower, target primitive.ObjectID) error
	RemoveFollow(ctx context.Context, follower, target primitive.ObjectID) error
	PushNotification(ctx context.Context, recipient primitive.ObjectID, n models.Notification) error

	// ListSuggestions returns verified users not in exclude, ordered by id.
	ListSuggestions(ctx context.Context, exclude []primitive.ObjectID, limit int) ([]models.User, error)
	// SearchByFullname matches verified users whose fullname contains keyword,
	// case-insensitively, ordered by id.
	SearchByFullname(ctx context.Context, keyword string) ([]models.User, error)

	// StripReferences removes id from every user's followers, following and
	// notification sources.
	StripReferences(ctx context.Context, id primitive.ObjectID) error
	Delete(ctx context.Context, id primitive.ObjectID) error
}

type Posts interface {
	Create(ctx context.Context, p *models.Post) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.Post, error)
	// List returns every post, newest first.
	List(ctx context.Context) ([]models.Post, error)
	// ListByOwner returns the posts owned by user, newest first.
	ListByOwner(ctx context.Context, user primitive.ObjectID) ([]models.Post, error)

	UpdateContent(ctx context.Context, id primitive.ObjectID, content string) error
	AddLike(ctx context.Context, id, user primitive.ObjectID) error
	RemoveLike(ctx context.Context, id, user primitive.ObjectID) error

	AddComment(ctx context.Context, id primitive.ObjectID, c models.Comment) error
	// UpdateComment and RemoveComment return ErrNotFound when either the post
	// or the comment is missing.
	UpdateComment(ctx context.Context, id, commentID primitive.ObjectID, content string) error
	RemoveComment(ctx context.Context, id, commentID primitive.ObjectID) error

	// StripUser removes every like and comment by user from every post.
	StripUser(ctx context.Context, user primitive.ObjectID) error
	DeleteByOwner(ctx context.Context, user primitive.ObjectID) error
	Delete(ctx context.Context, id primitive.ObjectID) error
}
