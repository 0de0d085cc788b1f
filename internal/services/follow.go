package services

import (
	"context"
	"strings"

	"github.com/AnshRaj112/socialapp-backend/internal/apperr"
	"github.com/AnshRaj112/socialapp-backend/internal/models"
	"github.com/AnshRaj112/socialapp-backend/internal/store"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const suggestionLimit = 3

// ToggleFollow follows target when caller does not follow it yet and unfollows
// otherwise. Only the follow branch notifies the target.
func (e *Engine) ToggleFollow(ctx context.Context, caller, target primitive.ObjectID) (*UserView, error) {
	if caller == target {
		return nil, apperr.Validation("You cannot follow yourself")
	}

	err := e.store.WithTx(ctx, func(ctx context.Context, tx store.Store) error {
		t, err := tx.Users().GetByID(ctx, target)
		if err != nil {
			return lookupErr(err, "User not found")
		}

		if t.Followers.Contains(caller) {
			return storeErr(tx.Users().RemoveFollow(ctx, caller, target))
		}

		if err := tx.Users().AddFollow(ctx, caller, target); err != nil {
			return lookupErr(err, "User not found")
		}
		return storeErr(tx.Users().PushNotification(ctx, target, models.Notification{
			From:      caller,
			Content:   models.NotificationFollow,
			CreatedAt: e.now(),
		}))
	})
	if err != nil {
		return nil, err
	}

	u, err := e.store.Users().GetByID(ctx, caller)
	if err != nil {
		return nil, lookupErr(err, "User not found")
	}
	return e.userView(ctx, u, false)
}

func (e *Engine) userView(ctx context.Context, u *models.User, withPosts bool) (*UserView, error) {
	v, err := e.resolver.User(ctx, u, withPosts)
	if err != nil {
		return nil, storeErr(err)
	}
	return v, nil
}

func (e *Engine) userViews(ctx context.Context, users []models.User) ([]UserView, error) {
	v, err := e.resolver.Users(ctx, users)
	if err != nil {
		return nil, storeErr(err)
	}
	return v, nil
}

// GetProfile returns the user with their posts.
func (e *Engine) GetProfile(ctx context.Context, id primitive.ObjectID) (*UserView, error) {
	u, err := e.store.Users().GetByID(ctx, id)
	if err != nil {
		return nil, lookupErr(err, "User not found")
	}
	return e.userView(ctx, u, true)
}

func (e *Engine) Followers(ctx context.Context, id primitive.ObjectID) ([]UserView, error) {
	return e.edgeList(ctx, id, func(u *models.User) models.IDSet { return u.Followers })
}

func (e *Engine) Following(ctx context.Context, id primitive.ObjectID) ([]UserView, error) {
	return e.edgeList(ctx, id, func(u *models.User) models.IDSet { return u.Following })
}

// edgeList loads the users of one side of id's follow edges, in edge order.
func (e *Engine) edgeList(ctx context.Context, id primitive.ObjectID, side func(*models.User) models.IDSet) ([]UserView, error) {
	u, err := e.store.Users().GetByID(ctx, id)
	if err != nil {
		return nil, lookupErr(err, "User not found")
	}
	ids := side(u)
	found, err := e.store.Users().ListByIDs(ctx, ids)
	if err != nil {
		return nil, storeErr(err)
	}

	byID := make(map[primitive.ObjectID]models.User, len(found))
	for _, f := range found {
		byID[f.ID] = f
	}
	ordered := make([]models.User, 0, len(found))
	for _, fid := range ids {
		if f, ok := byID[fid]; ok {
			ordered = append(ordered, f)
		}
	}
	return e.userViews(ctx, ordered)
}

// SuggestedUsers returns up to three verified users the caller does not
// follow yet, in id order.
func (e *Engine) SuggestedUsers(ctx context.Context, caller primitive.ObjectID) ([]UserView, error) {
	u, err := e.store.Users().GetByID(ctx, caller)
	if err != nil {
		return nil, lookupErr(err, "User not found")
	}

	exclude := append(u.Following.Clone(), caller)
	users, err := e.store.Users().ListSuggestions(ctx, exclude, suggestionLimit)
	if err != nil {
		return nil, storeErr(err)
	}
	return e.userViews(ctx, users)
}

// SearchUsers matches keyword literally and case-insensitively against the
// full names of verified users.
func (e *Engine) SearchUsers(ctx context.Context, keyword string) ([]UserView, error) {
	keyword = strings.TrimSpace(keyword)
	if keyword == "" {
		return nil, apperr.Validation("Keyword is required")
	}
	users, err := e.store.Users().SearchByFullname(ctx, keyword)
	if err != nil {
		return nil, storeErr(err)
	}
	return e.userViews(ctx, users)
}
