package services

import (
	"context"
	"errors"

	"github.com/AnshRaj112/socialapp-backend/internal/models"
	"github.com/AnshRaj112/socialapp-backend/internal/store"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// DeleteAccount removes the caller and every reference to them: their
// comments and likes on all posts, their follow edges and notifications on
// all users, and their own posts. The record changes commit together. Their
// images are released afterwards; release failures are logged, never undone.
func (e *Engine) DeleteAccount(ctx context.Context, caller primitive.ObjectID) error {
	var images []string

	err := e.store.WithTx(ctx, func(ctx context.Context, tx store.Store) error {
		u, err := tx.Users().GetByID(ctx, caller)
		if err != nil {
			return lookupErr(err, "User not found")
		}
		owned, err := tx.Posts().ListByOwner(ctx, caller)
		if err != nil {
			return storeErr(err)
		}

		if err := tx.Posts().StripUser(ctx, caller); err != nil {
			return storeErr(err)
		}
		if err := tx.Users().StripReferences(ctx, caller); err != nil {
			return storeErr(err)
		}
		if err := tx.Posts().DeleteByOwner(ctx, caller); err != nil {
			return storeErr(err)
		}
		if err := tx.Users().Delete(ctx, caller); err != nil {
			return lookupErr(err, "User not found")
		}

		images = accountImages(u, owned)
		return nil
	})
	if err != nil {
		return err
	}

	var errs []error
	for _, id := range images {
		if err := e.assets.Delete(ctx, id); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		e.log.Warn("account deleted with unreleased assets",
			zap.String("user_id", caller.Hex()),
			zap.Int("failed", len(errs)),
			zap.Error(errors.Join(errs...)),
		)
	}
	return nil
}

func accountImages(u *models.User, posts []models.Post) []string {
	var ids []string
	for _, img := range []models.Image{u.ProfileImage, u.CoverImage} {
		if !img.IsDefault() {
			ids = append(ids, img.PublicID)
		}
	}
	for i := range posts {
		if posts[i].HasImage() {
			ids = append(ids, posts[i].PostImage.PublicID)
		}
	}
	return ids
}
