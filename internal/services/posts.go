package services

import (
	"context"
	"errors"
	"strings"

	"github.com/AnshRaj112/socialapp-backend/internal/apperr"
	"github.com/AnshRaj112/socialapp-backend/internal/models"
	"github.com/AnshRaj112/socialapp-backend/internal/storage"
	"github.com/AnshRaj112/socialapp-backend/internal/store"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// ListPosts returns the feed: every post, newest first, with authors and
// comment authors resolved.
func (e *Engine) ListPosts(ctx context.Context) ([]PostView, error) {
	posts, err := e.store.Posts().List(ctx)
	if err != nil {
		return nil, storeErr(err)
	}
	views, err := e.resolver.Posts(ctx, posts)
	if err != nil {
		return nil, storeErr(err)
	}
	return views, nil
}

// CreatePost needs text, an image, or both. The image is uploaded before the
// record is written and released again if the write fails.
func (e *Engine) CreatePost(ctx context.Context, caller primitive.ObjectID, text string, image *storage.File) (*PostView, error) {
	text = strings.TrimSpace(text)
	if text == "" && image == nil {
		return nil, apperr.Validation("Post must have text or an image")
	}

	var img models.Image
	if image != nil {
		if err := storage.CheckImage(*image); err != nil {
			return nil, err
		}
		uploaded, err := e.assets.Upload(ctx, *image)
		if err != nil {
			return nil, apperr.ExternalStorage("Failed to upload image", err)
		}
		img = uploaded
	}

	p := models.NewPost(caller, text, img, e.now())
	if err := e.store.Posts().Create(ctx, p); err != nil {
		if !img.IsDefault() {
			e.release(ctx, img.PublicID)
		}
		return nil, storeErr(err)
	}

	v, err := e.resolver.Post(ctx, p)
	if err != nil {
		return nil, storeErr(err)
	}
	return v, nil
}

// UpdatePost replaces the text of a post. A post without an image cannot be
// left empty.
func (e *Engine) UpdatePost(ctx context.Context, caller, postID primitive.ObjectID, content string) ([]PostView, error) {
	p, err := e.ownedPost(ctx, caller, postID)
	if err != nil {
		return nil, err
	}

	content = strings.TrimSpace(content)
	if content == "" && !p.HasImage() {
		return nil, apperr.Validation("Post must have text or an image")
	}
	if err := e.store.Posts().UpdateContent(ctx, postID, content); err != nil {
		return nil, lookupErr(err, "Post not found")
	}
	return e.ListPosts(ctx)
}

// DeletePost releases the post image first; if that fails the post is kept.
func (e *Engine) DeletePost(ctx context.Context, caller, postID primitive.ObjectID) ([]PostView, error) {
	p, err := e.ownedPost(ctx, caller, postID)
	if err != nil {
		return nil, err
	}

	if p.HasImage() {
		if err := e.assets.Delete(ctx, p.PostImage.PublicID); err != nil {
			return nil, apperr.ExternalStorage("Failed to delete image", err)
		}
	}
	if err := e.store.Posts().Delete(ctx, postID); err != nil {
		return nil, lookupErr(err, "Post not found")
	}
	return e.ListPosts(ctx)
}

func (e *Engine) ownedPost(ctx context.Context, caller, postID primitive.ObjectID) (*models.Post, error) {
	p, err := e.store.Posts().GetByID(ctx, postID)
	if err != nil {
		return nil, lookupErr(err, "Post not found")
	}
	if e.opts.OwnershipStrict && p.User != caller {
		return nil, apperr.Forbidden("You can only modify your own posts")
	}
	return p, nil
}

// ToggleLike likes the post, or unlikes it when already liked. Liking
// someone else's post notifies its owner.
func (e *Engine) ToggleLike(ctx context.Context, caller, postID primitive.ObjectID) ([]PostView, error) {
	err := e.store.WithTx(ctx, func(ctx context.Context, tx store.Store) error {
		p, err := tx.Posts().GetByID(ctx, postID)
		if err != nil {
			return lookupErr(err, "Post not found")
		}

		if p.Likes.Contains(caller) {
			return lookupErr(tx.Posts().RemoveLike(ctx, postID, caller), "Post not found")
		}
		if err := tx.Posts().AddLike(ctx, postID, caller); err != nil {
			return lookupErr(err, "Post not found")
		}
		if caller == p.User {
			return nil
		}
		return e.notify(ctx, tx, p.User, caller, models.NotificationLike)
	})
	if err != nil {
		return nil, err
	}
	return e.ListPosts(ctx)
}

// notify appends a notification to recipient. A recipient that no longer
// exists is skipped.
func (e *Engine) notify(ctx context.Context, tx store.Store, recipient, from primitive.ObjectID, content string) error {
	err := tx.Users().PushNotification(ctx, recipient, models.Notification{
		From:      from,
		Content:   content,
		CreatedAt: e.now(),
	})
	if errors.Is(err, store.ErrNotFound) {
		return nil
	}
	return storeErr(err)
}

// release deletes an asset, logging instead of failing.
func (e *Engine) release(ctx context.Context, publicID string) {
	if err := e.assets.Delete(ctx, publicID); err != nil {
		e.log.Warn("failed to release asset", zap.String("public_id", publicID), zap.Error(err))
	}
}
