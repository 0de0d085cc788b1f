package services

import (
	"context"
	"strings"

	"github.com/AnshRaj112/socialapp-backend/internal/apperr"
	"github.com/AnshRaj112/socialapp-backend/internal/models"
	"github.com/AnshRaj112/socialapp-backend/internal/store"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CreateComment appends a comment and notifies the post owner unless the
// caller is the owner.
func (e *Engine) CreateComment(ctx context.Context, caller, postID primitive.ObjectID, content string) ([]PostView, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, apperr.Validation("Comment content is required")
	}

	err := e.store.WithTx(ctx, func(ctx context.Context, tx store.Store) error {
		p, err := tx.Posts().GetByID(ctx, postID)
		if err != nil {
			return lookupErr(err, "Post not found")
		}

		now := e.now()
		c := models.Comment{
			ID:        primitive.NewObjectID(),
			Content:   content,
			User:      caller,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := tx.Posts().AddComment(ctx, postID, c); err != nil {
			return lookupErr(err, "Post not found")
		}
		if caller == p.User {
			return nil
		}
		return e.notify(ctx, tx, p.User, caller, models.NotificationComment)
	})
	if err != nil {
		return nil, err
	}
	return e.ListPosts(ctx)
}

// UpdateComment replaces a comment's content. In strict mode only its author
// may do so.
func (e *Engine) UpdateComment(ctx context.Context, caller, postID, commentID primitive.ObjectID, content string) ([]PostView, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, apperr.Validation("Comment content is required")
	}

	p, c, err := e.findComment(ctx, postID, commentID)
	if err != nil {
		return nil, err
	}
	if e.opts.OwnershipStrict && c.User != caller {
		return nil, apperr.Forbidden("You can only modify your own comments")
	}
	if err := e.store.Posts().UpdateComment(ctx, p.ID, commentID, content); err != nil {
		return nil, lookupErr(err, "Comment not found")
	}
	return e.ListPosts(ctx)
}

// DeleteComment removes a comment, keeping the order of the rest. In strict
// mode the comment author and the post owner may delete it.
func (e *Engine) DeleteComment(ctx context.Context, caller, postID, commentID primitive.ObjectID) ([]PostView, error) {
	p, c, err := e.findComment(ctx, postID, commentID)
	if err != nil {
		return nil, err
	}
	if e.opts.OwnershipStrict && c.User != caller && p.User != caller {
		return nil, apperr.Forbidden("You can only delete your own comments")
	}
	if err := e.store.Posts().RemoveComment(ctx, p.ID, commentID); err != nil {
		return nil, lookupErr(err, "Comment not found")
	}
	return e.ListPosts(ctx)
}

func (e *Engine) findComment(ctx context.Context, postID, commentID primitive.ObjectID) (*models.Post, models.Comment, error) {
	p, err := e.store.Posts().GetByID(ctx, postID)
	if err != nil {
		return nil, models.Comment{}, lookupErr(err, "Post not found")
	}
	c, ok := p.Comments.Find(commentID)
	if !ok {
		return nil, models.Comment{}, apperr.NotFound("Comment not found")
	}
	return p, c, nil
}
