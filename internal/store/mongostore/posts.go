package mongostore

import (
	"context"
	"time"

	"github.com/AnshRaj112/socialapp-backend/internal/models"
	"github.com/AnshRaj112/socialapp-backend/internal/store"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type postsRepo struct {
	c *mongo.Collection
}

func (r *postsRepo) Create(ctx context.Context, p *models.Post) error {
	if p.ID.IsZero() {
		p.ID = primitive.NewObjectID()
	}
	_, err := r.c.InsertOne(ctx, p)
	if mongo.IsDuplicateKeyError(err) {
		return &store.DuplicateError{Field: "_id"}
	}
	return err
}

func (r *postsRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Post, error) {
	var p models.Post
	if err := r.c.FindOne(ctx, bson.M{"_id": id}).Decode(&p); err != nil {
		return nil, mapNotFound(err)
	}
	return &p, nil
}

func (r *postsRepo) List(ctx context.Context) ([]models.Post, error) {
	return r.find(ctx, bson.M{})
}

func (r *postsRepo) ListByOwner(ctx context.Context, user primitive.ObjectID) ([]models.Post, error) {
	return r.find(ctx, bson.M{"user": user})
}

func (r *postsRepo) find(ctx context.Context, filter bson.M) ([]models.Post, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}})
	cursor, err := r.c.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	posts := []models.Post{}
	if err := cursor.All(ctx, &posts); err != nil {
		return nil, err
	}
	return posts, nil
}

func (r *postsRepo) UpdateContent(ctx context.Context, id primitive.ObjectID, content string) error {
	return requireMatch(r.c.UpdateByID(ctx, id, bson.M{"$set": bson.M{
		"content":    content,
		"updated_at": time.Now(),
	}}))
}

func (r *postsRepo) AddLike(ctx context.Context, id, user primitive.ObjectID) error {
	return requireMatch(r.c.UpdateByID(ctx, id, bson.M{"$addToSet": bson.M{"likes": user}}))
}

func (r *postsRepo) RemoveLike(ctx context.Context, id, user primitive.ObjectID) error {
	return requireMatch(r.c.UpdateByID(ctx, id, bson.M{"$pull": bson.M{"likes": user}}))
}

func (r *postsRepo) AddComment(ctx context.Context, id primitive.ObjectID, c models.Comment) error {
	return requireMatch(r.c.UpdateByID(ctx, id, bson.M{"$push": bson.M{"comments": c}}))
}

func (r *postsRepo) UpdateComment(ctx context.Context, id, commentID primitive.ObjectID, content string) error {
	return requireMatch(r.c.UpdateOne(ctx,
		bson.M{"_id": id, "comments._id": commentID},
		bson.M{"$set": bson.M{
			"comments.$.content":    content,
			"comments.$.updated_at": time.Now(),
		}},
	))
}

func (r *postsRepo) RemoveComment(ctx context.Context, id, commentID primitive.ObjectID) error {
	return requireMatch(r.c.UpdateOne(ctx,
		bson.M{"_id": id, "comments._id": commentID},
		bson.M{"$pull": bson.M{"comments": bson.M{"_id": commentID}}},
	))
}

func (r *postsRepo) StripUser(ctx context.Context, user primitive.ObjectID) error {
	_, err := r.c.UpdateMany(ctx,
		bson.M{"$or": bson.A{
			bson.M{"likes": user},
			bson.M{"comments.user": user},
		}},
		bson.M{"$pull": bson.M{
			"likes":    user,
			"comments": bson.M{"user": user},
		}},
	)
	return err
}

func (r *postsRepo) DeleteByOwner(ctx context.Context, user primitive.ObjectID) error {
	_, err := r.c.DeleteMany(ctx, bson.M{"user": user})
	return err
}

func (r *postsRepo) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return store.ErrNotFound
	}
	return nil
}
