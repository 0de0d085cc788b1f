package mongostore

import (
	"context"
	"regexp"
	"strings"
	"time"

	"github.com/AnshRaj112/socialapp-backend/internal/models"
	"github.com/AnshRaj112/socialapp-backend/internal/store"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type usersRepo struct {
	c *mongo.Collection
}

func (r *usersRepo) Create(ctx context.Context, u *models.User) error {
	if u.ID.IsZero() {
		u.ID = primitive.NewObjectID()
	}
	_, err := r.c.InsertOne(ctx, u)
	return mapDuplicate(err)
}

// mapDuplicate names the colliding field from the E11000 message, which
// carries the index name.
func mapDuplicate(err error) error {
	if err == nil || !mongo.IsDuplicateKeyError(err) {
		return err
	}
	field := "unknown"
	switch msg := err.Error(); {
	case strings.Contains(msg, "username"):
		field = "username"
	case strings.Contains(msg, "email"):
		field = "email"
	}
	return &store.DuplicateError{Field: field}
}

func (r *usersRepo) findOne(ctx context.Context, filter bson.M) (*models.User, error) {
	var u models.User
	if err := r.c.FindOne(ctx, filter).Decode(&u); err != nil {
		return nil, mapNotFound(err)
	}
	return &u, nil
}

func (r *usersRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *usersRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

func (r *usersRepo) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	return r.findOne(ctx, bson.M{"username": username})
}

func (r *usersRepo) find(ctx context.Context, filter bson.M, opts ...*options.FindOptions) ([]models.User, error) {
	cursor, err := r.c.Find(ctx, filter, opts...)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	users := []models.User{}
	if err := cursor.All(ctx, &users); err != nil {
		return nil, err
	}
	return users, nil
}

func (r *usersRepo) ListByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.User, error) {
	if len(ids) == 0 {
		return []models.User{}, nil
	}
	return r.find(ctx, bson.M{"_id": bson.M{"$in": ids}})
}

func (r *usersRepo) UpdateProfile(ctx context.Context, u *models.User) error {
	res, err := r.c.UpdateByID(ctx, u.ID, bson.M{"$set": bson.M{
		"username":      u.Username,
		"fullname":      u.Fullname,
		"bio":           u.Bio,
		"password":      u.Password,
		"profile_image": u.ProfileImage,
		"cover_image":   u.CoverImage,
		"updated_at":    time.Now(),
	}})
	return requireMatch(res, mapDuplicate(err))
}

func (r *usersRepo) MarkVerified(ctx context.Context, email string) (*models.User, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var u models.User
	err := r.c.FindOneAndUpdate(ctx,
		bson.M{"email": email},
		bson.M{"$set": bson.M{"is_verified": true, "updated_at": time.Now()}},
		opts,
	).Decode(&u)
	if err != nil {
		return nil, mapNotFound(err)
	}
	return &u, nil
}

func (r *usersRepo) AddFollow(ctx context.Context, follower, target primitive.ObjectID) error {
	if err := requireMatch(r.c.UpdateByID(ctx, follower, bson.M{"$addToSet": bson.M{"following": target}})); err != nil {
		return err
	}
	return requireMatch(r.c.UpdateByID(ctx, target, bson.M{"$addToSet": bson.M{"followers": follower}}))
}

func (r *usersRepo) RemoveFollow(ctx context.Context, follower, target primitive.ObjectID) error {
	if _, err := r.c.UpdateByID(ctx, follower, bson.M{"$pull": bson.M{"following": target}}); err != nil {
		return err
	}
	_, err := r.c.UpdateByID(ctx, target, bson.M{"$pull": bson.M{"followers": follower}})
	return err
}

func (r *usersRepo) PushNotification(ctx context.Context, recipient primitive.ObjectID, n models.Notification) error {
	return requireMatch(r.c.UpdateByID(ctx, recipient, bson.M{"$push": bson.M{"notifications": n}}))
}

func (r *usersRepo) ListSuggestions(ctx context.Context, exclude []primitive.ObjectID, limit int) ([]models.User, error) {
	if exclude == nil {
		exclude = []primitive.ObjectID{}
	}
	opts := options.Find().SetSort(bson.D{{Key: "_id", Value: 1}})
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}
	return r.find(ctx, bson.M{
		"_id":         bson.M{"$nin": exclude},
		"is_verified": true,
	}, opts)
}

func (r *usersRepo) SearchByFullname(ctx context.Context, keyword string) ([]models.User, error) {
	opts := options.Find().SetSort(bson.D{{Key: "_id", Value: 1}})
	return r.find(ctx, bson.M{
		"fullname":    primitive.Regex{Pattern: regexp.QuoteMeta(keyword), Options: "i"},
		"is_verified": true,
	}, opts)
}

func (r *usersRepo) StripReferences(ctx context.Context, id primitive.ObjectID) error {
	_, err := r.c.UpdateMany(ctx,
		bson.M{"$or": bson.A{
			bson.M{"followers": id},
			bson.M{"following": id},
			bson.M{"notifications.from": id},
		}},
		bson.M{"$pull": bson.M{
			"followers":     id,
			"following":     id,
			"notifications": bson.M{"from": id},
		}},
	)
	return err
}

func (r *usersRepo) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return store.ErrNotFound
	}
	return nil
}
