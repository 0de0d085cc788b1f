// Package mongostore implements store.Store on MongoDB. Follow edges, likes,
// comments and notifications are mutated with array operators so concurrent
// requests on different elements never overwrite each other.
package mongostore

import (
	"context"
	"errors"

	"github.com/AnshRaj112/socialapp-backend/internal/store"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	usersCollection = "users"
	postsCollection = "posts"
)

type Store struct {
	db           *mongo.Database
	users        *mongo.Collection
	posts        *mongo.Collection
	transactions bool
}

var _ store.Store = (*Store)(nil)

// New wraps db. With transactions enabled WithTx opens a multi-document
// transaction, which needs a replica set or sharded cluster.
func New(db *mongo.Database, transactions bool) *Store {
	return &Store{
		db:           db,
		users:        db.Collection(usersCollection),
		posts:        db.Collection(postsCollection),
		transactions: transactions,
	}
}

func (s *Store) Users() store.Users { return &usersRepo{c: s.users} }
func (s *Store) Posts() store.Posts { return &postsRepo{c: s.posts} }

func (s *Store) WithTx(ctx context.Context, fn func(ctx context.Context, tx store.Store) error) error {
	if !s.transactions {
		return fn(ctx, s)
	}

	sess, err := s.db.Client().StartSession()
	if err != nil {
		return err
	}
	defer sess.EndSession(ctx)

	_, err = sess.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return nil, fn(sc, s)
	})
	return err
}

func (s *Store) EnsureIndexes(ctx context.Context) error {
	_, err := s.users.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "username", Value: 1}}, Options: options.Index().SetUnique(true).SetName("username_unique")},
		{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true).SetName("email_unique")},
		{Keys: bson.D{{Key: "is_verified", Value: 1}, {Key: "_id", Value: 1}}, Options: options.Index().SetName("verified_id")},
	})
	if err != nil {
		return err
	}

	_, err = s.posts.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}}, Options: options.Index().SetName("feed_order")},
		{Keys: bson.D{{Key: "user", Value: 1}, {Key: "created_at", Value: -1}}, Options: options.Index().SetName("owner_feed")},
	})
	return err
}

func (s *Store) Ping(ctx context.Context) error {
	return s.db.Client().Ping(ctx, nil)
}

func (s *Store) Close(ctx context.Context) error {
	return s.db.Client().Disconnect(ctx)
}

func mapNotFound(err error) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return store.ErrNotFound
	}
	return err
}

// requireMatch turns an update that matched nothing into ErrNotFound.
func requireMatch(res *mongo.UpdateResult, err error) error {
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return store.ErrNotFound
	}
	return nil
}
