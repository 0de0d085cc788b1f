package memstore

import (
	"context"
	"sort"

	"github.com/AnshRaj112/socialapp-backend/internal/models"
	"github.com/AnshRaj112/socialapp-backend/internal/store"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type postsRepo struct{ s *Store }

func (r *postsRepo) Create(_ context.Context, p *models.Post) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if p.ID.IsZero() {
		p.ID = primitive.NewObjectID()
	}
	if _, exists := r.s.posts[p.ID]; exists {
		return &store.DuplicateError{Field: "_id"}
	}
	r.s.posts[p.ID] = p.Clone()
	return nil
}

func (r *postsRepo) GetByID(_ context.Context, id primitive.ObjectID) (*models.Post, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	p, ok := r.s.posts[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return p.Clone(), nil
}

func (r *postsRepo) List(context.Context) ([]models.Post, error) {
	return r.list(func(*models.Post) bool { return true })
}

func (r *postsRepo) ListByOwner(_ context.Context, user primitive.ObjectID) ([]models.Post, error) {
	return r.list(func(p *models.Post) bool { return p.User == user })
}

// list returns matching posts newest first, ties broken by id descending.
func (r *postsRepo) list(match func(*models.Post) bool) ([]models.Post, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	out := make([]models.Post, 0, len(r.s.posts))
	for _, p := range r.s.posts {
		if match(p) {
			out = append(out, *p.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return lessID(out[j].ID, out[i].ID)
	})
	return out, nil
}

func (r *postsRepo) mutate(id primitive.ObjectID, fn func(p *models.Post) bool) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	p, ok := r.s.posts[id]
	if !ok {
		return store.ErrNotFound
	}
	if !fn(p) {
		return store.ErrNotFound
	}
	return nil
}

func (r *postsRepo) UpdateContent(_ context.Context, id primitive.ObjectID, content string) error {
	return r.mutate(id, func(p *models.Post) bool {
		p.Content = content
		p.UpdatedAt = r.s.now()
		return true
	})
}

func (r *postsRepo) AddLike(_ context.Context, id, user primitive.ObjectID) error {
	return r.mutate(id, func(p *models.Post) bool {
		p.Likes.Add(user)
		return true
	})
}

func (r *postsRepo) RemoveLike(_ context.Context, id, user primitive.ObjectID) error {
	return r.mutate(id, func(p *models.Post) bool {
		p.Likes.Remove(user)
		return true
	})
}

func (r *postsRepo) AddComment(_ context.Context, id primitive.ObjectID, c models.Comment) error {
	return r.mutate(id, func(p *models.Post) bool {
		p.Comments.Add(c)
		return true
	})
}

func (r *postsRepo) UpdateComment(_ context.Context, id, commentID primitive.ObjectID, content string) error {
	return r.mutate(id, func(p *models.Post) bool {
		return p.Comments.Update(commentID, content, r.s.now())
	})
}

func (r *postsRepo) RemoveComment(_ context.Context, id, commentID primitive.ObjectID) error {
	return r.mutate(id, func(p *models.Post) bool {
		return p.Comments.Remove(commentID)
	})
}

func (r *postsRepo) StripUser(_ context.Context, user primitive.ObjectID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, p := range r.s.posts {
		p.Likes.Remove(user)
		p.Comments.RemoveByUser(user)
	}
	return nil
}

func (r *postsRepo) DeleteByOwner(_ context.Context, user primitive.ObjectID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for id, p := range r.s.posts {
		if p.User == user {
			delete(r.s.posts, id)
		}
	}
	return nil
}

func (r *postsRepo) Delete(_ context.Context, id primitive.ObjectID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.posts[id]; !ok {
		return store.ErrNotFound
	}
	delete(r.s.posts, id)
	return nil
}
