// Package memstore is an in-process store driver used by tests and by
// STORE_DRIVER=memory. Transactions are emulated by snapshot and restore, so
// writes made outside WithTx while a transaction is open may be discarded on
// rollback.
package memstore

import (
	"bytes"
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/AnshRaj112/socialapp-backend/internal/models"
	"github.com/AnshRaj112/socialapp-backend/internal/store"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Store struct {
	mu    sync.Mutex
	txMu  sync.Mutex
	users map[primitive.ObjectID]*models.User
	posts map[primitive.ObjectID]*models.Post
	now   func() time.Time
}

var _ store.Store = (*Store)(nil)

func New() *Store {
	return &Store{
		users: make(map[primitive.ObjectID]*models.User),
		posts: make(map[primitive.ObjectID]*models.Post),
		now:   time.Now,
	}
}

func (s *Store) Users() store.Users { return &usersRepo{s: s} }
func (s *Store) Posts() store.Posts { return &postsRepo{s: s} }

func (s *Store) WithTx(ctx context.Context, fn func(ctx context.Context, tx store.Store) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()

	s.mu.Lock()
	users, posts := s.snapshot()
	s.mu.Unlock()

	if err := fn(ctx, s); err != nil {
		s.mu.Lock()
		s.users, s.posts = users, posts
		s.mu.Unlock()
		return err
	}
	return nil
}

func (s *Store) snapshot() (map[primitive.ObjectID]*models.User, map[primitive.ObjectID]*models.Post) {
	users := make(map[primitive.ObjectID]*models.User, len(s.users))
	for id, u := range s.users {
		users[id] = u.Clone()
	}
	posts := make(map[primitive.ObjectID]*models.Post, len(s.posts))
	for id, p := range s.posts {
		posts[id] = p.Clone()
	}
	return users, posts
}

func (s *Store) EnsureIndexes(context.Context) error { return nil }
func (s *Store) Ping(context.Context) error          { return nil }
func (s *Store) Close(context.Context) error         { return nil }

func lessID(a, b primitive.ObjectID) bool {
	return bytes.Compare(a[:], b[:]) < 0
}

type usersRepo struct{ s *Store }

func (r *usersRepo) Create(_ context.Context, u *models.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, existing := range r.s.users {
		if existing.Username == u.Username {
			return &store.DuplicateError{Field: "username"}
		}
		if existing.Email == u.Email {
			return &store.DuplicateError{Field: "email"}
		}
	}
	if u.ID.IsZero() {
		u.ID = primitive.NewObjectID()
	}
	r.s.users[u.ID] = u.Clone()
	return nil
}

func (r *usersRepo) GetByID(_ context.Context, id primitive.ObjectID) (*models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	u, ok := r.s.users[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return u.Clone(), nil
}

func (r *usersRepo) GetByEmail(_ context.Context, email string) (*models.User, error) {
	return r.findOne(func(u *models.User) bool { return u.Email == email })
}

func (r *usersRepo) GetByUsername(_ context.Context, username string) (*models.User, error) {
	return r.findOne(func(u *models.User) bool { return u.Username == username })
}

func (r *usersRepo) findOne(match func(*models.User) bool) (*models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, u := range r.s.users {
		if match(u) {
			return u.Clone(), nil
		}
	}
	return nil, store.ErrNotFound
}

func (r *usersRepo) ListByIDs(_ context.Context, ids []primitive.ObjectID) ([]models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	out := make([]models.User, 0, len(ids))
	seen := make(map[primitive.ObjectID]struct{}, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		if u, ok := r.s.users[id]; ok {
			out = append(out, *u.Clone())
		}
	}
	return out, nil
}

func (r *usersRepo) UpdateProfile(_ context.Context, u *models.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	cur, ok := r.s.users[u.ID]
	if !ok {
		return store.ErrNotFound
	}
	for id, other := range r.s.users {
		if id != u.ID && other.Username == u.Username {
			return &store.DuplicateError{Field: "username"}
		}
	}
	cur.Username = u.Username
	cur.Fullname = u.Fullname
	cur.Bio = u.Bio
	cur.Password = u.Password
	cur.ProfileImage = u.ProfileImage
	cur.CoverImage = u.CoverImage
	cur.UpdatedAt = r.s.now()
	return nil
}

func (r *usersRepo) MarkVerified(_ context.Context, email string) (*models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, u := range r.s.users {
		if u.Email == email {
			u.IsVerified = true
			u.UpdatedAt = r.s.now()
			return u.Clone(), nil
		}
	}
	return nil, store.ErrNotFound
}

func (r *usersRepo) AddFollow(_ context.Context, follower, target primitive.ObjectID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	f, ok := r.s.users[follower]
	if !ok {
		return store.ErrNotFound
	}
	t, ok := r.s.users[target]
	if !ok {
		return store.ErrNotFound
	}
	f.Following.Add(target)
	t.Followers.Add(follower)
	return nil
}

func (r *usersRepo) RemoveFollow(_ context.Context, follower, target primitive.ObjectID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if f, ok := r.s.users[follower]; ok {
		f.Following.Remove(target)
	}
	if t, ok := r.s.users[target]; ok {
		t.Followers.Remove(follower)
	}
	return nil
}

func (r *usersRepo) PushNotification(_ context.Context, recipient primitive.ObjectID, n models.Notification) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	u, ok := r.s.users[recipient]
	if !ok {
		return store.ErrNotFound
	}
	u.Notifications.Add(n)
	return nil
}

func (r *usersRepo) ListSuggestions(_ context.Context, exclude []primitive.ObjectID, limit int) ([]models.User, error) {
	skip := models.IDSet(exclude)
	return r.listVerified(func(u *models.User) bool { return !skip.Contains(u.ID) }, limit)
}

func (r *usersRepo) SearchByFullname(_ context.Context, keyword string) ([]models.User, error) {
	needle := strings.ToLower(keyword)
	return r.listVerified(func(u *models.User) bool {
		return strings.Contains(strings.ToLower(u.Fullname), needle)
	}, 0)
}

func (r *usersRepo) listVerified(match func(*models.User) bool, limit int) ([]models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var out []models.User
	for _, u := range r.s.users {
		if u.IsVerified && match(u) {
			out = append(out, *u.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool { return lessID(out[i].ID, out[j].ID) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *usersRepo) StripReferences(_ context.Context, id primitive.ObjectID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, u := range r.s.users {
		u.Followers.Remove(id)
		u.Following.Remove(id)
		u.Notifications.RemoveFrom(id)
	}
	return nil
}

func (r *usersRepo) Delete(_ context.Context, id primitive.ObjectID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.users[id]; !ok {
		return store.ErrNotFound
	}
	delete(r.s.users, id)
	return nil
}
