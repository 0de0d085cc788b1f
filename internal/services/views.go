package services

import (
	"context"
	"time"

	"github.com/AnshRaj112/socialapp-backend/internal/models"
	"github.com/AnshRaj112/socialapp-backend/internal/store"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// UserSummary is the embedded form of a user inside posts, comments and
// notifications.
type UserSummary struct {
	ID           primitive.ObjectID `json:"_id"`
	Username     string             `json:"username"`
	Fullname     string             `json:"fullname"`
	ProfileImage models.Image       `json:"profileImage"`
}

type NotificationView struct {
	From      *UserSummary `json:"from"`
	Content   string       `json:"content"`
	CreatedAt time.Time    `json:"createdAt"`
}

type UserView struct {
	ID            primitive.ObjectID   `json:"_id"`
	Username      string               `json:"username"`
	Fullname      string               `json:"fullname"`
	Email         string               `json:"email"`
	IsVerified    bool                 `json:"isVerified"`
	Bio           string               `json:"bio"`
	ProfileImage  models.Image         `json:"profileImage"`
	CoverImage    models.Image         `json:"coverImage"`
	Following     []primitive.ObjectID `json:"following"`
	Followers     []primitive.ObjectID `json:"followers"`
	Notifications []NotificationView   `json:"notifications"`
	Posts         []PostView           `json:"posts,omitempty"`
	CreatedAt     time.Time            `json:"createdAt"`
	UpdatedAt     time.Time            `json:"updatedAt"`
}

type CommentView struct {
	ID        primitive.ObjectID `json:"_id"`
	Content   string             `json:"content"`
	User      *UserSummary       `json:"user"`
	CreatedAt time.Time          `json:"createdAt"`
	UpdatedAt time.Time          `json:"updatedAt"`
}

type PostView struct {
	ID        primitive.ObjectID   `json:"_id"`
	User      *UserSummary         `json:"user"`
	Content   string               `json:"content"`
	PostImage models.Image         `json:"postImage"`
	Likes     []primitive.ObjectID `json:"likes"`
	Comments  []CommentView        `json:"comments"`
	CreatedAt time.Time            `json:"createdAt"`
	UpdatedAt time.Time            `json:"updatedAt"`
}

// Resolver turns stored records into views, replacing user ids with
// summaries. Each call loads every referenced user in one query. References
// to users that no longer exist resolve to nil.
type Resolver struct {
	store store.Store
}

func NewResolver(s store.Store) *Resolver {
	return &Resolver{store: s}
}

type summaries map[primitive.ObjectID]*UserSummary

func (r *Resolver) load(ctx context.Context, ids []primitive.ObjectID) (summaries, error) {
	users, err := r.store.Users().ListByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	out := make(summaries, len(users))
	for i := range users {
		u := &users[i]
		out[u.ID] = &UserSummary{ID: u.ID, Username: u.Username, Fullname: u.Fullname, ProfileImage: u.ProfileImage}
	}
	return out, nil
}

func postRefs(posts []models.Post) []primitive.ObjectID {
	var ids []primitive.ObjectID
	for _, p := range posts {
		ids = append(ids, p.User)
		for _, c := range p.Comments {
			ids = append(ids, c.User)
		}
	}
	return ids
}

func (s summaries) post(p models.Post) PostView {
	comments := make([]CommentView, len(p.Comments))
	for i, c := range p.Comments {
		comments[i] = CommentView{ID: c.ID, Content: c.Content, User: s[c.User], CreatedAt: c.CreatedAt, UpdatedAt: c.UpdatedAt}
	}
	likes := p.Likes
	if likes == nil {
		likes = models.IDSet{}
	}
	return PostView{
		ID:        p.ID,
		User:      s[p.User],
		Content:   p.Content,
		PostImage: p.PostImage,
		Likes:     likes,
		Comments:  comments,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
}

// Posts resolves posts, keeping their order.
func (r *Resolver) Posts(ctx context.Context, posts []models.Post) ([]PostView, error) {
	s, err := r.load(ctx, postRefs(posts))
	if err != nil {
		return nil, err
	}
	out := make([]PostView, len(posts))
	for i, p := range posts {
		out[i] = s.post(p)
	}
	return out, nil
}

func (r *Resolver) Post(ctx context.Context, p *models.Post) (*PostView, error) {
	views, err := r.Posts(ctx, []models.Post{*p})
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

// User resolves u. With withPosts the user's own posts are attached, newest
// first.
func (r *Resolver) User(ctx context.Context, u *models.User, withPosts bool) (*UserView, error) {
	var posts []models.Post
	if withPosts {
		var err error
		if posts, err = r.store.Posts().ListByOwner(ctx, u.ID); err != nil {
			return nil, err
		}
	}

	refs := postRefs(posts)
	for _, n := range u.Notifications {
		refs = append(refs, n.From)
	}
	s, err := r.load(ctx, refs)
	if err != nil {
		return nil, err
	}

	v := userView(u, s)
	if withPosts {
		v.Posts = make([]PostView, len(posts))
		for i, p := range posts {
			v.Posts[i] = s.post(p)
		}
	}
	return v, nil
}

// Users resolves a list of users without their posts.
func (r *Resolver) Users(ctx context.Context, users []models.User) ([]UserView, error) {
	var refs []primitive.ObjectID
	for _, u := range users {
		for _, n := range u.Notifications {
			refs = append(refs, n.From)
		}
	}
	s, err := r.load(ctx, refs)
	if err != nil {
		return nil, err
	}
	out := make([]UserView, len(users))
	for i := range users {
		out[i] = *userView(&users[i], s)
	}
	return out, nil
}

func userView(u *models.User, s summaries) *UserView {
	notes := make([]NotificationView, len(u.Notifications))
	for i, n := range u.Notifications {
		notes[i] = NotificationView{From: s[n.From], Content: n.Content, CreatedAt: n.CreatedAt}
	}
	following, followers := u.Following, u.Followers
	if following == nil {
		following = models.IDSet{}
	}
	if followers == nil {
		followers = models.IDSet{}
	}
	return &UserView{
		ID:            u.ID,
		Username:      u.Username,
		Fullname:      u.Fullname,
		Email:         u.Email,
		IsVerified:    u.IsVerified,
		Bio:           u.Bio,
		ProfileImage:  u.ProfileImage,
		CoverImage:    u.CoverImage,
		Following:     following,
		Followers:     followers,
		Notifications: notes,
		CreatedAt:     u.CreatedAt,
		UpdatedAt:     u.UpdatedAt,
	}
}
