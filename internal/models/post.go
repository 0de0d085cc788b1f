package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Post struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time          `bson:"updated_at" json:"updated_at"`

	User      primitive.ObjectID `bson:"user" json:"user"`
	Content   string             `bson:"content" json:"content"`
	PostImage Image              `bson:"post_image" json:"postImage"`

	Likes    IDSet       `bson:"likes" json:"likes"`
	Comments CommentList `bson:"comments" json:"comments"`
}

// NewPost returns a post owned by user with empty like and comment lists.
func NewPost(user primitive.ObjectID, content string, image Image, now time.Time) *Post {
	if image.URL == "" {
		image.URL = DefaultCoverImageURL
	}
	return &Post{
		ID:        primitive.NewObjectID(),
		CreatedAt: now,
		UpdatedAt: now,
		User:      user,
		Content:   content,
		PostImage: image,
		Likes:     IDSet{},
		Comments:  CommentList{},
	}
}

// HasImage reports whether the post carries an uploaded image.
func (p *Post) HasImage() bool { return !p.PostImage.IsDefault() }

func (p *Post) Clone() *Post {
	c := *p
	c.Likes = p.Likes.Clone()
	c.Comments = p.Comments.Clone()
	return &c
}
