package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// IDSet is an insertion-ordered set of object ids. Used for follow edges and
// post likes.
type IDSet []primitive.ObjectID

func (s IDSet) Contains(id primitive.ObjectID) bool {
	for _, v := range s {
		if v == id {
			return true
		}
	}
	return false
}

// Add appends id unless already present. Reports whether the set changed.
func (s *IDSet) Add(id primitive.ObjectID) bool {
	if s.Contains(id) {
		return false
	}
	*s = append(*s, id)
	return true
}

// Remove drops every occurrence of id, keeping the order of the rest.
func (s *IDSet) Remove(id primitive.ObjectID) bool {
	out := make(IDSet, 0, len(*s))
	for _, v := range *s {
		if v != id {
			out = append(out, v)
		}
	}
	changed := len(out) != len(*s)
	*s = out
	return changed
}

func (s IDSet) Clone() IDSet {
	out := make(IDSet, len(s))
	copy(out, s)
	return out
}

// Comment is embedded in a Post.
type Comment struct {
	ID        primitive.ObjectID `bson:"_id" json:"id"`
	Content   string             `bson:"content" json:"content"`
	User      primitive.ObjectID `bson:"user" json:"user"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time          `bson:"updated_at" json:"updated_at"`
}

// CommentList keeps a post's comments in creation order.
type CommentList []Comment

func (l CommentList) Find(id primitive.ObjectID) (Comment, bool) {
	for _, c := range l {
		if c.ID == id {
			return c, true
		}
	}
	return Comment{}, false
}

func (l *CommentList) Add(c Comment) {
	*l = append(*l, c)
}

// Update replaces the content of comment id. Reports whether it was found.
func (l CommentList) Update(id primitive.ObjectID, content string, at time.Time) bool {
	for i := range l {
		if l[i].ID == id {
			l[i].Content = content
			l[i].UpdatedAt = at
			return true
		}
	}
	return false
}

// Remove drops comment id. Reports whether it was found.
func (l *CommentList) Remove(id primitive.ObjectID) bool {
	return l.filter(func(c Comment) bool { return c.ID != id })
}

// RemoveByUser drops every comment authored by user.
func (l *CommentList) RemoveByUser(user primitive.ObjectID) bool {
	return l.filter(func(c Comment) bool { return c.User != user })
}

func (l *CommentList) filter(keep func(Comment) bool) bool {
	out := make(CommentList, 0, len(*l))
	for _, c := range *l {
		if keep(c) {
			out = append(out, c)
		}
	}
	changed := len(out) != len(*l)
	*l = out
	return changed
}

func (l CommentList) Clone() CommentList {
	out := make(CommentList, len(l))
	copy(out, l)
	return out
}

// Notification is an append-only record embedded in the recipient's User.
type Notification struct {
	From      primitive.ObjectID `bson:"from" json:"from"`
	Content   string             `bson:"content" json:"content"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
}

const (
	NotificationFollow  = "following you"
	NotificationLike    = "liked your post"
	NotificationComment = "commented on your post"
)

// NotificationList keeps notifications in arrival order.
type NotificationList []Notification

func (l *NotificationList) Add(n Notification) {
	*l = append(*l, n)
}

// RemoveFrom drops every notification sent by user.
func (l *NotificationList) RemoveFrom(user primitive.ObjectID) bool {
	out := make(NotificationList, 0, len(*l))
	for _, n := range *l {
		if n.From != user {
			out = append(out, n)
		}
	}
	changed := len(out) != len(*l)
	*l = out
	return changed
}

func (l NotificationList) Clone() NotificationList {
	out := make(NotificationList, len(l))
	copy(out, l)
	return out
}
