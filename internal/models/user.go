package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	DefaultProfileImageURL = "https://upload.wikimedia.org/wikipedia/commons/9/99/Sample_User_Icon.png"
	DefaultCoverImageURL   = "https://via.placeholder.com/150"
)

// Image is a reference to an asset held by the external asset store. An empty
// PublicID means the default asset, which is never released.
type Image struct {
	URL      string `bson:"url" json:"url"`
	PublicID string `bson:"public_id,omitempty" json:"publicId"`
}

func (i Image) IsDefault() bool { return i.PublicID == "" }

type User struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time          `bson:"updated_at" json:"updated_at"`

	Username   string `bson:"username" json:"username"`
	Fullname   string `bson:"fullname" json:"fullname"`
	Email      string `bson:"email" json:"email"`
	Password   string `bson:"password" json:"-"` // Don't return password in JSON
	IsVerified bool   `bson:"is_verified" json:"isVerified"`
	Bio        string `bson:"bio" json:"bio"`

	ProfileImage Image `bson:"profile_image" json:"profileImage"`
	CoverImage   Image `bson:"cover_image" json:"coverImage"`

	Following     IDSet            `bson:"following" json:"following"`
	Followers     IDSet            `bson:"followers" json:"followers"`
	Notifications NotificationList `bson:"notifications" json:"notifications"`
}

// NewUser returns an unverified user with default images and empty
// collections, ready to insert.
func NewUser(username, fullname, email, passwordHash string, now time.Time) *User {
	return &User{
		ID:            primitive.NewObjectID(),
		CreatedAt:     now,
		UpdatedAt:     now,
		Username:      username,
		Fullname:      fullname,
		Email:         email,
		Password:      passwordHash,
		ProfileImage:  Image{URL: DefaultProfileImageURL},
		CoverImage:    Image{URL: DefaultCoverImageURL},
		Following:     IDSet{},
		Followers:     IDSet{},
		Notifications: NotificationList{},
	}
}

// Clone returns a copy that shares no slices with u.
func (u *User) Clone() *User {
	c := *u
	c.Following = u.Following.Clone()
	c.Followers = u.Followers.Clone()
	c.Notifications = u.Notifications.Clone()
	return &c
}
