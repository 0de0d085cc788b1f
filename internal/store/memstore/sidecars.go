package memstore

import (
	"context"
	"sync"
	"time"

	"github.com/AnshRaj112/socialapp-backend/internal/models"
	"github.com/AnshRaj112/socialapp-backend/internal/store"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// OTPs keeps one pending verification code per email.
type OTPs struct {
	mu   sync.Mutex
	byID map[string]models.OTP
}

func NewOTPs() *OTPs {
	return &OTPs{byID: make(map[string]models.OTP)}
}

func (o *OTPs) Replace(_ context.Context, otp models.OTP) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.byID[otp.Email] = otp
	return nil
}

func (o *OTPs) Get(_ context.Context, email string) (*models.OTP, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	otp, ok := o.byID[email]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &otp, nil
}

func (o *OTPs) Delete(_ context.Context, email string) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	delete(o.byID, email)
	return nil
}

type session struct {
	user    primitive.ObjectID
	expires time.Time
}

// Sessions is a TTL-aware session table mirroring the Redis layout.
type Sessions struct {
	mu     sync.Mutex
	byID   map[string]session
	byUser map[primitive.ObjectID]map[string]struct{}
	now    func() time.Time
}

func NewSessions() *Sessions {
	return &Sessions{
		byID:   make(map[string]session),
		byUser: make(map[primitive.ObjectID]map[string]struct{}),
		now:    time.Now,
	}
}

func (s *Sessions) Create(_ context.Context, id string, user primitive.ObjectID, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.byID[id] = session{user: user, expires: s.now().Add(ttl)}
	set, ok := s.byUser[user]
	if !ok {
		set = make(map[string]struct{})
		s.byUser[user] = set
	}
	set[id] = struct{}{}
	return nil
}

func (s *Sessions) Lookup(_ context.Context, id string) (primitive.ObjectID, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.byID[id]
	if !ok {
		return primitive.NilObjectID, false, nil
	}
	if !s.now().Before(sess.expires) {
		s.drop(id, sess.user)
		return primitive.NilObjectID, false, nil
	}
	return sess.user, true, nil
}

func (s *Sessions) Revoke(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if sess, ok := s.byID[id]; ok {
		s.drop(id, sess.user)
	}
	return nil
}

func (s *Sessions) RevokeAll(_ context.Context, user primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id := range s.byUser[user] {
		delete(s.byID, id)
	}
	delete(s.byUser, user)
	return nil
}

func (s *Sessions) drop(id string, user primitive.ObjectID) {
	delete(s.byID, id)
	if set, ok := s.byUser[user]; ok {
		delete(set, id)
		if len(set) == 0 {
			delete(s.byUser, user)
		}
	}
}
