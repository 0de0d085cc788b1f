package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/AnshRaj112/socialapp-backend/internal/apperr"
	"github.com/AnshRaj112/socialapp-backend/internal/models"
	"github.com/AnshRaj112/socialapp-backend/internal/store"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Gate issues and resolves access tokens. A token is an HS256 JWT whose jti
// must also be a live session, so tokens can be revoked before they expire.
type Gate struct {
	secret   []byte
	ttl      time.Duration
	sessions SessionStore
	users    store.Users
	now      func() time.Time
}

func NewGate(secret string, ttl time.Duration, sessions SessionStore, users store.Users) *Gate {
	return &Gate{
		secret:   []byte(secret),
		ttl:      ttl,
		sessions: sessions,
		users:    users,
		now:      time.Now,
	}
}

func (g *Gate) TTL() time.Duration { return g.ttl }

// Issue signs a token for user and records its session.
func (g *Gate) Issue(ctx context.Context, user primitive.ObjectID) (string, error) {
	now := g.now()
	jti := uuid.NewString()
	claims := jwt.RegisteredClaims{
		Subject:   user.Hex(),
		ID:        jti,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(g.ttl)),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(g.secret)
	if err != nil {
		return "", apperr.Internal("failed to sign token", err)
	}
	if err := g.sessions.Create(ctx, jti, user, g.ttl); err != nil {
		return "", apperr.Internal("failed to create session", err)
	}
	return signed, nil
}

func (g *Gate) parse(token string) (*jwt.RegisteredClaims, primitive.ObjectID, error) {
	claims := &jwt.RegisteredClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("invalid signing method")
		}
		return g.secret, nil
	}, jwt.WithTimeFunc(g.now))
	if err != nil || !parsed.Valid {
		return nil, primitive.NilObjectID, apperr.Wrap(apperr.KindAuth, "Invalid token", err)
	}
	if strings.TrimSpace(claims.ID) == "" {
		return nil, primitive.NilObjectID, apperr.Auth("Invalid token")
	}
	user, err := primitive.ObjectIDFromHex(claims.Subject)
	if err != nil {
		return nil, primitive.NilObjectID, apperr.Wrap(apperr.KindAuth, "Invalid token", err)
	}
	return claims, user, nil
}

// Resolve returns the verified user behind token. It fails with Auth for a
// missing, malformed, expired or revoked token or a deleted user, and with
// Forbidden for an unverified user.
func (g *Gate) Resolve(ctx context.Context, token string) (*models.User, error) {
	if token == "" {
		return nil, apperr.Auth("Invalid token")
	}
	claims, user, err := g.parse(token)
	if err != nil {
		return nil, err
	}

	owner, ok, err := g.sessions.Lookup(ctx, claims.ID)
	if err != nil {
		return nil, apperr.Internal("failed to load session", err)
	}
	if !ok || owner != user {
		return nil, apperr.Auth("Invalid token")
	}

	u, err := g.users.GetByID(ctx, user)
	if errors.Is(err, store.ErrNotFound) {
		return nil, apperr.Auth("User not found")
	}
	if err != nil {
		return nil, apperr.Internal("failed to load user", err)
	}
	if !u.IsVerified {
		return nil, apperr.Forbidden("User not verified")
	}
	return u, nil
}

// Revoke ends the session behind token. Invalid tokens are ignored.
func (g *Gate) Revoke(ctx context.Context, token string) error {
	claims, _, err := g.parse(token)
	if err != nil {
		return nil
	}
	if err := g.sessions.Revoke(ctx, claims.ID); err != nil {
		return apperr.Internal("failed to revoke session", err)
	}
	return nil
}

func (g *Gate) RevokeAll(ctx context.Context, user primitive.ObjectID) error {
	if err := g.sessions.RevokeAll(ctx, user); err != nil {
		return apperr.Internal("failed to revoke sessions", err)
	}
	return nil
}
