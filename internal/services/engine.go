package services

import (
	"errors"
	"time"

	"github.com/AnshRaj112/socialapp-backend/internal/apperr"
	"github.com/AnshRaj112/socialapp-backend/internal/storage"
	"github.com/AnshRaj112/socialapp-backend/internal/store"
	"go.uber.org/zap"
)

type EngineOptions struct {
	// OwnershipStrict restricts post and comment edits to their owners.
	OwnershipStrict bool
}

// Engine implements the graph and content interactions: follows, likes,
// comments, posts and account removal.
type Engine struct {
	store    store.Store
	assets   storage.AssetStore
	resolver *Resolver
	opts     EngineOptions
	log      *zap.Logger
	now      func() time.Time
}

func NewEngine(s store.Store, assets storage.AssetStore, log *zap.Logger, opts EngineOptions) *Engine {
	return &Engine{
		store:    s,
		assets:   assets,
		resolver: NewResolver(s),
		opts:     opts,
		log:      log,
		now:      time.Now,
	}
}

func (e *Engine) Resolver() *Resolver { return e.resolver }

// lookupErr maps a store read failure to NotFound(msg) or Internal.
func lookupErr(err error, msg string) error {
	if errors.Is(err, store.ErrNotFound) {
		return apperr.NotFound(msg)
	}
	return storeErr(err)
}

// storeErr passes nil and typed errors through and wraps the rest as Internal.
func storeErr(err error) error {
	if err == nil {
		return nil
	}
	var ae *apperr.Error
	if errors.As(err, &ae) {
		return err
	}
	return apperr.Internal("store failure", err)
}
