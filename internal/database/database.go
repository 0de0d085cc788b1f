// Package database opens the MongoDB, PostgreSQL and Redis clients. Callers
// own the returned handles and close them on shutdown.
package database

import (
	"context"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

const defaultMongoDB = "socialapp"

// ConnectMongo dials and pings MongoDB. The database name is taken from the URI
// path when present.
func ConnectMongo(ctx context.Context, mongoURI string, log *zap.Logger) (*mongo.Database, error) {
	// Atlas clusters can take a while to select a server
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	clientOptions := options.Client().ApplyURI(mongoURI)
	clientOptions.SetServerSelectionTimeout(10 * time.Second)

	log.Info("connecting to mongodb")
	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, err
	}

	pingCtx, pingCancel := context.WithTimeout(ctx, 10*time.Second)
	defer pingCancel()
	if err := client.Ping(pingCtx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}

	name := mongoDBName(mongoURI)
	log.Info("connected to mongodb", zap.String("database", name))
	return client.Database(name), nil
}

// mongoDBName extracts the database from mongodb://host/db?opts.
func mongoDBName(uri string) string {
	rest := uri
	if i := strings.Index(rest, "://"); i >= 0 {
		rest = rest[i+3:]
	}
	i := strings.Index(rest, "/")
	if i < 0 {
		return defaultMongoDB
	}
	name := strings.SplitN(rest[i+1:], "?", 2)[0]
	if name == "" {
		return defaultMongoDB
	}
	return name
}
