package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/AnshRaj112/socialapp-backend/internal/database"
	"github.com/AnshRaj112/socialapp-backend/internal/store/mongostore"
	"github.com/AnshRaj112/socialapp-backend/internal/store/pgstore"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply PostgreSQL migrations and create MongoDB indexes",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, log, err := setup()
		if err != nil {
			return err
		}
		defer log.Sync()

		ctx, cancel := context.WithTimeout(cmd.Context(), 2*time.Minute)
		defer cancel()

		db, err := database.ConnectPostgres(ctx, cfg.PostgresURI, log)
		if err != nil {
			return err
		}
		defer db.Close()
		if err := pgstore.ApplyMigrations(db); err != nil {
			return fmt.Errorf("postgres migrations: %w", err)
		}
		log.Info("postgres migrations applied")

		if cfg.StoreDriver != "mongo" {
			return nil
		}
		mdb, err := database.ConnectMongo(ctx, cfg.MongoURI, log)
		if err != nil {
			return err
		}
		st := mongostore.New(mdb, cfg.MongoTransactions)
		defer st.Close(context.Background())
		if err := st.EnsureIndexes(ctx); err != nil {
			return fmt.Errorf("mongo indexes: %w", err)
		}
		log.Info("mongo indexes ensured", zap.String("database", mdb.Name()))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}
