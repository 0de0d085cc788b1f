// Package pgstore keeps pending e-mail verification codes in PostgreSQL.
package pgstore

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/AnshRaj112/socialapp-backend/internal/models"
	"github.com/AnshRaj112/socialapp-backend/internal/store"
	"github.com/AnshRaj112/socialapp-backend/internal/store/pgstore/migrations"
	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

type OTPStore struct {
	db *sql.DB
}

func NewOTPStore(db *sql.DB) *OTPStore {
	return &OTPStore{db: db}
}

// ApplyMigrations runs every pending embedded migration against db.
func ApplyMigrations(db *sql.DB) error {
	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return err
	}

	source, err := iofs.New(migrations.FS, ".")
	if err != nil {
		return err
	}

	instance, err := migrate.NewWithInstance("iofs", source, "postgres", driver)
	if err != nil {
		return err
	}

	if err := instance.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}
	return nil
}

// Replace drops any previous code for the email and stores otp, atomically.
func (s *OTPStore) Replace(ctx context.Context, otp models.OTP) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM otp_verifications WHERE email = $1`, otp.Email); err != nil {
		return err
	}

	createdAt := otp.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO otp_verifications (email, otp_hash, expires_at, created_at)
		VALUES ($1, $2, $3, $4)
	`, otp.Email, otp.CodeHash, otp.ExpiresAt, createdAt); err != nil {
		return err
	}

	return tx.Commit()
}

func (s *OTPStore) Get(ctx context.Context, email string) (*models.OTP, error) {
	var otp models.OTP
	err := s.db.QueryRowContext(ctx, `
		SELECT email, otp_hash, expires_at, created_at
		FROM otp_verifications WHERE email = $1
	`, email).Scan(&otp.Email, &otp.CodeHash, &otp.ExpiresAt, &otp.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &otp, nil
}

func (s *OTPStore) Delete(ctx context.Context, email string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM otp_verifications WHERE email = $1`, email)
	return err
}

// PurgeExpired removes codes past their expiry and reports how many went.
func (s *OTPStore) PurgeExpired(ctx context.Context, now time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM otp_verifications WHERE expires_at < $1`, now)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
