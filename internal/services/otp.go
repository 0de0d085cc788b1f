package services

import (
	"bytes"
	"context"
	"crypto/rand"
	"errors"
	"html/template"
	"math/big"
	"time"

	"github.com/AnshRaj112/socialapp-backend/internal/apperr"
	"github.com/AnshRaj112/socialapp-backend/internal/models"
	"github.com/AnshRaj112/socialapp-backend/internal/store"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const otpSubject = "OTP Verification"

var otpTemplate = template.Must(template.New("otp").Parse(`<!DOCTYPE html>
<html>
<head><meta charset="UTF-8"><title>OTP Verification</title></head>
<body style="font-family: Arial, sans-serif; background-color: #f4f4f4; margin: 0; padding: 0;">
  <div style="max-width: 600px; margin: 20px auto; background: #ffffff; padding: 20px; border-radius: 8px; text-align: center;">
    <h2 style="color: #333;">OTP Verification</h2>
    <p style="color: #555;">Your one-time verification code is:</p>
    <div style="font-size: 24px; font-weight: bold; color: #333; background: #f8f9fa; display: inline-block; padding: 10px 20px; border-radius: 4px; margin: 20px 0;">{{.Code}}</div>
    <p style="color: #555;">It is valid for <strong>{{.Minutes}} minutes</strong>. Do not share it with anyone.</p>
    <p style="color: #555;">If you did not request this code you can ignore this email.</p>
  </div>
</body>
</html>
`))

// OTPService issues and checks four digit e-mail verification codes. Only a
// bcrypt hash of each code is stored.
type OTPService struct {
	store  OTPStore
	mailer Mailer
	ttl    time.Duration
	cost   int
	log    *zap.Logger
	now    func() time.Time
}

func NewOTPService(s OTPStore, mailer Mailer, ttl time.Duration, log *zap.Logger) *OTPService {
	return &OTPService{
		store:  s,
		mailer: mailer,
		ttl:    ttl,
		cost:   11,
		log:    log,
		now:    time.Now,
	}
}

// Issue replaces any pending code for email with a fresh one and mails it.
func (o *OTPService) Issue(ctx context.Context, email string) error {
	code, err := newOTPCode()
	if err != nil {
		return apperr.Internal("failed to generate otp", err)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(code), o.cost)
	if err != nil {
		return apperr.Internal("failed to hash otp", err)
	}

	now := o.now()
	if err := o.store.Replace(ctx, models.OTP{
		Email:     email,
		CodeHash:  string(hash),
		ExpiresAt: now.Add(o.ttl),
		CreatedAt: now,
	}); err != nil {
		return apperr.Internal("failed to store otp", err)
	}

	var body bytes.Buffer
	if err := otpTemplate.Execute(&body, struct {
		Code    string
		Minutes int
	}{code, int(o.ttl.Minutes())}); err != nil {
		return apperr.Internal("failed to render otp email", err)
	}
	if err := o.mailer.Send(ctx, email, otpSubject, body.String()); err != nil {
		return apperr.Internal("failed to send otp email", err)
	}

	o.log.Info("otp issued", zap.String("email", email))
	return nil
}

// Verify consumes the pending code for email if code matches and has not
// expired.
func (o *OTPService) Verify(ctx context.Context, email, code string) error {
	otp, err := o.store.Get(ctx, email)
	if errors.Is(err, store.ErrNotFound) {
		return apperr.Validation("Invalid OTP")
	}
	if err != nil {
		return apperr.Internal("failed to load otp", err)
	}

	if otp.Expired(o.now()) {
		return apperr.Validation("OTP expired")
	}
	if bcrypt.CompareHashAndPassword([]byte(otp.CodeHash), []byte(code)) != nil {
		return apperr.Validation("Invalid OTP")
	}

	if err := o.store.Delete(ctx, email); err != nil {
		return apperr.Internal("failed to delete otp", err)
	}
	return nil
}

// newOTPCode returns a uniformly random code in 1000..9999.
func newOTPCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(9000))
	if err != nil {
		return "", err
	}
	return big.NewInt(0).Add(n, big.NewInt(1000)).String(), nil
}
