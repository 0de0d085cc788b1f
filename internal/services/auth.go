package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/AnshRaj112/socialapp-backend/internal/apperr"
	"github.com/AnshRaj112/socialapp-backend/internal/models"
	"github.com/AnshRaj112/socialapp-backend/internal/storage"
	"github.com/AnshRaj112/socialapp-backend/internal/store"
	"github.com/AnshRaj112/socialapp-backend/pkg/utils"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// AuthService covers account lifecycle: signup, login, verification,
// profile changes and deletion.
type AuthService struct {
	store  store.Store
	assets storage.AssetStore
	otp    *OTPService
	gate   *Gate
	engine *Engine
	log    *zap.Logger
	now    func() time.Time
}

func NewAuthService(s store.Store, assets storage.AssetStore, otp *OTPService, gate *Gate, engine *Engine, log *zap.Logger) *AuthService {
	return &AuthService{
		store:  s,
		assets: assets,
		otp:    otp,
		gate:   gate,
		engine: engine,
		log:    log,
		now:    time.Now,
	}
}

type SignupInput struct {
	Username string `json:"username"`
	Fullname string `json:"fullname"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func validation(err error) error {
	var verr *utils.ValidationError
	if errors.As(err, &verr) {
		return apperr.Validation(verr.Message)
	}
	return apperr.Validation(err.Error())
}

// Signup creates an unverified user and mails a verification code. A mail
// failure is logged; the user can ask for a new code.
func (a *AuthService) Signup(ctx context.Context, in SignupInput) (*UserView, error) {
	in.Username = utils.NormalizeUsername(in.Username)
	in.Email = utils.NormalizeEmail(in.Email)
	in.Fullname = strings.TrimSpace(in.Fullname)

	for _, err := range []error{
		utils.ValidateEmail(in.Email),
		utils.ValidateFullname(in.Fullname),
		utils.ValidatePassword(in.Password),
		utils.ValidateUsername(in.Username),
	} {
		if err != nil {
			return nil, validation(err)
		}
	}

	if _, err := a.store.Users().GetByUsername(ctx, in.Username); err == nil {
		return nil, apperr.Conflict("Username already exists")
	} else if !errors.Is(err, store.ErrNotFound) {
		return nil, storeErr(err)
	}
	if _, err := a.store.Users().GetByEmail(ctx, in.Email); err == nil {
		return nil, apperr.Conflict("Email already exists")
	} else if !errors.Is(err, store.ErrNotFound) {
		return nil, storeErr(err)
	}

	hash, err := utils.HashPassword(in.Password)
	if err != nil {
		return nil, apperr.Internal("failed to hash password", err)
	}

	u := models.NewUser(in.Username, in.Fullname, in.Email, hash, a.now())
	if err := a.store.Users().Create(ctx, u); err != nil {
		return nil, duplicateErr(err)
	}
	a.log.Info("user signed up", zap.String("user_id", u.ID.Hex()))

	if err := a.otp.Issue(ctx, u.Email); err != nil {
		a.log.Warn("failed to send verification code", zap.String("user_id", u.ID.Hex()), zap.Error(err))
	}

	return a.engine.userView(ctx, u, false)
}

// duplicateErr maps a unique-index collision raced past the pre-checks.
func duplicateErr(err error) error {
	var dup *store.DuplicateError
	if errors.As(err, &dup) {
		switch dup.Field {
		case "username":
			return apperr.Conflict("Username already exists")
		case "email":
			return apperr.Conflict("Email already exists")
		}
		return apperr.Conflict("Already exists")
	}
	return storeErr(err)
}

// Login checks credentials and issues a token. Unverified users still get a
// token, but the gate refuses it until they verify.
func (a *AuthService) Login(ctx context.Context, email, password string) (*UserView, string, error) {
	email = utils.NormalizeEmail(email)
	if email == "" || password == "" {
		return nil, "", apperr.Validation("Email and password are required")
	}

	u, err := a.store.Users().GetByEmail(ctx, email)
	if errors.Is(err, store.ErrNotFound) {
		return nil, "", apperr.Validation("Invalid email or password")
	}
	if err != nil {
		return nil, "", storeErr(err)
	}

	ok, err := utils.VerifyPassword(password, u.Password)
	if err != nil || !ok {
		return nil, "", apperr.Validation("Invalid email or password")
	}

	token, err := a.gate.Issue(ctx, u.ID)
	if err != nil {
		return nil, "", err
	}
	v, err := a.engine.userView(ctx, u, false)
	if err != nil {
		return nil, "", err
	}
	return v, token, nil
}

func (a *AuthService) Logout(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	return a.gate.Revoke(ctx, token)
}

// Me resolves the caller with posts and notification senders.
func (a *AuthService) Me(ctx context.Context, caller *models.User) (*UserView, error) {
	return a.engine.userView(ctx, caller, true)
}

// VerifyOTP flips the user to verified once the pending code matches.
func (a *AuthService) VerifyOTP(ctx context.Context, email, code string) (*UserView, error) {
	email = utils.NormalizeEmail(email)
	if strings.TrimSpace(code) == "" {
		return nil, apperr.Validation("OTP is required")
	}
	if err := a.otp.Verify(ctx, email, strings.TrimSpace(code)); err != nil {
		return nil, err
	}

	u, err := a.store.Users().MarkVerified(ctx, email)
	if err != nil {
		return nil, lookupErr(err, "User not found")
	}
	return a.engine.userView(ctx, u, true)
}

// ResendOTP issues a fresh code for an existing, unverified account.
func (a *AuthService) ResendOTP(ctx context.Context, email string) error {
	email = utils.NormalizeEmail(email)
	if err := utils.ValidateEmail(email); err != nil {
		return validation(err)
	}

	u, err := a.store.Users().GetByEmail(ctx, email)
	if err != nil {
		return lookupErr(err, "User not found")
	}
	if u.IsVerified {
		return apperr.Validation("User already verified")
	}
	return a.otp.Issue(ctx, email)
}

type ProfileInput struct {
	Username        string
	Fullname        string
	Bio             string
	CurrentPassword string
	NewPassword     string
	ProfileImage    *storage.File
	CoverImage      *storage.File
}

// UpdateProfile applies the non-empty fields of in. New images are uploaded
// before the record is saved and the replaced ones are released only after
// the save succeeds. A password change revokes every session and returns a
// fresh token; otherwise the returned token is empty.
func (a *AuthService) UpdateProfile(ctx context.Context, caller *models.User, in ProfileInput) (*UserView, string, error) {
	u, err := a.store.Users().GetByID(ctx, caller.ID)
	if err != nil {
		return nil, "", lookupErr(err, "User not found")
	}

	if (in.CurrentPassword == "") != (in.NewPassword == "") {
		return nil, "", apperr.Validation("Both current Password and new Password are required")
	}
	passwordChanged := in.NewPassword != ""
	if passwordChanged {
		ok, err := utils.VerifyPassword(in.CurrentPassword, u.Password)
		if err != nil || !ok {
			return nil, "", apperr.Validation("Invalid current password")
		}
		if err := utils.ValidatePassword(in.NewPassword); err != nil {
			return nil, "", validation(err)
		}
		hash, err := utils.HashPassword(in.NewPassword)
		if err != nil {
			return nil, "", apperr.Internal("failed to hash password", err)
		}
		u.Password = hash
	}

	if name := utils.NormalizeUsername(in.Username); name != "" && name != u.Username {
		if err := utils.ValidateUsername(name); err != nil {
			return nil, "", validation(err)
		}
		existing, err := a.store.Users().GetByUsername(ctx, name)
		if err == nil && existing.ID != u.ID {
			return nil, "", apperr.Conflict("Username already exists")
		}
		if err != nil && !errors.Is(err, store.ErrNotFound) {
			return nil, "", storeErr(err)
		}
		u.Username = name
	}
	if fullname := strings.TrimSpace(in.Fullname); fullname != "" {
		if err := utils.ValidateFullname(fullname); err != nil {
			return nil, "", validation(err)
		}
		u.Fullname = fullname
	}
	if bio := strings.TrimSpace(in.Bio); bio != "" {
		u.Bio = bio
	}

	var uploaded, replaced []string
	discard := func() {
		for _, id := range uploaded {
			a.engine.release(ctx, id)
		}
	}
	for _, slot := range []struct {
		file *storage.File
		img  *models.Image
	}{
		{in.ProfileImage, &u.ProfileImage},
		{in.CoverImage, &u.CoverImage},
	} {
		if slot.file == nil {
			continue
		}
		if err := storage.CheckImage(*slot.file); err != nil {
			discard()
			return nil, "", err
		}
		img, err := a.assets.Upload(ctx, *slot.file)
		if err != nil {
			discard()
			return nil, "", apperr.ExternalStorage("Failed to upload image", err)
		}
		uploaded = append(uploaded, img.PublicID)
		if !slot.img.IsDefault() {
			replaced = append(replaced, slot.img.PublicID)
		}
		*slot.img = img
	}

	if err := a.store.Users().UpdateProfile(ctx, u); err != nil {
		discard()
		return nil, "", duplicateErr(err)
	}
	for _, id := range replaced {
		a.engine.release(ctx, id)
	}

	var token string
	if passwordChanged {
		if err := a.gate.RevokeAll(ctx, u.ID); err != nil {
			return nil, "", err
		}
		if token, err = a.gate.Issue(ctx, u.ID); err != nil {
			return nil, "", err
		}
	}

	fresh, err := a.store.Users().GetByID(ctx, u.ID)
	if err != nil {
		return nil, "", lookupErr(err, "User not found")
	}
	v, err := a.engine.userView(ctx, fresh, true)
	if err != nil {
		return nil, "", err
	}
	return v, token, nil
}

// DeleteAccount cascades the deletion and ends every session of the caller.
func (a *AuthService) DeleteAccount(ctx context.Context, caller primitive.ObjectID) error {
	if err := a.engine.DeleteAccount(ctx, caller); err != nil {
		return err
	}
	if err := a.gate.RevokeAll(ctx, caller); err != nil {
		a.log.Warn("failed to revoke sessions of deleted user", zap.String("user_id", caller.Hex()), zap.Error(err))
	}
	a.log.Info("account deleted", zap.String("user_id", caller.Hex()))
	return nil
}
