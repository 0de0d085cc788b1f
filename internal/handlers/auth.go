package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/AnshRaj112/socialapp-backend/internal/middleware"
	"github.com/AnshRaj112/socialapp-backend/internal/services"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// CookieConfig controls the jwt cookie. Secure cookies are sent with
// SameSite=None so a separately hosted frontend can use them.
type CookieConfig struct {
	Secure bool
	Domain string
	TTL    time.Duration
}

type AuthHandler struct {
	auth   *services.AuthService
	engine *services.Engine
	cookie CookieConfig
	log    *zap.Logger
}

func NewAuthHandler(auth *services.AuthService, engine *services.Engine, cookie CookieConfig, log *zap.Logger) *AuthHandler {
	return &AuthHandler{auth: auth, engine: engine, cookie: cookie, log: log}
}

func (h *AuthHandler) setCookie(w http.ResponseWriter, token string, maxAge int) {
	sameSite := http.SameSiteLaxMode
	if h.cookie.Secure {
		sameSite = http.SameSiteNoneMode
	}
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.CookieName,
		Value:    token,
		Path:     "/",
		Domain:   h.cookie.Domain,
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   h.cookie.Secure,
		SameSite: sameSite,
	})
}

// Signup handles POST /api/auth/signup
func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var in services.SignupInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, r, h.log, err)
		return
	}
	user, err := h.auth.Signup(r.Context(), in)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusCreated, messageResponse{Message: "User created successfully", User: user})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login handles POST /api/auth/login. The token is set as the jwt cookie and
// also returned for clients that send it as a bearer token.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, h.log, err)
		return
	}
	user, token, err := h.auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	h.setCookie(w, token, int(h.cookie.TTL.Seconds()))
	writeJSON(w, http.StatusOK, successResponse{Status: "success", Data: user, Token: token})
}

// Logout revokes the session behind the presented token, if any, and clears
// the cookie. It always succeeds.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.auth.Logout(r.Context(), middleware.TokenFromRequest(r)); err != nil {
		h.log.Warn("failed to revoke session on logout", zap.Error(err))
	}
	h.setCookie(w, "", -1)
	writeJSON(w, http.StatusOK, messageResponse{Message: "Logged out successfully"})
}

// CheckAuth returns the caller with their posts and notification senders.
func (h *AuthHandler) CheckAuth(w http.ResponseWriter, r *http.Request) {
	user, err := h.auth.Me(r.Context(), caller(r))
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	writeData(w, http.StatusOK, user)
}

func (h *AuthHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	user, err := h.engine.GetProfile(r.Context(), caller(r).ID)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	writeData(w, http.StatusOK, user)
}

type otpRequest struct {
	OTP string `json:"otp"`
}

// VerifyOTP handles POST /api/auth/verifyOTP/{email}
func (h *AuthHandler) VerifyOTP(w http.ResponseWriter, r *http.Request) {
	var req otpRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, h.log, err)
		return
	}
	user, err := h.auth.VerifyOTP(r.Context(), chi.URLParam(r, "email"), req.OTP)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	writeData(w, http.StatusOK, user)
}

// ResendOTP handles GET /api/auth/resendOTP/{email}
func (h *AuthHandler) ResendOTP(w http.ResponseWriter, r *http.Request) {
	if err := h.auth.ResendOTP(r.Context(), chi.URLParam(r, "email")); err != nil {
		writeError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, messageResponse{Message: "OTP sent successfully"})
}

type profileRequest struct {
	Username        string `json:"username"`
	Fullname        string `json:"fullname"`
	Bio             string `json:"bio"`
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

// UpdateProfile accepts multipart (with optional profileImage and coverImage
// files) or a plain JSON body.
func (h *AuthHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	var in services.ProfileInput
	if isMultipart(r) {
		if err := parseMultipart(w, r); err != nil {
			writeError(w, r, h.log, err)
			return
		}
		in = services.ProfileInput{
			Username:        r.FormValue("username"),
			Fullname:        r.FormValue("fullname"),
			Bio:             r.FormValue("bio"),
			CurrentPassword: r.FormValue("currentPassword"),
			NewPassword:     r.FormValue("newPassword"),
		}
		var err error
		if in.ProfileImage, err = formImage(r, "profileImage"); err != nil {
			writeError(w, r, h.log, err)
			return
		}
		if in.CoverImage, err = formImage(r, "coverImage"); err != nil {
			writeError(w, r, h.log, err)
			return
		}
	} else {
		var req profileRequest
		if err := decodeJSON(w, r, &req); err != nil {
			writeError(w, r, h.log, err)
			return
		}
		in = services.ProfileInput{
			Username:        req.Username,
			Fullname:        req.Fullname,
			Bio:             req.Bio,
			CurrentPassword: req.CurrentPassword,
			NewPassword:     req.NewPassword,
		}
	}

	user, token, err := h.auth.UpdateProfile(r.Context(), caller(r), in)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	if token != "" {
		h.setCookie(w, token, int(h.cookie.TTL.Seconds()))
	}
	writeJSON(w, http.StatusOK, successResponse{Status: "success", Data: user, Token: token})
}

func (h *AuthHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	user, err := h.engine.GetProfile(r.Context(), id)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	writeData(w, http.StatusOK, user)
}

func (h *AuthHandler) Followers(w http.ResponseWriter, r *http.Request) {
	h.edges(w, r, h.engine.Followers)
}

func (h *AuthHandler) Following(w http.ResponseWriter, r *http.Request) {
	h.edges(w, r, h.engine.Following)
}

func (h *AuthHandler) edges(w http.ResponseWriter, r *http.Request, list func(context.Context, primitive.ObjectID) ([]services.UserView, error)) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	users, err := list(r.Context(), id)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	writeData(w, http.StatusOK, users)
}

// DeleteProfile removes the caller's account and everything referencing it.
func (h *AuthHandler) DeleteProfile(w http.ResponseWriter, r *http.Request) {
	if err := h.auth.DeleteAccount(r.Context(), caller(r).ID); err != nil {
		writeError(w, r, h.log, err)
		return
	}
	h.setCookie(w, "", -1)
	writeJSON(w, http.StatusOK, messageResponse{Message: "Profile deleted successfully"})
}

func (h *AuthHandler) SuggestedUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.engine.SuggestedUsers(r.Context(), caller(r).ID)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	writeData(w, http.StatusOK, users)
}

type searchRequest struct {
	Keyword string `json:"keyword"`
}

func (h *AuthHandler) Search(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, h.log, err)
		return
	}
	users, err := h.engine.SearchUsers(r.Context(), req.Keyword)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	writeData(w, http.StatusOK, users)
}
