// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"encoding/base64"
	"errors"
	"log/slog"
	"net/http"

	"github.com/pquerna/otp/totp"
	qrcode "github.com/skip2/go-qrcode"

	"inkwell/internal/auth"
	"inkwell/internal/middleware"
	"inkwell/internal/models"
	"inkwell/internal/store"
)

// totpIssuer is the issuer label shown in authenticator apps.
const totpIssuer = "Inkwell"

// Auth groups the account API endpoints: registration, login, profile,
// and optional TOTP two-factor authentication.
type Auth struct {
	users     *store.UserStore
	jwtSecret string
}

// NewAuth creates the auth handler group.
func NewAuth(users *store.UserStore, jwtSecret string) *Auth {
	return &Auth{users: users, jwtSecret: jwtSecret}
}

// userPayload is the public view of an account returned by auth endpoints.
type userPayload struct {
	ID       string  `json:"id"`
	Username string  `json:"username"`
	Email    string  `json:"email"`
	Role     string  `json:"role"`
	Avatar   *string `json:"avatar"`
	Bio      *string `json:"bio"`
}

func publicUser(u *models.User) userPayload {
	return userPayload{
		ID:       u.ID.String(),
		Username: u.Username,
		Email:    u.Email,
		Role:     string(u.Role),
		Avatar:   u.Avatar,
		Bio:      u.Bio,
	}
}

type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Register creates a new account and returns it with a signed token.
func (h *Auth) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if msg := validateRegistration(req.Username, req.Email, req.Password); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	user, err := h.users.Create(req.Username, req.Email, req.Password)
	if err != nil {
		var conflict *store.ConflictError
		if errors.As(err, &conflict) {
			writeError(w, http.StatusConflict, "User with this "+conflict.Column+" already exists")
			return
		}
		storeError(w, err, "user")
		return
	}

	token, err := auth.IssueToken(user, h.jwtSecret)
	if err != nil {
		slog.Error("issue token failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"user":  publicUser(user),
		"token": token,
	})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	TOTPCode string `json:"totp_code"`
}

// Login verifies credentials (and the TOTP code when two-factor is
// enabled) and returns a signed token.
func (h *Auth) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if req.Email == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "Email and password are required")
		return
	}

	user, err := h.users.FindByEmail(req.Email)
	if err != nil {
		storeError(w, err, "user")
		return
	}
	if user == nil {
		writeError(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	if !h.users.CheckPassword(user, req.Password) {
		writeError(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	if user.TOTPEnabled {
		if user.TOTPSecret == nil || !totp.Validate(req.TOTPCode, *user.TOTPSecret) {
			writeError(w, http.StatusUnauthorized, "Invalid two-factor code")
			return
		}
	}

	token, err := auth.IssueToken(user, h.jwtSecret)
	if err != nil {
		slog.Error("issue token failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"user":  publicUser(user),
		"token": token,
	})
}

// Me returns the authenticated account's profile.
func (h *Auth) Me(w http.ResponseWriter, r *http.Request) {
	ident := middleware.IdentityFromCtx(r.Context())

	user, err := h.users.FindByID(ident.UserID)
	if err != nil {
		storeError(w, err, "user")
		return
	}
	if user == nil {
		writeError(w, http.StatusNotFound, "user not found")
		return
	}
	writeJSON(w, http.StatusOK, publicUser(user))
}

// TwoFASetup generates a fresh TOTP secret for the authenticated account
// and returns it with a QR code for authenticator apps. The secret stays
// inactive until verified.
func (h *Auth) TwoFASetup(w http.ResponseWriter, r *http.Request) {
	ident := middleware.IdentityFromCtx(r.Context())

	user, err := h.users.FindByID(ident.UserID)
	if err != nil {
		storeError(w, err, "user")
		return
	}
	if user == nil {
		writeError(w, http.StatusNotFound, "user not found")
		return
	}

	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      totpIssuer,
		AccountName: user.Email,
	})
	if err != nil {
		slog.Error("totp generate failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	if err := h.users.SetTOTPSecret(user.ID, key.Secret()); err != nil {
		storeError(w, err, "user")
		return
	}

	qrPNG, err := qrcode.Encode(key.URL(), qrcode.Medium, 256)
	if err != nil {
		slog.Error("qr encode failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"secret":      key.Secret(),
		"otpauth_url": key.URL(),
		"qr_png":      base64.StdEncoding.EncodeToString(qrPNG),
	})
}

type twoFAVerifyRequest struct {
	Code string `json:"code"`
}

// TwoFAVerify confirms the authenticator pairing by validating one code
// against the pending secret, then enables two-factor for the account.
func (h *Auth) TwoFAVerify(w http.ResponseWriter, r *http.Request) {
	ident := middleware.IdentityFromCtx(r.Context())

	var req twoFAVerifyRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	user, err := h.users.FindByID(ident.UserID)
	if err != nil {
		storeError(w, err, "user")
		return
	}
	if user == nil {
		writeError(w, http.StatusNotFound, "user not found")
		return
	}

	if user.TOTPSecret == nil {
		writeError(w, http.StatusBadRequest, "Two-factor setup has not been started")
		return
	}
	if !totp.Validate(req.Code, *user.TOTPSecret) {
		writeError(w, http.StatusUnauthorized, "Invalid two-factor code")
		return
	}

	if err := h.users.EnableTOTP(user.ID); err != nil {
		storeError(w, err, "user")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Two-factor authentication enabled"})
}
