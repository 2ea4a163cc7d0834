package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/mkondo/ludo/internal/auth"
	"github.com/mkondo/ludo/internal/model"
)

// AuthServiceInterface is the service surface the auth handler needs.
type AuthServiceInterface interface {
	Login(ctx context.Context, email, password string) (*auth.Session, error)
	SignUp(ctx context.Context, input auth.SignUpInput) (*auth.Session, error)
	ForgotPassword(ctx context.Context, email string, captchaPassed bool) (string, error)
	ChangePassword(ctx context.Context, userID, oldPassword, newPassword string) error
	ResetPassword(ctx context.Context, token, newPassword string) error
	CurrentUser(ctx context.Context, userID string) (*model.User, error)
}

// TokenIntrospector validates raw tokens for the introspection endpoint.
type TokenIntrospector interface {
	Valid(token string) bool
	UserIDFromToken(token string) (string, error)
}

// ResetMailer delivers the password reset link. The plaintext token goes
// into the mail and nowhere else.
type ResetMailer interface {
	SendResetLink(ctx context.Context, email, token string) error
}

// AuthHandler serves the authentication endpoints.
type AuthHandler struct {
	service AuthServiceInterface
	tokens  TokenIntrospector
	mailer  ResetMailer
}

// NewAuthHandler creates an AuthHandler. mailer may be nil, in which
// case forgot-password still succeeds but no mail goes out (dev setups).
func NewAuthHandler(service AuthServiceInterface, tokens TokenIntrospector, mailer ResetMailer) *AuthHandler {
	return &AuthHandler{
		service: service,
		tokens:  tokens,
		mailer:  mailer,
	}
}

type sessionResponse struct {
	Token string              `json:"token"`
	User  privateUserResponse `json:"user"`
}

func toSessionResponse(s *auth.Session) sessionResponse {
	return sessionResponse{
		Token: s.Token,
		User:  toPrivateUser(s.User),
	}
}

// Login authenticates credentials and returns a session token.
// POST /api/auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "request body must be valid JSON")
		return
	}

	session, err := h.service.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeData(w, http.StatusOK, "logged in", toSessionResponse(session))
}

// SignUp registers a new account and returns a session token.
// POST /api/auth/signup
func (h *AuthHandler) SignUp(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username       string `json:"username"`
		Email          string `json:"email"`
		Password       string `json:"password"`
		RepeatPassword string `json:"repeat_password"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "request body must be valid JSON")
		return
	}

	session, err := h.service.SignUp(r.Context(), auth.SignUpInput{
		Username:       req.Username,
		Email:          req.Email,
		Password:       req.Password,
		RepeatPassword: req.RepeatPassword,
	})
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeData(w, http.StatusCreated, "account created", toSessionResponse(session))
}

// ForgotPassword starts the password reset flow. The response is the
// same whether or not the email belongs to an account.
// POST /api/auth/forgot-password
func (h *AuthHandler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email         string `json:"email"`
		CaptchaPassed bool   `json:"captcha_passed"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "request body must be valid JSON")
		return
	}

	token, err := h.service.ForgotPassword(r.Context(), req.Email, req.CaptchaPassed)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	if token != "" && h.mailer != nil {
		if err := h.mailer.SendResetLink(r.Context(), req.Email, token); err != nil {
			// The mailer only runs for existing accounts, so a mail
			// failure must not change the response: log it and fall
			// through to the uniform 200.
			slog.Error("failed to send reset link", slog.String("error", err.Error()))
		}
	}

	writeData(w, http.StatusOK, "if the address belongs to an account, a reset link has been sent", nil)
}

// ResetPassword consumes a reset token and sets a new password.
// POST /api/auth/reset-password
func (h *AuthHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Token       string `json:"token"`
		NewPassword string `json:"new_password"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "request body must be valid JSON")
		return
	}

	if err := h.service.ResetPassword(r.Context(), req.Token, req.NewPassword); err != nil {
		handleServiceError(w, err)
		return
	}

	writeData(w, http.StatusOK, "password has been reset", nil)
}

// ChangePassword changes the authenticated user's password.
// POST /api/auth/change-password
func (h *AuthHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	var req struct {
		OldPassword string `json:"old_password"`
		NewPassword string `json:"new_password"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "request body must be valid JSON")
		return
	}

	if err := h.service.ChangePassword(r.Context(), userID, req.OldPassword, req.NewPassword); err != nil {
		handleServiceError(w, err)
		return
	}

	writeData(w, http.StatusOK, "password has been changed", nil)
}

// Me returns the authenticated user's account.
// GET /api/auth/me
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	user, err := h.service.CurrentUser(r.Context(), userID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeData(w, http.StatusOK, "", toPrivateUser(user))
}

// Introspect reports whether a raw token is currently valid.
// POST /api/auth/introspect
func (h *AuthHandler) Introspect(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Token string `json:"token"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "request body must be valid JSON")
		return
	}

	resp := struct {
		Active bool   `json:"active"`
		UserID string `json:"user_id,omitempty"`
	}{}
	if h.tokens.Valid(req.Token) {
		if userID, err := h.tokens.UserIDFromToken(req.Token); err == nil {
			resp.Active = true
			resp.UserID = userID
		}
	}

	writeData(w, http.StatusOK, "", resp)
}
