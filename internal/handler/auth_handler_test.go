package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/mkondo/ludo/internal/auth"
	"github.com/mkondo/ludo/internal/middleware"
	"github.com/mkondo/ludo/internal/model"
)

// --- mocks ---

type mockAuthService struct {
	loginFn          func(ctx context.Context, email, password string) (*auth.Session, error)
	signUpFn         func(ctx context.Context, input auth.SignUpInput) (*auth.Session, error)
	forgotPasswordFn func(ctx context.Context, email string, captchaPassed bool) (string, error)
	changePasswordFn func(ctx context.Context, userID, oldPassword, newPassword string) error
	resetPasswordFn  func(ctx context.Context, token, newPassword string) error
	currentUserFn    func(ctx context.Context, userID string) (*model.User, error)
}

func (m *mockAuthService) Login(ctx context.Context, email, password string) (*auth.Session, error) {
	return m.loginFn(ctx, email, password)
}
func (m *mockAuthService) SignUp(ctx context.Context, input auth.SignUpInput) (*auth.Session, error) {
	return m.signUpFn(ctx, input)
}
func (m *mockAuthService) ForgotPassword(ctx context.Context, email string, captchaPassed bool) (string, error) {
	return m.forgotPasswordFn(ctx, email, captchaPassed)
}
func (m *mockAuthService) ChangePassword(ctx context.Context, userID, oldPassword, newPassword string) error {
	return m.changePasswordFn(ctx, userID, oldPassword, newPassword)
}
func (m *mockAuthService) ResetPassword(ctx context.Context, token, newPassword string) error {
	return m.resetPasswordFn(ctx, token, newPassword)
}
func (m *mockAuthService) CurrentUser(ctx context.Context, userID string) (*model.User, error) {
	return m.currentUserFn(ctx, userID)
}

var _ AuthServiceInterface = (*mockAuthService)(nil)

type mockIntrospector struct {
	validFn  func(token string) bool
	userIDFn func(token string) (string, error)
}

func (m *mockIntrospector) Valid(token string) bool { return m.validFn(token) }
func (m *mockIntrospector) UserIDFromToken(token string) (string, error) {
	return m.userIDFn(token)
}

type mockMailer struct {
	sentTo    []string
	sentToken string
	err       error
}

func (m *mockMailer) SendResetLink(ctx context.Context, email, token string) error {
	if m.err != nil {
		return m.err
	}
	m.sentTo = append(m.sentTo, email)
	m.sentToken = token
	return nil
}

func testUser() *model.User {
	return &model.User{
		ID:        "user-1",
		Username:  "alice",
		Email:     "alice@example.com",
		CreatedAt: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) middleware.ResponseEnvelope {
	t.Helper()
	var env middleware.ResponseEnvelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("response is not valid JSON: %v (%s)", err, rec.Body.String())
	}
	return env
}

// --- tests ---

func TestAuthHandler_Login(t *testing.T) {
	svc := &mockAuthService{
		loginFn: func(ctx context.Context, email, password string) (*auth.Session, error) {
			if email != "alice@example.com" || password != "secret1" {
				t.Errorf("unexpected credentials: %q %q", email, password)
			}
			return &auth.Session{Token: "signed-token", User: testUser()}, nil
		},
	}
	h := NewAuthHandler(svc, nil, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/auth/login",
		strings.NewReader(`{"email":"alice@example.com","password":"secret1"}`))
	rec := httptest.NewRecorder()
	h.Login(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}

	env := decodeBody(t, rec)
	if !env.Success {
		t.Error("success = false")
	}
	data, _ := env.Data.(map[string]any)
	if data["token"] != "signed-token" {
		t.Errorf("token = %v", data["token"])
	}
	user, _ := data["user"].(map[string]any)
	if user["email"] != "alice@example.com" {
		t.Errorf("user.email = %v", user["email"])
	}
}

func TestAuthHandler_Login_InvalidCredentials(t *testing.T) {
	svc := &mockAuthService{
		loginFn: func(ctx context.Context, email, password string) (*auth.Session, error) {
			return nil, model.NewInvalidCredentialsError()
		},
	}
	h := NewAuthHandler(svc, nil, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/auth/login",
		strings.NewReader(`{"email":"alice@example.com","password":"wrong"}`))
	rec := httptest.NewRecorder()
	h.Login(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
	env := decodeBody(t, rec)
	if env.Errors[0].Code != model.ErrCodeInvalidCredentials {
		t.Errorf("error code = %q", env.Errors[0].Code)
	}
}

func TestAuthHandler_Login_MalformedBody(t *testing.T) {
	h := NewAuthHandler(&mockAuthService{}, nil, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader(`{not json`))
	rec := httptest.NewRecorder()
	h.Login(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestAuthHandler_SignUp_ValidationErrors(t *testing.T) {
	svc := &mockAuthService{
		signUpFn: func(ctx context.Context, input auth.SignUpInput) (*auth.Session, error) {
			return nil, model.ValidationErrors{}.
				Add("username", "username is required").
				Add("email", "email format is invalid")
		},
	}
	h := NewAuthHandler(svc, nil, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/auth/signup",
		strings.NewReader(`{"username":"","email":"bad","password":"secret1","repeat_password":"secret1"}`))
	rec := httptest.NewRecorder()
	h.SignUp(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	env := decodeBody(t, rec)
	if len(env.Errors) != 2 {
		t.Errorf("got %d errors, want the full list", len(env.Errors))
	}
}

func TestAuthHandler_SignUp_Created(t *testing.T) {
	svc := &mockAuthService{
		signUpFn: func(ctx context.Context, input auth.SignUpInput) (*auth.Session, error) {
			return &auth.Session{Token: "signed-token", User: testUser()}, nil
		},
	}
	h := NewAuthHandler(svc, nil, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/auth/signup",
		strings.NewReader(`{"username":"alice","email":"alice@example.com","password":"secret1","repeat_password":"secret1"}`))
	rec := httptest.NewRecorder()
	h.SignUp(rec, req)

	if rec.Code != http.StatusCreated {
		t.Errorf("status = %d, want 201", rec.Code)
	}
}

// The forgot-password response must be byte-identical whether or not the
// address belongs to an account.
func TestAuthHandler_ForgotPassword_UniformResponse(t *testing.T) {
	known := &mockAuthService{
		forgotPasswordFn: func(ctx context.Context, email string, captchaPassed bool) (string, error) {
			return "reset-token", nil
		},
	}
	unknown := &mockAuthService{
		forgotPasswordFn: func(ctx context.Context, email string, captchaPassed bool) (string, error) {
			return "", nil
		},
	}

	body := `{"email":"x@example.com","captcha_passed":true}`
	var bodies []string
	var codes []int
	for _, svc := range []AuthServiceInterface{known, unknown} {
		h := NewAuthHandler(svc, nil, &mockMailer{})
		req := httptest.NewRequest(http.MethodPost, "/api/auth/forgot-password", strings.NewReader(body))
		rec := httptest.NewRecorder()
		h.ForgotPassword(rec, req)
		bodies = append(bodies, rec.Body.String())
		codes = append(codes, rec.Code)
	}

	if codes[0] != codes[1] || bodies[0] != bodies[1] {
		t.Errorf("responses differ between known and unknown email:\n%d %s\n%d %s",
			codes[0], bodies[0], codes[1], bodies[1])
	}
}

func TestAuthHandler_ForgotPassword_MailsToken(t *testing.T) {
	svc := &mockAuthService{
		forgotPasswordFn: func(ctx context.Context, email string, captchaPassed bool) (string, error) {
			return "reset-token", nil
		},
	}
	mailer := &mockMailer{}
	h := NewAuthHandler(svc, nil, mailer)

	req := httptest.NewRequest(http.MethodPost, "/api/auth/forgot-password",
		strings.NewReader(`{"email":"alice@example.com","captcha_passed":true}`))
	rec := httptest.NewRecorder()
	h.ForgotPassword(rec, req)

	if len(mailer.sentTo) != 1 || mailer.sentTo[0] != "alice@example.com" {
		t.Errorf("mail recipients = %v", mailer.sentTo)
	}
	if mailer.sentToken != "reset-token" {
		t.Errorf("mailed token = %q", mailer.sentToken)
	}
	// The token itself never appears in the HTTP response.
	if strings.Contains(rec.Body.String(), "reset-token") {
		t.Error("reset token leaked into the response body")
	}
}

// A mail delivery failure only happens for accounts that exist, so it
// must not change the response: same 200, same body as every other
// forgot-password outcome.
func TestAuthHandler_ForgotPassword_MailFailureStaysUniform(t *testing.T) {
	svc := &mockAuthService{
		forgotPasswordFn: func(ctx context.Context, email string, captchaPassed bool) (string, error) {
			return "reset-token", nil
		},
	}
	broken := &mockMailer{err: errors.New("smtp connection refused")}
	h := NewAuthHandler(svc, nil, broken)

	req := httptest.NewRequest(http.MethodPost, "/api/auth/forgot-password",
		strings.NewReader(`{"email":"alice@example.com","captcha_passed":true}`))
	rec := httptest.NewRecorder()
	h.ForgotPassword(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 despite mail failure", rec.Code)
	}

	// Byte-identical to the unknown-email response.
	unknown := &mockAuthService{
		forgotPasswordFn: func(ctx context.Context, email string, captchaPassed bool) (string, error) {
			return "", nil
		},
	}
	h2 := NewAuthHandler(unknown, nil, &mockMailer{})
	req2 := httptest.NewRequest(http.MethodPost, "/api/auth/forgot-password",
		strings.NewReader(`{"email":"alice@example.com","captcha_passed":true}`))
	rec2 := httptest.NewRecorder()
	h2.ForgotPassword(rec2, req2)

	if rec.Body.String() != rec2.Body.String() {
		t.Errorf("mail-failure body differs from unknown-email body:\n%s\n%s",
			rec.Body.String(), rec2.Body.String())
	}
	if strings.Contains(rec.Body.String(), "smtp") {
		t.Error("mail error text leaked into the response")
	}
}

func TestAuthHandler_ChangePassword_RequiresAuth(t *testing.T) {
	h := NewAuthHandler(&mockAuthService{}, nil, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/auth/change-password",
		strings.NewReader(`{"old_password":"a","new_password":"b"}`))
	rec := httptest.NewRecorder()
	h.ChangePassword(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}

func TestAuthHandler_ChangePassword(t *testing.T) {
	var gotUserID string
	svc := &mockAuthService{
		changePasswordFn: func(ctx context.Context, userID, oldPassword, newPassword string) error {
			gotUserID = userID
			return nil
		},
	}
	h := NewAuthHandler(svc, nil, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/auth/change-password",
		strings.NewReader(`{"old_password":"secret1","new_password":"secret2"}`))
	req = req.WithContext(middleware.ContextWithUserID(req.Context(), "user-1"))
	rec := httptest.NewRecorder()
	h.ChangePassword(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}
	if gotUserID != "user-1" {
		t.Errorf("user ID = %q", gotUserID)
	}
}

func TestAuthHandler_Introspect(t *testing.T) {
	tokens := &mockIntrospector{
		validFn: func(token string) bool { return token == "live-token" },
		userIDFn: func(token string) (string, error) {
			return "user-1", nil
		},
	}
	h := NewAuthHandler(&mockAuthService{}, tokens, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/auth/introspect",
		strings.NewReader(`{"token":"live-token"}`))
	rec := httptest.NewRecorder()
	h.Introspect(rec, req)

	env := decodeBody(t, rec)
	data, _ := env.Data.(map[string]any)
	if data["active"] != true {
		t.Errorf("active = %v, want true", data["active"])
	}
	if data["user_id"] != "user-1" {
		t.Errorf("user_id = %v", data["user_id"])
	}
}

func TestAuthHandler_Introspect_Invalid(t *testing.T) {
	tokens := &mockIntrospector{
		validFn: func(token string) bool { return false },
		userIDFn: func(token string) (string, error) {
			t.Error("UserIDFromToken called for an invalid token")
			return "", nil
		},
	}
	h := NewAuthHandler(&mockAuthService{}, tokens, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/auth/introspect",
		strings.NewReader(`{"token":"stale"}`))
	rec := httptest.NewRecorder()
	h.Introspect(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	env := decodeBody(t, rec)
	data, _ := env.Data.(map[string]any)
	if data["active"] == true {
		t.Error("active = true for an invalid token")
	}
}
