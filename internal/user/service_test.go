package user

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/mkondo/ludo/internal/model"
	"github.com/mkondo/ludo/internal/repository"
)

type mockUserRepo struct {
	findByIDFn      func(ctx context.Context, id string) (*model.User, error)
	searchFn        func(ctx context.Context, q string, limit int) ([]*model.User, error)
	updateProfileFn func(ctx context.Context, id, bio, avatarURL string) error
}

func (m *mockUserRepo) FindByID(ctx context.Context, id string) (*model.User, error) {
	if m.findByIDFn != nil {
		return m.findByIDFn(ctx, id)
	}
	return nil, nil
}
func (m *mockUserRepo) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	return nil, nil
}
func (m *mockUserRepo) FindByUsername(ctx context.Context, username string) (*model.User, error) {
	return nil, nil
}
func (m *mockUserRepo) SearchByUsername(ctx context.Context, q string, limit int) ([]*model.User, error) {
	if m.searchFn != nil {
		return m.searchFn(ctx, q, limit)
	}
	return nil, nil
}
func (m *mockUserRepo) Create(ctx context.Context, user *model.User) error { return nil }
func (m *mockUserRepo) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	return nil
}
func (m *mockUserRepo) UpdateProfile(ctx context.Context, id, bio, avatarURL string) error {
	if m.updateProfileFn != nil {
		return m.updateProfileFn(ctx, id, bio, avatarURL)
	}
	return nil
}

var _ repository.UserRepository = (*mockUserRepo)(nil)

type mockAvatarChecker struct {
	checkFn func(ctx context.Context, rawURL string) error
	calls   int
}

func (m *mockAvatarChecker) Check(ctx context.Context, rawURL string) error {
	m.calls++
	if m.checkFn != nil {
		return m.checkFn(ctx, rawURL)
	}
	return nil
}

func apiErrorCode(t *testing.T, err error) string {
	t.Helper()
	var apiErr *model.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *model.APIError, got %T: %v", err, err)
	}
	return apiErr.Code
}

func strPtr(s string) *string { return &s }

func TestService_Profile(t *testing.T) {
	repo := &mockUserRepo{
		findByIDFn: func(ctx context.Context, id string) (*model.User, error) {
			return &model.User{ID: id, Username: "alice"}, nil
		},
	}
	svc := NewService(repo, &mockAvatarChecker{})

	user, err := svc.Profile(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("Profile returned error: %v", err)
	}
	if user.Username != "alice" {
		t.Errorf("Username = %q, want alice", user.Username)
	}
}

func TestService_Profile_NotFound(t *testing.T) {
	svc := NewService(&mockUserRepo{}, &mockAvatarChecker{})

	_, err := svc.Profile(context.Background(), "nope")
	if got := apiErrorCode(t, err); got != model.ErrCodeUserNotFound {
		t.Errorf("error code = %q, want USER_NOT_FOUND", got)
	}
}

func TestService_UpdateProfile_BioOnly(t *testing.T) {
	var storedBio, storedAvatar string
	repo := &mockUserRepo{
		findByIDFn: func(ctx context.Context, id string) (*model.User, error) {
			return &model.User{ID: id, Bio: "old bio", AvatarURL: "https://img.example.com/a.png"}, nil
		},
		updateProfileFn: func(ctx context.Context, id, bio, avatarURL string) error {
			storedBio, storedAvatar = bio, avatarURL
			return nil
		},
	}
	checker := &mockAvatarChecker{}
	svc := NewService(repo, checker)

	user, err := svc.UpdateProfile(context.Background(), "user-1", UpdateProfileInput{Bio: strPtr("new bio")})
	if err != nil {
		t.Fatalf("UpdateProfile returned error: %v", err)
	}
	if storedBio != "new bio" {
		t.Errorf("stored bio = %q, want new bio", storedBio)
	}
	if storedAvatar != "https://img.example.com/a.png" {
		t.Errorf("avatar changed unexpectedly: %q", storedAvatar)
	}
	if user.Bio != "new bio" {
		t.Errorf("returned bio = %q, want new bio", user.Bio)
	}
	if checker.calls != 0 {
		t.Errorf("avatar checker called %d times for a bio-only update", checker.calls)
	}
}

func TestService_UpdateProfile_BioTooLong(t *testing.T) {
	svc := NewService(&mockUserRepo{}, &mockAvatarChecker{})

	long := strings.Repeat("x", maxBioLen+1)
	_, err := svc.UpdateProfile(context.Background(), "user-1", UpdateProfileInput{Bio: &long})

	var verrs model.ValidationErrors
	if !errors.As(err, &verrs) {
		t.Fatalf("expected ValidationErrors, got %T: %v", err, err)
	}
	if verrs[0].Field != "bio" {
		t.Errorf("failing field = %q, want bio", verrs[0].Field)
	}
}

func TestService_UpdateProfile_UnsafeAvatar(t *testing.T) {
	updateCalled := false
	repo := &mockUserRepo{
		updateProfileFn: func(ctx context.Context, id, bio, avatarURL string) error {
			updateCalled = true
			return nil
		},
	}
	checker := &mockAvatarChecker{
		checkFn: func(ctx context.Context, rawURL string) error {
			return errors.New("IP address 10.0.0.1 is in a blocked range")
		},
	}
	svc := NewService(repo, checker)

	_, err := svc.UpdateProfile(context.Background(), "user-1", UpdateProfileInput{
		AvatarURL: strPtr("http://10.0.0.1/a.png"),
	})
	if got := apiErrorCode(t, err); got != model.ErrCodeUnsafeAvatarURL {
		t.Errorf("error code = %q, want UNSAFE_AVATAR_URL", got)
	}
	if updateCalled {
		t.Error("profile was updated despite unsafe avatar URL")
	}
}

// Clearing the avatar with an empty string must not hit the guard.
func TestService_UpdateProfile_ClearAvatar(t *testing.T) {
	var storedAvatar string
	repo := &mockUserRepo{
		findByIDFn: func(ctx context.Context, id string) (*model.User, error) {
			return &model.User{ID: id, AvatarURL: "https://img.example.com/a.png"}, nil
		},
		updateProfileFn: func(ctx context.Context, id, bio, avatarURL string) error {
			storedAvatar = avatarURL
			return nil
		},
	}
	checker := &mockAvatarChecker{}
	svc := NewService(repo, checker)

	_, err := svc.UpdateProfile(context.Background(), "user-1", UpdateProfileInput{AvatarURL: strPtr("")})
	if err != nil {
		t.Fatalf("UpdateProfile returned error: %v", err)
	}
	if storedAvatar != "" {
		t.Errorf("avatar not cleared: %q", storedAvatar)
	}
	if checker.calls != 0 {
		t.Errorf("avatar checker called %d times for an empty URL", checker.calls)
	}
}

func TestService_UpdateProfile_UserNotFound(t *testing.T) {
	svc := NewService(&mockUserRepo{}, &mockAvatarChecker{})

	_, err := svc.UpdateProfile(context.Background(), "nope", UpdateProfileInput{Bio: strPtr("hi")})
	if got := apiErrorCode(t, err); got != model.ErrCodeUserNotFound {
		t.Errorf("error code = %q, want USER_NOT_FOUND", got)
	}
}

func TestService_Search(t *testing.T) {
	var gotQ string
	var gotLimit int
	repo := &mockUserRepo{
		searchFn: func(ctx context.Context, q string, limit int) ([]*model.User, error) {
			gotQ, gotLimit = q, limit
			return []*model.User{{Username: "alice"}}, nil
		},
	}
	svc := NewService(repo, &mockAvatarChecker{})

	users, err := svc.Search(context.Background(), "  ali  ")
	if err != nil {
		t.Fatalf("Search returned error: %v", err)
	}
	if gotQ != "ali" {
		t.Errorf("query not trimmed: %q", gotQ)
	}
	if gotLimit != searchResultLimit {
		t.Errorf("limit = %d, want %d", gotLimit, searchResultLimit)
	}
	if len(users) != 1 {
		t.Errorf("got %d users, want 1", len(users))
	}
}

func TestService_Search_EmptyQuery(t *testing.T) {
	svc := NewService(&mockUserRepo{}, &mockAvatarChecker{})

	_, err := svc.Search(context.Background(), "   ")
	var verrs model.ValidationErrors
	if !errors.As(err, &verrs) {
		t.Fatalf("expected ValidationErrors, got %T: %v", err, err)
	}
}
