// Package user provides the profile domain logic.
package user

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/mkondo/ludo/internal/model"
	"github.com/mkondo/ludo/internal/repository"
)

const (
	maxBioLen         = 500
	searchResultLimit = 20
)

// AvatarURLChecker validates avatar URLs before they are stored.
type AvatarURLChecker interface {
	Check(ctx context.Context, rawURL string) error
}

// Service is the profile service layer: public profiles, profile updates
// and username search.
type Service struct {
	userRepo repository.UserRepository
	avatars  AvatarURLChecker
}

// NewService creates a new Service instance.
func NewService(userRepo repository.UserRepository, avatars AvatarURLChecker) *Service {
	return &Service{
		userRepo: userRepo,
		avatars:  avatars,
	}
}

// Profile returns the user with the given ID.
func (s *Service) Profile(ctx context.Context, id string) (*model.User, error) {
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	if user == nil {
		return nil, model.NewUserNotFoundError()
	}
	return user, nil
}

// UpdateProfileInput carries the PATCH semantics of a profile update:
// nil fields are left unchanged.
type UpdateProfileInput struct {
	Bio       *string
	AvatarURL *string
}

// UpdateProfile applies a partial profile update for the given user.
// A non-empty avatar URL must pass the SSRF guard before it is stored.
func (s *Service) UpdateProfile(ctx context.Context, userID string, in UpdateProfileInput) (*model.User, error) {
	var verrs model.ValidationErrors
	if in.Bio != nil && utf8.RuneCountInString(*in.Bio) > maxBioLen {
		verrs = verrs.Add("bio", fmt.Sprintf("must be at most %d characters", maxBioLen))
	}
	if len(verrs) > 0 {
		return nil, verrs
	}

	if in.AvatarURL != nil && *in.AvatarURL != "" {
		if err := s.avatars.Check(ctx, *in.AvatarURL); err != nil {
			return nil, model.NewUnsafeAvatarURLError(err.Error())
		}
	}

	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	if user == nil {
		return nil, model.NewUserNotFoundError()
	}

	if in.Bio != nil {
		user.Bio = *in.Bio
	}
	if in.AvatarURL != nil {
		user.AvatarURL = *in.AvatarURL
	}

	if err := s.userRepo.UpdateProfile(ctx, userID, user.Bio, user.AvatarURL); err != nil {
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}
	return user, nil
}

// Search returns up to 20 users whose username contains q
// (case-insensitive).
func (s *Service) Search(ctx context.Context, q string) ([]*model.User, error) {
	q = strings.TrimSpace(q)
	if q == "" {
		return nil, model.ValidationErrors{}.Add("q", "search query is required")
	}

	users, err := s.userRepo.SearchByUsername(ctx, q, searchResultLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to search users: %w", err)
	}
	return users, nil
}
