// Package social provides the friendship domain logic.
package social

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mkondo/ludo/internal/model"
	"github.com/mkondo/ludo/internal/repository"
)

// Service is the friendship service layer. An edge starts as a directed
// pending request and becomes symmetric once accepted; at most one edge
// exists per user pair regardless of direction.
type Service struct {
	friendRepo repository.FriendshipRepository
	userRepo   repository.UserRepository

	now func() time.Time
}

// NewService creates a new Service instance.
func NewService(friendRepo repository.FriendshipRepository, userRepo repository.UserRepository) *Service {
	return &Service{
		friendRepo: friendRepo,
		userRepo:   userRepo,
		now:        time.Now,
	}
}

// SendRequest creates a pending friend request from requesterID to
// addresseeID. Self-requests are rejected; an existing edge in either
// direction, pending or accepted, is a conflict.
func (s *Service) SendRequest(ctx context.Context, requesterID, addresseeID string) (*model.Friendship, error) {
	if requesterID == addresseeID {
		return nil, model.NewSelfFriendRequestError()
	}

	addressee, err := s.userRepo.FindByID(ctx, addresseeID)
	if err != nil {
		return nil, fmt.Errorf("failed to load addressee: %w", err)
	}
	if addressee == nil {
		return nil, model.NewUserNotFoundError()
	}

	existing, err := s.friendRepo.FindByPair(ctx, requesterID, addresseeID)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing friendship: %w", err)
	}
	if existing != nil {
		return nil, model.NewAlreadyFriendsError()
	}

	now := s.now().UTC()
	f := &model.Friendship{
		ID:          uuid.New().String(),
		RequesterID: requesterID,
		AddresseeID: addresseeID,
		Status:      model.FriendshipPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.friendRepo.Create(ctx, f); err != nil {
		// The pair unique index wins check-then-create races.
		if errors.Is(err, repository.ErrDuplicateKey) {
			return nil, model.NewAlreadyFriendsError()
		}
		return nil, fmt.Errorf("failed to create friend request: %w", err)
	}
	return f, nil
}

// Accept transitions a pending request addressed to userID into an
// accepted edge. Requests addressed to somebody else are reported as
// absent, not forbidden.
func (s *Service) Accept(ctx context.Context, userID, requestID string) (*model.Friendship, error) {
	f, err := s.pendingFor(ctx, userID, requestID)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	if err := s.friendRepo.UpdateStatus(ctx, f.ID, model.FriendshipAccepted, now); err != nil {
		return nil, fmt.Errorf("failed to accept friend request: %w", err)
	}
	f.Status = model.FriendshipAccepted
	f.UpdatedAt = now
	return f, nil
}

// Decline removes a pending request addressed to userID.
func (s *Service) Decline(ctx context.Context, userID, requestID string) error {
	f, err := s.pendingFor(ctx, userID, requestID)
	if err != nil {
		return err
	}

	if err := s.friendRepo.Delete(ctx, f.ID); err != nil {
		return fmt.Errorf("failed to decline friend request: %w", err)
	}
	return nil
}

// Unfriend removes the accepted edge between userID and otherID.
func (s *Service) Unfriend(ctx context.Context, userID, otherID string) error {
	f, err := s.friendRepo.FindByPair(ctx, userID, otherID)
	if err != nil {
		return fmt.Errorf("failed to load friendship: %w", err)
	}
	if f == nil || f.Status != model.FriendshipAccepted {
		return model.NewNotFriendsError()
	}

	if err := s.friendRepo.Delete(ctx, f.ID); err != nil {
		return fmt.Errorf("failed to unfriend: %w", err)
	}
	return nil
}

// Friends returns the users connected to userID by accepted edges.
func (s *Service) Friends(ctx context.Context, userID string) ([]*model.User, error) {
	friends, err := s.friendRepo.ListFriends(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list friends: %w", err)
	}
	return friends, nil
}

// IncomingRequests returns pending requests addressed to userID.
func (s *Service) IncomingRequests(ctx context.Context, userID string) ([]*model.Friendship, error) {
	requests, err := s.friendRepo.ListIncomingPending(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list friend requests: %w", err)
	}
	return requests, nil
}

// pendingFor loads a request and verifies it is pending and addressed to
// userID.
func (s *Service) pendingFor(ctx context.Context, userID, requestID string) (*model.Friendship, error) {
	f, err := s.friendRepo.FindByID(ctx, requestID)
	if err != nil {
		return nil, fmt.Errorf("failed to load friend request: %w", err)
	}
	if f == nil || f.AddresseeID != userID || f.Status != model.FriendshipPending {
		return nil, model.NewRequestNotFoundError()
	}
	return f, nil
}
