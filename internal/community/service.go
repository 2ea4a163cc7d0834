// Package community provides the community post domain logic.
package community

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/mkondo/ludo/internal/model"
	"github.com/mkondo/ludo/internal/repository"
)

const (
	maxTitleLen     = 200
	defaultPageSize = 20
	maxPageSize     = 100
)

// Sanitizer strips dangerous markup from user-authored HTML.
type Sanitizer interface {
	Sanitize(rawHTML string) string
}

// Service is the community post service layer. Post bodies are sanitized
// on write, so stored HTML is always safe to serve as-is.
type Service struct {
	postRepo  repository.PostRepository
	sanitizer Sanitizer

	now func() time.Time
}

// NewService creates a new Service instance.
func NewService(postRepo repository.PostRepository, sanitizer Sanitizer) *Service {
	return &Service{
		postRepo:  postRepo,
		sanitizer: sanitizer,
		now:       time.Now,
	}
}

// CreatePost sanitizes and stores a new post by authorID.
func (s *Service) CreatePost(ctx context.Context, authorID, title, bodyHTML string) (*model.Post, error) {
	title = strings.TrimSpace(title)

	var verrs model.ValidationErrors
	if title == "" {
		verrs = verrs.Add("title", "title is required")
	} else if utf8.RuneCountInString(title) > maxTitleLen {
		verrs = verrs.Add("title", fmt.Sprintf("must be at most %d characters", maxTitleLen))
	}

	sanitized := s.sanitizer.Sanitize(bodyHTML)
	if strings.TrimSpace(sanitized) == "" {
		verrs = verrs.Add("body", "body is required")
	}
	if len(verrs) > 0 {
		return nil, verrs
	}

	post := &model.Post{
		ID:        uuid.New().String(),
		AuthorID:  authorID,
		Title:     title,
		BodyHTML:  sanitized,
		CreatedAt: s.now().UTC(),
	}
	if err := s.postRepo.Create(ctx, post); err != nil {
		return nil, fmt.Errorf("failed to create post: %w", err)
	}
	return post, nil
}

// GetPost returns the post with the given ID.
func (s *Service) GetPost(ctx context.Context, id string) (*model.Post, error) {
	post, err := s.postRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load post: %w", err)
	}
	if post == nil {
		return nil, model.NewPostNotFoundError(id)
	}
	return post, nil
}

// Page is one page of posts, newest first. NextCursor is empty on the
// last page.
type Page struct {
	Posts      []*model.Post
	NextCursor string
}

// ListPosts returns posts newest first with cursor pagination. Cursor is
// an opaque value taken from a previous page's NextCursor, empty for the
// first page.
func (s *Service) ListPosts(ctx context.Context, cursor string, limit int) (*Page, error) {
	if limit <= 0 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}

	var cursorTime time.Time
	var cursorID string
	if cursor != "" {
		t, id, err := decodeCursor(cursor)
		if err != nil {
			return nil, model.ValidationErrors{}.Add("cursor", "invalid cursor")
		}
		cursorTime = t
		cursorID = id
	}

	posts, err := s.postRepo.List(ctx, cursorTime, cursorID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list posts: %w", err)
	}

	page := &Page{Posts: posts}
	if len(posts) == limit {
		last := posts[len(posts)-1]
		page.NextCursor = encodeCursor(last.CreatedAt, last.ID)
	}
	return page, nil
}

// encodeCursor packs the boundary row's (created_at, id) into the opaque
// cursor. The id tie-breaks rows that share a timestamp.
func encodeCursor(t time.Time, id string) string {
	return t.Format(time.RFC3339Nano) + "," + id
}

func decodeCursor(s string) (time.Time, string, error) {
	ts, id, ok := strings.Cut(s, ",")
	if !ok || id == "" {
		return time.Time{}, "", fmt.Errorf("cursor is missing the row id")
	}
	t, err := time.Parse(time.RFC3339Nano, ts)
	if err != nil {
		return time.Time{}, "", fmt.Errorf("cursor timestamp is malformed: %w", err)
	}
	return t, id, nil
}

// DeletePost removes a post. Only the author may delete it.
func (s *Service) DeletePost(ctx context.Context, userID, postID string) error {
	post, err := s.postRepo.FindByID(ctx, postID)
	if err != nil {
		return fmt.Errorf("failed to load post: %w", err)
	}
	if post == nil {
		return model.NewPostNotFoundError(postID)
	}
	if post.AuthorID != userID {
		return model.NewNotPostAuthorError()
	}

	if err := s.postRepo.Delete(ctx, postID); err != nil {
		return fmt.Errorf("failed to delete post: %w", err)
	}
	return nil
}
