package model

import (
	"fmt"
	"strings"
)

// APIError is the uniform domain error format.
// Category drives the HTTP status mapping in the handler layer; Message is
// safe to show to callers. Internal detail stays in server-side logs only.
type APIError struct {
	Code     string // stable machine-readable code
	Message  string // caller-facing message
	Category string // auth, validation, not_found, conflict, forbidden, system
}

// Error implements the error interface.
func (e *APIError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Error categories.
const (
	CategoryAuth       = "auth"
	CategoryValidation = "validation"
	CategoryNotFound   = "not_found"
	CategoryConflict   = "conflict"
	CategoryForbidden  = "forbidden"
	CategorySystem     = "system"
)

// Error codes.
const (
	ErrCodeUnauthorized       = "UNAUTHORIZED"
	ErrCodeInvalidCredentials = "INVALID_CREDENTIALS"
	ErrCodeEmailTaken         = "EMAIL_TAKEN"
	ErrCodeUsernameTaken      = "USERNAME_TAKEN"
	ErrCodeResetTokenInvalid  = "RESET_TOKEN_INVALID"
	ErrCodePasswordMismatch   = "PASSWORD_MISMATCH"
	ErrCodeUserNotFound       = "USER_NOT_FOUND"
	ErrCodeGameNotFound       = "GAME_NOT_FOUND"
	ErrCodePostNotFound       = "POST_NOT_FOUND"
	ErrCodeRequestNotFound    = "FRIEND_REQUEST_NOT_FOUND"
	ErrCodeNotFriends         = "NOT_FRIENDS"
	ErrCodeAlreadyOwned       = "ALREADY_OWNED"
	ErrCodeAlreadyInCart      = "ALREADY_IN_CART"
	ErrCodeAlreadyWishlisted  = "ALREADY_WISHLISTED"
	ErrCodeAlreadyFriends     = "ALREADY_FRIENDS"
	ErrCodeSelfFriendRequest  = "SELF_FRIEND_REQUEST"
	ErrCodeCartEmpty          = "CART_EMPTY"
	ErrCodeNotPostAuthor      = "NOT_POST_AUTHOR"
	ErrCodeUnsafeAvatarURL    = "UNSAFE_AVATAR_URL"
)

// NewUnauthorizedError is returned when a protected endpoint is called
// without a valid session token.
func NewUnauthorizedError() *APIError {
	return &APIError{
		Code:     ErrCodeUnauthorized,
		Message:  "authentication required",
		Category: CategoryAuth,
	}
}

// NewInvalidCredentialsError returns the single generic login failure.
// The same error is used for "no such account" and "wrong password" so the
// response does not reveal which half failed (enumeration resistance).
func NewInvalidCredentialsError() *APIError {
	return &APIError{
		Code:     ErrCodeInvalidCredentials,
		Message:  "invalid email or password",
		Category: CategoryAuth,
	}
}

// NewEmailTakenError returns the duplicate-email registration conflict.
func NewEmailTakenError() *APIError {
	return &APIError{
		Code:     ErrCodeEmailTaken,
		Message:  "an account with this email already exists",
		Category: CategoryConflict,
	}
}

// NewUsernameTakenError returns the duplicate-username registration conflict.
func NewUsernameTakenError() *APIError {
	return &APIError{
		Code:     ErrCodeUsernameTaken,
		Message:  "this username is already taken",
		Category: CategoryConflict,
	}
}

// NewResetTokenInvalidError returns the single generic reset failure.
// "not found", "expired" and "already consumed" are deliberately
// indistinguishable to the caller.
func NewResetTokenInvalidError() *APIError {
	return &APIError{
		Code:     ErrCodeResetTokenInvalid,
		Message:  "the reset link is invalid or has expired",
		Category: CategoryAuth,
	}
}

// NewPasswordMismatchError is returned when the current password supplied
// to a password change does not verify.
func NewPasswordMismatchError() *APIError {
	return &APIError{
		Code:     ErrCodePasswordMismatch,
		Message:  "current password is incorrect",
		Category: CategoryAuth,
	}
}

// NewUserNotFoundError reports a missing user account.
func NewUserNotFoundError() *APIError {
	return &APIError{
		Code:     ErrCodeUserNotFound,
		Message:  "user not found",
		Category: CategoryNotFound,
	}
}

// NewGameNotFoundError reports a missing catalog entry.
func NewGameNotFoundError(gameID string) *APIError {
	return &APIError{
		Code:     ErrCodeGameNotFound,
		Message:  fmt.Sprintf("game not found: %s", gameID),
		Category: CategoryNotFound,
	}
}

// NewPostNotFoundError reports a missing community post.
func NewPostNotFoundError(postID string) *APIError {
	return &APIError{
		Code:     ErrCodePostNotFound,
		Message:  fmt.Sprintf("post not found: %s", postID),
		Category: CategoryNotFound,
	}
}

// NewRequestNotFoundError reports a missing or already answered friend request.
func NewRequestNotFoundError() *APIError {
	return &APIError{
		Code:     ErrCodeRequestNotFound,
		Message:  "friend request not found",
		Category: CategoryNotFound,
	}
}

// NewNotFriendsError reports an unfriend attempt without an accepted edge.
func NewNotFriendsError() *APIError {
	return &APIError{
		Code:     ErrCodeNotFriends,
		Message:  "you are not friends with this user",
		Category: CategoryNotFound,
	}
}

// NewAlreadyOwnedError reports an attempt to buy or carry a game the user owns.
func NewAlreadyOwnedError() *APIError {
	return &APIError{
		Code:     ErrCodeAlreadyOwned,
		Message:  "this game is already in your library",
		Category: CategoryConflict,
	}
}

// NewAlreadyInCartError reports a duplicate cart addition.
func NewAlreadyInCartError() *APIError {
	return &APIError{
		Code:     ErrCodeAlreadyInCart,
		Message:  "this game is already in your cart",
		Category: CategoryConflict,
	}
}

// NewAlreadyWishlistedError reports a duplicate wishlist addition.
func NewAlreadyWishlistedError() *APIError {
	return &APIError{
		Code:     ErrCodeAlreadyWishlisted,
		Message:  "this game is already on your wishlist",
		Category: CategoryConflict,
	}
}

// NewAlreadyFriendsError reports a duplicate friendship edge in either
// direction, pending or accepted.
func NewAlreadyFriendsError() *APIError {
	return &APIError{
		Code:     ErrCodeAlreadyFriends,
		Message:  "a friendship or pending request already exists",
		Category: CategoryConflict,
	}
}

// NewSelfFriendRequestError rejects befriending oneself.
func NewSelfFriendRequestError() *APIError {
	return &APIError{
		Code:     ErrCodeSelfFriendRequest,
		Message:  "you cannot send a friend request to yourself",
		Category: CategoryValidation,
	}
}

// NewCartEmptyError rejects checkout of an empty cart.
func NewCartEmptyError() *APIError {
	return &APIError{
		Code:     ErrCodeCartEmpty,
		Message:  "your cart is empty",
		Category: CategoryValidation,
	}
}

// NewNotPostAuthorError rejects deleting somebody else's post.
func NewNotPostAuthorError() *APIError {
	return &APIError{
		Code:     ErrCodeNotPostAuthor,
		Message:  "only the author can delete this post",
		Category: CategoryForbidden,
	}
}

// NewUnsafeAvatarURLError rejects avatar URLs that fail the SSRF guard.
func NewUnsafeAvatarURLError(reason string) *APIError {
	return &APIError{
		Code:     ErrCodeUnsafeAvatarURL,
		Message:  fmt.Sprintf("avatar URL is not allowed: %s", reason),
		Category: CategoryValidation,
	}
}

// FieldError is a single field-level validation failure.
type FieldError struct {
	Field   string
	Message string
}

// ValidationErrors is the full set of validation failures for one request.
// Flows collect every failing field before returning, so the caller sees
// all problems at once instead of fixing them one by one.
type ValidationErrors []FieldError

// Error implements the error interface.
func (v ValidationErrors) Error() string {
	msgs := make([]string, len(v))
	for i, fe := range v {
		msgs[i] = fmt.Sprintf("%s: %s", fe.Field, fe.Message)
	}
	return "validation failed: " + strings.Join(msgs, "; ")
}

// Add appends a field error and returns the extended list.
func (v ValidationErrors) Add(field, message string) ValidationErrors {
	return append(v, FieldError{Field: field, Message: message})
}
