// Package security provides the application's security services:
// HTML sanitizing for community posts and SSRF guarding for
// user-supplied avatar URLs.
package security

import (
	"net/url"

	"github.com/microcosm-cc/bluemonday"
)

// ContentSanitizerService sanitizes user-authored HTML.
// Post bodies pass through it before storage.
type ContentSanitizerService interface {
	// Sanitize returns a safe version of rawHTML. Only an allow-list of
	// formatting tags survives; script/iframe/style and on* event
	// attributes are stripped. Idempotent: sanitizing sanitized output
	// is a no-op.
	Sanitize(rawHTML string) string
}

// contentSanitizer implements ContentSanitizerService with a bluemonday
// allow-list policy. The policy is immutable after construction and safe
// for concurrent use.
type contentSanitizer struct {
	policy *bluemonday.Policy
}

// NewContentSanitizer builds the post-body sanitizing policy:
//   - allowed tags: p, br, a, ul, ol, li, blockquote, pre, code, strong, em, img
//   - links get target="_blank" and rel="noopener noreferrer"
//   - img src is restricted to https URLs
func NewContentSanitizer() *contentSanitizer {
	p := bluemonday.NewPolicy()

	p.AllowElements(
		"p", "br", "ul", "ol", "li",
		"blockquote", "pre", "code",
		"strong", "em",
	)

	p.AllowAttrs("href").OnElements("a")
	p.AllowRelativeURLs(false)
	p.AddTargetBlankToFullyQualifiedLinks(true)
	p.RequireNoReferrerOnLinks(true)

	p.AllowAttrs("src").OnElements("img")
	p.AllowAttrs("alt").OnElements("img")
	p.AllowURLSchemeWithCustomPolicy("https", func(u *url.URL) bool {
		return true
	})

	return &contentSanitizer{policy: p}
}

// Sanitize returns a safe version of rawHTML.
func (s *contentSanitizer) Sanitize(rawHTML string) string {
	return s.policy.Sanitize(rawHTML)
}
