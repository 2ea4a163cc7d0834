package security

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestAvatarGuard_StaticRejections(t *testing.T) {
	g := NewAvatarGuard()

	cases := []struct {
		name string
		url  string
	}{
		{"empty", ""},
		{"no scheme", "example.com/avatar.png"},
		{"ftp scheme", "ftp://example.com/avatar.png"},
		{"javascript scheme", "javascript:alert(1)"},
		{"no host", "https:///avatar.png"},
		{"localhost", "http://localhost/avatar.png"},
		{"loopback IP", "http://127.0.0.1/avatar.png"},
		{"private IP", "http://10.1.2.3/avatar.png"},
		{"private IP 192", "http://192.168.1.5/avatar.png"},
		{"link-local metadata", "http://169.254.169.254/latest/meta-data"},
		{"ipv6 loopback", "http://[::1]/avatar.png"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if err := g.validateStatic(tc.url); err == nil {
				t.Errorf("validateStatic(%q) = nil, want error", tc.url)
			}
		})
	}
}

func TestAvatarGuard_StaticAllowsPublicURL(t *testing.T) {
	g := NewAvatarGuard()

	if err := g.validateStatic("https://cdn.example.com/avatars/alice.png"); err != nil {
		t.Errorf("validateStatic rejected a public URL: %v", err)
	}
}

// Check must refuse to probe loopback targets even though the URL hides
// the destination behind a locally resolving host. The httptest server
// listens on 127.0.0.1, so reaching it would mean the guard failed.
func TestAvatarGuard_CheckBlocksLoopbackProbe(t *testing.T) {
	reached := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reached = true
	}))
	defer srv.Close()

	g := NewAvatarGuard()
	err := g.Check(context.Background(), srv.URL+"/avatar.png")

	if err == nil {
		t.Error("Check succeeded against a loopback target")
	}
	if reached {
		t.Error("the loopback server was actually contacted")
	}
}
