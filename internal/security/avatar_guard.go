package security

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/doyensec/safeurl"
)

// AvatarURLChecker validates user-supplied avatar URLs before they are
// stored on a profile.
type AvatarURLChecker interface {
	// Check validates the URL statically and probes it through an
	// SSRF-guarded HTTP client. Private, loopback, link-local and
	// metadata addresses are rejected, including after DNS resolution.
	Check(ctx context.Context, rawURL string) error
}

var allowedSchemes = []string{"http", "https"}

// blockedNetworks are rejected by the static pre-check. The safeurl
// client re-checks resolved addresses at dial time, which also covers
// DNS rebinding.
var blockedNetworks []net.IPNet

func init() {
	cidrs := []string{
		// Private ranges (RFC 1918)
		"10.0.0.0/8",
		"172.16.0.0/12",
		"192.168.0.0/16",
		// Loopback (RFC 1122)
		"127.0.0.0/8",
		// Link-local (RFC 3927), includes the cloud metadata IP
		"169.254.0.0/16",
		// Current network
		"0.0.0.0/8",
		// IPv6 loopback, link-local, unique-local
		"::1/128",
		"fe80::/10",
		"fc00::/7",
	}
	for _, cidr := range cidrs {
		_, network, err := net.ParseCIDR(cidr)
		if err != nil {
			panic(fmt.Sprintf("invalid CIDR in blockedNetworks: %s: %v", cidr, err))
		}
		blockedNetworks = append(blockedNetworks, *network)
	}
}

// avatarGuard implements AvatarURLChecker with a safeurl-wrapped client.
type avatarGuard struct {
	timeout time.Duration
}

// NewAvatarGuard creates an AvatarURLChecker with a 5 second probe timeout.
func NewAvatarGuard() *avatarGuard {
	return &avatarGuard{timeout: 5 * time.Second}
}

// Check validates the URL statically, then issues a HEAD probe through
// the SSRF-guarded client to confirm the target is publicly reachable.
func (g *avatarGuard) Check(ctx context.Context, rawURL string) error {
	if err := g.validateStatic(rawURL); err != nil {
		return err
	}

	client := g.newSafeClient()
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, rawURL, nil)
	if err != nil {
		return fmt.Errorf("invalid avatar URL: %w", err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("avatar URL is not reachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("avatar URL returned status %d", resp.StatusCode)
	}
	return nil
}

// newSafeClient builds an HTTP client that rejects private, loopback,
// link-local and metadata destinations at dial time, after DNS
// resolution.
func (g *avatarGuard) newSafeClient() *http.Client {
	config := safeurl.GetConfigBuilder().
		SetTimeout(g.timeout).
		SetAllowedSchemes(allowedSchemes...).
		SetAllowedPorts(80, 443).
		Build()

	return safeurl.Client(config).Client
}

// validateStatic performs the DNS-free checks: scheme, host presence,
// and IP-literal ranges.
func (g *avatarGuard) validateStatic(rawURL string) error {
	if rawURL == "" {
		return fmt.Errorf("empty URL")
	}

	parsed, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("invalid URL: %w", err)
	}

	scheme := strings.ToLower(parsed.Scheme)
	schemeOK := false
	for _, s := range allowedSchemes {
		if scheme == s {
			schemeOK = true
			break
		}
	}
	if !schemeOK {
		return fmt.Errorf("scheme %q is not allowed", parsed.Scheme)
	}

	host := parsed.Hostname()
	if host == "" {
		return fmt.Errorf("URL has no host")
	}
	if strings.EqualFold(host, "localhost") {
		return fmt.Errorf("host %q is not allowed", host)
	}

	if ip := net.ParseIP(host); ip != nil {
		for _, network := range blockedNetworks {
			if network.Contains(ip) {
				return fmt.Errorf("IP address %s is in a blocked range", ip)
			}
		}
	}

	return nil
}

// compile-time interface check
var _ AvatarURLChecker = (*avatarGuard)(nil)
