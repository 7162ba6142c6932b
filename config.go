// Package persona implements the server side of a browser-based federated
// identity widget in the BrowserID style: it verifies signed identity
// assertions against a remote verification service, keeps the resulting
// email in a per-visitor session store, and serves the login/logout JSON
// endpoint and UI fragment the widget script talks to.
//
// All assertion cryptography is delegated to the remote verifier; this
// package never interprets an assertion, only forwards it.
package persona

import (
	"fmt"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/layer-3/persona/core"
)

// Defaults for optional configuration values.
const (
	DefaultEndpoint      = "https://verifier.login.persona.org/verify"
	DefaultVerifyTimeout = 30 * time.Second
	DefaultSessionTTL    = 24 * time.Hour
)

// Config holds everything the widget service needs. It is built once at
// startup and passed explicitly to the transport and service layers; there
// is no global registry.
type Config struct {
	// Audience is the exact origin (scheme://host[:port]) serving the
	// widget. Assertions are scoped to it; a mismatch makes every
	// verification fail.
	Audience string

	// Processor is the URL the widget script posts login/logout actions
	// back to. May be a path relative to the current origin.
	Processor string

	// Endpoint is the remote verification service URL.
	Endpoint string

	// VerifyTimeout bounds a single outbound verification call.
	VerifyTimeout time.Duration

	// SessionTTL is the lifetime of the session cookie.
	SessionTTL time.Duration

	// SecureCookies marks the session cookie Secure. Leave false only for
	// plain-http development setups.
	SecureCookies bool
}

// Validate checks the configured URLs and fills in defaults. It must be
// called before the config is used; a failure here is a startup fault, since
// continuing with a bad audience would silently break every verification.
func (c *Config) Validate() error {
	if c == nil {
		return fmt.Errorf("%w: config is nil", core.ErrInvalidConfig)
	}
	if err := checkOrigin("audience", c.Audience); err != nil {
		return err
	}

	if c.Endpoint == "" {
		c.Endpoint = DefaultEndpoint
	}
	if err := checkOrigin("endpoint", c.Endpoint); err != nil {
		return err
	}

	if c.Processor == "" {
		c.Processor = "/"
	}
	if !strings.HasPrefix(c.Processor, "/") {
		if err := checkOrigin("processor", c.Processor); err != nil {
			return err
		}
	}

	if c.VerifyTimeout <= 0 {
		c.VerifyTimeout = DefaultVerifyTimeout
	}
	if c.SessionTTL <= 0 {
		c.SessionTTL = DefaultSessionTTL
	}
	return nil
}

func checkOrigin(name, raw string) error {
	if raw == "" {
		return fmt.Errorf("%w: %s is empty", core.ErrInvalidConfig, name)
	}
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("%w: %s %q: %v", core.ErrInvalidConfig, name, raw, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%w: %s %q: scheme must be http or https", core.ErrInvalidConfig, name, raw)
	}
	if u.Host == "" {
		return fmt.Errorf("%w: %s %q: missing host", core.ErrInvalidConfig, name, raw)
	}
	return nil
}

// DeriveAudience builds an audience origin from a request scheme and host.
// Default ports are omitted so the string matches what browsers report as
// the origin.
func DeriveAudience(scheme, host string) string {
	switch scheme {
	case "http":
		host = strings.TrimSuffix(host, ":80")
	case "https":
		host = strings.TrimSuffix(host, ":443")
	}
	return scheme + "://" + host
}

// DeriveProcessor builds a processor URL from the path currently serving the
// widget. An empty path falls back to the site root.
func DeriveProcessor(scriptPath string) string {
	if scriptPath == "" {
		return "/"
	}
	return path.Clean("/" + scriptPath)
}
