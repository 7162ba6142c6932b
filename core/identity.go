package core

import (
	"encoding/json"
	"time"
)

// Identity represents the validated claim set for an authenticated visitor
type Identity struct {
	Status   string         // verifier status, "okay" for a live identity
	Email    string         // verified email address
	Audience string         // origin the assertion was scoped to
	Issuer   string         // identity provider that vouched for the email
	Expires  int64          // assertion expiry as epoch milliseconds
	Info     map[string]any // full verifier payload the identity was built from
}

// FromInfo builds an Identity from a stored verifier payload. Absent fields
// fall back to a default template (status "failure", empty email/issuer,
// zero expiry, the configured audience); stored fields always win over the
// defaults, never the reverse.
func FromInfo(info map[string]any, audience string) *Identity {
	id := &Identity{
		Status:   "failure",
		Audience: audience,
		Info:     info,
	}
	if s, ok := info["status"].(string); ok && s != "" {
		id.Status = s
	}
	if s, ok := info["email"].(string); ok {
		id.Email = s
	}
	if s, ok := info["audience"].(string); ok && s != "" {
		id.Audience = s
	}
	if s, ok := info["issuer"].(string); ok {
		id.Issuer = s
	}
	id.Expires = epochMillis(info["expires"])
	return id
}

// ExpiredAt reports whether the identity is expired at the given instant.
// A missing or zero expiry counts as expired.
func (i *Identity) ExpiredAt(now time.Time) bool {
	if i == nil {
		return true
	}
	return i.Expires <= now.UnixMilli()
}

func epochMillis(v any) int64 {
	switch n := v.(type) {
	case float64:
		return int64(n)
	case int64:
		return n
	case int:
		return int64(n)
	case json.Number:
		ms, err := n.Int64()
		if err != nil {
			return 0
		}
		return ms
	}
	return 0
}
