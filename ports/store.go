package ports

import "context"

// Store is a per-visitor server-side key/value store. The session is created
// on first use, persists across requests and is destroyed key by key on
// logout or expiry. Implementations must be safe for concurrent use, but the
// service assumes the hosting layer serializes requests for a single
// visitor's session.
type Store interface {
	// Get retrieves a value; ok is false when the key is absent
	Get(ctx context.Context, sessionID, key string) (value string, ok bool, err error)

	// Set stores a value under the session
	Set(ctx context.Context, sessionID, key, value string) error

	// Delete removes a key; deleting an absent key is not an error
	Delete(ctx context.Context, sessionID, key string) error
}
