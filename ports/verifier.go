package ports

import "context"

// Verifier performs the outbound call that checks an identity assertion
// against the remote verification service. The assertion is opaque; it is
// forwarded, never parsed. Implementations make exactly one attempt per
// call — a user is waiting, so there is no retry or backoff.
type Verifier interface {
	// Verify returns the verifier's raw response body, or an error wrapping
	// core.ErrTransport when the call cannot be completed
	Verify(ctx context.Context, assertion, audience string) ([]byte, error)
}
