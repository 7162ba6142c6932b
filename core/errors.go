package core

import "errors"

// Validation and transport errors double as the client-visible reason
// strings in failure outcomes, so their messages are full sentences.
var (
	// ErrEmptyResponse is returned when the verifier response has no content
	ErrEmptyResponse = errors.New("Verification service returned an empty response.")

	// ErrMalformedResponse is returned when the verifier response is not a JSON object
	ErrMalformedResponse = errors.New("Verification service returned malformed JSON.")

	// ErrMissingStatus is returned when the verifier response has no status field
	ErrMissingStatus = errors.New("Verification response has no status.")

	// ErrUnexpectedStatus is returned when the status is neither "okay" nor a failure
	ErrUnexpectedStatus = errors.New("Unexpected verification status.")

	// ErrMissingEmail is returned when a successful response carries no email
	ErrMissingEmail = errors.New("Verification response has no email address.")

	// ErrInvalidEmail is returned when the email is not syntactically valid
	ErrInvalidEmail = errors.New("Verification response contains an invalid email address.")

	// ErrTransport is returned when the verifier cannot be reached or sends no body
	ErrTransport = errors.New("Could not reach the verification service.")

	// ErrLogoutFailed is returned when the auth record survives a logout
	ErrLogoutFailed = errors.New("Logout failed.")

	// ErrInvalidConfig is returned when audience, processor or endpoint fail
	// URL validation; unlike the errors above it is fatal at startup
	ErrInvalidConfig = errors.New("invalid configuration")
)

// VerificationError means the verifier explicitly rejected the assertion.
// The reason is passed through from the verifier verbatim.
type VerificationError struct {
	Reason string
}

func (e *VerificationError) Error() string {
	return e.Reason
}
