package service

import (
	"bytes"
	"encoding/json"
	"net/mail"
	"regexp"

	"github.com/layer-3/persona/core"
)

// failureStatus matches the status values the verifier uses to reject an
// assertion. Matching is deliberately asymmetric with the success check
// below: any status that is neither a failure word nor exactly "okay" is
// treated as unexpected, so a verifier introducing new statuses fails closed.
var failureStatus = regexp.MustCompile(`(?i)^fail(ed|ure)?$`)

// ValidateResponse parses and validates a raw verifier response. The checks
// run in a fixed order and stop at the first failure; for multiply-invalid
// input the order defines which reason the client sees.
func ValidateResponse(raw []byte) (*core.Identity, error) {
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil, core.ErrEmptyResponse
	}

	var payload map[string]any
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, core.ErrMalformedResponse
	}

	status, _ := payload["status"].(string)
	if status == "" {
		return nil, core.ErrMissingStatus
	}

	if failureStatus.MatchString(status) {
		reason, _ := payload["reason"].(string)
		if reason == "" {
			reason = "Unknown reason."
		}
		return nil, &core.VerificationError{Reason: reason}
	}

	if status != "okay" {
		return nil, core.ErrUnexpectedStatus
	}

	email, _ := payload["email"].(string)
	if email == "" {
		return nil, core.ErrMissingEmail
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, core.ErrInvalidEmail
	}

	return core.FromInfo(payload, ""), nil
}
