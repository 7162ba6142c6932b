package core

// Outcome statuses on the wire.
const (
	StatusOK      = "ok"
	StatusFailure = "failure"
)

// Outcome is the JSON result returned to the widget script after a login or
// logout attempt. Email is set only on successful login, Reason only on
// failure.
type Outcome struct {
	Status string `json:"status"`
	Email  string `json:"email,omitempty"`
	Reason string `json:"reason,omitempty"`
}

// OK returns a successful outcome for the given email.
func OK(email string) Outcome {
	return Outcome{Status: StatusOK, Email: email}
}

// Failure returns a failed outcome carrying a human-readable reason.
func Failure(reason string) Outcome {
	return Outcome{Status: StatusFailure, Reason: reason}
}
