package service

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"
	"unicode"

	"github.com/hashicorp/go-hclog"
	"github.com/layer-3/persona/core"
	"github.com/layer-3/persona/ports"
)

// Session store keys for the auth record. The record exists if and only if
// the session is authenticated, and only this service mutates these keys.
const (
	keyEmail = "persona:email"
	keyInfo  = "persona:info"
)

// SessionService owns the session auth record: login writes it, logout and
// detected expiry remove it
type SessionService struct {
	store    ports.Store
	verifier ports.Verifier
	events   ports.EventPublisher
	audience string
	logger   hclog.Logger
}

// NewSessionService creates a new session service. events may be nil when no
// cross-instance notification is wanted; logger may be nil.
func NewSessionService(
	store ports.Store,
	verifier ports.Verifier,
	events ports.EventPublisher,
	audience string,
	logger hclog.Logger,
) *SessionService {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &SessionService{
		store:    store,
		verifier: verifier,
		events:   events,
		audience: audience,
		logger:   logger,
	}
}

// Audience returns the configured audience origin
func (s *SessionService) Audience() string {
	return s.audience
}

// Login verifies the assertion and, on success, writes the auth record for
// the session. Every failure mode is recovered into a failure outcome; the
// only observable difference between them is the reason string.
func (s *SessionService) Login(ctx context.Context, sessionID, assertion string) core.Outcome {
	assertion = stripControl(assertion)
	if assertion == "" {
		return core.Failure("Missing assertion.")
	}

	raw, err := s.verifier.Verify(ctx, assertion, s.audience)
	if err != nil {
		s.logger.Warn("verification call failed", "error", err)
		return core.Failure(core.ErrTransport.Error())
	}

	identity, err := ValidateResponse(raw)
	if err != nil {
		var verr *core.VerificationError
		if !errors.As(err, &verr) {
			s.logger.Warn("verifier response rejected", "error", err)
		}
		return core.Failure(err.Error())
	}

	info, err := json.Marshal(identity.Info)
	if err != nil {
		s.logger.Error("failed to encode auth record", "error", err)
		return core.Failure("Could not persist the session.")
	}
	if err := s.store.Set(ctx, sessionID, keyEmail, identity.Email); err != nil {
		s.logger.Error("failed to write auth record", "error", err)
		return core.Failure("Could not persist the session.")
	}
	if err := s.store.Set(ctx, sessionID, keyInfo, string(info)); err != nil {
		s.logger.Error("failed to write auth record", "error", err)
		return core.Failure("Could not persist the session.")
	}

	if s.events != nil {
		if err := s.events.PublishLogin(ctx, identity.Email); err != nil {
			// The session is established either way
			s.logger.Warn("failed to publish login event", "error", err)
		}
	}

	s.logger.Info("login", "email", identity.Email, "issuer", identity.Issuer)
	return core.OK(identity.Email)
}

// Logout removes the auth record and re-checks that it is gone. A record
// that survives deletion points at a store adapter bug; it is reported as a
// failure outcome rather than a crash.
func (s *SessionService) Logout(ctx context.Context, sessionID string) core.Outcome {
	email, _, _ := s.store.Get(ctx, sessionID, keyEmail)

	if err := s.store.Delete(ctx, sessionID, keyEmail); err != nil {
		s.logger.Error("failed to delete auth record", "error", err)
		return core.Failure(core.ErrLogoutFailed.Error())
	}
	if err := s.store.Delete(ctx, sessionID, keyInfo); err != nil {
		s.logger.Error("failed to delete auth record", "error", err)
		return core.Failure(core.ErrLogoutFailed.Error())
	}

	if _, ok, err := s.store.Get(ctx, sessionID, keyEmail); err != nil || ok {
		s.logger.Error("auth record still present after logout", "session_id", sessionID, "error", err)
		return core.Failure(core.ErrLogoutFailed.Error())
	}

	if s.events != nil && email != "" {
		if err := s.events.PublishLogout(ctx, email); err != nil {
			s.logger.Warn("failed to publish logout event", "error", err)
		}
	}

	return core.Outcome{Status: core.StatusOK}
}

// CurrentUser returns the identity for the session, or ok=false when there
// is no auth record or it has expired. An expired record is logged out as a
// side effect before reporting unauthenticated. The identity is the stored
// verifier payload merged over a default template, with the configured
// audience filling in when the verifier did not supply one.
func (s *SessionService) CurrentUser(ctx context.Context, sessionID string) (*core.Identity, bool) {
	email, ok, err := s.store.Get(ctx, sessionID, keyEmail)
	if err != nil {
		s.logger.Error("failed to read auth record", "error", err)
		return nil, false
	}
	if !ok || email == "" {
		return nil, false
	}

	info := map[string]any{}
	if raw, ok, err := s.store.Get(ctx, sessionID, keyInfo); err == nil && ok {
		if err := json.Unmarshal([]byte(raw), &info); err != nil {
			s.logger.Warn("auth info record is not valid JSON", "session_id", sessionID)
			info = map[string]any{}
		}
	}
	if _, present := info["email"]; !present {
		info["email"] = email
	}

	identity := core.FromInfo(info, s.audience)
	if identity.ExpiredAt(time.Now()) {
		s.Logout(ctx, sessionID)
		return nil, false
	}
	return identity, true
}

// Authenticated reports whether the session currently holds a live identity
func (s *SessionService) Authenticated(ctx context.Context, sessionID string) bool {
	_, ok := s.CurrentUser(ctx, sessionID)
	return ok
}

// stripControl drops control characters from an assertion before it is
// forwarded anywhere.
func stripControl(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, s)
}
