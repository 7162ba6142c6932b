package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/layer-3/persona/core"
	"github.com/layer-3/persona/service"
)

// Wire protocol between the widget script and this endpoint.
const (
	// ActionField is the form field naming the requested session action
	ActionField = "persona_action"

	ActionLogin  = "login"
	ActionLogout = "logout"

	// AsyncMarkerHeader must carry AsyncMarkerValue for a request to be
	// treated as a widget action rather than an ordinary page load
	AsyncMarkerHeader = "X-Requested-With"
	AsyncMarkerValue  = "XMLHttpRequest"

	// HeaderAudience echoes the configured audience on every action response
	HeaderAudience = "X-Persona-Audience"
	// HeaderUser echoes the verified email when the outcome carries one
	HeaderUser = "X-Persona-User"
)

// ShouldServe reports whether the request is a widget action post: a POST
// declaring itself asynchronous via the marker header, with persona_action
// exactly "login" or "logout". Everything else is an ordinary page request
// and must fall through untouched.
func ShouldServe(r *http.Request) bool {
	if r.Header.Get(AsyncMarkerHeader) != AsyncMarkerValue {
		return false
	}
	if r.Method != http.MethodPost {
		return false
	}
	action := r.PostFormValue(ActionField)
	return action == ActionLogin || action == ActionLogout
}

// Dispatcher is middleware that intercepts widget action posts and answers
// them with a JSON outcome; non-matching requests continue down the chain.
// Once an action is served no further output is written for the request.
func Dispatcher(sessions *service.SessionService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !ShouldServe(c.Request) {
			c.Next()
			return
		}

		sid := sessionID(c)
		ctx := c.Request.Context()

		var outcome core.Outcome
		switch c.Request.PostFormValue(ActionField) {
		case ActionLogin:
			outcome = sessions.Login(ctx, sid, c.Request.PostFormValue("assertion"))
		case ActionLogout:
			outcome = sessions.Logout(ctx, sid)
		}

		c.Header(HeaderAudience, sessions.Audience())
		if outcome.Email != "" {
			c.Header(HeaderUser, outcome.Email)
		}
		c.AbortWithStatusJSON(http.StatusOK, outcome)
	}
}
