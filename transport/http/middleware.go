package http

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/layer-3/persona"
)

// SessionCookie names the cookie carrying the visitor's session ID.
const SessionCookie = "persona_session"

const ctxSessionID = "personaSessionID"

// SessionMiddleware resolves the visitor's session ID from the session
// cookie, minting a fresh ID when none is present, and stashes it in the
// request context for the handlers downstream.
func SessionMiddleware(cfg *persona.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		sid, err := c.Cookie(SessionCookie)
		if err != nil || sid == "" {
			sid = uuid.NewString()
			c.SetCookie(SessionCookie, sid, int(cfg.SessionTTL.Seconds()), "/", "", cfg.SecureCookies, true)
		}
		c.Set(ctxSessionID, sid)
		c.Next()
	}
}

func sessionID(c *gin.Context) string {
	v, _ := c.Get(ctxSessionID)
	sid, _ := v.(string)
	return sid
}
