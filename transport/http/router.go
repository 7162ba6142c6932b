package http

import (
	"bytes"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/layer-3/persona"
	"github.com/layer-3/persona/service"
)

// SetupRouter sets up the Gin router. The dispatcher runs as middleware so
// widget action posts are answered before any route handler, while every
// other request reaches the page handlers unchanged.
func SetupRouter(cfg *persona.Config, sessions *service.SessionService) *gin.Engine {
	router := gin.Default()

	router.Use(SessionMiddleware(cfg))
	router.Use(Dispatcher(sessions))

	index := indexHandler(cfg, sessions)
	router.GET("/", index)
	router.POST("/", index)

	return router
}

// indexHandler serves a minimal page embedding the widget fragment.
func indexHandler(cfg *persona.Config, sessions *service.SessionService) gin.HandlerFunc {
	return func(c *gin.Context) {
		data := WidgetData{Processor: cfg.Processor}
		if identity, ok := sessions.CurrentUser(c.Request.Context(), sessionID(c)); ok {
			data.Authenticated = true
			data.Email = identity.Email
		}

		var page bytes.Buffer
		if err := RenderWidget(&page, data); err != nil {
			c.AbortWithStatus(http.StatusInternalServerError)
			return
		}
		c.Data(http.StatusOK, "text/html; charset=utf-8", page.Bytes())
	}
}
