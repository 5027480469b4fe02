package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/warblerhq/warbler/internal/middleware"
)

// render wraps gin's HTML rendering, injecting the resolved current user and
// any pending flash messages into every page.
func render(c *gin.Context, sessions *middleware.SessionManager, code int, name string, data gin.H) {
	if data == nil {
		data = gin.H{}
	}
	if user, ok := middleware.UserFrom(c); ok {
		data["CurrentUser"] = user
	}
	data["Flashes"] = sessions.Flashes(c)
	c.HTML(code, name, data)
}

// renderNotFound produces the uniform not-found page.
func renderNotFound(c *gin.Context, sessions *middleware.SessionManager) {
	render(c, sessions, http.StatusNotFound, "404.html", nil)
}

// paramID parses the :id route parameter.
func paramID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return 0, false
	}
	return uint(id), true
}

// HealthCheck reports service health.
func HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"message": "Warbler is running",
	})
}
