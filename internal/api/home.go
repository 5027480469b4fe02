package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/warblerhq/warbler/internal/middleware"
	"github.com/warblerhq/warbler/internal/service"
)

// HomeHandler serves the landing page and the personalized feed.
type HomeHandler struct {
	feed     *service.FeedService
	sessions *middleware.SessionManager
}

func NewHomeHandler(feed *service.FeedService, sessions *middleware.SessionManager) *HomeHandler {
	return &HomeHandler{feed: feed, sessions: sessions}
}

func (h *HomeHandler) RegisterRoutes(r *gin.Engine) {
	r.GET("/", h.Home)
}

// Home shows the anonymous landing page, or for a logged-in user the 100
// most recent messages from followed users with their like state.
func (h *HomeHandler) Home(c *gin.Context) {
	viewer, ok := middleware.UserFrom(c)
	if !ok {
		render(c, h.sessions, http.StatusOK, "home_anon.html", nil)
		return
	}

	feed, err := h.feed.Home(c.Request.Context(), viewer.ID)
	if err != nil {
		logrus.WithError(err).Error("Failed to assemble feed")
		render(c, h.sessions, http.StatusInternalServerError, "home.html", nil)
		return
	}

	render(c, h.sessions, http.StatusOK, "home.html", gin.H{"Feed": feed})
}
