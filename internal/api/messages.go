package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/warblerhq/warbler/internal/middleware"
	"github.com/warblerhq/warbler/internal/service"
)

// MessageForm is the new-message page.
type MessageForm struct {
	Text string `form:"text" binding:"required,max=140"`
}

// MessageHandler serves message creation, display, and deletion.
type MessageHandler struct {
	messages *service.MessageService
	sessions *middleware.SessionManager
	metrics  *middleware.Metrics
}

func NewMessageHandler(messages *service.MessageService, sessions *middleware.SessionManager, metrics *middleware.Metrics) *MessageHandler {
	return &MessageHandler{messages: messages, sessions: sessions, metrics: metrics}
}

func (h *MessageHandler) RegisterRoutes(r *gin.Engine) {
	loggedIn := h.sessions.RequireLogin()

	r.GET("/messages/new", loggedIn, h.NewPage)
	r.POST("/messages/new", loggedIn, h.Create)
	r.GET("/messages/:id", h.Show)
	r.POST("/messages/:id/delete", loggedIn, h.Delete)
}

func (h *MessageHandler) NewPage(c *gin.Context) {
	render(c, h.sessions, http.StatusOK, "message_new.html", nil)
}

// Create posts a message and redirects to the author's profile.
func (h *MessageHandler) Create(c *gin.Context) {
	viewer, _ := middleware.UserFrom(c)

	var form MessageForm
	if err := c.ShouldBind(&form); err != nil {
		h.sessions.AddFlash(c, "danger", "Message must be between 1 and 140 characters.")
		render(c, h.sessions, http.StatusBadRequest, "message_new.html", nil)
		return
	}

	if _, err := h.messages.Create(c.Request.Context(), viewer.ID, form.Text); err != nil {
		switch {
		case errors.Is(err, service.ErrEmptyText), errors.Is(err, service.ErrTextTooLong):
			h.sessions.AddFlash(c, "danger", "Message must be between 1 and 140 characters.")
			render(c, h.sessions, http.StatusBadRequest, "message_new.html", nil)
		default:
			logrus.WithError(err).Error("Failed to create message")
			h.sessions.AddFlash(c, "danger", "Something went wrong.")
			render(c, h.sessions, http.StatusInternalServerError, "message_new.html", nil)
		}
		return
	}

	h.metrics.MessagesSent.Inc()
	c.Redirect(http.StatusFound, fmt.Sprintf("/users/%d", viewer.ID))
}

// Show renders a single message, or the not-found page for a missing id.
func (h *MessageHandler) Show(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		renderNotFound(c, h.sessions)
		return
	}

	msg, err := h.messages.Get(c.Request.Context(), id)
	if err != nil {
		renderNotFound(c, h.sessions)
		return
	}

	render(c, h.sessions, http.StatusOK, "message_show.html", gin.H{"Message": msg})
}

// Delete removes a message. Only the author may delete it.
func (h *MessageHandler) Delete(c *gin.Context) {
	viewer, _ := middleware.UserFrom(c)
	id, ok := paramID(c)
	if !ok {
		renderNotFound(c, h.sessions)
		return
	}

	err := h.messages.Delete(c.Request.Context(), viewer.ID, id)
	switch {
	case err == nil:
	case errors.Is(err, service.ErrNotFound):
		renderNotFound(c, h.sessions)
		return
	case errors.Is(err, service.ErrNotOwner):
		h.sessions.AddFlash(c, "danger", "Access unauthorized.")
		c.Redirect(http.StatusFound, "/")
		return
	default:
		logrus.WithError(err).Error("Failed to delete message")
		h.sessions.AddFlash(c, "danger", "Something went wrong.")
	}

	c.Redirect(http.StatusFound, fmt.Sprintf("/users/%d", viewer.ID))
}
