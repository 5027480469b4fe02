package middleware

import (
	"encoding/gob"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/sessions"
	"github.com/sirupsen/logrus"

	"github.com/warblerhq/warbler/internal/models"
	"github.com/warblerhq/warbler/internal/service"
)

const (
	// SessionName is the cookie holding the session.
	SessionName = "warbler_session"
	// CurrUserKey is the session key under which the logged-in user id is stored.
	CurrUserKey = "curr_user"
	// ContextUserKey is the gin context key for the resolved current user.
	ContextUserKey = "current_user"
)

// Flash is a one-shot message carried across a redirect.
type Flash struct {
	Message  string
	Category string
}

func init() {
	gob.Register(Flash{})
	gob.Register(uint(0))
}

// SessionManager wraps the cookie store and resolves the current user per
// request. Handlers never read session state directly.
type SessionManager struct {
	store *sessions.CookieStore
	users *service.UserService
}

func NewSessionManager(secret string, users *service.UserService) *SessionManager {
	store := sessions.NewCookieStore([]byte(secret))
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   3600 * 16, // 16 hours
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
	return &SessionManager{store: store, users: users}
}

// Resolve loads the current user from the stored id at the start of every
// request. The user object is re-derived per request, never cached across
// them; a stale id (deleted account) clears the session.
func (m *SessionManager) Resolve() gin.HandlerFunc {
	return func(c *gin.Context) {
		session, _ := m.store.Get(c.Request, SessionName)
		if raw, ok := session.Values[CurrUserKey]; ok {
			if id, ok := raw.(uint); ok {
				user, err := m.users.Get(c.Request.Context(), id)
				if err == nil {
					c.Set(ContextUserKey, user)
				} else {
					delete(session.Values, CurrUserKey)
					if err := session.Save(c.Request, c.Writer); err != nil {
						logrus.WithError(err).Warn("Failed to clear stale session")
					}
				}
			}
		}
		c.Next()
	}
}

// RequireLogin redirects anonymous requests to / with a warning flash.
func (m *SessionManager) RequireLogin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := UserFrom(c); !ok {
			m.AddFlash(c, "danger", "Access unauthorized.")
			c.Redirect(http.StatusFound, "/")
			c.Abort()
			return
		}
		c.Next()
	}
}

// Login records the user id in the session.
func (m *SessionManager) Login(c *gin.Context, user *models.User) error {
	session, _ := m.store.Get(c.Request, SessionName)
	session.Values[CurrUserKey] = user.ID
	return session.Save(c.Request, c.Writer)
}

// Logout clears the stored user id.
func (m *SessionManager) Logout(c *gin.Context) error {
	session, _ := m.store.Get(c.Request, SessionName)
	delete(session.Values, CurrUserKey)
	return session.Save(c.Request, c.Writer)
}

// AddFlash queues a one-shot message for the next rendered page.
func (m *SessionManager) AddFlash(c *gin.Context, category, message string) {
	session, _ := m.store.Get(c.Request, SessionName)
	session.AddFlash(Flash{Message: message, Category: category})
	if err := session.Save(c.Request, c.Writer); err != nil {
		logrus.WithError(err).Warn("Failed to save flash message")
	}
}

// Flashes drains the queued messages for rendering.
func (m *SessionManager) Flashes(c *gin.Context) []Flash {
	session, _ := m.store.Get(c.Request, SessionName)
	raw := session.Flashes()
	if len(raw) == 0 {
		return nil
	}
	if err := session.Save(c.Request, c.Writer); err != nil {
		logrus.WithError(err).Warn("Failed to save session after reading flashes")
	}
	flashes := make([]Flash, 0, len(raw))
	for _, v := range raw {
		if f, ok := v.(Flash); ok {
			flashes = append(flashes, f)
		}
	}
	return flashes
}

// UserFrom returns the current user resolved by the session middleware.
func UserFrom(c *gin.Context) (*models.User, bool) {
	v, ok := c.Get(ContextUserKey)
	if !ok {
		return nil, false
	}
	user, ok := v.(*models.User)
	return user, ok
}
