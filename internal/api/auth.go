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

// SignupForm are the fields of the signup page.
type SignupForm struct {
	Username string `form:"username" binding:"required,max=50"`
	Email    string `form:"email" binding:"required,email"`
	Password string `form:"password" binding:"required,min=6"`
	ImageURL string `form:"image_url"`
}

// LoginForm are the fields of the login page.
type LoginForm struct {
	Username string `form:"username" binding:"required"`
	Password string `form:"password" binding:"required"`
}

// AuthHandler serves signup, login, and logout.
type AuthHandler struct {
	auth     *service.AuthService
	sessions *middleware.SessionManager
}

func NewAuthHandler(auth *service.AuthService, sessions *middleware.SessionManager) *AuthHandler {
	return &AuthHandler{auth: auth, sessions: sessions}
}

// RegisterRoutes wires the auth routes. The optional guards (rate limiting)
// apply to the credential-accepting POSTs only.
func (h *AuthHandler) RegisterRoutes(r *gin.Engine, guards ...gin.HandlerFunc) {
	r.GET("/signup", h.SignupPage)
	r.POST("/signup", append(guards, h.Signup)...)
	r.GET("/login", h.LoginPage)
	r.POST("/login", append(guards, h.Login)...)
	r.GET("/logout", h.Logout)
}

func (h *AuthHandler) SignupPage(c *gin.Context) {
	render(c, h.sessions, http.StatusOK, "signup.html", nil)
}

// Signup creates the account, logs the new user in, and redirects home.
// A duplicate username or email re-presents the form with a message and
// creates no row.
func (h *AuthHandler) Signup(c *gin.Context) {
	var form SignupForm
	if err := c.ShouldBind(&form); err != nil {
		h.sessions.AddFlash(c, "danger", "Please fill out all fields correctly.")
		render(c, h.sessions, http.StatusBadRequest, "signup.html", gin.H{"Form": form})
		return
	}

	user, err := h.auth.Signup(c.Request.Context(), form.Username, form.Password, form.Email, form.ImageURL)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUsernameTaken):
			h.sessions.AddFlash(c, "danger", "Username already taken")
		case errors.Is(err, service.ErrEmailTaken):
			h.sessions.AddFlash(c, "danger", "Email already taken")
		default:
			logrus.WithError(err).Error("Signup failed")
			h.sessions.AddFlash(c, "danger", "Something went wrong. Please try again.")
		}
		render(c, h.sessions, http.StatusOK, "signup.html", gin.H{"Form": form})
		return
	}

	if err := h.sessions.Login(c, user); err != nil {
		logrus.WithError(err).Error("Failed to create session")
	}
	c.Redirect(http.StatusFound, "/")
}

func (h *AuthHandler) LoginPage(c *gin.Context) {
	render(c, h.sessions, http.StatusOK, "login.html", nil)
}

// Login authenticates and starts a session. Wrong username and wrong
// password produce the same message.
func (h *AuthHandler) Login(c *gin.Context) {
	var form LoginForm
	if err := c.ShouldBind(&form); err != nil {
		h.sessions.AddFlash(c, "danger", "Please enter a username and password.")
		render(c, h.sessions, http.StatusBadRequest, "login.html", nil)
		return
	}

	user, err := h.auth.Authenticate(c.Request.Context(), form.Username, form.Password)
	if err != nil {
		h.sessions.AddFlash(c, "danger", "Invalid credentials.")
		render(c, h.sessions, http.StatusOK, "login.html", nil)
		return
	}

	if err := h.sessions.Login(c, user); err != nil {
		logrus.WithError(err).Error("Failed to create session")
	}
	h.sessions.AddFlash(c, "success", fmt.Sprintf("Hello, %s!", user.Username))
	c.Redirect(http.StatusFound, "/")
}

// Logout clears the session and returns to the login page.
func (h *AuthHandler) Logout(c *gin.Context) {
	if err := h.sessions.Logout(c); err != nil {
		logrus.WithError(err).Warn("Failed to clear session")
	}
	h.sessions.AddFlash(c, "success", "Successfully logged out.")
	c.Redirect(http.StatusFound, "/login")
}
