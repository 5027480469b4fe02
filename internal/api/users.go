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

// EditProfileForm are the fields of the profile edit page. The password is
// re-entered to authorize the change.
type EditProfileForm struct {
	Username       string `form:"username" binding:"required,max=50"`
	Email          string `form:"email" binding:"required,email"`
	ImageURL       string `form:"image_url"`
	HeaderImageURL string `form:"header_image_url"`
	Bio            string `form:"bio"`
	Location       string `form:"location"`
	Password       string `form:"password" binding:"required"`
}

// UserHandler serves profiles, the social graph, likes, and account deletion.
type UserHandler struct {
	users    *service.UserService
	messages *service.MessageService
	likes    *service.LikeService
	auth     *service.AuthService
	images   *service.ImageService
	sessions *middleware.SessionManager
	metrics  *middleware.Metrics
}

func NewUserHandler(
	users *service.UserService,
	messages *service.MessageService,
	likes *service.LikeService,
	auth *service.AuthService,
	images *service.ImageService,
	sessions *middleware.SessionManager,
	metrics *middleware.Metrics,
) *UserHandler {
	return &UserHandler{
		users:    users,
		messages: messages,
		likes:    likes,
		auth:     auth,
		images:   images,
		sessions: sessions,
		metrics:  metrics,
	}
}

func (h *UserHandler) RegisterRoutes(r *gin.Engine) {
	loggedIn := h.sessions.RequireLogin()

	r.GET("/users", h.Index)
	r.GET("/users/:id", h.Show)
	r.GET("/users/:id/following", loggedIn, h.Following)
	r.GET("/users/:id/followers", loggedIn, h.Followers)
	r.GET("/users/:id/likes", h.Likes)
	r.POST("/users/follow/:id", loggedIn, h.Follow)
	r.POST("/users/stop-following/:id", loggedIn, h.StopFollowing)
	r.GET("/users/profile", loggedIn, h.EditProfilePage)
	r.POST("/users/profile", loggedIn, h.EditProfile)
	if h.images != nil {
		r.POST("/users/profile/image", loggedIn, h.UploadProfileImage)
	}
	r.POST("/users/delete", loggedIn, h.Delete)
	r.POST("/users/add_like/:id", loggedIn, h.AddLike)
}

// Index lists users, optionally filtered by a username substring via ?q=.
func (h *UserHandler) Index(c *gin.Context) {
	users, err := h.users.List(c.Request.Context(), c.Query("q"))
	if err != nil {
		logrus.WithError(err).Error("Failed to list users")
		render(c, h.sessions, http.StatusInternalServerError, "users_index.html", nil)
		return
	}
	render(c, h.sessions, http.StatusOK, "users_index.html", gin.H{
		"Users": users,
		"Query": c.Query("q"),
	})
}

// Show renders a profile with up to the 100 most recent messages and, for a
// logged-in viewer, the viewer's like count.
func (h *UserHandler) Show(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		renderNotFound(c, h.sessions)
		return
	}

	user, err := h.users.Get(c.Request.Context(), id)
	if err != nil {
		renderNotFound(c, h.sessions)
		return
	}

	msgs, err := h.messages.RecentByUser(c.Request.Context(), id, service.FeedLimit)
	if err != nil {
		logrus.WithError(err).Error("Failed to load messages")
	}

	var likeCount int64
	var isFollowing bool
	if viewer, ok := middleware.UserFrom(c); ok {
		likeCount, _ = h.likes.CountByUser(c.Request.Context(), viewer.ID)
		isFollowing, _ = h.users.IsFollowing(c.Request.Context(), viewer.ID, id)
	}

	render(c, h.sessions, http.StatusOK, "users_show.html", gin.H{
		"User":        user,
		"Messages":    msgs,
		"LikeCount":   likeCount,
		"IsFollowing": isFollowing,
	})
}

// Following shows the users this profile follows.
func (h *UserHandler) Following(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		renderNotFound(c, h.sessions)
		return
	}
	user, err := h.users.Get(c.Request.Context(), id)
	if err != nil {
		renderNotFound(c, h.sessions)
		return
	}
	following, err := h.users.Following(c.Request.Context(), id)
	if err != nil {
		logrus.WithError(err).Error("Failed to load following list")
	}
	render(c, h.sessions, http.StatusOK, "following.html", gin.H{
		"User":  user,
		"Users": following,
	})
}

// Followers shows the users following this profile.
func (h *UserHandler) Followers(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		renderNotFound(c, h.sessions)
		return
	}
	user, err := h.users.Get(c.Request.Context(), id)
	if err != nil {
		renderNotFound(c, h.sessions)
		return
	}
	followers, err := h.users.Followers(c.Request.Context(), id)
	if err != nil {
		logrus.WithError(err).Error("Failed to load followers list")
	}
	render(c, h.sessions, http.StatusOK, "followers.html", gin.H{
		"User":  user,
		"Users": followers,
	})
}

// Follow creates a follow edge from the current user. A duplicate attempt,
// racing or not, becomes a flash message rather than a fault.
func (h *UserHandler) Follow(c *gin.Context) {
	viewer, _ := middleware.UserFrom(c)
	id, ok := paramID(c)
	if !ok {
		renderNotFound(c, h.sessions)
		return
	}

	err := h.users.Follow(c.Request.Context(), viewer.ID, id)
	switch {
	case err == nil:
		h.metrics.FollowRequests.Inc()
	case errors.Is(err, service.ErrNotFound):
		renderNotFound(c, h.sessions)
		return
	case errors.Is(err, service.ErrDuplicateFollow):
		h.sessions.AddFlash(c, "warning", "You are already following this user.")
	default:
		logrus.WithError(err).Error("Failed to create follow")
		h.sessions.AddFlash(c, "danger", "Something went wrong.")
	}

	c.Redirect(http.StatusFound, fmt.Sprintf("/users/%d/following", viewer.ID))
}

// StopFollowing removes the edge; removing a non-edge is a no-op.
func (h *UserHandler) StopFollowing(c *gin.Context) {
	viewer, _ := middleware.UserFrom(c)
	id, ok := paramID(c)
	if !ok {
		renderNotFound(c, h.sessions)
		return
	}

	if err := h.users.Unfollow(c.Request.Context(), viewer.ID, id); err != nil {
		logrus.WithError(err).Error("Failed to remove follow")
		h.sessions.AddFlash(c, "danger", "Something went wrong.")
	} else {
		h.metrics.UnfollowRequests.Inc()
	}

	c.Redirect(http.StatusFound, fmt.Sprintf("/users/%d/following", viewer.ID))
}

func (h *UserHandler) EditProfilePage(c *gin.Context) {
	viewer, _ := middleware.UserFrom(c)
	render(c, h.sessions, http.StatusOK, "edit_profile.html", gin.H{"User": viewer})
}

// EditProfile updates the profile after re-verifying the password. A wrong
// password changes nothing.
func (h *UserHandler) EditProfile(c *gin.Context) {
	viewer, _ := middleware.UserFrom(c)

	var form EditProfileForm
	if err := c.ShouldBind(&form); err != nil {
		h.sessions.AddFlash(c, "danger", "Please fill out all fields correctly.")
		render(c, h.sessions, http.StatusBadRequest, "edit_profile.html", gin.H{"User": viewer})
		return
	}

	if _, err := h.auth.Authenticate(c.Request.Context(), viewer.Username, form.Password); err != nil {
		h.sessions.AddFlash(c, "danger", "Password Incorrect. Try again!")
		render(c, h.sessions, http.StatusOK, "edit_profile.html", gin.H{"User": viewer})
		return
	}

	updated, err := h.users.UpdateProfile(c.Request.Context(), viewer.ID, service.UpdateProfileParams{
		Username:       form.Username,
		Email:          form.Email,
		ImageURL:       form.ImageURL,
		HeaderImageURL: form.HeaderImageURL,
		Bio:            form.Bio,
		Location:       form.Location,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUsernameTaken):
			h.sessions.AddFlash(c, "danger", "Username already taken")
		case errors.Is(err, service.ErrEmailTaken):
			h.sessions.AddFlash(c, "danger", "Email already taken")
		default:
			logrus.WithError(err).Error("Failed to update profile")
			h.sessions.AddFlash(c, "danger", "Something went wrong.")
		}
		render(c, h.sessions, http.StatusOK, "edit_profile.html", gin.H{"User": viewer})
		return
	}

	h.sessions.AddFlash(c, "success", "Successfully updated!")
	c.Redirect(http.StatusFound, fmt.Sprintf("/users/%d", updated.ID))
}

// UploadProfileImage stores an uploaded image in S3 and points the profile
// at it. Registered only when S3 is configured.
func (h *UserHandler) UploadProfileImage(c *gin.Context) {
	viewer, _ := middleware.UserFrom(c)

	file, header, err := c.Request.FormFile("image")
	if err != nil {
		h.sessions.AddFlash(c, "danger", "Please choose an image to upload.")
		c.Redirect(http.StatusFound, "/users/profile")
		return
	}
	defer file.Close()

	url, err := h.images.UploadProfileImage(c.Request.Context(), file, header.Header.Get("Content-Type"))
	if err != nil {
		logrus.WithError(err).Error("Failed to upload profile image")
		h.sessions.AddFlash(c, "danger", "Image upload failed. Please try again.")
		c.Redirect(http.StatusFound, "/users/profile")
		return
	}

	if err := h.users.SetImageURL(c.Request.Context(), viewer.ID, url); err != nil {
		logrus.WithError(err).Error("Failed to store profile image URL")
	}

	h.sessions.AddFlash(c, "success", "Profile image updated!")
	c.Redirect(http.StatusFound, fmt.Sprintf("/users/%d", viewer.ID))
}

// Delete removes the account and everything it owns, ends the session, and
// returns to the signup page.
func (h *UserHandler) Delete(c *gin.Context) {
	viewer, _ := middleware.UserFrom(c)

	if err := h.sessions.Logout(c); err != nil {
		logrus.WithError(err).Warn("Failed to clear session")
	}

	if err := h.users.Delete(c.Request.Context(), viewer.ID); err != nil {
		logrus.WithError(err).Error("Failed to delete user")
	}

	c.Redirect(http.StatusFound, "/signup")
}

// AddLike toggles the like state for a message. Liking your own message is
// silently ignored.
func (h *UserHandler) AddLike(c *gin.Context) {
	viewer, _ := middleware.UserFrom(c)
	id, ok := paramID(c)
	if !ok {
		renderNotFound(c, h.sessions)
		return
	}

	_, err := h.likes.Toggle(c.Request.Context(), viewer.ID, id)
	switch {
	case err == nil:
		h.metrics.LikeToggles.Inc()
	case errors.Is(err, service.ErrSelfLike):
		// no-op
	case errors.Is(err, service.ErrNotFound):
		renderNotFound(c, h.sessions)
		return
	default:
		logrus.WithError(err).Error("Failed to toggle like")
		h.sessions.AddFlash(c, "danger", "Something went wrong.")
	}

	c.Redirect(http.StatusFound, "/")
}

// Likes lists the messages a user has liked.
func (h *UserHandler) Likes(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		renderNotFound(c, h.sessions)
		return
	}
	user, err := h.users.Get(c.Request.Context(), id)
	if err != nil {
		renderNotFound(c, h.sessions)
		return
	}
	liked, err := h.likes.ListLiked(c.Request.Context(), id)
	if err != nil {
		logrus.WithError(err).Error("Failed to load liked messages")
	}
	render(c, h.sessions, http.StatusOK, "likes.html", gin.H{
		"User":     user,
		"Messages": liked,
	})
}
