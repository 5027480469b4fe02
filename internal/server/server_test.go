package server_test

import (
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/warblerhq/warbler/config"
	"github.com/warblerhq/warbler/internal/server"
	"github.com/warblerhq/warbler/internal/testhelpers"
)

func newTestServer(t *testing.T) (*httptest.Server, *gorm.DB) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := testhelpers.SetupTestDatabase(t)
	cfg := &config.Config{
		SessionSecret: "test-secret",
		TemplateGlob:  "../../templates/*.html",
	}

	ts := httptest.NewServer(server.NewRouter(db, cfg))
	t.Cleanup(ts.Close)
	return ts, db
}

// newClient returns a client with a cookie jar that does not follow
// redirects, so tests can assert Location headers.
func newClient(t *testing.T) *http.Client {
	t.Helper()
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &http.Client{
		Jar: jar,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
}

func postForm(t *testing.T, client *http.Client, target string, form url.Values) *http.Response {
	t.Helper()
	resp, err := client.Post(target, "application/x-www-form-urlencoded", strings.NewReader(form.Encode()))
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func get(t *testing.T, client *http.Client, target string) *http.Response {
	t.Helper()
	resp, err := client.Get(target)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func body(t *testing.T, resp *http.Response) string {
	t.Helper()
	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(b)
}

func signup(t *testing.T, client *http.Client, base, username string) {
	t.Helper()
	resp := postForm(t, client, base+"/signup", url.Values{
		"username": {username},
		"email":    {username + "@example.com"},
		"password": {"password123"},
	})
	require.Equal(t, http.StatusFound, resp.StatusCode)
	require.Equal(t, "/", resp.Header.Get("Location"))
}

func TestHealthEndpoint(t *testing.T) {
	ts, _ := newTestServer(t)
	client := newClient(t)

	resp := get(t, client, ts.URL+"/health")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body(t, resp), "healthy")
}

func TestSignupLogsUserIn(t *testing.T) {
	ts, _ := newTestServer(t)
	client := newClient(t)

	signup(t, client, ts.URL, "alice")

	resp := get(t, client, ts.URL+"/")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body(t, resp), "alice")
}

func TestSignupDuplicateUsername(t *testing.T) {
	ts, _ := newTestServer(t)
	client := newClient(t)

	signup(t, client, ts.URL, "alice")

	other := newClient(t)
	resp := postForm(t, other, ts.URL+"/signup", url.Values{
		"username": {"alice"},
		"email":    {"second@example.com"},
		"password": {"password123"},
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body(t, resp), "Username already taken")
}

func TestLoginWrongPassword(t *testing.T) {
	ts, _ := newTestServer(t)

	signup(t, newClient(t), ts.URL, "alice")

	client := newClient(t)
	resp := postForm(t, client, ts.URL+"/login", url.Values{
		"username": {"alice"},
		"password": {"wrongpassword"},
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body(t, resp), "Invalid credentials.")
}

func TestLoginAndLogout(t *testing.T) {
	ts, _ := newTestServer(t)

	signup(t, newClient(t), ts.URL, "alice")

	client := newClient(t)
	resp := postForm(t, client, ts.URL+"/login", url.Values{
		"username": {"alice"},
		"password": {"password123"},
	})
	require.Equal(t, http.StatusFound, resp.StatusCode)
	require.Equal(t, "/", resp.Header.Get("Location"))

	resp = get(t, client, ts.URL+"/")
	assert.Contains(t, body(t, resp), "Hello, alice!")

	resp = get(t, client, ts.URL+"/logout")
	require.Equal(t, http.StatusFound, resp.StatusCode)
	require.Equal(t, "/login", resp.Header.Get("Location"))

	resp = get(t, client, ts.URL+"/login")
	assert.Contains(t, body(t, resp), "Successfully logged out.")

	// The session is gone: protected pages bounce home.
	resp = get(t, client, ts.URL+"/messages/new")
	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/", resp.Header.Get("Location"))
}

func TestRequireLoginRedirectsAnonymous(t *testing.T) {
	ts, _ := newTestServer(t)
	client := newClient(t)

	resp := postForm(t, client, ts.URL+"/messages/new", url.Values{"text": {"hi"}})
	require.Equal(t, http.StatusFound, resp.StatusCode)
	require.Equal(t, "/", resp.Header.Get("Location"))

	resp = get(t, client, ts.URL+"/")
	assert.Contains(t, body(t, resp), "Access unauthorized.")
}

func TestMessageLifecycle(t *testing.T) {
	ts, _ := newTestServer(t)
	client := newClient(t)

	signup(t, client, ts.URL, "alice")

	resp := postForm(t, client, ts.URL+"/messages/new", url.Values{"text": {"my first warble"}})
	require.Equal(t, http.StatusFound, resp.StatusCode)
	location := resp.Header.Get("Location")
	require.True(t, strings.HasPrefix(location, "/users/"))

	resp = get(t, client, ts.URL+location)
	assert.Contains(t, body(t, resp), "my first warble")
}

func TestMessageTooLongRejected(t *testing.T) {
	ts, _ := newTestServer(t)
	client := newClient(t)

	signup(t, client, ts.URL, "alice")

	resp := postForm(t, client, ts.URL+"/messages/new", url.Values{
		"text": {strings.Repeat("a", 141)},
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, body(t, resp), "Message must be between 1 and 140 characters.")
}

func TestMessageDeleteByNonOwner(t *testing.T) {
	ts, _ := newTestServer(t)

	alice := newClient(t)
	signup(t, alice, ts.URL, "alice")
	resp := postForm(t, alice, ts.URL+"/messages/new", url.Values{"text": {"hands off"}})
	require.Equal(t, http.StatusFound, resp.StatusCode)

	bob := newClient(t)
	signup(t, bob, ts.URL, "bob")
	resp = postForm(t, bob, ts.URL+"/messages/1/delete", url.Values{})
	require.Equal(t, http.StatusFound, resp.StatusCode)
	require.Equal(t, "/", resp.Header.Get("Location"))

	resp = get(t, bob, ts.URL+"/")
	assert.Contains(t, body(t, resp), "Access unauthorized.")

	// The message survives.
	resp = get(t, newClient(t), ts.URL+"/messages/1")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body(t, resp), "hands off")
}

func TestFollowAndHomeFeed(t *testing.T) {
	ts, _ := newTestServer(t)

	bob := newClient(t)
	signup(t, bob, ts.URL, "bob")
	resp := postForm(t, bob, ts.URL+"/messages/new", url.Values{"text": {"bob says hi"}})
	require.Equal(t, http.StatusFound, resp.StatusCode)

	alice := newClient(t)
	signup(t, alice, ts.URL, "alice")

	// Feed is empty before following anyone.
	resp = get(t, alice, ts.URL+"/")
	assert.NotContains(t, body(t, resp), "bob says hi")

	resp = postForm(t, alice, ts.URL+"/users/follow/1", url.Values{})
	require.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/users/2/following", resp.Header.Get("Location"))

	resp = get(t, alice, ts.URL+"/")
	assert.Contains(t, body(t, resp), "bob says hi")

	resp = postForm(t, alice, ts.URL+"/users/stop-following/1", url.Values{})
	require.Equal(t, http.StatusFound, resp.StatusCode)

	resp = get(t, alice, ts.URL+"/")
	assert.NotContains(t, body(t, resp), "bob says hi")
}

func TestFollowMissingUser(t *testing.T) {
	ts, _ := newTestServer(t)
	client := newClient(t)

	signup(t, client, ts.URL, "alice")

	resp := postForm(t, client, ts.URL+"/users/follow/999", url.Values{})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestLikeToggleThroughForm(t *testing.T) {
	ts, _ := newTestServer(t)

	bob := newClient(t)
	signup(t, bob, ts.URL, "bob")
	resp := postForm(t, bob, ts.URL+"/messages/new", url.Values{"text": {"like me"}})
	require.Equal(t, http.StatusFound, resp.StatusCode)

	alice := newClient(t)
	signup(t, alice, ts.URL, "alice")
	resp = postForm(t, alice, ts.URL+"/users/follow/1", url.Values{})
	require.Equal(t, http.StatusFound, resp.StatusCode)

	resp = postForm(t, alice, ts.URL+"/users/add_like/1", url.Values{})
	require.Equal(t, http.StatusFound, resp.StatusCode)
	require.Equal(t, "/", resp.Header.Get("Location"))

	resp = get(t, alice, ts.URL+"/users/2/likes")
	assert.Contains(t, body(t, resp), "like me")

	// Toggling again removes the like.
	resp = postForm(t, alice, ts.URL+"/users/add_like/1", url.Values{})
	require.Equal(t, http.StatusFound, resp.StatusCode)

	resp = get(t, alice, ts.URL+"/users/2/likes")
	assert.NotContains(t, body(t, resp), "like me")
}

func TestEditProfileWrongPassword(t *testing.T) {
	ts, _ := newTestServer(t)
	client := newClient(t)

	signup(t, client, ts.URL, "alice")

	resp := postForm(t, client, ts.URL+"/users/profile", url.Values{
		"username": {"newname"},
		"email":    {"alice@example.com"},
		"password": {"wrongpassword"},
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body(t, resp), "Password Incorrect. Try again!")

	// Nothing changed.
	resp = get(t, client, ts.URL+"/users/1")
	assert.Contains(t, body(t, resp), "alice")
}

func TestEditProfile(t *testing.T) {
	ts, _ := newTestServer(t)
	client := newClient(t)

	signup(t, client, ts.URL, "alice")

	resp := postForm(t, client, ts.URL+"/users/profile", url.Values{
		"username": {"alice2"},
		"email":    {"alice2@example.com"},
		"bio":      {"new bio"},
		"password": {"password123"},
	})
	require.Equal(t, http.StatusFound, resp.StatusCode)
	require.Equal(t, "/users/1", resp.Header.Get("Location"))

	resp = get(t, client, ts.URL+"/users/1")
	text := body(t, resp)
	assert.Contains(t, text, "Successfully updated!")
	assert.Contains(t, text, "alice2")
	assert.Contains(t, text, "new bio")
}

func TestAccountDelete(t *testing.T) {
	ts, _ := newTestServer(t)
	client := newClient(t)

	signup(t, client, ts.URL, "alice")

	resp := postForm(t, client, ts.URL+"/users/delete", url.Values{})
	require.Equal(t, http.StatusFound, resp.StatusCode)
	require.Equal(t, "/signup", resp.Header.Get("Location"))

	resp = get(t, client, ts.URL+"/users/1")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestUserSearch(t *testing.T) {
	ts, _ := newTestServer(t)

	signup(t, newClient(t), ts.URL, "alice")
	signup(t, newClient(t), ts.URL, "bob")

	client := newClient(t)
	resp := get(t, client, ts.URL+"/users?q=ali")
	text := body(t, resp)
	assert.Contains(t, text, "alice")
	assert.NotContains(t, text, "bob")
}

func TestUnknownRouteRendersNotFound(t *testing.T) {
	ts, _ := newTestServer(t)
	client := newClient(t)

	resp := get(t, client, ts.URL+"/no/such/page")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestResponseHeaders(t *testing.T) {
	ts, _ := newTestServer(t)
	client := newClient(t)

	resp := get(t, client, ts.URL+"/")
	assert.Equal(t, "no-cache, no-store, must-revalidate", resp.Header.Get("Cache-Control"))
	assert.NotEmpty(t, resp.Header.Get("X-Request-ID"))
}

func TestMetricsEndpoint(t *testing.T) {
	ts, _ := newTestServer(t)
	client := newClient(t)

	get(t, client, ts.URL+"/health")

	resp := get(t, client, ts.URL+"/metrics")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body(t, resp), "warbler_")
}
