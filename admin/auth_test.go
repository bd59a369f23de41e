package admin

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"propertysite/models"
	"propertysite/store"
)

func TestLogin_Success(t *testing.T) {
	env := setupTestRouter(t)

	w := env.login(t, testEmail, testPassword)

	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/admin/articles", w.Header().Get("Location"))
	assert.NotEmpty(t, w.Result().Cookies())
}

func TestLogin_WrongPassword(t *testing.T) {
	env := setupTestRouter(t)

	w := env.login(t, testEmail, "wrong")

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, testEmail, decode(t, w)["email"])
}

func TestLogin_UnknownEmail(t *testing.T) {
	env := setupTestRouter(t)

	w := env.login(t, "nobody@example.com", testPassword)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestLogin_NotOnAdminList(t *testing.T) {
	env := setupTestRouter(t)
	env.cfg.AdminEmails = []string{"boss@example.com"}

	w := env.login(t, testEmail, testPassword)

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestLogin_AdminListIsCaseInsensitive(t *testing.T) {
	env := setupTestRouter(t)
	env.cfg.AdminEmails = []string{"Editor@Example.com"}

	w := env.login(t, testEmail, testPassword)

	assert.Equal(t, http.StatusFound, w.Code)
}

func TestSession_EndsWhenRemovedFromAdminList(t *testing.T) {
	env := setupTestRouter(t)
	env.cfg.AdminEmails = []string{testEmail}
	cookies := env.signedIn(t)

	w := env.do("GET", "/admin/articles", nil, cookies)
	require.Equal(t, http.StatusOK, w.Code)

	env.cfg.AdminEmails = []string{"boss@example.com"}

	w = env.do("GET", "/admin/articles", nil, cookies)
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/login", w.Header().Get("Location"))

	w = env.do("POST", "/admin/cache/clear", nil, cookies)
	assert.Equal(t, http.StatusFound, w.Code)
}

func TestLoginPage_RedirectsWhenSignedIn(t *testing.T) {
	env := setupTestRouter(t)
	cookies := env.signedIn(t)

	w := env.do("GET", "/login", nil, cookies)
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/admin/articles", w.Header().Get("Location"))

	w = env.do("GET", "/login", nil, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestLogout(t *testing.T) {
	env := setupTestRouter(t)
	cookies := env.signedIn(t)

	w := env.do("GET", "/admin/logout", nil, cookies)
	require.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/login", w.Header().Get("Location"))

	w = env.do("GET", "/admin/articles", nil, w.Result().Cookies())
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/login", w.Header().Get("Location"))
}

func TestEnsureUser_Idempotent(t *testing.T) {
	_, client := setupRepo(t)

	created, err := EnsureUser(context.Background(), client, "owner@example.com", "pw")
	require.NoError(t, err)
	assert.True(t, created)

	created, err = EnsureUser(context.Background(), client, "owner@example.com", "other")
	require.NoError(t, err)
	assert.False(t, created)

	var user models.User
	require.NoError(t, client.From(store.Users).Eq("email", "owner@example.com").Single(context.Background(), &user))
	assert.True(t, checkPasswordHash("pw", user.PasswordHash))
}

func TestHashPassword(t *testing.T) {
	hash, err := hashPassword("password123")
	require.NoError(t, err)

	assert.NotEqual(t, "password123", hash)
	assert.True(t, checkPasswordHash("password123", hash))
	assert.False(t, checkPasswordHash("wrongpassword", hash))
}
