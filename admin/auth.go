package admin

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"

	"propertysite/models"
	"propertysite/store"
)

func (a *AdminModule) requireAuth(c *gin.Context) {
	session := sessions.Default(c)
	userID, ok := session.Get("user_id").(int)

	if !ok || userID == 0 {
		c.Redirect(http.StatusFound, "/login")
		c.Abort()
		return
	}

	// Access ends as soon as an address leaves ADMIN_EMAILS.
	email, _ := session.Get("email").(string)
	if !a.cfg.IsAdminEmail(email) {
		session.Clear()
		session.Save()
		c.Redirect(http.StatusFound, "/login")
		c.Abort()
		return
	}

	ctx := store.WithSession(c.Request.Context(), store.Session{UserID: userID, Email: email})
	c.Request = c.Request.WithContext(ctx)

	c.Set("user_id", userID)
	c.Next()
}

func (a *AdminModule) adminRoot(c *gin.Context) {
	session := sessions.Default(c)
	if session.Get("user_id") != nil {
		c.Redirect(http.StatusFound, "/admin/articles")
		return
	}

	c.Redirect(http.StatusFound, "/login")
}

func (a *AdminModule) loginPage(c *gin.Context) {
	session := sessions.Default(c)
	if session.Get("user_id") != nil {
		c.Redirect(http.StatusFound, "/admin/articles")
		return
	}

	c.JSON(http.StatusOK, gin.H{"fields": []string{"email", "password"}})
}

func (a *AdminModule) loginPost(c *gin.Context) {
	email := strings.TrimSpace(c.PostForm("email"))
	password := c.PostForm("password")

	var user models.User
	err := a.client.From(store.Users).Eq("email", email).Single(c.Request.Context(), &user)
	if err != nil && !errors.Is(err, store.ErrNoRows) {
		a.log.Error().Err(err).Msg("login lookup failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Sign in is unavailable, please try again"})
		return
	}

	if err != nil || !checkPasswordHash(password, user.PasswordHash) {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error": "Incorrect email or password",
			"email": email,
		})
		return
	}

	if !a.cfg.IsAdminEmail(user.Email) {
		a.log.Warn().Str("email", user.Email).Msg("sign in refused, not on admin list")
		c.JSON(http.StatusForbidden, gin.H{"error": "This account cannot access the editor"})
		return
	}

	session := sessions.Default(c)
	session.Set("user_id", user.ID)
	session.Set("email", user.Email)
	if err := session.Save(); err != nil {
		a.log.Error().Err(err).Msg("saving session")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Sign in is unavailable, please try again"})
		return
	}

	c.Redirect(http.StatusFound, "/admin/articles")
}

func (a *AdminModule) logout(c *gin.Context) {
	session := sessions.Default(c)
	session.Clear()
	session.Save()

	c.Redirect(http.StatusFound, "/login")
}

// EnsureUser creates an editor account for email unless one exists.
func EnsureUser(ctx context.Context, client *store.Client, email, password string) (bool, error) {
	var existing models.User
	err := client.From(store.Users).Eq("email", email).Single(ctx, &existing)
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, store.ErrNoRows) {
		return false, err
	}

	hash, err := hashPassword(password)
	if err != nil {
		return false, err
	}
	user := &models.User{Email: email, PasswordHash: hash}
	if err := client.From(store.Users).Insert(ctx, user); err != nil {
		return false, err
	}
	return true, nil
}

func hashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(bytes), err
}

func checkPasswordHash(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}
