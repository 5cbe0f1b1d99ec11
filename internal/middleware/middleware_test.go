package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ahmetcoskunkizilkaya/oneonone-backend/internal/testutil"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sign(t *testing.T, secret string, sub uuid.UUID, username string) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":      sub.String(),
		"username": username,
		"exp":      time.Now().Add(time.Minute).Unix(),
	})
	s, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return s
}

func get(t *testing.T, app *fiber.App, path string, headers map[string]string) int {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp.StatusCode
}

func TestJWTProtected(t *testing.T) {
	cfg := testutil.Config()
	id := uuid.New()

	app := fiber.New()
	app.Get("/me", JWTProtected(cfg), func(c *fiber.Ctx) error {
		uid, err := UserID(c)
		if err != nil {
			return c.SendStatus(fiber.StatusTeapot)
		}
		return c.SendString(uid.String() + " " + Username(c))
	})

	assert.Equal(t, http.StatusUnauthorized, get(t, app, "/me", nil))
	assert.Equal(t, http.StatusUnauthorized, get(t, app, "/me", map[string]string{
		"Authorization": "Bearer " + sign(t, "other-secret", id, "alice"),
	}))

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+sign(t, cfg.JWTSecret, id, "alice"))
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestAdminRequired(t *testing.T) {
	db := testutil.NewDB(t)
	cfg := testutil.Config()
	plain := testutil.CreateUser(t, db, "bob")
	promoted := testutil.CreateUser(t, db, "carol")
	require.NoError(t, db.Model(&promoted).Update("role", "admin").Error)

	app := fiber.New()
	app.Get("/admin", JWTProtected(cfg), AdminRequired(db, cfg), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})

	bearer := func(id uuid.UUID, name string) map[string]string {
		return map[string]string{"Authorization": "Bearer " + sign(t, cfg.JWTSecret, id, name)}
	}

	assert.Equal(t, http.StatusForbidden, get(t, app, "/admin", bearer(plain.ID, "bob")))
	assert.Equal(t, http.StatusOK, get(t, app, "/admin", bearer(uuid.New(), "root")))
	assert.Equal(t, http.StatusOK, get(t, app, "/admin", bearer(promoted.ID, "carol")))

	withToken := bearer(plain.ID, "bob")
	withToken["X-Admin-Token"] = cfg.AdminToken
	assert.Equal(t, http.StatusOK, get(t, app, "/admin", withToken))
}

func TestParseCSV(t *testing.T) {
	assert.Nil(t, parseCSV(""))
	assert.Equal(t, []string{"a", "b"}, parseCSV(" a, ,b "))
	assert.False(t, contains([]string{"a"}, ""))
}

func TestSecurityHeaders(t *testing.T) {
	app := fiber.New()
	app.Use(SecurityHeaders())
	app.Get("/", func(c *fiber.Ctx) error { return c.SendString("ok") })

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, "nosniff", resp.Header.Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", resp.Header.Get("X-Frame-Options"))
}
