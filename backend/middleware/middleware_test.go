package middleware

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"yptstats/backend/config"
	"yptstats/backend/models"
	"yptstats/backend/utils"
)

var testCfg = &config.Config{SigningKey: "testsecret"}

func TestRequestID(t *testing.T) {
	app := fiber.New()
	app.Use(RequestID())
	app.Get("/", func(c *fiber.Ctx) error {
		return c.SendString(utils.RequestID(c))
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(fiber.HeaderXRequestID, "abc-123")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	assert.Equal(t, "abc-123", string(body))
	assert.Equal(t, "abc-123", resp.Header.Get(fiber.HeaderXRequestID))

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(fiber.HeaderXRequestID, strings.Repeat("x", 100))
	resp, err = app.Test(req, -1)
	require.NoError(t, err)
	body, _ = io.ReadAll(resp.Body)
	assert.Len(t, string(body), 36)
}

func TestLoggingMiddleware(t *testing.T) {
	var buf bytes.Buffer
	logger := logrus.New()
	logger.SetOutput(&buf)
	logger.SetFormatter(&logrus.JSONFormatter{})

	app := fiber.New()
	app.Use(RequestID())
	app.Use(LoggingMiddleware(logger, nil))
	app.Get("/ok", func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusNoContent)
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/ok", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNoContent, resp.StatusCode)
	assert.Contains(t, buf.String(), `"path":"/ok"`)
	assert.Contains(t, buf.String(), `"status":204`)
}

func TestUserSessionSources(t *testing.T) {
	user := models.User{ID: 9, Name: "haziq21"}
	token, err := utils.GenerateUserToken(user, testCfg)
	require.NoError(t, err)

	app := fiber.New()
	app.Get("/", UserSession(testCfg), func(c *fiber.Ctx) error {
		return c.JSON(User(c))
	})

	requests := map[string]*http.Request{
		"query":  httptest.NewRequest(http.MethodGet, "/?token="+token, nil),
		"cookie": httptest.NewRequest(http.MethodGet, "/", nil),
		"header": httptest.NewRequest(http.MethodGet, "/", nil),
	}
	requests["cookie"].AddCookie(&http.Cookie{Name: UserCookie, Value: token})
	requests["header"].Header.Set(fiber.HeaderAuthorization, "Bearer "+token)

	for name, req := range requests {
		t.Run(name, func(t *testing.T) {
			resp, err := app.Test(req, -1)
			require.NoError(t, err)
			assert.Equal(t, http.StatusOK, resp.StatusCode)
			body, _ := io.ReadAll(resp.Body)
			assert.JSONEq(t, `{"id":9,"name":"haziq21"}`, string(body))
		})
	}
}

func TestGroupSession(t *testing.T) {
	token, err := utils.GenerateGroupToken(77, testCfg)
	require.NoError(t, err)

	app := fiber.New()
	app.Get("/", GroupSession(testCfg), func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"group": GroupID(c)})
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: GroupCookie, Value: token})
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	assert.JSONEq(t, `{"group":77}`, string(body))

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
