package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"

	"yptstats/backend/config"
	"yptstats/backend/models"
	"yptstats/backend/utils"
)

const (
	GroupCookie = "otg"
	UserCookie  = "user"

	groupIDKey = "group_id"
	userKey    = "user"
)

// GroupSession requires the token of a pending one-time group, taken from the
// "token" query parameter or the otg cookie.
func GroupSession(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := firstNonEmpty(c.Query("token"), c.Cookies(GroupCookie))
		if token == "" {
			return utils.BadRequest(c, "Missing group token")
		}

		groupID, err := utils.ParseGroupToken(token, cfg)
		if err != nil {
			return utils.Unauthorized(c, err.Error())
		}
		c.Locals(groupIDKey, groupID)
		return c.Next()
	}
}

// UserSession requires the token of an identified user, taken from the
// "token" query parameter, the user cookie or the Authorization header.
func UserSession(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		header := strings.TrimPrefix(c.Get(fiber.HeaderAuthorization), "Bearer ")
		token := firstNonEmpty(c.Query("token"), c.Cookies(UserCookie), header)
		if token == "" {
			return utils.Unauthorized(c, "Missing user token")
		}

		user, err := utils.ParseUserToken(token, cfg)
		if err != nil {
			return utils.Unauthorized(c, err.Error())
		}
		c.Locals(userKey, user)
		return c.Next()
	}
}

// AdminMiddleware guards maintenance routes. When ADMIN_KEY_HASH is set the
// X-Admin-Key header must match it.
func AdminMiddleware(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if cfg.AdminKeyHash == "" {
			return c.Next()
		}

		key := c.Get("X-Admin-Key")
		if key == "" {
			return utils.Unauthorized(c, "Missing admin key")
		}
		if err := bcrypt.CompareHashAndPassword([]byte(cfg.AdminKeyHash), []byte(key)); err != nil {
			return utils.Forbidden(c, "Forbidden - Admin access required")
		}
		return c.Next()
	}
}

func GroupID(c *fiber.Ctx) int64 {
	id, _ := c.Locals(groupIDKey).(int64)
	return id
}

func User(c *fiber.Ctx) models.User {
	user, _ := c.Locals(userKey).(models.User)
	return user
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
