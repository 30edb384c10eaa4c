package controllers

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	"yptstats/backend/config"
	"yptstats/backend/handshake"
	"yptstats/backend/middleware"
	"yptstats/backend/utils"
)

type HandshakeController struct {
	Handshake *handshake.Service
	Cfg       *config.Config
	Logger    logrus.FieldLogger
}

func NewHandshakeController(hs *handshake.Service, cfg *config.Config, logger logrus.FieldLogger) *HandshakeController {
	return &HandshakeController{Handshake: hs, Cfg: cfg, Logger: logger}
}

// CreateHandshake godoc
// @Summary Create a one-time group
// @Description Creates a two-seat group the user has to join to log in
// @Tags handshake
// @Produce json
// @Success 201 {object} utils.SuccessResponse
// @Failure 502 {object} utils.ErrorResponse
// @Router /create-handshake [post]
func (hc *HandshakeController) CreateHandshake(c *fiber.Ctx) error {
	group, err := hc.Handshake.CreateOneTimeGroup(c.UserContext())
	if err != nil {
		return respondError(c, hc.Logger, err)
	}

	token, err := utils.GenerateGroupToken(group.ID, hc.Cfg)
	if err != nil {
		return respondError(c, hc.Logger, err)
	}
	hc.setCookie(c, middleware.GroupCookie, token, 15*time.Minute)

	return utils.Created(c, fiber.Map{
		"group": group,
		"token": token,
	})
}

// AwaitMember godoc
// @Summary Wait for the user to join the one-time group
// @Description Blocks until a second member joins, deletes the group and returns the member
// @Tags handshake
// @Produce json
// @Param token query string false "Group token"
// @Success 200 {object} utils.SuccessResponse
// @Failure 400 {object} utils.ErrorResponse
// @Failure 409 {object} utils.ErrorResponse
// @Failure 504 {object} utils.ErrorResponse
// @Router /await-member [get]
func (hc *HandshakeController) AwaitMember(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), hc.Cfg.PollTimeout)
	defer cancel()

	user, err := hc.Handshake.WaitForMember(ctx, middleware.GroupID(c))
	if err != nil {
		return respondError(c, hc.Logger, err)
	}

	token, err := utils.GenerateUserToken(user, hc.Cfg)
	if err != nil {
		return respondError(c, hc.Logger, err)
	}
	c.ClearCookie(middleware.GroupCookie)
	hc.setCookie(c, middleware.UserCookie, token, 30*24*time.Hour)

	return utils.Success(c, fiber.StatusOK, fiber.Map{
		"user":  user,
		"token": token,
	})
}

// Me returns the user carried by the session token.
func (hc *HandshakeController) Me(c *fiber.Ctx) error {
	return utils.Success(c, fiber.StatusOK, fiber.Map{
		"user": middleware.User(c),
	})
}

func (hc *HandshakeController) setCookie(c *fiber.Ctx, name, value string, maxAge time.Duration) {
	c.Cookie(&fiber.Cookie{
		Name:     name,
		Value:    value,
		MaxAge:   int(maxAge.Seconds()),
		HTTPOnly: true,
		Secure:   !hc.Cfg.DevEnvironment,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}
