package controllers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	"yptstats/backend/handshake"
	"yptstats/backend/utils"
)

type GroupsController struct {
	Handshake *handshake.Service
	Logger    logrus.FieldLogger
}

func NewGroupsController(hs *handshake.Service, logger logrus.FieldLogger) *GroupsController {
	return &GroupsController{Handshake: hs, Logger: logger}
}

// DeleteAllGroups godoc
// @Summary Delete every group owned by the bot
// @Description Maintenance sweep for groups left behind by abandoned handshakes
// @Tags admin
// @Produce json
// @Success 200 {object} utils.SuccessResponse
// @Failure 403 {object} utils.ErrorResponse
// @Failure 502 {object} utils.ErrorResponse
// @Router /admin/groups [delete]
func (gc *GroupsController) DeleteAllGroups(c *fiber.Ctx) error {
	count, err := gc.Handshake.DeleteAllGroups(c.UserContext(), handshake.DeleteBackground)
	if err != nil {
		return respondError(c, gc.Logger, err)
	}
	return utils.Success(c, fiber.StatusOK, fiber.Map{"deleted": count})
}
