package controllers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	"yptstats/backend/handshake"
	"yptstats/backend/utils"
	"yptstats/backend/ypt"
)

// respondError maps core errors onto statuses. Upstream details stay in the
// log: they can contain request URLs with API keys.
func respondError(c *fiber.Ctx, logger logrus.FieldLogger, err error) error {
	var (
		validationErr *ypt.ValidationError
		upstreamErr   *ypt.UpstreamError
		protocolErr   *handshake.ProtocolError
	)

	status, code, message := fiber.StatusInternalServerError, utils.CodeInternal, "Internal server error"
	switch {
	case errors.Is(err, handshake.ErrTimeout):
		status, code, message = fiber.StatusGatewayTimeout, utils.CodeTimeout, "Nobody joined the group in time"
	case errors.As(err, &protocolErr):
		status, code, message = fiber.StatusConflict, utils.CodeProtocol, protocolErr.Error()
	case errors.As(err, &validationErr):
		status, code, message = fiber.StatusBadGateway, utils.CodeUnexpected, "The study service returned an unexpected response"
	case errors.As(err, &upstreamErr):
		status, code, message = fiber.StatusBadGateway, utils.CodeUpstream, "The study service could not be reached"
	}

	logger.WithFields(logrus.Fields{
		"request_id": utils.RequestID(c),
		"status":     status,
	}).WithError(err).Warn("request failed")
	return utils.Error(c, status, code, errors.New(message))
}
