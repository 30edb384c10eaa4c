package middleware

import (
	"time"

	"github.com/DataDog/datadog-go/statsd"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"yptstats/backend/utils"
)

// RequestID assigns every request an id, reusing a sane incoming X-Request-Id.
func RequestID() fiber.Handler {
	return func(c *fiber.Ctx) error {
		rid := c.Get(fiber.HeaderXRequestID)
		if rid == "" || len(rid) > 64 {
			rid = uuid.NewString()
		}
		c.Set(fiber.HeaderXRequestID, rid)
		c.Locals(utils.RequestIDKey, rid)
		return c.Next()
	}
}

// LoggingMiddleware logs every request and reports its duration to statsd
// when a client is configured.
func LoggingMiddleware(logger logrus.FieldLogger, s *statsd.Client) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		// Передаем управление следующему обработчику
		err := c.Next()

		status := c.Response().StatusCode()
		if err != nil {
			if fe, ok := err.(*fiber.Error); ok {
				status = fe.Code
			} else {
				status = fiber.StatusInternalServerError
			}
		}
		duration := time.Since(start)

		entry := logger.WithFields(logrus.Fields{
			"request_id": utils.RequestID(c),
			"ip":         c.IP(),
			"method":     c.Method(),
			"path":       c.Path(),
			"status":     status,
			"latency":    duration.String(),
		})
		switch {
		case err != nil:
			entry.WithError(err).Error("request failed")
		case status >= fiber.StatusInternalServerError:
			entry.Warn("request")
		default:
			entry.Info("request")
		}

		if s != nil {
			route := c.Route().Path
			s.Distribution("yptstats.request_duration", float64(duration.Microseconds())/1_000, []string{"route:" + route}, 1.0)
			s.Incr("yptstats.request", []string{"route:" + route}, 1.0)
		}

		return err
	}
}
