package controllers

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	"yptstats/backend/config"
	"yptstats/backend/middleware"
	"yptstats/backend/models"
	"yptstats/backend/stats"
	"yptstats/backend/utils"
)

// The study service has no "everything" query; this range covers all history.
var (
	historyStart = time.Date(2000, time.January, 1, 0, 0, 0, 0, time.UTC)
	historyEnd   = time.Date(3000, time.January, 1, 0, 0, 0, 0, time.UTC)
)

type StudyLogSource interface {
	FetchStudyLog(ctx context.Context, userID int64, start, end time.Time) ([]models.StudyLogEntry, error)
}

type StatsController struct {
	Logs   StudyLogSource
	Cfg    *config.Config
	Logger logrus.FieldLogger
}

func NewStatsController(logs StudyLogSource, cfg *config.Config, logger logrus.FieldLogger) *StatsController {
	return &StatsController{Logs: logs, Cfg: cfg, Logger: logger}
}

// GetStats godoc
// @Summary Get study statistics
// @Description Fetches the user's whole study log and summarizes it
// @Tags stats
// @Produce json
// @Param token query string false "User token"
// @Success 200 {object} utils.SuccessResponse
// @Failure 401 {object} utils.ErrorResponse
// @Failure 502 {object} utils.ErrorResponse
// @Router /stats [post]
func (sc *StatsController) GetStats(c *fiber.Ctx) error {
	user := middleware.User(c)

	entries, err := sc.Logs.FetchStudyLog(c.UserContext(), user.ID, historyStart, historyEnd)
	if err != nil {
		return respondError(c, sc.Logger, err)
	}
	summary := stats.Compute(entries)

	return utils.Success(c, fiber.StatusOK, summary, fiber.Map{
		"user":       user,
		"days":       len(entries),
		"studyHours": summary.StudyHours(),
	})
}
