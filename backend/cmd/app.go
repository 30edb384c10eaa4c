package cmd

import (
	"fmt"
	"net/http"

	"github.com/DataDog/datadog-go/statsd"
	"github.com/sirupsen/logrus"

	"yptstats/backend/config"
	"yptstats/backend/handshake"
	"yptstats/backend/utils"
	"yptstats/backend/ypt"
)

// app holds the process-wide collaborators built once from the config.
type app struct {
	cfg       *config.Config
	logger    *logrus.Logger
	statsd    *statsd.Client
	client    *ypt.Client
	handshake *handshake.Service
}

func newApp() (*app, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("error loading config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	logger := utils.InitLogger(utils.LoggerConfig{
		Format: cfg.LogFormat,
		Level:  cfg.LogLevel,
		File:   cfg.LogFile,
	})

	var stats *statsd.Client
	if cfg.StatsdAddr != "" {
		stats, err = statsd.New(cfg.StatsdAddr)
		if err != nil {
			return nil, fmt.Errorf("failed to create statsd client: %w", err)
		}
	}

	client := ypt.NewClient(
		ypt.WithBaseURL(cfg.YPTBaseURL),
		ypt.WithLinksURL(cfg.FirebaseURL),
		ypt.WithToken(cfg.YPTToken),
		ypt.WithLinksAPIKey(cfg.FirebaseAPIKey),
		ypt.WithHTTPClient(&http.Client{Timeout: cfg.HTTPTimeout}),
		ypt.WithLogger(logger.WithField("component", "ypt")),
	)

	hs := handshake.NewService(client, cfg.BotID,
		handshake.WithPollInterval(cfg.PollInterval),
		handshake.WithNotice(cfg.GroupNotice),
		handshake.WithPublishInvite(cfg.PublishInvite),
		handshake.WithLogger(logger.WithField("component", "handshake")),
		handshake.WithStatsd(stats),
	)

	return &app{cfg: cfg, logger: logger, statsd: stats, client: client, handshake: hs}, nil
}

func (a *app) close() {
	if a.statsd != nil {
		_ = a.statsd.Close()
	}
}
