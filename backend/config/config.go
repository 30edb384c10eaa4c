package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/joho/godotenv"
)

type Config struct {
	YPTToken       string
	BotID          int64
	YPTBaseURL     string
	FirebaseAPIKey string
	FirebaseURL    string
	GroupNotice    string
	PublishInvite  bool
	PollInterval   time.Duration
	PollTimeout    time.Duration
	HTTPTimeout    time.Duration
	SigningKey     string
	DevEnvironment bool
	Maintenance    bool
	AdminKeyHash   string
	ServerPort     string
	StatsdAddr     string
	LogFormat      string
	LogLevel       string
	LogFile        string
}

func LoadConfig() (*Config, error) {
	err := godotenv.Load()
	if err != nil {
		log.Println("Error loading .env file, using environment variables")
	}

	cfg := &Config{
		YPTToken:       getEnv("YPT_JWT", ""),
		YPTBaseURL:     getEnv("YPT_BASE_URL", "https://pi.tgclab.com"),
		FirebaseAPIKey: getEnv("FIREBASE_WEB_API_KEY", ""),
		FirebaseURL:    getEnv("FIREBASE_LINKS_URL", "https://firebasedynamiclinks.googleapis.com"),
		GroupNotice:    getEnv("YPT_GROUP_NOTICE", "ypt-stats.deno.dev"),
		PublishInvite:  getEnvBool("YPT_PUBLISH_INVITE_LINK", false),
		PollInterval:   getEnvDuration("YPT_POLL_INTERVAL", 2*time.Second),
		PollTimeout:    getEnvDuration("YPT_POLL_TIMEOUT", 5*time.Minute),
		HTTPTimeout:    getEnvDuration("YPT_HTTP_TIMEOUT", 30*time.Second),
		SigningKey:     getEnv("SIGNING_KEY", ""),
		DevEnvironment: getEnv("ENVIRONMENT", "") == "DEV",
		Maintenance:    getEnvBool("ENABLE_MAINTENANCE", false),
		AdminKeyHash:   getEnv("ADMIN_KEY_HASH", ""),
		ServerPort:     getEnv("SERVER_PORT", "8080"),
		StatsdAddr:     getEnv("STATSD_ADDR", ""),
		LogFormat:      getEnv("LOG_FORMAT", "text"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		LogFile:        getEnv("LOG_FILE", ""),
	}

	if cfg.YPTToken != "" {
		cfg.BotID, err = BotIDFromToken(cfg.YPTToken)
		if err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

// Validate reports settings the server cannot run without.
func (c *Config) Validate() error {
	if c.YPTToken == "" {
		return errors.New("YPT_JWT is not set")
	}
	if c.BotID == 0 {
		return errors.New("YPT_JWT does not carry a user_id claim")
	}
	if c.SigningKey == "" {
		return errors.New("SIGNING_KEY is not set")
	}
	if c.PollInterval <= 0 {
		return fmt.Errorf("YPT_POLL_INTERVAL must be positive, got %s", c.PollInterval)
	}
	return nil
}

// MaintenanceEnabled reports whether the group sweep endpoint is exposed.
func (c *Config) MaintenanceEnabled() bool {
	return c.DevEnvironment || c.Maintenance
}

// BotIDFromToken reads the user_id claim of the bot's study-service token.
// The token is issued by the study service, so its signature cannot be checked here.
func BotIDFromToken(token string) (int64, error) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return 0, fmt.Errorf("failed to decode YPT_JWT: %w", err)
	}

	switch v := claims["user_id"].(type) {
	case float64:
		return int64(v), nil
	case string:
		id, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid user_id claim %q in YPT_JWT: %w", v, err)
		}
		return id, nil
	default:
		return 0, fmt.Errorf("YPT_JWT has no usable user_id claim")
	}
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	value, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		log.Printf("Invalid boolean for %s: %q, using %v", key, value, defaultValue)
		return defaultValue
	}
	return b
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		log.Printf("Invalid duration for %s: %q, using %s", key, value, defaultValue)
		return defaultValue
	}
	return d
}
