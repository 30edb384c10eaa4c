package utils

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"

	"yptstats/backend/config"
	"yptstats/backend/models"
)

const (
	groupTokenTTL = 15 * time.Minute
	userTokenTTL  = 30 * 24 * time.Hour
)

// GenerateGroupToken signs the id of a pending one-time group.
func GenerateGroupToken(groupID int64, cfg *config.Config) (string, error) {
	claims := jwt.MapClaims{
		"otg": groupID,
		"exp": time.Now().Add(groupTokenTTL).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(cfg.SigningKey))
}

// GenerateUserToken signs an identified user so later requests can skip the
// one-time group.
func GenerateUserToken(user models.User, cfg *config.Config) (string, error) {
	claims := jwt.MapClaims{
		"user_id": user.ID,
		"name":    user.Name,
		"exp":     time.Now().Add(userTokenTTL).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(cfg.SigningKey))
}

func ParseGroupToken(tokenString string, cfg *config.Config) (int64, error) {
	claims, err := parseToken(tokenString, cfg)
	if err != nil {
		return 0, err
	}

	groupID, ok := claims["otg"].(float64)
	if !ok {
		return 0, fiber.NewError(fiber.StatusBadRequest, "Invalid group in token")
	}
	return int64(groupID), nil
}

func ParseUserToken(tokenString string, cfg *config.Config) (models.User, error) {
	claims, err := parseToken(tokenString, cfg)
	if err != nil {
		return models.User{}, err
	}

	userID, ok := claims["user_id"].(float64)
	if !ok {
		return models.User{}, fiber.NewError(fiber.StatusUnauthorized, "Invalid user ID in token")
	}
	name, _ := claims["name"].(string)
	return models.User{ID: int64(userID), Name: name}, nil
}

func parseToken(tokenString string, cfg *config.Config) (jwt.MapClaims, error) {
	if tokenString == "" {
		return nil, fiber.NewError(fiber.StatusUnauthorized, "Missing token")
	}

	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("invalid signing method")
		}
		return []byte(cfg.SigningKey), nil
	})
	if err != nil {
		return nil, fiber.NewError(fiber.StatusUnauthorized, "Invalid token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, fiber.NewError(fiber.StatusUnauthorized, "Invalid token claims")
	}
	return claims, nil
}
