package utils

import (
	"errors"
	"time"

	"storefront_back_end/internal/models"

	"github.com/golang-jwt/jwt/v5"
)

// GenerateJWT signe un jeton HS256 avec les claims lus par middleware.AuthRequired
func GenerateJWT(secret string, user models.User, ttl time.Duration) (string, error) {
	if secret == "" {
		return "", errors.New("secret JWT vide")
	}
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}

	claims := jwt.MapClaims{
		"user_id": user.ID,
		"email":   user.Email,
		"role":    user.Role,
		"exp":     time.Now().Add(ttl).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}
