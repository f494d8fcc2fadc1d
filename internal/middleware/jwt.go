package middleware

import (
	"fmt"
	"net/http"
	"strings"

	"storefront_back_end/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

// Clés posées dans le contexte gin par AuthRequired
const (
	CtxUserID = "user_id"
	CtxEmail  = "email"
	CtxRole   = "role"
)

// AuthRequired valide le bearer token HS256 et expose l'identité de l'appelant
func AuthRequired(secret string, log *zap.Logger) gin.HandlerFunc {
	key := []byte(secret)

	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			unauthorized(c, "Please login...!")
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			log.Debug("❌ Format Authorization invalide", zap.Int("parts", len(parts)))
			unauthorized(c, "Invalid authorization header format")
			return
		}

		// exp est vérifié par le parser
		token, err := jwt.Parse(parts[1], func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("méthode de signature inattendue: %v", token.Header["alg"])
			}
			return key, nil
		})
		if err != nil || !token.Valid {
			log.Debug("❌ Token refusé", zap.Error(err))
			unauthorized(c, "Invalid or expired token")
			return
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			unauthorized(c, "Invalid or expired token")
			return
		}

		userID := claimString(claims, "user_id")
		if userID == "" {
			// jetons émis par l'ancien back-end
			userID = claimString(claims, "_id")
		}
		if userID == "" {
			log.Debug("❌ user_id manquant dans les claims")
			unauthorized(c, "Invalid or expired token")
			return
		}

		c.Set(CtxUserID, userID)
		c.Set(CtxEmail, claimString(claims, "email"))
		c.Set(CtxRole, claimString(claims, "role"))
		c.Next()
	}
}

// RequireAdmin doit être chaîné après AuthRequired
func RequireAdmin(c *gin.Context) {
	if !strings.EqualFold(c.GetString(CtxRole), "ADMIN") {
		utils.RespondFailure(c, http.StatusForbidden, "Admin access required", nil)
		c.Abort()
		return
	}
	c.Next()
}

func claimString(claims jwt.MapClaims, name string) string {
	s, _ := claims[name].(string)
	return s
}

func unauthorized(c *gin.Context, msg string) {
	utils.RespondFailure(c, http.StatusUnauthorized, msg, nil)
	c.Abort()
}
