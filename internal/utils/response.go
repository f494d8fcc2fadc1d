package utils

import (
	"net/http"

	"storefront_back_end/internal/models"

	"github.com/gin-gonic/gin"
)

// Envelope est la forme commune de toutes les réponses JSON de l'API
type Envelope struct {
	Success bool   `json:"success"`
	Error   bool   `json:"error"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

func Respond(c *gin.Context, message string, data any) {
	c.JSON(http.StatusOK, Envelope{Success: true, Message: message, Data: data})
}

// RespondFailure écrit un échec avec un statut explicite (400 paiement refusé, 401...)
func RespondFailure(c *gin.Context, status int, message string, data any) {
	c.JSON(status, Envelope{Error: true, Message: message, Data: data})
}

// RespondError traduit une erreur applicative en statut HTTP
func RespondError(c *gin.Context, err error) {
	RespondFailure(c, StatusFor(err), models.MessageOf(err), nil)
}

func StatusFor(err error) int {
	switch models.KindOf(err) {
	case models.KindInputValidation:
		return http.StatusBadRequest
	case models.KindNotFound:
		return http.StatusNotFound
	case models.KindPermission:
		return http.StatusForbidden
	case models.KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
