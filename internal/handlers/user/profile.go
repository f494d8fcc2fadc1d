package user

import (
	"context"
	"net/http"

	"storefront_back_end/internal/middleware"
	"storefront_back_end/internal/models"
	"storefront_back_end/internal/services"
	"storefront_back_end/internal/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type ProfileUpdater interface {
	Update(ctx context.Context, callerID string, req services.ProfileUpdate) (*models.User, error)
}

type ProfileHandler struct {
	profiles ProfileUpdater
	log      *zap.Logger
}

func NewProfileHandler(profiles ProfileUpdater, log *zap.Logger) *ProfileHandler {
	return &ProfileHandler{profiles: profiles, log: log}
}

// POST|PUT /api/update-user
func (h *ProfileHandler) UpdateUser(c *gin.Context) {
	var req services.ProfileUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondFailure(c, http.StatusBadRequest, "Invalid request body", nil)
		return
	}

	callerID := c.GetString(middleware.CtxUserID)
	user, err := h.profiles.Update(c.Request.Context(), callerID, req)
	if err != nil {
		h.log.Warn("⚠️ Mise à jour profil refusée", zap.String("caller", callerID), zap.Error(err))
		utils.RespondError(c, err)
		return
	}

	msg := "Profile updated successfully"
	if req.ChangesPassword() {
		msg = "Profile and password updated successfully"
	}
	utils.Respond(c, msg, user)
}
