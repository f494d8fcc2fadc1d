package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"storefront_back_end/internal/models"
	"storefront_back_end/internal/utils"

	"go.uber.org/zap"
)

type UserStore interface {
	GetUserByID(ctx context.Context, userID string) (*models.User, error)
	UpdateUser(ctx context.Context, previousEmail string, user *models.User) error
}

type UserCacheInvalidator interface {
	InvalidateUser(ctx context.Context, userID string, emails ...string)
}

// ProfileUpdate : les champs vides ne sont pas modifiés
type ProfileUpdate struct {
	UserID          string `json:"userId"`
	Email           string `json:"email"`
	Name            string `json:"name"`
	Role            string `json:"role"`
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

func (u ProfileUpdate) ChangesPassword() bool {
	return strings.TrimSpace(u.NewPassword) != ""
}

type ProfileService struct {
	users             UserStore
	cache             UserCacheInvalidator
	passwordMinLength int
	log               *zap.Logger
}

func NewProfileService(users UserStore, cache UserCacheInvalidator, passwordMinLength int, log *zap.Logger) *ProfileService {
	if passwordMinLength <= 0 {
		passwordMinLength = 6
	}
	return &ProfileService{users: users, cache: cache, passwordMinLength: passwordMinLength, log: log}
}

// Update applique la mise à jour demandée par callerID et renvoie le compte à jour
func (s *ProfileService) Update(ctx context.Context, callerID string, req ProfileUpdate) (*models.User, error) {
	targetID := req.UserID
	if targetID == "" {
		targetID = callerID
	}

	target, err := s.users.GetUserByID(ctx, targetID)
	if err != nil {
		return nil, notFoundOr(err, "User not found")
	}

	caller := target
	if targetID != callerID {
		if caller, err = s.users.GetUserByID(ctx, callerID); err != nil {
			return nil, notFoundOr(err, "User not found")
		}
	}

	// Chacun peut modifier son propre profil, un ADMIN peut modifier tout le monde
	if targetID != callerID && !caller.IsAdmin() {
		s.log.Warn("🚫 Modification refusée", zap.String("caller", callerID), zap.String("target", targetID))
		return nil, models.NewPermissionError("You don't have permission to update this user")
	}
	if req.Role != "" && req.Role != target.Role && !caller.IsAdmin() {
		return nil, models.NewPermissionError("Only administrators can change roles")
	}

	updated := *target
	previousEmail := target.Email
	if req.Email != "" {
		updated.Email = req.Email
	}
	if req.Name != "" {
		updated.Name = req.Name
	}
	if req.Role != "" {
		if req.Role != models.RoleUser && req.Role != models.RoleAdmin {
			return nil, models.NewValidationError("Invalid role")
		}
		updated.Role = req.Role
	}

	if req.ChangesPassword() {
		if strings.TrimSpace(req.CurrentPassword) == "" {
			return nil, models.NewValidationError("Current password is required to change password")
		}
		if !utils.PasswordMatches(req.CurrentPassword, target.Password) {
			return nil, models.NewValidationError("Current password is incorrect")
		}
		if len(req.NewPassword) < s.passwordMinLength {
			return nil, models.NewValidationError(fmt.Sprintf("New password must be at least %d characters long", s.passwordMinLength))
		}

		hash, err := utils.HashPassword(req.NewPassword)
		if err != nil {
			return nil, models.NewInternalError("Error hashing password", err)
		}
		updated.Password = hash
	}

	if err := s.users.UpdateUser(ctx, previousEmail, &updated); err != nil {
		if errors.Is(err, models.ErrDuplicateEmail) {
			return nil, models.NewValidationError("Email already exists")
		}
		return nil, models.NewInternalError("Failed to update user", err)
	}
	s.cache.InvalidateUser(ctx, targetID, previousEmail, updated.Email)

	// Relecture : le nouveau mot de passe doit être actif et l'ancien refusé
	fresh, err := s.users.GetUserByID(ctx, targetID)
	if err != nil {
		return nil, models.NewInternalError("Failed to update user", err)
	}
	if req.ChangesPassword() {
		if !utils.PasswordMatches(req.NewPassword, fresh.Password) {
			s.log.Error("❌ Nouveau mot de passe absent après mise à jour", zap.String("user_id", targetID))
			return nil, models.NewInternalError("Password update failed - please try again", nil)
		}
		if utils.PasswordMatches(req.CurrentPassword, fresh.Password) {
			s.log.Error("❌ Ancien mot de passe toujours actif", zap.String("user_id", targetID))
			return nil, models.NewInternalError("Password update failed - old password still active", nil)
		}
	}

	s.log.Info("✅ Profil mis à jour", zap.String("user_id", targetID), zap.Bool("password_changed", req.ChangesPassword()))
	return fresh, nil
}

func notFoundOr(err error, msg string) error {
	if models.KindOf(err) == models.KindNotFound {
		return models.NewNotFoundError(msg, err)
	}
	return models.NewInternalError(msg, err)
}
