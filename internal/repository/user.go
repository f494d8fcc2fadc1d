package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"storefront_back_end/internal/database"
	"storefront_back_end/internal/models"

	"github.com/gocql/gocql"
	"github.com/google/uuid"
)

// UserRepository lit et met à jour les comptes de ks_users
type UserRepository struct {
	session *gocql.Session
}

func NewUserRepository(session *gocql.Session) *UserRepository {
	return &UserRepository{session: session}
}

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (ur *UserRepository) GetUserByID(ctx context.Context, userID string) (*models.User, error) {
	uid, err := uuid.Parse(userID)
	if err != nil {
		return nil, models.ErrUserNotFound
	}

	user := models.User{ID: uid.String()}
	err = ur.session.Query(database.CQLGetUserByID, gocql.UUID(uid)).WithContext(ctx).
		Scan(&user.Email, &user.Password, &user.Name, &user.Role, &user.CreatedAt, &user.UpdatedAt)
	if errors.Is(err, gocql.ErrNotFound) {
		return nil, models.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get user %s: %w", userID, err)
	}
	if user.Role == "" {
		user.Role = models.RoleUser
	}
	return &user, nil
}

func (ur *UserRepository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var uid gocql.UUID
	err := ur.session.Query(database.CQLGetUserIDByEmail, NormalizeEmail(email)).WithContext(ctx).Scan(&uid)
	if errors.Is(err, gocql.ErrNotFound) {
		return nil, models.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get user by email: %w", err)
	}
	return ur.GetUserByID(ctx, uid.String())
}

// UpdateUser persiste les champs modifiables. Un changement d'email réserve
// d'abord la nouvelle adresse dans users_by_email (LWT) : si elle appartient
// déjà à un autre compte, renvoie models.ErrDuplicateEmail sans rien écrire.
func (ur *UserRepository) UpdateUser(ctx context.Context, previousEmail string, user *models.User) error {
	uid, err := uuid.Parse(user.ID)
	if err != nil {
		return models.ErrUserNotFound
	}

	newEmail := NormalizeEmail(user.Email)
	oldEmail := NormalizeEmail(previousEmail)
	emailChanged := newEmail != oldEmail

	if emailChanged {
		previous := make(map[string]interface{})
		applied, err := ur.session.Query(database.CQLClaimEmail, newEmail, gocql.UUID(uid)).
			WithContext(ctx).
			MapScanCAS(previous)
		if err != nil {
			return fmt.Errorf("claim email: %w", err)
		}
		if !applied {
			if owner, ok := previous["user_id"].(gocql.UUID); !ok || owner != gocql.UUID(uid) {
				return models.ErrDuplicateEmail
			}
		}
	}

	user.Email = newEmail
	user.UpdatedAt = time.Now().UTC()
	err = ur.session.Query(database.CQLUpdateUser,
		user.Email, user.Password, user.Name, user.Role, user.UpdatedAt, gocql.UUID(uid)).
		WithContext(ctx).Exec()
	if err != nil {
		if emailChanged {
			_ = ur.session.Query(database.CQLReleaseEmail, newEmail).WithContext(ctx).Exec()
		}
		return fmt.Errorf("update user %s: %w", user.ID, err)
	}

	if emailChanged && oldEmail != "" {
		if err := ur.session.Query(database.CQLReleaseEmail, oldEmail).WithContext(ctx).Exec(); err != nil {
			return fmt.Errorf("release old email: %w", err)
		}
	}
	return nil
}
