package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"storefront_back_end/internal/models"
	"storefront_back_end/internal/repository"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	UserCacheTTL    = 5 * time.Minute
	ProductCacheTTL = 10 * time.Minute
)

type UserLoader interface {
	GetUserByID(ctx context.Context, userID string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
}

type ProductLoader interface {
	GetProduct(ctx context.Context, productID string) (*models.ProductInfo, error)
}

// UserCache met les comptes en cache Redis devant ScyllaDB.
// Le hash du mot de passe n'est jamais sérialisé (json:"-").
type UserCache struct {
	store UserLoader
	rdb   redis.Cmdable
	log   *zap.Logger
}

func NewUserCache(store UserLoader, rdb redis.Cmdable, log *zap.Logger) *UserCache {
	return &UserCache{store: store, rdb: rdb, log: log}
}

func userKey(userID string) string {
	return "user:" + userID
}

func userEmailKey(email string) string {
	return "user_email:" + repository.NormalizeEmail(email)
}

func (uc *UserCache) GetUserByID(ctx context.Context, userID string) (*models.User, error) {
	return uc.load(ctx, userKey(userID), func() (*models.User, error) {
		return uc.store.GetUserByID(ctx, userID)
	})
}

func (uc *UserCache) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return uc.load(ctx, userEmailKey(email), func() (*models.User, error) {
		return uc.store.GetUserByEmail(ctx, email)
	})
}

func (uc *UserCache) load(ctx context.Context, key string, fetch func() (*models.User, error)) (*models.User, error) {
	// 1. Essayer le cache Redis
	var user models.User
	if getJSON(ctx, uc.rdb, key, &user, uc.log) {
		return &user, nil
	}

	// 2. Récupérer de ScyllaDB
	found, err := fetch()
	if err != nil {
		return nil, err
	}

	// 3. Mettre en cache sous les deux clés
	setJSON(ctx, uc.rdb, userKey(found.ID), found, UserCacheTTL, uc.log)
	setJSON(ctx, uc.rdb, userEmailKey(found.Email), found, UserCacheTTL, uc.log)
	return found, nil
}

// InvalidateUser supprime les entrées d'un compte, ancienne adresse comprise
func (uc *UserCache) InvalidateUser(ctx context.Context, userID string, emails ...string) {
	keys := []string{userKey(userID)}
	for _, email := range emails {
		if email != "" {
			keys = append(keys, userEmailKey(email))
		}
	}
	if err := uc.rdb.Del(ctx, keys...).Err(); err != nil {
		uc.log.Warn("⚠️ Invalidation cache utilisateur échouée", zap.String("user_id", userID), zap.Error(err))
	}
}

// ProductCache met la projection produit (nom, image, prix) en cache
type ProductCache struct {
	store ProductLoader
	rdb   redis.Cmdable
	log   *zap.Logger
}

func NewProductCache(store ProductLoader, rdb redis.Cmdable, log *zap.Logger) *ProductCache {
	return &ProductCache{store: store, rdb: rdb, log: log}
}

func (pc *ProductCache) GetProduct(ctx context.Context, productID string) (*models.ProductInfo, error) {
	key := "product:" + productID

	var info models.ProductInfo
	if getJSON(ctx, pc.rdb, key, &info, pc.log) {
		return &info, nil
	}

	found, err := pc.store.GetProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	setJSON(ctx, pc.rdb, key, found, ProductCacheTTL, pc.log)
	return found, nil
}

func (pc *ProductCache) InvalidateProduct(ctx context.Context, productID string) {
	pc.rdb.Del(ctx, "product:"+productID)
}

// Redis reste optionnel : une panne du cache retombe sur ScyllaDB
func getJSON(ctx context.Context, rdb redis.Cmdable, key string, dest any, log *zap.Logger) bool {
	data, err := rdb.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			log.Warn("⚠️ Lecture cache Redis échouée", zap.String("key", key), zap.Error(err))
		}
		return false
	}
	if err := json.Unmarshal(data, dest); err != nil {
		log.Warn("⚠️ Entrée de cache illisible", zap.String("key", key), zap.Error(err))
		return false
	}
	return true
}

func setJSON(ctx context.Context, rdb redis.Cmdable, key string, value any, ttl time.Duration, log *zap.Logger) {
	data, err := json.Marshal(value)
	if err != nil {
		return
	}
	if err := rdb.Set(ctx, key, data, ttl).Err(); err != nil {
		log.Warn("⚠️ Écriture cache Redis échouée", zap.String("key", key), zap.Error(err))
	}
}
