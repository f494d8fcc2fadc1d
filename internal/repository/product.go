package repository

import (
	"context"
	"errors"
	"fmt"

	"storefront_back_end/internal/database"
	"storefront_back_end/internal/models"

	"github.com/gocql/gocql"
	"github.com/google/uuid"
)

// ProductRepository est la vue lecture seule du catalogue (ks_products)
type ProductRepository struct {
	session *gocql.Session
}

func NewProductRepository(session *gocql.Session) *ProductRepository {
	return &ProductRepository{session: session}
}

// GetProduct renvoie models.ErrProductNotFound pour un produit inconnu ou un id non UUID
func (pr *ProductRepository) GetProduct(ctx context.Context, productID string) (*models.ProductInfo, error) {
	pid, err := uuid.Parse(productID)
	if err != nil {
		return nil, models.ErrProductNotFound
	}

	var (
		name   string
		price  float64
		images []string
	)
	err = pr.session.Query(database.CQLGetProduct, gocql.UUID(pid)).WithContext(ctx).Scan(&name, &price, &images)
	if errors.Is(err, gocql.ErrNotFound) {
		return nil, models.ErrProductNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get product %s: %w", productID, err)
	}

	info := &models.ProductInfo{ID: pid.String(), ProductName: name, Price: price}
	if len(images) > 0 {
		info.ProductImage = images[0]
	}
	return info, nil
}
