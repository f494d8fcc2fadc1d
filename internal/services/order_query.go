package services

import (
	"context"
	"errors"
	"sort"

	"storefront_back_end/internal/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type OrderReader interface {
	GetOrderByID(ctx context.Context, orderID uuid.UUID) (*models.Order, error)
	GetOrdersByUserID(ctx context.Context, userID string) ([]models.Order, error)
}

type ProductLookup interface {
	GetProduct(ctx context.Context, productID string) (*models.ProductInfo, error)
}

type ImageSigner interface {
	SignImage(ctx context.Context, ref string) string
}

type OrderQueryService struct {
	orders   OrderReader
	products ProductLookup
	images   ImageSigner
	log      *zap.Logger
}

// images peut être nil : les références d'images sont alors renvoyées brutes
func NewOrderQueryService(orders OrderReader, products ProductLookup, images ImageSigner, log *zap.Logger) *OrderQueryService {
	return &OrderQueryService{orders: orders, products: products, images: images, log: log}
}

// ListForUser renvoie les commandes de l'utilisateur, plus récentes d'abord
func (s *OrderQueryService) ListForUser(ctx context.Context, userID string) ([]models.Order, error) {
	orders, err := s.orders.GetOrdersByUserID(ctx, userID)
	if err != nil {
		return nil, models.NewInternalError("Failed to fetch orders", err)
	}

	sort.SliceStable(orders, func(i, j int) bool {
		return orders[i].CreatedAt.After(orders[j].CreatedAt)
	})

	cache := make(map[string]*models.ProductInfo)
	for i := range orders {
		s.attachProducts(ctx, &orders[i], cache)
	}

	s.log.Info("✅ Commandes trouvées", zap.Int("count", len(orders)), zap.String("user_id", userID))
	if orders == nil {
		orders = []models.Order{}
	}
	return orders, nil
}

// GetOne renvoie NotFound pour un id mal formé, absent ou appartenant à un autre utilisateur
func (s *OrderQueryService) GetOne(ctx context.Context, userID, orderID string) (*models.Order, error) {
	id, err := uuid.Parse(orderID)
	if err != nil {
		return nil, models.NewNotFoundError("Order not found", models.ErrOrderNotFound)
	}

	order, err := s.orders.GetOrderByID(ctx, id)
	if errors.Is(err, models.ErrOrderNotFound) {
		return nil, models.NewNotFoundError("Order not found", err)
	}
	if err != nil {
		return nil, models.NewInternalError("Failed to fetch order details", err)
	}
	if order.UserID != userID {
		return nil, models.NewNotFoundError("Order not found", models.ErrOrderNotFound)
	}

	s.attachProducts(ctx, order, make(map[string]*models.ProductInfo))
	return order, nil
}

// StatsForUser agrège les commandes : total, somme, moyenne et répartition par statut
func (s *OrderQueryService) StatsForUser(ctx context.Context, userID string) (*models.OrderStats, error) {
	orders, err := s.orders.GetOrdersByUserID(ctx, userID)
	if err != nil {
		return nil, models.NewInternalError("Failed to fetch order statistics", err)
	}

	stats := &models.OrderStats{StatusBreakdown: []models.StatusCount{}}
	if len(orders) == 0 {
		return stats, nil
	}

	spent := decimal.Zero
	counts := make(map[string]int)
	var statuses []string
	for _, o := range orders {
		spent = spent.Add(decimal.NewFromFloat(o.TotalAmount))
		if _, seen := counts[o.OrderStatus]; !seen {
			statuses = append(statuses, o.OrderStatus)
		}
		counts[o.OrderStatus]++
	}

	stats.Summary.TotalOrders = len(orders)
	stats.Summary.TotalSpent, _ = spent.Round(2).Float64()
	stats.Summary.AverageOrderValue, _ = spent.Div(decimal.NewFromInt(int64(len(orders)))).Round(2).Float64()
	for _, status := range statuses {
		stats.StatusBreakdown = append(stats.StatusBreakdown, models.StatusCount{Status: status, Count: counts[status]})
	}
	return stats, nil
}

// attachProducts joint le produit actuel à chaque ligne ; l'instantané reste si le produit a disparu
func (s *OrderQueryService) attachProducts(ctx context.Context, order *models.Order, cache map[string]*models.ProductInfo) {
	for i := range order.OrderItems {
		item := &order.OrderItems[i]

		info, seen := cache[item.ProductID]
		if !seen {
			found, err := s.products.GetProduct(ctx, item.ProductID)
			if err != nil && !errors.Is(err, models.ErrProductNotFound) {
				s.log.Warn("⚠️ Produit illisible", zap.String("product_id", item.ProductID), zap.Error(err))
			}
			if found != nil {
				p := *found
				p.ProductImage = s.signImage(ctx, p.ProductImage)
				info = &p
			}
			cache[item.ProductID] = info
		}

		item.Product = info
		item.ProductImage = s.signImage(ctx, item.ProductImage)
	}
}

func (s *OrderQueryService) signImage(ctx context.Context, ref string) string {
	if s.images == nil || ref == "" {
		return ref
	}
	return s.images.SignImage(ctx, ref)
}
