package services

import (
	"context"
	"strings"
	"testing"
	"time"

	"storefront_back_end/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeProducts struct {
	products map[string]models.ProductInfo
	lookups  int
}

func (f *fakeProducts) GetProduct(_ context.Context, id string) (*models.ProductInfo, error) {
	f.lookups++
	p, ok := f.products[id]
	if !ok {
		return nil, models.ErrProductNotFound
	}
	return &p, nil
}

// prefixSigner simule MinIO en préfixant les clés nues
type prefixSigner struct{}

func (prefixSigner) SignImage(_ context.Context, ref string) string {
	if strings.HasPrefix(ref, "http") {
		return ref
	}
	return "https://cdn.test/signed/" + ref
}

func seedOrder(store *memOrderStore, userID string, total float64, status string, at time.Time, items ...models.OrderItem) models.Order {
	o := models.Order{
		ID:          uuid.New(),
		UserID:      userID,
		OrderItems:  items,
		OrderStatus: status,
		TotalAmount: total,
		CreatedAt:   at,
	}
	store.orders[o.ID] = o
	return o
}

func newQueryFixture() (*memOrderStore, *fakeProducts, *OrderQueryService) {
	store := newMemOrderStore()
	products := &fakeProducts{products: map[string]models.ProductInfo{
		"p-1": {ID: "p-1", ProductName: "Mug (new)", Price: 12, ProductImage: "products/mug.png"},
	}}
	return store, products, NewOrderQueryService(store, products, prefixSigner{}, zap.NewNop())
}

func TestListForUser_SortedAndJoined(t *testing.T) {
	store, products, svc := newQueryFixture()
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	old := seedOrder(store, "u-1", 10, models.OrderStatusConfirmed, base,
		models.OrderItem{ProductID: "p-1", ProductName: "Mug", Price: 10, Quantity: 1, Total: 10})
	recent := seedOrder(store, "u-1", 30, models.OrderStatusShipped, base.Add(48*time.Hour),
		models.OrderItem{ProductID: "p-1", ProductName: "Mug", Price: 10, Quantity: 1, Total: 10},
		models.OrderItem{ProductID: "gone", ProductName: "Old poster", ProductImage: "https://img.test/p.png", Price: 20, Quantity: 1, Total: 20})
	seedOrder(store, "u-2", 99, models.OrderStatusConfirmed, base.Add(time.Hour))

	orders, err := svc.ListForUser(context.Background(), "u-1")
	require.NoError(t, err)
	require.Len(t, orders, 2)

	assert.Equal(t, recent.ID, orders[0].ID)
	assert.Equal(t, old.ID, orders[1].ID)

	first := orders[0].OrderItems[0]
	require.NotNil(t, first.Product)
	assert.Equal(t, "Mug (new)", first.Product.ProductName)
	assert.Equal(t, "https://cdn.test/signed/products/mug.png", first.Product.ProductImage)
	assert.Equal(t, "Mug", first.ProductName)

	gone := orders[0].OrderItems[1]
	assert.Nil(t, gone.Product)
	assert.Equal(t, "Old poster", gone.ProductName)
	assert.Equal(t, "https://img.test/p.png", gone.ProductImage)

	// un produit n'est lu qu'une fois par appel
	assert.Equal(t, 2, products.lookups)
	assert.Nil(t, store.orders[recent.ID].OrderItems[0].Product)
}

func TestListForUser_EmptyIsNotNil(t *testing.T) {
	_, _, svc := newQueryFixture()

	orders, err := svc.ListForUser(context.Background(), "nobody")
	require.NoError(t, err)
	assert.NotNil(t, orders)
	assert.Empty(t, orders)
}

func TestGetOne(t *testing.T) {
	store, _, svc := newQueryFixture()
	mine := seedOrder(store, "u-1", 10, models.OrderStatusConfirmed, time.Now(),
		models.OrderItem{ProductID: "p-1", ProductName: "Mug", Price: 10, Quantity: 1, Total: 10})
	theirs := seedOrder(store, "u-2", 10, models.OrderStatusConfirmed, time.Now())

	tests := []struct {
		name    string
		orderID string
		wantErr bool
	}{
		{name: "own order", orderID: mine.ID.String()},
		{name: "other user's order", orderID: theirs.ID.String(), wantErr: true},
		{name: "unknown order", orderID: uuid.NewString(), wantErr: true},
		{name: "malformed id", orderID: "not-a-uuid", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			order, err := svc.GetOne(context.Background(), "u-1", tt.orderID)
			if tt.wantErr {
				require.Error(t, err)
				assert.Equal(t, models.KindNotFound, models.KindOf(err))
				assert.Equal(t, "Order not found", models.MessageOf(err))
				assert.Nil(t, order)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, mine.ID, order.ID)
			require.NotNil(t, order.OrderItems[0].Product)
		})
	}
}

func TestStatsForUser(t *testing.T) {
	store, _, svc := newQueryFixture()
	now := time.Now()
	seedOrder(store, "u-1", 10.10, models.OrderStatusConfirmed, now)
	seedOrder(store, "u-1", 20.20, models.OrderStatusShipped, now.Add(time.Minute))
	seedOrder(store, "u-1", 0.05, models.OrderStatusConfirmed, now.Add(2*time.Minute))
	seedOrder(store, "u-2", 500, models.OrderStatusConfirmed, now)

	stats, err := svc.StatsForUser(context.Background(), "u-1")
	require.NoError(t, err)

	assert.Equal(t, 3, stats.Summary.TotalOrders)
	assert.Equal(t, 30.35, stats.Summary.TotalSpent)
	assert.Equal(t, 10.12, stats.Summary.AverageOrderValue)
	assert.ElementsMatch(t, []models.StatusCount{
		{Status: models.OrderStatusConfirmed, Count: 2},
		{Status: models.OrderStatusShipped, Count: 1},
	}, stats.StatusBreakdown)
}

func TestStatsForUser_NoOrders(t *testing.T) {
	_, _, svc := newQueryFixture()

	stats, err := svc.StatsForUser(context.Background(), "u-1")
	require.NoError(t, err)
	assert.Equal(t, models.OrderSummary{}, stats.Summary)
	assert.NotNil(t, stats.StatusBreakdown)
	assert.Empty(t, stats.StatusBreakdown)
}
