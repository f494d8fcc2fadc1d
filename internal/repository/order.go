package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"storefront_back_end/internal/database"
	"storefront_back_end/internal/models"

	"github.com/gocql/gocql"
	"github.com/google/uuid"
)

// OrderRepository stocke les commandes dans ks_orders
type OrderRepository struct {
	session *gocql.Session
}

func NewOrderRepository(session *gocql.Session) *OrderRepository {
	return &OrderRepository{session: session}
}

// CreateOrder écrit la commande dans orders et orders_by_user dans un batch LOGGED
func (or *OrderRepository) CreateOrder(ctx context.Context, order *models.Order) error {
	values, err := orderValues(order)
	if err != nil {
		return err
	}

	batch := or.session.NewBatch(gocql.LoggedBatch).WithContext(ctx)
	batch.Query(database.CQLInsertOrder, values...)
	batch.Query(database.CQLInsertOrderByUser, values...)

	if err := or.session.ExecuteBatch(batch); err != nil {
		return fmt.Errorf("insert order %s: %w", order.ID, err)
	}
	return nil
}

// GetOrderByID renvoie models.ErrOrderNotFound si la commande n'existe pas
func (or *OrderRepository) GetOrderByID(ctx context.Context, orderID uuid.UUID) (*models.Order, error) {
	iter := or.session.Query(database.CQLGetOrderByID, gocql.UUID(orderID)).WithContext(ctx).Iter()
	orders, err := scanOrders(iter)
	if err != nil {
		return nil, fmt.Errorf("get order %s: %w", orderID, err)
	}
	if len(orders) == 0 {
		return nil, models.ErrOrderNotFound
	}
	return &orders[0], nil
}

// GetOrdersByUserID lit la partition de l'utilisateur, déjà triée created_at DESC
func (or *OrderRepository) GetOrdersByUserID(ctx context.Context, userID string) ([]models.Order, error) {
	iter := or.session.Query(database.CQLListOrdersByUser, userID).WithContext(ctx).Iter()
	orders, err := scanOrders(iter)
	if err != nil {
		return nil, fmt.Errorf("list orders for %s: %w", userID, err)
	}
	return orders, nil
}

// UpdateEmailSent est la seule mutation autorisée après création
func (or *OrderRepository) UpdateEmailSent(ctx context.Context, order *models.Order, sent bool) error {
	batch := or.session.NewBatch(gocql.LoggedBatch).WithContext(ctx)
	batch.Query(database.CQLUpdateOrderEmailSent, sent, gocql.UUID(order.ID))
	batch.Query(database.CQLUpdateOrderByUserEmailSent, sent, order.UserID, order.CreatedAt, gocql.UUID(order.ID))

	if err := or.session.ExecuteBatch(batch); err != nil {
		return fmt.Errorf("update email_sent for %s: %w", order.ID, err)
	}
	order.EmailSent = sent
	return nil
}

// ClaimPayment réserve l'identifiant de paiement Stripe (LWT IF NOT EXISTS).
// Si un autre appel l'a déjà réservé, renvoie la réservation existante et claimed=false.
func (or *OrderRepository) ClaimPayment(ctx context.Context, paymentID string, claim models.PaymentClaim) (current models.PaymentClaim, claimed bool, err error) {
	previous := make(map[string]interface{})
	applied, err := or.session.Query(database.CQLClaimPayment, paymentID, gocql.UUID(claim.OrderID), claim.ClaimedAt).
		WithContext(ctx).
		MapScanCAS(previous)
	if err != nil {
		return models.PaymentClaim{}, false, fmt.Errorf("claim payment %s: %w", paymentID, err)
	}
	if applied {
		return claim, true, nil
	}

	current, err = claimFromRow(previous)
	if err != nil {
		return models.PaymentClaim{}, false, fmt.Errorf("claim payment %s: %w", paymentID, err)
	}
	return current, false, nil
}

// TakeOverPayment réattribue une réservation orpheline, seulement si elle pointe toujours vers stale
func (or *OrderRepository) TakeOverPayment(ctx context.Context, paymentID string, stale uuid.UUID, claim models.PaymentClaim) (bool, error) {
	previous := make(map[string]interface{})
	applied, err := or.session.Query(database.CQLTakeOverPayment,
		gocql.UUID(claim.OrderID), claim.ClaimedAt, paymentID, gocql.UUID(stale)).
		WithContext(ctx).
		MapScanCAS(previous)
	if err != nil {
		return false, fmt.Errorf("take over payment %s: %w", paymentID, err)
	}
	return applied, nil
}

// ReleasePayment supprime la réservation si elle appartient encore à orderID
func (or *OrderRepository) ReleasePayment(ctx context.Context, paymentID string, orderID uuid.UUID) error {
	previous := make(map[string]interface{})
	if _, err := or.session.Query(database.CQLReleasePayment, paymentID, gocql.UUID(orderID)).
		WithContext(ctx).
		MapScanCAS(previous); err != nil {
		return fmt.Errorf("release payment %s: %w", paymentID, err)
	}
	return nil
}

// claimFromRow lit la ligne renvoyée par une LWT refusée.
// claimed_at est nul pour les lignes écrites avant l'ajout de la colonne.
func claimFromRow(row map[string]interface{}) (models.PaymentClaim, error) {
	id, ok := row["order_id"].(gocql.UUID)
	if !ok {
		return models.PaymentClaim{}, errors.New("order_id absent de la ligne existante")
	}
	claimedAt, _ := row["claimed_at"].(time.Time)
	return models.PaymentClaim{OrderID: uuid.UUID(id), ClaimedAt: claimedAt}, nil
}

// --- (dé)sérialisation ---

func orderValues(order *models.Order) ([]interface{}, error) {
	items, err := json.Marshal(storedItems(order.OrderItems))
	if err != nil {
		return nil, fmt.Errorf("encode items: %w", err)
	}

	var shipping string
	if order.ShippingAddress != nil {
		raw, err := json.Marshal(order.ShippingAddress)
		if err != nil {
			return nil, fmt.Errorf("encode shipping address: %w", err)
		}
		shipping = string(raw)
	}

	p := order.PaymentDetails
	return []interface{}{
		gocql.UUID(order.ID), order.UserID, order.UserEmail, order.UserName, string(items),
		p.PaymentIntentID, p.SessionID, p.StripePaymentID, p.PaymentMethod, p.PaymentStatus, p.Amount,
		p.Currency, order.OrderStatus, order.TotalAmount, shipping, order.EmailSent, order.CreatedAt,
	}, nil
}

// storedItems retire la projection produit, calculée à la lecture
func storedItems(items []models.OrderItem) []models.OrderItem {
	out := make([]models.OrderItem, len(items))
	for i, item := range items {
		item.Product = nil
		out[i] = item
	}
	return out
}

func scanOrders(iter *gocql.Iter) ([]models.Order, error) {
	var (
		orders    []models.Order
		id        gocql.UUID
		items     string
		shipping  string
		createdAt time.Time
	)

	for {
		var o models.Order
		p := &o.PaymentDetails
		if !iter.Scan(&id, &o.UserID, &o.UserEmail, &o.UserName, &items,
			&p.PaymentIntentID, &p.SessionID, &p.StripePaymentID, &p.PaymentMethod, &p.PaymentStatus, &p.Amount,
			&p.Currency, &o.OrderStatus, &o.TotalAmount, &shipping, &o.EmailSent, &createdAt) {
			break
		}

		o.ID = uuid.UUID(id)
		o.CreatedAt = createdAt
		if items != "" {
			if err := json.Unmarshal([]byte(items), &o.OrderItems); err != nil {
				_ = iter.Close()
				return nil, fmt.Errorf("decode items of %s: %w", o.ID, err)
			}
		}
		if shipping != "" {
			o.ShippingAddress = &models.ShippingAddress{}
			if err := json.Unmarshal([]byte(shipping), o.ShippingAddress); err != nil {
				_ = iter.Close()
				return nil, fmt.Errorf("decode shipping address of %s: %w", o.ID, err)
			}
		}
		orders = append(orders, o)
	}

	if err := iter.Close(); err != nil {
		return nil, err
	}
	return orders, nil
}
