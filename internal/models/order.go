package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Statuts de commande
const (
	OrderStatusPending    = "pending"
	OrderStatusConfirmed  = "confirmed"
	OrderStatusProcessing = "processing"
	OrderStatusShipped    = "shipped"
	OrderStatusDelivered  = "delivered"
	OrderStatusCancelled  = "cancelled"
)

var ValidOrderStatuses = []string{
	OrderStatusPending,
	OrderStatusConfirmed,
	OrderStatusProcessing,
	OrderStatusShipped,
	OrderStatusDelivered,
	OrderStatusCancelled,
}

type Order struct {
	ID              uuid.UUID        `json:"_id"`
	UserID          string           `json:"userId"`
	UserEmail       string           `json:"userEmail"`
	UserName        string           `json:"userName"`
	OrderItems      []OrderItem      `json:"orderItems"`
	PaymentDetails  PaymentDetails   `json:"paymentDetails"`
	OrderStatus     string           `json:"orderStatus"`
	TotalAmount     float64          `json:"totalAmount"`
	ShippingAddress *ShippingAddress `json:"shippingAddress,omitempty"`
	CreatedAt       time.Time        `json:"createdAt"`
	EmailSent       bool             `json:"emailSent"`
}

type OrderItem struct {
	ProductID    string       `json:"productId"`
	ProductName  string       `json:"productName"`
	ProductImage string       `json:"productImage,omitempty"`
	Price        float64      `json:"price"`
	Quantity     int          `json:"quantity"`
	Total        float64      `json:"total"`
	Product      *ProductInfo `json:"product,omitempty"` // rempli à la lecture, jamais stocké
}

type PaymentDetails struct {
	PaymentIntentID string  `json:"paymentIntentId,omitempty"`
	SessionID       string  `json:"sessionId,omitempty"`
	PaymentMethod   string  `json:"paymentMethod"`
	PaymentStatus   string  `json:"paymentStatus"`
	Amount          float64 `json:"amount"`
	Currency        string  `json:"currency"`
	StripePaymentID string  `json:"stripePaymentId"`
}

type ShippingAddress struct {
	Street  string `json:"street,omitempty"`
	City    string `json:"city,omitempty"`
	State   string `json:"state,omitempty"`
	ZipCode string `json:"zipCode,omitempty"`
	Country string `json:"country,omitempty"`
}

// CartLine est une ligne du panier envoyée par le front au moment de la confirmation
type CartLine struct {
	ProductID    string   `json:"productId"`
	ID           string   `json:"_id"`
	ProductName  string   `json:"productName"`
	Name         string   `json:"name"`
	Price        float64  `json:"price"`
	Quantity     int      `json:"quantity"`
	ProductImage string   `json:"productImage,omitempty"`
	Image        ImageRef `json:"image,omitempty"`
	Description  string   `json:"description,omitempty"`
}

// ImageRef accepte "image": "url" comme "image": ["url", ...]
type ImageRef []string

func (r *ImageRef) UnmarshalJSON(data []byte) error {
	var single string
	if err := json.Unmarshal(data, &single); err == nil {
		if single != "" {
			*r = ImageRef{single}
		}
		return nil
	}
	var list []string
	if err := json.Unmarshal(data, &list); err != nil {
		return err
	}
	*r = list
	return nil
}

func (r ImageRef) First() string {
	if len(r) == 0 {
		return ""
	}
	return r[0]
}

// ResolvedProductID accepte productId ou _id selon la page du front
func (l CartLine) ResolvedProductID() string {
	if l.ProductID != "" {
		return l.ProductID
	}
	return l.ID
}

func (l CartLine) ResolvedName() string {
	if l.ProductName != "" {
		return l.ProductName
	}
	return l.Name
}

func (l CartLine) ResolvedImage() string {
	if l.ProductImage != "" {
		return l.ProductImage
	}
	return l.Image.First()
}

type OrderSummary struct {
	TotalOrders       int     `json:"totalOrders"`
	TotalSpent        float64 `json:"totalSpent"`
	AverageOrderValue float64 `json:"averageOrderValue"`
}

type StatusCount struct {
	Status string `json:"_id"`
	Count  int    `json:"count"`
}

type OrderStats struct {
	Summary         OrderSummary  `json:"summary"`
	StatusBreakdown []StatusCount `json:"statusBreakdown"`
}

// PaymentClaim est la ligne orders_by_payment : quelle commande détient le paiement, depuis quand
type PaymentClaim struct {
	OrderID   uuid.UUID
	ClaimedAt time.Time
}
