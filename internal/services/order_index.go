package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"storefront_back_end/internal/models"

	"github.com/elastic/go-elasticsearch/v8/esapi"
	"github.com/google/uuid"
)

const searchResultSize = 50

// OrderIndex indexe les commandes dans Elasticsearch pour la recherche admin.
// *elasticsearch.Client satisfait esapi.Transport.
type OrderIndex struct {
	es    esapi.Transport
	index string
}

func NewOrderIndex(es esapi.Transport, index string) *OrderIndex {
	if index == "" {
		index = "orders"
	}
	return &OrderIndex{es: es, index: index}
}

// orderDocument masque "_id" (champ réservé d'Elasticsearch) au profit de orderId
type orderDocument struct {
	OrderID string `json:"orderId"`
	models.Order
	ID *string `json:"_id,omitempty"`
}

// IndexOrder écrit la commande sous son id (réindexer écrase)
func (oi *OrderIndex) IndexOrder(ctx context.Context, order *models.Order) error {
	data, err := json.Marshal(orderDocument{OrderID: order.ID.String(), Order: *order})
	if err != nil {
		return fmt.Errorf("encodage commande: %w", err)
	}

	req := esapi.IndexRequest{
		Index:      oi.index,
		DocumentID: order.ID.String(),
		Body:       bytes.NewReader(data),
		Refresh:    "true",
	}

	res, err := req.Do(ctx, oi.es)
	if err != nil {
		return fmt.Errorf("erreur envoi Elastic: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("elastic a renvoyé une erreur pour %s: %s", order.ID, res.String())
	}
	return nil
}

type searchResponse struct {
	Hits struct {
		Hits []struct {
			Source orderDocument `json:"_source"`
		} `json:"hits"`
	} `json:"hits"`
}

// Search cherche par email, nom client, produit ou identifiant Stripe
func (oi *OrderIndex) Search(ctx context.Context, query string) ([]models.Order, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, models.NewValidationError("Search query is required")
	}

	var buf bytes.Buffer
	q := map[string]interface{}{
		"size": searchResultSize,
		"sort": []interface{}{
			map[string]interface{}{"createdAt": map[string]string{"order": "desc"}},
		},
		"query": map[string]interface{}{
			"multi_match": map[string]interface{}{
				"query": query,
				"fields": []string{
					"userEmail", "userName", "orderItems.productName",
					"paymentDetails.paymentIntentId", "paymentDetails.sessionId", "paymentDetails.stripePaymentId",
				},
				"lenient": true,
			},
		},
	}
	if err := json.NewEncoder(&buf).Encode(q); err != nil {
		return nil, fmt.Errorf("erreur encodage requête: %w", err)
	}

	req := esapi.SearchRequest{
		Index: []string{oi.index},
		Body:  &buf,
	}
	res, err := req.Do(ctx, oi.es)
	if err != nil {
		return nil, models.NewUpstreamError("Search failed", err)
	}
	defer res.Body.Close()

	if res.StatusCode == http.StatusNotFound {
		// index pas encore créé : aucune commande indexée
		return []models.Order{}, nil
	}
	if res.IsError() {
		return nil, models.NewUpstreamError("Search failed", errors.New(res.String()))
	}

	var r searchResponse
	if err := json.NewDecoder(res.Body).Decode(&r); err != nil {
		return nil, models.NewInternalError("Search failed", fmt.Errorf("erreur décodage JSON: %w", err))
	}

	orders := make([]models.Order, 0, len(r.Hits.Hits))
	for _, hit := range r.Hits.Hits {
		order := hit.Source.Order
		if id, err := uuid.Parse(hit.Source.OrderID); err == nil {
			order.ID = id
		}
		orders = append(orders, order)
	}
	return orders, nil
}
