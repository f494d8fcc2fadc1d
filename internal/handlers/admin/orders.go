package admin

import (
	"context"

	"storefront_back_end/internal/models"
	"storefront_back_end/internal/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type OrderSearcher interface {
	Search(ctx context.Context, query string) ([]models.Order, error)
}

type OrderSearchHandler struct {
	index OrderSearcher
	log   *zap.Logger
}

func NewOrderSearchHandler(index OrderSearcher, log *zap.Logger) *OrderSearchHandler {
	return &OrderSearchHandler{index: index, log: log}
}

// GET /api/admin/orders/search?q=
func (h *OrderSearchHandler) SearchOrders(c *gin.Context) {
	q := c.Query("q")
	orders, err := h.index.Search(c.Request.Context(), q)
	if err != nil {
		h.log.Error("❌ Recherche commandes échouée", zap.String("q", q), zap.Error(err))
		utils.RespondError(c, err)
		return
	}

	h.log.Info("🔎 Recherche commandes", zap.String("q", q), zap.Int("hits", len(orders)))
	utils.Respond(c, "Orders found", orders)
}
