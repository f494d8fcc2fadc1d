package user

import (
	"context"

	"storefront_back_end/internal/middleware"
	"storefront_back_end/internal/models"
	"storefront_back_end/internal/utils"

	"github.com/gin-gonic/gin"
)

type OrderQueries interface {
	ListForUser(ctx context.Context, userID string) ([]models.Order, error)
	GetOne(ctx context.Context, userID, orderID string) (*models.Order, error)
	StatsForUser(ctx context.Context, userID string) (*models.OrderStats, error)
}

type OrderHandler struct {
	orders OrderQueries
}

func NewOrderHandler(orders OrderQueries) *OrderHandler {
	return &OrderHandler{orders: orders}
}

// GET /api/orders : commandes de l'utilisateur connecté, plus récentes d'abord
func (h *OrderHandler) GetMyOrders(c *gin.Context) {
	orders, err := h.orders.ListForUser(c.Request.Context(), c.GetString(middleware.CtxUserID))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.Respond(c, "Orders retrieved successfully", orders)
}

// GET /api/orders/:orderId
func (h *OrderHandler) GetOrderByID(c *gin.Context) {
	order, err := h.orders.GetOne(c.Request.Context(), c.GetString(middleware.CtxUserID), c.Param("orderId"))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.Respond(c, "Order details retrieved successfully", order)
}

// GET /api/orders/stats
func (h *OrderHandler) GetOrderStats(c *gin.Context) {
	stats, err := h.orders.StatsForUser(c.Request.Context(), c.GetString(middleware.CtxUserID))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.Respond(c, "Order statistics retrieved successfully", stats)
}
