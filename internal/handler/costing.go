package handler

import (
	"net/http"

	"kitchenledger/internal/service"

	"github.com/gin-gonic/gin"
)

type CostingHandler struct{ svc service.CostingService }

func NewCostingHandler(svc service.CostingService) *CostingHandler {
	return &CostingHandler{svc: svc}
}

// DishCost godoc
// @Summary      Food cost of a dish
// @Description  Cost, profit and margin of one serving at current ingredient prices, with a per-ingredient breakdown.
// @Tags         costing
// @Produce      json
// @Security     BearerAuth
// @Param        id  path     string true "Dish UUID"
// @Success      200 {object} dto.DishCostResponse
// @Failure      404 {object} apierror.APIError
// @Router       /v1/dishes/{id}/cost [get]
func (h *CostingHandler) DishCost(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	resp, err := h.svc.DishCost(c.Request.Context(), id)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// OrderCost godoc
// @Summary      Food cost of an order
// @Tags         costing
// @Produce      json
// @Security     BearerAuth
// @Param        id  path     string true "Order UUID"
// @Success      200 {object} dto.OrderCostResponse
// @Failure      404 {object} apierror.APIError
// @Router       /v1/orders/{id}/cost [get]
func (h *CostingHandler) OrderCost(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	resp, err := h.svc.OrderCost(c.Request.Context(), id)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
