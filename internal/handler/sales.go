package handler

import (
	"bytes"
	"fmt"
	"net/http"

	"kitchenledger/internal/dto"
	"kitchenledger/internal/infra"
	"kitchenledger/internal/service"

	"github.com/gin-gonic/gin"
)

type SalesHandler struct{ svc service.SalesService }

func NewSalesHandler(svc service.SalesService) *SalesHandler { return &SalesHandler{svc: svc} }

// Summary godoc
// @Summary      Sales summary
// @Description  Revenue, order count, profit, margin and best-selling dish (drinks excluded) for a period.
// @Tags         sales
// @Produce      json
// @Security     BearerAuth
// @Param        period     query string false "today | last_7_days | this_month | this_year | custom"
// @Param        start_date query string false "YYYY-MM-DD (custom only)"
// @Param        end_date   query string false "YYYY-MM-DD (custom only)"
// @Success      200 {object} dto.SalesSummaryResponse
// @Failure      400 {object} apierror.APIError
// @Router       /v1/sales/summary [get]
func (h *SalesHandler) Summary(c *gin.Context) {
	var filter dto.SalesPeriodFilter
	if !bindQuery(c, &filter) {
		return
	}
	resp, err := h.svc.Summary(c.Request.Context(), filter)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// SummaryPDF godoc
// @Summary      Sales summary as PDF
// @Tags         sales
// @Produce      application/pdf
// @Security     BearerAuth
// @Param        period     query string false "today | last_7_days | this_month | this_year | custom"
// @Param        start_date query string false "YYYY-MM-DD (custom only)"
// @Param        end_date   query string false "YYYY-MM-DD (custom only)"
// @Success      200 {file} binary
// @Failure      400 {object} apierror.APIError
// @Router       /v1/sales/summary.pdf [get]
func (h *SalesHandler) SummaryPDF(c *gin.Context) {
	var filter dto.SalesPeriodFilter
	if !bindQuery(c, &filter) {
		return
	}
	summary, err := h.svc.Summary(c.Request.Context(), filter)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	orders, err := h.svc.ListOrders(c.Request.Context(), filter)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	var buf bytes.Buffer
	if err := infra.RenderSalesSummaryPDF(&buf, summary, orders.Data); err != nil {
		_ = c.Error(err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="sales_%s_%s.pdf"`, summary.Period, summary.From))
	c.Data(http.StatusOK, "application/pdf", buf.Bytes())
}

// ListOrders godoc
// @Summary      Orders in a period
// @Description  Orders of the period, newest order number first.
// @Tags         sales
// @Produce      json
// @Security     BearerAuth
// @Param        period     query string false "today | last_7_days | this_month | this_year | custom"
// @Param        start_date query string false "YYYY-MM-DD (custom only)"
// @Param        end_date   query string false "YYYY-MM-DD (custom only)"
// @Success      200 {object} dto.OrderListResponse
// @Router       /v1/sales/orders [get]
func (h *SalesHandler) ListOrders(c *gin.Context) {
	var filter dto.SalesPeriodFilter
	if !bindQuery(c, &filter) {
		return
	}
	resp, err := h.svc.ListOrders(c.Request.Context(), filter)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
