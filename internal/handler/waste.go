package handler

import (
	"net/http"

	"kitchenledger/internal/dto"
	"kitchenledger/internal/service"

	"github.com/gin-gonic/gin"
)

type WasteHandler struct{ svc service.WasteService }

func NewWasteHandler(svc service.WasteService) *WasteHandler { return &WasteHandler{svc: svc} }

// LogWaste godoc
// @Summary      Log waste
// @Description  Removes discarded stock and records why, in one transaction.
// @Tags         waste
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body dto.LogWasteRequest true "Discarded quantity"
// @Success      201  {object} dto.WasteResponse
// @Failure      404  {object} apierror.APIError
// @Failure      409  {object} apierror.StockError
// @Router       /v1/waste [post]
func (h *WasteHandler) LogWaste(c *gin.Context) {
	var req dto.LogWasteRequest
	if !bindAndValidate(c, &req) {
		return
	}
	who, ok := requester(c)
	if !ok {
		return
	}
	resp, err := h.svc.LogWaste(c.Request.Context(), who.ID, req)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// List godoc
// @Summary      Waste log
// @Tags         waste
// @Produce      json
// @Security     BearerAuth
// @Param        inventory_item_id query string false "Filter by ingredient"
// @Param        limit             query int    false "Max rows (default 100)"
// @Success      200 {array} dto.WasteResponse
// @Router       /v1/waste [get]
func (h *WasteHandler) List(c *gin.Context) {
	var filter dto.WasteFilter
	if !bindQuery(c, &filter) {
		return
	}
	resp, err := h.svc.List(c.Request.Context(), filter)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": resp, "total": len(resp)})
}
