package handler

import (
	"net/http"

	"kitchenledger/internal/service"

	"github.com/gin-gonic/gin"
)

type NotificationsHandler struct{ svc service.NotificationService }

func NewNotificationsHandler(svc service.NotificationService) *NotificationsHandler {
	return &NotificationsHandler{svc: svc}
}

// List godoc
// @Summary      Notification feed
// @Description  Notifications addressed to the caller plus broadcasts, unread first, newest first.
// @Tags         notifications
// @Produce      json
// @Security     BearerAuth
// @Success      200 {array} dto.NotificationResponse
// @Router       /v1/notifications [get]
func (h *NotificationsHandler) List(c *gin.Context) {
	who, ok := requester(c)
	if !ok {
		return
	}
	resp, err := h.svc.ListFor(c.Request.Context(), who.ID)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}

// MarkRead godoc
// @Summary      Mark a notification as read
// @Tags         notifications
// @Security     BearerAuth
// @Param        id  path string true "Notification UUID"
// @Success      204
// @Failure      403 {object} apierror.APIError
// @Failure      404 {object} apierror.APIError
// @Router       /v1/notifications/{id}/read [patch]
func (h *NotificationsHandler) MarkRead(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	who, ok := requester(c)
	if !ok {
		return
	}
	if err := h.svc.MarkRead(c.Request.Context(), id, who.ID); err != nil {
		handleServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Delete godoc
// @Summary      Delete a notification
// @Description  Allowed for the recipient, for broadcasts, and for admins.
// @Tags         notifications
// @Security     BearerAuth
// @Param        id  path string true "Notification UUID"
// @Success      204
// @Failure      403 {object} apierror.APIError
// @Failure      404 {object} apierror.APIError
// @Router       /v1/notifications/{id} [delete]
func (h *NotificationsHandler) Delete(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	who, ok := requester(c)
	if !ok {
		return
	}
	if err := h.svc.Delete(c.Request.Context(), id, who); err != nil {
		handleServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
