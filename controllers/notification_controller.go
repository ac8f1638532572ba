package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kendall-kelly/cafe-pos-api/services"
)

// NotificationController serves the staff notification feed
type NotificationController struct {
	notifications *services.NotificationService
	orders        *services.OrderService
}

// NewNotificationController creates a notification controller
func NewNotificationController(notifications *services.NotificationService, orders *services.OrderService) *NotificationController {
	return &NotificationController{notifications: notifications, orders: orders}
}

// ListNotifications handles GET /api/v1/notifications - unread=true limits to unread
func (n *NotificationController) ListNotifications(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	notifications, err := n.notifications.List(c.Request.Context(), user.ID, c.Query("unread") == "true")
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondData(c, http.StatusOK, notifications)
}

// MarkNotificationRead handles PATCH /api/v1/notifications/:id/read
func (n *NotificationController) MarkNotificationRead(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := uuidParam(c, "id", services.ErrNotificationNotFound)
	if !ok {
		return
	}

	notification, err := n.notifications.MarkRead(c.Request.Context(), id, user.ID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondData(c, http.StatusOK, notification)
}

// MarkAllNotificationsRead handles POST /api/v1/notifications/read-all
func (n *NotificationController) MarkAllNotificationsRead(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	count, err := n.notifications.MarkAllRead(c.Request.Context(), user.ID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondData(c, http.StatusOK, gin.H{"updated": count})
}

// GetRelatedOrder handles GET /api/v1/notifications/:id/related - follows
// the notification's numeric related_id back to its order
func (n *NotificationController) GetRelatedOrder(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := uuidParam(c, "id", services.ErrNotificationNotFound)
	if !ok {
		return
	}

	ctx := c.Request.Context()
	notification, err := n.notifications.Get(ctx, id, user.ID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	orderID, err := n.notifications.RelatedOrderID(ctx, notification)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	order, err := n.orders.Get(ctx, orderID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondData(c, http.StatusOK, order)
}
