package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/opsboard/backoffice/src/services"
)

// NotificationHandler handles in-app notifications.
type NotificationHandler struct {
	notifications *services.NotificationService
}

// NewNotificationHandler creates a new notification handler
func NewNotificationHandler(notifications *services.NotificationService) *NotificationHandler {
	return &NotificationHandler{notifications: notifications}
}

// HandleCreate publishes a notification.
func (nh *NotificationHandler) HandleCreate(c *gin.Context) {
	var input services.CreateNotificationInput
	if err := c.BindJSON(&input); err != nil {
		respondBadRequest(c, "invalid request body: title is required")
		return
	}

	notification, err := nh.notifications.Create(c.Request.Context(), input)
	if err != nil {
		respondError(c, err)
		return
	}
	respondCreated(c, "notification created", notification)
}

// HandleList returns notifications for an audience.
func (nh *NotificationHandler) HandleList(c *gin.Context) {
	unreadOnly, _ := strconv.ParseBool(c.Query("unread_only"))
	limit, _ := strconv.Atoi(c.Query("limit"))

	items, err := nh.notifications.List(c.Request.Context(), c.Query("audience"), unreadOnly, limit)
	if err != nil {
		respondError(c, err)
		return
	}
	respondList(c, items, len(items))
}

// HandleMarkRead flags one notification as read.
func (nh *NotificationHandler) HandleMarkRead(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	if err := nh.notifications.MarkRead(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	respondMessage(c, "notification marked read")
}

// HandleUnreadCount returns the unread count for an audience.
func (nh *NotificationHandler) HandleUnreadCount(c *gin.Context) {
	audience := c.Query("audience")
	if audience == "" {
		audience = "admins"
	}

	count, err := nh.notifications.UnreadCount(c.Request.Context(), audience)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, gin.H{"audience": audience, "unread": count})
}
