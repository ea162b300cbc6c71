package handlers

import (
	"net/http"
	"strconv"

	"staffdesk/internal/models"
	"staffdesk/internal/services"
	"staffdesk/pkg/utils"
)

// LiveServer upgrades a request to a push connection for one account.
type LiveServer interface {
	Serve(w http.ResponseWriter, r *http.Request, accountID int)
}

type NotificationHandler struct {
	Service *services.NotificationService
	Live    LiveServer
}

func NewNotificationHandler(s *services.NotificationService, live LiveServer) *NotificationHandler {
	return &NotificationHandler{Service: s, Live: live}
}

// ListNotifications handles GET /api/notifications?unread=true&page&limit.
func (h *NotificationHandler) ListNotifications(w http.ResponseWriter, r *http.Request) {
	unreadOnly, _ := strconv.ParseBool(r.URL.Query().Get("unread"))

	list, err := h.Service.List(r.Context(), principalOf(r), unreadOnly, pageFromQuery(r))
	if err != nil {
		utils.Error(w, r, err)
		return
	}
	utils.JSON(w, http.StatusOK, list)
}

// MarkNotifications handles PATCH /api/notifications.
func (h *NotificationHandler) MarkNotifications(w http.ResponseWriter, r *http.Request) {
	var req models.MarkNotificationsRequest
	if err := decodeJSON(r, &req); err != nil {
		utils.Error(w, r, err)
		return
	}

	updated, err := h.Service.Mark(r.Context(), principalOf(r), &req)
	if err != nil {
		utils.Error(w, r, err)
		return
	}
	utils.JSON(w, http.StatusOK, map[string]interface{}{
		"message": "notifications updated",
		"updated": updated,
	})
}

// Stream upgrades to a websocket that receives new notifications as JSON.
func (h *NotificationHandler) Stream(w http.ResponseWriter, r *http.Request) {
	h.Live.Serve(w, r, principalOf(r).AccountID)
}
