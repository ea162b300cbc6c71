package handlers

import (
	"net/http"
	"strings"

	"staffdesk/internal/models"
	"staffdesk/internal/services"
	"staffdesk/pkg/utils"
)

// UserHandler serves the admin's account management routes.
type UserHandler struct {
	Service  *services.AccountService
	Notifier Notifier
}

func NewUserHandler(s *services.AccountService, notifier Notifier) *UserHandler {
	return &UserHandler{Service: s, Notifier: notifier}
}

// ListUsers returns accounts, optionally filtered by ?status=.
func (h *UserHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	status := models.AccountStatus(strings.ToUpper(r.URL.Query().Get("status")))
	page := pageFromQuery(r)

	users, pagination, err := h.Service.ListAccounts(r.Context(), principalOf(r), status, page)
	if err != nil {
		utils.Error(w, r, err)
		return
	}

	utils.JSON(w, http.StatusOK, map[string]interface{}{
		"users":      users,
		"pagination": pagination,
	})
}

// ListEmployees returns approved employees for the assignee picker.
func (h *UserHandler) ListEmployees(w http.ResponseWriter, r *http.Request) {
	employees, err := h.Service.ListApprovedEmployees(r.Context(), principalOf(r))
	if err != nil {
		utils.Error(w, r, err)
		return
	}
	utils.JSON(w, http.StatusOK, map[string]interface{}{"employees": employees})
}

// Decide approves or rejects a pending registration.
func (h *UserHandler) Decide(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		utils.Error(w, r, err)
		return
	}
	var req models.DecisionRequest
	if err := decodeJSON(r, &req); err != nil {
		utils.Error(w, r, err)
		return
	}

	account, events, err := h.Service.Decide(r.Context(), principalOf(r), id, &req)
	if err != nil {
		utils.Error(w, r, err)
		return
	}
	notify(r, h.Notifier, events)

	utils.JSON(w, http.StatusOK, map[string]interface{}{
		"message": "user " + strings.ToLower(string(account.Status)),
		"user":    account,
	})
}
