package handlers

import (
	"net/http"

	"staffdesk/internal/models"
	"staffdesk/internal/services"
	"staffdesk/pkg/utils"
)

type AuthHandler struct {
	Accounts *services.AccountService
	Auth     *services.AuthService
	Notifier Notifier
}

func NewAuthHandler(accounts *services.AccountService, auth *services.AuthService, notifier Notifier) *AuthHandler {
	return &AuthHandler{
		Accounts: accounts,
		Auth:     auth,
		Notifier: notifier,
	}
}

// Register creates a pending employee account and tells the admins.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req models.RegisterRequest
	if err := decodeJSON(r, &req); err != nil {
		utils.Error(w, r, err)
		return
	}

	account, events, err := h.Accounts.Register(r.Context(), &req)
	if err != nil {
		utils.Error(w, r, err)
		return
	}
	notify(r, h.Notifier, events)

	utils.JSON(w, http.StatusCreated, map[string]interface{}{
		"message": "registration submitted, waiting for admin approval",
		"user":    account,
	})
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := decodeJSON(r, &req); err != nil {
		utils.Error(w, r, err)
		return
	}

	resp, err := h.Auth.Login(r.Context(), &req)
	if err != nil {
		utils.Error(w, r, err)
		return
	}

	utils.JSON(w, http.StatusOK, resp)
}
