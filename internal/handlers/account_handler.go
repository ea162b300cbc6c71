package handlers

import (
	"net/http"

	"staffdesk/internal/models"
	"staffdesk/internal/services"
	"staffdesk/pkg/utils"
)

// AccountHandler serves the caller's own profile.
type AccountHandler struct {
	Service *services.AccountService
}

func NewAccountHandler(s *services.AccountService) *AccountHandler {
	return &AccountHandler{Service: s}
}

func (h *AccountHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	account, err := h.Service.GetProfile(r.Context(), principalOf(r))
	if err != nil {
		utils.Error(w, r, err)
		return
	}
	utils.JSON(w, http.StatusOK, account)
}

func (h *AccountHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	var req models.UpdateProfileRequest
	if err := decodeJSON(r, &req); err != nil {
		utils.Error(w, r, err)
		return
	}

	account, err := h.Service.UpdateProfile(r.Context(), principalOf(r), &req)
	if err != nil {
		utils.Error(w, r, err)
		return
	}
	utils.JSON(w, http.StatusOK, account)
}

func (h *AccountHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	var req models.ChangePasswordRequest
	if err := decodeJSON(r, &req); err != nil {
		utils.Error(w, r, err)
		return
	}

	if err := h.Service.ChangePassword(r.Context(), principalOf(r), &req); err != nil {
		utils.Error(w, r, err)
		return
	}
	utils.JSON(w, http.StatusOK, map[string]string{"message": "password updated"})
}
