package handlers

import (
	"net/http"

	"staffdesk/internal/models"
	"staffdesk/internal/services"
	"staffdesk/pkg/utils"
)

type TOTPHandler struct {
	TOTPService *services.TOTPService
}

func NewTOTPHandler(totpService *services.TOTPService) *TOTPHandler {
	return &TOTPHandler{TOTPService: totpService}
}

// SetupTOTP returns a fresh secret and QR code. 2FA stays off until
// EnableTOTP confirms a code.
func (h *TOTPHandler) SetupTOTP(w http.ResponseWriter, r *http.Request) {
	response, err := h.TOTPService.Setup(r.Context(), principalOf(r))
	if err != nil {
		utils.Error(w, r, err)
		return
	}
	utils.JSON(w, http.StatusOK, response)
}

func (h *TOTPHandler) EnableTOTP(w http.ResponseWriter, r *http.Request) {
	var req models.TOTPCodeRequest
	if err := decodeJSON(r, &req); err != nil {
		utils.Error(w, r, err)
		return
	}
	if err := h.TOTPService.Enable(r.Context(), principalOf(r), &req); err != nil {
		utils.Error(w, r, err)
		return
	}
	utils.JSON(w, http.StatusOK, map[string]string{"message": "2FA enabled"})
}

func (h *TOTPHandler) DisableTOTP(w http.ResponseWriter, r *http.Request) {
	var req models.TOTPCodeRequest
	if err := decodeJSON(r, &req); err != nil {
		utils.Error(w, r, err)
		return
	}
	if err := h.TOTPService.Disable(r.Context(), principalOf(r), &req); err != nil {
		utils.Error(w, r, err)
		return
	}
	utils.JSON(w, http.StatusOK, map[string]string{"message": "2FA disabled"})
}
