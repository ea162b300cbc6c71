package handlers

import (
	"errors"
	"net/http"

	"staffdesk/internal/apperr"
	"staffdesk/internal/services"
	"staffdesk/internal/storage"
	"staffdesk/pkg/utils"
)

type UploadHandler struct {
	Service *services.DocumentService
}

func NewUploadHandler(s *services.DocumentService) *UploadHandler {
	return &UploadHandler{Service: s}
}

// Upload handles a multipart form with a single "file" field.
func (h *UploadHandler) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, storage.MaxUploadSize+1<<20)
	if err := r.ParseMultipartForm(storage.MaxUploadSize); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			utils.Error(w, r, apperr.Validation("file too large", apperr.FieldError{Field: "file", Message: "file must not exceed 10MB"}))
			return
		}
		utils.Error(w, r, apperr.Wrap(apperr.KindValidation, err, "invalid multipart form"))
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		utils.Error(w, r, apperr.Validation("no file uploaded", apperr.FieldError{Field: "file", Message: "file is required"}))
		return
	}
	defer file.Close()

	doc, err := h.Service.Upload(r.Context(), principalOf(r), header.Filename, header.Header.Get("Content-Type"), header.Size, file)
	if err != nil {
		utils.Error(w, r, err)
		return
	}
	utils.JSON(w, http.StatusCreated, doc)
}
