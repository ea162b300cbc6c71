package handlers

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"staffdesk/internal/services"
	"staffdesk/internal/timeutil"
	"staffdesk/pkg/utils"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type ReportHandler struct {
	Service *services.ReportService
}

func NewReportHandler(service *services.ReportService) *ReportHandler {
	return &ReportHandler{Service: service}
}

// ExportPDF handles GET /api/transactions/export.pdf with the list filters.
func (h *ReportHandler) ExportPDF(w http.ResponseWriter, r *http.Request) {
	f, err := filterFromQuery(r)
	if err != nil {
		utils.Error(w, r, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 60*time.Second)
	defer cancel()

	data, err := h.Service.ExportPDF(ctx, principalOf(r), f)
	if err != nil {
		utils.Error(w, r, err)
		return
	}
	writeAttachment(w, "application/pdf", "pdf", data)
}

// ExportXLSX handles GET /api/transactions/export.xlsx with the list filters.
func (h *ReportHandler) ExportXLSX(w http.ResponseWriter, r *http.Request) {
	f, err := filterFromQuery(r)
	if err != nil {
		utils.Error(w, r, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 60*time.Second)
	defer cancel()

	data, err := h.Service.ExportXLSX(ctx, principalOf(r), f)
	if err != nil {
		utils.Error(w, r, err)
		return
	}
	writeAttachment(w, xlsxContentType, "xlsx", data)
}

func writeAttachment(w http.ResponseWriter, contentType, ext string, data []byte) {
	filename := fmt.Sprintf("transactions_%s.%s", timeutil.Now().Format(timeutil.DateLayout), ext)
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s\"", filename))
	w.Header().Set("Content-Length", fmt.Sprint(len(data)))
	w.Write(data)
}
