package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"staffdesk/internal/apperr"
	"staffdesk/internal/logger"
	"staffdesk/internal/middleware"
	"staffdesk/internal/models"

	"github.com/gorilla/mux"
)

// Notifier delivers the events a service call produced.
type Notifier interface {
	Deliver(ctx context.Context, events []models.NotificationEvent) error
}

func principalOf(r *http.Request) models.Principal {
	p, _ := middleware.PrincipalFromContext(r.Context())
	return p
}

func pathID(r *http.Request) (int, error) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil || id <= 0 {
		return 0, apperr.Validation("invalid id")
	}
	return id, nil
}

func pageFromQuery(r *http.Request) models.Page {
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	limit, _ := strconv.Atoi(q.Get("limit"))
	return models.NewPage(page, limit)
}

func decodeJSON(r *http.Request, dst interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return apperr.Wrap(apperr.KindValidation, err, "invalid request body")
	}
	return nil
}

// notify hands events to the dispatcher. The state change has already
// been committed, so a delivery failure is only logged.
func notify(r *http.Request, n Notifier, events []models.NotificationEvent) {
	if n == nil || len(events) == 0 {
		return
	}
	if err := n.Deliver(r.Context(), events); err != nil {
		l := logger.FromContext(r.Context())
		l.Warn().Err(err).Int("events", len(events)).Msg("some notifications were not delivered")
	}
}
