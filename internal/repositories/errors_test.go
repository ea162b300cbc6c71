package repositories

import (
	"errors"
	"fmt"
	"testing"

	"staffdesk/internal/apperr"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

func TestTranslate(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want apperr.Kind
	}{
		{"no rows", pgx.ErrNoRows, apperr.KindNotFound},
		{"wrapped no rows", fmt.Errorf("scan: %w", pgx.ErrNoRows), apperr.KindNotFound},
		{"unique violation", &pgconn.PgError{Code: "23505"}, apperr.KindConflict},
		{"fk violation", &pgconn.PgError{Code: "23503"}, apperr.KindInternal},
		{"other", errors.New("conn reset"), apperr.KindInternal},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := apperr.KindOf(translate(tt.err, "task")); got != tt.want {
				t.Errorf("kind = %v, want %v", got, tt.want)
			}
		})
	}
	if translate(nil, "task") != nil {
		t.Error("nil should stay nil")
	}
}
