package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{"plain error", errors.New("boom"), KindInternal},
		{"forbidden", Forbidden("nope"), KindForbidden},
		{"wrapped conflict", fmt.Errorf("register: %w", Conflict("duplicate")), KindConflict},
		{"wrap helper", Wrap(KindNotFound, errors.New("no rows"), "task not found"), KindNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := KindOf(tt.err); got != tt.want {
				t.Errorf("KindOf() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestHTTPStatus(t *testing.T) {
	cases := map[Kind]int{
		KindUnauthorized: http.StatusUnauthorized,
		KindForbidden:    http.StatusForbidden,
		KindNotFound:     http.StatusNotFound,
		KindValidation:   http.StatusBadRequest,
		KindConflict:     http.StatusConflict,
		KindInternal:     http.StatusInternalServerError,
	}
	for kind, want := range cases {
		if got := kind.HTTPStatus(); got != want {
			t.Errorf("%s: got %d, want %d", kind, got, want)
		}
	}
}

func TestValidationCarriesFields(t *testing.T) {
	err := Validation("validation failed", FieldError{Field: "email", Message: "email is required"})

	fields := Fields(fmt.Errorf("wrapped: %w", err))
	if len(fields) != 1 || fields[0].Field != "email" {
		t.Fatalf("unexpected fields: %+v", fields)
	}
}

func TestPublicMessageHidesInternal(t *testing.T) {
	if got := PublicMessage(errors.New("pq: connection refused")); got != "internal server error" {
		t.Errorf("internal cause leaked: %q", got)
	}
	if got := PublicMessage(NotFound("task not found")); got != "task not found" {
		t.Errorf("got %q", got)
	}
}

func TestWrapNil(t *testing.T) {
	if Wrap(KindConflict, nil, "x") != nil {
		t.Error("Wrap(nil) should return nil")
	}
}
