package apperrors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestErrorsMatchByKind(t *testing.T) {
	err := fmt.Errorf("toggle follow: %w", New(KindInvalidOperation, "cannot follow yourself"))

	if !errors.Is(err, ErrInvalidOperation) {
		t.Fatalf("expected wrapped error to match ErrInvalidOperation")
	}
	if errors.Is(err, ErrNotFound) {
		t.Fatalf("did not expect match against ErrNotFound")
	}
	if got := KindOf(err); got != KindInvalidOperation {
		t.Fatalf("expected kind invalid_operation, got %s", got)
	}
	if got := MessageOf(err); got != "cannot follow yourself" {
		t.Fatalf("unexpected message %q", got)
	}
}

func TestInternalHidesCause(t *testing.T) {
	cause := errors.New("connection refused")
	err := Internal("load user", cause)

	if !errors.Is(err, cause) {
		t.Fatalf("expected cause to remain reachable through Unwrap")
	}
	if got := MessageOf(err); got != "internal server error" {
		t.Fatalf("expected generic message, got %q", got)
	}
	if got := MessageOf(errors.New("plain")); got != "internal server error" {
		t.Fatalf("expected generic message for unclassified error, got %q", got)
	}
}

func TestHTTPStatus(t *testing.T) {
	cases := map[Kind]int{
		KindUnauthorized:     http.StatusUnauthorized,
		KindInvalidInput:     http.StatusBadRequest,
		KindNotFound:         http.StatusNotFound,
		KindForbidden:        http.StatusForbidden,
		KindConflict:         http.StatusConflict,
		KindInvalidOperation: http.StatusBadRequest,
		KindInternal:         http.StatusInternalServerError,
	}
	for kind, want := range cases {
		if got := HTTPStatus(kind); got != want {
			t.Fatalf("kind %s: expected %d got %d", kind, want, got)
		}
	}
}
