package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestStatus(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{nil, http.StatusOK},
		{NotFound("slide %s", "abc"), http.StatusNotFound},
		{Validation("title required"), http.StatusBadRequest},
		{Boundary("already at top"), http.StatusBadRequest},
		{Conflict("slideshow exists"), http.StatusConflict},
		{fmt.Errorf("moving slide: %w", NotFound("slide")), http.StatusNotFound},
		{errors.New("disk I/O error"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		if got := Status(tt.err); got != tt.want {
			t.Errorf("Status(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}

func TestMessage(t *testing.T) {
	if got := Message(NotFound("slide %s", "abc")); got != "slide abc not found" {
		t.Errorf("unexpected message %q", got)
	}
	wrapped := fmt.Errorf("updating slide: %w", Validation("title requires English or Tamil text"))
	if got := Message(wrapped); got != "title requires English or Tamil text" {
		t.Errorf("unexpected message %q", got)
	}
	if got := Message(errors.New("database is locked")); got != "internal error" {
		t.Errorf("expected storage error to be hidden, got %q", got)
	}
}
