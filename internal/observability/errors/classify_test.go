package errors

import (
	"context"
	"fmt"
	"net/url"
	"testing"

	apperrors "github.com/javaDevJT/auth-hooker/internal/errors"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, ""},
		{"app error", apperrors.InvalidState("done"), "invalid_state"},
		{"wrapped app error", fmt.Errorf("complete: %w", apperrors.NotFound("gone")), "not_found"},
		{"url error unwraps to cause", &url.Error{Op: "Get", URL: "http://x", Err: context.DeadlineExceeded}, "context_deadlineexceedederror"},
		{"plain", fmt.Errorf("boom"), "errors_errorstring"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Classify(tt.err); got != tt.want {
				t.Errorf("Classify() = %q, want %q", got, tt.want)
			}
		})
	}
}
