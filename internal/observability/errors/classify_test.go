package errors

import (
	"context"
	"fmt"
	"net"
	"testing"

	apperrors "github.com/StefanUPB/tng-gtk-common/internal/errors"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{name: "nil", err: nil, want: ""},
		{name: "app error code", err: apperrors.UpstreamUnavailable(nil, "x"), want: "upstream_unavailable"},
		{name: "wrapped app error", err: fmt.Errorf("dispatch: %w", apperrors.Transport(nil, "x")), want: "transport"},
		{name: "net op error", err: fmt.Errorf("post: %w", &net.OpError{Op: "dial", Err: context.DeadlineExceeded}), want: "context_deadlineexceedederror"},
		{name: "plain", err: fmt.Errorf("x: %w", fmt.Errorf("y")), want: "errors_errorstring"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Classify(tt.err); got != tt.want {
				t.Errorf("Classify() = %q, want %q", got, tt.want)
			}
		})
	}
}
