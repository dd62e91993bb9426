package notifier

import (
	"errors"
	"fmt"
	"testing"
)

func TestIsPermanent(t *testing.T) {
	base := errors.New("boom")

	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"plain error", base, false},
		{"transient", Transient(base), false},
		{"permanent", Permanent(base), true},
		{"wrapped permanent", fmt.Errorf("send: %w", Permanent(base)), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsPermanent(tt.err); got != tt.want {
				t.Errorf("IsPermanent() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestClassifyMessage(t *testing.T) {
	tests := []struct {
		msg  string
		want bool
	}{
		{"Email address is not verified", true},
		{"validation_error: invalid `to` field", true},
		{"connection reset by peer", false},
		{"429 too many requests", false},
		{"something odd", false},
	}

	for _, tt := range tests {
		t.Run(tt.msg, func(t *testing.T) {
			err := ClassifyMessage(errors.New(tt.msg))
			if got := IsPermanent(err); got != tt.want {
				t.Errorf("IsPermanent(ClassifyMessage(%q)) = %v, want %v", tt.msg, got, tt.want)
			}
		})
	}
}
