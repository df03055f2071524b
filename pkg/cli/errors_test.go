package cli

import (
	"errors"
	"fmt"
	"testing"

	"mercator-hq/ipecho/pkg/config"
)

func TestConfigError(t *testing.T) {
	tests := []struct {
		name string
		err  *ConfigError
		want string
	}{
		{
			name: "with field",
			err:  &ConfigError{Field: "server.listen_address", Message: "listen address is required"},
			want: "config error in server.listen_address: listen address is required",
		},
		{
			name: "without field",
			err:  &ConfigError{Message: "failed to read file"},
			want: "config error: failed to read file",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestCommandError(t *testing.T) {
	underlyingErr := errors.New("underlying error")
	err := NewCommandError("run", underlyingErr)

	expected := "command run failed: underlying error"
	if err.Error() != expected {
		t.Errorf("Error() = %q, want %q", err.Error(), expected)
	}
	if !errors.Is(err, underlyingErr) {
		t.Error("errors.Is() should work with CommandError.Unwrap()")
	}
}

func TestConfigErrors(t *testing.T) {
	validation := config.ValidationError{Errors: []config.FieldError{
		{Field: "routes.enabled[0]", Message: "unknown route \"/nope\""},
		{Field: "security.tls.cert_file", Message: "required when TLS is enabled"},
	}}

	tests := []struct {
		name       string
		err        error
		wantFields []string
	}{
		{name: "nil", err: nil},
		{name: "plain error", err: errors.New("boom"), wantFields: []string{""}},
		{
			name:       "wrapped validation error",
			err:        fmt.Errorf("configuration validation failed: %w", validation),
			wantFields: []string{"routes.enabled[0]", "security.tls.cert_file"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ConfigErrors(tt.err)
			if len(got) != len(tt.wantFields) {
				t.Fatalf("ConfigErrors() returned %d errors, want %d", len(got), len(tt.wantFields))
			}
			for i, field := range tt.wantFields {
				if got[i].Field != field {
					t.Errorf("errors[%d].Field = %q, want %q", i, got[i].Field, field)
				}
			}
		})
	}
}
