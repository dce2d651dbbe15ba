package common

import (
	"strings"
	"testing"
	"time"
)

// TestDefaultClientConfig tests the defaults for a local daemon
func TestDefaultClientConfig(t *testing.T) {
	config := DefaultClientConfig()

	if config.Transport.Endpoint != "localhost:8888" {
		t.Errorf("Endpoint = %q, want localhost:8888", config.Transport.Endpoint)
	}
	if config.Timeout() != 0 {
		t.Errorf("Timeout() = %v, the default waits forever", config.Timeout())
	}
	if config.Transport.ConnectBackoff() != time.Second {
		t.Errorf("ConnectBackoff() = %v, want 1s", config.Transport.ConnectBackoff())
	}
	if err := config.Validate(); err != nil {
		t.Errorf("default config is invalid: %v", err)
	}
	if !strings.Contains(config.String(), "localhost:8888") {
		t.Errorf("String() should contain the endpoint:\n%s", config.String())
	}
}

// TestValidate tests the rejection of unusable configurations
func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(c *ClientConfig)
	}{
		{"no endpoint", func(c *ClientConfig) { c.Transport.Endpoint = "" }},
		{"no port", func(c *ClientConfig) { c.Transport.Endpoint = "localhost" }},
		{"negative timeout", func(c *ClientConfig) { c.TimeoutSecond = -1 }},
		{"negative block size", func(c *ClientConfig) { c.MaxBlockSize = -1 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := DefaultClientConfig()
			tt.modify(&config)
			if err := config.Validate(); err == nil {
				t.Error("expected a validation error")
			}
		})
	}
}

// TestParseLogLevel tests the accepted level names
func TestParseLogLevel(t *testing.T) {
	for _, level := range []string{"debug", "info", "warn", "warning", "ERROR", ""} {
		if _, err := ParseLogLevel(level); err != nil {
			t.Errorf("ParseLogLevel(%q) failed: %v", level, err)
		}
	}
	if _, err := ParseLogLevel("verbose"); err == nil {
		t.Error("ParseLogLevel(verbose) should fail")
	}
}
