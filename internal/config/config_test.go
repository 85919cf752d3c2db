package config

import (
	"strings"
	"testing"
	"time"

	"github.com/alvinbaena/pwdcheck/pkg/hibp"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Should not fail: %s", err)
	}

	if cfg.ApiURL != hibp.DefaultBaseURL {
		t.Errorf("ApiURL: %s, want: %s", cfg.ApiURL, hibp.DefaultBaseURL)
	}
	if cfg.RetryMax != 3 {
		t.Errorf("RetryMax: %d, want: 3", cfg.RetryMax)
	}
	if cfg.Timeout != 30*time.Second {
		t.Errorf("Timeout: %v, want: 30s", cfg.Timeout)
	}
}

func TestLoad_Env(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("PWNED_API_URL", "http://localhost:8080")
	t.Setenv("PWNED_RETRY_MAX", "0")
	t.Setenv("PWNED_TIMEOUT", "5s")
	t.Setenv("PWNED_PADDING", "true")
	t.Setenv("SPEECH_CMD", "listen --lang en")
	t.Setenv("STORE_DIR", dir)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Should not fail: %s", err)
	}

	opts := cfg.ClientOptions()
	if opts.BaseURL != "http://localhost:8080" || opts.RetryMax != 0 || opts.Timeout != 5*time.Second || !opts.Padding {
		t.Errorf("Unexpected client options %+v", opts)
	}
	if cfg.SpeechCmd != "listen --lang en" || cfg.StoreDir != dir {
		t.Errorf("Unexpected config %+v", cfg)
	}
}

func TestLoad_Invalid(t *testing.T) {
	t.Setenv("PWNED_RETRY_MAX", "99")
	t.Setenv("STORE_DIR", "/definitely/not/here")

	_, err := Load()
	if err == nil {
		t.Fatalf("Should fail validation")
	}
	if !strings.Contains(err.Error(), "PWNED_RETRY_MAX") || !strings.Contains(err.Error(), "STORE_DIR") {
		t.Errorf("Error should name the invalid variables: %s", err)
	}
}
