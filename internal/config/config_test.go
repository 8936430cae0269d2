package config_test

import (
	"os"
	"strings"
	"testing"

	"signline/internal/config"
)

func TestFromYAMLDefaults(t *testing.T) {
	cfg, err := config.FromYAML([]byte(`
username: u@example.com
password: secret
integrator_key: key-1
app_title: Portal
`))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if cfg.Environment != config.EnvDevelop {
		t.Fatalf("expected develop environment, got %s", cfg.Environment)
	}
	if !strings.Contains(cfg.Host, "demo.") {
		t.Fatalf("expected demo host default, got %s", cfg.Host)
	}
	if cfg.DefaultEmailSubject != "Portal - Signature Request" {
		t.Fatalf("unexpected subject: %s", cfg.DefaultEmailSubject)
	}
	if cfg.OutputDir != os.TempDir() {
		t.Fatalf("expected temp dir default, got %s", cfg.OutputDir)
	}
}

func TestProductionHostDefault(t *testing.T) {
	cfg, err := config.FromYAML([]byte(`
environment: production
username: u@example.com
password: secret
integrator_key: key-1
`))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if strings.Contains(cfg.Host, "demo.") {
		t.Fatalf("production config got demo host: %s", cfg.Host)
	}
}

func TestExplicitHostPreserved(t *testing.T) {
	cfg, err := config.FromYAML([]byte(`
host: https://example.test/restapi/v2
username: u@example.com
password: secret
integrator_key: key-1
`))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if cfg.Host != "https://example.test/restapi/v2" {
		t.Fatalf("host overwritten: %s", cfg.Host)
	}
}

func TestValidateRejectsMissingCredentials(t *testing.T) {
	_, err := config.FromYAML([]byte(`
username: u@example.com
`))
	if err == nil {
		t.Fatal("expected credential validation error")
	}
}

func TestValidateAcceptsJWTOnly(t *testing.T) {
	_, err := config.FromYAML([]byte(`
jwt:
  integration_key: ik-1
  user_id: user-1
  private_key_path: /tmp/key.pem
`))
	if err != nil {
		t.Fatalf("jwt-only config rejected: %v", err)
	}
}

func TestValidateRejectsBadEnvironment(t *testing.T) {
	_, err := config.FromYAML([]byte(`
environment: staging
username: u@example.com
password: secret
integrator_key: key-1
`))
	if err == nil {
		t.Fatal("expected environment validation error")
	}
}

func TestGenerateDefaultRoundTrips(t *testing.T) {
	cfg, err := config.FromYAML([]byte(config.GenerateDefault("Demo App")))
	if err != nil {
		t.Fatalf("default template invalid: %v", err)
	}
	if cfg.AppTitle != "Demo App" {
		t.Fatalf("unexpected app title: %s", cfg.AppTitle)
	}
}
