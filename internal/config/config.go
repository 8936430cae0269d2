package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Provider endpoints by deployment environment.
const (
	EnvProduction = "production"
	EnvDevelop    = "develop"

	hostProduction = "https://na2.esign.net/restapi/v2"
	hostDevelop    = "https://demo.esign.net/restapi"
)

const defaultSubjectSuffix = "Signature Request"

// Config models signline.yml: provider credentials and client defaults.
// It is constructed once and handed to the session manager; nothing reads
// provider settings from process-wide state.
type Config struct {
	Environment string `yaml:"environment"`
	Host        string `yaml:"host"`

	Username      string `yaml:"username"`
	Password      string `yaml:"password"`
	IntegratorKey string `yaml:"integrator_key"`
	AccountID     string `yaml:"account_id"`

	AppTitle            string `yaml:"app_title"`
	DefaultEmailSubject string `yaml:"default_email_subject"`
	CallbackURL         string `yaml:"callback_url"`
	OutputDir           string `yaml:"output_dir"`

	// JWT configures the token-grant authentication mode. Optional; the
	// legacy credential header is used when absent.
	JWT JWTConfig `yaml:"jwt"`
}

// JWTConfig holds the RS256 token-grant settings.
type JWTConfig struct {
	IntegrationKey string `yaml:"integration_key"`
	UserID         string `yaml:"user_id"`
	PrivateKeyPath string `yaml:"private_key_path"`
	AuthHost       string `yaml:"auth_host"`
}

// Path returns the config file path for a workspace.
func Path(workspace string) string {
	if workspace == "" {
		workspace = "."
	}
	return filepath.Join(workspace, "signline.yml")
}

// Load reads and validates config from workspace.
func Load(workspace string) (*Config, error) {
	path := Path(workspace)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("config %s not found; create one with sgl config init", path)
		}
		return nil, err
	}
	return FromYAML(data)
}

// FromFile reads YAML config from the given path.
func FromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return FromYAML(data)
}

// FromYAML parses, defaults, and validates config from raw YAML bytes.
func FromYAML(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("invalid config yaml: %w", err)
	}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// ApplyDefaults fills host, subject, and output dir when unset. The host
// depends on the environment flag; the provider routes production traffic
// to a different endpoint than the demo sandbox.
func (c *Config) ApplyDefaults() {
	if c.Environment == "" {
		c.Environment = EnvDevelop
	}
	if c.Host == "" {
		if c.Environment == EnvProduction {
			c.Host = hostProduction
		} else {
			c.Host = hostDevelop
		}
	}
	if c.DefaultEmailSubject == "" {
		if c.AppTitle != "" {
			c.DefaultEmailSubject = c.AppTitle + " - " + defaultSubjectSuffix
		} else {
			c.DefaultEmailSubject = defaultSubjectSuffix
		}
	}
	if strings.TrimSpace(c.OutputDir) == "" {
		c.OutputDir = os.TempDir()
	}
}

// Validate ensures the config can open a provider session.
func (c *Config) Validate() error {
	if c.Environment != EnvProduction && c.Environment != EnvDevelop {
		return fmt.Errorf("config.environment must be %q or %q", EnvProduction, EnvDevelop)
	}
	if c.Host == "" {
		return fmt.Errorf("config.host is required")
	}
	if !strings.HasPrefix(c.Host, "http://") && !strings.HasPrefix(c.Host, "https://") {
		return fmt.Errorf("config.host must be an http(s) URL")
	}
	hasLegacy := c.Username != "" && c.Password != "" && c.IntegratorKey != ""
	hasJWT := c.JWT.IntegrationKey != "" && c.JWT.UserID != "" && c.JWT.PrivateKeyPath != ""
	if !hasLegacy && !hasJWT {
		return fmt.Errorf("config requires username/password/integrator_key or a jwt block")
	}
	return nil
}

// Default returns a config seeded for the demo environment.
func Default(appTitle string) *Config {
	cfg := &Config{}
	_ = yaml.Unmarshal([]byte(fmt.Sprintf(defaultTemplate, appTitle)), cfg)
	cfg.ApplyDefaults()
	return cfg
}

// GenerateDefault returns default config YAML.
func GenerateDefault(appTitle string) string {
	return fmt.Sprintf(defaultTemplate, appTitle)
}

const defaultTemplate = `environment: develop

username: user@example.com
password: changeme
integrator_key: xxxxxxxx-xxxx-xxxx-xxxx-xxxxxxxxxxxx
account_id: ""

app_title: %s
callback_url: ""
output_dir: ""

jwt:
  integration_key: ""
  user_id: ""
  private_key_path: ""
  auth_host: ""
`
