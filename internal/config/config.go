package config

import (
	"encoding/hex"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	// Bloque app (opcional en YAML). Si no está, queda vacío.
	App struct {
		// dev | staging | prod
		Env string `yaml:"app_env"`
	} `yaml:"app"`

	Server struct {
		Addr string `yaml:"addr"`
		// PublicURL es la base pública del servicio (detrás del proxy),
		// usada para armar la redirect_uri del flujo OAuth.
		PublicURL string `yaml:"public_url"`
	} `yaml:"server"`

	Storage struct {
		Driver  string `yaml:"driver"` // fs | postgres
		DSN     string `yaml:"dsn"`
		DataDir string `yaml:"data_dir"`

		Postgres struct {
			MaxOpenConns int `yaml:"max_open_conns"`
			MaxIdleConns int `yaml:"max_idle_conns"`
		} `yaml:"postgres"`
	} `yaml:"storage"`

	Slack struct {
		ClientID      string   `yaml:"client_id"`
		ClientSecret  string   `yaml:"client_secret"`
		SigningSecret string   `yaml:"signing_secret"`
		Scopes        []string `yaml:"scopes"`
		// APIBaseURL permite apuntar a un stub en tests/e2e. Vacío = api real.
		APIBaseURL string `yaml:"api_base_url"`
	} `yaml:"slack"`

	Security struct {
		// EncryptionKey: 64 hex chars (32 bytes) para el vault AES-GCM.
		EncryptionKey string `yaml:"encryption_key"`
	} `yaml:"security"`

	OAuth struct {
		StateTTL time.Duration `yaml:"state_ttl"`
	} `yaml:"oauth"`

	Events struct {
		QueueSize int `yaml:"queue_size"`
		Workers   int `yaml:"workers"`
	} `yaml:"events"`
}

// Load lee el YAML (opcional: path vacío ⇒ solo defaults + env),
// aplica defaults y overrides de entorno, y valida.
func Load(path string) (*Config, error) {
	var c Config
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		if err := yaml.Unmarshal(b, &c); err != nil {
			return nil, err
		}
	}

	// sane defaults
	if c.Server.Addr == "" {
		c.Server.Addr = ":3000"
	}
	if c.Storage.Driver == "" {
		c.Storage.Driver = "fs"
	}
	if c.Storage.DataDir == "" {
		c.Storage.DataDir = "./data/slackjohn"
	}
	if c.OAuth.StateTTL == 0 {
		c.OAuth.StateTTL = 10 * time.Minute
	}
	if c.Events.QueueSize == 0 {
		c.Events.QueueSize = 256
	}
	if c.Events.Workers == 0 {
		c.Events.Workers = 4
	}

	// Overrides por env
	c.applyEnvOverrides()

	if err := c.Validate(); err != nil {
		return nil, err
	}

	return &c, nil
}

// ---- Helpers env ----

func getEnvStr(key string) (string, bool) {
	v := os.Getenv(key)
	return v, v != ""
}
func getEnvInt(key string) (int, bool) {
	if s, ok := getEnvStr(key); ok {
		if i, err := strconv.Atoi(strings.TrimSpace(s)); err == nil {
			return i, true
		}
	}
	return 0, false
}
func getEnvDur(key string) (time.Duration, bool) {
	if s, ok := getEnvStr(key); ok {
		if d, err := time.ParseDuration(strings.TrimSpace(s)); err == nil {
			return d, true
		}
	}
	return 0, false
}
func getEnvCSV(key string) ([]string, bool) {
	if s, ok := getEnvStr(key); ok {
		if strings.TrimSpace(s) == "" {
			return []string{}, true
		}
		parts := strings.Split(s, ",")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			p = strings.TrimSpace(p)
			if p != "" {
				out = append(out, p)
			}
		}
		return out, true
	}
	return nil, false
}

// applyEnvOverrides: pisa config.yaml con variables de entorno.
func (c *Config) applyEnvOverrides() {
	// APP
	if v, ok := getEnvStr("APP_ENV"); ok {
		c.App.Env = strings.ToLower(v)
	}

	// SERVER
	if v, ok := getEnvStr("SERVER_ADDR"); ok {
		c.Server.Addr = v
	}
	if v, ok := getEnvStr("PUBLIC_URL"); ok {
		c.Server.PublicURL = strings.TrimRight(strings.TrimSpace(v), "/")
	}

	// STORAGE
	if v, ok := getEnvStr("STORAGE_DRIVER"); ok {
		c.Storage.Driver = v
	}
	if v, ok := getEnvStr("STORAGE_DSN"); ok {
		c.Storage.DSN = v
	}
	// Alias habitual en despliegues
	if v, ok := getEnvStr("DATABASE_URL"); ok {
		c.Storage.DSN = v
	}
	if v, ok := getEnvStr("DATA_DIR"); ok {
		c.Storage.DataDir = v
	}
	if v, ok := getEnvInt("POSTGRES_MAX_OPEN_CONNS"); ok {
		c.Storage.Postgres.MaxOpenConns = v
	}
	if v, ok := getEnvInt("POSTGRES_MAX_IDLE_CONNS"); ok {
		c.Storage.Postgres.MaxIdleConns = v
	}

	// SLACK
	if v, ok := getEnvStr("SLACK_CLIENT_ID"); ok {
		c.Slack.ClientID = strings.TrimSpace(v)
	}
	if v, ok := getEnvStr("SLACK_CLIENT_SECRET"); ok {
		c.Slack.ClientSecret = strings.TrimSpace(v)
	}
	if v, ok := getEnvStr("SLACK_SIGNING_SECRET"); ok {
		c.Slack.SigningSecret = strings.TrimSpace(v)
	}
	if v, ok := getEnvCSV("SLACK_SCOPES"); ok && len(v) > 0 {
		c.Slack.Scopes = v
	}
	if v, ok := getEnvStr("SLACK_API_BASE_URL"); ok {
		c.Slack.APIBaseURL = strings.TrimRight(strings.TrimSpace(v), "/")
	}

	// SECURITY
	if v, ok := getEnvStr("ENCRYPTION_KEY"); ok {
		c.Security.EncryptionKey = strings.TrimSpace(v)
	}

	// OAUTH
	if v, ok := getEnvDur("OAUTH_STATE_TTL"); ok {
		c.OAuth.StateTTL = v
	}

	// EVENTS
	if v, ok := getEnvInt("EVENTS_QUEUE_SIZE"); ok {
		c.Events.QueueSize = v
	}
	if v, ok := getEnvInt("EVENTS_WORKERS"); ok {
		c.Events.Workers = v
	}
}

// Validate chequea los valores sin los cuales el servicio no puede operar.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Slack.SigningSecret) == "" {
		return fmt.Errorf("config: slack.signing_secret is required (SLACK_SIGNING_SECRET)")
	}
	if strings.TrimSpace(c.Slack.ClientID) == "" {
		return fmt.Errorf("config: slack.client_id is required (SLACK_CLIENT_ID)")
	}
	if strings.TrimSpace(c.Slack.ClientSecret) == "" {
		return fmt.Errorf("config: slack.client_secret is required (SLACK_CLIENT_SECRET)")
	}

	key := strings.TrimSpace(c.Security.EncryptionKey)
	if key == "" {
		return fmt.Errorf("config: security.encryption_key is required (ENCRYPTION_KEY)")
	}
	if raw, err := hex.DecodeString(key); err != nil || len(raw) != 32 {
		return fmt.Errorf("config: security.encryption_key must be 64 hex chars (32 bytes)")
	}

	switch c.Storage.Driver {
	case "fs":
		if strings.TrimSpace(c.Storage.DataDir) == "" {
			return fmt.Errorf("config: storage.data_dir is required with the fs driver")
		}
	case "postgres":
		if strings.TrimSpace(c.Storage.DSN) == "" {
			return fmt.Errorf("config: storage.dsn is required with the postgres driver (DATABASE_URL)")
		}
	default:
		return fmt.Errorf("config: unknown storage driver %q", c.Storage.Driver)
	}

	if strings.TrimSpace(c.Server.PublicURL) == "" {
		return fmt.Errorf("config: server.public_url is required (PUBLIC_URL)")
	}

	return nil
}

// RedirectURI arma la URL de callback OAuth a partir de la base pública.
func (c *Config) RedirectURI() string {
	return strings.TrimRight(c.Server.PublicURL, "/") + "/slack/oauth_redirect"
}
