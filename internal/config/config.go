package config

import (
	"errors"
	"fatec-api/internal/components/telemetry"
	"fatec-api/internal/siga"
	"fatec-api/pkg/configutil"
	"fmt"
	"os"
	"time"
)

const DEFAULT_PATH = "config.json5"

type PortalConfig struct {
	BaseUrl          string      `json:"base_url"`
	TimeoutSeconds   int         `json:"timeout_seconds"`
	UserAgent        string      `json:"user_agent"`
	BrowserTransport bool        `json:"browser_transport"`
	Routes           siga.Routes `json:"routes"`
	// DumpDir receives every http exchange when set.
	DumpDir string `json:"dump_dir"`
}

type ServerConfig struct {
	Port              int      `json:"port"`
	AllowOrigins      []string `json:"allow_origins"`
	SessionTtlMinutes int      `json:"session_ttl_minutes"`
}

type Config struct {
	Username  string           `json:"username"`
	Password  string           `json:"password"`
	Portal    PortalConfig     `json:"portal"`
	Server    ServerConfig     `json:"server"`
	Telemetry telemetry.Config `json:"telemetry"`
}

// Read loads the config at `path` (and its .local override). A missing file is
// not an error, credentials can also come from FATEC_USERNAME and FATEC_PASSWORD.
func Read(path string) (Config, error) {
	cfg, err := configutil.ReadConfig[Config](path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	if username, ok := os.LookupEnv("FATEC_USERNAME"); ok {
		cfg.Username = username
	}
	if password, ok := os.LookupEnv("FATEC_PASSWORD"); ok {
		cfg.Password = password
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.SessionTtlMinutes == 0 {
		cfg.Server.SessionTtlMinutes = 60
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if c.Username == "" || c.Password == "" {
		return fmt.Errorf("missing credentials, set username and password in %s", DEFAULT_PATH)
	}
	return nil
}

// ClientOptions builds the portal client options, `output` may be nil.
func (c Config) ClientOptions(output telemetry.MessageOutput) siga.ClientOptions {
	return siga.ClientOptions{
		BaseUrl:          c.Portal.BaseUrl,
		Timeout:          time.Duration(c.Portal.TimeoutSeconds) * time.Second,
		UserAgent:        c.Portal.UserAgent,
		BrowserTransport: c.Portal.BrowserTransport,
		Routes:           c.Portal.Routes,
		Output:           output,
	}
}
