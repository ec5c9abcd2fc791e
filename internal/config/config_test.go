package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestRead(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json5")
	err := os.WriteFile(path, []byte(`{
		username: "12345678900",
		password: "hunter2",
		portal: {
			base_url: "http://localhost:9000/aluno/",
			timeout_seconds: 10,
			routes: { home: "inicio.aspx" },
		},
		server: { allow_origins: ["http://localhost:3000"] },
		telemetry: { traces: { http_endpoint: "http://localhost:4318" } },
	}`), 0600)
	if err != nil {
		t.Fatal(err)
	}

	cfg, err := Read(path)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())
	require.Equal(t, "12345678900", cfg.Username)
	require.Equal(t, 8080, cfg.Server.Port)
	require.Equal(t, 60, cfg.Server.SessionTtlMinutes)
	require.Equal(t, []string{"http://localhost:3000"}, cfg.Server.AllowOrigins)
	require.Equal(t, "http://localhost:4318", cfg.Telemetry.Traces.HttpEndpoint)

	opts := cfg.ClientOptions(nil)
	require.Equal(t, "http://localhost:9000/aluno/", opts.BaseUrl)
	require.Equal(t, 10*time.Second, opts.Timeout)
	require.Equal(t, "inicio.aspx", opts.Routes.Home)
	require.Equal(t, "", opts.Routes.Login)
}

func TestReadMissingUsesEnvironment(t *testing.T) {
	t.Setenv("FATEC_USERNAME", "env-user")
	t.Setenv("FATEC_PASSWORD", "env-pass")

	cfg, err := Read(filepath.Join(t.TempDir(), "config.json5"))
	require.NoError(t, err)
	require.Equal(t, "env-user", cfg.Username)
	require.Equal(t, "env-pass", cfg.Password)
	require.NoError(t, cfg.Validate())
}

func TestValidate(t *testing.T) {
	require.Error(t, Config{Username: "only-user"}.Validate())
	require.Error(t, Config{}.Validate())
}
