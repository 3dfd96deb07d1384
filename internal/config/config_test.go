package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeFile(t *testing.T, dir, name, body string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, []byte(body), 0o600); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return p
}

// Not parallel: these tests touch process environment.

func TestLoadYAMLAndDefaults(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("ENV_FILE", filepath.Join(dir, "missing.env"))
	p := writeFile(t, dir, "config.yaml", `
server:
  port: 9090
  writeTimeout: 45s
ai:
  provider: gemini
  gemini:
    model: gemini-1.5-pro
database:
  driver: pgx
  host: db
  user: art
  password: pw
  name: feedback
redis:
  addr: localhost:6379
  ttl: 2h
`)
	cfg, err := Load(p)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Port != 9090 || cfg.Server.WriteTimeout != 45*time.Second {
		t.Fatalf("server: got=%+v", cfg.Server)
	}
	if cfg.Server.ReadTimeout != 15*time.Second || cfg.MaxUploadBytes() != 10<<20 {
		t.Fatalf("defaults not applied: %+v", cfg.Server)
	}
	if cfg.AI.Provider != "gemini" || cfg.AI.Gemini.Model != "gemini-1.5-pro" || cfg.AI.OpenAI.Model != "gpt-4o" {
		t.Fatalf("ai: got=%+v", cfg.AI)
	}
	if cfg.Redis.TTL != 2*time.Hour {
		t.Fatalf("redis ttl: got=%v", cfg.Redis.TTL)
	}
	if got, want := cfg.DSN(), "postgres://art:pw@db:5432/feedback?sslmode=disable"; got != want {
		t.Fatalf("dsn: got=%q want=%q", got, want)
	}
}

func TestLoadEnvOverridesAndDotEnv(t *testing.T) {
	dir := t.TempDir()
	env := writeFile(t, dir, ".env", "JWT_SECRET=from-dotenv\nOPENAI_API_KEY=sk-dotenv\n")
	t.Setenv("ENV_FILE", env)
	t.Setenv("OPENAI_API_KEY", "sk-env")
	t.Setenv("DATABASE_PASSWORD", "s3cret")
	// godotenv never overrides a variable that is already set, even to "".
	t.Setenv("JWT_SECRET", "")
	os.Unsetenv("JWT_SECRET")

	cfg, err := Load(filepath.Join(dir, "absent.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.AI.OpenAI.APIKey != "sk-env" {
		t.Fatalf("process env must win over .env: got=%q", cfg.AI.OpenAI.APIKey)
	}
	if cfg.Auth.JWTSecret != "from-dotenv" {
		t.Fatalf("jwt secret: got=%q", cfg.Auth.JWTSecret)
	}
	if !strings.Contains(cfg.MySQLDSN(), ":s3cret@tcp(") {
		t.Fatalf("mysql dsn: got=%q", cfg.MySQLDSN())
	}
}

func TestLoadRejectsBadValues(t *testing.T) {
	t.Setenv("ENV_FILE", filepath.Join(t.TempDir(), "none"))
	tests := []struct {
		name string
		yaml string
	}{
		{"provider", "ai:\n  provider: claude\n"},
		{"driver", "database:\n  driver: sqlite\n"},
		{"datasvc url", "dataService:\n  url: ftp://x\n"},
		{"jpeg quality", "imaging:\n  jpegQuality: 101\n"},
		{"yaml", "server: [\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := writeFile(t, t.TempDir(), "config.yaml", tt.yaml)
			if _, err := Load(p); err == nil {
				t.Fatalf("expected error")
			}
		})
	}
}
