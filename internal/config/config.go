package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Server struct {
		Port           int           `yaml:"port"`
		ReadTimeout    time.Duration `yaml:"readTimeout"`
		WriteTimeout   time.Duration `yaml:"writeTimeout"`
		MaxUploadMB    int64         `yaml:"maxUploadMB"`
		AllowedOrigins []string      `yaml:"allowedOrigins"`
	} `yaml:"server"`

	Log struct {
		Mode   string `yaml:"mode"` // dev | prod
		Level  string `yaml:"level"`
		Redact bool   `yaml:"redact"`
		Salt   string `yaml:"salt"`
	} `yaml:"log"`

	AI struct {
		Provider string `yaml:"provider"` // openai | gemini
		OpenAI   struct {
			APIKey    string `yaml:"apiKey"`
			Model     string `yaml:"model"`
			BaseURL   string `yaml:"baseURL"`
			MaxTokens int    `yaml:"maxTokens"`
		} `yaml:"openai"`
		Gemini struct {
			APIKey      string  `yaml:"apiKey"`
			Model       string  `yaml:"model"`
			Temperature float32 `yaml:"temperature"`
		} `yaml:"gemini"`
	} `yaml:"ai"`

	Imaging struct {
		MaxDimension int `yaml:"maxDimension"`
		JPEGQuality  int `yaml:"jpegQuality"`
		MaxPixels    int `yaml:"maxPixels"` // decode budget, width*height
	} `yaml:"imaging"`

	Auth struct {
		JWTSecret string `yaml:"jwtSecret"`
		Issuer    string `yaml:"issuer"`
	} `yaml:"auth"`

	RateLimit struct {
		Rate  float64 `yaml:"rate"` // tokens per second
		Burst int     `yaml:"burst"`
	} `yaml:"rateLimit"`

	// DataService is the remote persistence collaborator used by cmd/api.
	DataService struct {
		URL     string        `yaml:"url"`
		APIKey  string        `yaml:"apiKey"`
		Timeout time.Duration `yaml:"timeout"`
	} `yaml:"dataService"`

	Database struct {
		Driver   string `yaml:"driver"` // mysql | postgres | pgx
		Host     string `yaml:"host"`
		Port     int    `yaml:"port"`
		User     string `yaml:"user"`
		Password string `yaml:"password"`
		Name     string `yaml:"name"`
		SSLMode  string `yaml:"sslMode"`
	} `yaml:"database"`

	Minio struct {
		Enabled    bool          `yaml:"enabled"`
		Endpoint   string        `yaml:"endpoint"`
		AccessKey  string        `yaml:"accessKey"`
		SecretKey  string        `yaml:"secretKey"`
		BucketName string        `yaml:"bucketName"`
		Region     string        `yaml:"region"`
		UseSSL     bool          `yaml:"useSSL"`
		PresignTTL time.Duration `yaml:"presignTTL"` // 0 = public URL
	} `yaml:"minio"`

	Redis struct {
		Addr     string        `yaml:"addr"` // empty = cache disabled
		Password string        `yaml:"password"`
		DB       int           `yaml:"db"`
		TTL      time.Duration `yaml:"ttl"`
	} `yaml:"redis"`
}

// Load baca file config.yaml, lalu .env dan environment override.
// A missing file is fine: defaults plus environment are used.
func Load(path string) (*Config, error) {
	if err := loadDotEnv(); err != nil {
		return nil, err
	}

	var cfg Config
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return nil, err
	default:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	}

	cfg.applyEnv()
	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func loadDotEnv() error {
	f := os.Getenv("ENV_FILE")
	if f == "" {
		f = ".env"
	}
	if _, err := os.Stat(f); err != nil {
		return nil
	}
	if err := godotenv.Load(f); err != nil {
		return fmt.Errorf("load %s: %w", f, err)
	}
	return nil
}

func (c *Config) applyEnv() {
	override := func(dst *string, key string) {
		if v := strings.TrimSpace(os.Getenv(key)); v != "" {
			*dst = v
		}
	}
	override(&c.AI.OpenAI.APIKey, "OPENAI_API_KEY")
	override(&c.AI.Gemini.APIKey, "GEMINI_API_KEY")
	override(&c.AI.Provider, "AI_PROVIDER")
	override(&c.Auth.JWTSecret, "JWT_SECRET")
	override(&c.DataService.APIKey, "DATASVC_API_KEY")
	override(&c.DataService.URL, "DATASVC_URL")
	override(&c.Database.Password, "DATABASE_PASSWORD")
	override(&c.Minio.SecretKey, "MINIO_SECRET_KEY")
	override(&c.Redis.Password, "REDIS_PASSWORD")
	override(&c.Log.Mode, "LOG_MODE")
	if v := os.Getenv("PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			c.Server.Port = p
		}
	}
}

func (c *Config) applyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Server.ReadTimeout == 0 {
		c.Server.ReadTimeout = 15 * time.Second
	}
	// AI call bisa lama, jadi write timeout lebih longgar
	if c.Server.WriteTimeout == 0 {
		c.Server.WriteTimeout = 120 * time.Second
	}
	if c.Server.MaxUploadMB == 0 {
		c.Server.MaxUploadMB = 10
	}
	if len(c.Server.AllowedOrigins) == 0 {
		c.Server.AllowedOrigins = []string{"*"}
	}
	if c.Log.Mode == "" {
		c.Log.Mode = "dev"
	}
	if c.AI.Provider == "" {
		c.AI.Provider = "openai"
	}
	if c.AI.OpenAI.Model == "" {
		c.AI.OpenAI.Model = "gpt-4o"
	}
	if c.AI.OpenAI.MaxTokens == 0 {
		c.AI.OpenAI.MaxTokens = 2048
	}
	if c.AI.Gemini.Model == "" {
		c.AI.Gemini.Model = "gemini-1.5-flash"
	}
	if c.Imaging.MaxDimension == 0 {
		c.Imaging.MaxDimension = 1568
	}
	if c.Imaging.JPEGQuality == 0 {
		c.Imaging.JPEGQuality = 85
	}
	if c.Imaging.MaxPixels == 0 {
		c.Imaging.MaxPixels = 40_000_000
	}
	if c.RateLimit.Rate == 0 {
		c.RateLimit.Rate = 1
	}
	if c.RateLimit.Burst == 0 {
		c.RateLimit.Burst = 5
	}
	if c.DataService.Timeout == 0 {
		c.DataService.Timeout = 10 * time.Second
	}
	if c.Database.Driver == "" {
		c.Database.Driver = "mysql"
	}
	if c.Database.Port == 0 {
		if c.Database.Driver == "mysql" {
			c.Database.Port = 3306
		} else {
			c.Database.Port = 5432
		}
	}
	if c.Database.SSLMode == "" {
		c.Database.SSLMode = "disable"
	}
	if c.Redis.TTL == 0 {
		c.Redis.TTL = 24 * time.Hour
	}
}

func (c *Config) validate() error {
	switch c.AI.Provider {
	case "openai", "gemini":
	default:
		return fmt.Errorf("ai.provider: unknown provider %q", c.AI.Provider)
	}
	switch c.Database.Driver {
	case "mysql", "postgres", "pgx":
	default:
		return fmt.Errorf("database.driver: unknown driver %q", c.Database.Driver)
	}
	if c.DataService.URL != "" {
		u, err := url.Parse(c.DataService.URL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return fmt.Errorf("dataService.url: %q is not an http(s) URL", c.DataService.URL)
		}
	}
	if c.Imaging.JPEGQuality < 1 || c.Imaging.JPEGQuality > 100 {
		return fmt.Errorf("imaging.jpegQuality: %d out of range 1-100", c.Imaging.JPEGQuality)
	}
	return nil
}

// MaxUploadBytes is the request body cap for uploads.
func (c *Config) MaxUploadBytes() int64 { return c.Server.MaxUploadMB << 20 }

// Helper untuk build DSN MySQL
func (c *Config) MySQLDSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true&charset=utf8mb4&loc=UTC",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
	)
}

// PostgresDSN builds a URL-form DSN understood by both lib/pq and pgx.
func (c *Config) PostgresDSN() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.Database.User, c.Database.Password),
		Host:     fmt.Sprintf("%s:%d", c.Database.Host, c.Database.Port),
		Path:     "/" + c.Database.Name,
		RawQuery: "sslmode=" + url.QueryEscape(c.Database.SSLMode),
	}
	return u.String()
}

// DSN picks the DSN form matching Database.Driver.
func (c *Config) DSN() string {
	if c.Database.Driver == "mysql" {
		return c.MySQLDSN()
	}
	return c.PostgresDSN()
}
