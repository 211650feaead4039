package utils

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v2"
)

const (
	ModeDev = "dev"
	ModeCSR = "csr"
)

// Config is read from the YAML file named by VITEHUB_CONFIG (optional),
// then overridden by individual VITEHUB_* variables.
type Config struct {
	Mode           string `yaml:"mode"`
	Root           string `yaml:"root"`
	Entry          string `yaml:"entry"`
	Manifest       string `yaml:"manifest"`
	DevURL         string `yaml:"dev_url"`
	AssetBase      string `yaml:"asset_base"`
	Title          string `yaml:"title"`
	Template       string `yaml:"template"`
	IncludeImports bool   `yaml:"include_imports"`
	Watch          bool   `yaml:"watch"`
	Minify         bool   `yaml:"minify"`
	HTTPAddr       string `yaml:"http_addr"`
	AuditDB        string `yaml:"audit_db"`
}

type AuthConfig struct {
	JWTSecret    string
	JWTIssuer    string
	JWTDuration  time.Duration
	PasswordHash string
}

type GrpcConfig struct {
	Addr string
}

func defaultConfig() Config {
	return Config{
		Mode:      ModeDev,
		Root:      "dist/client",
		Entry:     "src/main.ts",
		DevURL:    "http://localhost:5173",
		AssetBase: "/",
		HTTPAddr:  ":8080",
	}
}

func LoadConfig() (Config, error) {
	cfg := defaultConfig()

	if path := os.Getenv("VITEHUB_CONFIG"); path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	envString("VITEHUB_MODE", &cfg.Mode)
	envString("VITEHUB_ROOT", &cfg.Root)
	envString("VITEHUB_ENTRY", &cfg.Entry)
	envString("VITEHUB_MANIFEST", &cfg.Manifest)
	envString("VITEHUB_DEV_URL", &cfg.DevURL)
	envString("VITEHUB_ASSET_BASE", &cfg.AssetBase)
	envString("VITEHUB_TITLE", &cfg.Title)
	envString("VITEHUB_TEMPLATE", &cfg.Template)
	envString("VITEHUB_HTTP_ADDR", &cfg.HTTPAddr)
	envString("VITEHUB_AUDIT_DB", &cfg.AuditDB)
	envBool("VITEHUB_INCLUDE_IMPORTS", &cfg.IncludeImports)
	envBool("VITEHUB_WATCH", &cfg.Watch)
	envBool("VITEHUB_MINIFY", &cfg.Minify)

	cfg.Mode = strings.ToLower(strings.TrimSpace(cfg.Mode))
	if cfg.Mode != ModeDev && cfg.Mode != ModeCSR {
		return Config{}, fmt.Errorf("unknown mode %q (want %s or %s)", cfg.Mode, ModeDev, ModeCSR)
	}
	if strings.TrimSpace(cfg.Entry) == "" {
		return Config{}, fmt.Errorf("entry is required")
	}
	return cfg, nil
}

func LoadAuthConfig() AuthConfig {
	secret := os.Getenv("VITEHUB_JWT_SECRET")
	if secret == "" {
		// dev default (change for production)
		secret = "dev-secret-change-me"
	}

	issuer := os.Getenv("VITEHUB_JWT_ISSUER")
	if issuer == "" {
		issuer = "vitehub"
	}

	cfg := AuthConfig{
		JWTSecret:    secret,
		JWTIssuer:    issuer,
		JWTDuration:  24 * time.Hour,
		PasswordHash: os.Getenv("VITEHUB_ADMIN_PASSWORD_HASH"),
	}

	// hours; if parse fails, keep 24h
	if ttl := os.Getenv("VITEHUB_JWT_TTL_HOURS"); ttl != "" {
		if h, err := strconv.Atoi(ttl); err == nil && h > 0 {
			cfg.JWTDuration = time.Duration(h) * time.Hour
		}
	}
	return cfg
}

func LoadGrpcConfig() GrpcConfig {
	addr := os.Getenv("VITEHUB_GRPC_ADDR")
	if addr == "" {
		addr = ":9090"
	}
	return GrpcConfig{Addr: addr}
}

func envString(key string, dst *string) {
	if v, ok := os.LookupEnv(key); ok {
		*dst = v
	}
}

func envBool(key string, dst *bool) {
	v, ok := os.LookupEnv(key)
	if !ok {
		return
	}
	if b, err := strconv.ParseBool(v); err == nil {
		*dst = b
	}
}
