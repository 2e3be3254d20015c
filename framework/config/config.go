package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config is the central typed configuration struct.
// Embed or extend it in your app's own AppConfig.
type Config struct {
	App  AppConfig
	Log  LogConfig
	DB   DBConfig
	Mail MailConfig
}

type AppConfig struct {
	Name  string
	Env   string // local | production | testing
	Debug bool
	URL   string
	Port  string
	Key   string
}

type LogConfig struct {
	Level   string // debug | info | warn | error
	Channel string
	JSON    bool
}

type DBConfig struct {
	Driver   string
	Host     string
	Port     string
	Database string
	Username string
	Password string
}

type MailConfig struct {
	Driver string
	Host   string
	Port   string
	From   string
}

// Load reads .env (if present), an optional YAML config file, and the
// process environment, and populates a Config. Precedence per key:
// environment variable, then YAML value, then built-in default.
//
// The YAML file path comes from CONFIG_FILE (default "config/app.yaml");
// nested keys map to env names by section — APP_NAME reads "app.name",
// MAIL_FROM_ADDRESS reads "mail.from_address".
//
// Call once at bootstrap: cfg := config.Load()
func Load(envFiles ...string) *Config {
	files := envFiles
	if len(files) == 0 {
		files = []string{".env"}
	}
	// Non-fatal: .env may not exist in production
	_ = godotenv.Load(files...)

	l := loader{file: loadFile(env("CONFIG_FILE", "config/app.yaml"))}

	return &Config{
		App: AppConfig{
			Name:  l.str("APP_NAME", "Illumine"),
			Env:   l.str("APP_ENV", "local"),
			Debug: l.boolean("APP_DEBUG", true),
			URL:   l.str("APP_URL", "http://localhost"),
			Port:  l.str("APP_PORT", "8000"),
			Key:   l.str("APP_KEY", ""),
		},
		Log: LogConfig{
			Level:   l.str("LOG_LEVEL", "info"),
			Channel: l.str("LOG_CHANNEL", "app"),
			JSON:    l.boolean("LOG_JSON", false),
		},
		DB: DBConfig{
			Driver:   l.str("DB_DRIVER", "mysql"),
			Host:     l.str("DB_HOST", "127.0.0.1"),
			Port:     l.str("DB_PORT", "3306"),
			Database: l.str("DB_DATABASE", ""),
			Username: l.str("DB_USERNAME", "root"),
			Password: l.str("DB_PASSWORD", ""),
		},
		Mail: MailConfig{
			Driver: l.str("MAIL_DRIVER", "smtp"),
			Host:   l.str("MAIL_HOST", ""),
			Port:   l.str("MAIL_PORT", "587"),
			From:   l.str("MAIL_FROM_ADDRESS", ""),
		},
	}
}

// Get returns a raw env value, falling back to defaultVal.
// Environment only — the YAML layer is consulted by Load.
func Get(key, defaultVal string) string {
	return env(key, defaultVal)
}

// GetInt returns an int env value.
func GetInt(key string, defaultVal int) int {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return defaultVal
	}
	return i
}

// GetBool returns a bool env value.
func GetBool(key string, defaultVal bool) bool {
	return envBool(key, defaultVal)
}

// ── loader ──────────────────────────────────────────────────────────────────

// fileValues holds the YAML config flattened to dotted keys: "app.name".
type fileValues map[string]string

type loader struct {
	file fileValues
}

func (l loader) str(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	if v, ok := l.file[filePath(key)]; ok && v != "" {
		return v
	}
	return fallback
}

func (l loader) boolean(key string, fallback bool) bool {
	raw := os.Getenv(key)
	if raw == "" {
		raw = l.file[filePath(key)]
	}
	if raw == "" {
		return fallback
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		return fallback
	}
	return b
}

// filePath maps an env key to its dotted YAML path:
// APP_NAME → app.name, MAIL_FROM_ADDRESS → mail.from_address.
func filePath(envKey string) string {
	section, rest, found := strings.Cut(envKey, "_")
	if !found {
		return strings.ToLower(envKey)
	}
	return strings.ToLower(section) + "." + strings.ToLower(rest)
}

// loadFile parses the YAML file at path. Missing or malformed files are
// non-fatal, like a missing .env.
func loadFile(path string) fileValues {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil
	}
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil
	}
	out := make(fileValues)
	flatten("", raw, out)
	return out
}

func flatten(prefix string, node map[string]any, out fileValues) {
	for k, v := range node {
		key := k
		if prefix != "" {
			key = prefix + "." + k
		}
		if child, ok := v.(map[string]any); ok {
			flatten(key, child, out)
			continue
		}
		out[key] = fmt.Sprintf("%v", v)
	}
}

// ── helpers ─────────────────────────────────────────────────────────────────

func env(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}
