package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
)

// Keys used in the rc file and as environment overrides.
const (
	KeyAPIURL    = "ASSETS_API_URL"
	KeyToken     = "ASSETS_TOKEN"
	KeyUsername  = "ASSETS_USERNAME"
	KeyEditorURL = "ASSETS_EDITOR_URL"
	KeyLocale    = "ASSETS_LOCALE"
	KeyLogLevel  = "ASSETS_LOG_LEVEL"
)

const (
	DefaultEditorURL = "https://editor.p5js.org"
	DefaultLocale    = "en-US"
	rcName           = ".assetsrc"
)

type Config struct {
	APIURL    string
	Token     string
	Username  string
	EditorURL string
	Locale    string
	LogLevel  string

	// FromFile is set when values were read from an rc file.
	FromFile bool
}

// DefaultPath returns ~/.assetsrc, or ./.assetsrc when no home is known.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return rcName
	}
	return filepath.Join(home, rcName)
}

// Load reads path (missing is fine), then applies environment overrides
// and defaults.
func Load(path string) (Config, error) {
	var cfg Config
	values, err := godotenv.Read(path)
	switch {
	case err == nil:
		cfg.FromFile = true
		cfg.apply(values)
	case errors.Is(err, os.ErrNotExist):
	default:
		return Config{}, fmt.Errorf("read %s: %w", path, err)
	}

	cfg.apply(envValues())
	cfg.fillDefaults()
	return cfg, nil
}

// Save writes the persisted keys of cfg to path with 0600 permissions.
func Save(path string, cfg Config) error {
	if strings.TrimSpace(cfg.APIURL) == "" {
		return errors.New("api url is required")
	}
	values := map[string]string{KeyAPIURL: cfg.APIURL}
	if cfg.Token != "" {
		values[KeyToken] = cfg.Token
	}
	if cfg.Username != "" {
		values[KeyUsername] = cfg.Username
	}
	if cfg.EditorURL != "" {
		values[KeyEditorURL] = cfg.EditorURL
	}
	if cfg.Locale != "" {
		values[KeyLocale] = cfg.Locale
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config dir: %w", err)
		}
	}
	if err := godotenv.Write(values, path); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return os.Chmod(path, 0o600)
}

// Update applies fn to the values stored in path (ignoring the
// environment), fills defaults and saves the result.
func Update(path string, fn func(*Config)) (Config, error) {
	var cfg Config
	values, err := godotenv.Read(path)
	switch {
	case err == nil:
		cfg.apply(values)
	case errors.Is(err, os.ErrNotExist):
	default:
		return Config{}, fmt.Errorf("read %s: %w", path, err)
	}
	fn(&cfg)
	cfg.fillDefaults()
	if err := Save(path, cfg); err != nil {
		return Config{}, err
	}
	cfg.FromFile = true
	return cfg, nil
}

// SketchURL returns the editor link for a sketch path.
func (c Config) SketchURL(path string) string {
	return strings.TrimRight(c.EditorURL, "/") + path
}

func (c *Config) apply(values map[string]string) {
	set := func(dst *string, key string) {
		if v := strings.TrimSpace(values[key]); v != "" {
			*dst = v
		}
	}
	set(&c.APIURL, KeyAPIURL)
	set(&c.Token, KeyToken)
	set(&c.Username, KeyUsername)
	set(&c.EditorURL, KeyEditorURL)
	set(&c.Locale, KeyLocale)
	set(&c.LogLevel, KeyLogLevel)
}

func (c *Config) fillDefaults() {
	if c.EditorURL == "" {
		c.EditorURL = DefaultEditorURL
	}
	if c.APIURL == "" {
		c.APIURL = strings.TrimRight(c.EditorURL, "/") + "/editor"
	}
	if c.Locale == "" {
		c.Locale = DefaultLocale
	}
}

func envValues() map[string]string {
	keys := []string{KeyAPIURL, KeyToken, KeyUsername, KeyEditorURL, KeyLocale, KeyLogLevel}
	out := make(map[string]string, len(keys))
	for _, k := range keys {
		if v, ok := os.LookupEnv(k); ok {
			out[k] = v
		}
	}
	return out
}
