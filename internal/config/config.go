package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Profile selects one of the named configuration presets.
type Profile string

const (
	Development Profile = "development"
	Production  Profile = "production"
)

// ParseProfile maps a profile name to a Profile.
func ParseProfile(name string) (Profile, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "dev", string(Development):
		return Development, nil
	case "prod", string(Production):
		return Production, nil
	}
	return "", fmt.Errorf("unknown profile %q", name)
}

type ServerConfig struct {
	Address string `mapstructure:"address"`
	Port    int    `mapstructure:"port"`
	Mode    string `mapstructure:"mode"`
}

type DatabaseConfig struct {
	URL     string `mapstructure:"url"`
	LogMode bool   `mapstructure:"log_mode"`
}

type JWTConfig struct {
	Secret string `mapstructure:"secret"`
}

type CORSConfig struct {
	Origins []string `mapstructure:"origins"`
}

// AdminConfig holds the admin M-PIN. MPinHash, when set, is a bcrypt hash
// checked in addition to the plain value.
type AdminConfig struct {
	MPin     string `mapstructure:"mpin"`
	MPinHash string `mapstructure:"mpin_hash"`
}

type StaticConfig struct {
	Dir string `mapstructure:"dir"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type AuditConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

type Config struct {
	Profile  Profile        `mapstructure:"-"`
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	JWT      JWTConfig      `mapstructure:"jwt"`
	CORS     CORSConfig     `mapstructure:"cors"`
	Admin    AdminConfig    `mapstructure:"admin"`
	Static   StaticConfig   `mapstructure:"static"`
	Log      LogConfig      `mapstructure:"log"`
	Audit    AuditConfig    `mapstructure:"audit"`
}

// env names read for each key, matching the variables the deployment already sets.
var envBindings = map[string]string{
	"server.address":    "SERVER_ADDRESS",
	"server.port":       "PORT",
	"server.mode":       "GIN_MODE",
	"database.url":      "DATABASE_URL",
	"database.log_mode": "DATABASE_LOG",
	"jwt.secret":        "JWT_SECRET_KEY",
	"cors.origins":      "CORS_ORIGINS",
	"admin.mpin":        "ADMIN_MPIN",
	"admin.mpin_hash":   "ADMIN_MPIN_HASH",
	"static.dir":        "STATIC_DIR",
	"log.level":         "LOG_LEVEL",
	"log.format":        "LOG_FORMAT",
	"audit.enabled":     "AUDIT_ENABLED",
}

func setDefaults(v *viper.Viper, p Profile) {
	v.SetDefault("server.address", "0.0.0.0")
	v.SetDefault("server.port", 5000)
	v.SetDefault("database.log_mode", false)
	v.SetDefault("cors.origins", []string{"*"})
	v.SetDefault("admin.mpin", "180623")
	v.SetDefault("admin.mpin_hash", "")
	v.SetDefault("static.dir", "dist")
	v.SetDefault("audit.enabled", true)

	switch p {
	case Production:
		v.SetDefault("server.mode", "release")
		v.SetDefault("database.url", "")
		v.SetDefault("jwt.secret", "")
		v.SetDefault("log.level", "info")
		v.SetDefault("log.format", "json")
	default:
		v.SetDefault("server.mode", "debug")
		v.SetDefault("database.url", "sqlite:///instance/journal-dev.db")
		v.SetDefault("jwt.secret", "dev-jwt-secret-change-me")
		v.SetDefault("log.level", "debug")
		v.SetDefault("log.format", "text")
	}
}

// Load resolves the configuration for profile p. Values come from the profile
// defaults, then the YAML file at path (or ./config.yaml when path is empty and
// the file exists), then the environment. A .env file in the working directory
// is loaded into the environment first.
func Load(p Profile, path string) (*Config, error) {
	if err := loadDotEnv(".env"); err != nil {
		return nil, err
	}

	v := viper.New()
	setDefaults(v, p)

	if path == "" {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	} else {
		v.SetConfigFile(path)
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	for key, env := range envBindings {
		if err := v.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("bind env %s: %w", env, err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	c.Profile = p
	c.CORS.Origins = normalizeOrigins(c.CORS.Origins)

	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Validate reports the first required setting that is missing.
func (c *Config) Validate() error {
	switch {
	case c.JWT.Secret == "":
		return fmt.Errorf("config %s: jwt secret is required (JWT_SECRET_KEY)", c.Profile)
	case c.Database.URL == "":
		return fmt.Errorf("config %s: database url is required (DATABASE_URL)", c.Profile)
	case c.Static.Dir == "":
		return fmt.Errorf("config %s: static dir is required (STATIC_DIR)", c.Profile)
	case c.Admin.MPin == "" && c.Admin.MPinHash == "":
		return fmt.Errorf("config %s: admin mpin or mpin hash is required", c.Profile)
	}
	return nil
}

// Addr is the listen address for the HTTP server.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Address, c.Server.Port)
}

// AllowAllOrigins reports whether the CORS policy is the wildcard.
func (c *Config) AllowAllOrigins() bool {
	for _, o := range c.CORS.Origins {
		if o == "*" {
			return true
		}
	}
	return len(c.CORS.Origins) == 0
}

func normalizeOrigins(in []string) []string {
	out := make([]string, 0, len(in))
	for _, raw := range in {
		for _, o := range strings.Split(raw, ",") {
			if o = strings.TrimSpace(o); o != "" {
				out = append(out, o)
			}
		}
	}
	if len(out) == 0 {
		return []string{"*"}
	}
	return out
}

func loadDotEnv(path string) error {
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}
