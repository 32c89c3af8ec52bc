// Package config loads server settings from a YAML file and the
// environment.
//
// Precedence, lowest first: built-in defaults, the YAML file, LOSTFOUND_*
// environment variables, command-line flags (applied by the caller).
package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config is the server configuration.
type Config struct {
	Addr    string `yaml:"addr"`
	DBPath  string `yaml:"db"`
	LogPath string `yaml:"log"`

	// SecretKey signs tokens. When empty a secret generated on first run
	// and kept in the database is used.
	SecretKey string `yaml:"secret_key"`

	// ClientURL is the web client base URL used in emailed links.
	ClientURL string `yaml:"client_url"`

	UploadsDir string `yaml:"uploads_dir"`

	Admin AdminConfig `yaml:"admin"`
	SMTP  SMTPConfig  `yaml:"smtp"`
}

// AdminConfig describes the administrator seeded into a new database.
type AdminConfig struct {
	Username string `yaml:"username"`
	Email    string `yaml:"email"`
}

// SMTPConfig configures outgoing mail. Mail is disabled unless host, user
// and password are all set.
type SMTPConfig struct {
	Host       string `yaml:"host"`
	User       string `yaml:"user"`
	Password   string `yaml:"password"`
	From       string `yaml:"from"`
	SkipVerify bool   `yaml:"skip_verify"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Addr:       ":8080",
		DBPath:     "lostfound.sqlite3",
		ClientURL:  "http://localhost:3000",
		UploadsDir: "uploads",
		Admin: AdminConfig{
			Username: "Admin",
			Email:    "admin@localhost",
		},
		SMTP: SMTPConfig{
			From: "Lostfound <noreply@localhost>",
		},
	}
}

// Load reads the YAML file at path over the defaults and then applies the
// environment. An empty path skips the file.
func Load(path string) (*Config, error) {
	return load(path, os.LookupEnv)
}

func load(path string, lookup func(string) (string, bool)) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config %s: %w", path, err)
		}
	}

	if err := cfg.ApplyEnv(lookup); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyEnv overrides fields from LOSTFOUND_* variables found by lookup.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	strs := []struct {
		key string
		dst *string
	}{
		{"LOSTFOUND_ADDR", &c.Addr},
		{"LOSTFOUND_DB", &c.DBPath},
		{"LOSTFOUND_SECRET_KEY", &c.SecretKey},
		{"LOSTFOUND_CLIENT_URL", &c.ClientURL},
		{"LOSTFOUND_UPLOADS_DIR", &c.UploadsDir},
		{"LOSTFOUND_SMTP_HOST", &c.SMTP.Host},
		{"LOSTFOUND_SMTP_USER", &c.SMTP.User},
		{"LOSTFOUND_SMTP_PASSWORD", &c.SMTP.Password},
		{"LOSTFOUND_SMTP_FROM", &c.SMTP.From},
	}
	for _, s := range strs {
		if v, ok := lookup(s.key); ok {
			*s.dst = v
		}
	}

	if v, ok := lookup("LOSTFOUND_SMTP_SKIP_VERIFY"); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("LOSTFOUND_SMTP_SKIP_VERIFY: %w", err)
		}
		c.SMTP.SkipVerify = b
	}
	return nil
}
