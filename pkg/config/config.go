// Package config loads Aura API credentials from an .ini file with
// environment variable overrides.
// Precedence: environment variables > credentials file > defaults
package config

import (
	"fmt"
	"os"

	"gopkg.in/ini.v1"
)

// Default endpoints for the public Aura API. The credentials file can
// override both, which is mainly useful against test deployments.
const (
	DefaultAPIBase  = "https://api.neo4j.io/v1/instances/"
	DefaultTokenURL = "https://api.neo4j.io/oauth/token"
)

// Section is the credentials file section holding the AURA_* keys.
const Section = "AURA"

// Config holds the connection details for the Aura API.
type Config struct {
	APIBase       string // instance API endpoint (AURA_API)
	ConnectionURL string // bolt URI of the instance (AURA_URL)
	TokenURL      string // OAuth2 token endpoint (AURA_TOKEN_URL)
	ClientID      string // API client id (AURA_API_CLIENT_ID)
	ClientSecret  string // API client secret (AURA_CLIENT_SECRET)
}

// defaultConfig returns a Config with the public API endpoints.
func defaultConfig() *Config {
	return &Config{
		APIBase:  DefaultAPIBase,
		TokenURL: DefaultTokenURL,
	}
}

// Load loads credentials from the file at path, then applies AURA_*
// environment variable overrides. A missing file is not an error as long
// as the environment provides the required values; an unreadable or
// unparseable file is.
func Load(path string) (*Config, error) {
	cfg := defaultConfig()

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			iniFile, err := ini.Load(path)
			if err != nil {
				return nil, fmt.Errorf("failed to parse credentials file %s: %w", path, err)
			}

			section := iniFile.Section(Section)

			if section.HasKey("AURA_API") {
				cfg.APIBase = section.Key("AURA_API").String()
			}
			if section.HasKey("AURA_URL") {
				cfg.ConnectionURL = section.Key("AURA_URL").String()
			}
			if section.HasKey("AURA_TOKEN_URL") {
				cfg.TokenURL = section.Key("AURA_TOKEN_URL").String()
			}
			if section.HasKey("AURA_API_CLIENT_ID") {
				cfg.ClientID = section.Key("AURA_API_CLIENT_ID").String()
			}
			if section.HasKey("AURA_CLIENT_SECRET") {
				cfg.ClientSecret = section.Key("AURA_CLIENT_SECRET").String()
			}
		} else if !os.IsNotExist(err) {
			return nil, fmt.Errorf("cannot access credentials file %s: %w", path, err)
		}
	}

	// Override with environment variables
	if v := os.Getenv("AURA_API"); v != "" {
		cfg.APIBase = v
	}
	if v := os.Getenv("AURA_URL"); v != "" {
		cfg.ConnectionURL = v
	}
	if v := os.Getenv("AURA_TOKEN_URL"); v != "" {
		cfg.TokenURL = v
	}
	if v := os.Getenv("AURA_API_CLIENT_ID"); v != "" {
		cfg.ClientID = v
	}
	if v := os.Getenv("AURA_CLIENT_SECRET"); v != "" {
		cfg.ClientSecret = v
	}

	if err := cfg.validate(path); err != nil {
		return nil, err
	}

	return cfg, nil
}

// validate checks that the merged config can authenticate at all.
func (c *Config) validate(path string) error {
	missing := ""
	switch {
	case c.ClientID == "":
		missing = "AURA_API_CLIENT_ID"
	case c.ClientSecret == "":
		missing = "AURA_CLIENT_SECRET"
	case c.TokenURL == "":
		missing = "AURA_TOKEN_URL"
	case c.APIBase == "":
		missing = "AURA_API"
	}
	if missing == "" {
		return nil
	}
	if path == "" {
		return fmt.Errorf("missing %s: set the %s environment variable", missing, missing)
	}
	return fmt.Errorf("missing %s: set it in the [%s] section of %s or the %s environment variable",
		missing, Section, path, missing)
}
