// Package config loads server configuration from the environment and carries
// the inventory policy (defaults and required fields) that callers pass into
// the core. The policy is explicit state handed to operations, never a
// process-wide global.
package config

import (
	"os"
	"strings"

	"github.com/joho/godotenv"

	"github.com/solehq/soletrack/internal/model"
)

// Config is the server configuration.
type Config struct {
	DBPath  string
	Addr    string
	LogPath string

	Policy Policy
}

// Policy governs record creation: defaults applied to blank fields and the
// set of fields that must be present. Different deployments tune this
// without touching the core.
type Policy struct {
	DefaultLocation string
	DefaultVendor   string
	RequiredFields  []string
}

// Apply fills a draft's blank location/vendor with the policy defaults.
func (p Policy) Apply(draft *model.RecordDraft) {
	if strings.TrimSpace(draft.Location) == "" && p.DefaultLocation != "" {
		draft.Location = p.DefaultLocation
	}
	if strings.TrimSpace(draft.Vendor) == "" && p.DefaultVendor != "" {
		draft.Vendor = p.DefaultVendor
	}
}

// Rules converts the policy into the validation rule set the model checks.
func (p Policy) Rules() model.ValidationRules {
	if len(p.RequiredFields) == 0 {
		return model.DefaultRules()
	}
	return model.ValidationRules{RequiredFields: p.RequiredFields}
}

// Load reads configuration from the environment. A .env file in the working
// directory is read first if present; real environment variables win.
func Load() Config {
	_ = godotenv.Load()

	cfg := Config{
		DBPath:  envOr("SOLETRACK_DB", "soletrack.sqlite3"),
		Addr:    envOr("SOLETRACK_ADDR", ":8080"),
		LogPath: os.Getenv("SOLETRACK_LOG"),
		Policy: Policy{
			DefaultLocation: envOr("SOLETRACK_DEFAULT_LOCATION", ""),
			DefaultVendor:   envOr("SOLETRACK_DEFAULT_VENDOR", ""),
		},
	}

	if fields := os.Getenv("SOLETRACK_REQUIRED_FIELDS"); fields != "" {
		for _, f := range strings.Split(fields, ",") {
			if f = strings.TrimSpace(f); f != "" {
				cfg.Policy.RequiredFields = append(cfg.Policy.RequiredFields, f)
			}
		}
	}

	return cfg
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
