// Package config loads the control plane's out-of-band operational
// secrets and defaults from the environment (spec §6.5). It never
// touches the state document — Config values must never be serialized
// there (see internal/state's secret-leak guard).
package config

import (
	"fmt"
	"os"
	"strings"
)

// Config holds everything an invocation needs that isn't persisted
// cluster state.
type Config struct {
	DOToken          string
	DNSToken         string
	DNSZoneID        string
	OriginCAKey      string
	SSHKeyName       string
	SSHPrivateKeyPath string

	DefaultRegion     string
	DefaultSize       string
	DefaultBaseDomain string
	StateDir          string
}

// MissingSecretsError names which required secrets were absent.
type MissingSecretsError struct {
	Missing []string
}

func (e *MissingSecretsError) Error() string {
	return fmt.Sprintf("missing required configuration: %s", strings.Join(e.Missing, ", "))
}

// Load reads Config from the environment, refusing to start if any
// required secret/identity value is absent.
func Load() (*Config, error) {
	cfg := &Config{
		DOToken:           os.Getenv("DYNIA_DO_TOKEN"),
		DNSToken:          os.Getenv("DYNIA_DNS_TOKEN"),
		DNSZoneID:         os.Getenv("DYNIA_DNS_ZONE_ID"),
		OriginCAKey:       os.Getenv("DYNIA_ORIGIN_CA_KEY"),
		SSHKeyName:        os.Getenv("DYNIA_SSH_KEY_NAME"),
		SSHPrivateKeyPath: os.Getenv("DYNIA_SSH_PRIVATE_KEY_PATH"),
		DefaultRegion:     envOr("DYNIA_REGION", "nyc3"),
		DefaultSize:       envOr("DYNIA_SIZE", "s-1vcpu-1gb"),
		DefaultBaseDomain: os.Getenv("DYNIA_BASE_DOMAIN"),
		StateDir:          envOr("DYNIA_STATE_DIR", ".dynia"),
	}

	var missing []string
	if cfg.DOToken == "" {
		missing = append(missing, "DYNIA_DO_TOKEN")
	}
	if cfg.DNSToken == "" {
		missing = append(missing, "DYNIA_DNS_TOKEN")
	}
	if cfg.DNSZoneID == "" {
		missing = append(missing, "DYNIA_DNS_ZONE_ID")
	}
	if cfg.OriginCAKey == "" {
		missing = append(missing, "DYNIA_ORIGIN_CA_KEY")
	}
	if cfg.SSHKeyName == "" {
		missing = append(missing, "DYNIA_SSH_KEY_NAME")
	}

	if len(missing) > 0 {
		return nil, &MissingSecretsError{Missing: missing}
	}

	return cfg, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
