// Package config provides configuration management for the cqlrs CLI.
//
// Values are layered, lowest to highest precedence: built-in defaults,
// a YAML config file (cqlrs.yaml / cqlrs.yml or --config), environment
// variables with the CQLRS_ prefix, and CLI flags.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"

	"github.com/FlorianElke/cqlrs/internal/session"
)

// Defaults for a local single-node cluster.
const (
	DefaultHosts  = "127.0.0.1"
	DefaultPort   = 9042
	DefaultOutput = "table"
)

// Config holds all CLI configuration options.
type Config struct {
	Hosts           string `koanf:"hosts"` // comma-separated contact points
	Port            int    `koanf:"port"`
	Username        string `koanf:"username"`
	Password        string `koanf:"password"`
	Keyspace        string `koanf:"keyspace"`
	Output          string `koanf:"output"`
	Verbose         bool   `koanf:"verbose"`
	SSL             bool   `koanf:"ssl"`
	SSLCACert       string `koanf:"ssl_ca_cert"`
	SSLVerify       bool   `koanf:"ssl_verify"`
	Execute         string `koanf:"execute"`
	File            string `koanf:"file"`
	PasswordPrompt  bool   `koanf:"password_prompt"`
	ContinueOnError bool   `koanf:"continue_on_error"`
}

// findConfigFile finds the config file to use.
// Priority: explicit path > cqlrs.yaml > cqlrs.yml.
func findConfigFile(explicit string) string {
	if explicit != "" {
		return explicit
	}
	for _, name := range []string{"cqlrs.yaml", "cqlrs.yml"} {
		if _, err := os.Stat(name); err == nil {
			return name
		}
	}
	return ""
}

// Load layers defaults, config file, CQLRS_ environment variables, and
// explicitly set CLI flags into a Config.
func Load(cfgFile string, flags *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(map[string]interface{}{
		"hosts":  DefaultHosts,
		"port":   DefaultPort,
		"output": DefaultOutput,
	}, "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if path := findConfigFile(cfgFile); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", path, err)
		}
	}

	// CQLRS_SSL_CA_CERT -> ssl_ca_cert
	if err := k.Load(env.Provider("CQLRS_", ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, "CQLRS_"))
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	if flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, interface{}) {
			if !f.Changed {
				return "", nil
			}
			// Kebab-case flag names map to snake_case config keys.
			return strings.ReplaceAll(f.Name, "-", "_"), posflag.FlagVal(flags, f)
		}), nil); err != nil {
			return nil, fmt.Errorf("failed to load flags: %w", err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}
	return &cfg, nil
}

// HostList splits the comma-separated contact points into session hosts,
// honoring an explicit per-host port ("host:port" overrides --port).
func (c *Config) HostList() ([]session.Host, error) {
	var hosts []session.Host
	for _, raw := range strings.Split(c.Hosts, ",") {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		host := session.Host{Address: raw, Port: c.Port}
		if addr, port, ok := strings.Cut(raw, ":"); ok {
			var p int
			if _, err := fmt.Sscanf(port, "%d", &p); err != nil {
				return nil, fmt.Errorf("invalid host %q: bad port", raw)
			}
			host = session.Host{Address: addr, Port: p}
		}
		hosts = append(hosts, host)
	}
	if len(hosts) == 0 {
		return nil, fmt.Errorf("no contact points configured")
	}
	return hosts, nil
}

// TLSSettings converts the flat SSL options into session TLS settings.
func (c *Config) TLSSettings() session.TLSSettings {
	return session.TLSSettings{
		Enabled:    c.SSL,
		CACertPath: c.SSLCACert,
		Verify:     c.SSLVerify,
	}
}
