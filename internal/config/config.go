package config

import (
	"errors"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Defaults used when neither flags, environment nor a config file set a value.
const (
	DefaultHost          = "0.0.0.0"
	DefaultPort          = "5000"
	DefaultCatalogPath   = "data/tools.json"
	DefaultCachePath     = "data/cache.json"
	DefaultGitHubAPIURL  = "https://api.github.com"
	DefaultGitHubTimeout = 5 * time.Second
)

// EnvPrefix namespaces environment overrides, e.g. TOOLRANK_PORT.
const EnvPrefix = "TOOLRANK"

// StartupServerURLFormat is the format for the "server listening" log line (one %s for address).
const StartupServerURLFormat = "Starting tool marketplace server on http://%s"

// Config keys, shared by flags, environment and config files.
const (
	KeyHost          = "host"
	KeyPort          = "port"
	KeyCatalogPath   = "catalog-path"
	KeyCachePath     = "cache-path"
	KeyGitHubAPIURL  = "github-api-url"
	KeyGitHubTimeout = "github-timeout"
	KeyGitHubToken   = "github-token"
	KeyMetricsAddr   = "metrics-addr"
	KeyDebug         = "debug"
)

// Config holds application configuration
type Config struct {
	Host          string
	Port          string
	CatalogPath   string
	CachePath     string
	GitHubAPIURL  string
	GitHubTimeout time.Duration
	GitHubToken   string
	MetricsAddr   string
	Debug         bool
}

// Addr is the listen address for the tools endpoint.
func (c *Config) Addr() string {
	return net.JoinHostPort(c.Host, c.Port)
}

// RegisterFlags adds the configuration flags to fs.
func RegisterFlags(fs *pflag.FlagSet) {
	fs.String(KeyHost, DefaultHost, "interface to bind")
	fs.String(KeyPort, DefaultPort, "port for the tools endpoint")
	fs.String(KeyCatalogPath, DefaultCatalogPath, "path to the tool catalog (JSON or YAML)")
	fs.String(KeyCachePath, DefaultCachePath, "where to write the ranked cache file")
	fs.String(KeyGitHubAPIURL, DefaultGitHubAPIURL, "GitHub REST API base URL")
	fs.Duration(KeyGitHubTimeout, DefaultGitHubTimeout, "timeout for each GitHub request")
	fs.String(KeyMetricsAddr, "", "listen address for /metrics and /healthz (disabled when empty)")
	fs.Bool(KeyDebug, false, "enable debug logging")
}

// Load resolves configuration from defaults, an optional config file,
// environment variables and flags, in increasing order of precedence.
func Load(configFile string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	// Bare PORT and GITHUB_TOKEN are honoured for hosting platforms and CI.
	if err := v.BindEnv(KeyPort, EnvPrefix+"_PORT", "PORT"); err != nil {
		return nil, err
	}
	if err := v.BindEnv(KeyGitHubToken, EnvPrefix+"_GITHUB_TOKEN", "GITHUB_TOKEN"); err != nil {
		return nil, err
	}

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	if flags != nil {
		if err := v.BindPFlags(flags); err != nil {
			return nil, fmt.Errorf("bind flags: %w", err)
		}
	}

	cfg := &Config{
		Host:          v.GetString(KeyHost),
		Port:          v.GetString(KeyPort),
		CatalogPath:   v.GetString(KeyCatalogPath),
		CachePath:     v.GetString(KeyCachePath),
		GitHubAPIURL:  v.GetString(KeyGitHubAPIURL),
		GitHubTimeout: v.GetDuration(KeyGitHubTimeout),
		GitHubToken:   v.GetString(KeyGitHubToken),
		MetricsAddr:   v.GetString(KeyMetricsAddr),
		Debug:         v.GetBool(KeyDebug),
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault(KeyHost, DefaultHost)
	v.SetDefault(KeyPort, DefaultPort)
	v.SetDefault(KeyCatalogPath, DefaultCatalogPath)
	v.SetDefault(KeyCachePath, DefaultCachePath)
	v.SetDefault(KeyGitHubAPIURL, DefaultGitHubAPIURL)
	v.SetDefault(KeyGitHubTimeout, DefaultGitHubTimeout)
	v.SetDefault(KeyGitHubToken, "")
	v.SetDefault(KeyMetricsAddr, "")
	v.SetDefault(KeyDebug, false)
}

func (c *Config) validate() error {
	var errs []error
	if c.Port == "" {
		errs = append(errs, errors.New("port is required"))
	}
	if c.CatalogPath == "" {
		errs = append(errs, errors.New("catalog path is required"))
	}
	if c.GitHubTimeout <= 0 {
		errs = append(errs, fmt.Errorf("github timeout must be positive, got %s", c.GitHubTimeout))
	}
	return errors.Join(errs...)
}
