package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/ssbgp/dss-simulator/pkg/types"
)

const (
	// DefaultDispatcherAddr is the dispatcher host used when none is configured
	DefaultDispatcherAddr = "localhost"

	// DefaultDispatcherPort is the dispatcher port used when none is configured
	DefaultDispatcherPort = 32014

	// DefaultPollInterval is the wait between polls when no simulation is available
	DefaultPollInterval = 10 * time.Second

	// DefaultRetryBackoff is the wait between dispatcher reconnection attempts
	DefaultRetryBackoff = 10 * time.Second

	// ConfigFileName is the optional configuration file inside the install dir
	ConfigFileName = "simulator.yaml"

	// EngineFileName is the engine jar expected inside the install dir
	EngineFileName = "ssbgp-simulator.jar"

	// IdentityFileName is the worker identity file inside the install dir
	IdentityFileName = "uuid.txt"
)

// Config holds the worker configuration. Values come from three layers:
// built-in defaults, the optional simulator.yaml in the install dir, and
// command line flags (applied by the caller on top of the loaded config).
type Config struct {
	DispatcherAddr string               `yaml:"dispatcher_addr"`
	DispatcherPort int                  `yaml:"dispatcher_port"`
	PollInterval   Duration             `yaml:"poll_interval"`
	RetryBackoff   Duration             `yaml:"retry_backoff"`
	RecoveryPolicy types.RecoveryPolicy `yaml:"recovery_policy"`
	StatusAddr     string               `yaml:"status_addr"`
	LogLevel       string               `yaml:"log_level"`
	LogJSON        bool                 `yaml:"log_json"`
}

// Default returns a Config populated with built-in defaults.
func Default() *Config {
	return &Config{
		DispatcherAddr: DefaultDispatcherAddr,
		DispatcherPort: DefaultDispatcherPort,
		PollInterval:   Duration(DefaultPollInterval),
		RetryBackoff:   Duration(DefaultRetryBackoff),
		RecoveryPolicy: types.RecoveryArchive,
		LogLevel:       "info",
	}
}

// Load returns the configuration for an install dir. A missing simulator.yaml
// is not an error; the defaults are returned unchanged.
func Load(installDir string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(filepath.Join(installDir, ConfigFileName))
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", ConfigFileName, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", ConfigFileName, err)
	}

	if !cfg.RecoveryPolicy.Valid() {
		return nil, fmt.Errorf("unknown recovery_policy: %q", cfg.RecoveryPolicy)
	}
	if cfg.PollInterval <= 0 {
		return nil, fmt.Errorf("poll_interval must be positive: %v", cfg.PollInterval)
	}
	if cfg.RetryBackoff <= 0 {
		return nil, fmt.Errorf("retry_backoff must be positive: %v", cfg.RetryBackoff)
	}

	return cfg, nil
}

// DispatcherURL returns the base URL of the dispatcher RPC endpoint.
func (c *Config) DispatcherURL() string {
	return fmt.Sprintf("http://%s:%d", c.DispatcherAddr, c.DispatcherPort)
}

// Layout maps out the fixed file structure inside an install dir.
type Layout struct {
	InstallDir    string
	TopologiesDir string
	ReportsDir    string
	LogsDir       string
	IdentityFile  string
	EngineJar     string
}

// NewLayout builds the layout for an install dir. It does not touch the
// filesystem; use Ensure to create the directories.
func NewLayout(installDir string) *Layout {
	return &Layout{
		InstallDir:    installDir,
		TopologiesDir: filepath.Join(installDir, "topologies"),
		ReportsDir:    filepath.Join(installDir, "reports"),
		LogsDir:       filepath.Join(installDir, "logs"),
		IdentityFile:  filepath.Join(installDir, IdentityFileName),
		EngineJar:     filepath.Join(installDir, EngineFileName),
	}
}

// Ensure creates the topologies, reports and logs directories if missing.
// The install dir itself must already exist.
func (l *Layout) Ensure() error {
	for _, dir := range []string{l.TopologiesDir, l.ReportsDir, l.LogsDir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	return nil
}
