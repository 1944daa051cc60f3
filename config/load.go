package config

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/spf13/viper"

	"github.com/cartops/proctools/errors"
)

var (
	globalConfig  *Config
	viperInstance *viper.Viper
)

// Load reads the proctools configuration using Viper.
func Load() (*Config, error) {
	if globalConfig != nil {
		return globalConfig, nil
	}

	v := initViper()

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, errors.Wrap(err, "unmarshal config")
	}

	globalConfig = &config
	return globalConfig, nil
}

// LoadFromFile loads configuration from a specific file path.
func LoadFromFile(configPath string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(configPath)
	v.SetConfigType("toml")
	SetDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return nil, errors.Wrapf(err, "read config file %s", configPath)
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, errors.Wrapf(err, "unmarshal config from %s", configPath)
	}
	return &config, nil
}

// Reset clears the cached configuration (useful for testing).
func Reset() {
	globalConfig = nil
	viperInstance = nil
}

// LogsDir returns the folder for logging content, including the per-member
// logfiles and the run-results database.
func (c *Config) LogsDir() string {
	return filepath.Join(c.BaseDir, "logs")
}

// RunResultsDBPath returns the run-results database path, applying the
// default location under LogsDir when not configured explicitly.
func (c *Config) RunResultsDBPath() string {
	if c.Database.Path != "" {
		return c.Database.Path
	}
	return filepath.Join(c.LogsDir(), "Run_Results.sqlite3")
}

// initViper initializes Viper with configuration sources and defaults.
func initViper() *viper.Viper {
	if viperInstance != nil {
		return viperInstance
	}

	v := viper.New()

	// PROC_BASE_DIR, PROC_SMTP_HOST, etc.
	v.SetEnvPrefix("PROC")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	SetDefaults(v)

	// Optional project config file; defaults cover its absence.
	v.SetConfigName("proctools")
	v.SetConfigType("toml")
	v.AddConfigPath(".")
	v.AddConfigPath(defaultBaseDir())
	_ = v.ReadInConfig()

	viperInstance = v
	return v
}

// defaultBaseDir resolves the processing environment folder when PROC_BASE_DIR
// is unset: %LOCALAPPDATA%\ProcTools on Windows, XDG data dir elsewhere.
func defaultBaseDir() string {
	if runtime.GOOS == "windows" {
		if localAppData := os.Getenv("LOCALAPPDATA"); localAppData != "" {
			return filepath.Join(localAppData, "ProcTools")
		}
	}
	if dataHome := os.Getenv("XDG_DATA_HOME"); dataHome != "" {
		return filepath.Join(dataHome, "proctools")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "proctools"
	}
	return filepath.Join(home, ".local", "share", "proctools")
}
