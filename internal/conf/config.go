// Package conf loads and holds the station controller settings. Settings
// come from a config.yaml file with environment variable overrides, read
// through viper.
package conf

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// LogConfig holds settings for a rotating log output
type LogConfig struct {
	Enabled bool   // true to enable this log
	Path    string // path to log file
}

// ServerSettings describes how to reach the station server
type ServerSettings struct {
	BaseURL string        // base URL of the station server, e.g. http://localhost:5000
	Timeout time.Duration // per-request timeout; a timeout counts as a failed request
}

// StationSettings holds the operator-facing controller settings
type StationSettings struct {
	Username          string        // login username
	Password          string        // login password
	ConfirmPhrase     string        // operator-set phrase required for destructive actions
	DetectionInterval time.Duration // cadence of the detection poll tick
	VideoInterval     time.Duration // cadence of the recorded-video discovery tick
}

// Settings is the root settings struct for the application
type Settings struct {
	Debug bool // true to enable debug log output

	Main struct {
		Name string    // name of this station instance
		Log  LogConfig // main log settings
	}

	Server  ServerSettings
	Station StationSettings
}

var (
	settingsInstance *Settings
	settingsMutex    sync.RWMutex
	settingsOnce     sync.Once
)

// Sets default values for the configuration.
func setDefaultConfig() {
	viper.SetDefault("debug", false)

	viper.SetDefault("main.name", "Vigia")
	viper.SetDefault("main.log.enabled", true)
	viper.SetDefault("main.log.path", "logs/vigia.log")

	viper.SetDefault("server.baseurl", "http://localhost:5000")
	viper.SetDefault("server.timeout", 10*time.Second)

	viper.SetDefault("station.username", "")
	viper.SetDefault("station.password", "")
	viper.SetDefault("station.confirmphrase", "")
	viper.SetDefault("station.detectioninterval", 1*time.Second)
	viper.SetDefault("station.videointerval", 5*time.Second)
}

// Load reads the configuration from the default search paths and the
// environment and returns the populated Settings. The result is also
// stored as the package-level settings instance returned by Setting().
func Load() (*Settings, error) {
	return load("")
}

// LoadFrom reads the configuration from an explicit file path instead of
// the default search paths. A missing or unreadable file is an error.
func LoadFrom(path string) (*Settings, error) {
	if path == "" {
		return nil, fmt.Errorf("config file path is empty")
	}
	return load(path)
}

func load(configFile string) (*Settings, error) {
	settings := &Settings{}

	if configFile != "" {
		viper.SetConfigFile(configFile)
	} else {
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")

		configPaths, err := GetDefaultConfigPaths()
		if err != nil {
			return nil, fmt.Errorf("error getting default config paths: %w", err)
		}
		for _, path := range configPaths {
			viper.AddConfigPath(path)
		}
	}

	viper.SetEnvPrefix("VIGIA")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	setDefaultConfig()

	if err := viper.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &configFileNotFoundError) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// No config file found, defaults and environment take over.
	}

	if err := viper.Unmarshal(settings); err != nil {
		return nil, fmt.Errorf("error unmarshaling config into struct: %w", err)
	}

	settingsMutex.Lock()
	settingsInstance = settings
	settingsMutex.Unlock()

	return settings, nil
}

// Setting returns the current settings instance, loading it on first use.
func Setting() *Settings {
	settingsOnce.Do(func() {
		settingsMutex.RLock()
		loaded := settingsInstance != nil
		settingsMutex.RUnlock()
		if !loaded {
			if _, err := Load(); err != nil {
				panic(fmt.Sprintf("error loading settings: %v", err))
			}
		}
	})

	settingsMutex.RLock()
	defer settingsMutex.RUnlock()
	return settingsInstance
}

// GetDefaultConfigPaths returns the directories searched for config.yaml,
// in order of precedence.
func GetDefaultConfigPaths() ([]string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("error fetching user home directory: %w", err)
	}

	return []string{
		".",
		filepath.Join(homeDir, ".config", "vigia"),
		"/etc/vigia",
	}, nil
}

// SaveSettings writes the given settings to the given path as YAML.
func SaveSettings(settings *Settings, path string) error {
	data, err := yaml.Marshal(settings)
	if err != nil {
		return fmt.Errorf("error marshaling settings to yaml: %w", err)
	}

	dir := filepath.Dir(path)
	if dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("error creating config directory %s: %w", dir, err)
		}
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("error writing settings file %s: %w", path, err)
	}
	return nil
}
