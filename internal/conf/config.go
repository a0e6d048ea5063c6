// Package conf loads and saves xpic settings.
//
// Settings are read with viper from config.yaml, environment variables
// prefixed with XPIC_ and command-line flags bound by the cmd package.
package conf

import (
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/fhluo/xpic/internal/errors"
	"github.com/fhluo/xpic/internal/logger"
	"github.com/fhluo/xpic/pkg/bing"
)

//go:embed config.yaml
var configFiles embed.FS

// Settings contains all configuration options for xpic.
type Settings struct {
	Debug  bool        `yaml:"debug"`
	Market bing.Market `yaml:"market"`

	Paths struct {
		DataDir  string `yaml:"datadir"`  // per-market JSON snapshots
		CacheDir string `yaml:"cachedir"` // thumbnail cache
	} `yaml:"paths"`

	Refresh RefreshSettings `yaml:"refresh"`

	HTTP struct {
		Timeout     time.Duration `yaml:"timeout"`
		UserAgent   string        `yaml:"useragent"`
		RateLimit   float64       `yaml:"ratelimit"`   // requests per second for bulk downloads
		Concurrency int           `yaml:"concurrency"` // parallel bulk downloads
	} `yaml:"http"`

	Bing struct {
		BaseURL string `yaml:"baseurl"`
	} `yaml:"bing"`

	Logging logger.LoggingConfig `yaml:"logging"`

	Sentry struct {
		Enabled bool   `yaml:"enabled"`
		DSN     string `yaml:"dsn"`
	} `yaml:"sentry"`

	WebServer struct {
		Listen  string `yaml:"listen"`
		Metrics bool   `yaml:"metrics"` // expose /metrics
	} `yaml:"webserver"`
}

// RefreshSettings controls when and how market data is refreshed.
type RefreshSettings struct {
	MirrorEnabled   bool          `yaml:"mirrorenabled"`
	MirrorURL       string        `yaml:"mirrorurl"` // {market} is replaced by the market code
	MirrorThreshold time.Duration `yaml:"mirrorthreshold"`
	APIThreshold    time.Duration `yaml:"apithreshold"`
	Count           int           `yaml:"count"`
	UHD             bool          `yaml:"uhd"`
	CacheTTL        time.Duration `yaml:"cachettl"`
}

var (
	settingsInstance *Settings
	// fileSettings is what Load read from the file and environment, before
	// platform defaults and command-line overrides
	fileSettings  Settings
	settingsMutex sync.RWMutex
)

// Load reads the configuration file, environment variables and bound flags
// into a Settings instance. A default config file is created when none exists.
func Load() (*Settings, error) {
	settingsMutex.Lock()
	defer settingsMutex.Unlock()

	if err := initViper(); err != nil {
		return nil, fmt.Errorf("error initializing viper: %w", err)
	}

	settings := &Settings{}
	if err := viper.Unmarshal(settings); err != nil {
		return nil, errors.New(fmt.Errorf("error unmarshaling config into struct: %w", err)).
			Category(errors.CategoryConfiguration).
			Component("configuration").
			Build()
	}

	loaded := *settings

	// an explicit empty value in the file falls back to the platform default
	dataDir, cacheDir := defaultDirs()
	if settings.Paths.DataDir == "" {
		settings.Paths.DataDir = dataDir
	}
	if settings.Paths.CacheDir == "" {
		settings.Paths.CacheDir = cacheDir
	}

	if err := ValidateSettings(settings); err != nil {
		return nil, errors.New(fmt.Errorf("error validating settings: %w", err)).
			Category(errors.CategoryValidation).
			Component("configuration").
			Build()
	}

	settingsInstance = settings
	fileSettings = loaded
	return settingsInstance, nil
}

// initViper registers defaults and environment bindings and reads config.yaml.
func initViper() error {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	configPaths, err := GetDefaultConfigPaths()
	if err != nil {
		return fmt.Errorf("error getting default config paths: %w", err)
	}
	for _, path := range configPaths {
		viper.AddConfigPath(path)
	}

	setDefaultConfig()

	if err := configureEnvironmentVariables(); err != nil {
		GetLogger().Warn("environment configuration issues", logger.Error(err))
	}

	if err := viper.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if errors.As(err, &configFileNotFoundError) {
			return createDefaultConfig(configPaths[0])
		}
		return errors.New(fmt.Errorf("fatal error reading config file: %w", err)).
			Category(errors.CategoryFileParsing).
			Component("configuration").
			Build()
	}

	return nil
}

// createDefaultConfig writes the embedded config.yaml to dir and reads it back.
func createDefaultConfig(dir string) error {
	configPath := filepath.Join(dir, "config.yaml")

	data, err := fs.ReadFile(configFiles, "config.yaml")
	if err != nil {
		return fmt.Errorf("error reading embedded config: %w", err)
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.New(fmt.Errorf("error creating directories for config file: %w", err)).
			Category(errors.CategoryFileIO).
			Component("configuration").
			FileContext(dir).
			Build()
	}

	if err := os.WriteFile(configPath, data, 0o644); err != nil { //nolint:gosec // config is not secret by default
		return errors.New(fmt.Errorf("error writing default config file: %w", err)).
			Category(errors.CategoryFileIO).
			Component("configuration").
			FileContext(configPath).
			Build()
	}

	GetLogger().Info("created default config file", logger.String("path", configPath))
	return viper.ReadInConfig()
}

// SaveSettings applies update to the settings as read by Load, writes them
// to the config file in use and applies update to the live settings too.
// Command-line overrides and filled-in default paths are not persisted.
func SaveSettings(update func(*Settings)) error {
	settingsMutex.Lock()
	defer settingsMutex.Unlock()

	if settingsInstance == nil {
		return errors.Newf("settings not loaded").
			Category(errors.CategoryConfiguration).
			Component("configuration").
			Build()
	}

	configPath := viper.ConfigFileUsed()
	if configPath == "" {
		var err error
		if configPath, err = FindConfigFile(); err != nil {
			return fmt.Errorf("error finding config file: %w", err)
		}
	}

	persisted := fileSettings
	update(&persisted)
	if err := SaveYAMLConfig(configPath, &persisted); err != nil {
		return err
	}

	fileSettings = persisted
	update(settingsInstance)
	GetLogger().Info("saved settings", logger.String("path", configPath))
	return nil
}

// SaveYAMLConfig writes settings to configPath. It overwrites the existing
// file, not preserving comments or structure.
func SaveYAMLConfig(configPath string, settings *Settings) error {
	yamlData, err := yaml.Marshal(settings)
	if err != nil {
		return fmt.Errorf("error marshaling settings to YAML: %w", err)
	}

	tempFile, err := os.CreateTemp(filepath.Dir(configPath), "config-*.yaml")
	if err != nil {
		return errors.New(fmt.Errorf("error creating temporary file: %w", err)).
			Category(errors.CategoryFileIO).
			Component("configuration").
			FileContext(configPath).
			Build()
	}
	tempFileName := tempFile.Name()
	defer func() { _ = os.Remove(tempFileName) }()

	if _, err := tempFile.Write(yamlData); err != nil {
		_ = tempFile.Close()
		return fmt.Errorf("error writing to temporary file: %w", err)
	}
	if err := tempFile.Close(); err != nil {
		return fmt.Errorf("error closing temporary file: %w", err)
	}

	if err := os.Rename(tempFileName, configPath); err != nil {
		return errors.New(fmt.Errorf("error replacing config file: %w", err)).
			Category(errors.CategoryFileIO).
			Component("configuration").
			FileContext(configPath).
			Build()
	}

	return nil
}
