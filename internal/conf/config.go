// config.go: settings struct and functions to load and save NatureCast settings.
package conf

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

//go:embed config.yaml
var configFiles embed.FS

var (
	settingsInstance *Settings
	settingsMutex    sync.RWMutex
	once             sync.Once
)

// LogConfig contains settings for application logging.
type LogConfig struct {
	Enabled bool   // true to enable file logging
	Path    string // path to log file directory
	Level   string // minimum log level: trace, debug, info, warn, error
}

// MainSettings contains top-level application settings.
type MainSettings struct {
	Name string    // node name, used in logs and API responses
	Log  LogConfig // logging configuration
}

// ResolverSettings tunes the species resolution cascade.
type ResolverSettings struct {
	DesiredCount     int // candidate species to gather per resolution
	NarrowRadiusKm   int // first upstream search radius
	ExpandedRadiusKm int // second upstream search radius
	CacheMaxPerClass int // max cache entries per taxonomic class
	CooldownHours    int // no-repeat window for selected species
}

// GBIFSettings configures the upstream biodiversity occurrence API client.
type GBIFSettings struct {
	Endpoint         string // occurrence search endpoint
	TimeoutSeconds   int    // per-request timeout
	ResultLimit      int    // max records per request
	MaxRetries       int    // attempts for transient failures
	FailureThreshold int    // consecutive failures before the breaker opens
	OpenSeconds      int    // breaker open window after repeated failures
	Debug            bool   // true to enable request/response debug logging
}

// WeatherSettings contains weather collaborator settings.
type WeatherSettings struct {
	Provider     string // "none" or "openmeteo"
	Endpoint     string // forecast endpoint
	CacheMinutes int    // weather snapshot cache TTL
	Debug        bool   // true to enable debug mode
}

// NarrationSettings configures the text generation collaborator.
type NarrationSettings struct {
	Provider string // "template" or "gemini"
	Model    string // generative model name
	APIKey   string // API key for the generative provider
}

// WebServerSettings contains settings for the HTTP API server.
type WebServerSettings struct {
	Enabled bool   // true to enable the web server
	Host    string // bind address
	Port    string // port to listen on
	Debug   bool   // true to enable request logging
}

// Settings is the root configuration struct.
type Settings struct {
	Debug bool // global debug flag

	Main      MainSettings
	Resolver  ResolverSettings
	GBIF      GBIFSettings
	Weather   WeatherSettings
	Narration NarrationSettings
	WebServer WebServerSettings
}

// Load reads the configuration into a new Settings instance and stores it
// as the package-level instance.
func Load() (*Settings, error) {
	settingsMutex.Lock()
	defer settingsMutex.Unlock()

	settings := &Settings{}

	if err := initViper(); err != nil {
		return nil, fmt.Errorf("error initializing viper: %w", err)
	}

	if err := viper.Unmarshal(settings); err != nil {
		return nil, fmt.Errorf("error unmarshaling config into struct: %w", err)
	}

	if err := ValidateSettings(settings); err != nil {
		return nil, fmt.Errorf("error validating settings: %w", err)
	}

	settingsInstance = settings
	return settingsInstance, nil
}

// initViper initializes viper with defaults, config paths and env bindings.
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

	// Environment variables override file values, e.g. NATURECAST_NARRATION_APIKEY
	viper.SetEnvPrefix("naturecast")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// Set default values for each configuration parameter,
	// function defined in defaults.go
	setDefaultConfig()

	err = viper.ReadInConfig()
	if err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if errors.As(err, &configFileNotFoundError) {
			// Config file not found, create config with defaults
			return createDefaultConfig()
		}
		return fmt.Errorf("fatal error reading config file: %w", err)
	}

	return nil
}

// createDefaultConfig creates a default config file and writes it to the default config path
func createDefaultConfig() error {
	configPaths, err := GetDefaultConfigPaths()
	if err != nil {
		return fmt.Errorf("error getting default config paths: %w", err)
	}
	configPath := filepath.Join(configPaths[0], "config.yaml")
	defaultConfig := getDefaultConfig()

	if err := os.MkdirAll(filepath.Dir(configPath), 0o755); err != nil {
		return fmt.Errorf("error creating directories for config file: %w", err)
	}

	if err := os.WriteFile(configPath, []byte(defaultConfig), 0o644); err != nil {
		return fmt.Errorf("error writing default config file: %w", err)
	}

	fmt.Println("Created default config file at:", configPath)
	return viper.ReadInConfig()
}

// getDefaultConfig reads the default configuration from the embedded config.yaml file.
func getDefaultConfig() string {
	data, err := fs.ReadFile(configFiles, "config.yaml")
	if err != nil {
		log.Fatalf("Error reading embedded config file: %v", err)
	}
	return string(data)
}

// GetDefaultConfigPaths returns the ordered list of directories searched for config.yaml.
func GetDefaultConfigPaths() ([]string, error) {
	var paths []string

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("error fetching user home directory: %w", err)
	}

	paths = append(paths,
		filepath.Join(homeDir, ".config", "naturecast"),
		".",
	)

	return paths, nil
}

// GetSettings returns the current settings instance
func GetSettings() *Settings {
	settingsMutex.RLock()
	defer settingsMutex.RUnlock()
	return settingsInstance
}

// Setting returns the current settings instance, initializing it if necessary
func Setting() *Settings {
	once.Do(func() {
		if settingsInstance == nil {
			_, err := Load()
			if err != nil {
				log.Fatalf("Error loading settings: %v", err)
			}
		}
	})
	return GetSettings()
}

// SaveYAMLConfig writes the settings to the YAML configuration file.
// It overwrites the existing file, not preserving comments or structure.
func SaveYAMLConfig(configPath string, settings *Settings) error {
	yamlData, err := yaml.Marshal(settings)
	if err != nil {
		return fmt.Errorf("error marshaling settings to YAML: %w", err)
	}

	// Write to a temporary file first so the final rename is atomic
	tempFile, err := os.CreateTemp(filepath.Dir(configPath), "config-*.yaml")
	if err != nil {
		return fmt.Errorf("error creating temporary config file: %w", err)
	}
	tempName := tempFile.Name()

	if _, err := tempFile.Write(yamlData); err != nil {
		tempFile.Close()
		os.Remove(tempName)
		return fmt.Errorf("error writing temporary config file: %w", err)
	}
	if err := tempFile.Close(); err != nil {
		os.Remove(tempName)
		return fmt.Errorf("error closing temporary config file: %w", err)
	}

	if err := os.Rename(tempName, configPath); err != nil {
		os.Remove(tempName)
		return fmt.Errorf("error replacing config file: %w", err)
	}

	return nil
}
