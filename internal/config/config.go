package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/berrythewa/clipdeck/pkg/utils"
)

// Paths holds the resolved filesystem locations the daemon uses.
type Paths struct {
	BaseDir    string // base directory for config files
	ConfigFile string // path to config.yaml
	DataDir    string // directory for application data
	DBFile     string // path to the bbolt database
	LogDir     string // directory for log files
	SocketFile string // unix socket for the IPC boundary
	LockFile   string // single-instance lock file
}

// Config holds all daemon configuration.
type Config struct {
	DeviceID   string `json:"device_id" yaml:"device_id"`
	DeviceName string `json:"device_name" yaml:"device_name"`
	LogLevel   string `json:"log_level" yaml:"log_level"`

	Log LogConfig `json:"log" yaml:"log"`

	// History bounds and sampling.
	MaxItems        int   `json:"max_items" yaml:"max_items"`
	PollingInterval int64 `json:"polling_interval" yaml:"polling_interval"` // milliseconds

	// Hotkey binding plus the chain tried when it cannot be registered.
	Hotkey          string   `json:"hotkey" yaml:"hotkey"`
	HotkeyFallbacks []string `json:"hotkey_fallbacks" yaml:"hotkey_fallbacks"`

	// Resolved at load time, not persisted in the YAML file.
	SystemPaths Paths `json:"-" yaml:"-"`
}

// LogConfig holds logging-related configuration.
type LogConfig struct {
	EnableFileLogging bool `json:"enable_file_logging" yaml:"enable_file_logging"`
}

const (
	DefaultMaxItems        = 50
	DefaultPollingInterval = 500 // ms
	DefaultHotkey          = "Super+V"
)

// DefaultHotkeyFallbacks is the chain tried when the configured binding is
// already claimed by another process.
var DefaultHotkeyFallbacks = []string{"Ctrl+Alt+V", "Ctrl+Shift+V", "Super+Shift+V"}

// GetPaths returns the platform-specific filesystem layout, creating
// directories as needed.
func GetPaths() (*Paths, error) {
	baseDir := os.Getenv("CLIPDECK_CONFIG_DIR")
	if baseDir == "" {
		configDir, err := os.UserConfigDir()
		if err != nil {
			return nil, err
		}
		switch runtime.GOOS {
		case "darwin":
			baseDir = filepath.Join(configDir, "com.berrythewa.clipdeck")
		default:
			baseDir = filepath.Join(configDir, "clipdeck")
		}
	}

	dataDir := os.Getenv("CLIPDECK_DATA_DIR")
	if dataDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		if xdgDataHome := os.Getenv("XDG_DATA_HOME"); xdgDataHome != "" {
			dataDir = filepath.Join(xdgDataHome, "clipdeck")
		} else {
			dataDir = filepath.Join(homeDir, ".local", "share", "clipdeck")
		}
	}

	runDir := os.Getenv("XDG_RUNTIME_DIR")
	if runDir == "" {
		runDir = os.TempDir()
	}

	paths := &Paths{
		BaseDir:    baseDir,
		ConfigFile: filepath.Join(baseDir, "config.yaml"),
		DataDir:    dataDir,
		DBFile:     filepath.Join(dataDir, "clipdeck.db"),
		LogDir:     filepath.Join(dataDir, "logs"),
		SocketFile: filepath.Join(runDir, "clipdeck.sock"),
		LockFile:   filepath.Join(dataDir, "clipdeck.lock"),
	}

	for _, dir := range []string{paths.BaseDir, paths.DataDir, paths.LogDir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, err
		}
	}

	return paths, nil
}

// DefaultConfig returns a new Config with default values.
func DefaultConfig() *Config {
	paths, _ := GetPaths()
	cfg := &Config{
		DeviceID:        uuid.New().String(),
		DeviceName:      utils.GetHostname(),
		LogLevel:        "info",
		Log:             LogConfig{EnableFileLogging: true},
		MaxItems:        DefaultMaxItems,
		PollingInterval: DefaultPollingInterval,
		Hotkey:          DefaultHotkey,
		HotkeyFallbacks: append([]string(nil), DefaultHotkeyFallbacks...),
	}
	if paths != nil {
		cfg.SystemPaths = *paths
	}
	return cfg
}

// Load reads the configuration from configPath (or the default location when
// empty). The returned Config is always usable: a missing file is created
// with defaults, and a corrupt file degrades to defaults with a non-nil error
// the caller may log.
func Load(configPath string) (*Config, error) {
	paths, err := GetPaths()
	if err != nil {
		return DefaultConfig(), fmt.Errorf("failed to resolve config paths: %w", err)
	}
	if configPath == "" {
		configPath = paths.ConfigFile
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		cfg := DefaultConfig()
		cfg.SystemPaths = *paths
		if os.IsNotExist(err) {
			if saveErr := cfg.Save(configPath); saveErr != nil {
				return cfg, fmt.Errorf("failed to write default config: %w", saveErr)
			}
			return cfg, nil
		}
		return cfg, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		fallback := DefaultConfig()
		fallback.SystemPaths = *paths
		return fallback, fmt.Errorf("failed to parse config file, using defaults: %w", err)
	}

	cfg.SystemPaths = *paths
	cfg.fillDefaults()
	return &cfg, nil
}

// fillDefaults backfills zero-valued fields so old config files keep working
// when new fields are added.
func (c *Config) fillDefaults() {
	if c.DeviceID == "" {
		c.DeviceID = uuid.New().String()
	}
	if c.DeviceName == "" {
		c.DeviceName = utils.GetHostname()
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.MaxItems <= 0 {
		c.MaxItems = DefaultMaxItems
	}
	if c.PollingInterval <= 0 {
		c.PollingInterval = DefaultPollingInterval
	}
	if c.Hotkey == "" {
		c.Hotkey = DefaultHotkey
	}
	if len(c.HotkeyFallbacks) == 0 {
		c.HotkeyFallbacks = append([]string(nil), DefaultHotkeyFallbacks...)
	}
}

// PollEvery returns the clipboard sampling interval as a duration.
func (c *Config) PollEvery() time.Duration {
	return time.Duration(c.PollingInterval) * time.Millisecond
}

// Save writes the configuration to configPath.
func (c *Config) Save(configPath string) error {
	if err := os.MkdirAll(filepath.Dir(configPath), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}
