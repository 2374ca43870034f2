package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	Library LibraryConfig `mapstructure:"library"`
	Art     ArtConfig     `mapstructure:"art"`
	Cache   CacheConfig   `mapstructure:"cache"`
	UI      UIConfig      `mapstructure:"ui"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// LibraryConfig holds the music library location
type LibraryConfig struct {
	Path string `mapstructure:"path"` // Library root, also the last-resort art search scope
}

// ArtConfig controls how artwork is located and extracted
type ArtConfig struct {
	Enabled        bool          `mapstructure:"enabled"`         // Show cover art at all
	Extractor      string        `mapstructure:"extractor"`       // "auto", "ffmpeg" or "tag"
	FFmpegPath     string        `mapstructure:"ffmpeg_path"`     // ffmpeg binary name or path
	ExtractTimeout time.Duration `mapstructure:"extract_timeout"` // Kill extraction after this long
	ScratchDir     string        `mapstructure:"scratch_dir"`     // Where extracted pictures go, empty for temp dir
	PreferSidecar  bool          `mapstructure:"prefer_sidecar"`  // Skip extraction and search the directory first
	DominantColor  bool          `mapstructure:"dominant_color"`  // Compute a tint colour for ANSI rendering
}

// CacheConfig holds resolution cache configuration
type CacheConfig struct {
	Capacity int    `mapstructure:"capacity"` // Maximum directories remembered
	Persist  bool   `mapstructure:"persist"`  // Keep resolutions across runs in a bolt database
	Dir      string `mapstructure:"dir"`      // Database directory, empty for the default cache path
}

// UIConfig holds UI configuration
type UIConfig struct {
	Ansi              bool   `mapstructure:"ansi"` // Draw tinted ANSI art instead of a bitmap
	VisualizerEnabled bool   `mapstructure:"visualizer_enabled"`
	VisualizerHeight  int    `mapstructure:"visualizer_height"`
	MetadataHeight    int    `mapstructure:"metadata_height"`
	Theme             string `mapstructure:"theme"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	File  string `mapstructure:"file"`
	Level string `mapstructure:"level"`
}

// envKeyReplacer maps nested keys onto environment names (ui.ansi -> UI_ANSI)
var envKeyReplacer = strings.NewReplacer(".", "_")

// Defaults for values that Validate repairs
const (
	DefaultCacheCapacity    = 256
	DefaultExtractTimeout   = 5 * time.Second
	DefaultVisualizerHeight = 5
	DefaultMetadataHeight   = 4
)

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Library: LibraryConfig{
			Path: defaultLibraryPath(),
		},
		Art: ArtConfig{
			Enabled:        true,
			Extractor:      "auto",
			FFmpegPath:     "ffmpeg",
			ExtractTimeout: DefaultExtractTimeout,
			DominantColor:  true,
		},
		Cache: CacheConfig{
			Capacity: DefaultCacheCapacity,
		},
		UI: UIConfig{
			VisualizerEnabled: true,
			VisualizerHeight:  DefaultVisualizerHeight,
			MetadataHeight:    DefaultMetadataHeight,
			Theme:             "default",
		},
		Logging: LoggingConfig{
			File:  defaultLogPath(),
			Level: "INFO",
		},
	}
}

// Validate repairs out-of-range values in place
func (c *Config) Validate() {
	if c.Cache.Capacity < 1 {
		c.Cache.Capacity = DefaultCacheCapacity
	}
	if c.Art.ExtractTimeout <= 0 {
		c.Art.ExtractTimeout = DefaultExtractTimeout
	}
	if c.Art.Extractor == "" {
		c.Art.Extractor = "auto"
	}
	if c.UI.VisualizerHeight < 0 {
		c.UI.VisualizerHeight = 0
	}
	if c.UI.MetadataHeight < 0 {
		c.UI.MetadataHeight = 0
	}
}

// ReservedVisualizerRows is the visualizer height that the layout must
// keep free, zero when the visualizer is off
func (c *Config) ReservedVisualizerRows() int {
	if !c.UI.VisualizerEnabled {
		return 0
	}
	return c.UI.VisualizerHeight
}

// defaultLibraryPath returns ~/Music
func defaultLibraryPath() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, "Music")
}

// defaultLogPath returns the default log file path for the current OS
func defaultLogPath() string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), "sleeve", "sleeve.log")
	default:
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".local", "share", "sleeve", "sleeve.log")
	}
}

// defaultConfigPath returns the default config file path for the current OS
func defaultConfigPath() string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), "sleeve")
	default:
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".config", "sleeve")
	}
}

// LoadConfig loads configuration from file and environment
func LoadConfig() (*Config, error) {
	return load(viper.GetViper(), defaultConfigPath(), ".")
}

// load reads into the defaults from the first config.yaml found in paths
func load(v *viper.Viper, paths ...string) (*Config, error) {
	cfg := DefaultConfig()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	for _, p := range paths {
		v.AddConfigPath(p)
	}

	// Environment variable overrides, e.g. SLEEVE_UI_ANSI=true
	v.SetEnvPrefix("SLEEVE")
	v.SetEnvKeyReplacer(envKeyReplacer)
	v.AutomaticEnv()
	bindDefaults(v, cfg)

	// Read config file if it exists
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found is OK, use defaults
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("error parsing config: %w", err)
	}

	cfg.Validate()
	return cfg, nil
}

// bindDefaults registers every key so AutomaticEnv can override keys that
// are absent from the config file
func bindDefaults(v *viper.Viper, cfg *Config) {
	v.SetDefault("library.path", cfg.Library.Path)

	v.SetDefault("art.enabled", cfg.Art.Enabled)
	v.SetDefault("art.extractor", cfg.Art.Extractor)
	v.SetDefault("art.ffmpeg_path", cfg.Art.FFmpegPath)
	v.SetDefault("art.extract_timeout", cfg.Art.ExtractTimeout)
	v.SetDefault("art.scratch_dir", cfg.Art.ScratchDir)
	v.SetDefault("art.prefer_sidecar", cfg.Art.PreferSidecar)
	v.SetDefault("art.dominant_color", cfg.Art.DominantColor)

	v.SetDefault("cache.capacity", cfg.Cache.Capacity)
	v.SetDefault("cache.persist", cfg.Cache.Persist)
	v.SetDefault("cache.dir", cfg.Cache.Dir)

	v.SetDefault("ui.ansi", cfg.UI.Ansi)
	v.SetDefault("ui.visualizer_enabled", cfg.UI.VisualizerEnabled)
	v.SetDefault("ui.visualizer_height", cfg.UI.VisualizerHeight)
	v.SetDefault("ui.metadata_height", cfg.UI.MetadataHeight)
	v.SetDefault("ui.theme", cfg.UI.Theme)

	v.SetDefault("logging.file", cfg.Logging.File)
	v.SetDefault("logging.level", cfg.Logging.Level)
}

// SaveConfig saves the current configuration to file
func SaveConfig(cfg *Config) error {
	return save(viper.GetViper(), cfg, defaultConfigPath())
}

func save(v *viper.Viper, cfg *Config, configPath string) error {
	// Ensure config directory exists
	if err := os.MkdirAll(configPath, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	// Set fields individually to ensure correct key names (snake_case)
	v.Set("library.path", cfg.Library.Path)

	v.Set("art.enabled", cfg.Art.Enabled)
	v.Set("art.extractor", cfg.Art.Extractor)
	v.Set("art.ffmpeg_path", cfg.Art.FFmpegPath)
	v.Set("art.extract_timeout", cfg.Art.ExtractTimeout.String())
	v.Set("art.scratch_dir", cfg.Art.ScratchDir)
	v.Set("art.prefer_sidecar", cfg.Art.PreferSidecar)
	v.Set("art.dominant_color", cfg.Art.DominantColor)

	v.Set("cache.capacity", cfg.Cache.Capacity)
	v.Set("cache.persist", cfg.Cache.Persist)
	v.Set("cache.dir", cfg.Cache.Dir)

	v.Set("ui.ansi", cfg.UI.Ansi)
	v.Set("ui.visualizer_enabled", cfg.UI.VisualizerEnabled)
	v.Set("ui.visualizer_height", cfg.UI.VisualizerHeight)
	v.Set("ui.metadata_height", cfg.UI.MetadataHeight)
	v.Set("ui.theme", cfg.UI.Theme)

	v.Set("logging.file", cfg.Logging.File)
	v.Set("logging.level", cfg.Logging.Level)

	configFile := filepath.Join(configPath, "config.yaml")
	if err := v.WriteConfigAs(configFile); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// defaultCachePath returns the default cache directory path for the current OS
func defaultCachePath() string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("LOCALAPPDATA"), "sleeve", "cache")
	default:
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".local", "share", "sleeve", "cache")
	}
}

// ClearCache removes all cached data
func ClearCache() error {
	cachePath := defaultCachePath()
	if err := os.RemoveAll(cachePath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to clear cache: %w", err)
	}
	return nil
}

// GetCachePath returns the cache directory path
func GetCachePath() string {
	return defaultCachePath()
}

// CacheDir returns the configured database directory for the persistent
// art index, or "" when persistence is off
func (c *Config) CacheDir() string {
	if !c.Cache.Persist {
		return ""
	}
	if c.Cache.Dir != "" {
		return c.Cache.Dir
	}
	return defaultCachePath()
}
