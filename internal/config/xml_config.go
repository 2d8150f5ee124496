// Package config provides XML-based configuration management for the PHISNET backend.
package config

import (
	"encoding/xml"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// AppConfig represents the root XML configuration structure
type AppConfig struct {
	XMLName xml.Name `xml:"PHISNET"`

	// Server configuration
	Server ServerConfig `xml:"Server"`

	// Storage configuration
	Storage StorageConfig `xml:"Storage"`

	// Upload simulation
	Simulation SimulationConfig `xml:"Simulation"`

	// Dashboard counters
	Dashboard DashboardConfig `xml:"Dashboard"`

	// Completion notifications
	Notifications NotificationsConfig `xml:"Notifications"`

	// Advanced options
	Advanced AdvancedConfig `xml:"Advanced"`
}

// ServerConfig contains HTTP server settings
type ServerConfig struct {
	Port         int    `xml:"Port"`
	BindAddress  string `xml:"BindAddress"`
	EnableCORS   bool   `xml:"EnableCORS"`
	AllowOrigins string `xml:"AllowOrigins"`
	ReadTimeout  int    `xml:"ReadTimeoutSeconds"`
	WriteTimeout int    `xml:"WriteTimeoutSeconds"`
	IdleTimeout  int    `xml:"IdleTimeoutSeconds"`
	BodyLimit    string `xml:"BodyLimit"`
}

// StorageConfig contains blob storage settings. UploadsDirectory is
// resolved against DataDirectory when relative.
type StorageConfig struct {
	DataDirectory    string `xml:"DataDirectory"`
	UploadsDirectory string `xml:"UploadsDirectory"`
}

// SimulationConfig tunes the scripted upload pipeline.
type SimulationConfig struct {
	TickIntervalMs     int   `xml:"TickIntervalMs"`
	MaxStartDelayMs    int   `xml:"MaxStartDelayMs"`
	MaxFileSizeBytes   int64 `xml:"MaxFileSizeBytes"`
	FailureRatePercent int   `xml:"FailureRatePercent"`
	Seed               int64 `xml:"Seed"` // 0 seeds from the clock
}

// DashboardConfig controls the drifting dashboard counters.
type DashboardConfig struct {
	RefreshIntervalSeconds int  `xml:"RefreshIntervalSeconds"`
	Live                   bool `xml:"Live"`
}

// NotificationsConfig controls the Redis completion alerts.
type NotificationsConfig struct {
	Enabled   bool   `xml:"Enabled"`
	RedisAddr string `xml:"RedisAddr"`
	Password  string `xml:"Password"`
	DB        int    `xml:"DB"`
	Queue     string `xml:"Queue"`
}

// AdvancedConfig contains advanced/tuning options
type AdvancedConfig struct {
	LogLevel             string `xml:"LogLevel"`
	LogFormat            string `xml:"LogFormat"` // console or json
	EnableRequestLogging bool   `xml:"EnableRequestLogging"`
	CatalogPath          string `xml:"CatalogPath"` // empty uses the built-in catalog
	WebSocketPingSeconds int    `xml:"WebSocketPingSeconds"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *AppConfig {
	return &AppConfig{
		Server: ServerConfig{
			Port:         8089,
			BindAddress:  "0.0.0.0",
			EnableCORS:   true,
			AllowOrigins: "*",
			ReadTimeout:  30,
			WriteTimeout: 30,
			IdleTimeout:  120,
			BodyLimit:    "1G",
		},
		Storage: StorageConfig{
			DataDirectory:    "./data",
			UploadsDirectory: "uploads",
		},
		Simulation: SimulationConfig{
			TickIntervalMs:     200,
			MaxStartDelayMs:    1000,
			MaxFileSizeBytes:   100 * 1024 * 1024,
			FailureRatePercent: 0,
			Seed:               0,
		},
		Dashboard: DashboardConfig{
			RefreshIntervalSeconds: 5,
			Live:                   true,
		},
		Notifications: NotificationsConfig{
			Enabled:   false,
			RedisAddr: "localhost:6379",
			DB:        0,
			Queue:     "phisnet:completions",
		},
		Advanced: AdvancedConfig{
			LogLevel:             "info",
			LogFormat:            "console",
			EnableRequestLogging: true,
			WebSocketPingSeconds: 30,
		},
	}
}

// LoadConfig loads configuration from XML file
func LoadConfig(configPath string) (*AppConfig, error) {
	var config *AppConfig

	// If file doesn't exist, create default
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		config = DefaultConfig()
		if err := config.Save(configPath); err != nil {
			return nil, fmt.Errorf("failed to create default config: %w", err)
		}
	} else {
		data, err := os.ReadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}

		config = DefaultConfig()
		if err := xml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	// Apply environment variable overrides
	config.applyEnvironmentOverrides()

	if err := config.Validate(); err != nil {
		return nil, err
	}

	// Resolve relative paths
	config.resolvePaths(filepath.Dir(configPath))

	return config, nil
}

// Save saves the configuration to XML file
func (c *AppConfig) Save(configPath string) error {
	output, err := xml.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	header := []byte(xml.Header + "\n<!-- PHISNET Configuration -->\n<!-- This file is auto-generated on first run -->\n\n")
	content := append(header, output...)

	if err := os.WriteFile(configPath, content, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// applyEnvironmentOverrides allows environment variables to override config values
func (c *AppConfig) applyEnvironmentOverrides() {
	// PORT override
	if port := os.Getenv("PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			c.Server.Port = p
		}
	}

	// DATA_DIR override
	if dataDir := os.Getenv("DATA_DIR"); dataDir != "" {
		c.Storage.DataDirectory = dataDir
	}

	if level := os.Getenv("LOG_LEVEL"); level != "" {
		c.Advanced.LogLevel = level
	}

	// REDIS_ADDR also switches notifications on
	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		c.Notifications.RedisAddr = addr
		c.Notifications.Enabled = true
	}
}

// Validate rejects settings the simulator cannot run with.
func (c *AppConfig) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.Server.Port)
	}
	if c.Simulation.TickIntervalMs <= 0 {
		return fmt.Errorf("TickIntervalMs must be positive, got %d", c.Simulation.TickIntervalMs)
	}
	if c.Simulation.MaxStartDelayMs < 0 {
		return fmt.Errorf("MaxStartDelayMs must not be negative, got %d", c.Simulation.MaxStartDelayMs)
	}
	if c.Simulation.MaxFileSizeBytes <= 0 {
		return fmt.Errorf("MaxFileSizeBytes must be positive, got %d", c.Simulation.MaxFileSizeBytes)
	}
	if c.Simulation.FailureRatePercent < 0 || c.Simulation.FailureRatePercent > 100 {
		return fmt.Errorf("FailureRatePercent must be between 0 and 100, got %d", c.Simulation.FailureRatePercent)
	}
	switch strings.ToLower(c.Advanced.LogFormat) {
	case "", "console", "json":
	default:
		return fmt.Errorf("unknown LogFormat %q", c.Advanced.LogFormat)
	}
	return nil
}

// resolvePaths converts relative paths to absolute based on config file location
func (c *AppConfig) resolvePaths(configDir string) {
	if !filepath.IsAbs(c.Storage.DataDirectory) {
		c.Storage.DataDirectory = filepath.Join(configDir, c.Storage.DataDirectory)
	}
	if !filepath.IsAbs(c.Storage.UploadsDirectory) {
		c.Storage.UploadsDirectory = filepath.Join(c.Storage.DataDirectory, c.Storage.UploadsDirectory)
	}
	if c.Advanced.CatalogPath != "" && !filepath.IsAbs(c.Advanced.CatalogPath) {
		c.Advanced.CatalogPath = filepath.Join(configDir, c.Advanced.CatalogPath)
	}
}

// GetDataDir returns the absolute data directory path
func (c *AppConfig) GetDataDir() string {
	return c.Storage.DataDirectory
}

// GetUploadDir returns the absolute uploads directory path
func (c *AppConfig) GetUploadDir() string {
	return c.Storage.UploadsDirectory
}

// GetServerAddr returns the server bind address
func (c *AppConfig) GetServerAddr() string {
	return fmt.Sprintf("%s:%d", c.Server.BindAddress, c.Server.Port)
}

// TickInterval returns the simulation tick as a duration.
func (c *AppConfig) TickInterval() time.Duration {
	return time.Duration(c.Simulation.TickIntervalMs) * time.Millisecond
}

// MaxStartDelay returns the upper bound of the random start delay.
func (c *AppConfig) MaxStartDelay() time.Duration {
	return time.Duration(c.Simulation.MaxStartDelayMs) * time.Millisecond
}

// DashboardInterval returns the dashboard refresh period.
func (c *AppConfig) DashboardInterval() time.Duration {
	return time.Duration(c.Dashboard.RefreshIntervalSeconds) * time.Second
}

// EnsureDirectories creates all necessary directories
func (c *AppConfig) EnsureDirectories() error {
	dirs := []string{
		c.Storage.DataDirectory,
		c.Storage.UploadsDirectory,
	}

	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	return nil
}
