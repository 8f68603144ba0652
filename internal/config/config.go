package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config defines application configuration.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Transport TransportConfig `yaml:"transport"`
	DB        DBConfig        `yaml:"db"`
	Data      DataConfig      `yaml:"data"`
	Export    ExportConfig    `yaml:"export"`
	Backup    BackupConfig    `yaml:"backup"`
	App       AppConfig       `yaml:"app"`
	Log       LogConfig       `yaml:"log"`
}

type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// TransportConfig selects how the MCP server is served: "stdio" or "http".
type TransportConfig struct {
	Mode string `yaml:"mode"`
}

type DBConfig struct {
	Path string `yaml:"path"`
}

// DataConfig is the directory exports and backups are written to.
type DataConfig struct {
	Dir string `yaml:"dir"`
}

type ExportConfig struct {
	CSVDelimiter string `yaml:"csv_delimiter"`
	// Timezone names the IANA zone used for session names and CSV dates.
	// Empty means the local zone.
	Timezone string `yaml:"timezone"`
}

type BackupConfig struct {
	Delimiter string `yaml:"delimiter"`
}

// AppConfig is written into GPX files as the creator.
type AppConfig struct {
	Name    string `yaml:"name"`
	Version string `yaml:"version"`
}

type LogConfig struct {
	Level string `yaml:"level"`
	Path  string `yaml:"path"`
}

// Default returns the configuration used when no file or environment overrides are present.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 8080,
		},
		Transport: TransportConfig{
			Mode: "stdio",
		},
		DB: DBConfig{
			Path: "heartlog.db",
		},
		Data: DataConfig{
			Dir: "BCM",
		},
		Export: ExportConfig{
			CSVDelimiter: ",",
		},
		Backup: BackupConfig{
			Delimiter: ",",
		},
		App: AppConfig{
			Name: "BLE Cardiac Monitor",
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load reads configuration from an optional YAML file and environment variables.
func Load() (Config, error) {
	cfg := Default()

	if path := os.Getenv("HEARTLOG_CONFIG_PATH"); path != "" {
		if err := loadFromFile(path, &cfg); err != nil {
			return Config{}, err
		}
	}

	if host := os.Getenv("HEARTLOG_SERVER_HOST"); host != "" {
		cfg.Server.Host = host
	}
	if portStr := os.Getenv("HEARTLOG_SERVER_PORT"); portStr != "" {
		port, err := strconv.Atoi(portStr)
		if err != nil {
			return Config{}, fmt.Errorf("invalid HEARTLOG_SERVER_PORT: %w", err)
		}
		cfg.Server.Port = port
	}
	if mode := os.Getenv("HEARTLOG_TRANSPORT"); mode != "" {
		cfg.Transport.Mode = mode
	}
	if dbPath := os.Getenv("HEARTLOG_DB_PATH"); dbPath != "" {
		cfg.DB.Path = dbPath
	}
	if dir := os.Getenv("HEARTLOG_DATA_DIR"); dir != "" {
		cfg.Data.Dir = dir
	}
	if tz := os.Getenv("HEARTLOG_TIMEZONE"); tz != "" {
		cfg.Export.Timezone = tz
	}
	if level := os.Getenv("HEARTLOG_LOG_LEVEL"); level != "" {
		cfg.Log.Level = level
	}
	if logPath := os.Getenv("HEARTLOG_LOG_PATH"); logPath != "" {
		cfg.Log.Path = logPath
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks values that would otherwise fail later, mid-operation.
func (c Config) Validate() error {
	switch c.Transport.Mode {
	case "stdio", "http":
	default:
		return fmt.Errorf("invalid transport mode %q: want stdio or http", c.Transport.Mode)
	}
	if c.Export.CSVDelimiter == "" {
		return fmt.Errorf("export.csv_delimiter must not be empty")
	}
	if c.Backup.Delimiter == "" {
		return fmt.Errorf("backup.delimiter must not be empty")
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	return nil
}

// Location resolves the configured timezone.
func (c Config) Location() (*time.Location, error) {
	if c.Export.Timezone == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Export.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", c.Export.Timezone, err)
	}
	return loc, nil
}

func loadFromFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	return nil
}
