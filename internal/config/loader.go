package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/viper"

	"github.com/Kriptaman10/Migracion-PWC-ADF/internal/db"
)

// Config holds the service configuration.
type Config struct {
	ServerAddr         string
	ExportDir          string
	MigrationsPath     string
	DatasetMappingFile string
	AllowedOrigins     []string
	Database           db.Config
}

// DefaultConfig returns the configuration used when no config file or
// environment overrides are present.
func DefaultConfig() Config {
	return Config{
		ServerAddr:         ":8080",
		ExportDir:          "exports",
		MigrationsPath:     "migrations",
		DatasetMappingFile: "dataset_mapping.json",
		AllowedOrigins:     []string{"http://localhost:5173"},
		Database:           db.DefaultConfig(),
	}
}

// Load reads config.yaml from configPath with environment overrides.
func Load(configPath string) (Config, error) {
	// Start with default
	cfg := DefaultConfig()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(configPath)
	v.AutomaticEnv()         // allow environment overrides
	v.SetEnvPrefix("PC2ADF") // map env vars like PC2ADF_SERVER_ADDR

	// Optional: Map nested keys to flat env vars
	v.BindEnv("server.addr")
	v.BindEnv("server.export_dir")
	v.BindEnv("server.dataset_mapping_file")
	v.BindEnv("database.host")
	v.BindEnv("database.port")
	v.BindEnv("database.user")
	v.BindEnv("database.password")
	v.BindEnv("database.dbname")
	v.BindEnv("database.sslmode")

	if err := v.ReadInConfig(); err != nil {
		// Config file not found? Just log it, use defaults + env
		fmt.Println("No config.yaml found, using defaults and env vars")
	} else {
		fmt.Println("Loaded config.yaml")
	}

	// Override defaults if values exist
	if v.IsSet("server.addr") {
		cfg.ServerAddr = v.GetString("server.addr")
	}
	if v.IsSet("server.export_dir") {
		cfg.ExportDir = v.GetString("server.export_dir")
	}
	if v.IsSet("server.migrations_path") {
		cfg.MigrationsPath = v.GetString("server.migrations_path")
	}
	if v.IsSet("server.dataset_mapping_file") {
		cfg.DatasetMappingFile = v.GetString("server.dataset_mapping_file")
	}
	if v.IsSet("server.allowed_origins") {
		cfg.AllowedOrigins = v.GetStringSlice("server.allowed_origins")
	}
	if v.IsSet("database.host") {
		cfg.Database.Host = v.GetString("database.host")
	}
	if v.IsSet("database.port") {
		cfg.Database.Port = v.GetInt("database.port")
	}
	if v.IsSet("database.user") {
		cfg.Database.User = v.GetString("database.user")
	}
	if v.IsSet("database.password") {
		cfg.Database.Password = v.GetString("database.password")
	}
	if v.IsSet("database.dbname") {
		cfg.Database.DBName = v.GetString("database.dbname")
	}
	if v.IsSet("database.sslmode") {
		cfg.Database.SSLMode = v.GetString("database.sslmode")
	}

	return cfg, nil
}

// LoadDatasetMapping reads the production dataset name mapping. A missing
// file is not an error; the generator falls back to prefix-derived names.
func LoadDatasetMapping(path string) (map[string]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read dataset mapping: %w", err)
	}

	var doc struct {
		Mappings map[string]string `json:"mappings"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse dataset mapping: %w", err)
	}
	return doc.Mappings, nil
}
