package main

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

type Config struct {
	// ServerAddr is the backend the TUI uploads to and submits against.
	ServerAddr string `yaml:"server_addr"`

	// ListenAddr, DatasetDir and DatabasePath configure `markterm serve`.
	ListenAddr   string `yaml:"listen_addr"`
	DatasetDir   string `yaml:"dataset_dir"`
	DatabasePath string `yaml:"database_path"`

	// SaveDirectory receives PNG exports.
	SaveDirectory string `yaml:"save_directory"`

	// Confirmations gates the are-you-sure prompts on delete and submit.
	Confirmations bool `yaml:"confirmations"`
}

func defaultConfig() *Config {
	return &Config{
		ServerAddr:    "http://localhost:5001",
		ListenAddr:    ":5001",
		DatasetDir:    "dataset",
		DatabasePath:  "markterm.db",
		Confirmations: true,
	}
}

// loadConfig reads ~/.markterm.yaml if present and applies the
// MARKTERM_SERVER env override. Missing or unreadable config falls back to
// defaults; a config file is never required.
func loadConfig() *Config {
	config := defaultConfig()

	if homeDir, err := os.UserHomeDir(); err == nil {
		path := filepath.Join(homeDir, ".markterm.yaml")
		if data, err := os.ReadFile(path); err == nil {
			yaml.Unmarshal(data, config)
		}
	}

	if addr := os.Getenv("MARKTERM_SERVER"); addr != "" {
		config.ServerAddr = addr
	}

	if config.SaveDirectory != "" && !filepath.IsAbs(config.SaveDirectory) {
		if abs, err := filepath.Abs(config.SaveDirectory); err == nil {
			config.SaveDirectory = abs
		}
	}

	return config
}

func (c *Config) GetSavePath(filename string) string {
	if c.SaveDirectory == "" {
		return filename
	}
	os.MkdirAll(c.SaveDirectory, 0755)
	return filepath.Join(c.SaveDirectory, filename)
}
