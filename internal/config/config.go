package config

import (
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"
	"github.com/kerimovok/go-pkg-utils/config"
	"gopkg.in/yaml.v3"
)

// DocumentTypeRule restricts what a file field tagged with a document data
// type may receive: an allow-list of MIME types (wildcards like image/*
// supported) and an optional size cap overriding the default.
type DocumentTypeRule struct {
	MimeTypes   []string `yaml:"mime_types"`
	MaxFileSize string   `yaml:"max_file_size"`
}

// LocalStorageConfig holds local storage settings
type LocalStorageConfig struct {
	UploadDir  string `yaml:"upload_dir"`
	CreateDirs bool   `yaml:"create_dirs"`
}

// IntakeConfig holds the file intake policy applied at the submission
// boundary: per-file size cap, per-submission file cap and document-type
// MIME allow-lists.
type IntakeConfig struct {
	MaxFileSize           string                      `yaml:"max_file_size"`
	MaxFilesPerSubmission int                         `yaml:"max_files_per_submission"`
	Storage               LocalStorageConfig          `yaml:"storage"`
	DocumentTypes         map[string]DocumentTypeRule `yaml:"document_types"`
}

// MainConfig holds the root configuration
type MainConfig struct {
	Intake IntakeConfig `yaml:"intake"`
}

var (
	Config MainConfig
)

// LoadConfig loads the configuration from the specified path
func LoadConfig() error {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		if config.GetEnv("GO_ENV") != "production" {
			log.Println("Warning: Failed to load .env file")
		}
	}

	// Read config file
	data, err := os.ReadFile("config/intake.yaml")
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	// Parse YAML
	var config MainConfig
	if err := yaml.Unmarshal(data, &config); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}

	// Store config globally
	Config = config

	log.Println("Intake configuration loaded successfully from config/intake.yaml")
	return nil
}

// GetConfig returns the current configuration
func GetConfig() MainConfig {
	return Config
}
