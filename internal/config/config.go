package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"flakeforge/internal/common"
	"flakeforge/pkg/errors"
	"flakeforge/pkg/models"
)

var validate = validator.New()

func GetConfigPath() string {
	// Check for environment variable first
	if configPath := os.Getenv("FLAKEFORGE_CONFIG"); configPath != "" {
		return filepath.Dir(configPath)
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".flakeforge")
}

func GetConfigFile() string {
	// Check for environment variable first
	if configFile := os.Getenv("FLAKEFORGE_CONFIG"); configFile != "" {
		// Validate the path to prevent directory traversal
		cleaned, err := common.CleanPath(configFile)
		if err != nil {
			// Fall back to default if invalid
			return filepath.Join(GetConfigPath(), "config.yaml")
		}
		return cleaned
	}

	// A config.yaml in the working directory wins over the home config
	if _, err := os.Stat("config.yaml"); err == nil {
		cleaned, err := common.CleanPath("config.yaml")
		if err == nil {
			return cleaned
		}
	}

	return filepath.Join(GetConfigPath(), "config.yaml")
}

// Load reads, unmarshals, and structurally validates the configuration.
func Load() (*models.Config, error) {
	configFile := GetConfigFile()

	cleanedPath, err := common.CleanPath(configFile)
	if err != nil {
		return nil, fmt.Errorf("invalid config file path: %w", err)
	}

	if _, err := os.Stat(cleanedPath); os.IsNotExist(err) {
		return nil, errors.New(errors.ErrCodeConfigNotFound, "No configuration found").
			WithContext("path", cleanedPath).
			WithSuggestions(
				"Run 'flakeforge setup' to create a configuration interactively",
				"Run 'flakeforge init' to scaffold a starter config.yaml",
			)
	}

	data, err := os.ReadFile(cleanedPath) // #nosec G304 - path is validated
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config models.Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeConfigInvalid, "Failed to parse config file").
			WithContext("path", cleanedPath)
	}

	if err := Validate(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

// Validate runs structural validation over the loaded configuration and
// returns a single FFCF error listing every offending field.
func Validate(config *models.Config) error {
	err := validate.Struct(config)
	if err == nil {
		// Cross-field check the tags cannot express: exactly one dataset source
		if config.Dataset.Path != "" && config.Dataset.GitURL != "" {
			return errors.New(errors.ErrCodeConfigInvalid, "Configuration is invalid").
				WithContext("fields", "dataset.path, dataset.git_url").
				WithSuggestions("Set either dataset.path or dataset.git_url, not both")
		}
		return nil
	}

	validationErrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return errors.Wrap(err, errors.ErrCodeConfigInvalid, "Configuration validation failed")
	}

	fields := make([]string, 0, len(validationErrs))
	for _, fe := range validationErrs {
		fields = append(fields, fmt.Sprintf("%s (%s)", strings.ToLower(fe.Namespace()), fe.Tag()))
	}

	return errors.New(errors.ErrCodeConfigInvalid, "Configuration is invalid").
		WithContext("fields", strings.Join(fields, ", ")).
		WithSuggestions(
			"Fix the listed fields in config.yaml",
			"Run 'flakeforge setup' to reconfigure",
		)
}

func Save(config *models.Config) error {
	configPath := GetConfigPath()
	if err := os.MkdirAll(configPath, common.DirPermissionSecure); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	configFile := filepath.Join(configPath, "config.yaml")

	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(configFile, data, common.FilePermissionSecure); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

func Exists() bool {
	_, err := os.Stat(GetConfigFile())
	return err == nil
}
