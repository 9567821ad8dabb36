package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
)

// APIKeys holds credentials loaded from the environment.
type APIKeys struct {
	OpenAI string
}

// LoadEnv loads variables from the nearest .env file. A missing file is not
// an error; variables may be set system-wide instead.
func LoadEnv() error {
	envPaths := []string{
		".env",
		".env.local",
		"../.env",
		"../../.env",
	}

	for _, envPath := range envPaths {
		if _, err := os.Stat(envPath); err == nil {
			if err := godotenv.Load(envPath); err != nil {
				return fmt.Errorf("error loading %s file: %w", envPath, err)
			}
			break
		}
	}

	return nil
}

// GetAPIKeys reads and sanity-checks API keys from the environment. Keys are
// optional at this layer; the cloud engine fails fast at initialization when
// its provider actually needs one.
func GetAPIKeys() (*APIKeys, error) {
	apiKeys := &APIKeys{
		OpenAI: strings.TrimSpace(os.Getenv("OPENAI_API_KEY")),
	}

	if apiKeys.OpenAI != "" {
		if !strings.HasPrefix(apiKeys.OpenAI, "sk-") {
			return nil, fmt.Errorf("invalid OPENAI_API_KEY format: must start with 'sk-'")
		}
		if len(apiKeys.OpenAI) < 20 {
			return nil, fmt.Errorf("invalid OPENAI_API_KEY format: too short")
		}
	}

	return apiKeys, nil
}

// GetProjectRoot finds the project root directory by looking for go.mod.
func GetProjectRoot() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return "", fmt.Errorf("could not find project root (go.mod not found)")
}

// InitializeConfig loads the .env file and reads API keys. Main entry point
// for environment bootstrap.
func InitializeConfig() (*APIKeys, error) {
	if err := LoadEnv(); err != nil {
		return nil, fmt.Errorf("failed to load environment: %w", err)
	}

	apiKeys, err := GetAPIKeys()
	if err != nil {
		return nil, fmt.Errorf("failed to get API keys: %w", err)
	}

	return apiKeys, nil
}
