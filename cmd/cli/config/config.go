package config

import (
	"os"
	"path/filepath"
	"strings"
)

const defaultAPIURL = "http://localhost:8080"

// APIURL returns the base URL for the Capsule API.
// It can be overridden with the CAPSULE_API_URL environment variable.
func APIURL() string {
	if v := os.Getenv("CAPSULE_API_URL"); v != "" {
		return v
	}
	return defaultAPIURL
}

func tokenPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "capsule", "token"), nil
}

// SaveToken stores the bearer token for subsequent CLI commands.
func SaveToken(token string) error {
	path, err := tokenPath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return err
	}
	return os.WriteFile(path, []byte(token), 0o600)
}

// LoadToken returns the stored bearer token, or an empty string when absent.
func LoadToken() string {
	path, err := tokenPath()
	if err != nil {
		return ""
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}
