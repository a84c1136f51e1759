package config

import (
	"os"

	"github.com/joho/godotenv"
)

// LoadDotenv loads a local .env file into the process environment before
// flags are parsed, mirroring the teacher's `godotenv.Load()` call in
// cmd/server/main.go. A missing .env is not an error: the file is optional
// in production, where real environment variables are set directly.
func LoadDotenv(path string) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil
	}
	return godotenv.Load(path)
}

// InstanceID returns SERVICE_INSTANCE_ID if set, else a stable fallback
// derived from the hostname (§6 "Environment").
func InstanceID() string {
	if id := os.Getenv("SERVICE_INSTANCE_ID"); id != "" {
		return id
	}
	host, err := os.Hostname()
	if err != nil || host == "" {
		return "convertor-instance"
	}
	return host
}

// BaseDir resolves the base directory for on-disk caches, logs, and config
// in release builds ($HOME), falling back to the working directory in
// debug builds (§6).
func BaseDir() string {
	if os.Getenv("CONVERTOR_RELEASE") == "" {
		return "."
	}
	if home, err := os.UserHomeDir(); err == nil && home != "" {
		return home + "/.convertor"
	}
	return "."
}
