// Package environment loads process configuration from environment variables,
// optionally seeded from a .env file, with support for namespaced keys.
package environment

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/joho/godotenv"
)

// LoadEnv loads variables from the given .env files (or ./.env when none are
// given). A missing file is not an error; variables already present in the
// process environment are never overwritten.
//
//	if err := environment.LoadEnv(); err != nil {
//	    return fmt.Errorf("loading .env: %w", err)
//	}
func LoadEnv(paths ...string) error {
	err := godotenv.Load(paths...)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

// GetNamespaceEnvKey joins a namespace and a key with an underscore.
//
//	GetNamespaceEnvKey("SMARTTASKS", "PORT") // "SMARTTASKS_PORT"
//	GetNamespaceEnvKey("", "PORT")           // "PORT"
func GetNamespaceEnvKey(namespace, key string) string {
	if namespace == "" {
		return key
	}
	return fmt.Sprintf("%s_%s", namespace, key)
}
