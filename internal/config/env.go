package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// EnvPrefix prefixes every environment override, e.g. SALAT_METHOD.
const EnvPrefix = "SALAT_"

// EnvName returns the environment variable that overrides key.
func EnvName(key string) string {
	return EnvPrefix + strings.ToUpper(key)
}

// FromEnv builds a Config from SALAT_* variables. Values from the process
// environment win over those read from dotenv files; missing files are
// skipped.
func FromEnv(dotenvFiles ...string) (*Config, error) {
	vars := map[string]string{}
	for _, path := range dotenvFiles {
		fileVars, err := godotenv.Read(path)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				continue
			}
			return nil, fmt.Errorf("failed to read %s: %w", path, err)
		}
		for k, v := range fileVars {
			if _, seen := vars[k]; !seen {
				vars[k] = v
			}
		}
	}

	cfg := &Config{}
	for _, key := range ValidKeys {
		name := EnvName(key)
		value, ok := os.LookupEnv(name)
		if !ok {
			value, ok = vars[name]
		}
		if !ok || value == "" {
			continue
		}
		if err := cfg.Set(key, value); err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
	}
	return cfg, nil
}
