package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"

	"github.com/cognicore/clarifier/pkg/clarifier/internalerr"
)

// EnvPrefix prefixes every environment override. Nested keys are joined
// with a double underscore: CLARIFIER_WEIGHTS__QUERY__PATTERN.
const EnvPrefix = "CLARIFIER_"

// ConfigPathEnvVar can point at the YAML settings file.
const ConfigPathEnvVar = "CLARIFIER_CONFIG"

var validate = validator.New()

// LoadSettings layers defaults, an optional YAML file and environment
// variables, in that order of increasing priority. An empty path falls
// back to $CLARIFIER_CONFIG; a named file that does not exist is an error.
func LoadSettings(path string) (*Settings, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(Defaults(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("load defaults: %w", err)
	}

	if path == "" {
		path = os.Getenv(ConfigPathEnvVar)
	}
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("load environment: %w", err)
	}

	var s Settings
	if err := k.Unmarshal("", &s); err != nil {
		return nil, fmt.Errorf("unmarshal settings: %w", err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// envKey maps CLARIFIER_EXTRACTION__NGRAM_CAP to extraction.ngram_cap.
// The config path variable itself maps to an unused key.
func envKey(key string) string {
	key = strings.TrimPrefix(key, EnvPrefix)
	return strings.ReplaceAll(strings.ToLower(key), "__", ".")
}

// Validate checks field constraints.
func (s *Settings) Validate() error {
	if err := validate.Struct(s); err != nil {
		return fmt.Errorf("%w: %v", internalerr.ErrInvalidConfig, err)
	}
	return nil
}
