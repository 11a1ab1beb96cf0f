// Package config provides environment-based configuration loading with
// validation and fail-open fallback. A value that fails to parse or
// validate falls back to its default and produces a warning instead of an
// error, so a bad deployment setting degrades the worker rather than
// stopping it.
package config

import (
	"fmt"
	"os"
	"time"
)

// ConfigLoadResult represents the result of loading one configuration value.
//
// Fields:
//   - Value: the loaded value (the default when a fallback was applied)
//   - Warnings: one message per fallback applied
//   - FallbackApplied: true when the default was used due to a parse or
//     validation failure
//
// Example:
//
//	result := LoadEnvDuration("INGEST_TIMEOUT", 15*time.Minute, ValidatePositiveDuration)
//	timeout := result.Value.(time.Duration)
type ConfigLoadResult struct {
	Value           interface{}
	Warnings        []string
	FallbackApplied bool
}

// LoadEnvString loads a string from an environment variable, returning the
// default when the variable is unset or empty. No validation is applied;
// use LoadEnvWithFallback when validation is needed.
func LoadEnvString(envKey, defaultValue string) string {
	value := os.Getenv(envKey)
	if value == "" {
		return defaultValue
	}
	return value
}

// LoadEnvWithFallback loads a string from an environment variable and
// validates it. An unset variable selects the default silently; a value
// that fails validation selects the default with a warning. The validator
// may be nil to skip validation.
func LoadEnvWithFallback(envKey, defaultValue string, validator func(string) error) ConfigLoadResult {
	value := os.Getenv(envKey)
	if value == "" {
		return ConfigLoadResult{Value: defaultValue}
	}

	if validator != nil {
		if err := validator(value); err != nil {
			return fallbackResult(envKey, value, err, fmt.Sprintf("%s", defaultValue), defaultValue)
		}
	}

	return ConfigLoadResult{Value: value}
}

// LoadEnvDuration loads a time.Duration from an environment variable. The
// value must be parseable by time.ParseDuration ("30s", "5m", "1h30m").
// Parse and validation failures fall back to the default with a warning.
func LoadEnvDuration(envKey string, defaultValue time.Duration, validator func(time.Duration) error) ConfigLoadResult {
	valueStr := os.Getenv(envKey)
	if valueStr == "" {
		return ConfigLoadResult{Value: defaultValue}
	}

	parsed, err := time.ParseDuration(valueStr)
	if err != nil {
		return fallbackResult(envKey, valueStr, err, fmt.Sprintf("%v", defaultValue), defaultValue)
	}

	if validator != nil {
		if err := validator(parsed); err != nil {
			return fallbackResult(envKey, valueStr, err, fmt.Sprintf("%v", defaultValue), defaultValue)
		}
	}

	return ConfigLoadResult{Value: parsed}
}

// LoadEnvInt loads an integer from an environment variable. Parse and
// validation failures fall back to the default with a warning.
func LoadEnvInt(envKey string, defaultValue int, validator func(int) error) ConfigLoadResult {
	valueStr := os.Getenv(envKey)
	if valueStr == "" {
		return ConfigLoadResult{Value: defaultValue}
	}

	var parsed int
	if _, err := fmt.Sscanf(valueStr, "%d", &parsed); err != nil {
		return fallbackResult(envKey, valueStr, fmt.Errorf("invalid integer format"), fmt.Sprintf("%d", defaultValue), defaultValue)
	}

	if validator != nil {
		if err := validator(parsed); err != nil {
			return fallbackResult(envKey, valueStr, err, fmt.Sprintf("%d", defaultValue), defaultValue)
		}
	}

	return ConfigLoadResult{Value: parsed}
}

// LoadEnvBool loads a boolean from an environment variable. Accepted
// values follow strconv.ParseBool ("1", "t", "true", "0", "f", "false",
// case-insensitive first letter). Anything else falls back to the default
// with a warning.
func LoadEnvBool(envKey string, defaultValue bool) ConfigLoadResult {
	valueStr := os.Getenv(envKey)
	if valueStr == "" {
		return ConfigLoadResult{Value: defaultValue}
	}

	switch valueStr {
	case "1", "t", "T", "true", "TRUE", "True":
		return ConfigLoadResult{Value: true}
	case "0", "f", "F", "false", "FALSE", "False":
		return ConfigLoadResult{Value: false}
	}
	return fallbackResult(envKey, valueStr,
		fmt.Errorf("invalid boolean format, expected 'true' or 'false'"),
		fmt.Sprintf("%t", defaultValue), defaultValue)
}

func fallbackResult(envKey, raw string, err error, defaultStr string, defaultValue interface{}) ConfigLoadResult {
	warning := fmt.Sprintf("Invalid %s='%s': %v, falling back to default '%s'",
		envKey, raw, err, defaultStr)
	return ConfigLoadResult{
		Value:           defaultValue,
		Warnings:        []string{warning},
		FallbackApplied: true,
	}
}
