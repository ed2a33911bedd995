package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
)

const (
	appNameVar  = "APP_NAME"
	envVar      = "ENV"
	logLevelVar = "LOG_LEVEL"
)

type EnvVars struct{}

var _ EnvConfig = EnvVars{}

func (EnvVars) GetAppName() string {
	return GetEnv(appNameVar, "Unraid OIDC State")
}

func (EnvVars) GetEnv() string {
	return GetEnv(envVar, "DEV")
}

// GetLogLevel parses LOG_LEVEL ("debug", "info", ...); unknown values fall
// back to info.
func (EnvVars) GetLogLevel() zerolog.Level {
	level, err := zerolog.ParseLevel(strings.ToLower(GetEnv(logLevelVar, "info")))
	if err != nil || level == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return level
}

func GetEnv(envVar, defaultValue string) string {
	value := os.Getenv(envVar)
	if value == "" {
		return defaultValue
	}
	return value
}

// GetEnvInt reads a strictly positive integer, returning defaultValue when the
// variable is unset, malformed or not positive.
func GetEnvInt(envVar string, defaultValue int) int {
	value, err := strconv.Atoi(strings.TrimSpace(os.Getenv(envVar)))
	if err != nil || value <= 0 {
		return defaultValue
	}
	return value
}
