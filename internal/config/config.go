package config

import "github.com/rs/zerolog"

type Config interface {
	EnvConfig
	StateConfig
}

type EnvConfig interface {
	GetAppName() string
	GetEnv() string
	GetLogLevel() zerolog.Level
}

type mainConfig struct {
	EnvVars
	State
}

func New() Config {
	return mainConfig{}
}
