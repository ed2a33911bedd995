package config

import "time"

const (
	stateTTLVar           = "STATE_TTL_SECONDS"
	stateSweepIntervalVar = "STATE_SWEEP_INTERVAL_SECONDS"
	stateSecretBytesVar   = "STATE_SECRET_BYTES"
	stateNonceBytesVar    = "STATE_NONCE_BYTES"

	DefaultStateTTLSeconds      = 600
	DefaultSweepIntervalSeconds = 60
	DefaultSecretLength         = 32
	DefaultNonceLength          = 16
)

type StateConfig interface {
	GetStateTTL() time.Duration
	GetStateSweepInterval() time.Duration
	GetStateSecretLength() int
	GetNonceLength() int
}

type State struct{}

var _ StateConfig = State{}

func (State) GetStateTTL() time.Duration {
	return time.Duration(GetEnvInt(stateTTLVar, DefaultStateTTLSeconds)) * time.Second
}

func (State) GetStateSweepInterval() time.Duration {
	return time.Duration(GetEnvInt(stateSweepIntervalVar, DefaultSweepIntervalSeconds)) * time.Second
}

func (State) GetStateSecretLength() int {
	return GetEnvInt(stateSecretBytesVar, DefaultSecretLength) // bytes
}

func (State) GetNonceLength() int {
	return GetEnvInt(stateNonceBytesVar, DefaultNonceLength) // bytes, hex encoded in the token
}

// StaticState is a fixed StateConfig, used where values do not come from the
// environment.
type StaticState struct {
	TTL           time.Duration
	SweepInterval time.Duration
	SecretLength  int
	NonceLength   int
}

var _ StateConfig = StaticState{}

func (s StaticState) GetStateTTL() time.Duration {
	if s.TTL <= 0 {
		return DefaultStateTTLSeconds * time.Second
	}
	return s.TTL
}

func (s StaticState) GetStateSweepInterval() time.Duration {
	if s.SweepInterval <= 0 {
		return DefaultSweepIntervalSeconds * time.Second
	}
	return s.SweepInterval
}

func (s StaticState) GetStateSecretLength() int {
	if s.SecretLength <= 0 {
		return DefaultSecretLength
	}
	return s.SecretLength
}

func (s StaticState) GetNonceLength() int {
	if s.NonceLength <= 0 {
		return DefaultNonceLength
	}
	return s.NonceLength
}
