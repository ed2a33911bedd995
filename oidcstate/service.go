package oidcstate

import (
	"encoding/hex"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/unraid/api-oidc-state/internal/config"
	"github.com/unraid/api-oidc-state/internal/errors"
)

// ValidationResult is the outcome of ValidateSecureState. Err is nil exactly
// when IsValid is true, and is one of the state sentinels in internal/errors
// otherwise.
type ValidationResult struct {
	IsValid     bool
	ClientState string
	RedirectURI *string
	Err         error
}

// ErrorMessage returns the failure reason, or "" for a valid result.
func (r ValidationResult) ErrorMessage() string {
	if r.Err == nil {
		return ""
	}
	return r.Err.Error()
}

func invalid(err error) ValidationResult {
	return ValidationResult{Err: err}
}

// Service issues and validates signed single-use state tokens for the OIDC
// authorization code flow. The signing secret lives only in memory, so a
// restart invalidates every flow in progress.
type Service struct {
	repo        Repo
	secret      []byte
	ttl         time.Duration
	nonceLength int
	now         func() time.Time
	random      io.Reader
	logger      zerolog.Logger
}

// NewService creates the service and generates its signing secret.
func NewService(cfg config.StateConfig, repo Repo, opt ...Option) (*Service, error) {
	if cfg == nil {
		return nil, errors.Wrapf(errors.ErrInvalidParameter, "state config is nil")
	}
	if repo == nil {
		return nil, errors.Wrapf(errors.ErrInvalidParameter, "state repo is nil")
	}

	opts := serviceDefaults()
	for _, o := range opt {
		o(&opts)
	}

	secret := make([]byte, cfg.GetStateSecretLength())
	if _, err := io.ReadFull(opts.random, secret); err != nil {
		return nil, fmt.Errorf("failed to generate state signing secret: %w", err)
	}

	return &Service{
		repo:        repo,
		secret:      secret,
		ttl:         cfg.GetStateTTL(),
		nonceLength: cfg.GetNonceLength(),
		now:         opts.now,
		random:      opts.random,
		logger:      opts.logger.With().Str("component", "oidc_state").Logger(),
	}, nil
}

// TTL is the maximum age of a state token.
func (s *Service) TTL() time.Duration {
	return s.ttl
}

// GenerateSecureState records a new pending flow for providerID and returns
// its token, to be sent as the OAuth2 "state" parameter.
//
// A nonce collision silently replaces the earlier entry.
func (s *Service) GenerateSecureState(providerID, clientState string, opt ...GenerateOption) (string, error) {
	if providerID == "" {
		return "", errors.Wrapf(errors.ErrInvalidParameter, "provider id is required")
	}
	if strings.Contains(providerID, providerSeparator) {
		return "", errors.Wrapf(errors.ErrInvalidParameter, "provider id %q must not contain %q", providerID, providerSeparator)
	}

	var opts generateOptions
	for _, o := range opt {
		o(&opts)
	}

	nonceBytes := make([]byte, s.nonceLength)
	if _, err := io.ReadFull(s.random, nonceBytes); err != nil {
		return "", fmt.Errorf("failed to generate nonce: %w", err)
	}
	nonce := hex.EncodeToString(nonceBytes)
	issuedAt := s.now().UnixMilli()

	if err := s.repo.Upsert(&StateEntry{
		Nonce:       nonce,
		ClientState: clientState,
		Timestamp:   time.UnixMilli(issuedAt),
		ProviderID:  providerID,
		RedirectURI: opts.redirectURI,
	}); err != nil {
		return "", fmt.Errorf("failed to store state: %w", err)
	}

	t := token{
		providerID: providerID,
		nonce:      nonce,
		timestamp:  strconv.FormatInt(issuedAt, 10),
	}
	t.signature = sign(s.secret, t.payload())

	s.logger.Debug().Str("provider_id", providerID).Msg("Issued state token")
	return t.String(), nil
}

// ValidateSecureState checks a state token returned by the identity provider
// and, on success, consumes it. The first failing check decides the error.
// It never panics.
func (s *Service) ValidateSecureState(state, expectedProviderID string) (result ValidationResult) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error().Interface("panic", r).Str("provider_id", expectedProviderID).Msg("Recovered while validating state")
			result = invalid(errors.ErrInvalidStateToken)
		}
	}()

	result = s.validate(state, expectedProviderID)
	if !result.IsValid {
		s.logger.Debug().Str("provider_id", expectedProviderID).Str("reason", result.ErrorMessage()).Msg("Rejected state token")
	}
	return result
}

func (s *Service) validate(state, expectedProviderID string) ValidationResult {
	providerID, rest, ok := splitProvider(state)
	if !ok {
		return invalid(errors.ErrInvalidStateFormat)
	}
	if providerID != expectedProviderID {
		return invalid(errors.ErrProviderMismatch)
	}

	nonce, timestamp, signature, ok := splitFields(rest)
	if !ok || strings.Contains(rest, providerSeparator) {
		return invalid(errors.ErrInvalidStateFormat)
	}
	t := token{providerID: providerID, nonce: nonce, timestamp: timestamp, signature: signature}

	if !verify(s.secret, t.payload(), t.signature) {
		return invalid(errors.ErrInvalidStateSignature)
	}

	issuedAt, ok := t.timestampMillis()
	if !ok {
		return invalid(errors.ErrInvalidStateFormat)
	}
	if s.now().UnixMilli()-issuedAt > s.ttl.Milliseconds() {
		return invalid(errors.ErrStateExpired)
	}

	// Lookup, stored provider check and consume happen under one repo lock.
	// A mismatching entry stays in place for its real provider.
	entry, err := s.repo.TakeIf(nonce, func(e *StateEntry) bool {
		return e.ProviderID == expectedProviderID
	})
	switch {
	case errors.Is(err, errors.ErrNotFound):
		return invalid(errors.ErrStateNotFound)
	case errors.Is(err, errors.ErrPreconditionFailed):
		return invalid(errors.ErrInvalidStateToken)
	case err != nil:
		s.logger.Err(err).Str("provider_id", expectedProviderID).Msg("Failed to read state entry")
		return invalid(errors.ErrInvalidStateToken)
	case entry == nil:
		return invalid(errors.ErrStateNotFound)
	}

	return ValidationResult{
		IsValid:     true,
		ClientState: entry.ClientState,
		RedirectURI: entry.RedirectURI,
	}
}

// ExtractProviderFromState returns the clear-text provider prefix of a state
// without validating anything, so a callback can be routed before it is
// checked.
func ExtractProviderFromState(state string) (string, bool) {
	providerID, _, ok := splitProvider(state)
	if !ok {
		return "", false
	}
	return providerID, true
}

// ExtractProviderFromState is the method form of the package function.
func (s *Service) ExtractProviderFromState(state string) (string, bool) {
	return ExtractProviderFromState(state)
}

// SweepExpired deletes entries older than the TTL and returns how many were
// removed.
func (s *Service) SweepExpired() int {
	removed, err := s.repo.DeleteOlderThan(s.now().Add(-s.ttl))
	if err != nil {
		s.logger.Err(err).Msg("Failed to sweep expired state entries")
	}
	return removed
}

// Pending reports the number of issued but unconsumed entries.
func (s *Service) Pending() int {
	return s.repo.Len()
}
