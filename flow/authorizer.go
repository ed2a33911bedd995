package flow

import (
	"crypto/subtle"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/oauth2"

	"github.com/unraid/api-oidc-state/internal/errors"
	"github.com/unraid/api-oidc-state/internal/utils"
	"github.com/unraid/api-oidc-state/oidcstate"
)

// AuthRequest is everything the authorize step produces. URL is where the
// user agent is sent; ClientState and Verifier stay with the caller (for
// example in a short lived cookie) until the callback arrives.
type AuthRequest struct {
	Provider    *Provider
	URL         string
	State       string
	ClientState string
	Verifier    string
}

// Callback is the result of a successfully validated callback state.
type Callback struct {
	Provider    *Provider
	ClientState string
	RedirectURI string // empty when none was requested
}

// Authorizer ties provider configuration to the state service on both legs
// of the authorization code flow.
type Authorizer struct {
	providers *Registry
	states    *oidcstate.Service
}

func NewAuthorizer(providers *Registry, states *oidcstate.Service) *Authorizer {
	return &Authorizer{
		providers: providers,
		states:    states,
	}
}

// Begin starts a flow for providerID. redirectURI may be empty.
func (a *Authorizer) Begin(providerID, redirectURI string) (*AuthRequest, error) {
	provider, err := a.providers.Get(providerID)
	if err != nil {
		return nil, err
	}

	clientState := uuid.New().String()
	var opts []oidcstate.GenerateOption
	if redirectURI != "" {
		opts = append(opts, oidcstate.WithRedirectURI(redirectURI))
	}
	state, err := a.states.GenerateSecureState(provider.ID, clientState, opts...)
	if err != nil {
		return nil, fmt.Errorf("[flow Begin] failed to generate state: %w", err)
	}

	verifier := oauth2.GenerateVerifier()
	return &AuthRequest{
		Provider:    provider,
		URL:         provider.OAuth2.AuthCodeURL(state, oauth2.S256ChallengeOption(verifier)),
		State:       state,
		ClientState: clientState,
		Verifier:    verifier,
	}, nil
}

// ResolveCallback routes a returned state to its provider and validates it.
// The returned error wraps one of the state sentinels from internal/errors,
// or ErrUnknownProvider.
func (a *Authorizer) ResolveCallback(state string) (*Callback, error) {
	providerID, ok := a.states.ExtractProviderFromState(state)
	if !ok {
		return nil, errors.Wrapf(errors.ErrInvalidStateFormat, "[flow ResolveCallback] state has no provider")
	}

	provider, err := a.providers.Get(providerID)
	if err != nil {
		return nil, err
	}

	result := a.states.ValidateSecureState(state, provider.ID)
	if !result.IsValid {
		log.Warn().Str("provider_id", provider.ID).Str("reason", result.ErrorMessage()).Msg("Callback state rejected")
		return nil, errors.Wrapf(result.Err, "[flow ResolveCallback] provider %q", provider.ID)
	}

	return &Callback{
		Provider:    provider,
		ClientState: result.ClientState,
		RedirectURI: utils.Value(result.RedirectURI),
	}, nil
}

// ResolveCallbackWithClientState also checks that the returned client state
// equals the value the caller kept from Begin.
func (a *Authorizer) ResolveCallbackWithClientState(state, expectedClientState string) (*Callback, error) {
	cb, err := a.ResolveCallback(state)
	if err != nil {
		return nil, err
	}
	if subtle.ConstantTimeCompare([]byte(cb.ClientState), []byte(expectedClientState)) != 1 {
		return nil, errors.Wrapf(errors.ErrInvalidStateToken, "[flow ResolveCallback] client state mismatch")
	}
	return cb, nil
}
