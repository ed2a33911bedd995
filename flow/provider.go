package flow

import (
	"sort"
	"strings"
	"sync"

	"github.com/coreos/go-oidc/v3/oidc"
	"golang.org/x/oauth2"

	"github.com/unraid/api-oidc-state/internal/errors"
)

// DefaultScopes are requested when a provider is registered without scopes.
var DefaultScopes = []string{oidc.ScopeOpenID, "profile", "email"}

// Provider is one configured identity provider. Endpoint discovery happens
// elsewhere; the oauth2 config arrives fully populated.
type Provider struct {
	ID     string
	OAuth2 *oauth2.Config
}

func NewProvider(id, clientID, clientSecret string, endpoint oauth2.Endpoint, redirectURL string, scopes ...string) *Provider {
	if len(scopes) == 0 {
		scopes = append([]string(nil), DefaultScopes...)
	}
	return &Provider{
		ID: id,
		OAuth2: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			Endpoint:     endpoint,
			RedirectURL:  redirectURL,
			Scopes:       scopes,
		},
	}
}

// Registry holds the configured providers keyed by ID.
type Registry struct {
	mu        sync.RWMutex
	providers map[string]*Provider
}

func NewRegistry() *Registry {
	return &Registry{
		providers: make(map[string]*Provider),
	}
}

// Register adds or replaces a provider. The ID ends up as the clear-text
// prefix of state tokens and so may not contain a colon.
func (r *Registry) Register(p *Provider) error {
	if p == nil || p.OAuth2 == nil {
		return errors.Wrapf(errors.ErrInvalidParameter, "provider and its oauth2 config are required")
	}
	if p.ID == "" || strings.Contains(p.ID, ":") {
		return errors.Wrapf(errors.ErrInvalidParameter, "invalid provider id %q", p.ID)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.providers[p.ID] = p
	return nil
}

func (r *Registry) Get(id string) (*Provider, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.providers[id]
	if !ok {
		return nil, errors.Wrapf(errors.ErrUnknownProvider, "provider %q", id)
	}
	return p, nil
}

// List returns the registered provider IDs in sorted order.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]string, 0, len(r.providers))
	for id := range r.providers {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
