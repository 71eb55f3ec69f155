package service

import (
	"context"
	"errors"
	"net/url"
	"strings"

	"github.com/aussiebroadwan/ssobridge/internal/sso/domain"
	"github.com/aussiebroadwan/ssobridge/internal/sso/store"
	"github.com/aussiebroadwan/ssobridge/pkg/idx"
	"github.com/aussiebroadwan/ssobridge/pkg/jsonpath"
	"github.com/aussiebroadwan/ssobridge/pkg/slogx"
)

// ProviderService manages identity provider configuration. Updates and
// deletes invalidate the discovery cache so a reconfigured provider never
// serves stale endpoints.
type ProviderService struct {
	Store    store.Store
	Metadata *MetadataResolver
}

// CreateProvider validates and stores a new provider, assigning its id.
func (s *ProviderService) CreateProvider(ctx context.Context, p domain.Provider) (domain.Provider, error) {
	l := slogx.FromContext(ctx)

	if err := validateProvider(p); err != nil {
		return domain.Provider{}, err
	}

	p.ID = idx.New().String()
	if err := s.Store.Providers().CreateProvider(ctx, p); err != nil {
		l.Error("failed to create provider", "error", err)
		return domain.Provider{}, &PersistenceError{Op: "provider create", Err: err}
	}

	l.Info("provider created", "provider_id", p.ID, "title", p.Title)
	return s.Store.Providers().GetProviderByID(ctx, p.ID)
}

// UpdateProvider validates and replaces a provider's configuration.
func (s *ProviderService) UpdateProvider(ctx context.Context, p domain.Provider) (domain.Provider, error) {
	l := slogx.FromContext(ctx)

	if err := validateProvider(p); err != nil {
		return domain.Provider{}, err
	}

	if err := s.Store.Providers().UpdateProvider(ctx, p); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Provider{}, ErrProviderNotFound
		}
		l.Error("failed to update provider", "error", err, "provider_id", p.ID)
		return domain.Provider{}, &PersistenceError{Op: "provider update", Err: err}
	}

	if err := s.Metadata.Invalidate(ctx, p.ID); err != nil {
		l.Warn("failed to invalidate discovery cache", "provider_id", p.ID, "error", err)
	}

	l.Info("provider updated", "provider_id", p.ID)
	return s.Store.Providers().GetProviderByID(ctx, p.ID)
}

// GetProvider returns a provider by id, active or not.
func (s *ProviderService) GetProvider(ctx context.Context, id string) (domain.Provider, error) {
	p, err := s.Store.Providers().GetProviderByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Provider{}, ErrProviderNotFound
		}
		return domain.Provider{}, err
	}
	return p, nil
}

// ListProviders returns all providers.
func (s *ProviderService) ListProviders(ctx context.Context) ([]domain.Provider, error) {
	return s.Store.Providers().ListProviders(ctx)
}

// DeleteProvider removes a provider, its group mappings, and its account
// links (schema cascade), and drops its cached discovery document.
func (s *ProviderService) DeleteProvider(ctx context.Context, id string) error {
	l := slogx.FromContext(ctx)

	if err := s.Store.Providers().DeleteProvider(ctx, id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrProviderNotFound
		}
		l.Error("failed to delete provider", "error", err, "provider_id", id)
		return &PersistenceError{Op: "provider delete", Err: err}
	}

	if err := s.Metadata.Invalidate(ctx, id); err != nil {
		l.Warn("failed to invalidate discovery cache", "provider_id", id, "error", err)
	}

	l.Info("provider deleted", "provider_id", id)
	return nil
}

func validateProvider(p domain.Provider) error {
	if strings.TrimSpace(p.Title) == "" {
		return &ValidationError{Field: "title", Reason: "must not be empty"}
	}
	if strings.TrimSpace(p.ClientID) == "" {
		return &ValidationError{Field: "client_id", Reason: "must not be empty"}
	}

	if p.OpenIDDiscoveryEndpoint == "" {
		// Without discovery, all three static endpoints are required.
		for _, field := range []struct{ name, value string }{
			{"authorization_endpoint", p.AuthorizationEndpoint},
			{"token_endpoint", p.TokenEndpoint},
			{"userinfo_endpoint", p.UserInfoEndpoint},
		} {
			if field.value == "" {
				return &ValidationError{Field: field.name, Reason: "required when discovery is not configured"}
			}
		}
	}

	for _, field := range []struct{ name, value string }{
		{"openid_discovery_endpoint", p.OpenIDDiscoveryEndpoint},
		{"authorization_endpoint", p.AuthorizationEndpoint},
		{"token_endpoint", p.TokenEndpoint},
		{"userinfo_endpoint", p.UserInfoEndpoint},
		{"groupsinfo_endpoint", p.GroupsInfoEndpoint},
	} {
		if field.value == "" {
			continue
		}
		u, err := url.Parse(field.value)
		if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
			return &ValidationError{Field: field.name, Reason: "must be an absolute http(s) URL"}
		}
	}

	if p.UserInfoEmailPath == "" {
		return &ValidationError{Field: "userinfo_email_path", Reason: "must not be empty"}
	}
	for _, field := range []struct{ name, value string }{
		{"userinfo_email_path", p.UserInfoEmailPath},
		{"userinfo_first_name_path", p.UserInfoFirstNamePath},
		{"userinfo_surname_path", p.UserInfoSurnamePath},
		{"groupsinfo_identifier_path", p.GroupsInfoIdentifierPath},
	} {
		if field.value == "" {
			continue
		}
		if _, err := jsonpath.Parse(field.value); err != nil {
			return &ValidationError{Field: field.name, Reason: err.Error()}
		}
	}

	if p.GroupsInfoEndpoint != "" && p.GroupsInfoIdentifierPath == "" {
		return &ValidationError{Field: "groupsinfo_identifier_path", Reason: "required when a groups info endpoint is configured"}
	}
	return nil
}
