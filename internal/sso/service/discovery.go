package service

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/aussiebroadwan/ssobridge/internal/sso/cache"
	"github.com/aussiebroadwan/ssobridge/internal/sso/domain"
	"github.com/aussiebroadwan/ssobridge/pkg/slogx"
	"github.com/hashicorp/go-cleanhttp"
)

// ProviderMetadata is the effective endpoint set for one provider, either
// taken straight from its static configuration or resolved via OpenID
// discovery.
type ProviderMetadata struct {
	AuthorizationEndpoint string `json:"authorization_endpoint"`
	TokenEndpoint         string `json:"token_endpoint"`
	UserInfoEndpoint      string `json:"userinfo_endpoint"`
}

// MetadataResolver resolves provider endpoints, caching discovery documents
// per provider id. Static providers never touch the network or the cache.
type MetadataResolver struct {
	Cache  cache.Cache
	TTL    time.Duration
	Client *http.Client
}

func NewMetadataResolver(c cache.Cache, ttl time.Duration) *MetadataResolver {
	return &MetadataResolver{
		Cache:  c,
		TTL:    ttl,
		Client: cleanhttp.DefaultPooledClient(),
	}
}

func cacheKey(providerID string) string {
	return "provider-" + providerID
}

// Resolve returns the provider's effective endpoints. Cached discovery
// results are reused until their TTL lapses.
func (r *MetadataResolver) Resolve(ctx context.Context, p domain.Provider) (ProviderMetadata, error) {
	if !p.UsesDiscovery() {
		return ProviderMetadata{
			AuthorizationEndpoint: p.AuthorizationEndpoint,
			TokenEndpoint:         p.TokenEndpoint,
			UserInfoEndpoint:      p.UserInfoEndpoint,
		}, nil
	}

	if data, err := r.Cache.Get(ctx, cacheKey(p.ID)); err == nil {
		var meta ProviderMetadata
		if err := json.Unmarshal(data, &meta); err == nil {
			return meta, nil
		}
		// Unreadable cache entry; fall through to a fresh fetch.
		_ = r.Cache.Delete(ctx, cacheKey(p.ID))
	}

	meta, err := r.fetch(ctx, p.OpenIDDiscoveryEndpoint)
	if err != nil {
		return ProviderMetadata{}, err
	}

	if data, err := json.Marshal(meta); err == nil {
		if err := r.Cache.Set(ctx, cacheKey(p.ID), data, r.TTL); err != nil {
			slogx.FromContext(ctx).Warn("failed to cache discovery document",
				"provider_id", p.ID, "error", err)
		}
	}
	return meta, nil
}

// Invalidate drops the cached discovery document for a provider. Called when
// a provider's configuration changes so stale endpoints don't outlive it.
func (r *MetadataResolver) Invalidate(ctx context.Context, providerID string) error {
	return r.Cache.Delete(ctx, cacheKey(providerID))
}

func (r *MetadataResolver) fetch(ctx context.Context, endpoint string) (ProviderMetadata, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return ProviderMetadata{}, &UpstreamError{Op: "discovery", Err: err}
	}
	req.Header.Set("Accept", "application/json")

	resp, err := r.Client.Do(req)
	if err != nil {
		return ProviderMetadata{}, &UpstreamError{Op: "discovery", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return ProviderMetadata{}, &UpstreamError{
			Op:  "discovery",
			Err: fmt.Errorf("unexpected status %d", resp.StatusCode),
		}
	}

	var doc map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&doc); err != nil {
		return ProviderMetadata{}, &UpstreamError{Op: "discovery", Err: fmt.Errorf("invalid JSON: %w", err)}
	}

	var meta ProviderMetadata
	for _, field := range []struct {
		name string
		dst  *string
	}{
		{"authorization_endpoint", &meta.AuthorizationEndpoint},
		{"token_endpoint", &meta.TokenEndpoint},
		{"userinfo_endpoint", &meta.UserInfoEndpoint},
	} {
		val, ok := doc[field.name].(string)
		if !ok || val == "" {
			return ProviderMetadata{}, &UpstreamError{
				Op:  "discovery",
				Err: fmt.Errorf("missing field %q", field.name),
			}
		}
		*field.dst = val
	}
	return meta, nil
}
