package service

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/aussiebroadwan/ssobridge/internal/sso/cache"
	"github.com/aussiebroadwan/ssobridge/internal/sso/domain"
	"github.com/stretchr/testify/require"
)

func TestResolveStaticEndpoints(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	// No HTTP client at all: static resolution must never touch the network.
	resolver := &MetadataResolver{Cache: cache.NewMemory(), TTL: time.Hour}

	meta, err := resolver.Resolve(ctx, domain.Provider{
		ID:                    "p1",
		AuthorizationEndpoint: "https://idp.example.com/authorize",
		TokenEndpoint:         "https://idp.example.com/token",
		UserInfoEndpoint:      "https://idp.example.com/userinfo",
	})
	require.NoError(t, err)
	require.Equal(t, "https://idp.example.com/authorize", meta.AuthorizationEndpoint)
	require.Equal(t, "https://idp.example.com/token", meta.TokenEndpoint)
	require.Equal(t, "https://idp.example.com/userinfo", meta.UserInfoEndpoint)
}

func TestResolveDiscovery(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	var hits atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"issuer": "https://idp.example.com",
			"authorization_endpoint": "https://idp.example.com/authorize",
			"token_endpoint": "https://idp.example.com/token",
			"userinfo_endpoint": "https://idp.example.com/userinfo"
		}`))
	}))
	t.Cleanup(srv.Close)

	resolver := NewMetadataResolver(cache.NewMemory(), time.Hour)
	provider := domain.Provider{ID: "p1", OpenIDDiscoveryEndpoint: srv.URL}

	meta, err := resolver.Resolve(ctx, provider)
	require.NoError(t, err)
	require.Equal(t, "https://idp.example.com/authorize", meta.AuthorizationEndpoint)
	require.EqualValues(t, 1, hits.Load())

	// Second resolve is served from cache.
	meta, err = resolver.Resolve(ctx, provider)
	require.NoError(t, err)
	require.Equal(t, "https://idp.example.com/token", meta.TokenEndpoint)
	require.EqualValues(t, 1, hits.Load())

	// Invalidation forces a refetch.
	require.NoError(t, resolver.Invalidate(ctx, "p1"))
	_, err = resolver.Resolve(ctx, provider)
	require.NoError(t, err)
	require.EqualValues(t, 2, hits.Load())
}

func TestResolveDiscoveryMissingField(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"authorization_endpoint": "https://idp.example.com/authorize",
			"token_endpoint": "https://idp.example.com/token"
		}`))
	}))
	t.Cleanup(srv.Close)

	resolver := NewMetadataResolver(cache.NewMemory(), time.Hour)

	_, err := resolver.Resolve(ctx, domain.Provider{ID: "p1", OpenIDDiscoveryEndpoint: srv.URL})
	var upstream *UpstreamError
	require.ErrorAs(t, err, &upstream)
	require.Contains(t, err.Error(), "userinfo_endpoint")
}

func TestResolveDiscoveryBadResponses(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("non-2xx status", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "nope", http.StatusInternalServerError)
		}))
		t.Cleanup(srv.Close)

		resolver := NewMetadataResolver(cache.NewMemory(), time.Hour)
		_, err := resolver.Resolve(ctx, domain.Provider{ID: "p1", OpenIDDiscoveryEndpoint: srv.URL})
		var upstream *UpstreamError
		require.ErrorAs(t, err, &upstream)
	})

	t.Run("non-JSON body", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte("<html>not json</html>"))
		}))
		t.Cleanup(srv.Close)

		resolver := NewMetadataResolver(cache.NewMemory(), time.Hour)
		_, err := resolver.Resolve(ctx, domain.Provider{ID: "p1", OpenIDDiscoveryEndpoint: srv.URL})
		var upstream *UpstreamError
		require.ErrorAs(t, err, &upstream)
	})

	t.Run("unreachable endpoint", func(t *testing.T) {
		resolver := NewMetadataResolver(cache.NewMemory(), time.Hour)
		_, err := resolver.Resolve(ctx, domain.Provider{
			ID:                      "p1",
			OpenIDDiscoveryEndpoint: "http://127.0.0.1:1/openid-configuration",
		})
		var upstream *UpstreamError
		require.ErrorAs(t, err, &upstream)
	})
}
