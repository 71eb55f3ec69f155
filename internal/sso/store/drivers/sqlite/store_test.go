package sqlite

import (
	"context"
	"testing"

	"github.com/aussiebroadwan/ssobridge/internal/sso/domain"
	"github.com/aussiebroadwan/ssobridge/internal/sso/store"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	s, err := NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	require.NoError(t, s.ApplyMigrations())
	return s
}

func seedProvider(t *testing.T, s *Store, id string, active bool) domain.Provider {
	t.Helper()

	p := domain.Provider{
		ID:                    id,
		Active:                active,
		Title:                 "Test Provider " + id,
		ClientID:              "client-" + id,
		Scopes:                []string{"openid", "email"},
		AuthorizationEndpoint: "https://idp.example.com/authorize",
		TokenEndpoint:         "https://idp.example.com/token",
		UserInfoEndpoint:      "https://idp.example.com/userinfo",
		UserInfoEmailPath:     "$.email",
	}
	require.NoError(t, s.Providers().CreateProvider(context.Background(), p))
	return p
}

func TestProviderRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	seedProvider(t, s, "p1", true)

	got, err := s.Providers().GetProviderByID(ctx, "p1")
	require.NoError(t, err)
	require.Equal(t, "Test Provider p1", got.Title)
	require.Equal(t, []string{"openid", "email"}, got.Scopes)
	require.Equal(t, "$.email", got.UserInfoEmailPath)
	require.Empty(t, got.OpenIDDiscoveryEndpoint)
	require.False(t, got.CreatedAt.IsZero())
}

func TestGetActiveProvider(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	seedProvider(t, s, "active", true)
	seedProvider(t, s, "inactive", false)

	_, err := s.Providers().GetActiveProviderByID(ctx, "active")
	require.NoError(t, err)

	_, err = s.Providers().GetActiveProviderByID(ctx, "inactive")
	require.ErrorIs(t, err, store.ErrNotFound)

	_, err = s.Providers().GetActiveProviderByID(ctx, "unknown")
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestUpdateProvider(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	p := seedProvider(t, s, "p1", false)
	p.Active = true
	p.Title = "Renamed"
	p.OpenIDDiscoveryEndpoint = "https://idp.example.com/.well-known/openid-configuration"
	require.NoError(t, s.Providers().UpdateProvider(ctx, p))

	got, err := s.Providers().GetProviderByID(ctx, "p1")
	require.NoError(t, err)
	require.True(t, got.Active)
	require.Equal(t, "Renamed", got.Title)
	require.True(t, got.UsesDiscovery())

	p.ID = "unknown"
	require.ErrorIs(t, s.Providers().UpdateProvider(ctx, p), store.ErrNotFound)
}

func TestDeleteProviderCascades(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	seedProvider(t, s, "p1", true)
	require.NoError(t, s.GroupMappings().CreateGroupMapping(ctx, domain.GroupMapping{
		ID:               "m1",
		ProviderID:       "p1",
		Title:            "Admins",
		ExternalGroupIDs: []string{"idp-admins"},
		GroupIDs:         []string{"g1"},
	}))

	require.NoError(t, s.Providers().DeleteProvider(ctx, "p1"))

	_, err := s.GroupMappings().GetGroupMappingByID(ctx, "m1")
	require.ErrorIs(t, err, store.ErrNotFound)

	require.ErrorIs(t, s.Providers().DeleteProvider(ctx, "p1"), store.ErrNotFound)
}

func TestListGroupMappingsByExternalID(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	seedProvider(t, s, "p1", true)
	seedProvider(t, s, "p2", true)

	require.NoError(t, s.GroupMappings().CreateGroupMapping(ctx, domain.GroupMapping{
		ID: "m1", ProviderID: "p1", Title: "Admins",
		ExternalGroupIDs: []string{"idp-admins", "idp-superusers"},
		GroupIDs:         []string{"g1"},
	}))
	require.NoError(t, s.GroupMappings().CreateGroupMapping(ctx, domain.GroupMapping{
		ID: "m2", ProviderID: "p1", Title: "Staff",
		ExternalGroupIDs: []string{"idp-staff"},
		GroupIDs:         []string{"g2"},
	}))
	require.NoError(t, s.GroupMappings().CreateGroupMapping(ctx, domain.GroupMapping{
		ID: "m3", ProviderID: "p2", Title: "Other provider admins",
		ExternalGroupIDs: []string{"idp-admins"},
		GroupIDs:         []string{"g3"},
	}))

	t.Run("matches whole elements only", func(t *testing.T) {
		got, err := s.GroupMappings().ListGroupMappingsByExternalID(ctx, "p1", "idp-admins")
		require.NoError(t, err)
		require.Len(t, got, 1)
		require.Equal(t, "m1", got[0].ID)

		// "admins" is a substring of "idp-admins" but not an element.
		got, err = s.GroupMappings().ListGroupMappingsByExternalID(ctx, "p1", "admins")
		require.NoError(t, err)
		require.Empty(t, got)
	})

	t.Run("scoped to the provider", func(t *testing.T) {
		got, err := s.GroupMappings().ListGroupMappingsByExternalID(ctx, "p2", "idp-admins")
		require.NoError(t, err)
		require.Len(t, got, 1)
		require.Equal(t, "m3", got[0].ID)
	})

	t.Run("second element matches", func(t *testing.T) {
		got, err := s.GroupMappings().ListGroupMappingsByExternalID(ctx, "p1", "idp-superusers")
		require.NoError(t, err)
		require.Len(t, got, 1)
		require.Equal(t, "m1", got[0].ID)
	})

	t.Run("wildcard characters match literally", func(t *testing.T) {
		require.NoError(t, s.GroupMappings().CreateGroupMapping(ctx, domain.GroupMapping{
			ID: "m4", ProviderID: "p1", Title: "Odd ids",
			ExternalGroupIDs: []string{"%", "idp_ops", `idp\ops`},
			GroupIDs:         []string{"g4"},
		}))

		// "%" must not union every mapping of the provider.
		got, err := s.GroupMappings().ListGroupMappingsByExternalID(ctx, "p1", "%")
		require.NoError(t, err)
		require.Len(t, got, 1)
		require.Equal(t, "m4", got[0].ID)

		// "_" must not act as a single-character wildcard.
		got, err = s.GroupMappings().ListGroupMappingsByExternalID(ctx, "p1", "idp-staf_")
		require.NoError(t, err)
		require.Empty(t, got)

		got, err = s.GroupMappings().ListGroupMappingsByExternalID(ctx, "p1", "idp_ops")
		require.NoError(t, err)
		require.Len(t, got, 1)
		require.Equal(t, "m4", got[0].ID)

		got, err = s.GroupMappings().ListGroupMappingsByExternalID(ctx, "p1", `idp\ops`)
		require.NoError(t, err)
		require.Len(t, got, 1)
		require.Equal(t, "m4", got[0].ID)
	})
}

func TestAccountsAndProviderLinks(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	seedProvider(t, s, "p1", true)
	require.NoError(t, s.Accounts().CreateAccount(ctx, domain.Account{
		ID: "a1", Email: "a@b.com", FirstName: "A", Surname: "B",
	}))

	got, err := s.Accounts().GetAccountByEmail(ctx, "a@b.com")
	require.NoError(t, err)
	require.Equal(t, "a1", got.ID)

	_, err = s.Accounts().GetAccountByEmail(ctx, "nobody@b.com")
	require.ErrorIs(t, err, store.ErrNotFound)

	// Linking is idempotent.
	require.NoError(t, s.Accounts().LinkProvider(ctx, "a1", "p1"))
	require.NoError(t, s.Accounts().LinkProvider(ctx, "a1", "p1"))

	ids, err := s.Accounts().ListLinkedProviderIDs(ctx, "a1")
	require.NoError(t, err)
	require.Equal(t, []string{"p1"}, ids)
}

func TestGroupMembership(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	require.NoError(t, s.Groups().CreateGroup(ctx, domain.Group{ID: "g1", Title: "Members"}))
	require.NoError(t, s.Accounts().CreateAccount(ctx, domain.Account{ID: "a1", Email: "a@b.com"}))

	member, err := s.Groups().IsDirectMember(ctx, "g1", "a1")
	require.NoError(t, err)
	require.False(t, member)

	// Adding twice is a no-op.
	require.NoError(t, s.Groups().AddMember(ctx, "g1", "a1"))
	require.NoError(t, s.Groups().AddMember(ctx, "g1", "a1"))

	member, err = s.Groups().IsDirectMember(ctx, "g1", "a1")
	require.NoError(t, err)
	require.True(t, member)

	ids, err := s.Groups().ListAccountGroupIDs(ctx, "a1")
	require.NoError(t, err)
	require.Equal(t, []string{"g1"}, ids)
}

func TestWithTxRollsBackOnError(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	err := s.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.Groups().CreateGroup(ctx, domain.Group{ID: "g1", Title: "Members"}); err != nil {
			return err
		}
		return context.Canceled
	})
	require.ErrorIs(t, err, context.Canceled)

	_, err = s.Groups().GetGroupByID(ctx, "g1")
	require.ErrorIs(t, err, store.ErrNotFound)
}
