package store

import (
	"context"
	"errors"

	"github.com/aussiebroadwan/ssobridge/internal/sso/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
)

// Store is the root data access interface. Concrete drivers (sqlite for now)
// implement this. It exposes sub-repositories to keep concerns tidy and
// testable.
type Store interface {
	Providers() Providers
	GroupMappings() GroupMappings
	Accounts() Accounts
	Groups() Groups

	ApplyMigrations() error

	// Tx starts a read/write transaction and returns a Tx-scoped Store.
	// The caller MUST call Commit() or Rollback() on the returned Tx.
	Tx(ctx context.Context) (Tx, error)

	// WithTx executes a function within a transaction.
	// If fn returns an error, the transaction is rolled back.
	// If fn returns nil, the transaction is committed.
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	// Close releases any underlying resources.
	Close() error

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error
}

// Tx is a transactional store. It embeds the same repos but adds Commit/Rollback.
type Tx interface {
	Store
	Commit() error
	Rollback() error
}

type Providers interface {
	// GetProviderByID returns a provider regardless of its active flag.
	GetProviderByID(ctx context.Context, id string) (domain.Provider, error)

	// GetActiveProviderByID returns a provider only if it is active.
	// Inactive and unknown providers both yield ErrNotFound.
	GetActiveProviderByID(ctx context.Context, id string) (domain.Provider, error)

	// ListProviders returns all providers ordered by creation date (newest first).
	ListProviders(ctx context.Context) ([]domain.Provider, error)

	// CreateProvider inserts a new provider (id is provided by app via ULID).
	CreateProvider(ctx context.Context, p domain.Provider) error

	// UpdateProvider replaces all mutable fields and bumps updated_at.
	UpdateProvider(ctx context.Context, p domain.Provider) error

	// DeleteProvider cascades to group mappings and provider links (per schema).
	DeleteProvider(ctx context.Context, id string) error
}

type GroupMappings interface {
	// GetGroupMappingByID returns a mapping by id.
	GetGroupMappingByID(ctx context.Context, id string) (domain.GroupMapping, error)

	// ListGroupMappingsByProvider returns all mappings of one provider.
	ListGroupMappingsByProvider(ctx context.Context, providerID string) ([]domain.GroupMapping, error)

	// ListGroupMappingsByExternalID returns every mapping of the provider
	// whose external-identifier set contains externalID.
	ListGroupMappingsByExternalID(ctx context.Context, providerID, externalID string) ([]domain.GroupMapping, error)

	// CreateGroupMapping inserts a new mapping (id is ULID).
	CreateGroupMapping(ctx context.Context, m domain.GroupMapping) error

	// UpdateGroupMapping replaces title, external ids and mapped groups.
	UpdateGroupMapping(ctx context.Context, m domain.GroupMapping) error

	// DeleteGroupMapping removes a mapping.
	DeleteGroupMapping(ctx context.Context, id string) error
}

type Accounts interface {
	// GetAccountByID returns an account by id.
	GetAccountByID(ctx context.Context, id string) (domain.Account, error)

	// GetAccountByEmail looks up an account by exact email match. Case
	// handling is the database collation's concern.
	GetAccountByEmail(ctx context.Context, email string) (domain.Account, error)

	// CreateAccount inserts a new account (id is ULID).
	CreateAccount(ctx context.Context, a domain.Account) error

	// LinkProvider records that the account has logged in through the
	// provider. Idempotent: linking twice is a no-op.
	LinkProvider(ctx context.Context, accountID, providerID string) error

	// ListLinkedProviderIDs returns the providers an account has used.
	ListLinkedProviderIDs(ctx context.Context, accountID string) ([]string, error)
}

type Groups interface {
	// GetGroupByID returns a group by id.
	GetGroupByID(ctx context.Context, id string) (domain.Group, error)

	// ListGroups returns all groups ordered by title.
	ListGroups(ctx context.Context) ([]domain.Group, error)

	// CreateGroup inserts a new group (id is ULID).
	CreateGroup(ctx context.Context, g domain.Group) error

	// AddMember adds an account to a group. Idempotent: adding an existing
	// direct member is a no-op.
	AddMember(ctx context.Context, groupID, accountID string) error

	// IsDirectMember reports whether the account is a direct member of the group.
	IsDirectMember(ctx context.Context, groupID, accountID string) (bool, error)

	// ListAccountGroupIDs returns the ids of every group the account is a
	// direct member of.
	ListAccountGroupIDs(ctx context.Context, accountID string) ([]string, error)
}
