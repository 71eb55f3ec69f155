package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/aussiebroadwan/ssobridge/internal/sso/domain"
	"github.com/aussiebroadwan/ssobridge/internal/sso/store"
	_ "modernc.org/sqlite"
)

// dbtx is satisfied by both *sql.DB and *sql.Tx so the repos can run inside
// or outside a transaction without caring which.
type dbtx interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type Store struct {
	db  *sql.DB
	dsn string
}

func NewStore(dsn string) (*Store, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}

	// Enforce FKs
	if _, err := db.ExecContext(context.Background(), `PRAGMA foreign_keys = ON;`); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Store{
		db:  db,
		dsn: dsn,
	}, nil
}

func (s *Store) Close() error { return s.db.Close() }

// Ping verifies the database connection is still alive.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Tx starts a read/write transaction and returns a Tx-scoped Store.
func (s *Store) Tx(ctx context.Context) (store.Tx, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	return newTx(tx), nil
}

// WithTx executes fn within a transaction, automatically handling commit/rollback.
func (s *Store) WithTx(ctx context.Context, fn func(tx store.Tx) error) error {
	tx, err := s.Tx(ctx)
	if err != nil {
		return err
	}

	// Ensure rollback is called if we panic or return early with error
	defer func() {
		_ = tx.Rollback() // safe to call even after commit
	}()

	// Execute the function
	if err := fn(tx); err != nil {
		return err // rollback happens in defer
	}

	// Commit on success
	return tx.Commit()
}

func (s *Store) Providers() store.Providers         { return &providersRepo{db: s.db} }
func (s *Store) GroupMappings() store.GroupMappings { return &groupMappingsRepo{db: s.db} }
func (s *Store) Accounts() store.Accounts           { return &accountsRepo{db: s.db} }
func (s *Store) Groups() store.Groups               { return &groupsRepo{db: s.db} }

func mapNotFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return store.ErrNotFound
	}
	return err
}

// requireAffected turns a zero-row UPDATE or DELETE into ErrNotFound.
func requireAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}

func mapNullString(ns sql.NullString) string {
	if ns.Valid {
		return ns.String
	}
	return ""
}

func mapStringNull(s string) sql.NullString {
	if s == "" {
		return sql.NullString{Valid: false}
	}
	return sql.NullString{String: s, Valid: true}
}

// splitCSV splits a comma-delimited column into its elements, dropping empty
// entries and duplicates while keeping order.
func splitCSV(s string) []string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	seen := make(map[string]struct{}, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if _, ok := seen[part]; ok {
			continue
		}
		seen[part] = struct{}{}
		out = append(out, part)
	}
	return out
}

func joinCSV(parts []string) string {
	return strings.Join(parts, ",")
}

func splitScopes(s string) []string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return strings.Fields(s)
}

type providerRow struct {
	ID                       string
	Active                   bool
	Title                    string
	ClientID                 string
	Scopes                   string
	OpenIDDiscoveryEndpoint  sql.NullString
	AuthorizationEndpoint    sql.NullString
	TokenEndpoint            sql.NullString
	UserInfoEndpoint         sql.NullString
	UserInfoEmailPath        string
	UserInfoFirstNamePath    sql.NullString
	UserInfoSurnamePath      sql.NullString
	GroupsInfoEndpoint       sql.NullString
	GroupsInfoIdentifierPath sql.NullString
	DefaultGroupID           sql.NullString
	CreatedAt                time.Time
	UpdatedAt                time.Time
}

func mapProvider(row providerRow) domain.Provider {
	return domain.Provider{
		ID:                       row.ID,
		Active:                   row.Active,
		Title:                    row.Title,
		ClientID:                 row.ClientID,
		Scopes:                   splitScopes(row.Scopes),
		OpenIDDiscoveryEndpoint:  mapNullString(row.OpenIDDiscoveryEndpoint),
		AuthorizationEndpoint:    mapNullString(row.AuthorizationEndpoint),
		TokenEndpoint:            mapNullString(row.TokenEndpoint),
		UserInfoEndpoint:         mapNullString(row.UserInfoEndpoint),
		UserInfoEmailPath:        row.UserInfoEmailPath,
		UserInfoFirstNamePath:    mapNullString(row.UserInfoFirstNamePath),
		UserInfoSurnamePath:      mapNullString(row.UserInfoSurnamePath),
		GroupsInfoEndpoint:       mapNullString(row.GroupsInfoEndpoint),
		GroupsInfoIdentifierPath: mapNullString(row.GroupsInfoIdentifierPath),
		DefaultGroupID:           mapNullString(row.DefaultGroupID),
		CreatedAt:                row.CreatedAt,
		UpdatedAt:                row.UpdatedAt,
	}
}

type groupMappingRow struct {
	ID               string
	ProviderID       string
	Title            string
	ExternalGroupIDs string
	GroupIDs         string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

func mapGroupMapping(row groupMappingRow) domain.GroupMapping {
	return domain.GroupMapping{
		ID:               row.ID,
		ProviderID:       row.ProviderID,
		Title:            row.Title,
		ExternalGroupIDs: splitCSV(row.ExternalGroupIDs),
		GroupIDs:         splitCSV(row.GroupIDs),
		CreatedAt:        row.CreatedAt,
		UpdatedAt:        row.UpdatedAt,
	}
}
