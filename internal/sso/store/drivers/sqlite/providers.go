package sqlite

import (
	"context"
	"strings"

	"github.com/aussiebroadwan/ssobridge/internal/sso/domain"
)

type providersRepo struct {
	db dbtx
}

const providerColumns = `id, active, title, client_id, scopes,
	openid_discovery_endpoint, authorization_endpoint, token_endpoint,
	userinfo_endpoint, userinfo_email_path, userinfo_first_name_path,
	userinfo_surname_path, groupsinfo_endpoint, groupsinfo_identifier_path,
	default_group_id, created_at, updated_at`

func scanProvider(row interface{ Scan(...any) error }) (domain.Provider, error) {
	var r providerRow
	err := row.Scan(
		&r.ID, &r.Active, &r.Title, &r.ClientID, &r.Scopes,
		&r.OpenIDDiscoveryEndpoint, &r.AuthorizationEndpoint, &r.TokenEndpoint,
		&r.UserInfoEndpoint, &r.UserInfoEmailPath, &r.UserInfoFirstNamePath,
		&r.UserInfoSurnamePath, &r.GroupsInfoEndpoint, &r.GroupsInfoIdentifierPath,
		&r.DefaultGroupID, &r.CreatedAt, &r.UpdatedAt,
	)
	if err != nil {
		return domain.Provider{}, err
	}
	return mapProvider(r), nil
}

func (r *providersRepo) GetProviderByID(ctx context.Context, id string) (domain.Provider, error) {
	p, err := scanProvider(r.db.QueryRowContext(ctx,
		`SELECT `+providerColumns+` FROM providers WHERE id = ?`, id))
	if err != nil {
		return domain.Provider{}, mapNotFound(err)
	}
	return p, nil
}

func (r *providersRepo) GetActiveProviderByID(ctx context.Context, id string) (domain.Provider, error) {
	p, err := scanProvider(r.db.QueryRowContext(ctx,
		`SELECT `+providerColumns+` FROM providers WHERE id = ? AND active = TRUE`, id))
	if err != nil {
		return domain.Provider{}, mapNotFound(err)
	}
	return p, nil
}

func (r *providersRepo) ListProviders(ctx context.Context) ([]domain.Provider, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+providerColumns+` FROM providers ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var providers []domain.Provider
	for rows.Next() {
		p, err := scanProvider(rows)
		if err != nil {
			return nil, err
		}
		providers = append(providers, p)
	}
	return providers, rows.Err()
}

func (r *providersRepo) CreateProvider(ctx context.Context, p domain.Provider) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO providers (
			id, active, title, client_id, scopes,
			openid_discovery_endpoint, authorization_endpoint, token_endpoint,
			userinfo_endpoint, userinfo_email_path, userinfo_first_name_path,
			userinfo_surname_path, groupsinfo_endpoint, groupsinfo_identifier_path,
			default_group_id
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.Active, p.Title, p.ClientID, strings.Join(p.Scopes, " "),
		mapStringNull(p.OpenIDDiscoveryEndpoint), mapStringNull(p.AuthorizationEndpoint),
		mapStringNull(p.TokenEndpoint), mapStringNull(p.UserInfoEndpoint),
		p.UserInfoEmailPath, mapStringNull(p.UserInfoFirstNamePath),
		mapStringNull(p.UserInfoSurnamePath), mapStringNull(p.GroupsInfoEndpoint),
		mapStringNull(p.GroupsInfoIdentifierPath), mapStringNull(p.DefaultGroupID),
	)
	return err
}

func (r *providersRepo) UpdateProvider(ctx context.Context, p domain.Provider) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE providers SET
			active = ?, title = ?, client_id = ?, scopes = ?,
			openid_discovery_endpoint = ?, authorization_endpoint = ?,
			token_endpoint = ?, userinfo_endpoint = ?, userinfo_email_path = ?,
			userinfo_first_name_path = ?, userinfo_surname_path = ?,
			groupsinfo_endpoint = ?, groupsinfo_identifier_path = ?,
			default_group_id = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?`,
		p.Active, p.Title, p.ClientID, strings.Join(p.Scopes, " "),
		mapStringNull(p.OpenIDDiscoveryEndpoint), mapStringNull(p.AuthorizationEndpoint),
		mapStringNull(p.TokenEndpoint), mapStringNull(p.UserInfoEndpoint),
		p.UserInfoEmailPath, mapStringNull(p.UserInfoFirstNamePath),
		mapStringNull(p.UserInfoSurnamePath), mapStringNull(p.GroupsInfoEndpoint),
		mapStringNull(p.GroupsInfoIdentifierPath), mapStringNull(p.DefaultGroupID),
		p.ID,
	)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

func (r *providersRepo) DeleteProvider(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM providers WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return requireAffected(res)
}
