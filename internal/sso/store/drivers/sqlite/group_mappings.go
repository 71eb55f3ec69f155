package sqlite

import (
	"context"
	"strings"

	"github.com/aussiebroadwan/ssobridge/internal/sso/domain"
)

type groupMappingsRepo struct {
	db dbtx
}

const groupMappingColumns = `id, provider_id, title, external_group_ids, group_ids, created_at, updated_at`

func scanGroupMapping(row interface{ Scan(...any) error }) (domain.GroupMapping, error) {
	var r groupMappingRow
	err := row.Scan(
		&r.ID, &r.ProviderID, &r.Title, &r.ExternalGroupIDs, &r.GroupIDs,
		&r.CreatedAt, &r.UpdatedAt,
	)
	if err != nil {
		return domain.GroupMapping{}, err
	}
	return mapGroupMapping(r), nil
}

func (r *groupMappingsRepo) GetGroupMappingByID(ctx context.Context, id string) (domain.GroupMapping, error) {
	m, err := scanGroupMapping(r.db.QueryRowContext(ctx,
		`SELECT `+groupMappingColumns+` FROM group_mappings WHERE id = ?`, id))
	if err != nil {
		return domain.GroupMapping{}, mapNotFound(err)
	}
	return m, nil
}

func (r *groupMappingsRepo) ListGroupMappingsByProvider(ctx context.Context, providerID string) ([]domain.GroupMapping, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+groupMappingColumns+` FROM group_mappings
		 WHERE provider_id = ? ORDER BY created_at DESC, id DESC`, providerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var mappings []domain.GroupMapping
	for rows.Next() {
		m, err := scanGroupMapping(rows)
		if err != nil {
			return nil, err
		}
		mappings = append(mappings, m)
	}
	return mappings, rows.Err()
}

// escapeLike makes a string safe to embed in a LIKE pattern with ESCAPE '\',
// so provider-supplied ids are matched literally rather than as wildcards.
var escapeLike = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace

// ListGroupMappingsByExternalID matches against the comma-delimited
// external_group_ids column. Wrapping both sides in commas makes the LIKE an
// exact element match rather than a substring match.
func (r *groupMappingsRepo) ListGroupMappingsByExternalID(ctx context.Context, providerID, externalID string) ([]domain.GroupMapping, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+groupMappingColumns+` FROM group_mappings
		 WHERE provider_id = ?
		   AND (',' || external_group_ids || ',') LIKE ('%,' || ? || ',%') ESCAPE '\'
		 ORDER BY created_at DESC, id DESC`, providerID, escapeLike(externalID))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var mappings []domain.GroupMapping
	for rows.Next() {
		m, err := scanGroupMapping(rows)
		if err != nil {
			return nil, err
		}
		mappings = append(mappings, m)
	}
	return mappings, rows.Err()
}

func (r *groupMappingsRepo) CreateGroupMapping(ctx context.Context, m domain.GroupMapping) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO group_mappings (id, provider_id, title, external_group_ids, group_ids)
		VALUES (?, ?, ?, ?, ?)`,
		m.ID, m.ProviderID, m.Title, joinCSV(m.ExternalGroupIDs), joinCSV(m.GroupIDs),
	)
	return err
}

func (r *groupMappingsRepo) UpdateGroupMapping(ctx context.Context, m domain.GroupMapping) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE group_mappings SET
			title = ?, external_group_ids = ?, group_ids = ?,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = ?`,
		m.Title, joinCSV(m.ExternalGroupIDs), joinCSV(m.GroupIDs), m.ID,
	)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

func (r *groupMappingsRepo) DeleteGroupMapping(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM group_mappings WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return requireAffected(res)
}
