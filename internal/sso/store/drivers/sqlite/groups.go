package sqlite

import (
	"context"

	"github.com/aussiebroadwan/ssobridge/internal/sso/domain"
)

type groupsRepo struct {
	db dbtx
}

const groupColumns = `id, title, created_at, updated_at`

func scanGroup(row interface{ Scan(...any) error }) (domain.Group, error) {
	var g domain.Group
	err := row.Scan(&g.ID, &g.Title, &g.CreatedAt, &g.UpdatedAt)
	if err != nil {
		return domain.Group{}, err
	}
	return g, nil
}

func (r *groupsRepo) GetGroupByID(ctx context.Context, id string) (domain.Group, error) {
	g, err := scanGroup(r.db.QueryRowContext(ctx,
		`SELECT `+groupColumns+` FROM groups WHERE id = ?`, id))
	if err != nil {
		return domain.Group{}, mapNotFound(err)
	}
	return g, nil
}

func (r *groupsRepo) ListGroups(ctx context.Context) ([]domain.Group, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+groupColumns+` FROM groups ORDER BY title`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var groups []domain.Group
	for rows.Next() {
		g, err := scanGroup(rows)
		if err != nil {
			return nil, err
		}
		groups = append(groups, g)
	}
	return groups, rows.Err()
}

func (r *groupsRepo) CreateGroup(ctx context.Context, g domain.Group) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO groups (id, title) VALUES (?, ?)`,
		g.ID, g.Title,
	)
	return err
}

func (r *groupsRepo) AddMember(ctx context.Context, groupID, accountID string) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT OR IGNORE INTO group_members (group_id, account_id)
		VALUES (?, ?)`,
		groupID, accountID,
	)
	return err
}

func (r *groupsRepo) IsDirectMember(ctx context.Context, groupID, accountID string) (bool, error) {
	var count int64
	err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM group_members
		WHERE group_id = ? AND account_id = ?`,
		groupID, accountID,
	).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *groupsRepo) ListAccountGroupIDs(ctx context.Context, accountID string) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT group_id FROM group_members
		WHERE account_id = ? ORDER BY created_at`, accountID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
