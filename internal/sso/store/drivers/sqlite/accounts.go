package sqlite

import (
	"context"

	"github.com/aussiebroadwan/ssobridge/internal/sso/domain"
)

type accountsRepo struct {
	db dbtx
}

const accountColumns = `id, email, first_name, surname, created_at, updated_at`

func scanAccount(row interface{ Scan(...any) error }) (domain.Account, error) {
	var a domain.Account
	err := row.Scan(&a.ID, &a.Email, &a.FirstName, &a.Surname, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return domain.Account{}, err
	}
	return a, nil
}

func (r *accountsRepo) GetAccountByID(ctx context.Context, id string) (domain.Account, error) {
	a, err := scanAccount(r.db.QueryRowContext(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE id = ?`, id))
	if err != nil {
		return domain.Account{}, mapNotFound(err)
	}
	return a, nil
}

func (r *accountsRepo) GetAccountByEmail(ctx context.Context, email string) (domain.Account, error) {
	a, err := scanAccount(r.db.QueryRowContext(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE email = ?`, email))
	if err != nil {
		return domain.Account{}, mapNotFound(err)
	}
	return a, nil
}

func (r *accountsRepo) CreateAccount(ctx context.Context, a domain.Account) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO accounts (id, email, first_name, surname)
		VALUES (?, ?, ?, ?)`,
		a.ID, a.Email, a.FirstName, a.Surname,
	)
	return err
}

func (r *accountsRepo) LinkProvider(ctx context.Context, accountID, providerID string) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT OR IGNORE INTO account_providers (account_id, provider_id)
		VALUES (?, ?)`,
		accountID, providerID,
	)
	return err
}

func (r *accountsRepo) ListLinkedProviderIDs(ctx context.Context, accountID string) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT provider_id FROM account_providers
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
