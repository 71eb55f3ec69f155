package service

import (
	"context"
	"errors"

	"github.com/aussiebroadwan/ssobridge/internal/sso/domain"
	"github.com/aussiebroadwan/ssobridge/internal/sso/store"
	"github.com/aussiebroadwan/ssobridge/pkg/idx"
	"github.com/aussiebroadwan/ssobridge/pkg/slogx"
)

// ExtractedIdentity is what claim extraction produced from the provider's
// userinfo and groups responses. Email is the only required field.
type ExtractedIdentity struct {
	Email            string
	FirstName        string
	Surname          string
	ExternalGroupIDs []string
}

// ReconciliationResult is the staged outcome of matching an extracted
// identity against local accounts and group mapping rules. Nothing is
// written until Commit.
type ReconciliationResult struct {
	Account      domain.Account
	IsNewAccount bool
	GroupsToAdd  []string
}

// Reconciler maps extracted identities onto local accounts and group
// memberships. Plan is read-only; Commit applies a plan in one transaction.
// The split keeps the callback path all-or-nothing: a late upstream failure
// aborts before Plan's output ever reaches Commit.
type Reconciler struct {
	Store store.Store
}

// Plan computes the account and group-membership delta for an identity.
// Reconciling the same identity twice yields an empty delta the second
// time, so repeated callbacks never double-add memberships.
func (r *Reconciler) Plan(ctx context.Context, identity ExtractedIdentity, p domain.Provider) (ReconciliationResult, error) {
	var result ReconciliationResult

	account, err := r.Store.Accounts().GetAccountByEmail(ctx, identity.Email)
	switch {
	case err == nil:
		result.Account = account
	case errors.Is(err, store.ErrNotFound):
		result.IsNewAccount = true
		result.Account = domain.Account{
			ID:        idx.New().String(),
			Email:     identity.Email,
			FirstName: identity.FirstName,
			Surname:   identity.Surname,
		}
	default:
		return ReconciliationResult{}, &PersistenceError{Op: "account lookup", Err: err}
	}

	staged := make(map[string]struct{})
	stage := func(groupID string) error {
		if groupID == "" {
			return nil
		}
		if _, ok := staged[groupID]; ok {
			return nil
		}
		if !result.IsNewAccount {
			member, err := r.Store.Groups().IsDirectMember(ctx, groupID, result.Account.ID)
			if err != nil {
				return &PersistenceError{Op: "membership check", Err: err}
			}
			if member {
				return nil
			}
		}
		staged[groupID] = struct{}{}
		result.GroupsToAdd = append(result.GroupsToAdd, groupID)
		return nil
	}

	if err := stage(p.DefaultGroupID); err != nil {
		return ReconciliationResult{}, err
	}

	for _, externalID := range identity.ExternalGroupIDs {
		mappings, err := r.Store.GroupMappings().ListGroupMappingsByExternalID(ctx, p.ID, externalID)
		if err != nil {
			return ReconciliationResult{}, &PersistenceError{Op: "group mapping lookup", Err: err}
		}
		for _, mapping := range mappings {
			for _, groupID := range mapping.GroupIDs {
				if err := stage(groupID); err != nil {
					return ReconciliationResult{}, err
				}
			}
		}
	}

	return result, nil
}

// Commit applies a plan: creates the account if new, adds the staged group
// memberships, and records the provider link. All writes happen in a single
// transaction and every write is idempotent on its own.
func (r *Reconciler) Commit(ctx context.Context, plan ReconciliationResult, p domain.Provider) (domain.Account, error) {
	l := slogx.FromContext(ctx)

	err := r.Store.WithTx(ctx, func(tx store.Tx) error {
		if plan.IsNewAccount {
			if err := tx.Accounts().CreateAccount(ctx, plan.Account); err != nil {
				return &PersistenceError{Op: "account create", Err: err}
			}
		}

		for _, groupID := range plan.GroupsToAdd {
			if err := tx.Groups().AddMember(ctx, groupID, plan.Account.ID); err != nil {
				return &PersistenceError{Op: "group membership", Err: err}
			}
		}

		if err := tx.Accounts().LinkProvider(ctx, plan.Account.ID, p.ID); err != nil {
			return &PersistenceError{Op: "provider link", Err: err}
		}
		return nil
	})
	if err != nil {
		return domain.Account{}, err
	}

	l.Info("identity reconciled",
		"account_id", plan.Account.ID,
		"provider_id", p.ID,
		"new_account", plan.IsNewAccount,
		"groups_added", len(plan.GroupsToAdd))
	return plan.Account, nil
}
