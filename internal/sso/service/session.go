package service

import (
	"context"
	"errors"
	"time"

	"github.com/aussiebroadwan/ssobridge/internal/sso/domain"
	"github.com/aussiebroadwan/ssobridge/internal/sso/session"
	"github.com/aussiebroadwan/ssobridge/internal/sso/store"
	"github.com/aussiebroadwan/ssobridge/pkg/cryptox"
	"github.com/aussiebroadwan/ssobridge/pkg/slogx"
)

// SessionService issues and resolves login sessions. Session ids are opaque
// high-entropy tokens; only their fingerprint ever appears in logs.
type SessionService struct {
	Store    store.Store
	Sessions session.Store
	TTL      time.Duration
}

// Login creates a session for an account after a successful callback and
// returns it. The returned Session.ID is the raw cookie value.
func (s *SessionService) Login(ctx context.Context, accountID, providerID string) (session.Session, error) {
	l := slogx.FromContext(ctx)

	id, err := cryptox.GenerateToken(cryptox.TokenSize256)
	if err != nil {
		return session.Session{}, err
	}

	now := time.Now().UTC()
	sess := session.Session{
		ID:               id,
		AccountID:        accountID,
		ProviderID:       providerID,
		TokenFingerprint: cryptox.FingerprintToken(id),
		ExpiresAt:        now.Add(s.TTL),
		CreatedAt:        now,
	}
	if err := s.Sessions.CreateSession(ctx, sess); err != nil {
		return session.Session{}, &PersistenceError{Op: "session create", Err: err}
	}

	l.Info("session established",
		"account_id", accountID,
		"provider_id", providerID,
		"session_fingerprint", sess.TokenFingerprint)
	return sess, nil
}

// Resolve returns the account behind a live session id.
func (s *SessionService) Resolve(ctx context.Context, id string) (session.Session, domain.Account, error) {
	sess, err := s.Sessions.GetSession(ctx, id)
	if err != nil {
		if errors.Is(err, session.ErrNotFound) {
			return session.Session{}, domain.Account{}, ErrSessionNotFound
		}
		return session.Session{}, domain.Account{}, err
	}

	account, err := s.Store.Accounts().GetAccountByID(ctx, sess.AccountID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			// Account deleted out from under the session; treat as expired.
			_ = s.Sessions.DeleteSession(ctx, id)
			return session.Session{}, domain.Account{}, ErrSessionNotFound
		}
		return session.Session{}, domain.Account{}, err
	}
	return sess, account, nil
}

// Logout removes a session. Unknown ids are a no-op.
func (s *SessionService) Logout(ctx context.Context, id string) error {
	return s.Sessions.DeleteSession(ctx, id)
}
