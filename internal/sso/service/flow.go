package service

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/aussiebroadwan/ssobridge/internal/sso/domain"
	"github.com/aussiebroadwan/ssobridge/internal/sso/session"
	"github.com/aussiebroadwan/ssobridge/internal/sso/store"
	"github.com/aussiebroadwan/ssobridge/pkg/cryptox"
	"github.com/aussiebroadwan/ssobridge/pkg/jsonpath"
	"github.com/aussiebroadwan/ssobridge/pkg/slogx"
	"github.com/aussiebroadwan/ssobridge/pkg/statetoken"
)

// LoginEvent is the fixed payload handed to after-login hooks once a
// real-mode callback commits. Request-scoped values travel in ctx.
type LoginEvent struct {
	Provider   domain.Provider
	State      statetoken.State
	Token      TokenResponse
	UserInfo   any
	Account    domain.Account
	NewAccount bool
}

// AfterLoginHook is a caller extension point invoked after a committed
// login, before the redirect is returned. Hooks must not block for long and
// cannot fail the flow.
type AfterLoginHook interface {
	AfterLogin(ctx context.Context, ev LoginEvent)
}

// FlowTrace describes what a dry-run callback would have done. Returned in
// place of side effects when the flow was initiated with the test flag.
type FlowTrace struct {
	ProviderID         string   `json:"provider_id"`
	Email              string   `json:"email"`
	FirstName          string   `json:"first_name,omitempty"`
	Surname            string   `json:"surname,omitempty"`
	ExternalGroupIDs   []string `json:"external_group_ids,omitempty"`
	AccountID          string   `json:"account_id"`
	WouldCreateAccount bool     `json:"would_create_account"`
	GroupsToAdd        []string `json:"groups_to_add,omitempty"`
	RedirectURL        string   `json:"redirect_url"`
}

// Outcome is the result of a handled callback. Test outcomes carry a Trace
// and no session; committed outcomes carry the account, the session, and
// where to send the browser.
type Outcome struct {
	Test        bool
	Account     domain.Account
	Session     session.Session
	RedirectURL string
	Trace       *FlowTrace
}

// FlowService drives the authorization-code flow: it builds the outbound
// redirect on init and walks the callback through token exchange, claim
// extraction, reconciliation, and session establishment.
type FlowService struct {
	Store      store.Store
	Sessions   session.Store
	Secrets    SecretResolver
	Metadata   *MetadataResolver
	Exchange   *ExchangeClient
	Reconciler *Reconciler
	Logins     *SessionService

	// BaseURL is the externally visible origin of this service, used for
	// the callback redirect_uri and the same-site check on back urls.
	BaseURL string

	// LandingURL is where successful logins land when no back url was
	// given. Defaults to "/".
	LandingURL string

	// StateTTL bounds how long a flow may sit between init and callback.
	StateTTL time.Duration

	AfterLogin []AfterLoginHook
}

// InitiateFlow starts a flow for one provider and returns the URL to
// redirect the browser to. A fresh signing secret is stored against the
// (flowID, providerID) pair; the signed state token rides along in the
// redirect and comes back on callback.
func (s *FlowService) InitiateFlow(ctx context.Context, flowID, providerID string, test bool, backURL string) (string, error) {
	l := slogx.FromContext(ctx)

	if providerID == "" {
		return "", &ValidationError{Field: "provider id", Reason: "must not be empty"}
	}

	p, err := s.Store.Providers().GetActiveProviderByID(ctx, providerID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return "", ErrProviderNotFound
		}
		return "", &PersistenceError{Op: "provider lookup", Err: err}
	}

	meta, err := s.Metadata.Resolve(ctx, p)
	if err != nil {
		return "", err
	}

	secret, err := cryptox.GenerateToken(cryptox.TokenSize256)
	if err != nil {
		return "", err
	}
	if err := s.Sessions.PutStateSecret(ctx, flowID, providerID, []byte(secret), s.StateTTL); err != nil {
		return "", &PersistenceError{Op: "state secret store", Err: err}
	}

	state := statetoken.State{
		Issuer:    s.BaseURL,
		ExpiresAt: time.Now().Add(s.StateTTL),
		Test:      test,
		BackURL:   backURL,
	}
	token, err := statetoken.Encode(state, []byte(secret))
	if err != nil {
		return "", err
	}

	authURL, err := url.Parse(meta.AuthorizationEndpoint)
	if err != nil {
		return "", &UpstreamError{Op: "authorization endpoint", Err: err}
	}

	// Merge with any query the endpoint already carries rather than
	// clobbering it.
	q := authURL.Query()
	q.Set("response_type", "code")
	q.Set("client_id", p.ClientID)
	q.Set("redirect_uri", s.callbackURL(providerID))
	if len(p.Scopes) > 0 {
		q.Set("scope", strings.Join(p.Scopes, " "))
	}
	q.Set("state", token)
	authURL.RawQuery = q.Encode()

	l.Info("flow initiated", "provider_id", providerID, "test", test)
	return authURL.String(), nil
}

// HandleCallback validates and completes a flow. The state secret is
// consumed on the first attempt, success or failure, so a replayed callback
// always fails the state check.
func (s *FlowService) HandleCallback(ctx context.Context, flowID, providerID, code, stateParam string) (Outcome, error) {
	l := slogx.FromContext(ctx)

	switch {
	case providerID == "":
		return Outcome{}, &ValidationError{Field: "provider id", Reason: "must not be empty"}
	case code == "":
		return Outcome{}, &ValidationError{Field: "code", Reason: "must not be empty"}
	case stateParam == "":
		return Outcome{}, &ValidationError{Field: "state", Reason: "must not be empty"}
	}

	secret, err := s.Sessions.TakeStateSecret(ctx, flowID, providerID)
	if err != nil {
		if errors.Is(err, session.ErrNotFound) {
			return Outcome{}, &StateError{Reason: "no state secret for this flow"}
		}
		return Outcome{}, &PersistenceError{Op: "state secret lookup", Err: err}
	}

	state, err := statetoken.Decode(stateParam, secret)
	if err != nil {
		switch {
		case errors.Is(err, statetoken.ErrExpired):
			return Outcome{}, &StateError{Reason: "expired", Err: err}
		case errors.Is(err, statetoken.ErrInvalidSignature):
			return Outcome{}, &StateError{Reason: "invalid signature", Err: err}
		default:
			return Outcome{}, &StateError{Reason: "malformed", Err: err}
		}
	}

	p, err := s.Store.Providers().GetActiveProviderByID(ctx, providerID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return Outcome{}, ErrProviderNotFound
		}
		return Outcome{}, &PersistenceError{Op: "provider lookup", Err: err}
	}

	meta, err := s.Metadata.Resolve(ctx, p)
	if err != nil {
		return Outcome{}, err
	}

	clientSecret, err := s.Secrets.ClientSecret(p.ID)
	if err != nil {
		return Outcome{}, &UpstreamError{Op: "client secret", Err: err}
	}

	token, err := s.Exchange.ExchangeCode(ctx, meta.TokenEndpoint, p, clientSecret, code, s.callbackURL(providerID))
	if err != nil {
		return Outcome{}, err
	}

	userInfo, err := s.Exchange.FetchUserInfo(ctx, meta.UserInfoEndpoint, token.AccessToken)
	if err != nil {
		return Outcome{}, err
	}

	identity, err := s.extractIdentity(ctx, p, token.AccessToken, userInfo)
	if err != nil {
		return Outcome{}, err
	}

	// Everything is computed before anything is written. A failure past
	// this point in test mode costs nothing; in real mode the commit is a
	// single transaction.
	plan, err := s.Reconciler.Plan(ctx, identity, p)
	if err != nil {
		return Outcome{}, err
	}

	redirect := s.resolveRedirect(state.BackURL)

	if state.Test {
		l.Info("dry run completed",
			"provider_id", p.ID,
			"new_account", plan.IsNewAccount,
			"groups_to_add", len(plan.GroupsToAdd))
		return Outcome{
			Test: true,
			Trace: &FlowTrace{
				ProviderID:         p.ID,
				Email:              identity.Email,
				FirstName:          identity.FirstName,
				Surname:            identity.Surname,
				ExternalGroupIDs:   identity.ExternalGroupIDs,
				AccountID:          plan.Account.ID,
				WouldCreateAccount: plan.IsNewAccount,
				GroupsToAdd:        plan.GroupsToAdd,
				RedirectURL:        redirect,
			},
		}, nil
	}

	account, err := s.Reconciler.Commit(ctx, plan, p)
	if err != nil {
		return Outcome{}, err
	}

	sess, err := s.Logins.Login(ctx, account.ID, p.ID)
	if err != nil {
		return Outcome{}, err
	}

	ev := LoginEvent{
		Provider:   p,
		State:      state,
		Token:      token,
		UserInfo:   userInfo,
		Account:    account,
		NewAccount: plan.IsNewAccount,
	}
	for _, hook := range s.AfterLogin {
		hook.AfterLogin(ctx, ev)
	}

	return Outcome{
		Account:     account,
		Session:     sess,
		RedirectURL: redirect,
	}, nil
}

func (s *FlowService) callbackURL(providerID string) string {
	return strings.TrimRight(s.BaseURL, "/") + "/oauth2/callback/" + providerID
}

// extractIdentity pulls the email, name, and external group id claims out
// of the provider responses using the provider's configured paths.
func (s *FlowService) extractIdentity(ctx context.Context, p domain.Provider, accessToken string, userInfo any) (ExtractedIdentity, error) {
	var identity ExtractedIdentity

	email, err := extractString(userInfo, p.UserInfoEmailPath)
	if err != nil {
		return ExtractedIdentity{}, &UpstreamError{Op: "claim extraction", Err: err}
	}
	if email == "" {
		return ExtractedIdentity{}, &UpstreamError{
			Op:  "claim extraction",
			Err: fmt.Errorf("no email claim at %s", p.UserInfoEmailPath),
		}
	}
	identity.Email = email

	// Name claims are optional; an absent match is fine, a malformed path
	// is still a provider misconfiguration.
	if p.UserInfoFirstNamePath != "" {
		identity.FirstName, err = extractString(userInfo, p.UserInfoFirstNamePath)
		if err != nil {
			return ExtractedIdentity{}, &UpstreamError{Op: "claim extraction", Err: err}
		}
	}
	if p.UserInfoSurnamePath != "" {
		identity.Surname, err = extractString(userInfo, p.UserInfoSurnamePath)
		if err != nil {
			return ExtractedIdentity{}, &UpstreamError{Op: "claim extraction", Err: err}
		}
	}

	if p.GroupsInfoEndpoint == "" || p.GroupsInfoIdentifierPath == "" {
		return identity, nil
	}

	groupsInfo, err := s.Exchange.FetchGroupsInfo(ctx, p.GroupsInfoEndpoint, accessToken)
	if err != nil {
		return ExtractedIdentity{}, err
	}

	matches, err := jsonpath.All(groupsInfo, p.GroupsInfoIdentifierPath)
	if err != nil {
		return ExtractedIdentity{}, &UpstreamError{Op: "claim extraction", Err: err}
	}
	for _, match := range matches {
		if id, ok := jsonpath.AsString(match); ok && id != "" {
			identity.ExternalGroupIDs = append(identity.ExternalGroupIDs, id)
		}
	}
	return identity, nil
}

func extractString(doc any, path string) (string, error) {
	val, ok, err := jsonpath.First(doc, path)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", nil
	}
	str, ok := jsonpath.AsString(val)
	if !ok {
		return "", nil
	}
	return str, nil
}

// resolveRedirect returns the post-login target: the back url when it stays
// on this site, the landing page otherwise. Schemeless urls like
// "//evil.example" parse with a host and fail the check.
func (s *FlowService) resolveRedirect(backURL string) string {
	landing := s.LandingURL
	if landing == "" {
		landing = "/"
	}
	if backURL == "" {
		return landing
	}

	base, err := url.Parse(s.BaseURL)
	if err != nil {
		return landing
	}
	target, err := url.Parse(backURL)
	if err != nil {
		return landing
	}

	if target.Host == "" && target.Scheme == "" {
		return base.ResolveReference(target).String()
	}
	if target.Scheme == base.Scheme && target.Host == base.Host {
		return backURL
	}
	return landing
}
