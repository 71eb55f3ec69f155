package service

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/aussiebroadwan/ssobridge/internal/sso/domain"
	"github.com/hashicorp/go-cleanhttp"
)

// TokenResponse is the provider's answer to the code exchange. Only
// AccessToken is required; everything else is carried through for the
// after-login hooks.
type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	TokenType    string `json:"token_type,omitempty"`
	ExpiresIn    int64  `json:"expires_in,omitempty"`
	RefreshToken string `json:"refresh_token,omitempty"`
	IDToken      string `json:"id_token,omitempty"`
	Scope        string `json:"scope,omitempty"`
}

// ExchangeClient performs the outbound provider calls of the callback leg:
// code to token, token to userinfo, and the optional groups-info fetch.
type ExchangeClient struct {
	Client *http.Client
}

func NewExchangeClient() *ExchangeClient {
	return &ExchangeClient{Client: cleanhttp.DefaultPooledClient()}
}

// ExchangeCode POSTs the authorization code to the token endpoint and
// returns the parsed token response. The client secret goes into the form
// body only; it is never logged or echoed in errors.
func (c *ExchangeClient) ExchangeCode(
	ctx context.Context,
	tokenEndpoint string,
	p domain.Provider,
	clientSecret, code, redirectURI string,
) (TokenResponse, error) {
	form := url.Values{}
	form.Set("grant_type", "authorization_code")
	form.Set("code", code)
	form.Set("client_id", p.ClientID)
	form.Set("client_secret", clientSecret)
	form.Set("redirect_uri", redirectURI)
	if len(p.Scopes) > 0 {
		form.Set("scope", strings.Join(p.Scopes, " "))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, tokenEndpoint,
		strings.NewReader(form.Encode()))
	if err != nil {
		return TokenResponse{}, &UpstreamError{Op: "token exchange", Err: err}
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	resp, err := c.Client.Do(req)
	if err != nil {
		return TokenResponse{}, &UpstreamError{Op: "token exchange", Err: err}
	}
	defer resp.Body.Close()

	var tok TokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tok); err != nil {
		return TokenResponse{}, &UpstreamError{Op: "token exchange", Err: fmt.Errorf("invalid JSON: %w", err)}
	}
	if tok.AccessToken == "" {
		return TokenResponse{}, &UpstreamError{Op: "token exchange", Err: fmt.Errorf("no access token in response (status %d)", resp.StatusCode)}
	}
	return tok, nil
}

// FetchUserInfo GETs the userinfo endpoint with a bearer token and returns
// the decoded JSON document for claim extraction.
func (c *ExchangeClient) FetchUserInfo(ctx context.Context, endpoint, accessToken string) (any, error) {
	return c.fetchJSON(ctx, "userinfo", endpoint, accessToken)
}

// FetchGroupsInfo GETs the groups-info endpoint with the same bearer token.
func (c *ExchangeClient) FetchGroupsInfo(ctx context.Context, endpoint, accessToken string) (any, error) {
	return c.fetchJSON(ctx, "groups info", endpoint, accessToken)
}

func (c *ExchangeClient) fetchJSON(ctx context.Context, op, endpoint, accessToken string) (any, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, &UpstreamError{Op: op, Err: err}
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Accept", "application/json")

	resp, err := c.Client.Do(req)
	if err != nil {
		return nil, &UpstreamError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &UpstreamError{Op: op, Err: fmt.Errorf("unexpected status %d", resp.StatusCode)}
	}

	var doc any
	if err := json.NewDecoder(resp.Body).Decode(&doc); err != nil {
		return nil, &UpstreamError{Op: op, Err: fmt.Errorf("invalid JSON: %w", err)}
	}
	return doc, nil
}
