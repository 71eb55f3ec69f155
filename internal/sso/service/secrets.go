package service

import (
	"fmt"
	"os"
	"strings"
)

// SecretResolver supplies client secrets out-of-band. Secrets deliberately
// never live in the database next to the provider row.
type SecretResolver interface {
	ClientSecret(providerID string) (string, error)
}

// EnvSecretResolver reads client secrets from environment variables named
// OAUTH2_CLIENT_SECRET_PROVIDER_<ID>, with the provider id uppercased and
// non-alphanumeric characters replaced by underscores.
type EnvSecretResolver struct{}

func (EnvSecretResolver) ClientSecret(providerID string) (string, error) {
	key := SecretEnvKey(providerID)
	secret := os.Getenv(key)
	if secret == "" {
		return "", fmt.Errorf("client secret not set (%s)", key)
	}
	return secret, nil
}

// SecretEnvKey returns the environment variable a provider's client secret
// is read from. Surfaced on the admin API so operators know what to set.
func SecretEnvKey(providerID string) string {
	return "OAUTH2_CLIENT_SECRET_PROVIDER_" + envSuffix(providerID)
}

func envSuffix(id string) string {
	var b strings.Builder
	for _, r := range strings.ToUpper(id) {
		switch {
		case r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	return b.String()
}

// StaticSecretResolver serves secrets from a fixed map. Used in tests.
type StaticSecretResolver map[string]string

func (s StaticSecretResolver) ClientSecret(providerID string) (string, error) {
	secret, ok := s[providerID]
	if !ok || secret == "" {
		return "", fmt.Errorf("client secret not set for provider %s", providerID)
	}
	return secret, nil
}
