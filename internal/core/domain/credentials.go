package domain

// CredentialEntry is one authentication credential for a provider domain.
// A user may hold several entries of the same provider type, e.g. multiple
// self-hosted GitLab instances. Entries reach the engine already decrypted
// and validated; the engine never persists or mutates them.
type CredentialEntry struct {
	// UserID identifies the owning user.
	UserID string
	// Provider is the hosting service this entry authenticates against.
	Provider ProviderType
	// Domain is the host of the provider instance, e.g. "gitlab.example.com".
	// May arrive un-normalised; use CanonicalDomain before keying.
	Domain string
	// Secret is the access token or password. Never logged.
	Secret string
	// Username is optional auth metadata, required by some providers
	// (Bitbucket app passwords, Gitea basic auth).
	Username string
}

// HasSecret reports whether the entry carries a usable secret.
// Entries without one are skipped by the engine.
func (e CredentialEntry) HasSecret() bool {
	return e.Secret != ""
}

// CacheKey returns the repository-list cache key for this entry.
func (e CredentialEntry) CacheKey() string {
	return RepoCacheKey(e.UserID, e.Domain)
}

// Redacted returns a log-safe description of the entry.
// The secret value is never included.
func (e CredentialEntry) Redacted() string {
	return string(e.Provider) + "@" + CanonicalDomain(e.Domain)
}
