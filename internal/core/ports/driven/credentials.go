package driven

import (
	"context"

	"github.com/custodia-labs/forgecache/internal/core/domain"
)

// CredentialSource supplies the read-only credential entries for a user.
// Entries are already decrypted and validated before reaching the engine;
// storage, encryption, and rotation live behind this port.
type CredentialSource interface {
	// EntriesFor returns the user's entries for one provider type,
	// in stable order. An empty slice means no credentials exist.
	EntriesFor(ctx context.Context, userID string, provider domain.ProviderType) ([]domain.CredentialEntry, error)
}
