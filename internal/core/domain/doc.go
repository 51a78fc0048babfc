// Package domain defines the core business entities for forgecache.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - RepositorySummary: One repository as seen by the engine
//   - CredentialEntry: One (domain, secret) tuple for a provider
//   - ProviderType: A supported git-hosting service
//   - EngineConfig: Tuning knobs for cache population and search
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
