// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
//   - RepoCache: TTL snapshot store for complete repository lists
//   - BuildTracker: per-key single-flight population marker
//   - ProviderAdapter: one page of repositories from one git forge
//   - CredentialSource: read-only credential entries for a user
//
// # Optional Interfaces
//
//   - Clock: injectable time source; adapters default to the wall clock
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter or connector package
package driven
