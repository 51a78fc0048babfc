// Package services contains the core business logic of forgecache.
//
// RepoService is the cache population and concurrency-coordination
// engine that sits in front of the paginated forge APIs. It decides
// when a fetched page is the whole list, prevents redundant concurrent
// full-population jobs against a slow upstream, isolates per-credential
// failures, and gives search callers a bounded wait for a complete
// result set.
//
// Services depend only on domain types and port interfaces; adapters
// and connectors are injected.
package services
