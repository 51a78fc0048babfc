package domain

import "time"

// Engine defaults. Chosen to stay well inside forge rate limits while
// keeping cold searches responsive.
const (
	// DefaultCacheTTL is how long a cached repository list stays fresh.
	DefaultCacheTTL = 10 * time.Minute

	// DefaultPageSize is the per-request page size for provider APIs.
	DefaultPageSize = 100

	// DefaultMaxPages caps full-population pagination. Defends against a
	// misbehaving upstream that keeps returning full pages.
	DefaultMaxPages = 50

	// DefaultPollInterval is the sleep between build-flag polls while a
	// search waits on an in-flight population.
	DefaultPollInterval = time.Second

	// DefaultSearchWait bounds how long one search call may wait, in
	// total, for in-flight cache builds.
	DefaultSearchWait = 30 * time.Second
)

// EngineConfig tunes the cache population engine.
type EngineConfig struct {
	// CacheTTL is the lifetime of a cached repository list.
	CacheTTL time.Duration
	// PageSize is the page size requested from providers.
	PageSize int
	// MaxPages is the full-fetch pagination ceiling.
	MaxPages int
	// PollInterval is the build-flag poll interval during search waits.
	PollInterval time.Duration
	// SearchWait is the global per-call wait limit for search.
	// Callers may override it per call.
	SearchWait time.Duration
}

// DefaultEngineConfig returns the engine defaults.
func DefaultEngineConfig() EngineConfig {
	return EngineConfig{
		CacheTTL:     DefaultCacheTTL,
		PageSize:     DefaultPageSize,
		MaxPages:     DefaultMaxPages,
		PollInterval: DefaultPollInterval,
		SearchWait:   DefaultSearchWait,
	}
}

// Normalised returns a copy with zero or negative fields replaced by
// their defaults, so a partially filled config is always usable.
func (c EngineConfig) Normalised() EngineConfig {
	d := DefaultEngineConfig()
	if c.CacheTTL <= 0 {
		c.CacheTTL = d.CacheTTL
	}
	if c.PageSize <= 0 {
		c.PageSize = d.PageSize
	}
	if c.MaxPages <= 0 {
		c.MaxPages = d.MaxPages
	}
	if c.PollInterval <= 0 {
		c.PollInterval = d.PollInterval
	}
	if c.SearchWait <= 0 {
		c.SearchWait = d.SearchWait
	}
	return c
}
