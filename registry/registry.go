// Package registry is the trust-domain registry: the catalogue of citable
// sources a sponsored article may lean on, and the competitor blocklist it
// must avoid.
//
// The preflight builder queries it for non-competitor T1/T2 sources when
// assembling a plan. Editors maintain it over MCP tools.
//
// Usage:
//
//	r, err := registry.New(cfg, logger)
//	defer r.Close()
//	r.RegisterMCP(mcpServer)
package registry

import (
	"context"
	"log/slog"

	"github.com/mittpunkt/blcwrtr/idgen"
	"github.com/mittpunkt/blcwrtr/preflight"
	"github.com/mittpunkt/blcwrtr/registry/internal/store"
)

// Registry is the trust registry orchestrator.
type Registry struct {
	store  *store.Store
	logger *slog.Logger
	config *Config
}

// New creates a Registry. Opens the SQLite database, initialises the schema
// and optionally seeds the built-in source set.
func New(cfg *Config, logger *slog.Logger) (*Registry, error) {
	cfg.defaults()
	if logger == nil {
		logger = slog.Default()
	}

	s, err := store.Open(cfg.DBPath)
	if err != nil {
		return nil, err
	}

	r := &Registry{
		store:  s,
		logger: logger,
		config: cfg,
	}

	if cfg.SeedBuiltins {
		if err := r.seedIfEmpty(context.Background()); err != nil {
			s.Close()
			return nil, err
		}
	}
	return r, nil
}

// Close shuts down the registry and closes the database.
func (r *Registry) Close() error {
	return r.store.Close()
}

// Store returns the underlying store for direct access (testing, admin).
func (r *Registry) Store() *store.Store {
	return r.store
}

// --- Source operations ---

// GetSource retrieves a source by ID.
func (r *Registry) GetSource(ctx context.Context, id string) (*Source, error) {
	return r.store.GetSource(ctx, id)
}

// GetSourceByDomain retrieves a source by domain.
func (r *Registry) GetSourceByDomain(ctx context.Context, domain string) (*Source, error) {
	return r.store.GetSourceByDomain(ctx, domain)
}

// SearchSources returns sources filtered by trust level.
func (r *Registry) SearchSources(ctx context.Context, levels []string, includeCompetitors bool, limit int) ([]*Source, error) {
	return r.store.ListSources(ctx, levels, includeCompetitors, limit)
}

// PublishSource inserts or updates a source keyed by domain.
func (r *Registry) PublishSource(ctx context.Context, src *Source) error {
	existing, err := r.store.GetSourceByDomain(ctx, src.Domain)
	if err != nil {
		return err
	}
	if existing != nil {
		src.ID = existing.ID
		return r.store.UpdateSource(ctx, src)
	}
	return r.store.InsertSource(ctx, src)
}

// DeleteSource removes a source.
func (r *Registry) DeleteSource(ctx context.Context, id string) error {
	return r.store.DeleteSource(ctx, id)
}

// MarkCompetitor flags a domain so it is never offered as a citation.
func (r *Registry) MarkCompetitor(ctx context.Context, domain string, competitor bool) error {
	if err := r.store.MarkCompetitor(ctx, domain, competitor); err != nil {
		return err
	}
	r.logger.Info("registry: competitor flag updated", "domain", domain, "competitor", competitor)
	return nil
}

// RecordUsage bumps a source's usage counter after plan placement.
// Best-effort; failures are logged and swallowed.
func (r *Registry) RecordUsage(ctx context.Context, domain string) {
	if err := r.store.IncrementUsage(ctx, domain); err != nil {
		r.logger.Warn("registry: usage increment failed", "domain", domain, "error", err)
	}
}

// FindSources implements preflight.SourceFinder: non-competitor sources at
// the requested trust levels, most-used first.
func (r *Registry) FindSources(ctx context.Context, levels []string, limit int) ([]preflight.Source, error) {
	rows, err := r.store.ListSources(ctx, levels, false, limit)
	if err != nil {
		return nil, err
	}
	out := make([]preflight.Source, 0, len(rows))
	for _, row := range rows {
		out = append(out, preflight.Source{
			Domain:     row.Domain,
			TrustLevel: row.TrustLevel,
			Pattern:    row.Pattern,
		})
	}
	return out, nil
}

// --- Stats ---

// Stats holds registry statistics.
type Stats struct {
	Sources     int `json:"sources"`
	Competitors int `json:"competitors"`
}

// Stats returns registry statistics.
func (r *Registry) Stats(ctx context.Context) (*Stats, error) {
	total, competitors, err := r.store.CountSources(ctx)
	if err != nil {
		return nil, err
	}
	return &Stats{Sources: total, Competitors: competitors}, nil
}

// Built-in Swedish source set used when the registry starts empty.
var builtinSources = []Source{
	{Domain: "riksarkivet.se", TrustLevel: "T1", Pattern: "government", Notes: "Riksarkivet"},
	{Domain: "scb.se", TrustLevel: "T1", Pattern: "government", Notes: "Statistiska centralbyrån"},
	{Domain: "skatteverket.se", TrustLevel: "T1", Pattern: "government", Notes: "Skatteverket"},
	{Domain: "spelinspektionen.se", TrustLevel: "T1", Pattern: "government", Notes: "Spelinspektionen"},
	{Domain: "svd.se", TrustLevel: "T2", Pattern: "news", Notes: "Svenska Dagbladet"},
	{Domain: "dn.se", TrustLevel: "T2", Pattern: "news", Notes: "Dagens Nyheter"},
	{Domain: "wikipedia.org", TrustLevel: "T2", Pattern: "encyclopedia", Notes: "Wikipedia"},
}

func (r *Registry) seedIfEmpty(ctx context.Context) error {
	total, _, err := r.store.CountSources(ctx)
	if err != nil {
		return err
	}
	if total > 0 {
		return nil
	}
	for _, src := range builtinSources {
		src.ID = idgen.New()
		if err := r.store.InsertSource(ctx, &src); err != nil {
			return err
		}
	}
	r.logger.Info("registry: seeded built-in sources", "count", len(builtinSources))
	return nil
}
