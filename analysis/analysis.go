// Package analysis serves publisher intelligence for the placement
// pipeline: publisher voice profiles, anchor portfolio risk for target
// domains, and the append-only audit log of pipeline events.
//
// It also implements the preflight builder's audit sink, so every
// completed plan leaves a trace in the audit log.
//
// Usage:
//
//	svc, err := analysis.New(cfg, logger)
//	defer svc.Close()
//	svc.RegisterMCP(mcpServer)
package analysis

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/mittpunkt/blcwrtr/analysis/internal/store"
	"github.com/mittpunkt/blcwrtr/idgen"
)

// Service is the analysis orchestrator.
type Service struct {
	store  *store.Store
	logger *slog.Logger
	config *Config
}

// New creates a Service, opening the SQLite database and initialising the
// schema.
func New(cfg *Config, logger *slog.Logger) (*Service, error) {
	cfg.defaults()
	if logger == nil {
		logger = slog.Default()
	}

	s, err := store.Open(cfg.DBPath)
	if err != nil {
		return nil, err
	}
	return &Service{store: s, logger: logger, config: cfg}, nil
}

// Close shuts down the service and closes the database.
func (s *Service) Close() error {
	return s.store.Close()
}

// Store returns the underlying store for direct access (testing, admin).
func (s *Service) Store() *store.Store {
	return s.store
}

// --- Publisher profiles ---

// GetPublisherProfile returns the voice profile for a publication domain.
// Unknown domains get a generic baseline profile so the pipeline never
// stalls on missing publisher data.
func (s *Service) GetPublisherProfile(ctx context.Context, domain string) (*Profile, error) {
	p, err := s.store.GetProfile(ctx, domain)
	if err != nil {
		return nil, err
	}
	if p != nil {
		return p, nil
	}
	return baselineProfile(domain), nil
}

// UpsertPublisherProfile stores or replaces a voice profile.
func (s *Service) UpsertPublisherProfile(ctx context.Context, p *Profile) error {
	return s.store.UpsertProfile(ctx, p)
}

// baselineProfile is the fallback voice for publishers not yet profiled.
func baselineProfile(domain string) *Profile {
	return &Profile{
		Domain: domain,
		Voice: Voice{
			Tone:         "conversational",
			Perspective:  "third_person",
			StyleMarkers: []string{"berättande", "informativ", "personlig"},
		},
		LixRange: "easy",
		Policy:   Policy{Sponsored: true, Restrictions: []string{}},
		Examples: []Example{
			{
				URL:     "https://" + domain + "/exempel-artikel",
				Title:   "Exempelartikel",
				Excerpt: "En informativ och berättande text i tredje person.",
			},
		},
	}
}

// --- Anchor portfolios ---

// GetAnchorPortfolio returns the anchor portfolio for a target URL's
// domain. With recalculate set, risk is recomputed from the stored counts
// and persisted. Unknown domains get a representative sample portfolio.
func (s *Service) GetAnchorPortfolio(ctx context.Context, targetURL string, recalculate bool) (*Portfolio, error) {
	domain := TargetDomain(targetURL)

	p, err := s.store.GetPortfolio(ctx, domain)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return samplePortfolio(domain), nil
	}
	if recalculate {
		mix := Mix{Exact: p.Exact, Partial: p.Partial, Brand: p.Brand, Generic: p.Generic}
		p.Risk = round3(riskScore(mix))
		p.RiskLevel = riskLevel(p.Risk)
		if err := s.store.UpsertPortfolio(ctx, p); err != nil {
			return nil, err
		}
	}
	return p, nil
}

// AnalyzePortfolio compares an old and new anchor mix for a target domain.
// With save set, the new mix and its risk are persisted.
func (s *Service) AnalyzePortfolio(ctx context.Context, targetDomain string, oldMix, newMix Mix, save bool) (*Report, error) {
	report := AnalyzeChange(targetDomain, oldMix, newMix)
	if save {
		p := &Portfolio{
			TargetDomain: targetDomain,
			Exact:        newMix.Exact,
			Partial:      newMix.Partial,
			Brand:        newMix.Brand,
			Generic:      newMix.Generic,
			Risk:         report.NewRisk,
			RiskLevel:    report.RiskLevel,
		}
		if err := s.store.UpsertPortfolio(ctx, p); err != nil {
			return nil, err
		}
		s.logger.Info("analysis: portfolio saved", "target_domain", targetDomain, "risk", report.NewRisk, "risk_level", report.RiskLevel)
	}
	return report, nil
}

// samplePortfolio stands in for target domains without placement history.
func samplePortfolio(domain string) *Portfolio {
	mix := Mix{Exact: 12, Partial: 8, Brand: 15, Generic: 5}
	risk := round3(riskScore(mix))
	return &Portfolio{
		TargetDomain: domain,
		Exact:        mix.Exact,
		Partial:      mix.Partial,
		Brand:        mix.Brand,
		Generic:      mix.Generic,
		Risk:         risk,
		RiskLevel:    riskLevel(risk),
	}
}

// TargetDomain extracts the registrable host from a target URL. Falls back
// to the trimmed input when it does not parse as a URL.
func TargetDomain(rawURL string) string {
	if u, err := url.Parse(rawURL); err == nil && u.Hostname() != "" {
		return u.Hostname()
	}
	return strings.TrimSpace(rawURL)
}

// --- Audit log ---

// Event types accepted by the audit log.
var validEventTypes = map[string]bool{
	"order_received":     true,
	"preflight_complete": true,
	"qc_passed":          true,
	"qc_failed":          true,
	"delivered":          true,
	"error":              true,
}

// LogEvent appends an audit event. The payload is marshalled to JSON.
func (s *Service) LogEvent(ctx context.Context, eventType, orderRef, status string, payload any) (*Event, error) {
	if !validEventTypes[eventType] {
		return nil, fmt.Errorf("unknown event type %q", eventType)
	}

	raw := "{}"
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("marshal payload: %w", err)
		}
		raw = string(b)
	}

	e := &Event{
		ID:        idgen.New(),
		OrderRef:  orderRef,
		EventType: eventType,
		Status:    status,
		Payload:   raw,
	}
	if err := s.store.InsertEvent(ctx, e); err != nil {
		return nil, err
	}
	return e, nil
}

// Events lists audit events newest first, optionally filtered by order ref.
func (s *Service) Events(ctx context.Context, orderRef string, limit int) ([]*Event, error) {
	if limit <= 0 {
		limit = s.config.EventLimit
	}
	return s.store.ListEvents(ctx, orderRef, limit)
}

// Record implements the preflight audit sink. Best-effort; a failed write
// must never fail the pipeline step it describes.
func (s *Service) Record(ctx context.Context, orderRef, step, status string, payload any) {
	eventType := step
	if !validEventTypes[eventType] {
		eventType = "error"
	}
	if _, err := s.LogEvent(ctx, eventType, orderRef, status, payload); err != nil {
		s.logger.Warn("analysis: audit event dropped", "order_ref", orderRef, "step", step, "error", err)
	}
}
