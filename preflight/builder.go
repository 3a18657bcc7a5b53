// Package preflight builds placement plans ("preflight matrices") for
// sponsored-link orders and renders the writer prompt that goes with them.
//
// A plan pins down everything a draft must honor: query cluster, search
// intents, entities on both sides, a bridging midpoint concept, the anchor
// strategy and its required placement, the topical-term window, trust
// sources and compliance guards. The QC validator later scores drafts
// against exactly this structure.
package preflight

import (
	"context"
	"log/slog"
	"math/rand"
	"time"

	"github.com/mittpunkt/blcwrtr/lexicon"
)

// Source is one trust-registry row.
type Source struct {
	Domain     string `json:"domain"`
	TrustLevel string `json:"trust_level"`
	Pattern    string `json:"pattern"`
}

// SourceFinder looks up citable trust sources. Implemented by the registry;
// a nil finder makes the builder fall back to its built-in sources.
type SourceFinder interface {
	FindSources(ctx context.Context, levels []string, limit int) ([]Source, error)
}

// AuditSink records build events. Failures are the sink's problem; the
// builder fires and forgets.
type AuditSink interface {
	Record(ctx context.Context, orderRef, step, status string, payload any)
}

// Config tunes the builder.
type Config struct {
	DefaultWordCount int
	DefaultTone      string
	MaxTrustSources  int
	RegistryFetch    int
}

func (c *Config) defaults() {
	if c.DefaultWordCount == 0 {
		c.DefaultWordCount = 800
	}
	if c.DefaultTone == "" {
		c.DefaultTone = "informativ"
	}
	if c.MaxTrustSources == 0 {
		c.MaxTrustSources = 2
	}
	if c.RegistryFetch == 0 {
		c.RegistryFetch = 5
	}
}

// Builder assembles placement plans. The paragraph and term-count draws go
// through an injected random source so callers can pin them.
type Builder struct {
	cfg     Config
	lex     *lexicon.Tables
	sources SourceFinder
	audit   AuditSink
	rng     *rand.Rand
	log     *slog.Logger
}

// Option customizes a Builder.
type Option func(*Builder)

// WithRand injects the random source used for placement and term-count
// draws. Tests pass a fixed seed for deterministic plans.
func WithRand(r *rand.Rand) Option {
	return func(b *Builder) { b.rng = r }
}

// WithSourceFinder wires the trust registry lookup.
func WithSourceFinder(f SourceFinder) Option {
	return func(b *Builder) { b.sources = f }
}

// WithAuditSink wires the build-event log.
func WithAuditSink(a AuditSink) Option {
	return func(b *Builder) { b.audit = a }
}

// New builds a Builder. A nil logger disables logging.
func New(cfg Config, lex *lexicon.Tables, logger *slog.Logger, opts ...Option) *Builder {
	cfg.defaults()
	if lex == nil {
		lex = lexicon.Default()
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	b := &Builder{
		cfg: cfg,
		lex: lex,
		log: logger,
	}
	for _, opt := range opts {
		opt(b)
	}
	if b.rng == nil {
		b.rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return b
}

// Validation reports the plan's business-rule check. Violations are
// advisory; the plan is still returned.
type Validation struct {
	IsValid  bool     `json:"is_valid"`
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings"`
}

// BuildResult is the full output of one build call.
type BuildResult struct {
	Plan         *Plan      `json:"preflight_matrix"`
	WriterPrompt string     `json:"writer_prompt"`
	Validation   Validation `json:"validation"`
}

// Build synthesizes the placement plan and writer prompt for an order.
// Malformed orders fail; plan business-rule violations do not.
func (b *Builder) Build(ctx context.Context, order *Order) (*BuildResult, error) {
	if err := order.Validate(); err != nil {
		return nil, err
	}

	wordCount := order.Constraints.WordCount
	if wordCount == 0 {
		wordCount = b.cfg.DefaultWordCount
	}
	tone := order.Constraints.Tone
	if tone == "" {
		tone = b.cfg.DefaultTone
	}

	pubEntities := b.extractEntities(order.PublicationDomain, order.Topic)
	targetEntities := b.extractEntities(order.TargetURL, order.AnchorText)
	midpoints := b.findMidpoints(pubEntities, targetEntities)

	plan := &Plan{
		OrderRef:          order.OrderRef,
		CustomerID:        order.CustomerID,
		PublicationDomain: order.PublicationDomain,
		TargetURL:         order.TargetURL,
		QueryCluster:      b.extractQueryCluster(order.Topic),
		Intents:           b.detectIntents(order.Topic, order.TargetURL),
		Entities:          EntitySets{Publisher: pubEntities, Target: targetEntities},
		Midpoints:         midpoints,
		Chosen:            midpoints[0],
		AnchorPlan:        b.planAnchor(order.AnchorText, order.TargetURL),
		LSIWindow: LSIWindow{
			Policy: WindowPolicy{Min: 6, Max: 10, RadiusSentences: 2, MaxRepeat: 2},
			Terms:  b.generateTerms(order.Topic, order.PublicationDomain, order.TargetURL),
		},
		Trust: b.selectTrustSources(ctx, order.Topic, order.PublicationDomain),
		Guards: Guards{
			NoAnchorInHeaders: true,
			CompetitorBlock:   true,
			Compliance:        order.Constraints.Compliance,
		},
		WordCount: wordCount,
		Tone:      tone,
	}

	errs := []string{}
	if err := plan.Validate(); err != nil {
		errs = append(errs, "schema validation error: "+err.Error())
	}
	errs = append(errs, plan.BusinessRules()...)

	prompt, err := renderWriterPrompt(plan)
	if err != nil {
		return nil, err
	}

	if b.audit != nil {
		b.audit.Record(ctx, order.OrderRef, "preflight_complete", "success", plan)
	}
	b.log.InfoContext(ctx, "preflight built",
		"order_ref", order.OrderRef,
		"midpoint", plan.Chosen.Label,
		"anchor_type", plan.AnchorPlan.Type,
		"terms", len(plan.LSIWindow.Terms),
		"valid", len(errs) == 0)

	return &BuildResult{
		Plan:         plan,
		WriterPrompt: prompt,
		Validation: Validation{
			IsValid:  len(errs) == 0,
			Errors:   errs,
			Warnings: []string{},
		},
	}, nil
}
