package qc

import (
	"context"
	"log/slog"
	"math"

	"github.com/mittpunkt/blcwrtr/article"
	"github.com/mittpunkt/blcwrtr/lexicon"
	"github.com/mittpunkt/blcwrtr/preflight"
)

// Config tunes the validator thresholds.
type Config struct {
	ApprovedMin   float64
	LightEditsMin float64
}

func (c *Config) defaults() {
	if c.ApprovedMin == 0 {
		c.ApprovedMin = 85
	}
	if c.LightEditsMin == 0 {
		c.LightEditsMin = 70
	}
}

// Validator scores drafts. It holds no per-call state: the remediation
// budget lives inside each Validate call, so concurrent validations never
// starve each other's fix.
type Validator struct {
	cfg   Config
	lex   *lexicon.Tables
	log   *slog.Logger
	audit preflight.AuditSink
}

// Option configures a Validator.
type Option func(*Validator)

// WithAuditSink records a qc_passed/qc_failed audit event per verdict.
func WithAuditSink(a preflight.AuditSink) Option {
	return func(v *Validator) { v.audit = a }
}

// New builds a Validator. A nil logger disables logging.
func New(cfg Config, lex *lexicon.Tables, logger *slog.Logger, opts ...Option) *Validator {
	cfg.defaults()
	if lex == nil {
		lex = lexicon.Default()
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	v := &Validator{cfg: cfg, lex: lex, log: logger}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Validate runs the score / maybe-fix / rescore pipeline and returns the
// final verdict. The plan may be nil; rules then fall back to their
// defaults. At most one fix is applied per call, and the rescore after a
// fix runs with fixing disabled, so the loop is bounded at two passes.
func (v *Validator) Validate(ctx context.Context, req Request, plan *preflight.Plan) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	text := req.ArticleText
	fixBudget := 0
	if req.AutoFix {
		fixBudget = 1
	}

	fixLog := []AutoFix{}
	for {
		scores, issues := v.score(text, plan)

		if fixBudget > 0 {
			fixed, fixes := v.attemptFix(text, issues, plan)
			fixLog = append(fixLog, fixes...)
			if fixed != text {
				fixBudget--
				text = fixed
				v.log.DebugContext(ctx, "auto-fix applied, rescoring", "fixes", len(fixes))
				continue
			}
			// No applicable fix; do not retry.
			fixBudget = 0
		}

		total := 0.0
		for category, score := range scores {
			total += score * weights[category]
		}
		total = math.Round(total*10) / 10

		res := &Result{
			Status:               v.status(total),
			Score:                total,
			Breakdown:            scores,
			Issues:               issues,
			AutoFixes:            fixLog,
			Recommendations:      recommendations(scores),
			HumanSignoffRequired: requiresHumanSignoff(issues, scores),
		}
		res.NextActions = nextActions(res.Status, issues)

		v.log.InfoContext(ctx, "validation complete",
			"status", res.Status,
			"score", res.Score,
			"issues", len(res.Issues),
			"auto_fixes", len(res.AutoFixes))

		if v.audit != nil && plan != nil {
			eventType := "qc_passed"
			if res.Status == StatusBlocked {
				eventType = "qc_failed"
			}
			v.audit.Record(ctx, plan.OrderRef, eventType, "success", map[string]any{
				"status": res.Status,
				"score":  res.Score,
				"issues": len(res.Issues),
			})
		}
		return res, nil
	}
}

func (v *Validator) status(score float64) Status {
	switch {
	case score >= v.cfg.ApprovedMin:
		return StatusApproved
	case score >= v.cfg.LightEditsMin:
		return StatusLightEdits
	default:
		return StatusBlocked
	}
}

// score runs all seven rules over a fresh parse of the text.
func (v *Validator) score(text string, plan *preflight.Plan) (map[string]float64, []Issue) {
	doc := article.Parse(text)

	scores := make(map[string]float64, len(weights))
	issues := []Issue{}

	collect := func(category string, score float64, found []Issue) {
		scores[category] = score
		issues = append(issues, found...)
	}

	s, is := rulePreflight(doc, plan)
	collect(CategoryPreflight, s, is)

	s, is = ruleDraft(doc)
	collect(CategoryDraft, s, is)

	s, is = ruleAnchor(doc, plan)
	collect(CategoryAnchor, s, is)

	s, is = ruleTrust(doc, plan, v.lex)
	collect(CategoryTrust, s, is)

	s, is = ruleLSI(doc, plan)
	collect(CategoryLSI, s, is)

	s, is = ruleFit(doc, v.lex)
	collect(CategoryFit, s, is)

	s, is = ruleCompliance(doc, plan, v.lex)
	collect(CategoryCompliance, s, is)

	return scores, issues
}

// attemptFix scans issues in order and applies the first rule with a real
// remedy. The topical-term fix is recognized but intentionally left
// unapplied; injecting terms without rewriting the surrounding prose
// produces worse drafts than a human edit.
func (v *Validator) attemptFix(text string, issues []Issue, plan *preflight.Plan) (string, []AutoFix) {
	var fixes []AutoFix

	for _, issue := range issues {
		switch issue.Code {
		case "MISSING_GAMBLING_DISCLAIMER":
			if plan == nil {
				continue
			}
			fixes = append(fixes, AutoFix{
				Type:        "add_disclaimer",
				Description: "Added gambling responsibility disclaimer",
				Applied:     true,
			})
			return text + v.lex.GamblingFix, fixes

		case CodeInsufficientLSITerms:
			if plan == nil {
				continue
			}
			fixes = append(fixes, AutoFix{
				Type:        "inject_lsi",
				Description: "Would inject LSI terms near anchor",
				Applied:     false,
			})
		}
	}

	return text, fixes
}
