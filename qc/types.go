// Package qc scores a drafted article against its placement plan and
// decides whether it can ship, needs light edits, or is blocked. Scoring
// runs seven independent rules, combines them with fixed weights, and may
// apply a single bounded auto-remediation before the final verdict.
package qc

// Status is the overall verdict on a draft.
type Status string

const (
	StatusApproved   Status = "APPROVED"
	StatusLightEdits Status = "LIGHT_EDITS"
	StatusBlocked    Status = "BLOCKED"
)

// Scoring categories. Category order is also the tie-break order when
// ranking problem areas.
const (
	CategoryPreflight  = "preflight"
	CategoryDraft      = "draft"
	CategoryAnchor     = "anchor"
	CategoryTrust      = "trust"
	CategoryLSI        = "lsi"
	CategoryFit        = "fit"
	CategoryCompliance = "compliance"
)

var categoryOrder = []string{
	CategoryPreflight,
	CategoryDraft,
	CategoryAnchor,
	CategoryTrust,
	CategoryLSI,
	CategoryFit,
	CategoryCompliance,
}

// Issue codes form a closed vocabulary.
const (
	CodeMissingPrimaryAnchor     = "MISSING_PRIMARY_ANCHOR"
	CodeWordCountMismatch        = "WORD_COUNT_MISMATCH"
	CodeInsufficientSections     = "INSUFFICIENT_SECTIONS"
	CodeEmptySection             = "EMPTY_SECTION"
	CodeAnchorInHeader           = "ANCHOR_IN_HEADER"
	CodeAnchorNotFound           = "ANCHOR_NOT_FOUND"
	CodeAnchorPlacementWrong     = "ANCHOR_PLACEMENT_WRONG"
	CodeAnchorTooDeep            = "ANCHOR_TOO_DEEP"
	CodeMissingTrustSignals      = "MISSING_TRUST_SIGNALS"
	CodeInsufficientTrustSignals = "INSUFFICIENT_TRUST_SIGNALS"
	CodeAnchorNotFoundForLSI     = "ANCHOR_NOT_FOUND_FOR_LSI"
	CodeInsufficientLSITerms     = "INSUFFICIENT_LSI_TERMS"
	CodeExcessiveLSITerms        = "EXCESSIVE_LSI_TERMS"
	CodeOverlyPromotional        = "OVERLY_PROMOTIONAL"
	CodeTrustCompetitor          = "ERR_TRUST_COMPETITOR"
	CodeCompliance               = "ERR_COMPLIANCE"
)

// Issue is one finding from a scoring rule.
type Issue struct {
	Type     string         `json:"type"`
	Category string         `json:"category"`
	Code     string         `json:"code"`
	Message  string         `json:"message"`
	Location map[string]any `json:"location,omitempty"`
}

// AutoFix records one remediation attempt, applied or not.
type AutoFix struct {
	Type        string `json:"type"`
	Description string `json:"description"`
	Applied     bool   `json:"applied"`
}

// Result is the outcome of one validation call. A remediation pass produces
// a fresh Result; the pre-fix scores are discarded, only the fix log
// survives.
type Result struct {
	Status               Status             `json:"status"`
	Score                float64            `json:"score"`
	Breakdown            map[string]float64 `json:"breakdown"`
	Issues               []Issue            `json:"issues"`
	AutoFixes            []AutoFix          `json:"auto_fixes"`
	Recommendations      []string           `json:"recommendations"`
	HumanSignoffRequired bool               `json:"human_signoff_required"`
	NextActions          []string           `json:"next_actions"`
}

// Request carries one validation call. StrictMode is accepted for interface
// compatibility but does not change any rule today.
type Request struct {
	ArticleText string `json:"article_text"`
	AutoFix     bool   `json:"auto_fix"`
	StrictMode  bool   `json:"strict_mode"`
}
