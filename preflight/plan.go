package preflight

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

// Order is the immutable placement request a plan is built from.
type Order struct {
	OrderRef          string      `json:"order_ref" validate:"required"`
	CustomerID        string      `json:"customer_id"`
	PublicationDomain string      `json:"publication_domain" validate:"required,hostname"`
	TargetURL         string      `json:"target_url" validate:"required,url"`
	AnchorText        string      `json:"anchor_text" validate:"required"`
	Topic             string      `json:"topic" validate:"required"`
	Constraints       Constraints `json:"constraints"`
}

// Constraints carries the optional editorial requirements of an order.
type Constraints struct {
	WordCount  int      `json:"word_count" validate:"omitempty,gt=0"`
	Tone       string   `json:"tone"`
	Compliance []string `json:"compliance" validate:"dive,oneof=gambling finance health"`
}

// Plan is the placement plan ("preflight matrix") the builder emits and the
// validator consumes. It is created once per order and read-only afterward.
type Plan struct {
	OrderRef          string        `json:"order_ref" validate:"required"`
	CustomerID        string        `json:"customer_id"`
	PublicationDomain string        `json:"publication_domain"`
	TargetURL         string        `json:"target_url"`
	QueryCluster      []string      `json:"query_cluster" validate:"required,min=1"`
	Intents           []string      `json:"intents" validate:"required,min=1,dive,oneof=informational commercial local transactional"`
	Entities          EntitySets    `json:"entities"`
	Midpoints         []Midpoint    `json:"midpoint_candidates" validate:"required,min=1,max=3,dive"`
	Chosen            Midpoint      `json:"chosen_midpoint"`
	AnchorPlan        AnchorPlan    `json:"anchor_plan"`
	LSIWindow         LSIWindow     `json:"lsi_near_window"`
	Trust             []TrustSource `json:"trust" validate:"required,min=1,dive"`
	Guards            Guards        `json:"guards"`
	WordCount         int           `json:"word_count" validate:"gt=0"`
	Tone              string        `json:"tone"`
}

// EntitySets holds the extracted entities for both sides of the placement.
type EntitySets struct {
	Publisher []string `json:"publisher"`
	Target    []string `json:"target"`
}

// Midpoint is a semantic bridging concept between publisher and target.
type Midpoint struct {
	Label     string  `json:"label" validate:"required"`
	Score     float64 `json:"score" validate:"gte=0,lte=1"`
	Rationale string  `json:"rationale"`
}

// AnchorPlan states what the anchor must say and where it must sit.
type AnchorPlan struct {
	Type      string    `json:"type" validate:"required,oneof=brand partial exact generic"`
	Primary   string    `json:"primary" validate:"required"`
	Backup    string    `json:"backup"`
	Placement Placement `json:"placement"`
}

// Placement names the required section and paragraph for the anchor.
type Placement struct {
	Section   string `json:"section" validate:"required"`
	Paragraph int    `json:"paragraph" validate:"gte=1,lte=5"`
}

// LSIWindow is the topical-term requirement around the anchor sentence.
type LSIWindow struct {
	Policy WindowPolicy `json:"policy"`
	Terms  []string     `json:"terms" validate:"required,min=6"`
}

// WindowPolicy bounds the term count and the sentence radius to scan.
type WindowPolicy struct {
	Min             int `json:"min" validate:"gte=1"`
	Max             int `json:"max" validate:"gtefield=Min"`
	RadiusSentences int `json:"radius_sentences" validate:"gte=1"`
	MaxRepeat       int `json:"max_repeat" validate:"gte=1"`
}

// TrustSource is a citation requirement. Domain may be the sentinel value
// asking for any credible citation instead of a literal domain.
type TrustSource struct {
	Domain    string `json:"domain" validate:"required"`
	Level     string `json:"trust_level" validate:"required,oneof=T1 T2"`
	Rationale string `json:"rationale"`
}

// Guards are the hard editorial flags a draft must respect.
type Guards struct {
	NoAnchorInHeaders bool     `json:"no_anchor_in_headers"`
	CompetitorBlock   bool     `json:"competitor_block"`
	Compliance        []string `json:"compliance"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks the order's schema contract.
func (o *Order) Validate() error {
	if err := validate.Struct(o); err != nil {
		return fmt.Errorf("order: %w", err)
	}
	return nil
}

// Validate checks the plan's schema contract. Business rules beyond the
// schema are reported separately by the builder.
func (p *Plan) Validate() error {
	if err := validate.Struct(p); err != nil {
		return fmt.Errorf("plan: %w", err)
	}
	return nil
}

// BusinessRules re-checks the explicit plan invariants and returns one
// message per violation. Violations are advisory, not fatal.
func (p *Plan) BusinessRules() []string {
	var errs []string
	if len(p.LSIWindow.Terms) < 6 {
		errs = append(errs, fmt.Sprintf("plan has %d LSI terms, minimum 6 required", len(p.LSIWindow.Terms)))
	}
	if len(p.Trust) < 1 {
		errs = append(errs, "plan has no trust sources, at least 1 required")
	}
	if p.AnchorPlan.Placement.Paragraph > 5 {
		errs = append(errs, fmt.Sprintf("anchor paragraph %d exceeds maximum 5", p.AnchorPlan.Placement.Paragraph))
	}
	return errs
}

// TargetWordCount returns the plan's word-count target, defaulting when the
// plan carries none.
func (p *Plan) TargetWordCount() int {
	if p.WordCount > 0 {
		return p.WordCount
	}
	return 800
}
