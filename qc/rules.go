package qc

import (
	"fmt"
	"strings"

	"github.com/mittpunkt/blcwrtr/article"
	"github.com/mittpunkt/blcwrtr/lexicon"
	"github.com/mittpunkt/blcwrtr/preflight"
)

// Category weights. Must sum to 1.0.
var weights = map[string]float64{
	CategoryPreflight:  0.25,
	CategoryDraft:      0.15,
	CategoryAnchor:     0.20,
	CategoryTrust:      0.15,
	CategoryLSI:        0.15,
	CategoryFit:        0.05,
	CategoryCompliance: 0.05,
}

// Each rule is a pure function of the parsed document and the plan (which
// may be nil). Rules never see each other's output and may run in any order.

func rulePreflight(doc *article.Document, plan *preflight.Plan) (float64, []Issue) {
	if plan == nil {
		return 50, nil
	}

	score := 100.0
	var issues []Issue

	primary := plan.AnchorPlan.Primary
	if !doc.HasLinkText(primary) {
		score -= 30
		issues = append(issues, Issue{
			Type:     "error",
			Category: CategoryAnchor,
			Code:     CodeMissingPrimaryAnchor,
			Message:  fmt.Sprintf("Primary anchor text %q not found", primary),
		})
	}

	target := plan.TargetWordCount()
	diff := doc.WordCount - target
	if diff < 0 {
		diff = -diff
	}
	if float64(diff) > float64(target)*0.2 {
		score -= 10
		issues = append(issues, Issue{
			Type:     "warning",
			Category: "content",
			Code:     CodeWordCountMismatch,
			Message:  fmt.Sprintf("Word count %d differs from target %d", doc.WordCount, target),
		})
	}

	return score, issues
}

func ruleDraft(doc *article.Document) (float64, []Issue) {
	score := 100.0
	var issues []Issue

	if len(doc.Sections) < 3 {
		score -= 20
		issues = append(issues, Issue{
			Type:     "warning",
			Category: "structure",
			Code:     CodeInsufficientSections,
			Message:  "Article should have at least 3 sections",
		})
	}

	for _, sec := range doc.Sections {
		if len(sec.Paragraphs) == 0 {
			score -= 10
			issues = append(issues, Issue{
				Type:     "warning",
				Category: "structure",
				Code:     CodeEmptySection,
				Message:  fmt.Sprintf("Section %q has no content", sec.Title),
				Location: map[string]any{"section": sec.Title},
			})
		}
	}

	return score, issues
}

func ruleAnchor(doc *article.Document, plan *preflight.Plan) (float64, []Issue) {
	if plan == nil {
		return 70, nil
	}

	anchor := plan.AnchorPlan.Primary
	token := "[[" + anchor + "]]"

	// Anchor in a header is a hard failure; no further anchor checks run.
	for _, sec := range doc.Sections {
		if strings.Contains(sec.Title, anchor) {
			return 0, []Issue{{
				Type:     "error",
				Category: CategoryAnchor,
				Code:     CodeAnchorInHeader,
				Message:  "Anchor text found in header - this is not allowed",
				Location: map[string]any{"section": sec.Title},
			}}
		}
	}

	sectionIdx, paragraphPos := -1, 0
	var sectionTitle string
	for sIdx, sec := range doc.Sections {
		for pIdx, p := range sec.Paragraphs {
			if p.HasLink && strings.Contains(p.Text, token) {
				sectionIdx = sIdx
				sectionTitle = sec.Title
				paragraphPos = pIdx + 1
			}
		}
	}

	if sectionIdx < 0 {
		return 0, []Issue{{
			Type:     "error",
			Category: CategoryAnchor,
			Code:     CodeAnchorNotFound,
			Message:  fmt.Sprintf("Target anchor %q not found in article", anchor),
		}}
	}

	score := 100.0
	var issues []Issue
	location := map[string]any{
		"section_idx": sectionIdx,
		"section":     sectionTitle,
		"paragraph":   paragraphPos,
	}

	if plan.AnchorPlan.Placement.Section == "mittpunkt" {
		middle := len(doc.Sections) / 2
		off := sectionIdx - middle
		if off < 0 {
			off = -off
		}
		if off > 1 {
			score -= 20
			issues = append(issues, Issue{
				Type:     "warning",
				Category: CategoryAnchor,
				Code:     CodeAnchorPlacementWrong,
				Message:  fmt.Sprintf("Anchor should be in middle section, found in %s", sectionTitle),
				Location: location,
			})
		}
	}

	if paragraphPos > 5 {
		score -= 15
		issues = append(issues, Issue{
			Type:     "warning",
			Category: CategoryAnchor,
			Code:     CodeAnchorTooDeep,
			Message:  fmt.Sprintf("Anchor in paragraph %d, should be in 1-3", paragraphPos),
			Location: location,
		})
	}

	return score, issues
}

func ruleTrust(doc *article.Document, plan *preflight.Plan, lex *lexicon.Tables) (float64, []Issue) {
	if plan == nil || len(plan.Trust) == 0 {
		return 70, nil
	}

	lower := strings.ToLower(doc.FullText)
	found := 0
	for _, src := range plan.Trust {
		if src.Domain == lex.TrustSentinel {
			for _, re := range lex.CitationPatterns {
				if re.MatchString(lower) {
					found++
					break
				}
			}
			continue
		}
		if strings.Contains(lower, strings.ToLower(src.Domain)) {
			found++
		}
	}

	switch {
	case found < 1:
		return 0, []Issue{{
			Type:     "error",
			Category: CategoryTrust,
			Code:     CodeMissingTrustSignals,
			Message:  "No trust signals found - at least 1 required",
		}}
	case found < len(plan.Trust):
		missing := len(plan.Trust) - found
		return 100 - 20*float64(missing), []Issue{{
			Type:     "warning",
			Category: CategoryTrust,
			Code:     CodeInsufficientTrustSignals,
			Message:  fmt.Sprintf("Only %d of %d trust signals found", found, len(plan.Trust)),
		}}
	}
	return 100, nil
}

func ruleLSI(doc *article.Document, plan *preflight.Plan) (float64, []Issue) {
	if plan == nil || len(plan.LSIWindow.Terms) == 0 {
		return 70, nil
	}

	anchor := strings.ToLower(plan.AnchorPlan.Primary)
	sentences := doc.FlatSentences()
	for i := range sentences {
		sentences[i] = strings.ToLower(sentences[i])
	}

	// Last occurrence wins, matching how drafts repeat the anchor in a
	// closing summary.
	anchorIdx := -1
	for i, s := range sentences {
		if strings.Contains(s, anchor) {
			anchorIdx = i
		}
	}
	if anchorIdx < 0 {
		return 0, []Issue{{
			Type:     "error",
			Category: CategoryLSI,
			Code:     CodeAnchorNotFoundForLSI,
			Message:  "Cannot validate LSI terms - anchor not found",
		}}
	}

	policy := plan.LSIWindow.Policy
	start := anchorIdx - policy.RadiusSentences
	if start < 0 {
		start = 0
	}
	end := anchorIdx + policy.RadiusSentences + 1
	if end > len(sentences) {
		end = len(sentences)
	}
	window := strings.Join(sentences[start:end], " ")

	found := 0
	for _, term := range plan.LSIWindow.Terms {
		if strings.Contains(window, strings.ToLower(term)) {
			found++
		}
	}

	switch {
	case found < policy.Min:
		return 0, []Issue{{
			Type:     "error",
			Category: CategoryLSI,
			Code:     CodeInsufficientLSITerms,
			Message:  fmt.Sprintf("Only %d LSI terms near anchor, minimum %d required", found, policy.Min),
		}}
	case found > policy.Max:
		return 90, []Issue{{
			Type:     "warning",
			Category: CategoryLSI,
			Code:     CodeExcessiveLSITerms,
			Message:  fmt.Sprintf("%d LSI terms near anchor, maximum %d recommended", found, policy.Max),
		}}
	}
	return 100, nil
}

func ruleFit(doc *article.Document, lex *lexicon.Tables) (float64, []Issue) {
	lower := strings.ToLower(doc.FullText)

	promo := 0
	for _, phrase := range lex.PromoPhrases {
		if strings.Contains(lower, phrase) {
			promo++
		}
	}

	if promo > 3 {
		return 70, []Issue{{
			Type:     "warning",
			Category: "content",
			Code:     CodeOverlyPromotional,
			Message:  "Content appears overly promotional",
		}}
	}
	return 90, nil
}

func ruleCompliance(doc *article.Document, plan *preflight.Plan, lex *lexicon.Tables) (float64, []Issue) {
	if plan == nil || len(plan.Guards.Compliance) == 0 {
		return 100, nil
	}

	lower := strings.ToLower(doc.FullText)
	score := 100.0
	var issues []Issue

	for _, category := range plan.Guards.Compliance {
		found := false
		for _, phrase := range lex.Disclaimers[category] {
			if strings.Contains(lower, phrase) {
				found = true
				break
			}
		}
		if !found {
			score = 0
			issues = append(issues, Issue{
				Type:     "error",
				Category: CategoryCompliance,
				Code:     fmt.Sprintf("MISSING_%s_DISCLAIMER", strings.ToUpper(category)),
				Message:  fmt.Sprintf("Required %s disclaimer not found", category),
			})
		}
	}

	return score, issues
}
