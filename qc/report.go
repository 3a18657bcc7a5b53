package qc

import "sort"

// Hint per category, emitted when that category ranks among the three
// weakest and scores below 70. Categories without a hint never produce one.
var categoryHints = map[string]string{
	CategoryAnchor:     "Kontrollera att länken är korrekt placerad enligt preflight-instruktioner",
	CategoryTrust:      "Lägg till minst en referens till en trovärdig källa",
	CategoryLSI:        "Inkludera fler LSI-termer inom 2 meningar från länken",
	CategoryCompliance: "Lägg till nödvändiga bransch-disclaimers",
}

var criticalCodes = map[string]bool{
	CodeAnchorInHeader:  true,
	CodeTrustCompetitor: true,
	CodeCompliance:      true,
}

// recommendations returns hints for the three weakest categories. Ties
// break in fixed category order so output is deterministic.
func recommendations(scores map[string]float64) []string {
	ranked := make([]string, len(categoryOrder))
	copy(ranked, categoryOrder)
	sort.SliceStable(ranked, func(i, j int) bool {
		return scores[ranked[i]] < scores[ranked[j]]
	})

	out := []string{}
	for _, category := range ranked[:3] {
		if scores[category] >= 70 {
			continue
		}
		if hint, ok := categoryHints[category]; ok {
			out = append(out, hint)
		}
	}
	return out
}

func requiresHumanSignoff(issues []Issue, scores map[string]float64) bool {
	for _, issue := range issues {
		if criticalCodes[issue.Code] {
			return true
		}
	}
	for _, score := range scores {
		if score < 50 {
			return true
		}
	}
	return false
}

func nextActions(status Status, issues []Issue) []string {
	switch status {
	case StatusApproved:
		return []string{"Proceed to delivery"}
	case StatusLightEdits:
		return []string{"Apply recommended edits", "Re-run QC validation"}
	}

	actions := []string{"Address critical issues"}

	present := map[string]bool{}
	for _, issue := range issues {
		present[issue.Code] = true
	}
	if present[CodeAnchorNotFound] {
		actions = append(actions, "Add target anchor link to article")
	}
	if present[CodeMissingTrustSignals] {
		actions = append(actions, "Add references to credible sources")
	}
	if present[CodeInsufficientLSITerms] {
		actions = append(actions, "Add LSI terms near anchor link")
	}

	return append(actions, "Request human review if needed")
}
