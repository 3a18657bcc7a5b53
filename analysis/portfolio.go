package analysis

import (
	"fmt"
	"math"
	"sort"
)

// Mix counts placed anchors per anchor type for one target domain.
type Mix struct {
	Exact   int `json:"exact"`
	Partial int `json:"partial"`
	Brand   int `json:"brand"`
	Generic int `json:"generic"`
}

// Total returns the number of anchors in the mix.
func (m Mix) Total() int {
	return m.Exact + m.Partial + m.Brand + m.Generic
}

func (m Mix) ratios() (exact, partial, brand, generic float64) {
	total := float64(m.Total())
	if total == 0 {
		return 0, 0, 0, 0
	}
	return float64(m.Exact) / total, float64(m.Partial) / total,
		float64(m.Brand) / total, float64(m.Generic) / total
}

func (m Mix) typesUsed() int {
	n := 0
	for _, c := range []int{m.Exact, m.Partial, m.Brand, m.Generic} {
		if c > 0 {
			n++
		}
	}
	return n
}

// Healthy ratio bands per anchor type. Exact-match anchors above the band
// are the dominant penalty driver.
const (
	exactMin   = 0.05
	exactMax   = 0.15
	partialMin = 0.20
	brandMin   = 0.25
	genericMin = 0.15
)

// diversityScore rates how evenly the mix spreads over the four anchor
// types. Uses sum(r^1.5) rescaled so a uniform mix scores 1.0 and a
// single-type mix scores 0.0.
func diversityScore(m Mix) float64 {
	if m.Total() == 0 {
		return 1.0
	}
	e, p, b, g := m.ratios()
	var sum float64
	for _, r := range []float64{e, p, b, g} {
		if r > 0 {
			sum += r * math.Sqrt(r)
		}
	}
	return clamp01(2 * (1 - sum))
}

// riskScore computes link-profile risk for a mix, in [0, 1].
//
// Components: exact-match excess over 15% weighted 3x, lack of diversity
// weighted 1.5x, and a flat 0.3 penalty when brand or generic anchors are
// underrepresented.
func riskScore(m Mix) float64 {
	if m.Total() == 0 {
		return 0
	}
	exact, _, brand, generic := m.ratios()

	var risk float64
	if exact > exactMax {
		risk += (exact - exactMax) * 3.0
	}
	risk += (1 - diversityScore(m)) * 1.5
	if brand < brandMin || generic < genericMin {
		risk += 0.3
	}
	return math.Min(risk, 1.0)
}

func riskLevel(risk float64) string {
	switch {
	case risk <= 0.3:
		return "low"
	case risk <= 0.6:
		return "medium"
	default:
		return "high"
	}
}

// Recommendation is one adjustment suggestion for the anchor mix.
type Recommendation struct {
	Type     string `json:"type"`
	Action   string `json:"action"`
	Priority string `json:"priority"`
	Reason   string `json:"reason"`
}

// recommendations derives adjustment suggestions for a mix, highest
// priority first, at most four.
func recommendations(m Mix) []Recommendation {
	if m.Total() == 0 {
		return []Recommendation{{
			Type:     "brand",
			Action:   "increase",
			Priority: "high",
			Reason:   "Portföljen är tom. Börja med varumärkesankare.",
		}}
	}

	exact, partial, brand, generic := m.ratios()
	risk := riskScore(m)
	highRisk := riskLevel(risk) == "high"

	var recs []Recommendation
	if exact > exactMax {
		recs = append(recs, Recommendation{
			Type: "exact", Action: "decrease", Priority: "high",
			Reason: fmt.Sprintf("Exakta ankare utgör %.0f%% av mixen, över gränsen på %.0f%%.", exact*100, exactMax*100),
		})
	}
	if exact < exactMin && !highRisk {
		recs = append(recs, Recommendation{
			Type: "exact", Action: "increase", Priority: "low",
			Reason: "Ett fåtal exakta ankare stärker relevanssignalen.",
		})
	}
	if partial < partialMin {
		recs = append(recs, Recommendation{
			Type: "partial", Action: "increase", Priority: priorityFor(highRisk),
			Reason: fmt.Sprintf("Partiella ankare ligger på %.0f%%, under målet på %.0f%%.", partial*100, partialMin*100),
		})
	}
	if brand < brandMin {
		recs = append(recs, Recommendation{
			Type: "brand", Action: "increase", Priority: priorityFor(highRisk),
			Reason: fmt.Sprintf("Varumärkesankare ligger på %.0f%%, under målet på %.0f%%.", brand*100, brandMin*100),
		})
	}
	if generic < genericMin {
		recs = append(recs, Recommendation{
			Type: "generic", Action: "increase", Priority: "medium",
			Reason: fmt.Sprintf("Generiska ankare ligger på %.0f%%, under målet på %.0f%%.", generic*100, genericMin*100),
		})
	}
	if diversityScore(m) < 0.7 && m.typesUsed() < 3 {
		recs = append(recs, Recommendation{
			Type: "generic", Action: "diversify", Priority: "medium",
			Reason: "Mixen är koncentrerad till för få ankartyper.",
		})
	}

	sort.SliceStable(recs, func(i, j int) bool {
		return priorityRank(recs[i].Priority) < priorityRank(recs[j].Priority)
	})
	if len(recs) > 4 {
		recs = recs[:4]
	}
	return recs
}

func priorityFor(highRisk bool) string {
	if highRisk {
		return "high"
	}
	return "medium"
}

func priorityRank(p string) int {
	switch p {
	case "high":
		return 0
	case "medium":
		return 1
	default:
		return 2
	}
}

// MixChange records one anchor type's count moving between two mixes.
type MixChange struct {
	From   int `json:"from"`
	To     int `json:"to"`
	Change int `json:"change"`
}

// Delta summarises the risk movement between two mixes.
type Delta struct {
	RiskChange    float64              `json:"risk_change"`
	RiskDirection string               `json:"risk_direction"`
	MixChanges    map[string]MixChange `json:"mix_changes"`
}

// Report is the full before/after portfolio analysis for a target domain.
type Report struct {
	TargetDomain    string           `json:"target_domain"`
	OldMix          Mix              `json:"old_mix"`
	NewMix          Mix              `json:"new_mix"`
	OldRisk         float64          `json:"old_risk"`
	NewRisk         float64          `json:"new_risk"`
	RiskLevel       string           `json:"risk_level"`
	Delta           Delta            `json:"delta"`
	Recommendations []Recommendation `json:"recommendations"`
}

// AnalyzeChange compares the risk of an old and a new anchor mix for a
// target domain and recommends adjustments for the new mix.
func AnalyzeChange(targetDomain string, oldMix, newMix Mix) *Report {
	oldRisk := round3(riskScore(oldMix))
	newRisk := round3(riskScore(newMix))
	change := round3(newRisk - oldRisk)

	direction := "unchanged"
	if math.Abs(change) >= 0.01 {
		if change < 0 {
			direction = "improved"
		} else {
			direction = "worsened"
		}
	}

	changes := map[string]MixChange{}
	for _, c := range []struct {
		name     string
		from, to int
	}{
		{"exact", oldMix.Exact, newMix.Exact},
		{"partial", oldMix.Partial, newMix.Partial},
		{"brand", oldMix.Brand, newMix.Brand},
		{"generic", oldMix.Generic, newMix.Generic},
	} {
		if c.from != c.to {
			changes[c.name] = MixChange{From: c.from, To: c.to, Change: c.to - c.from}
		}
	}

	return &Report{
		TargetDomain:    targetDomain,
		OldMix:          oldMix,
		NewMix:          newMix,
		OldRisk:         oldRisk,
		NewRisk:         newRisk,
		RiskLevel:       riskLevel(newRisk),
		Delta:           Delta{RiskChange: change, RiskDirection: direction, MixChanges: changes},
		Recommendations: recommendations(newMix),
	}
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
