package qc

import (
	"strings"
	"testing"

	"github.com/mittpunkt/blcwrtr/article"
	"github.com/mittpunkt/blcwrtr/lexicon"
	"github.com/mittpunkt/blcwrtr/preflight"
)

func testPlan(anchor string) *preflight.Plan {
	return &preflight.Plan{
		OrderRef:     "ord-0001",
		QueryCluster: []string{"släktforskning", "nybörjare"},
		Intents:      []string{"informational"},
		Midpoints:    []preflight.Midpoint{{Label: "avkoppling", Score: 0.5}},
		Chosen:       preflight.Midpoint{Label: "avkoppling", Score: 0.5},
		AnchorPlan: preflight.AnchorPlan{
			Type:    "brand",
			Primary: anchor,
			Backup:  "besök " + anchor,
			Placement: preflight.Placement{
				Section:   "mittpunkt",
				Paragraph: 2,
			},
		},
		LSIWindow: preflight.LSIWindow{
			Policy: preflight.WindowPolicy{Min: 2, Max: 10, RadiusSentences: 2, MaxRepeat: 2},
			Terms:  []string{"historia", "arkiv", "källor", "register", "dokument", "forskning"},
		},
		Trust: []preflight.TrustSource{
			{Domain: "PLATSFÖRSLAG", Level: "T2", Rationale: "valfri trovärdig källa"},
		},
		Guards:    preflight.Guards{NoAnchorInHeaders: true, CompetitorBlock: true},
		WordCount: 800,
	}
}

func hasCode(issues []Issue, code string) bool {
	for _, issue := range issues {
		if issue.Code == code {
			return true
		}
	}
	return false
}

func TestRulePreflight(t *testing.T) {
	t.Run("no plan gives fixed default", func(t *testing.T) {
		score, issues := rulePreflight(article.Parse("## A\n\ntext"), nil)
		if score != 50 || len(issues) != 0 {
			t.Errorf("got score=%v issues=%d, want 50 and none", score, len(issues))
		}
	})

	t.Run("missing anchor and word count", func(t *testing.T) {
		plan := testPlan("Slektforskning Pro")
		doc := article.Parse("## A\n\nkort text utan länk")
		score, issues := rulePreflight(doc, plan)
		if score != 60 {
			t.Errorf("score = %v, want 60", score)
		}
		if !hasCode(issues, CodeMissingPrimaryAnchor) || !hasCode(issues, CodeWordCountMismatch) {
			t.Errorf("issues = %+v, want both anchor and word count codes", issues)
		}
	})

	t.Run("anchor present within tolerance", func(t *testing.T) {
		plan := testPlan("Slektforskning Pro")
		doc := article.Parse("## A\n\nBesök [[Slektforskning Pro]] idag.")
		plan.WordCount = doc.WordCount
		score, issues := rulePreflight(doc, plan)
		if score != 100 || len(issues) != 0 {
			t.Errorf("got score=%v issues=%+v, want 100 and none", score, issues)
		}
	})
}

func TestRuleDraft(t *testing.T) {
	t.Run("three sections score full", func(t *testing.T) {
		doc := article.Parse("## A\n\np1\n\n## B\n\np2\n\n## C\n\np3")
		score, issues := ruleDraft(doc)
		if score != 100 || len(issues) != 0 {
			t.Errorf("got score=%v issues=%+v, want 100 and none", score, issues)
		}
	})

	t.Run("too few sections", func(t *testing.T) {
		score, issues := ruleDraft(article.Parse("## A\n\np1\n\n## B\n\np2"))
		if score != 80 || !hasCode(issues, CodeInsufficientSections) {
			t.Errorf("got score=%v issues=%+v", score, issues)
		}
	})

	t.Run("empty sections located by title", func(t *testing.T) {
		score, issues := ruleDraft(article.Parse("## A\n\np1\n\n## Tom\n\n## C\n\np3"))
		if score != 90 {
			t.Errorf("score = %v, want 90", score)
		}
		if len(issues) != 1 || issues[0].Code != CodeEmptySection {
			t.Fatalf("issues = %+v", issues)
		}
		if issues[0].Location["section"] != "Tom" {
			t.Errorf("location = %v", issues[0].Location)
		}
	})
}

func TestRuleAnchor(t *testing.T) {
	t.Run("no plan gives fixed default", func(t *testing.T) {
		score, issues := ruleAnchor(article.Parse("## A\n\ntext"), nil)
		if score != 70 || len(issues) != 0 {
			t.Errorf("got score=%v issues=%d", score, len(issues))
		}
	})

	t.Run("anchor in header short-circuits to zero", func(t *testing.T) {
		plan := testPlan("X")
		doc := article.Parse("## Buy [[X]] now\n\ntext")
		score, issues := ruleAnchor(doc, plan)
		if score != 0 {
			t.Errorf("score = %v, want 0", score)
		}
		if len(issues) != 1 || issues[0].Code != CodeAnchorInHeader {
			t.Fatalf("issues = %+v, want exactly ANCHOR_IN_HEADER", issues)
		}
	})

	t.Run("anchor absent", func(t *testing.T) {
		plan := testPlan("X")
		score, issues := ruleAnchor(article.Parse("## A\n\ningen länk här"), plan)
		if score != 0 || !hasCode(issues, CodeAnchorNotFound) {
			t.Errorf("got score=%v issues=%+v", score, issues)
		}
	})

	t.Run("anchor outside middle section", func(t *testing.T) {
		plan := testPlan("X")
		text := "## A\n\nBesök [[X]] här.\n\n## B\n\np\n\n## C\n\np\n\n## D\n\np\n\n## E\n\np"
		score, issues := ruleAnchor(article.Parse(text), plan)
		if score != 80 || !hasCode(issues, CodeAnchorPlacementWrong) {
			t.Errorf("got score=%v issues=%+v", score, issues)
		}
	})

	t.Run("anchor too deep in section", func(t *testing.T) {
		plan := testPlan("X")
		var b strings.Builder
		b.WriteString("## A\n\np\n\n## B\n\n")
		for i := 0; i < 5; i++ {
			b.WriteString("fyllnadstext\n\n")
		}
		b.WriteString("Besök [[X]] här.\n\n## C\n\np")
		score, issues := ruleAnchor(article.Parse(b.String()), plan)
		if score != 85 || !hasCode(issues, CodeAnchorTooDeep) {
			t.Errorf("got score=%v issues=%+v", score, issues)
		}
	})

	t.Run("well placed anchor", func(t *testing.T) {
		plan := testPlan("X")
		text := "## A\n\np\n\n## B\n\nBesök [[X]] här.\n\n## C\n\np"
		score, issues := ruleAnchor(article.Parse(text), plan)
		if score != 100 || len(issues) != 0 {
			t.Errorf("got score=%v issues=%+v", score, issues)
		}
	})
}

func TestRuleTrust(t *testing.T) {
	lex := lexicon.Default()

	t.Run("sentinel satisfied by citation phrase", func(t *testing.T) {
		plan := testPlan("X")
		doc := article.Parse("## A\n\naccording to Riksarkivet.se the records are open")
		score, issues := ruleTrust(doc, plan, lex)
		if score != 100 || len(issues) != 0 {
			t.Errorf("got score=%v issues=%+v", score, issues)
		}
	})

	t.Run("concrete domain matched case-insensitively", func(t *testing.T) {
		plan := testPlan("X")
		plan.Trust = []preflight.TrustSource{{Domain: "riksarkivet.se", Level: "T1"}}
		doc := article.Parse("## A\n\nKällor finns hos Riksarkivet.se i original.")
		score, _ := ruleTrust(doc, plan, lex)
		if score != 100 {
			t.Errorf("score = %v, want 100", score)
		}
	})

	t.Run("no signals", func(t *testing.T) {
		plan := testPlan("X")
		score, issues := ruleTrust(article.Parse("## A\n\nhelt utan källor"), plan, lex)
		if score != 0 || !hasCode(issues, CodeMissingTrustSignals) {
			t.Errorf("got score=%v issues=%+v", score, issues)
		}
	})

	t.Run("partial coverage", func(t *testing.T) {
		plan := testPlan("X")
		plan.Trust = []preflight.TrustSource{
			{Domain: "riksarkivet.se", Level: "T1"},
			{Domain: "scb.se", Level: "T1"},
		}
		doc := article.Parse("## A\n\nUppgifterna kommer från riksarkivet.se enbart.")
		score, issues := ruleTrust(doc, plan, lex)
		if score != 80 || !hasCode(issues, CodeInsufficientTrustSignals) {
			t.Errorf("got score=%v issues=%+v", score, issues)
		}
	})
}

func TestRuleLSI(t *testing.T) {
	t.Run("terms near anchor satisfy policy", func(t *testing.T) {
		plan := testPlan("Slektforskning Pro")
		text := "## A\n\nGamla arkiv bevarar vår historia.\n\n## B\n\nBesök [[Slektforskning Pro]] för register och dokument.\n\n## C\n\navslutning"
		score, issues := ruleLSI(article.Parse(text), plan)
		if score != 100 || len(issues) != 0 {
			t.Errorf("got score=%v issues=%+v", score, issues)
		}
	})

	t.Run("last anchor occurrence centres the window", func(t *testing.T) {
		plan := testPlan("X")
		text := "## A\n\nBesök [[X]] här. Inget mer. Inget alls. Tomt igen. Helt tomt.\n\n" +
			"## B\n\nSe [[X]] med historia, arkiv och källor."
		score, issues := ruleLSI(article.Parse(text), plan)
		if score != 100 || len(issues) != 0 {
			t.Errorf("got score=%v issues=%+v, want the closing mention scored", score, issues)
		}
	})

	t.Run("anchor missing gives separate code", func(t *testing.T) {
		plan := testPlan("X")
		score, issues := ruleLSI(article.Parse("## A\n\ningen länk"), plan)
		if score != 0 || !hasCode(issues, CodeAnchorNotFoundForLSI) {
			t.Errorf("got score=%v issues=%+v", score, issues)
		}
	})

	t.Run("too few terms in window", func(t *testing.T) {
		plan := testPlan("X")
		plan.LSIWindow.Policy.Min = 6
		score, issues := ruleLSI(article.Parse("## A\n\nBesök [[X]] idag."), plan)
		if score != 0 || !hasCode(issues, CodeInsufficientLSITerms) {
			t.Errorf("got score=%v issues=%+v", score, issues)
		}
	})

	t.Run("too many terms in window", func(t *testing.T) {
		plan := testPlan("X")
		plan.LSIWindow.Policy.Max = 2
		text := "## A\n\nBesök [[X]] för historia, arkiv, källor och register."
		score, issues := ruleLSI(article.Parse(text), plan)
		if score != 90 || !hasCode(issues, CodeExcessiveLSITerms) {
			t.Errorf("got score=%v issues=%+v", score, issues)
		}
	})
}

func TestRuleFit(t *testing.T) {
	lex := lexicon.Default()

	t.Run("neutral prose keeps baseline", func(t *testing.T) {
		score, issues := ruleFit(article.Parse("## A\n\nsaklig text om arkiv"), lex)
		if score != 90 || len(issues) != 0 {
			t.Errorf("got score=%v issues=%+v", score, issues)
		}
	})

	t.Run("promotional prose penalized", func(t *testing.T) {
		text := "## A\n\nDen bästa, fantastisk och otrolig chansen - missa inte detta!"
		score, issues := ruleFit(article.Parse(text), lex)
		if score != 70 || !hasCode(issues, CodeOverlyPromotional) {
			t.Errorf("got score=%v issues=%+v", score, issues)
		}
	})
}

func TestRuleCompliance(t *testing.T) {
	lex := lexicon.Default()

	t.Run("no requirement scores full", func(t *testing.T) {
		plan := testPlan("X")
		score, issues := ruleCompliance(article.Parse("## A\n\ntext"), plan, lex)
		if score != 100 || len(issues) != 0 {
			t.Errorf("got score=%v issues=%+v", score, issues)
		}
	})

	t.Run("missing disclaimer zeroes the category", func(t *testing.T) {
		plan := testPlan("X")
		plan.Guards.Compliance = []string{"gambling"}
		score, issues := ruleCompliance(article.Parse("## A\n\ntext utan varning"), plan, lex)
		if score != 0 || !hasCode(issues, "MISSING_GAMBLING_DISCLAIMER") {
			t.Errorf("got score=%v issues=%+v", score, issues)
		}
	})

	t.Run("one issue per missing category", func(t *testing.T) {
		plan := testPlan("X")
		plan.Guards.Compliance = []string{"gambling", "health"}
		doc := article.Parse("## A\n\nSpela ansvarsfullt men inget om hälsa.")
		score, issues := ruleCompliance(doc, plan, lex)
		if score != 0 {
			t.Errorf("score = %v, want 0", score)
		}
		if len(issues) != 1 || issues[0].Code != "MISSING_HEALTH_DISCLAIMER" {
			t.Errorf("issues = %+v", issues)
		}
	})

	t.Run("all disclaimers present", func(t *testing.T) {
		plan := testPlan("X")
		plan.Guards.Compliance = []string{"gambling"}
		doc := article.Parse("## A\n\nSpela ansvarsfullt, 18+.")
		score, issues := ruleCompliance(doc, plan, lex)
		if score != 100 || len(issues) != 0 {
			t.Errorf("got score=%v issues=%+v", score, issues)
		}
	})
}
