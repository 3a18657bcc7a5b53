package preflight

import (
	"context"
	"errors"
	"math/rand"
	"reflect"
	"strings"
	"testing"
)

func testOrder() *Order {
	return &Order{
		OrderRef:          "BL-2024-0042",
		CustomerID:        "cust-17",
		PublicationDomain: "slektforskning-bloggen.se",
		TargetURL:         "https://casino-kungen.com/spela",
		AnchorText:        "Casino Kungen",
		Topic:             "Guide: så undviker du vanliga misstag i släktforskning",
		Constraints: Constraints{
			WordCount:  900,
			Tone:       "informativ",
			Compliance: []string{"gambling"},
		},
	}
}

func seededBuilder(seed int64, opts ...Option) *Builder {
	opts = append(opts, WithRand(rand.New(rand.NewSource(seed))))
	return New(Config{}, nil, nil, opts...)
}

type stubFinder struct {
	sources []Source
	err     error
}

func (f *stubFinder) FindSources(_ context.Context, _ []string, _ int) ([]Source, error) {
	return f.sources, f.err
}

func TestBuild_GuideTopicYieldsInformational(t *testing.T) {
	b := seededBuilder(1)
	res, err := b.Build(context.Background(), testOrder())
	if err != nil {
		t.Fatal(err)
	}

	found := false
	for _, intent := range res.Plan.Intents {
		if intent == "informational" {
			found = true
		}
	}
	if !found {
		t.Errorf("intents = %v, want informational included", res.Plan.Intents)
	}
}

func TestBuild_CasinoTargetYieldsCommercial(t *testing.T) {
	b := seededBuilder(1)
	res, err := b.Build(context.Background(), testOrder())
	if err != nil {
		t.Fatal(err)
	}

	found := false
	for _, intent := range res.Plan.Intents {
		if intent == "commercial" {
			found = true
		}
	}
	if !found {
		t.Errorf("intents = %v, want commercial included", res.Plan.Intents)
	}
}

func TestBuild_DeterministicWithSeed(t *testing.T) {
	res1, err := seededBuilder(42).Build(context.Background(), testOrder())
	if err != nil {
		t.Fatal(err)
	}
	res2, err := seededBuilder(42).Build(context.Background(), testOrder())
	if err != nil {
		t.Fatal(err)
	}

	if !reflect.DeepEqual(res1.Plan, res2.Plan) {
		t.Error("same seed must produce identical plans")
	}
	if res1.WriterPrompt != res2.WriterPrompt {
		t.Error("same seed must produce identical prompts")
	}
}

func TestBuild_PlanInvariants(t *testing.T) {
	for seed := int64(0); seed < 20; seed++ {
		res, err := seededBuilder(seed).Build(context.Background(), testOrder())
		if err != nil {
			t.Fatal(err)
		}
		plan := res.Plan

		if !res.Validation.IsValid {
			t.Errorf("seed %d: validation errors %v", seed, res.Validation.Errors)
		}
		if n := len(plan.LSIWindow.Terms); n < 6 || n > 10 {
			t.Errorf("seed %d: %d terms, want 6-10", seed, n)
		}
		if len(plan.Trust) < 1 {
			t.Errorf("seed %d: no trust sources", seed)
		}
		if p := plan.AnchorPlan.Placement.Paragraph; p < 1 || p > 3 {
			t.Errorf("seed %d: paragraph %d, want 1-3", seed, p)
		}
		if len(plan.Midpoints) < 1 || len(plan.Midpoints) > 3 {
			t.Errorf("seed %d: %d midpoints", seed, len(plan.Midpoints))
		}
		if plan.Chosen != plan.Midpoints[0] {
			t.Errorf("seed %d: chosen midpoint is not the top candidate", seed)
		}
	}
}

func TestBuild_InvalidOrderFails(t *testing.T) {
	b := seededBuilder(1)
	order := testOrder()
	order.AnchorText = ""

	if _, err := b.Build(context.Background(), order); err == nil {
		t.Error("order without anchor text must fail")
	}
}

func TestBuild_WriterPromptCarriesPlan(t *testing.T) {
	b := seededBuilder(7)
	res, err := b.Build(context.Background(), testOrder())
	if err != nil {
		t.Fatal(err)
	}

	prompt := res.WriterPrompt
	for _, want := range []string{
		"[[Casino Kungen]]",
		"mittpunkt",
		"BL-2024-0042",
		"slektforskning-bloggen.se",
		"gambling",
	} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q:\n%s", want, prompt)
		}
	}
	for _, term := range res.Plan.LSIWindow.Terms {
		if !strings.Contains(prompt, term) {
			t.Errorf("prompt missing term %q", term)
		}
	}
}

func TestQueryCluster(t *testing.T) {
	b := seededBuilder(1)

	got := b.extractQueryCluster("Guide: så undviker du vanliga misstag i släktforskning")
	want := []string{"guide:", "undviker", "vanliga", "misstag"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("cluster = %v, want %v", got, want)
	}

	// Too few meaningful tokens falls back to raw words.
	got = b.extractQueryCluster("om spel")
	if !reflect.DeepEqual(got, []string{"om", "spel"}) {
		t.Errorf("fallback cluster = %v", got)
	}
}

func TestAnchorClassification(t *testing.T) {
	b := seededBuilder(1)

	cases := []struct {
		anchor, target, wantType string
	}{
		{"kungen", "https://casino-kungen.com", "brand"},
		{"Casino Kungen", "https://casino-kungen.com", "partial"},
		{"casino", "https://spelsidan.se", "exact"},
		{"läs mer här", "https://spelsidan.nu", "generic"},
	}
	for _, tc := range cases {
		got := b.planAnchor(tc.anchor, tc.target)
		if got.Type != tc.wantType {
			t.Errorf("planAnchor(%q, %q).Type = %q, want %q", tc.anchor, tc.target, got.Type, tc.wantType)
		}
	}
}

func TestAnchorBackupVariants(t *testing.T) {
	b := seededBuilder(1)

	if got := b.planAnchor("casino", "https://spelsidan.se").Backup; got != "casino online" {
		t.Errorf("exact backup = %q", got)
	}
	if got := b.planAnchor("kungen", "https://casino-kungen.com").Backup; got != "besök kungen" {
		t.Errorf("brand backup = %q", got)
	}
	if got := b.planAnchor("läs mer", "https://spelsidan.nu").Backup; got != "läs och mer" {
		t.Errorf("generic backup = %q", got)
	}
}

func TestMidpoints(t *testing.T) {
	b := seededBuilder(1)

	t.Run("both sides matching boosts and caps", func(t *testing.T) {
		got := b.findMidpoints(
			[]string{"släktforskning", "forskning"},
			[]string{"casino", "spel"},
		)
		if got[0].Label != "pausunderhållning" {
			t.Fatalf("top midpoint = %+v", got[0])
		}
		// 0.85 * 1.2 capped at 1.0
		if got[0].Score != 1.0 {
			t.Errorf("boosted score = %v, want 1.0", got[0].Score)
		}
	})

	t.Run("single side keeps base score", func(t *testing.T) {
		got := b.findMidpoints([]string{"forskning"}, []string{"resor"})
		if got[0].Label != "pausunderhållning" || got[0].Score != 0.85 {
			t.Errorf("midpoint = %+v", got[0])
		}
	})

	t.Run("no match gives synthetic fallback", func(t *testing.T) {
		got := b.findMidpoints([]string{"mat"}, []string{"resor"})
		if len(got) != 1 || got[0].Label != "avkoppling" || got[0].Score != 0.5 {
			t.Errorf("fallback = %+v", got)
		}
	})
}

func TestTrustSources(t *testing.T) {
	t.Run("registry results win", func(t *testing.T) {
		finder := &stubFinder{sources: []Source{
			{Domain: "scb.se", TrustLevel: "T1", Pattern: "government"},
			{Domain: "svd.se", TrustLevel: "T2", Pattern: "news"},
			{Domain: "dn.se", TrustLevel: "T2", Pattern: "news"},
		}}
		b := seededBuilder(1, WithSourceFinder(finder))

		got := b.selectTrustSources(context.Background(), "släktforskning", "blogg.se")
		if len(got) != 2 {
			t.Fatalf("sources = %+v, want top 2", got)
		}
		if got[0].Domain != "scb.se" || got[0].Rationale != "Officiell myndighet med hög trovärdighet" {
			t.Errorf("first source = %+v", got[0])
		}
	})

	t.Run("registry failure degrades to fallback", func(t *testing.T) {
		finder := &stubFinder{err: errors.New("connection refused")}
		b := seededBuilder(1, WithSourceFinder(finder))

		got := b.selectTrustSources(context.Background(), "guide till släktforskning", "blogg.se")
		if len(got) != 1 || got[0].Domain != "riksarkivet.se" || got[0].Level != "T1" {
			t.Errorf("fallback = %+v", got)
		}
	})

	t.Run("unknown topic falls back to sentinel", func(t *testing.T) {
		b := seededBuilder(1)
		got := b.selectTrustSources(context.Background(), "matlagning för nybörjare", "recept.se")
		if len(got) != 1 || got[0].Domain != "PLATSFÖRSLAG" || got[0].Level != "T2" {
			t.Errorf("fallback = %+v", got)
		}
	})
}

func TestBusinessRules(t *testing.T) {
	plan := &Plan{
		LSIWindow:  LSIWindow{Terms: []string{"a", "b"}},
		AnchorPlan: AnchorPlan{Placement: Placement{Paragraph: 6}},
	}
	errs := plan.BusinessRules()
	if len(errs) != 3 {
		t.Errorf("violations = %v, want 3", errs)
	}
}
