package qc

import (
	"context"
	"strings"
	"testing"

	"github.com/mittpunkt/blcwrtr/article"
)

const cleanArticle = "## Introduktion\n\n" +
	"Historien om svensk släktforskning är lång. Enligt scb.se ökar intresset.\n\n" +
	"## Verktyg\n\n" +
	"Besök [[Slektforskning Pro]] för att utforska historia och arkiv.\n\n" +
	"## Sammanfattning\n\n" +
	"Spela ansvarsfullt. Mer information finns i arkiv."

func TestValidate_NoPlanDefaults(t *testing.T) {
	v := New(Config{}, nil, nil)

	res, err := v.Validate(context.Background(), Request{
		ArticleText: "## A\n\np1\n\n## B\n\np2\n\n## C\n\np3",
	}, nil)
	if err != nil {
		t.Fatal(err)
	}

	want := map[string]float64{
		CategoryPreflight:  50,
		CategoryDraft:      100,
		CategoryAnchor:     70,
		CategoryTrust:      70,
		CategoryLSI:        70,
		CategoryFit:        90,
		CategoryCompliance: 100,
	}
	for category, score := range want {
		if res.Breakdown[category] != score {
			t.Errorf("%s = %v, want %v", category, res.Breakdown[category], score)
		}
	}
	if len(res.Issues) != 0 {
		t.Errorf("issues = %+v, want none", res.Issues)
	}

	// 50*.25 + 100*.15 + 70*.20 + 70*.15 + 70*.15 + 90*.05 + 100*.05
	if res.Score != 72.0 {
		t.Errorf("score = %v, want 72.0", res.Score)
	}
	if res.Status != StatusLightEdits {
		t.Errorf("status = %v, want LIGHT_EDITS", res.Status)
	}
}

func TestValidate_CleanDraftApproved(t *testing.T) {
	v := New(Config{}, nil, nil)
	plan := testPlan("Slektforskning Pro")
	plan.Guards.Compliance = []string{"gambling"}
	plan.WordCount = article.Parse(cleanArticle).WordCount

	res, err := v.Validate(context.Background(), Request{ArticleText: cleanArticle}, plan)
	if err != nil {
		t.Fatal(err)
	}

	if res.Score != 99.5 {
		t.Errorf("score = %v, want 99.5", res.Score)
	}
	if res.Status != StatusApproved {
		t.Errorf("status = %v, want APPROVED", res.Status)
	}
	if res.HumanSignoffRequired {
		t.Error("clean draft should not require signoff")
	}
	if len(res.NextActions) != 1 || res.NextActions[0] != "Proceed to delivery" {
		t.Errorf("next actions = %v", res.NextActions)
	}
}

func TestValidate_AnchorInHeaderBlocks(t *testing.T) {
	v := New(Config{}, nil, nil)
	plan := testPlan("X")

	res, err := v.Validate(context.Background(), Request{
		ArticleText: "## Buy [[X]] now\n\ntext",
	}, plan)
	if err != nil {
		t.Fatal(err)
	}

	if res.Breakdown[CategoryAnchor] != 0 {
		t.Errorf("anchor score = %v, want 0", res.Breakdown[CategoryAnchor])
	}
	var anchorIssues []Issue
	for _, issue := range res.Issues {
		if issue.Category == CategoryAnchor {
			anchorIssues = append(anchorIssues, issue)
		}
	}
	if len(anchorIssues) != 1 || anchorIssues[0].Code != CodeAnchorInHeader {
		t.Errorf("anchor issues = %+v, want exactly ANCHOR_IN_HEADER", anchorIssues)
	}
	if !res.HumanSignoffRequired {
		t.Error("ANCHOR_IN_HEADER must require human signoff")
	}
}

func TestValidate_AutoFixAppendsOneDisclaimer(t *testing.T) {
	v := New(Config{}, nil, nil)
	plan := testPlan("Slektforskning Pro")
	plan.Guards.Compliance = []string{"gambling"}

	text := strings.Replace(cleanArticle, "Spela ansvarsfullt. ", "", 1)
	plan.WordCount = article.Parse(text).WordCount + 11 // disclaimer words land inside tolerance

	res, err := v.Validate(context.Background(), Request{ArticleText: text, AutoFix: true}, plan)
	if err != nil {
		t.Fatal(err)
	}

	if len(res.AutoFixes) != 1 {
		t.Fatalf("auto fixes = %+v, want exactly one", res.AutoFixes)
	}
	if fix := res.AutoFixes[0]; fix.Type != "add_disclaimer" || !fix.Applied {
		t.Errorf("fix = %+v", fix)
	}
	if res.Breakdown[CategoryCompliance] != 100 {
		t.Errorf("compliance after fix = %v, want 100", res.Breakdown[CategoryCompliance])
	}
	if hasCode(res.Issues, "MISSING_GAMBLING_DISCLAIMER") {
		t.Error("rescored result should not carry the fixed issue")
	}
}

func TestValidate_AutoFixAtMostOnce(t *testing.T) {
	v := New(Config{}, nil, nil)
	plan := testPlan("Slektforskning Pro")
	plan.Guards.Compliance = []string{"gambling", "health"}

	text := strings.Replace(cleanArticle, "Spela ansvarsfullt. ", "", 1)
	plan.WordCount = article.Parse(text).WordCount + 11

	res, err := v.Validate(context.Background(), Request{ArticleText: text, AutoFix: true}, plan)
	if err != nil {
		t.Fatal(err)
	}

	applied := 0
	for _, fix := range res.AutoFixes {
		if fix.Applied {
			applied++
		}
	}
	if applied != 1 {
		t.Fatalf("applied fixes = %d, want exactly 1 (fixes: %+v)", applied, res.AutoFixes)
	}
	// The health disclaimer has no fix rule; its issue must survive the
	// single rescore.
	if !hasCode(res.Issues, "MISSING_HEALTH_DISCLAIMER") {
		t.Error("unfixable issue should remain after the single fix pass")
	}
	if res.Breakdown[CategoryCompliance] != 0 {
		t.Errorf("compliance = %v, want 0", res.Breakdown[CategoryCompliance])
	}
}

func TestValidate_AutoFixDisabledChangesNothing(t *testing.T) {
	v := New(Config{}, nil, nil)
	plan := testPlan("Slektforskning Pro")
	plan.Guards.Compliance = []string{"gambling"}

	text := strings.Replace(cleanArticle, "Spela ansvarsfullt. ", "", 1)

	res, err := v.Validate(context.Background(), Request{ArticleText: text}, plan)
	if err != nil {
		t.Fatal(err)
	}
	if len(res.AutoFixes) != 0 {
		t.Errorf("auto fixes = %+v, want none", res.AutoFixes)
	}
	if res.Breakdown[CategoryCompliance] != 0 {
		t.Errorf("compliance = %v, want 0", res.Breakdown[CategoryCompliance])
	}
}

func TestValidate_NoOpFixIsLoggedNotApplied(t *testing.T) {
	v := New(Config{}, nil, nil)
	plan := testPlan("X")
	plan.LSIWindow.Policy.Min = 6

	res, err := v.Validate(context.Background(), Request{
		ArticleText: "## A\n\nBesök [[X]] idag.\n\n## B\n\np\n\n## C\n\np",
		AutoFix:     true,
	}, plan)
	if err != nil {
		t.Fatal(err)
	}

	if len(res.AutoFixes) != 1 {
		t.Fatalf("auto fixes = %+v", res.AutoFixes)
	}
	if fix := res.AutoFixes[0]; fix.Type != "inject_lsi" || fix.Applied {
		t.Errorf("fix = %+v, want unapplied inject_lsi", fix)
	}
	if !hasCode(res.Issues, CodeInsufficientLSITerms) {
		t.Error("no-op fix must leave the issue in place")
	}
}

func TestStatusBoundaries(t *testing.T) {
	v := New(Config{}, nil, nil)

	cases := []struct {
		score float64
		want  Status
	}{
		{85.0, StatusApproved},
		{84.9, StatusLightEdits},
		{70.0, StatusLightEdits},
		{69.9, StatusBlocked},
	}
	for _, tc := range cases {
		if got := v.status(tc.score); got != tc.want {
			t.Errorf("status(%v) = %v, want %v", tc.score, got, tc.want)
		}
	}
}

func TestWeightsSumToOne(t *testing.T) {
	sum := 0.0
	for _, w := range weights {
		sum += w
	}
	if sum < 0.9999 || sum > 1.0001 {
		t.Errorf("weights sum = %v, want 1.0", sum)
	}
	if len(weights) != len(categoryOrder) {
		t.Errorf("weights cover %d categories, order lists %d", len(weights), len(categoryOrder))
	}
}

func TestRecommendations(t *testing.T) {
	scores := map[string]float64{
		CategoryPreflight:  100,
		CategoryDraft:      100,
		CategoryAnchor:     0,
		CategoryTrust:      40,
		CategoryLSI:        60,
		CategoryFit:        90,
		CategoryCompliance: 100,
	}
	got := recommendations(scores)
	want := []string{
		categoryHints[CategoryAnchor],
		categoryHints[CategoryTrust],
		categoryHints[CategoryLSI],
	}
	if len(got) != len(want) {
		t.Fatalf("recommendations = %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("recommendation[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestRecommendations_HealthyScoresGiveNone(t *testing.T) {
	scores := map[string]float64{
		CategoryPreflight:  100,
		CategoryDraft:      100,
		CategoryAnchor:     100,
		CategoryTrust:      100,
		CategoryLSI:        100,
		CategoryFit:        90,
		CategoryCompliance: 100,
	}
	if got := recommendations(scores); len(got) != 0 {
		t.Errorf("recommendations = %v, want none", got)
	}
}

func TestNextActionsBlocked(t *testing.T) {
	issues := []Issue{
		{Code: CodeAnchorNotFound},
		{Code: CodeMissingTrustSignals},
	}
	got := nextActions(StatusBlocked, issues)

	if got[0] != "Address critical issues" {
		t.Errorf("first action = %q", got[0])
	}
	if got[len(got)-1] != "Request human review if needed" {
		t.Errorf("last action = %q", got[len(got)-1])
	}
	joined := strings.Join(got, "|")
	if !strings.Contains(joined, "Add target anchor link to article") ||
		!strings.Contains(joined, "Add references to credible sources") {
		t.Errorf("actions = %v", got)
	}
}

func TestHumanSignoff_LowScore(t *testing.T) {
	scores := map[string]float64{CategoryAnchor: 49}
	if !requiresHumanSignoff(nil, scores) {
		t.Error("score below 50 must require signoff")
	}
	scores[CategoryAnchor] = 50
	if requiresHumanSignoff(nil, scores) {
		t.Error("score of exactly 50 must not require signoff")
	}
}

type captureSink struct {
	orderRef string
	step     string
	status   string
	calls    int
}

func (c *captureSink) Record(_ context.Context, orderRef, step, status string, _ any) {
	c.orderRef = orderRef
	c.step = step
	c.status = status
	c.calls++
}

func TestValidate_AuditEventPerVerdict(t *testing.T) {
	t.Run("passing draft logs qc_passed", func(t *testing.T) {
		sink := &captureSink{}
		v := New(Config{}, nil, nil, WithAuditSink(sink))
		plan := testPlan("Slektforskning Pro")
		plan.WordCount = article.Parse(cleanArticle).WordCount

		if _, err := v.Validate(context.Background(), Request{ArticleText: cleanArticle}, plan); err != nil {
			t.Fatal(err)
		}
		if sink.calls != 1 || sink.step != "qc_passed" || sink.orderRef != "ord-0001" {
			t.Errorf("sink = %+v", sink)
		}
	})

	t.Run("blocked draft logs qc_failed", func(t *testing.T) {
		sink := &captureSink{}
		v := New(Config{}, nil, nil, WithAuditSink(sink))

		if _, err := v.Validate(context.Background(), Request{
			ArticleText: "## Buy [[X]] now\n\ntext",
		}, testPlan("X")); err != nil {
			t.Fatal(err)
		}
		if sink.calls != 1 || sink.step != "qc_failed" {
			t.Errorf("sink = %+v", sink)
		}
	})

	t.Run("no event without a plan", func(t *testing.T) {
		sink := &captureSink{}
		v := New(Config{}, nil, nil, WithAuditSink(sink))

		if _, err := v.Validate(context.Background(), Request{ArticleText: cleanArticle}, nil); err != nil {
			t.Fatal(err)
		}
		if sink.calls != 0 {
			t.Errorf("sink.calls = %d, want 0", sink.calls)
		}
	})
}
