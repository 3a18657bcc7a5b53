// Package lexicon loads the rule tables that drive planning and scoring:
// stop words, intent triggers, topic gazetteer, midpoint concepts, topical
// term lists, trust fallbacks, citation patterns and compliance disclaimer
// phrases.
//
// The tables ship as embedded YAML so new languages or categories are a
// data change, not a code change. Swedish and English are encoded today.
package lexicon

import (
	"embed"
	"fmt"
	"regexp"

	"gopkg.in/yaml.v3"
)

//go:embed data/*.yaml
var dataFS embed.FS

// Intent is one search-intent trigger set.
type Intent struct {
	Name           string   `yaml:"name"`
	TopicKeywords  []string `yaml:"topic_keywords"`
	TargetKeywords []string `yaml:"target_keywords"`
}

// Cluster is a gazetteer topic cluster.
type Cluster struct {
	Name     string   `yaml:"name"`
	Triggers []string `yaml:"triggers"`
	Entities []string `yaml:"entities"`
}

// Concept is a candidate midpoint between publisher and target topics.
type Concept struct {
	Label     string   `yaml:"label"`
	Bridges   []string `yaml:"bridges"`
	Score     float64  `yaml:"score"`
	Rationale string   `yaml:"rationale"`
}

// TermSet maps trigger keywords to a topical-term list.
type TermSet struct {
	Triggers []string `yaml:"triggers"`
	Terms    []string `yaml:"terms"`
}

// TrustFallback is a built-in trust source used when the registry yields
// nothing for a topic.
type TrustFallback struct {
	Triggers  []string `yaml:"triggers"`
	Domain    string   `yaml:"domain"`
	Level     string   `yaml:"level"`
	Rationale string   `yaml:"rationale"`
}

// Tables holds every loaded rule table.
type Tables struct {
	Stopwords        map[string]bool
	Intents          []Intent
	Clusters         []Cluster
	Midpoints        []Concept
	MidpointFallback Concept
	TopicTerms       []TermSet
	TargetTerms      []TermSet
	GenericTerms     []string
	Expansions       map[string]map[string][]string // language → term → expansions

	TrustSentinel    string
	CitationPatterns []*regexp.Regexp
	TrustFallbacks   []TrustFallback
	DefaultFallback  TrustFallback
	Rationales       map[string]string
	DefaultRationale string

	Disclaimers  map[string][]string
	GamblingFix  string
	PromoPhrases []string

	ExactAnchorTerms []string
}

func load() (*Tables, error) {
	t := &Tables{Stopwords: map[string]bool{}}

	var sw struct {
		Stopwords []string `yaml:"stopwords"`
	}
	if err := read("data/stopwords.yaml", &sw); err != nil {
		return nil, err
	}
	for _, w := range sw.Stopwords {
		t.Stopwords[w] = true
	}

	var in struct {
		Intents []Intent `yaml:"intents"`
	}
	if err := read("data/intents.yaml", &in); err != nil {
		return nil, err
	}
	t.Intents = in.Intents

	var gz struct {
		Clusters []Cluster `yaml:"clusters"`
	}
	if err := read("data/gazetteer.yaml", &gz); err != nil {
		return nil, err
	}
	t.Clusters = gz.Clusters

	var mp struct {
		Concepts []Concept `yaml:"concepts"`
		Fallback Concept   `yaml:"fallback"`
	}
	if err := read("data/midpoints.yaml", &mp); err != nil {
		return nil, err
	}
	t.Midpoints = mp.Concepts
	t.MidpointFallback = mp.Fallback

	var tm struct {
		TopicTerms  []TermSet                      `yaml:"topic_terms"`
		TargetTerms []TermSet                      `yaml:"target_terms"`
		Generic     []string                       `yaml:"generic"`
		Expansions  map[string]map[string][]string `yaml:"expansions"`
	}
	if err := read("data/terms.yaml", &tm); err != nil {
		return nil, err
	}
	t.TopicTerms = tm.TopicTerms
	t.TargetTerms = tm.TargetTerms
	t.GenericTerms = tm.Generic
	t.Expansions = tm.Expansions

	var tr struct {
		Sentinel         string            `yaml:"sentinel"`
		CitationPatterns []string          `yaml:"citation_patterns"`
		Fallbacks        []TrustFallback   `yaml:"fallbacks"`
		DefaultFallback  TrustFallback     `yaml:"default_fallback"`
		Rationales       map[string]string `yaml:"rationales"`
		DefaultRationale string            `yaml:"default_rationale"`
	}
	if err := read("data/trust.yaml", &tr); err != nil {
		return nil, err
	}
	t.TrustSentinel = tr.Sentinel
	for _, p := range tr.CitationPatterns {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("lexicon: citation pattern %q: %w", p, err)
		}
		t.CitationPatterns = append(t.CitationPatterns, re)
	}
	t.TrustFallbacks = tr.Fallbacks
	t.DefaultFallback = tr.DefaultFallback
	t.Rationales = tr.Rationales
	t.DefaultRationale = tr.DefaultRationale

	var cp struct {
		Disclaimers  map[string][]string `yaml:"disclaimers"`
		GamblingFix  string              `yaml:"gambling_fix"`
		PromoPhrases []string            `yaml:"promo_phrases"`
	}
	if err := read("data/compliance.yaml", &cp); err != nil {
		return nil, err
	}
	t.Disclaimers = cp.Disclaimers
	t.GamblingFix = cp.GamblingFix
	t.PromoPhrases = cp.PromoPhrases

	var an struct {
		ExactTerms []string `yaml:"exact_terms"`
	}
	if err := read("data/anchor.yaml", &an); err != nil {
		return nil, err
	}
	t.ExactAnchorTerms = an.ExactTerms

	return t, nil
}

func read(path string, dst any) error {
	data, err := dataFS.ReadFile(path)
	if err != nil {
		return fmt.Errorf("lexicon: read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, dst); err != nil {
		return fmt.Errorf("lexicon: parse %s: %w", path, err)
	}
	return nil
}

var tables = func() *Tables {
	t, err := load()
	if err != nil {
		panic(err)
	}
	return t
}()

// Default returns the embedded rule tables. The returned value is shared
// and must be treated as read-only.
func Default() *Tables {
	return tables
}
