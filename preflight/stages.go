package preflight

import (
	"context"
	"math"
	"net/url"
	"sort"
	"strings"
)

// extractQueryCluster strips stop words from the topic and keeps the first
// 2-4 remaining tokens longer than 2 characters. Short topics fall back to
// their first 3 raw words.
func (b *Builder) extractQueryCluster(topic string) []string {
	words := strings.Fields(strings.ToLower(topic))

	var filtered []string
	for _, w := range words {
		if !b.lex.Stopwords[w] && len([]rune(w)) > 2 {
			filtered = append(filtered, w)
		}
	}

	if len(filtered) >= 2 {
		if len(filtered) > 4 {
			filtered = filtered[:4]
		}
		return filtered
	}
	if len(words) > 3 {
		words = words[:3]
	}
	return words
}

// detectIntents matches intent triggers against the topic and target URL.
// Defaults to informational when nothing matches.
func (b *Builder) detectIntents(topic, targetURL string) []string {
	topicLower := strings.ToLower(topic)
	targetLower := strings.ToLower(targetURL)

	var intents []string
	for _, intent := range b.lex.Intents {
		matched := false
		for _, kw := range intent.TopicKeywords {
			if strings.Contains(topicLower, kw) {
				matched = true
				break
			}
		}
		if !matched {
			for _, kw := range intent.TargetKeywords {
				if strings.Contains(targetLower, kw) {
					matched = true
					break
				}
			}
		}
		if matched {
			intents = append(intents, intent.Name)
		}
	}

	if len(intents) == 0 {
		intents = []string{"informational"}
	}
	return intents
}

// extractEntities pulls entities from a domain name and its textual
// context: domain tokens longer than 3 characters plus gazetteer hits.
// Deduplicated in first-seen order and capped at 5.
func (b *Builder) extractEntities(domain, context string) []string {
	seen := map[string]bool{}
	var entities []string
	add := func(e string) {
		if !seen[e] {
			seen[e] = true
			entities = append(entities, e)
		}
	}

	for _, part := range domainTokens(domain) {
		if len([]rune(part)) > 3 {
			add(part)
		}
	}

	domainLower := strings.ToLower(domain)
	contextLower := strings.ToLower(context)
	for _, cluster := range b.lex.Clusters {
		for _, trigger := range cluster.Triggers {
			if strings.Contains(domainLower, trigger) || strings.Contains(contextLower, trigger) {
				for _, e := range cluster.Entities {
					add(e)
				}
				break
			}
		}
	}

	if len(entities) > 5 {
		entities = entities[:5]
	}
	return entities
}

// findMidpoints scores the bridging-concept table against both entity
// sets. A concept qualifies when either side matches a bridge keyword; the
// score is boosted when both sides do. Top 3 by score, with a synthetic
// low-confidence fallback when nothing qualifies.
func (b *Builder) findMidpoints(pubEntities, targetEntities []string) []Midpoint {
	pubJoined := strings.ToLower(strings.Join(pubEntities, " "))
	targetJoined := strings.ToLower(strings.Join(targetEntities, " "))

	var candidates []Midpoint
	for _, concept := range b.lex.Midpoints {
		pubMatch, targetMatch := false, false
		for _, bridge := range concept.Bridges {
			if strings.Contains(pubJoined, bridge) {
				pubMatch = true
			}
			if strings.Contains(targetJoined, bridge) {
				targetMatch = true
			}
		}
		if !pubMatch && !targetMatch {
			continue
		}

		score := concept.Score
		if pubMatch && targetMatch {
			score = math.Min(1.0, score*1.2)
		}
		candidates = append(candidates, Midpoint{
			Label:     concept.Label,
			Score:     math.Round(score*100) / 100,
			Rationale: concept.Rationale,
		})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Score > candidates[j].Score
	})

	if len(candidates) == 0 {
		fb := b.lex.MidpointFallback
		candidates = []Midpoint{{Label: fb.Label, Score: fb.Score, Rationale: fb.Rationale}}
	}
	if len(candidates) > 3 {
		candidates = candidates[:3]
	}
	return candidates
}

// planAnchor classifies the anchor text against the target domain's brand
// tokens and a small exact-match lexicon, synthesizes a backup variant, and
// draws the required paragraph position.
func (b *Builder) planAnchor(anchorText, targetURL string) AnchorPlan {
	host := targetURL
	if u, err := url.Parse(targetURL); err == nil && u.Host != "" {
		host = u.Host
	}
	brandTerms := domainTokens(host)

	anchorLower := strings.ToLower(anchorText)
	anchorType := "generic"
	switch {
	case containsString(brandTerms, anchorLower):
		anchorType = "brand"
	case anyTokenIn(brandTerms, anchorLower):
		anchorType = "partial"
	case len(strings.Fields(anchorLower)) == 1 && containsString(b.lex.ExactAnchorTerms, anchorLower):
		anchorType = "exact"
	}

	var backup string
	switch anchorType {
	case "exact":
		backup = anchorText + " online"
	case "brand":
		backup = "besök " + anchorText
	default:
		backup = strings.ReplaceAll(anchorText, " ", " och ")
	}

	return AnchorPlan{
		Type:    anchorType,
		Primary: anchorText,
		Backup:  backup,
		Placement: Placement{
			Section:   "mittpunkt",
			Paragraph: 1 + b.rng.Intn(3),
		},
	}
}

// generateTerms unions the topic-triggered and target-triggered term lists
// with the generic tail, deduplicates in first-seen order, then shuffles
// and truncates to a drawn count in [6,10].
func (b *Builder) generateTerms(topic, publicationDomain, targetURL string) []string {
	topicContext := strings.ToLower(topic + " " + publicationDomain)
	targetLower := strings.ToLower(targetURL)

	seen := map[string]bool{}
	var terms []string
	add := func(list []string) {
		for _, t := range list {
			if !seen[t] {
				seen[t] = true
				terms = append(terms, t)
			}
		}
	}

	for _, set := range b.lex.TopicTerms {
		for _, trigger := range set.Triggers {
			if strings.Contains(topicContext, trigger) {
				add(set.Terms)
				break
			}
		}
	}
	for _, set := range b.lex.TargetTerms {
		for _, trigger := range set.Triggers {
			if strings.Contains(targetLower, trigger) {
				add(set.Terms)
				break
			}
		}
	}
	// Expand matched terms through the entity-graph tables before the
	// generic tail fills out the pool. Languages in sorted order so the
	// pool order is stable for a given seed.
	langs := make([]string, 0, len(b.lex.Expansions))
	for lang := range b.lex.Expansions {
		langs = append(langs, lang)
	}
	sort.Strings(langs)
	matched := append([]string(nil), terms...)
	for _, lang := range langs {
		for _, t := range matched {
			add(b.lex.Expansions[lang][t])
		}
	}

	add(b.lex.GenericTerms)

	b.rng.Shuffle(len(terms), func(i, j int) {
		terms[i], terms[j] = terms[j], terms[i]
	})

	count := 6 + b.rng.Intn(5)
	if count > len(terms) {
		count = len(terms)
	}
	return terms[:count]
}

// selectTrustSources asks the registry for non-competitor T1/T2 sources and
// takes the top results. Registry failure or emptiness degrades to the
// built-in fallbacks; it never fails the build.
func (b *Builder) selectTrustSources(ctx context.Context, topic, publicationDomain string) []TrustSource {
	var sources []TrustSource

	if b.sources != nil {
		rows, err := b.sources.FindSources(ctx, []string{"T1", "T2"}, b.cfg.RegistryFetch)
		if err != nil {
			b.log.WarnContext(ctx, "trust source lookup failed, using fallbacks", "error", err)
		}
		for _, row := range rows {
			if len(sources) >= b.cfg.MaxTrustSources {
				break
			}
			sources = append(sources, TrustSource{
				Domain:    row.Domain,
				Level:     row.TrustLevel,
				Rationale: b.trustRationale(row.Pattern),
			})
		}
	}

	if len(sources) < 1 {
		sources = append(sources, b.fallbackTrustSource(topic, publicationDomain))
	}
	return sources
}

func (b *Builder) trustRationale(pattern string) string {
	if r, ok := b.lex.Rationales[pattern]; ok {
		return r
	}
	return b.lex.DefaultRationale
}

func (b *Builder) fallbackTrustSource(topic, publicationDomain string) TrustSource {
	topicLower := strings.ToLower(topic)
	domainLower := strings.ToLower(publicationDomain)

	for _, fb := range b.lex.TrustFallbacks {
		for _, trigger := range fb.Triggers {
			if strings.Contains(topicLower, trigger) || strings.Contains(domainLower, trigger) {
				return TrustSource{Domain: fb.Domain, Level: fb.Level, Rationale: fb.Rationale}
			}
		}
	}
	def := b.lex.DefaultFallback
	return TrustSource{Domain: def.Domain, Level: def.Level, Rationale: def.Rationale}
}

// domainTokens splits a domain name on dots and hyphens into lowercase
// tokens.
func domainTokens(domain string) []string {
	lower := strings.ToLower(domain)
	return strings.FieldsFunc(lower, func(r rune) bool {
		return r == '.' || r == '-'
	})
}

func containsString(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}

// anyTokenIn reports whether any token occurs as a substring of s.
func anyTokenIn(tokens []string, s string) bool {
	for _, t := range tokens {
		if strings.Contains(s, t) {
			return true
		}
	}
	return false
}
