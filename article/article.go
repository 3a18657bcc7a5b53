// Package article turns raw article text into its structural parts:
// sections, paragraphs, sentences and link tokens.
//
// The input dialect is line-granular: a line starting with two or more '#'
// characters opens a section (header level = number of leading '#'), every
// other non-blank line is one paragraph of the current section. Sponsored
// links are bracket tokens of the form [[anchor text]].
//
// A Document is derived fresh from the text on every call and is never
// mutated afterwards.
package article

import (
	"regexp"
	"strings"
)

// Document is the parsed structure of one article.
type Document struct {
	Sections  []Section `json:"sections"`
	Links     []Link    `json:"links"`
	WordCount int       `json:"word_count"`
	FullText  string    `json:"-"`
}

// Section is a header-delimited block of paragraphs.
type Section struct {
	Level      int         `json:"level"`
	Title      string      `json:"title"`
	Paragraphs []Paragraph `json:"paragraphs"`
	Line       int         `json:"line_number"`
}

// Paragraph is a single non-blank line inside a section.
type Paragraph struct {
	Text      string   `json:"text"`
	Line      int      `json:"line_number"`
	HasLink   bool     `json:"has_link"`
	Sentences []string `json:"sentences"`
}

// Link is a [[...]] token with its character offsets in the full text.
type Link struct {
	Text  string `json:"text"`
	Start int    `json:"start"`
	End   int    `json:"end"`
}

var (
	linkPattern     = regexp.MustCompile(`\[\[(.*?)\]\]`)
	sentencePattern = regexp.MustCompile(`[.!?]+`)
	wordPattern     = regexp.MustCompile(`[\p{L}\p{N}_]+`)
)

// Parse builds a Document from raw article text.
func Parse(text string) *Document {
	doc := &Document{FullText: text}

	var current *Section
	for i, line := range strings.Split(text, "\n") {
		switch {
		case strings.HasPrefix(line, "##"):
			if current != nil {
				doc.Sections = append(doc.Sections, *current)
			}
			level := len(line) - len(strings.TrimLeft(line, "#"))
			current = &Section{
				Level: level,
				Title: strings.TrimSpace(strings.TrimLeft(line, "#")),
				Line:  i,
			}
		case strings.TrimSpace(line) != "" && current != nil:
			trimmed := strings.TrimSpace(line)
			current.Paragraphs = append(current.Paragraphs, Paragraph{
				Text:      trimmed,
				Line:      i,
				HasLink:   strings.Contains(line, "[[") && strings.Contains(line, "]]"),
				Sentences: SplitSentences(line),
			})
		}
	}
	if current != nil {
		doc.Sections = append(doc.Sections, *current)
	}

	for _, m := range linkPattern.FindAllStringSubmatchIndex(text, -1) {
		doc.Links = append(doc.Links, Link{
			Text:  text[m[2]:m[3]],
			Start: m[0],
			End:   m[1],
		})
	}

	doc.WordCount = len(wordPattern.FindAllString(text, -1))
	return doc
}

// SplitSentences splits text on runs of sentence terminators (.!?),
// trimming whitespace and dropping empty fragments. Good enough for the
// Swedish/English articles this service audits.
func SplitSentences(text string) []string {
	var out []string
	for _, s := range sentencePattern.Split(text, -1) {
		s = strings.TrimSpace(s)
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}

// FlatSentences returns every sentence of every paragraph in document order.
// The topical-term window rule indexes into this sequence.
func (d *Document) FlatSentences() []string {
	var out []string
	for _, sec := range d.Sections {
		for _, p := range sec.Paragraphs {
			out = append(out, p.Sentences...)
		}
	}
	return out
}

// HasLinkText reports whether any extracted link matches the given anchor
// text exactly.
func (d *Document) HasLinkText(anchor string) bool {
	for _, l := range d.Links {
		if l.Text == anchor {
			return true
		}
	}
	return false
}
