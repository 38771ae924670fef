package model

import "strings"

// Domain selects the record family a wordlist belongs to.
type Domain string

const (
	// DomainLexical covers vocabulary entries (CEFR, CET, JLPT words).
	DomainLexical Domain = "lexical"
	// DomainKanji covers kanji glyph entries.
	DomainKanji Domain = "kanji"
)

// Phrase is a source-provided collocation used as an example fallback
// when no generated examples exist for an item.
type Phrase struct {
	Text          string `json:"phrase"`
	TranslationCN string `json:"translation"`
}

// Item is the canonical unit to enrich. Items are produced by the
// source loaders, deduplicated by NormalizeID, and immutable for the
// duration of a run.
type Item struct {
	// Display is the form shown to learners: the headword for lexical
	// items, the glyph for kanji.
	Display string `json:"word"`
	Domain  Domain `json:"domain"`

	// Source-derived attributes. Which ones are set depends on the exam.
	PartOfSpeech string   `json:"part_of_speech,omitempty"`
	Reading      string   `json:"reading,omitempty"`
	MeaningEN    string   `json:"meaning_en,omitempty"`
	Translations []string `json:"translations,omitempty"`
	Phrases      []Phrase `json:"phrases,omitempty"`
	Strokes      int      `json:"strokes,omitempty"`
	Frequency    int      `json:"frequency,omitempty"`
}

// ID returns the normalized identity key for the item.
func (it Item) ID() string {
	return NormalizeID(it.Display)
}

// NormalizeID lowercases and trims an identifier so that checkpoint
// lookups and deduplication are case-insensitive.
func NormalizeID(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
