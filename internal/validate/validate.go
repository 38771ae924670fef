// Package validate checks enrichment records against a per-domain
// completeness schema. Issues are informational by default; the
// acceptance policy is an explicit configuration choice.
package validate

import (
	"fmt"

	"github.com/lexikit/wordforge/internal/model"
)

// Policy decides what happens to a record that has issues.
type Policy string

const (
	// PolicyWarn logs issues and accepts the record anyway. This is the
	// historical behavior: the pipeline keeps progressing under
	// imperfect generator output at the cost of persisting gaps.
	PolicyWarn Policy = "warn"
	// PolicyReject drops the record from the batch; the item stays
	// unenriched until a later run picks it up again.
	PolicyReject Policy = "reject"
	// PolicyRequeue drops the record and re-queues the item at the end
	// of the current run for one more attempt.
	PolicyRequeue Policy = "requeue"
)

// Valid reports whether p is a known policy.
func (p Policy) Valid() bool {
	switch p {
	case PolicyWarn, PolicyReject, PolicyRequeue:
		return true
	}
	return false
}

// Schema enumerates the generated fields a complete record must carry.
type Schema struct {
	// RequirePhonetic is set for English lexical lists, which expect an
	// IPA transcription. Japanese lists carry readings in source data.
	RequirePhonetic bool
	// MinExamples is the minimum number of usage examples.
	MinExamples int
}

// SchemaFor returns the completeness schema for an exam family.
func SchemaFor(exam string) Schema {
	s := Schema{MinExamples: 2}
	switch exam {
	case "cefr", "cet":
		s.RequirePhonetic = true
	}
	return s
}

// Validator applies a schema and an acceptance policy.
type Validator struct {
	schema Schema
	policy Policy
}

// New creates a validator. An unknown policy falls back to PolicyWarn.
func New(schema Schema, policy Policy) *Validator {
	if !policy.Valid() {
		policy = PolicyWarn
	}
	return &Validator{schema: schema, policy: policy}
}

// Policy returns the acceptance policy.
func (v *Validator) Policy() Policy { return v.policy }

// Accepts reports whether a record with the given issues should be
// persisted to the checkpoint.
func (v *Validator) Accepts(issues []string) bool {
	return len(issues) == 0 || v.policy == PolicyWarn
}

// Check returns one textual issue per missing or short field. An empty
// slice means the record is complete.
func (v *Validator) Check(rec model.Record) []string {
	switch r := rec.(type) {
	case model.LexicalRecord:
		return v.checkLexical(r)
	case model.KanjiRecord:
		return v.checkKanji(r)
	default:
		return []string{fmt.Sprintf("unknown record type %T", rec)}
	}
}

func (v *Validator) checkLexical(r model.LexicalRecord) []string {
	var issues []string
	word := r.Word
	if word == "" {
		word = "<unknown>"
		issues = append(issues, "missing 'word' field")
	}
	if r.TranslationCN == "" {
		issues = append(issues, fmt.Sprintf("missing 'translation_cn' for: %s", word))
	}
	if v.schema.RequirePhonetic && r.Phonetic == "" {
		issues = append(issues, fmt.Sprintf("missing 'phonetic' for: %s", word))
	}
	issues = append(issues, v.checkExampleCount(len(r.Examples), word)...)
	for i, ex := range r.Examples {
		if ex.Sentence == "" {
			issues = append(issues, fmt.Sprintf("example %d missing 'sentence' for: %s", i+1, word))
		}
		if ex.TranslationCN == "" {
			issues = append(issues, fmt.Sprintf("example %d missing 'translation_cn' for: %s", i+1, word))
		}
	}
	return issues
}

func (v *Validator) checkKanji(r model.KanjiRecord) []string {
	var issues []string
	kanji := r.Kanji
	if kanji == "" {
		kanji = "<unknown>"
		issues = append(issues, "missing 'kanji' field")
	}
	if r.TranslationCN == "" {
		issues = append(issues, fmt.Sprintf("missing 'translation_cn' for: %s", kanji))
	}
	issues = append(issues, v.checkExampleCount(len(r.Examples), kanji)...)
	for i, ex := range r.Examples {
		if ex.Word == "" {
			issues = append(issues, fmt.Sprintf("example %d missing 'word' for: %s", i+1, kanji))
		}
		if ex.Reading == "" {
			issues = append(issues, fmt.Sprintf("example %d missing 'reading' for: %s", i+1, kanji))
		}
		if ex.TranslationCN == "" {
			issues = append(issues, fmt.Sprintf("example %d missing 'translation_cn' for: %s", i+1, kanji))
		}
	}
	return issues
}

func (v *Validator) checkExampleCount(n int, id string) []string {
	switch {
	case n == 0:
		return []string{fmt.Sprintf("no examples for: %s", id)}
	case n < v.schema.MinExamples:
		return []string{fmt.Sprintf("less than %d examples for: %s (has %d)", v.schema.MinExamples, id, n)}
	}
	return nil
}
