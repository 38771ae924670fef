package model

// Example is one generated usage example. Lexical examples carry a
// sentence; kanji examples carry a compound word plus its reading.
type Example struct {
	Sentence      string `json:"sentence,omitempty"`
	Word          string `json:"word,omitempty"`
	Reading       string `json:"reading,omitempty"`
	TranslationCN string `json:"translation_cn"`
}

// Record is an enrichment record produced by the generator for one
// item. Implementations are tagged per domain; the checkpoint store
// decodes the variant matching its configured domain.
type Record interface {
	// PrimaryID is the normalized identity key the checkpoint replays on.
	PrimaryID() string
	// MergeInto overlays the generated fields onto an output record.
	// Authoritative source fields on out are left untouched.
	MergeInto(out *OutputRecord)
}

// LexicalRecord holds generated fields for a vocabulary item.
type LexicalRecord struct {
	Word          string    `json:"word"`
	TranslationCN string    `json:"translation_cn"`
	Phonetic      string    `json:"phonetic,omitempty"`
	PartOfSpeech  string    `json:"part_of_speech,omitempty"`
	Examples      []Example `json:"examples"`
	Provenance    string    `json:"provenance,omitempty"`
}

func (r LexicalRecord) PrimaryID() string { return NormalizeID(r.Word) }

func (r LexicalRecord) MergeInto(out *OutputRecord) {
	out.TranslationCN = r.TranslationCN
	out.Phonetic = r.Phonetic
	if out.PartOfSpeech == "" {
		out.PartOfSpeech = r.PartOfSpeech
	}
	out.Examples = r.Examples
}

// KanjiRecord holds generated fields for a kanji glyph.
type KanjiRecord struct {
	Kanji         string    `json:"kanji"`
	TranslationCN string    `json:"translation_cn"`
	Onyomi        string    `json:"onyomi,omitempty"`
	Kunyomi       string    `json:"kunyomi,omitempty"`
	Examples      []Example `json:"examples"`
	Provenance    string    `json:"provenance,omitempty"`
}

func (r KanjiRecord) PrimaryID() string { return NormalizeID(r.Kanji) }

func (r KanjiRecord) MergeInto(out *OutputRecord) {
	out.TranslationCN = r.TranslationCN
	out.Onyomi = r.Onyomi
	out.Kunyomi = r.Kunyomi
	out.Examples = r.Examples
}
