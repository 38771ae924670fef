package source

import (
	"encoding/json"
	"io"
	"sort"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/lexikit/wordforge/internal/model"
)

type cetTranslation struct {
	Translation string `json:"translation"`
	Type        string `json:"type"`
}

type cetPhrase struct {
	Phrase      string `json:"phrase"`
	Translation string `json:"translation"`
}

type cetEntry struct {
	Word         string           `json:"word"`
	Translations []cetTranslation `json:"translations"`
	Phrases      []cetPhrase      `json:"phrases"`
}

var cetPOSMap = map[string]string{
	"n":    "n.",
	"v":    "v.",
	"vt":   "vt.",
	"vi":   "vi.",
	"adj":  "adj.",
	"adv":  "adv.",
	"prep": "prep.",
	"conj": "conj.",
	"pron": "pron.",
	"int":  "int.",
	"art":  "art.",
	"num":  "num.",
}

var cetPOSOrder = []string{"n.", "v.", "vt.", "vi.", "adj.", "adv.", "prep.", "conj.", "pron."}

// LoadCET reads the CET-4 vocabulary JSON. Duplicate entries for the
// same word are merged: translations and phrases accumulate, the part
// of speech is derived from the translation types.
func LoadCET(r io.Reader) ([]model.Item, error) {
	var entries []cetEntry
	if err := json.NewDecoder(r).Decode(&entries); err != nil {
		return nil, eris.Wrap(err, "source: decode cet json")
	}

	type merged struct {
		word         string
		translations []cetTranslation
		phrases      []cetPhrase
	}
	byID := map[string]*merged{}
	var order []string

	for _, e := range entries {
		word := strings.TrimSpace(e.Word)
		if word == "" {
			continue
		}
		id := model.NormalizeID(word)
		m, ok := byID[id]
		if !ok {
			m = &merged{word: word}
			byID[id] = m
			order = append(order, id)
		}
		for _, tr := range e.Translations {
			if !containsTranslation(m.translations, tr) {
				m.translations = append(m.translations, tr)
			}
		}
		for _, ph := range e.Phrases {
			if !containsPhrase(m.phrases, ph) {
				m.phrases = append(m.phrases, ph)
			}
		}
	}

	items := make([]model.Item, 0, len(order))
	for _, id := range order {
		m := byID[id]
		items = append(items, model.Item{
			Display:      m.word,
			Domain:       model.DomainLexical,
			PartOfSpeech: cetPartOfSpeech(m.translations),
			Translations: translationTexts(m.translations),
			Phrases:      phrases(m.phrases),
		})
	}
	return items, nil
}

// translationTexts deduplicates the translation strings in first-seen
// order; the output builder joins them with "；".
func translationTexts(translations []cetTranslation) []string {
	var texts []string
	for _, tr := range translations {
		text := strings.TrimSpace(tr.Translation)
		if text != "" && !contains(texts, text) {
			texts = append(texts, text)
		}
	}
	return texts
}

func phrases(src []cetPhrase) []model.Phrase {
	out := make([]model.Phrase, 0, len(src))
	for _, p := range src {
		out = append(out, model.Phrase{Text: p.Phrase, TranslationCN: p.Translation})
	}
	return out
}

// cetPartOfSpeech normalizes translation type markers, splitting
// compounds like "n & v" into their parts.
func cetPartOfSpeech(translations []cetTranslation) string {
	var types []string
	for _, tr := range translations {
		pos := strings.ToLower(strings.TrimSpace(tr.Type))
		for _, part := range strings.Fields(strings.ReplaceAll(pos, "&", " ")) {
			norm, ok := cetPOSMap[part]
			if !ok {
				norm = part
				if !strings.HasSuffix(norm, ".") {
					norm += "."
				}
			}
			if !contains(types, norm) {
				types = append(types, norm)
			}
		}
	}
	sort.SliceStable(types, func(i, j int) bool {
		return cetPOSRank(types[i]) < cetPOSRank(types[j])
	})
	return strings.Join(types, "/")
}

func cetPOSRank(pos string) int {
	for i, p := range cetPOSOrder {
		if p == pos {
			return i
		}
	}
	return len(cetPOSOrder) + 100
}

func containsTranslation(list []cetTranslation, tr cetTranslation) bool {
	for _, v := range list {
		if v == tr {
			return true
		}
	}
	return false
}

func containsPhrase(list []cetPhrase, ph cetPhrase) bool {
	for _, v := range list {
		if v == ph {
			return true
		}
	}
	return false
}
