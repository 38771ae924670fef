package source

import (
	"encoding/csv"
	"io"
	"sort"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/lexikit/wordforge/internal/model"
)

var cefrPOSMap = map[string]string{
	"noun":         "n.",
	"verb":         "v.",
	"adjective":    "adj.",
	"adverb":       "adv.",
	"preposition":  "prep.",
	"conjunction":  "conj.",
	"pronoun":      "pron.",
	"interjection": "int.",
	"determiner":   "det.",
	"number":       "num.",
	"modal":        "modal",
	"auxiliary":    "aux.",
	"prefix":       "prefix",
	"suffix":       "suffix",
}

var posOrder = []string{"n.", "v.", "adj.", "adv.", "prep.", "conj.", "pron.", "det."}

func posRank(pos string) int {
	for i, p := range posOrder {
		if p == pos {
			return i
		}
	}
	return len(posOrder) + 100
}

// LoadCEFR reads a CEFR vocabulary CSV (headword,pos,CEFR columns) and
// returns the rows matching levelTag, deduplicated case-insensitively
// with part-of-speech lists merged. Multi-variant headwords like
// "a.m./A.M./am/AM" keep their first variant. Items come back sorted by
// lowercased headword.
func LoadCEFR(r io.Reader, levelTag string) ([]model.Item, error) {
	rows, header, err := readCSV(r)
	if err != nil {
		return nil, eris.Wrap(err, "source: read cefr csv")
	}

	type entry struct {
		word    string
		posList []string
	}
	byID := map[string]*entry{}
	var order []string

	for _, row := range rows {
		if field(row, header, "CEFR") != levelTag {
			continue
		}
		headword := strings.TrimSpace(field(row, header, "headword"))
		pos := strings.TrimSpace(field(row, header, "pos"))
		if headword == "" {
			continue
		}
		if i := strings.IndexByte(headword, '/'); i >= 0 {
			headword = strings.TrimSpace(headword[:i])
		}

		id := model.NormalizeID(headword)
		e, ok := byID[id]
		if !ok {
			e = &entry{word: headword}
			byID[id] = e
			order = append(order, id)
		}
		if pos != "" && !contains(e.posList, pos) {
			e.posList = append(e.posList, pos)
		}
	}

	items := make([]model.Item, 0, len(order))
	for _, id := range order {
		e := byID[id]
		items = append(items, model.Item{
			Display:      e.word,
			Domain:       model.DomainLexical,
			PartOfSpeech: normalizePOS(e.posList),
		})
	}
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].ID() < items[j].ID()
	})
	return items, nil
}

// normalizePOS maps full part-of-speech names to their abbreviations
// and joins them in conventional order.
func normalizePOS(posList []string) string {
	var normalized []string
	for _, pos := range posList {
		norm, ok := cefrPOSMap[strings.ToLower(pos)]
		if !ok {
			norm = pos
		}
		if norm != "" && !contains(normalized, norm) {
			normalized = append(normalized, norm)
		}
	}
	sort.SliceStable(normalized, func(i, j int) bool {
		return posRank(normalized[i]) < posRank(normalized[j])
	})
	return strings.Join(normalized, "/")
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// readCSV reads all rows and returns a header-name index. Rows shorter
// than the header are tolerated.
func readCSV(r io.Reader) ([][]string, map[string]int, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	all, err := cr.ReadAll()
	if err != nil {
		return nil, nil, err
	}
	if len(all) == 0 {
		return nil, map[string]int{}, nil
	}
	header := make(map[string]int, len(all[0]))
	for i, name := range all[0] {
		header[strings.TrimSpace(name)] = i
	}
	return all[1:], header, nil
}

func field(row []string, header map[string]int, name string) string {
	i, ok := header[name]
	if !ok || i >= len(row) {
		return ""
	}
	return row[i]
}
