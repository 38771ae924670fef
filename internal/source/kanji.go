package source

import (
	"encoding/json"
	"io"
	"sort"

	"github.com/rotisserie/eris"

	"github.com/lexikit/wordforge/internal/model"
)

type kanjiEntry struct {
	Kanji     string `json:"kanji"`
	JLPT      string `json:"jlpt"`
	Strokes   int    `json:"strokes"`
	Frequency int    `json:"frequency"`
}

// LoadKanji reads the kanji dataset JSON and returns the glyphs tagged
// with levelTag, ordered most common first. Glyphs without a frequency
// rank sort last.
func LoadKanji(r io.Reader, levelTag string) ([]model.Item, error) {
	var entries []kanjiEntry
	if err := json.NewDecoder(r).Decode(&entries); err != nil {
		return nil, eris.Wrap(err, "source: decode kanji json")
	}

	var items []model.Item
	for _, e := range entries {
		if e.JLPT != levelTag || e.Kanji == "" {
			continue
		}
		items = append(items, model.Item{
			Display:   e.Kanji,
			Domain:    model.DomainKanji,
			Strokes:   e.Strokes,
			Frequency: e.Frequency,
		})
	}

	sort.SliceStable(items, func(i, j int) bool {
		return kanjiRank(items[i]) < kanjiRank(items[j])
	})
	return items, nil
}

func kanjiRank(it model.Item) int {
	if it.Frequency == 0 {
		return 9999
	}
	return it.Frequency
}
