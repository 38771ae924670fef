package source

import (
	"io"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/lexikit/wordforge/internal/model"
)

// LoadJLPT reads the JLPT vocabulary CSV (expression,reading,meaning,
// tags columns) and returns the rows whose whitespace-separated tags
// intersect levelTags, deduplicated by expression in file order.
func LoadJLPT(r io.Reader, levelTags []string) ([]model.Item, error) {
	rows, header, err := readCSV(r)
	if err != nil {
		return nil, eris.Wrap(err, "source: read jlpt csv")
	}

	wanted := make(map[string]bool, len(levelTags))
	for _, t := range levelTags {
		wanted[t] = true
	}

	seen := map[string]bool{}
	var items []model.Item
	for _, row := range rows {
		expression := strings.TrimSpace(field(row, header, "expression"))
		reading := strings.TrimSpace(field(row, header, "reading"))
		meaning := strings.TrimSpace(field(row, header, "meaning"))
		if expression == "" || reading == "" {
			continue
		}

		matched := false
		for _, tag := range strings.Fields(field(row, header, "tags")) {
			if wanted[tag] {
				matched = true
				break
			}
		}
		if !matched {
			continue
		}

		id := model.NormalizeID(expression)
		if seen[id] {
			continue
		}
		seen[id] = true

		items = append(items, model.Item{
			Display:   expression,
			Domain:    model.DomainLexical,
			Reading:   reading,
			MeaningEN: meaning,
		})
	}
	return items, nil
}
