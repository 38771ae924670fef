package validate

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/lexikit/wordforge/internal/model"
)

// Report summarizes the quality checks for one artifact file.
type Report struct {
	Path        string
	TotalWords  int
	UniqueWords int
	Duplicates  int
	Issues      []string
}

// Valid reports whether every check passed.
func (r Report) Valid() bool { return len(r.Issues) == 0 }

// CheckArtifact reads a wordlist artifact and checks its metadata and
// every entry against the schema. Duplicates are detected
// case-insensitively by headword.
func CheckArtifact(path string, schema Schema) (Report, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Report{}, eris.Wrap(err, "validate: read artifact")
	}
	var list model.Wordlist
	if err := json.Unmarshal(data, &list); err != nil {
		return Report{}, eris.Wrapf(err, "validate: parse artifact %s", path)
	}

	rep := Report{Path: path, TotalWords: len(list.Words)}
	if list.Name == "" {
		rep.Issues = append(rep.Issues, "missing 'name' field in metadata")
	}
	if list.Language == "" {
		rep.Issues = append(rep.Issues, "missing 'language' field in metadata")
	}

	seen := make(map[string]bool, len(list.Words))
	for i, w := range list.Words {
		ref := fmt.Sprintf("[%d]", i+1)

		lower := strings.ToLower(w.Word)
		if seen[lower] {
			rep.Issues = append(rep.Issues, fmt.Sprintf("%s duplicate: %s", ref, w.Word))
		}
		seen[lower] = true

		if w.Word == "" {
			rep.Issues = append(rep.Issues, ref+" missing 'word' field")
			continue
		}
		if w.TranslationCN == "" {
			rep.Issues = append(rep.Issues, fmt.Sprintf("%s missing translation_cn: %s", ref, w.Word))
		}
		if schema.RequirePhonetic && w.Phonetic == "" {
			rep.Issues = append(rep.Issues, fmt.Sprintf("%s missing phonetic: %s", ref, w.Word))
		}
		if w.Phonetic != "" && !strings.HasPrefix(w.Phonetic, "/") {
			rep.Issues = append(rep.Issues, fmt.Sprintf("%s invalid phonetic format for: %s (got: %s)", ref, w.Word, w.Phonetic))
		}
		if len(w.Examples) < schema.MinExamples {
			rep.Issues = append(rep.Issues, fmt.Sprintf("%s <%d examples: %s (has %d)", ref, schema.MinExamples, w.Word, len(w.Examples)))
		}
		for j, ex := range w.Examples {
			// Kanji examples carry a compound word instead of a sentence.
			if ex.Sentence == "" && ex.Word == "" {
				rep.Issues = append(rep.Issues, fmt.Sprintf("%s example %d missing 'sentence' for: %s", ref, j+1, w.Word))
			}
			if ex.TranslationCN == "" {
				rep.Issues = append(rep.Issues, fmt.Sprintf("%s example %d missing 'translation_cn' for: %s", ref, j+1, w.Word))
			}
		}
	}
	rep.UniqueWords = len(seen)
	rep.Duplicates = rep.TotalWords - rep.UniqueWords
	return rep, nil
}
