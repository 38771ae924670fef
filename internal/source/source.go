// Package source loads the canonical item lists the pipeline enriches.
// Each exam family ships in a different upstream format; loaders
// normalize them into model.Item and deduplicate case-insensitively.
package source

import (
	"os"
	"path/filepath"

	"github.com/rotisserie/eris"

	"github.com/lexikit/wordforge/internal/domain"
	"github.com/lexikit/wordforge/internal/model"
)

// ErrSourceUnavailable is fatal: a run cannot start without its source
// dataset.
var ErrSourceUnavailable = eris.New("source: dataset unavailable")

// Loader produces the item list for a level.
type Loader interface {
	Load(level domain.Level) ([]model.Item, error)
}

// Dir loads sources from a local data directory laid out as:
//
//	cefr/cefr-j.csv     A1–B2 vocabulary
//	cefr/octanove.csv   C1–C2 vocabulary
//	jlpt/all.csv        JLPT vocabulary, tag-filtered per level
//	kanji/jlpt-kanji.json
//	cet/cet4.json
type Dir struct {
	root string
}

// NewDir creates a loader rooted at the data directory.
func NewDir(root string) *Dir {
	return &Dir{root: root}
}

// Path returns the dataset file for the level.
func (d *Dir) Path(level domain.Level) string {
	switch level.Exam {
	case "cefr":
		if level.LevelTag == "C1" || level.LevelTag == "C2" {
			return filepath.Join(d.root, "cefr", "octanove.csv")
		}
		return filepath.Join(d.root, "cefr", "cefr-j.csv")
	case "jlpt":
		return filepath.Join(d.root, "jlpt", "all.csv")
	case "jlpt_kanji":
		return filepath.Join(d.root, "kanji", "jlpt-kanji.json")
	case "cet":
		return filepath.Join(d.root, "cet", "cet4.json")
	}
	return ""
}

// Load reads and normalizes the level's dataset.
func (d *Dir) Load(level domain.Level) ([]model.Item, error) {
	path := d.Path(level)
	if path == "" {
		return nil, eris.Wrapf(ErrSourceUnavailable, "no dataset for exam %q", level.Exam)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrapf(ErrSourceUnavailable, "%s: %v", path, err)
	}
	defer f.Close() //nolint:errcheck

	switch level.Exam {
	case "cefr":
		return LoadCEFR(f, level.LevelTag)
	case "jlpt":
		return LoadJLPT(f, level.LevelTags)
	case "jlpt_kanji":
		return LoadKanji(f, level.LevelTag)
	default:
		return LoadCET(f)
	}
}
