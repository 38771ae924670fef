// Package domain holds the catalog of wordlist levels and the
// per-domain knowledge (sort mode, batch sizing, output metadata) the
// pipeline is parameterized by.
package domain

import (
	_ "embed"
	"sync"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"

	"github.com/lexikit/wordforge/internal/model"
)

//go:embed levels.yaml
var levelsYAML []byte

// SortMode selects the total order of the final artifact.
type SortMode string

const (
	// SortByWord orders case-insensitively by headword.
	SortByWord SortMode = "word"
	// SortByReading orders by kana reading (JLPT vocabulary).
	SortByReading SortMode = "reading"
	// SortByFrequency orders most common first (kanji lists).
	SortByFrequency SortMode = "frequency"
)

// Level describes one generatable wordlist.
type Level struct {
	Key         string       `yaml:"key"`
	Exam        string       `yaml:"exam"`
	Domain      model.Domain `yaml:"domain"`
	Name        string       `yaml:"name"`
	Language    string       `yaml:"language"`
	Description string       `yaml:"description"`
	IconName    string       `yaml:"icon_name"`
	Output      string       `yaml:"output"`
	Checkpoint  string       `yaml:"checkpoint"`
	Difficulty  int          `yaml:"difficulty"`
	BatchSize   int          `yaml:"batch_size"`
	Sort        SortMode     `yaml:"sort"`
	LevelTag    string       `yaml:"level_tag"`
	LevelTags   []string     `yaml:"level_tags"`
	CountSuffix string       `yaml:"count_suffix"`
}

type catalogFile struct {
	Levels []Level `yaml:"levels"`
}

var (
	catalogOnce sync.Once
	catalog     []Level
	catalogErr  error
)

// Catalog returns all known levels in declaration order.
func Catalog() ([]Level, error) {
	catalogOnce.Do(func() {
		var f catalogFile
		if err := yaml.Unmarshal(levelsYAML, &f); err != nil {
			catalogErr = eris.Wrap(err, "domain: parse level catalog")
			return
		}
		catalog = f.Levels
	})
	return catalog, catalogErr
}

// Find returns the level with the given key.
func Find(key string) (Level, error) {
	levels, err := Catalog()
	if err != nil {
		return Level{}, err
	}
	for _, l := range levels {
		if l.Key == key {
			return l, nil
		}
	}
	return Level{}, eris.Errorf("domain: unknown level %q", key)
}

// Keys returns all level keys in catalog order.
func Keys() []string {
	levels, err := Catalog()
	if err != nil {
		return nil
	}
	keys := make([]string, len(levels))
	for i, l := range levels {
		keys[i] = l.Key
	}
	return keys
}
