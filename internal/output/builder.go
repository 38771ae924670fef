// Package output assembles the final wordlist artifact: source items
// overlaid with checkpointed enrichment, deterministically sorted, and
// serialized as canonical JSON.
package output

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rotisserie/eris"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/lexikit/wordforge/internal/domain"
	"github.com/lexikit/wordforge/internal/model"
)

// Unranked kanji sort after every ranked one.
const unrankedFrequency = 9999

// Builder merges, sorts, and emits one level's artifact.
type Builder struct {
	level domain.Level
}

// New creates a builder for the level.
func New(level domain.Level) *Builder {
	return &Builder{level: level}
}

// Merge overlays enrichment records onto every source item. No item is
// dropped: an item without a checkpoint entry keeps empty enrichment
// fields. Per-field precedence:
//
//   - source translations (CET) always win over generated ones
//   - generated part-of-speech only fills a gap in the source
//   - an English gloss backfills a missing Chinese translation (JLPT)
//   - source phrases backfill missing examples, two at most (CET)
func (b *Builder) Merge(items []model.Item, done map[string]model.Record) []model.OutputRecord {
	records := make([]model.OutputRecord, 0, len(items))
	for _, it := range items {
		out := model.OutputRecord{
			Word:            it.Display,
			PartOfSpeech:    it.PartOfSpeech,
			Reading:         it.Reading,
			Strokes:         it.Strokes,
			Frequency:       it.Frequency,
			DifficultyLevel: b.level.Difficulty,
			Examples:        []model.Example{},
		}
		switch b.level.Exam {
		case "cefr":
			out.CEFRLevel = b.level.LevelTag
		case "jlpt", "jlpt_kanji":
			out.JLPTLevel = b.level.LevelTag
		}

		if rec, ok := done[it.ID()]; ok {
			rec.MergeInto(&out)
		}

		if len(it.Translations) > 0 {
			out.TranslationCN = strings.Join(it.Translations, "；")
		}
		if out.TranslationCN == "" && it.MeaningEN != "" {
			out.TranslationCN = it.MeaningEN
			out.Examples = nil
		}
		if len(out.Examples) == 0 && len(it.Phrases) > 0 {
			out.Examples = phraseExamples(it.Phrases)
		}
		if out.Examples == nil {
			out.Examples = []model.Example{}
		}

		records = append(records, out)
	}
	return records
}

func phraseExamples(phrases []model.Phrase) []model.Example {
	examples := make([]model.Example, 0, 2)
	for _, p := range phrases {
		if p.Text == "" {
			continue
		}
		examples = append(examples, model.Example{Sentence: p.Text, TranslationCN: p.TranslationCN})
		if len(examples) == 2 {
			break
		}
	}
	return examples
}

// Sort orders records per the level's sort mode. The sort is stable, so
// equal keys keep source order and repeated builds are byte-identical.
func (b *Builder) Sort(records []model.OutputRecord) {
	switch b.level.Sort {
	case domain.SortByReading:
		c := collate.New(language.Japanese)
		sort.SliceStable(records, func(i, j int) bool {
			return c.CompareString(records[i].Reading, records[j].Reading) < 0
		})
	case domain.SortByFrequency:
		sort.SliceStable(records, func(i, j int) bool {
			return frequencyRank(records[i]) < frequencyRank(records[j])
		})
	default:
		c := collate.New(language.English, collate.IgnoreCase)
		sort.SliceStable(records, func(i, j int) bool {
			return c.CompareString(records[i].Word, records[j].Word) < 0
		})
	}
}

func frequencyRank(r model.OutputRecord) int {
	if r.Frequency == 0 {
		return unrankedFrequency
	}
	return r.Frequency
}

// Build merges, sorts, and wraps the records into the artifact. The
// description carries the final count with the level's counter suffix.
func (b *Builder) Build(items []model.Item, done map[string]model.Record) model.Wordlist {
	records := b.Merge(items, done)
	b.Sort(records)

	suffix := b.level.CountSuffix
	if suffix == "" {
		suffix = "词"
	}
	return model.Wordlist{
		Name:        b.level.Name,
		Language:    b.level.Language,
		Description: fmt.Sprintf("%s (%d%s)", b.level.Description, len(records), suffix),
		IconName:    b.level.IconName,
		Words:       records,
	}
}

// Emit serializes the artifact. Output is two-space indented with HTML
// escaping off, so CJK text and phonetics stay readable in diffs.
func Emit(w io.Writer, list model.Wordlist) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(list); err != nil {
		return eris.Wrap(err, "output: encode artifact")
	}
	return nil
}

// WriteFile emits the artifact to path, creating parent directories.
func WriteFile(path string, list model.Wordlist) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return eris.Wrap(err, "output: create output dir")
	}
	var buf bytes.Buffer
	if err := Emit(&buf, list); err != nil {
		return err
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return eris.Wrap(err, "output: write artifact")
	}
	return nil
}

// Stats summarizes enrichment coverage of the merged records.
func Stats(records []model.OutputRecord) model.RunStats {
	stats := model.RunStats{TotalWords: len(records)}
	for _, r := range records {
		if r.TranslationCN != "" {
			stats.WithTranslation++
		}
		if r.Phonetic != "" {
			stats.WithPhonetic++
		}
		if len(r.Examples) >= 2 {
			stats.WithExamples++
		}
	}
	return stats
}
