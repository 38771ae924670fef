// Package checkpoint persists enrichment progress as an append-only
// JSONL log. Replaying the log yields a latest-wins mapping keyed by
// item identity, which is what makes interrupted runs resumable.
package checkpoint

import (
	"bufio"
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/lexikit/wordforge/internal/model"
)

// ErrStoreUnreadable marks a checkpoint log that exists but cannot be
// parsed. Callers must treat this as fatal: silently starting from an
// empty map would re-spend generator calls for already-enriched items.
var ErrStoreUnreadable = eris.New("checkpoint: store unreadable")

// maxLineBytes bounds a single checkpoint line. Generator batches top
// out well below this.
const maxLineBytes = 1 << 20

// Store is an append-only JSONL log of enrichment records for one
// level. The domain selects which record variant lines decode into.
type Store struct {
	path   string
	domain model.Domain
}

// New creates a store over the given log path. The file does not need
// to exist yet; a missing log loads as an empty map.
func New(path string, domain model.Domain) *Store {
	return &Store{path: path, domain: domain}
}

// Path returns the log file path.
func (s *Store) Path() string { return s.path }

// Load replays the log top-to-bottom and returns the latest record per
// identity key. Records with an empty key are skipped.
func (s *Store) Load() (map[string]model.Record, error) {
	f, err := os.Open(s.path)
	if os.IsNotExist(err) {
		return map[string]model.Record{}, nil
	}
	if err != nil {
		return nil, eris.Wrap(err, "checkpoint: open log")
	}
	defer f.Close() //nolint:errcheck

	records := make(map[string]model.Record)
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineBytes)

	line := 0
	for sc.Scan() {
		line++
		raw := bytes.TrimSpace(sc.Bytes())
		if len(raw) == 0 {
			continue
		}
		rec, err := s.decode(raw)
		if err != nil {
			return nil, eris.Wrapf(ErrStoreUnreadable, "%s line %d: %v", s.path, line, err)
		}
		if id := rec.PrimaryID(); id != "" {
			records[id] = rec
		}
	}
	if err := sc.Err(); err != nil {
		return nil, eris.Wrapf(ErrStoreUnreadable, "%s: %v", s.path, err)
	}

	zap.L().Debug("checkpoint loaded",
		zap.String("path", s.path),
		zap.Int("records", len(records)),
		zap.Int("lines", line),
	)
	return records, nil
}

// Append durably appends all records as one unit: the lines are
// buffered, written with a single write on an O_APPEND descriptor, and
// fsynced before returning. There is no in-place update; corrections
// are newer records for the same key.
func (s *Store) Append(records []model.Record) error {
	if len(records) == 0 {
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return eris.Wrap(err, "checkpoint: create dir")
	}

	var buf bytes.Buffer
	for _, rec := range records {
		line, err := json.Marshal(rec)
		if err != nil {
			return eris.Wrap(err, "checkpoint: marshal record")
		}
		buf.Write(line)
		buf.WriteByte('\n')
	}

	f, err := os.OpenFile(s.path, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o644)
	if err != nil {
		return eris.Wrap(err, "checkpoint: open log for append")
	}
	defer f.Close() //nolint:errcheck

	if _, err := f.Write(buf.Bytes()); err != nil {
		return eris.Wrap(err, "checkpoint: append batch")
	}
	if err := f.Sync(); err != nil {
		return eris.Wrap(err, "checkpoint: sync")
	}

	zap.L().Debug("checkpoint appended",
		zap.String("path", s.path),
		zap.Int("records", len(records)),
	)
	return nil
}

func (s *Store) decode(raw []byte) (model.Record, error) {
	switch s.domain {
	case model.DomainKanji:
		var rec model.KanjiRecord
		if err := json.Unmarshal(raw, &rec); err != nil {
			return nil, err
		}
		return rec, nil
	default:
		var rec model.LexicalRecord
		if err := json.Unmarshal(raw, &rec); err != nil {
			return nil, err
		}
		return rec, nil
	}
}
