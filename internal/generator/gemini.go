// Package generator turns a batch of wordlist items into enrichment
// records via a generative model, tolerating the imperfect JSON such
// models return.
package generator

import (
	"context"
	"encoding/json"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/lexikit/wordforge/internal/domain"
	"github.com/lexikit/wordforge/internal/model"
	"github.com/lexikit/wordforge/internal/repair"
	"github.com/lexikit/wordforge/pkg/gemini"
)

// ErrNoCredentials is returned by NewGemini when no API key is
// configured. Callers decide whether that is fatal or means running in
// merge-only mode.
var ErrNoCredentials = eris.New("generator: gemini API key not configured")

// Generator produces enrichment records for a batch of items.
type Generator interface {
	Generate(ctx context.Context, level domain.Level, items []model.Item) ([]model.Record, error)
}

// Gemini is a Generator backed by the Gemini generateContent API.
type Gemini struct {
	client gemini.Client
}

// Lower temperature for more consistent structured output.
const generationTemperature = 0.3

// NewGemini creates a Gemini-backed generator. The apiKey must be set;
// use it to make the no-credentials case an explicit decision at
// startup instead of a silent skip mid-run.
func NewGemini(apiKey string, opts ...gemini.Option) (*Gemini, error) {
	if apiKey == "" {
		return nil, ErrNoCredentials
	}
	return &Gemini{client: gemini.NewClient(apiKey, opts...)}, nil
}

// NewGeminiWithClient wraps an existing client, for tests.
func NewGeminiWithClient(client gemini.Client) *Gemini {
	return &Gemini{client: client}
}

// Generate requests enrichment for the batch and decodes the response
// into the level's record type. Elements that fail to decode and items
// absent from the response are logged and skipped; they remain pending
// in the checkpoint for a later run.
func (g *Gemini) Generate(ctx context.Context, level domain.Level, items []model.Item) ([]model.Record, error) {
	temp := generationTemperature
	req := gemini.GenerateRequest{
		Contents: []gemini.Content{
			{Role: "user", Parts: []gemini.Part{{Text: Prompt(level, items)}}},
		},
		GenerationConfig: &gemini.GenerationConfig{
			ResponseMIMEType: "application/json",
			Temperature:      &temp,
		},
	}

	resp, err := g.client.GenerateContent(ctx, req)
	if err != nil {
		return nil, eris.Wrap(err, "generator: generate content")
	}

	elems, err := repair.Parse(resp.Text())
	if err != nil {
		return nil, eris.Wrap(err, "generator: parse response")
	}

	records := decode(level, elems)
	warnMissing(level, items, records)
	return records, nil
}

func decode(level domain.Level, elems []json.RawMessage) []model.Record {
	records := make([]model.Record, 0, len(elems))
	for i, elem := range elems {
		var rec model.Record
		var err error
		switch level.Domain {
		case model.DomainKanji:
			var k model.KanjiRecord
			err = json.Unmarshal(elem, &k)
			rec = k
		default:
			var l model.LexicalRecord
			err = json.Unmarshal(elem, &l)
			rec = l
		}
		if err != nil || rec.PrimaryID() == "" {
			zap.L().Warn("skipping undecodable response element",
				zap.String("level", level.Key),
				zap.Int("index", i),
				zap.Error(err))
			continue
		}
		records = append(records, rec)
	}
	return records
}

func warnMissing(level domain.Level, items []model.Item, records []model.Record) {
	got := make(map[string]bool, len(records))
	for _, rec := range records {
		got[rec.PrimaryID()] = true
	}
	var missing []string
	for _, it := range items {
		if !got[it.ID()] {
			missing = append(missing, it.Display)
		}
	}
	if len(missing) > 0 {
		zap.L().Warn("response missing requested items",
			zap.String("level", level.Key),
			zap.Strings("missing", missing))
	}
}
