package model

import "time"

// OutputRecord is the final merged entry written into a wordlist
// artifact: authoritative source fields overlaid with generated ones.
type OutputRecord struct {
	Word            string    `json:"word"`
	TranslationCN   string    `json:"translation_cn"`
	PartOfSpeech    string    `json:"part_of_speech,omitempty"`
	Phonetic        string    `json:"phonetic,omitempty"`
	Reading         string    `json:"reading,omitempty"`
	Onyomi          string    `json:"onyomi,omitempty"`
	Kunyomi         string    `json:"kunyomi,omitempty"`
	Strokes         int       `json:"strokes,omitempty"`
	Frequency       int       `json:"frequency,omitempty"`
	CEFRLevel       string    `json:"cefr_level,omitempty"`
	JLPTLevel       string    `json:"jlpt_level,omitempty"`
	DifficultyLevel int       `json:"difficulty_level"`
	Examples        []Example `json:"examples"`
}

// Wordlist is the output artifact consumed by the app.
type Wordlist struct {
	Name        string         `json:"name"`
	Language    string         `json:"language"`
	Description string         `json:"description"`
	IconName    string         `json:"icon_name"`
	Words       []OutputRecord `json:"words"`
}

// RunStatus tracks the lifecycle of a generation run.
type RunStatus string

const (
	RunStatusRunning  RunStatus = "running"
	RunStatusComplete RunStatus = "complete"
	RunStatusAborted  RunStatus = "aborted"
)

// RunStats summarizes enrichment coverage for one completed run.
type RunStats struct {
	TotalWords      int `json:"total_words"`
	WithTranslation int `json:"with_translation"`
	WithPhonetic    int `json:"with_phonetic,omitempty"`
	WithExamples    int `json:"with_examples"`
	BatchesDone     int `json:"batches_done"`
	GeneratorCalls  int `json:"generator_calls"`
}

// Run records one invocation of the pipeline for a level.
type Run struct {
	ID         string     `json:"id"`
	Level      string     `json:"level"`
	Domain     Domain     `json:"domain"`
	Status     RunStatus  `json:"status"`
	Stats      *RunStats  `json:"stats,omitempty"`
	StartedAt  time.Time  `json:"started_at"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
}
