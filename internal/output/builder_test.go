package output

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lexikit/wordforge/internal/domain"
	"github.com/lexikit/wordforge/internal/model"
)

func cefrLevel() domain.Level {
	return domain.Level{
		Key: "cefr_a1", Exam: "cefr", Domain: model.DomainLexical,
		Name: "CEFR A1 基础词汇", Language: "en",
		Description: "欧洲语言共同参考框架 A1 级别词汇",
		IconName:    "school", Difficulty: 1, Sort: domain.SortByWord,
		LevelTag: "A1",
	}
}

func TestMerge_KeepsEveryItem(t *testing.T) {
	b := New(cefrLevel())
	items := []model.Item{{Display: "banana"}, {Display: "Apple"}}
	done := map[string]model.Record{
		"apple": model.LexicalRecord{
			Word: "Apple", TranslationCN: "苹果", Phonetic: "/ˈæpəl/",
			Examples: []model.Example{{Sentence: "An apple a day.", TranslationCN: "一天一苹果。"}},
		},
	}

	records := b.Merge(items, done)
	require.Len(t, records, 2)

	assert.Equal(t, "banana", records[0].Word)
	assert.Empty(t, records[0].TranslationCN)
	assert.NotNil(t, records[0].Examples)
	assert.Empty(t, records[0].Examples)

	assert.Equal(t, "苹果", records[1].TranslationCN)
	assert.Equal(t, "A1", records[1].CEFRLevel)
	assert.Equal(t, 1, records[1].DifficultyLevel)
}

func TestMerge_SourceTranslationsWin(t *testing.T) {
	b := New(domain.Level{Exam: "cet", Sort: domain.SortByWord})
	items := []model.Item{{
		Display:      "abandon",
		Translations: []string{"放弃", "抛弃"},
	}}
	done := map[string]model.Record{
		"abandon": model.LexicalRecord{Word: "abandon", TranslationCN: "生成的译文", Phonetic: "/əˈbændən/"},
	}

	records := b.Merge(items, done)
	require.Len(t, records, 1)
	assert.Equal(t, "放弃；抛弃", records[0].TranslationCN)
	assert.Equal(t, "/əˈbændən/", records[0].Phonetic)
}

func TestMerge_EnglishGlossFallback(t *testing.T) {
	b := New(domain.Level{Exam: "jlpt", LevelTag: "N5", Sort: domain.SortByReading})
	items := []model.Item{{Display: "食べる", Reading: "たべる", MeaningEN: "to eat"}}

	records := b.Merge(items, nil)
	require.Len(t, records, 1)
	assert.Equal(t, "to eat", records[0].TranslationCN)
	assert.Equal(t, "N5", records[0].JLPTLevel)
	assert.Empty(t, records[0].Examples)
}

func TestMerge_PhraseFallbackCapsAtTwo(t *testing.T) {
	b := New(domain.Level{Exam: "cet"})
	items := []model.Item{{
		Display: "ability",
		Phrases: []model.Phrase{
			{Text: "to the best of one's ability", TranslationCN: "尽某人最大努力"},
			{Text: ""},
			{Text: "ability to do", TranslationCN: "做某事的能力"},
			{Text: "a third phrase", TranslationCN: "第三个"},
		},
	}}

	records := b.Merge(items, nil)
	require.Len(t, records, 1)
	require.Len(t, records[0].Examples, 2)
	assert.Equal(t, "to the best of one's ability", records[0].Examples[0].Sentence)
	assert.Equal(t, "ability to do", records[0].Examples[1].Sentence)
}

func TestMerge_GeneratedExamplesBeatPhrases(t *testing.T) {
	b := New(domain.Level{Exam: "cet"})
	items := []model.Item{{
		Display: "ability",
		Phrases: []model.Phrase{{Text: "phrase", TranslationCN: "词组"}},
	}}
	done := map[string]model.Record{
		"ability": model.LexicalRecord{
			Word: "ability",
			Examples: []model.Example{
				{Sentence: "Generated one.", TranslationCN: "生成一。"},
			},
		},
	}

	records := b.Merge(items, done)
	require.Len(t, records[0].Examples, 1)
	assert.Equal(t, "Generated one.", records[0].Examples[0].Sentence)
}

func TestSort_ByWordCaseInsensitive(t *testing.T) {
	b := New(cefrLevel())
	records := []model.OutputRecord{{Word: "banana"}, {Word: "Apple"}, {Word: "cherry"}}

	b.Sort(records)
	assert.Equal(t, "Apple", records[0].Word)
	assert.Equal(t, "banana", records[1].Word)
	assert.Equal(t, "cherry", records[2].Word)
}

func TestSort_ByReading(t *testing.T) {
	b := New(domain.Level{Sort: domain.SortByReading})
	records := []model.OutputRecord{
		{Word: "食べる", Reading: "たべる"},
		{Word: "会う", Reading: "あう"},
	}

	b.Sort(records)
	assert.Equal(t, "あう", records[0].Reading)
}

func TestSort_ByFrequencyUnrankedLast(t *testing.T) {
	b := New(domain.Level{Sort: domain.SortByFrequency})
	records := []model.OutputRecord{
		{Word: "珍", Frequency: 0},
		{Word: "水", Frequency: 223},
		{Word: "日", Frequency: 1},
	}

	b.Sort(records)
	assert.Equal(t, "日", records[0].Word)
	assert.Equal(t, "水", records[1].Word)
	assert.Equal(t, "珍", records[2].Word)
}

func TestBuild_DescriptionCarriesCount(t *testing.T) {
	b := New(cefrLevel())
	list := b.Build([]model.Item{{Display: "a"}, {Display: "b"}}, nil)

	assert.Equal(t, "欧洲语言共同参考框架 A1 级别词汇 (2词)", list.Description)
	assert.Equal(t, "en", list.Language)
	assert.Equal(t, "school", list.IconName)
	assert.Len(t, list.Words, 2)
}

func TestBuild_KanjiCountSuffix(t *testing.T) {
	b := New(domain.Level{
		Exam: "jlpt_kanji", Name: "JLPT N5 漢字", Language: "ja",
		Description: "日本语能力测试 N5 级别汉字", CountSuffix: "字",
		Sort: domain.SortByFrequency,
	})
	list := b.Build([]model.Item{{Display: "水"}}, nil)
	assert.Equal(t, "日本语能力测试 N5 级别汉字 (1字)", list.Description)
}

func TestEmit_Deterministic(t *testing.T) {
	b := New(cefrLevel())
	items := []model.Item{{Display: "banana"}, {Display: "Apple"}}
	done := map[string]model.Record{
		"apple":  model.LexicalRecord{Word: "Apple", TranslationCN: "苹果"},
		"banana": model.LexicalRecord{Word: "banana", TranslationCN: "香蕉"},
	}

	var first, second bytes.Buffer
	require.NoError(t, Emit(&first, b.Build(items, done)))
	require.NoError(t, Emit(&second, b.Build(items, done)))
	assert.Equal(t, first.Bytes(), second.Bytes())

	// CJK text must land unescaped.
	assert.Contains(t, first.String(), "苹果")
}

func TestStats(t *testing.T) {
	records := []model.OutputRecord{
		{Word: "a", TranslationCN: "译", Phonetic: "/a/", Examples: []model.Example{{}, {}}},
		{Word: "b", TranslationCN: "译"},
		{Word: "c"},
	}

	stats := Stats(records)
	assert.Equal(t, 3, stats.TotalWords)
	assert.Equal(t, 2, stats.WithTranslation)
	assert.Equal(t, 1, stats.WithPhonetic)
	assert.Equal(t, 1, stats.WithExamples)
}
