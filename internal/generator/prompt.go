package generator

import (
	"fmt"
	"strings"

	"github.com/lexikit/wordforge/internal/domain"
	"github.com/lexikit/wordforge/internal/model"
)

// Prompt builds the generation prompt for a batch of items. The shape
// of the requested JSON mirrors the record types the checkpoint stores,
// so responses decode without field mapping.
func Prompt(level domain.Level, items []model.Item) string {
	if level.Domain == model.DomainKanji {
		return kanjiPrompt(items)
	}
	if level.Exam == "jlpt" {
		return japanesePrompt(items)
	}
	return englishPrompt(items)
}

func englishPrompt(items []model.Item) string {
	return fmt.Sprintf(`Generate phonetics and example sentences for these English words: %s

For each word, provide:
1. IPA phonetic transcription (e.g., /əˈbændən/)
2. Two simple, practical example sentences with Chinese translations

Return a JSON array with this exact structure for each word:
[
  {
    "word": "example",
    "translation_cn": "例子",
    "phonetic": "/ɪɡˈzæmpəl/",
    "examples": [
      {"sentence": "This is an example sentence.", "translation_cn": "这是一个例句。"},
      {"sentence": "Can you give me an example?", "translation_cn": "你能给我一个例子吗？"}
    ]
  }
]

Requirements:
- Use standard IPA notation for phonetics
- Example sentences should be simple and suitable for English learners
- Chinese translations should be natural and accurate
- Each word MUST have exactly 2 examples
- Return ONLY the JSON array, no other text`, displayList(items))
}

func japanesePrompt(items []model.Item) string {
	pairs := make([]string, len(items))
	for i, it := range items {
		if it.Reading != "" && it.Reading != it.Display {
			pairs[i] = fmt.Sprintf("%s (%s)", it.Display, it.Reading)
		} else {
			pairs[i] = it.Display
		}
	}

	return fmt.Sprintf(`Generate Chinese translations and example sentences for these Japanese words: %s

For each word, provide:
1. A natural Chinese translation
2. Two simple, practical example sentences with kana readings and Chinese translations

Return a JSON array with this exact structure for each word:
[
  {
    "word": "食べる",
    "translation_cn": "吃",
    "examples": [
      {"sentence": "朝ごはんを食べる。", "reading": "あさごはんをたべる。", "translation_cn": "吃早饭。"},
      {"sentence": "何を食べますか。", "reading": "なにをたべますか。", "translation_cn": "你吃什么？"}
    ]
  }
]

Requirements:
- The "word" field must repeat the word exactly as given (without the reading in parentheses)
- Example sentences should be simple and suitable for Japanese learners
- Chinese translations should be natural and accurate
- Each word MUST have exactly 2 examples
- Return ONLY the JSON array, no other text`, strings.Join(pairs, ", "))
}

func kanjiPrompt(items []model.Item) string {
	return fmt.Sprintf(`Generate readings, Chinese meanings, and example words for these kanji: %s

For each kanji, provide:
1. A concise Chinese translation of its core meaning
2. Its on'yomi readings in katakana and kun'yomi readings in hiragana
3. Two common compound words using the kanji, each with kana reading and Chinese translation

Return a JSON array with this exact structure for each kanji:
[
  {
    "kanji": "水",
    "translation_cn": "水",
    "onyomi": "スイ",
    "kunyomi": "みず",
    "examples": [
      {"word": "水曜日", "reading": "すいようび", "translation_cn": "星期三"},
      {"word": "水泳", "reading": "すいえい", "translation_cn": "游泳"}
    ]
  }
]

Requirements:
- Separate multiple readings with "、"
- Leave "onyomi" or "kunyomi" empty if the kanji has none in common use
- Example words should be common and suitable for learners
- Each kanji MUST have exactly 2 example words
- Return ONLY the JSON array, no other text`, displayList(items))
}

func displayList(items []model.Item) string {
	words := make([]string, len(items))
	for i, it := range items {
		words[i] = it.Display
	}
	return strings.Join(words, ", ")
}
