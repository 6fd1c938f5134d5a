package quizgen

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// maxPromptRunes ограничивает объём текста статьи, уходящего в модель.
const maxPromptRunes = 12000

const quizPrompt = `You are a helpful assistant that creates factual quizzes from Wikipedia articles.
Generate 5-10 multiple-choice questions with four options (A-D), the correct answer,
a short explanation, and difficulty (easy, medium, hard). Also suggest 5 related Wikipedia topics.
Return ONLY valid JSON with keys: quiz (list of questions), related_topics (list of strings).
Each question object must have the keys: question, options (array of 4 strings), answer (the exact text of the correct option), difficulty, explanation.

Article content:
%s
`

// BuildPrompt собирает запрос к модели по тексту статьи.
func BuildPrompt(articleText string) string {
	return fmt.Sprintf(quizPrompt, clipRunes(strings.TrimSpace(articleText), maxPromptRunes))
}

// cleanJSON снимает markdown-ограждение ```json ... ``` вокруг ответа.
func cleanJSON(reply string) string {
	cleaned := strings.TrimSpace(reply)
	if strings.HasPrefix(cleaned, "```") {
		cleaned = strings.TrimPrefix(cleaned, "```json")
		cleaned = strings.TrimPrefix(cleaned, "```JSON")
		cleaned = strings.TrimPrefix(cleaned, "```")
		cleaned = strings.TrimSuffix(strings.TrimSpace(cleaned), "```")
	}
	return strings.TrimSpace(cleaned)
}

func clipRunes(text string, limit int) string {
	if limit <= 0 || utf8.RuneCountInString(text) <= limit {
		return text
	}
	return string([]rune(text)[:limit])
}
