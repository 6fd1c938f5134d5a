package quizgen

import (
	"fmt"

	"wiki-quiz/internal/domain"
)

const (
	// MaxQuestions ограничивает число вопросов в викторине.
	MaxQuestions = 10
	// MaxRelatedTopics ограничивает число связанных тем.
	MaxRelatedTopics = 10

	overviewSection = "Overview"
	easyQuestions   = 3
)

// SourceFallback имя детерминированной стратегии в метриках и логах.
const SourceFallback = "fallback"

var (
	decoyOptions  = []string{"Irrelevant background", "Unrelated biography", "Completely different topic"}
	defaultTopics = []string{"Wikipedia", "History", "Science"}
)

// FallbackPayload строит викторину только из содержимого статьи, по вопросу
// на каждый из первых разделов. Одинаковая статья всегда даёт одинаковый результат.
func FallbackPayload(article domain.Article) domain.QuizPayload {
	sections := headN(article.Sections, MaxQuestions)
	if len(sections) == 0 {
		sections = []string{overviewSection}
	}
	questions := make([]domain.QuizQuestion, 0, len(sections))
	for idx, section := range sections {
		options := append([]string{fmt.Sprintf("Details about %s", section)}, decoyOptions...)
		difficulty := domain.DifficultyMedium
		if idx < easyQuestions {
			difficulty = domain.DifficultyEasy
		}
		questions = append(questions, domain.QuizQuestion{
			Question:    fmt.Sprintf("What is highlighted in the '%s' section of the article?", section),
			Options:     options,
			Answer:      options[0],
			Difficulty:  difficulty,
			Explanation: fmt.Sprintf("The section titled '%s' focuses on this topic.", section),
		})
	}
	return domain.QuizPayload{Questions: questions, RelatedTopics: FallbackTopics(article)}
}

// FallbackTopics берёт трёх первых людей и два первых раздела,
// а при пустом результате возвращает набор по умолчанию.
func FallbackTopics(article domain.Article) []string {
	topics := make([]string, 0, 5)
	topics = append(topics, headN(article.KeyEntities[domain.EntityPeople], 3)...)
	topics = append(topics, headN(article.Sections, 2)...)
	if len(topics) == 0 {
		topics = append(topics, defaultTopics...)
	}
	return headN(topics, MaxRelatedTopics)
}

func headN(values []string, n int) []string {
	if len(values) > n {
		return values[:n]
	}
	return values
}
