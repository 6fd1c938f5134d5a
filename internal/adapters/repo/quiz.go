package repo

import (
	"slices"

	"wiki-quiz/internal/domain"
)

// normalizeQuiz приводит nil-срезы к пустым, чтобы результат Insert
// совпадал с тем, что потом вернёт чтение из БД. Карта сущностей и срезы
// вопросов и тем копируются: вызывающий может держать их в статье.
func normalizeQuiz(q domain.Quiz) domain.Quiz {
	entities := make(domain.KeyEntities, len(q.KeyEntities))
	for k, v := range q.KeyEntities {
		if v == nil {
			v = []string{}
		}
		entities[k] = v
	}
	q.KeyEntities = entities

	if q.Sections == nil {
		q.Sections = []string{}
	}
	q.Questions = slices.Clone(q.Questions)
	if q.Questions == nil {
		q.Questions = []domain.Question{}
	}
	for i := range q.Questions {
		if q.Questions[i].Options == nil {
			q.Questions[i].Options = []string{}
		}
	}
	q.RelatedTopics = slices.Clone(q.RelatedTopics)
	if q.RelatedTopics == nil {
		q.RelatedTopics = []domain.RelatedTopic{}
	}
	return q
}
