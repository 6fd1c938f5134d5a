package api

import "wiki-quiz/internal/domain"

// QuestionResponse вопрос в ответе API.
type QuestionResponse struct {
	ID          int64    `json:"id"`
	Question    string   `json:"question"`
	Options     []string `json:"options"`
	Answer      string   `json:"answer"`
	Difficulty  string   `json:"difficulty"`
	Explanation string   `json:"explanation"`
}

// QuizResponse полная викторина. Имена полей совместимы с существующими клиентами.
type QuizResponse struct {
	ID            int64              `json:"id"`
	URL           string             `json:"url"`
	Title         string             `json:"title"`
	Summary       string             `json:"summary"`
	KeyEntities   domain.KeyEntities `json:"key_entities"`
	Sections      []string           `json:"sections"`
	Quiz          []QuestionResponse `json:"quiz"`
	RelatedTopics []string           `json:"related_topics"`
}

// QuizListItemResponse элемент списка викторин.
type QuizListItemResponse struct {
	ID      int64  `json:"id"`
	URL     string `json:"url"`
	Title   string `json:"title"`
	Summary string `json:"summary"`
}

// NewQuizResponse форматирует сохранённую викторину.
func NewQuizResponse(q domain.Quiz) QuizResponse {
	resp := QuizResponse{
		ID:            q.ID,
		URL:           q.URL,
		Title:         q.Title,
		Summary:       q.Summary,
		KeyEntities:   q.KeyEntities,
		Sections:      q.Sections,
		Quiz:          make([]QuestionResponse, 0, len(q.Questions)),
		RelatedTopics: q.TopicNames(),
	}
	if resp.KeyEntities == nil {
		resp.KeyEntities = domain.KeyEntities{}
	}
	if resp.Sections == nil {
		resp.Sections = []string{}
	}
	for _, question := range q.Questions {
		options := question.Options
		if options == nil {
			options = []string{}
		}
		resp.Quiz = append(resp.Quiz, QuestionResponse{
			ID:          question.ID,
			Question:    question.Question,
			Options:     options,
			Answer:      question.Answer,
			Difficulty:  question.Difficulty,
			Explanation: question.Explanation,
		})
	}
	return resp
}
