package domain

import "time"

// Категории сущностей в KeyEntities.
const (
	EntityPeople        = "people"
	EntityOrganizations = "organizations"
	EntityLocations     = "locations"
)

// Уровни сложности вопросов.
const (
	DifficultyEasy   = "easy"
	DifficultyMedium = "medium"
	DifficultyHard   = "hard"
)

// KeyEntities группирует найденные в статье сущности по категориям.
type KeyEntities map[string][]string

// NewKeyEntities создаёт набор с пустыми списками для всех категорий.
func NewKeyEntities() KeyEntities {
	return KeyEntities{
		EntityPeople:        []string{},
		EntityOrganizations: []string{},
		EntityLocations:     []string{},
	}
}

// Article это нормализованное представление загруженной страницы.
// Живёт только в рамках одного запроса.
type Article struct {
	URL         string
	Title       string
	Summary     string
	Sections    []string
	KeyEntities KeyEntities
	RawText     string
}

// QuizQuestion описывает вопрос с вариантами ответа до сохранения.
type QuizQuestion struct {
	Question    string   `json:"question"`
	Options     []string `json:"options"`
	Answer      string   `json:"answer"`
	Difficulty  string   `json:"difficulty"`
	Explanation string   `json:"explanation"`
}

// QuizPayload это результат синтеза: вопросы и связанные темы.
type QuizPayload struct {
	Questions     []QuizQuestion `json:"quiz"`
	RelatedTopics []string       `json:"related_topics"`
}

// Question это сохранённый вопрос викторины.
type Question struct {
	ID          int64
	QuizID      int64
	Question    string
	Options     []string
	Answer      string
	Difficulty  string
	Explanation string
}

// RelatedTopic это сохранённая связанная тема.
type RelatedTopic struct {
	ID     int64
	QuizID int64
	Topic  string
}

// Quiz это сохранённая викторина. URL уникален, вопросы и темы принадлежат викторине.
type Quiz struct {
	ID            int64
	URL           string
	Title         string
	Summary       string
	KeyEntities   KeyEntities
	Sections      []string
	Questions     []Question
	RelatedTopics []RelatedTopic
	CreatedAt     time.Time
}

// TopicNames возвращает названия связанных тем в исходном порядке.
func (q Quiz) TopicNames() []string {
	out := make([]string, 0, len(q.RelatedTopics))
	for _, t := range q.RelatedTopics {
		out = append(out, t.Topic)
	}
	return out
}

// QuizListItem это краткая запись для списка викторин.
type QuizListItem struct {
	ID      int64
	URL     string
	Title   string
	Summary string
}

// NewQuizFromArticle собирает несохранённую викторину из статьи и результата синтеза.
func NewQuizFromArticle(article Article, payload QuizPayload) Quiz {
	quiz := Quiz{
		URL:         article.URL,
		Title:       article.Title,
		Summary:     article.Summary,
		KeyEntities: article.KeyEntities,
		Sections:    article.Sections,
	}
	for _, q := range payload.Questions {
		quiz.Questions = append(quiz.Questions, Question{
			Question:    q.Question,
			Options:     q.Options,
			Answer:      q.Answer,
			Difficulty:  q.Difficulty,
			Explanation: q.Explanation,
		})
	}
	for _, topic := range payload.RelatedTopics {
		quiz.RelatedTopics = append(quiz.RelatedTopics, RelatedTopic{Topic: topic})
	}
	return quiz
}
