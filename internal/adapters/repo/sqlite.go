package repo

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	"wiki-quiz/internal/domain"
	"wiki-quiz/internal/infra/metrics"
)

type quizRow struct {
	ID            int64  `gorm:"primaryKey"`
	URL           string `gorm:"uniqueIndex;not null"`
	Title         string `gorm:"not null"`
	Summary       string
	KeyEntities   string `gorm:"column:key_entities"`
	Sections      string
	CreatedAt     time.Time
	Questions     []questionRow `gorm:"foreignKey:QuizID;constraint:OnDelete:CASCADE"`
	RelatedTopics []topicRow    `gorm:"foreignKey:QuizID;constraint:OnDelete:CASCADE"`
}

func (quizRow) TableName() string { return "quizzes" }

type questionRow struct {
	ID          int64 `gorm:"primaryKey"`
	QuizID      int64 `gorm:"index;not null"`
	Position    int
	Question    string `gorm:"not null"`
	Options     string
	Answer      string
	Difficulty  string
	Explanation string
}

func (questionRow) TableName() string { return "questions" }

type topicRow struct {
	ID       int64 `gorm:"primaryKey"`
	QuizID   int64 `gorm:"index;not null"`
	Position int
	Topic    string `gorm:"not null"`
}

func (topicRow) TableName() string { return "related_topics" }

// SQLite реализует domain.QuizRepo через gorm. Используется по умолчанию,
// когда Postgres не настроен.
type SQLite struct {
	db *gorm.DB
}

var _ domain.QuizRepo = (*SQLite)(nil)

// NewSQLite создаёт хранилище и применяет схему.
func NewSQLite(db *gorm.DB) (*SQLite, error) {
	if err := db.AutoMigrate(&quizRow{}, &questionRow{}, &topicRow{}); err != nil {
		return nil, err
	}
	return &SQLite{db: db}, nil
}

func (s *SQLite) withQuiz(ctx context.Context) *gorm.DB {
	return s.db.WithContext(ctx).
		Preload("Questions", func(db *gorm.DB) *gorm.DB { return db.Order("position, id") }).
		Preload("RelatedTopics", func(db *gorm.DB) *gorm.DB { return db.Order("position, id") })
}

// FindByURL ищет викторину по URL.
func (s *SQLite) FindByURL(ctx context.Context, url string) (domain.Quiz, bool, error) {
	var row quizRow
	start := time.Now()
	err := s.withQuiz(ctx).Where("url = ?", url).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		metrics.ObserveNetworkRequest("sqlite", "quizzes_get_by_url", "quizzes", start, nil)
		return domain.Quiz{}, false, nil
	}
	metrics.ObserveNetworkRequest("sqlite", "quizzes_get_by_url", "quizzes", start, err)
	if err != nil {
		return domain.Quiz{}, false, err
	}
	quiz, err := row.toDomain()
	if err != nil {
		return domain.Quiz{}, false, err
	}
	return quiz, true, nil
}

// GetByID возвращает викторину с вопросами и темами.
func (s *SQLite) GetByID(ctx context.Context, id int64) (domain.Quiz, error) {
	var row quizRow
	start := time.Now()
	err := s.withQuiz(ctx).First(&row, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		metrics.ObserveNetworkRequest("sqlite", "quizzes_get_by_id", "quizzes", start, nil)
		return domain.Quiz{}, domain.ErrQuizNotFound
	}
	metrics.ObserveNetworkRequest("sqlite", "quizzes_get_by_id", "quizzes", start, err)
	if err != nil {
		return domain.Quiz{}, err
	}
	return row.toDomain()
}

// Insert сохраняет викторину вместе с вопросами и темами одной транзакцией.
func (s *SQLite) Insert(ctx context.Context, quiz domain.Quiz) (domain.Quiz, error) {
	row, err := fromDomain(quiz)
	if err != nil {
		return domain.Quiz{}, err
	}
	start := time.Now()
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(&row).Error
	})
	metrics.ObserveNetworkRequest("sqlite", "quizzes_insert", "quizzes", start, err)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.Quiz{}, domain.ErrQuizExists
		}
		return domain.Quiz{}, err
	}
	return row.toDomain()
}

// List возвращает краткий список викторин, новые первыми.
func (s *SQLite) List(ctx context.Context) ([]domain.QuizListItem, error) {
	var rows []quizRow
	start := time.Now()
	err := s.db.WithContext(ctx).Select("id", "url", "title", "summary").Order("id DESC").Find(&rows).Error
	metrics.ObserveNetworkRequest("sqlite", "quizzes_list", "quizzes", start, err)
	if err != nil {
		return nil, err
	}
	items := make([]domain.QuizListItem, 0, len(rows))
	for _, r := range rows {
		items = append(items, domain.QuizListItem{ID: r.ID, URL: r.URL, Title: r.Title, Summary: r.Summary})
	}
	return items, nil
}

func isUniqueViolation(err error) bool {
	return errors.Is(err, gorm.ErrDuplicatedKey) || strings.Contains(err.Error(), "UNIQUE constraint failed")
}

func fromDomain(q domain.Quiz) (quizRow, error) {
	entities, err := domain.EncodeKeyEntities(q.KeyEntities)
	if err != nil {
		return quizRow{}, err
	}
	sections, err := domain.EncodeStrings(q.Sections)
	if err != nil {
		return quizRow{}, err
	}
	row := quizRow{
		URL:         q.URL,
		Title:       q.Title,
		Summary:     q.Summary,
		KeyEntities: entities,
		Sections:    sections,
	}
	for i, question := range q.Questions {
		options, err := domain.EncodeStrings(question.Options)
		if err != nil {
			return quizRow{}, err
		}
		row.Questions = append(row.Questions, questionRow{
			Position:    i,
			Question:    question.Question,
			Options:     options,
			Answer:      question.Answer,
			Difficulty:  question.Difficulty,
			Explanation: question.Explanation,
		})
	}
	for i, topic := range q.RelatedTopics {
		row.RelatedTopics = append(row.RelatedTopics, topicRow{Position: i, Topic: topic.Topic})
	}
	return row, nil
}

func (r quizRow) toDomain() (domain.Quiz, error) {
	quiz := domain.Quiz{
		ID:        r.ID,
		URL:       r.URL,
		Title:     r.Title,
		Summary:   r.Summary,
		CreatedAt: r.CreatedAt,
	}
	var err error
	if quiz.KeyEntities, err = domain.DecodeKeyEntities(r.KeyEntities); err != nil {
		return domain.Quiz{}, err
	}
	if quiz.Sections, err = domain.DecodeStrings(r.Sections); err != nil {
		return domain.Quiz{}, err
	}
	quiz.Questions = make([]domain.Question, 0, len(r.Questions))
	for _, qr := range r.Questions {
		options, err := domain.DecodeStrings(qr.Options)
		if err != nil {
			return domain.Quiz{}, err
		}
		quiz.Questions = append(quiz.Questions, domain.Question{
			ID:          qr.ID,
			QuizID:      qr.QuizID,
			Question:    qr.Question,
			Options:     options,
			Answer:      qr.Answer,
			Difficulty:  qr.Difficulty,
			Explanation: qr.Explanation,
		})
	}
	quiz.RelatedTopics = make([]domain.RelatedTopic, 0, len(r.RelatedTopics))
	for _, tr := range r.RelatedTopics {
		quiz.RelatedTopics = append(quiz.RelatedTopics, domain.RelatedTopic{ID: tr.ID, QuizID: tr.QuizID, Topic: tr.Topic})
	}
	return normalizeQuiz(quiz), nil
}
