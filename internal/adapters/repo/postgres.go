package repo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"wiki-quiz/internal/domain"
	"wiki-quiz/internal/infra/metrics"
)

const uniqueViolation = "23505"

// Postgres реализует domain.QuizRepo на основе pgxpool.
type Postgres struct {
	pool *pgxpool.Pool
}

var _ domain.QuizRepo = (*Postgres)(nil)

// NewPostgres создаёт адаптер БД.
func NewPostgres(pool *pgxpool.Pool) *Postgres {
	return &Postgres{pool: pool}
}

func (p *Postgres) connCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	if _, ok := ctx.Deadline(); ok {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, 5*time.Second)
}

type queryer interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// FindByURL ищет викторину по URL.
func (p *Postgres) FindByURL(ctx context.Context, url string) (domain.Quiz, bool, error) {
	ctx, cancel := p.connCtx(ctx)
	defer cancel()

	quiz, err := p.loadQuiz(ctx, p.pool, "url", url)
	if errors.Is(err, domain.ErrQuizNotFound) {
		return domain.Quiz{}, false, nil
	}
	if err != nil {
		return domain.Quiz{}, false, err
	}
	return quiz, true, nil
}

// GetByID возвращает викторину с вопросами и темами.
func (p *Postgres) GetByID(ctx context.Context, id int64) (domain.Quiz, error) {
	ctx, cancel := p.connCtx(ctx)
	defer cancel()
	return p.loadQuiz(ctx, p.pool, "id", id)
}

func (p *Postgres) loadQuiz(ctx context.Context, q queryer, column string, value any) (domain.Quiz, error) {
	var (
		quiz     domain.Quiz
		entities string
		sections string
	)
	start := time.Now()
	err := q.QueryRow(ctx, `
SELECT id, url, title, summary, key_entities, sections, created_at
FROM quizzes WHERE `+column+`=$1
`, value).Scan(&quiz.ID, &quiz.URL, &quiz.Title, &quiz.Summary, &entities, &sections, &quiz.CreatedAt)
	metrics.ObserveNetworkRequest("postgres", "quizzes_get_by_"+column, "quizzes", start, err)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Quiz{}, domain.ErrQuizNotFound
	}
	if err != nil {
		return domain.Quiz{}, err
	}
	if quiz.KeyEntities, err = domain.DecodeKeyEntities(entities); err != nil {
		return domain.Quiz{}, fmt.Errorf("quiz %d: %w", quiz.ID, err)
	}
	if quiz.Sections, err = domain.DecodeStrings(sections); err != nil {
		return domain.Quiz{}, fmt.Errorf("quiz %d: %w", quiz.ID, err)
	}
	if quiz.Questions, err = p.loadQuestions(ctx, q, quiz.ID); err != nil {
		return domain.Quiz{}, err
	}
	if quiz.RelatedTopics, err = p.loadTopics(ctx, q, quiz.ID); err != nil {
		return domain.Quiz{}, err
	}
	return quiz, nil
}

func (p *Postgres) loadQuestions(ctx context.Context, q queryer, quizID int64) ([]domain.Question, error) {
	start := time.Now()
	rows, err := q.Query(ctx, `
SELECT id, question, options, answer, difficulty, explanation
FROM questions WHERE quiz_id=$1 ORDER BY position, id
`, quizID)
	metrics.ObserveNetworkRequest("postgres", "questions_list", "questions", start, err)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	questions := make([]domain.Question, 0)
	for rows.Next() {
		var (
			question domain.Question
			options  string
		)
		if err := rows.Scan(&question.ID, &question.Question, &options, &question.Answer, &question.Difficulty, &question.Explanation); err != nil {
			return nil, err
		}
		if question.Options, err = domain.DecodeStrings(options); err != nil {
			return nil, fmt.Errorf("question %d: %w", question.ID, err)
		}
		question.QuizID = quizID
		questions = append(questions, question)
	}
	return questions, rows.Err()
}

func (p *Postgres) loadTopics(ctx context.Context, q queryer, quizID int64) ([]domain.RelatedTopic, error) {
	start := time.Now()
	rows, err := q.Query(ctx, `
SELECT id, topic FROM related_topics WHERE quiz_id=$1 ORDER BY position, id
`, quizID)
	metrics.ObserveNetworkRequest("postgres", "related_topics_list", "related_topics", start, err)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	topics := make([]domain.RelatedTopic, 0)
	for rows.Next() {
		topic := domain.RelatedTopic{QuizID: quizID}
		if err := rows.Scan(&topic.ID, &topic.Topic); err != nil {
			return nil, err
		}
		topics = append(topics, topic)
	}
	return topics, rows.Err()
}

// Insert сохраняет викторину, вопросы и темы в одной транзакции.
func (p *Postgres) Insert(ctx context.Context, quiz domain.Quiz) (domain.Quiz, error) {
	ctx, cancel := p.connCtx(ctx)
	defer cancel()

	quiz = normalizeQuiz(quiz)
	entities, err := domain.EncodeKeyEntities(quiz.KeyEntities)
	if err != nil {
		return domain.Quiz{}, err
	}
	sections, err := domain.EncodeStrings(quiz.Sections)
	if err != nil {
		return domain.Quiz{}, err
	}

	start := time.Now()
	tx, err := p.pool.BeginTx(ctx, pgx.TxOptions{})
	metrics.ObserveNetworkRequest("postgres", "begin_tx", "quizzes", start, err)
	if err != nil {
		return domain.Quiz{}, err
	}
	defer tx.Rollback(ctx)

	start = time.Now()
	err = tx.QueryRow(ctx, `
INSERT INTO quizzes (url, title, summary, key_entities, sections)
VALUES ($1, $2, $3, $4, $5)
RETURNING id, created_at
`, quiz.URL, quiz.Title, quiz.Summary, entities, sections).Scan(&quiz.ID, &quiz.CreatedAt)
	metrics.ObserveNetworkRequest("postgres", "quizzes_insert", "quizzes", start, err)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return domain.Quiz{}, domain.ErrQuizExists
		}
		return domain.Quiz{}, err
	}

	for i := range quiz.Questions {
		question := &quiz.Questions[i]
		options, err := domain.EncodeStrings(question.Options)
		if err != nil {
			return domain.Quiz{}, err
		}
		start = time.Now()
		err = tx.QueryRow(ctx, `
INSERT INTO questions (quiz_id, position, question, options, answer, difficulty, explanation)
VALUES ($1, $2, $3, $4, $5, $6, $7)
RETURNING id
`, quiz.ID, i, question.Question, options, question.Answer, question.Difficulty, question.Explanation).Scan(&question.ID)
		metrics.ObserveNetworkRequest("postgres", "questions_insert", "questions", start, err)
		if err != nil {
			return domain.Quiz{}, err
		}
		question.QuizID = quiz.ID
	}

	for i := range quiz.RelatedTopics {
		topic := &quiz.RelatedTopics[i]
		start = time.Now()
		err = tx.QueryRow(ctx, `
INSERT INTO related_topics (quiz_id, position, topic) VALUES ($1, $2, $3) RETURNING id
`, quiz.ID, i, topic.Topic).Scan(&topic.ID)
		metrics.ObserveNetworkRequest("postgres", "related_topics_insert", "related_topics", start, err)
		if err != nil {
			return domain.Quiz{}, err
		}
		topic.QuizID = quiz.ID
	}

	start = time.Now()
	err = tx.Commit(ctx)
	metrics.ObserveNetworkRequest("postgres", "commit", "quizzes", start, err)
	if err != nil {
		return domain.Quiz{}, err
	}
	return quiz, nil
}

// List возвращает краткий список викторин, новые первыми.
func (p *Postgres) List(ctx context.Context) ([]domain.QuizListItem, error) {
	ctx, cancel := p.connCtx(ctx)
	defer cancel()

	start := time.Now()
	rows, err := p.pool.Query(ctx, `SELECT id, url, title, summary FROM quizzes ORDER BY id DESC`)
	metrics.ObserveNetworkRequest("postgres", "quizzes_list", "quizzes", start, err)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]domain.QuizListItem, 0)
	for rows.Next() {
		var item domain.QuizListItem
		if err := rows.Scan(&item.ID, &item.URL, &item.Title, &item.Summary); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}
