package quiz

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"wiki-quiz/internal/domain"
	"wiki-quiz/internal/infra/metrics"
)

// Persister сохраняет викторину не более одного раза на URL.
type Persister struct {
	repo domain.QuizRepo
	log  zerolog.Logger
}

// NewPersister создаёт идемпотентный сохранитель.
func NewPersister(repo domain.QuizRepo, logger zerolog.Logger) *Persister {
	return &Persister{repo: repo, log: logger}
}

// Persist возвращает уже сохранённую запись для URL без изменений,
// иначе атомарно сохраняет новую. При проигранной гонке за уникальность
// перечитывает и возвращает запись победителя.
func (p *Persister) Persist(ctx context.Context, article domain.Article, payload domain.QuizPayload) (domain.Quiz, error) {
	existing, ok, err := p.repo.FindByURL(ctx, article.URL)
	if err != nil {
		return domain.Quiz{}, &domain.PersistError{URL: article.URL, Err: err}
	}
	if ok {
		return existing, nil
	}

	saved, err := p.repo.Insert(ctx, domain.NewQuizFromArticle(article, payload))
	if err == nil {
		return saved, nil
	}
	if !errors.Is(err, domain.ErrQuizExists) {
		return domain.Quiz{}, &domain.PersistError{URL: article.URL, Err: err}
	}

	metrics.IncPersistConflict()
	p.log.Info().Str("url", article.URL).Msg("quiz: concurrent insert won, returning stored record")
	winner, ok, err := p.repo.FindByURL(ctx, article.URL)
	if err != nil {
		return domain.Quiz{}, &domain.PersistError{URL: article.URL, Err: err}
	}
	if !ok {
		return domain.Quiz{}, &domain.PersistError{URL: article.URL, Err: domain.ErrQuizExists}
	}
	return winner, nil
}
