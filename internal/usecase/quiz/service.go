package quiz

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"wiki-quiz/internal/domain"
	"wiki-quiz/internal/infra/metrics"
)

// persistTimeout ограничивает сохранение. Отсчёт идёт от конца синтеза,
// а не от дедлайна запроса.
const persistTimeout = 10 * time.Second

// Service реализует сценарий URL → сохранённая викторина.
type Service struct {
	fetcher     domain.Fetcher
	normalizer  domain.Normalizer
	synthesizer domain.QuizSynthesizer
	repo        domain.QuizRepo
	persister   *Persister
	locker      domain.URLLocker
	log         zerolog.Logger
}

var _ domain.QuizService = (*Service)(nil)

// NewService создаёт сервис. locker может быть nil: тогда единственной точкой
// сериализации остаётся уникальность URL в хранилище.
func NewService(fetcher domain.Fetcher, normalizer domain.Normalizer, synthesizer domain.QuizSynthesizer, repo domain.QuizRepo, locker domain.URLLocker, logger zerolog.Logger) *Service {
	return &Service{
		fetcher:     fetcher,
		normalizer:  normalizer,
		synthesizer: synthesizer,
		repo:        repo,
		persister:   NewPersister(repo, logger),
		locker:      locker,
		log:         logger,
	}
}

// ValidateURL проверяет, что адрес абсолютный http(s).
func ValidateURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	u, err := url.Parse(raw)
	if raw == "" || err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return "", domain.ErrInvalidURL
	}
	return raw, nil
}

// Generate возвращает викторину для URL. Для уже обработанного URL статья
// повторно не загружается и синтез не запускается.
func (s *Service) Generate(ctx context.Context, rawURL string) (domain.Quiz, error) {
	pageURL, err := ValidateURL(rawURL)
	if err != nil {
		return domain.Quiz{}, err
	}
	if quiz, ok, err := s.stored(ctx, pageURL); err != nil || ok {
		return quiz, err
	}

	if s.locker != nil {
		unlock, err := s.locker.Lock(ctx, pageURL)
		if err != nil {
			s.log.Warn().Err(err).Str("url", pageURL).Msg("quiz: lock failed, relying on unique constraint")
		} else {
			defer unlock()
			if quiz, ok, err := s.stored(ctx, pageURL); err != nil || ok {
				return quiz, err
			}
		}
	}

	start := time.Now()
	defer metrics.ObservePipeline(start)

	markup, err := s.fetcher.Fetch(ctx, pageURL)
	if err != nil {
		metrics.IncQuizRequest(metrics.OutcomeFetchError)
		var fetchErr *domain.FetchError
		if !errors.As(err, &fetchErr) {
			err = &domain.FetchError{URL: pageURL, Err: err}
		}
		s.log.Warn().Err(err).Str("url", pageURL).Msg("quiz: fetch failed")
		return domain.Quiz{}, err
	}

	article, err := s.normalizer.Normalize(pageURL, markup)
	if err != nil {
		metrics.IncQuizRequest(metrics.OutcomeParseError)
		var normErr *domain.NormalizeError
		if !errors.As(err, &normErr) {
			err = &domain.NormalizeError{URL: pageURL, Err: err}
		}
		return domain.Quiz{}, err
	}

	payload := s.synthesizer.Synthesize(ctx, article)

	persistCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), persistTimeout)
	defer cancel()
	saved, err := s.persister.Persist(persistCtx, article, payload)
	if err != nil {
		metrics.IncQuizRequest(metrics.OutcomePersistError)
		s.log.Error().Err(err).Str("url", pageURL).Msg("quiz: persist failed")
		return domain.Quiz{}, err
	}
	metrics.IncQuizRequest(metrics.OutcomeCreated)
	s.log.Info().Str("url", pageURL).Int64("quiz_id", saved.ID).Int("questions", len(saved.Questions)).
		Dur("took", time.Since(start)).Msg("quiz: generated")
	return saved, nil
}

func (s *Service) stored(ctx context.Context, pageURL string) (domain.Quiz, bool, error) {
	quiz, ok, err := s.repo.FindByURL(ctx, pageURL)
	if err != nil {
		metrics.IncQuizRequest(metrics.OutcomePersistError)
		return domain.Quiz{}, false, &domain.PersistError{URL: pageURL, Err: err}
	}
	if ok {
		metrics.IncQuizRequest(metrics.OutcomeExisting)
	}
	return quiz, ok, nil
}

// Get возвращает сохранённую викторину.
func (s *Service) Get(ctx context.Context, id int64) (domain.Quiz, error) {
	return s.repo.GetByID(ctx, id)
}

// List возвращает краткий список викторин.
func (s *Service) List(ctx context.Context) ([]domain.QuizListItem, error) {
	return s.repo.List(ctx)
}
