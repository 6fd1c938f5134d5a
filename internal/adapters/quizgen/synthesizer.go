package quizgen

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"wiki-quiz/internal/domain"
	"wiki-quiz/internal/infra/metrics"
)

// Synthesizer пробует основную стратегию и при любой её ошибке
// возвращает детерминированную викторину.
type Synthesizer struct {
	primary domain.QuizStrategy
	log     zerolog.Logger
}

// NewSynthesizer создаёт синтезатор. primary может быть nil, если модель не настроена.
func NewSynthesizer(primary domain.QuizStrategy, logger zerolog.Logger) *Synthesizer {
	return &Synthesizer{primary: primary, log: logger}
}

// Synthesize всегда возвращает викторину.
func (s *Synthesizer) Synthesize(ctx context.Context, article domain.Article) domain.QuizPayload {
	if s.primary != nil {
		payload, err := s.tryPrimary(ctx, article)
		if err == nil {
			metrics.IncSynthesis(s.primary.Name())
			return capPayload(payload)
		}
		s.log.Warn().Err(err).Str("url", article.URL).Str("strategy", s.primary.Name()).
			Msg("quizgen: backend failed, using fallback")
	}
	metrics.IncSynthesis(SourceFallback)
	return capPayload(FallbackPayload(article))
}

func (s *Synthesizer) tryPrimary(ctx context.Context, article domain.Article) (payload domain.QuizPayload, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("quizgen: panic in %s: %v", s.primary.Name(), r)
		}
	}()
	return s.primary.Generate(ctx, article)
}

func capPayload(p domain.QuizPayload) domain.QuizPayload {
	if len(p.Questions) > MaxQuestions {
		p.Questions = p.Questions[:MaxQuestions]
	}
	p.RelatedTopics = headN(p.RelatedTopics, MaxRelatedTopics)
	return p
}
