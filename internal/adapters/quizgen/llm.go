package quizgen

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"wiki-quiz/internal/domain"
)

const optionsPerQuestion = 4

var errNoQuizKey = errors.New("в ответе нет ключа quiz")

// LLM строит викторину через генеративную модель.
type LLM struct {
	backend domain.GenerativeBackend
	timeout time.Duration
}

// NewLLM создаёт стратегию поверх backend.
func NewLLM(backend domain.GenerativeBackend, timeout time.Duration) *LLM {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &LLM{backend: backend, timeout: timeout}
}

// Name возвращает имя модели, стоящей за стратегией.
func (l *LLM) Name() string {
	if l.backend == nil {
		return "llm"
	}
	return l.backend.Name()
}

type llmQuestion struct {
	Question    string   `json:"question"`
	Options     []string `json:"options"`
	Answer      string   `json:"answer"`
	Difficulty  string   `json:"difficulty"`
	Explanation string   `json:"explanation"`
}

type llmReply struct {
	Quiz          *[]llmQuestion `json:"quiz"`
	RelatedTopics []string       `json:"related_topics"`
}

// Generate запрашивает модель и проверяет форму ответа.
func (l *LLM) Generate(ctx context.Context, article domain.Article) (domain.QuizPayload, error) {
	if l.backend == nil {
		return domain.QuizPayload{}, domain.ErrBackendUnavailable
	}
	ctx, cancel := context.WithTimeout(ctx, l.timeout)
	defer cancel()

	reply, err := l.backend.Generate(ctx, BuildPrompt(article.RawText))
	if err != nil {
		return domain.QuizPayload{}, fmt.Errorf("%s generate: %w", l.backend.Name(), err)
	}
	return parseReply(reply, article)
}

func parseReply(reply string, article domain.Article) (domain.QuizPayload, error) {
	var parsed llmReply
	if err := json.Unmarshal([]byte(cleanJSON(reply)), &parsed); err != nil {
		return domain.QuizPayload{}, fmt.Errorf("распаковка ответа LLM: %w", err)
	}
	if parsed.Quiz == nil {
		return domain.QuizPayload{}, errNoQuizKey
	}
	questions := make([]domain.QuizQuestion, 0, len(*parsed.Quiz))
	for _, raw := range *parsed.Quiz {
		q, ok := validQuestion(raw)
		if !ok {
			continue
		}
		questions = append(questions, q)
		if len(questions) == MaxQuestions {
			break
		}
	}
	if len(questions) == 0 {
		return domain.QuizPayload{}, fmt.Errorf("в ответе LLM нет корректных вопросов (получено %d)", len(*parsed.Quiz))
	}
	topics := filterValues(parsed.RelatedTopics)
	if len(topics) == 0 {
		topics = FallbackTopics(article)
	}
	return domain.QuizPayload{Questions: questions, RelatedTopics: headN(topics, MaxRelatedTopics)}, nil
}

// validQuestion проверяет только форму: текст, ровно 4 варианта, ответ среди вариантов.
// Ответ буквой A-D переводится в текст варианта.
func validQuestion(raw llmQuestion) (domain.QuizQuestion, bool) {
	text := strings.TrimSpace(raw.Question)
	if text == "" || len(raw.Options) != optionsPerQuestion {
		return domain.QuizQuestion{}, false
	}
	options := make([]string, 0, optionsPerQuestion)
	for _, opt := range raw.Options {
		opt = strings.TrimSpace(opt)
		if opt == "" {
			return domain.QuizQuestion{}, false
		}
		options = append(options, opt)
	}
	answer, ok := resolveAnswer(strings.TrimSpace(raw.Answer), options)
	if !ok {
		return domain.QuizQuestion{}, false
	}
	return domain.QuizQuestion{
		Question:    text,
		Options:     options,
		Answer:      answer,
		Difficulty:  normalizeDifficulty(raw.Difficulty),
		Explanation: strings.TrimSpace(raw.Explanation),
	}, true
}

func resolveAnswer(answer string, options []string) (string, bool) {
	for _, opt := range options {
		if opt == answer {
			return opt, true
		}
	}
	if len(answer) == 1 {
		idx := int(strings.ToUpper(answer)[0]) - 'A'
		if idx >= 0 && idx < len(options) {
			return options[idx], true
		}
	}
	return "", false
}

func normalizeDifficulty(value string) string {
	switch v := strings.ToLower(strings.TrimSpace(value)); v {
	case domain.DifficultyEasy, domain.DifficultyMedium, domain.DifficultyHard:
		return v
	default:
		return ""
	}
}

func filterValues(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if trimmed := strings.TrimSpace(v); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
