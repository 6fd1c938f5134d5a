package domain

import "context"

// Fetcher загружает разметку страницы по URL.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (string, error)
}

// Normalizer разбирает разметку в структурированную статью.
type Normalizer interface {
	Normalize(url, markup string) (Article, error)
}

// GenerativeBackend это внешняя модель, отвечающая текстом на промпт.
type GenerativeBackend interface {
	Name() string
	Generate(ctx context.Context, prompt string) (string, error)
}

// QuizStrategy строит викторину по статье одним способом.
type QuizStrategy interface {
	Name() string
	Generate(ctx context.Context, article Article) (QuizPayload, error)
}

// QuizSynthesizer всегда возвращает викторину: ошибки стратегий поглощаются.
type QuizSynthesizer interface {
	Synthesize(ctx context.Context, article Article) QuizPayload
}

// QuizRepo хранит викторины с уникальностью по URL.
type QuizRepo interface {
	FindByURL(ctx context.Context, url string) (Quiz, bool, error)
	// Insert атомарно сохраняет викторину с вопросами и темами.
	// При конфликте уникальности URL возвращает ErrQuizExists.
	Insert(ctx context.Context, quiz Quiz) (Quiz, error)
	GetByID(ctx context.Context, id int64) (Quiz, error)
	List(ctx context.Context) ([]QuizListItem, error)
}

// URLLocker сериализует обработку одного URL.
type URLLocker interface {
	Lock(ctx context.Context, key string) (unlock func(), err error)
}

// QuizService это сценарий от URL до сохранённой викторины.
type QuizService interface {
	Generate(ctx context.Context, url string) (Quiz, error)
	Get(ctx context.Context, id int64) (Quiz, error)
	List(ctx context.Context) ([]QuizListItem, error)
}
