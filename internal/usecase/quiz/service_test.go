package quiz

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"wiki-quiz/internal/adapters/normalizer"
	"wiki-quiz/internal/adapters/quizgen"
	"wiki-quiz/internal/domain"
	"wiki-quiz/internal/infra/cache"
)

const romeMarkup = `<html><body><h1>Rome</h1><div id="mw-content-text">
<p>Rome is the capital of Italy.</p><h2>History</h2><h2>Geography</h2></div></body></html>`

type stubFetcher struct {
	markup string
	err    error
	calls  int32
	delay  time.Duration
}

func (f *stubFetcher) Fetch(context.Context, string) (string, error) {
	atomic.AddInt32(&f.calls, 1)
	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	return f.markup, f.err
}

// memRepo это потокобезопасное хранилище в памяти с уникальностью по URL.
type memRepo struct {
	mu        sync.Mutex
	byURL     map[string]domain.Quiz
	nextID    int64
	inserts   int
	insertErr error
	findErr   error
	// beforeInsert вызывается без блокировки, чтобы смоделировать гонку.
	beforeInsert func()
}

func newMemRepo() *memRepo {
	return &memRepo{byURL: make(map[string]domain.Quiz)}
}

func (r *memRepo) FindByURL(ctx context.Context, url string) (domain.Quiz, bool, error) {
	if err := ctx.Err(); err != nil {
		return domain.Quiz{}, false, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.findErr != nil {
		return domain.Quiz{}, false, r.findErr
	}
	q, ok := r.byURL[url]
	return q, ok, nil
}

func (r *memRepo) Insert(ctx context.Context, q domain.Quiz) (domain.Quiz, error) {
	if err := ctx.Err(); err != nil {
		return domain.Quiz{}, err
	}
	if r.beforeInsert != nil {
		r.beforeInsert()
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.insertErr != nil {
		return domain.Quiz{}, r.insertErr
	}
	if _, ok := r.byURL[q.URL]; ok {
		return domain.Quiz{}, domain.ErrQuizExists
	}
	r.nextID++
	r.inserts++
	q.ID = r.nextID
	for i := range q.Questions {
		q.Questions[i].ID = int64(i + 1)
		q.Questions[i].QuizID = q.ID
	}
	r.byURL[q.URL] = q
	return q, nil
}

func (r *memRepo) GetByID(_ context.Context, id int64) (domain.Quiz, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, q := range r.byURL {
		if q.ID == id {
			return q, nil
		}
	}
	return domain.Quiz{}, domain.ErrQuizNotFound
}

func (r *memRepo) List(context.Context) ([]domain.QuizListItem, error) {
	return nil, nil
}

func newTestService(f domain.Fetcher, repo domain.QuizRepo, locker domain.URLLocker) *Service {
	return NewService(f, normalizer.New(), quizgen.NewSynthesizer(nil, zerolog.Nop()), repo, locker, zerolog.Nop())
}

func TestGenerateFallbackQuiz(t *testing.T) {
	repo := newMemRepo()
	svc := newTestService(&stubFetcher{markup: romeMarkup}, repo, nil)

	quiz, err := svc.Generate(context.Background(), "https://en.wikipedia.org/wiki/Rome")
	if err != nil {
		t.Fatalf("не ожидали ошибку: %v", err)
	}
	if quiz.Title != "Rome" || len(quiz.Questions) != 2 {
		t.Fatalf("неожиданная викторина: %+v", quiz)
	}
	if quiz.Questions[0].Difficulty != domain.DifficultyEasy || quiz.Questions[0].Options[0] != "Details about History" {
		t.Fatalf("первый вопрос должен быть про History: %+v", quiz.Questions[0])
	}
}

func TestGenerateSameURLTwice(t *testing.T) {
	repo := newMemRepo()
	fetcher := &stubFetcher{markup: romeMarkup}
	svc := newTestService(fetcher, repo, nil)

	first, err := svc.Generate(context.Background(), "https://en.wikipedia.org/wiki/Rome")
	if err != nil {
		t.Fatalf("первый вызов: %v", err)
	}
	second, err := svc.Generate(context.Background(), "https://en.wikipedia.org/wiki/Rome")
	if err != nil {
		t.Fatalf("второй вызов: %v", err)
	}
	if first.ID != second.ID {
		t.Fatalf("ожидали тот же id: %d != %d", first.ID, second.ID)
	}
	if repo.inserts != 1 {
		t.Fatalf("ожидали одну вставку, получили %d", repo.inserts)
	}
	if fetcher.calls != 1 {
		t.Fatalf("повторный запрос не должен загружать статью, загрузок %d", fetcher.calls)
	}
}

func TestGenerateFetch404(t *testing.T) {
	repo := newMemRepo()
	fetchErr := &domain.FetchError{URL: "https://en.wikipedia.org/wiki/Nope", StatusCode: 404, Err: errors.New("404 Not Found")}
	svc := newTestService(&stubFetcher{err: fetchErr}, repo, nil)

	_, err := svc.Generate(context.Background(), "https://en.wikipedia.org/wiki/Nope")
	var got *domain.FetchError
	if !errors.As(err, &got) || got.StatusCode != 404 {
		t.Fatalf("ожидали FetchError 404, получили %v", err)
	}
	if repo.inserts != 0 {
		t.Fatalf("ничего не должно сохраниться")
	}
}

func TestGenerateWrapsUntypedFetchError(t *testing.T) {
	svc := newTestService(&stubFetcher{err: errors.New("dial tcp: refused")}, newMemRepo(), nil)
	_, err := svc.Generate(context.Background(), "https://example.org/a")
	var got *domain.FetchError
	if !errors.As(err, &got) {
		t.Fatalf("ожидали FetchError, получили %v", err)
	}
}

func TestGenerateInvalidURL(t *testing.T) {
	fetcher := &stubFetcher{markup: romeMarkup}
	svc := newTestService(fetcher, newMemRepo(), nil)
	for _, raw := range []string{"", "   ", "ftp://example.org/x", "not a url", "https://"} {
		if _, err := svc.Generate(context.Background(), raw); !errors.Is(err, domain.ErrInvalidURL) {
			t.Fatalf("%q: ожидали ErrInvalidURL, получили %v", raw, err)
		}
	}
	if fetcher.calls != 0 {
		t.Fatalf("некорректный URL не должен загружаться")
	}
}

func TestGeneratePersistError(t *testing.T) {
	repo := newMemRepo()
	repo.insertErr = errors.New("disk full")
	svc := newTestService(&stubFetcher{markup: romeMarkup}, repo, nil)

	_, err := svc.Generate(context.Background(), "https://en.wikipedia.org/wiki/Rome")
	var persistErr *domain.PersistError
	if !errors.As(err, &persistErr) {
		t.Fatalf("ожидали PersistError, получили %v", err)
	}
	if persistErr.URL != "https://en.wikipedia.org/wiki/Rome" {
		t.Fatalf("URL не передан в ошибку: %+v", persistErr)
	}
}

func TestGenerateConcurrentSameURL(t *testing.T) {
	repo := newMemRepo()
	fetcher := &stubFetcher{markup: romeMarkup, delay: 5 * time.Millisecond}
	svc := newTestService(fetcher, repo, cache.NewLocalLocker())

	var wg sync.WaitGroup
	ids := make([]int64, 8)
	for i := range ids {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			quiz, err := svc.Generate(context.Background(), "https://en.wikipedia.org/wiki/Rome")
			if err != nil {
				t.Errorf("generate: %v", err)
				return
			}
			ids[i] = quiz.ID
		}(i)
	}
	wg.Wait()
	for _, id := range ids {
		if id != ids[0] {
			t.Fatalf("все запросы должны вернуть одну запись: %v", ids)
		}
	}
	if repo.inserts != 1 || atomic.LoadInt32(&fetcher.calls) != 1 {
		t.Fatalf("ожидали одну загрузку и одну вставку, получили %d/%d", fetcher.calls, repo.inserts)
	}
}

type failingLocker struct{}

func (failingLocker) Lock(context.Context, string) (func(), error) {
	return nil, errors.New("redis: connection refused")
}

func TestGenerateProceedsWhenLockFails(t *testing.T) {
	svc := newTestService(&stubFetcher{markup: romeMarkup}, newMemRepo(), failingLocker{})
	if _, err := svc.Generate(context.Background(), "https://en.wikipedia.org/wiki/Rome"); err != nil {
		t.Fatalf("сбой блокировки не должен ломать запрос: %v", err)
	}
}

// hangingBackend отвечает только после отмены контекста.
type hangingBackend struct{}

func (hangingBackend) Name() string { return "hanging" }

func (hangingBackend) Generate(ctx context.Context, _ string) (string, error) {
	<-ctx.Done()
	return "", ctx.Err()
}

func TestGenerateHangingBackendFallsBackWithinDeadline(t *testing.T) {
	const budget = 300 * time.Millisecond
	repo := newMemRepo()
	synth := quizgen.NewSynthesizer(quizgen.NewLLM(hangingBackend{}, budget), zerolog.Nop())
	svc := NewService(&stubFetcher{markup: romeMarkup}, normalizer.New(), synth, repo, cache.NewLocalLocker(), zerolog.Nop())

	ctx, cancel := context.WithTimeout(context.Background(), budget)
	defer cancel()
	quiz, err := svc.Generate(ctx, "https://en.wikipedia.org/wiki/Rome")
	if err != nil {
		t.Fatalf("зависшая модель должна приводить к запасной викторине, получили ошибку: %v", err)
	}
	if quiz.ID == 0 || len(quiz.Questions) != 2 {
		t.Fatalf("ожидали сохранённую запасную викторину: %+v", quiz)
	}
	if quiz.Questions[0].Options[0] != "Details about History" {
		t.Fatalf("ожидали вопросы запасной викторины: %+v", quiz.Questions[0])
	}
	if repo.inserts != 1 {
		t.Fatalf("ожидали одну вставку, получили %d", repo.inserts)
	}
}
