package repo

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wiki-quiz/internal/domain"
)

func sampleQuiz(url string) domain.Quiz {
	entities := domain.NewKeyEntities()
	entities[domain.EntityPeople] = []string{"Rome", "Romulus"}
	return domain.NewQuizFromArticle(domain.Article{
		URL:         url,
		Title:       "Rome",
		Summary:     "Rome is the capital city of Italy.",
		Sections:    []string{"History", "Geography"},
		KeyEntities: entities,
	}, domain.QuizPayload{
		Questions: []domain.QuizQuestion{
			{Question: "Q1?", Options: []string{"a", "b", "c", "d"}, Answer: "a", Difficulty: "easy", Explanation: "e1"},
			{Question: "Q2?", Options: []string{"e", "f", "g", "h"}, Answer: "h", Difficulty: "", Explanation: ""},
		},
		RelatedTopics: []string{"Roman Empire", "Italy"},
	})
}

// runRepoContract проверяет поведение, общее для всех хранилищ.
func runRepoContract(t *testing.T, repo domain.QuizRepo) {
	ctx := context.Background()

	t.Run("insert and read back", func(t *testing.T) {
		in := sampleQuiz("https://en.wikipedia.org/wiki/Rome")
		saved, err := repo.Insert(ctx, in)
		require.NoError(t, err)
		require.NotZero(t, saved.ID)
		require.Len(t, saved.Questions, 2)
		assert.NotZero(t, saved.Questions[0].ID)
		assert.Equal(t, saved.ID, saved.Questions[0].QuizID)

		found, ok, err := repo.FindByURL(ctx, in.URL)
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, saved.ID, found.ID)
		assert.Equal(t, in.KeyEntities, found.KeyEntities)
		assert.Equal(t, in.Sections, found.Sections)
		assert.Equal(t, []string{"Roman Empire", "Italy"}, found.TopicNames())
		require.Len(t, found.Questions, 2)
		assert.Equal(t, "Q1?", found.Questions[0].Question)
		assert.Equal(t, []string{"e", "f", "g", "h"}, found.Questions[1].Options)
		assert.Equal(t, saved.Questions[1].ID, found.Questions[1].ID)

		byID, err := repo.GetByID(ctx, saved.ID)
		require.NoError(t, err)
		assert.Equal(t, in.URL, byID.URL)
	})

	t.Run("insert leaves input untouched", func(t *testing.T) {
		in := sampleQuiz("https://en.wikipedia.org/wiki/Ostia")
		in.KeyEntities[domain.EntityLocations] = nil
		_, err := repo.Insert(ctx, in)
		require.NoError(t, err)
		assert.Nil(t, in.KeyEntities[domain.EntityLocations])
		assert.Zero(t, in.ID)
		assert.Zero(t, in.Questions[0].ID)
		assert.Zero(t, in.RelatedTopics[0].ID)
	})

	t.Run("duplicate url is ErrQuizExists", func(t *testing.T) {
		url := "https://en.wikipedia.org/wiki/Carthage"
		_, err := repo.Insert(ctx, sampleQuiz(url))
		require.NoError(t, err)
		_, err = repo.Insert(ctx, sampleQuiz(url))
		require.ErrorIs(t, err, domain.ErrQuizExists)
	})

	t.Run("missing records", func(t *testing.T) {
		_, ok, err := repo.FindByURL(ctx, "https://example.org/none")
		require.NoError(t, err)
		assert.False(t, ok)

		_, err = repo.GetByID(ctx, 987654)
		assert.True(t, errors.Is(err, domain.ErrQuizNotFound))
	})

	t.Run("empty collections round trip", func(t *testing.T) {
		in := domain.Quiz{URL: "https://example.org/empty", Title: "Untitled Article"}
		saved, err := repo.Insert(ctx, in)
		require.NoError(t, err)
		found, err := repo.GetByID(ctx, saved.ID)
		require.NoError(t, err)
		assert.Equal(t, saved.Sections, found.Sections)
		assert.Equal(t, saved.KeyEntities, found.KeyEntities)
		assert.Empty(t, found.Questions)
		assert.NotNil(t, found.Questions)
	})

	t.Run("list newest first", func(t *testing.T) {
		items, err := repo.List(ctx)
		require.NoError(t, err)
		require.GreaterOrEqual(t, len(items), 3)
		for i := 1; i < len(items); i++ {
			assert.Greater(t, items[i-1].ID, items[i].ID)
		}
	})

	t.Run("concurrent inserts keep one record", func(t *testing.T) {
		url := "https://en.wikipedia.org/wiki/Athens"
		var wg sync.WaitGroup
		var mu sync.Mutex
		var created, conflicts int
		for i := 0; i < 6; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := repo.Insert(ctx, sampleQuiz(url))
				mu.Lock()
				defer mu.Unlock()
				switch {
				case err == nil:
					created++
				case errors.Is(err, domain.ErrQuizExists):
					conflicts++
				default:
					t.Errorf("unexpected error: %v", err)
				}
			}()
		}
		wg.Wait()
		assert.Equal(t, 1, created, fmt.Sprintf("conflicts=%d", conflicts))
	})
}
