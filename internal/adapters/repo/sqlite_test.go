package repo

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"wiki-quiz/internal/infra/db"
)

func newSQLiteRepo(t *testing.T) *SQLite {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	gdb, err := db.OpenSQLite(fmt.Sprintf("file:%s?mode=memory&cache=shared&_foreign_keys=on", name))
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := gdb.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	repo, err := NewSQLite(gdb)
	require.NoError(t, err)
	return repo
}

func TestSQLiteRepo(t *testing.T) {
	runRepoContract(t, newSQLiteRepo(t))
}

func TestSQLiteInsertIsAtomic(t *testing.T) {
	repo := newSQLiteRepo(t)
	require.NoError(t, repo.db.Exec(`CREATE TRIGGER reject_topic BEFORE INSERT ON related_topics
WHEN NEW.topic = 'poison' BEGIN SELECT RAISE(ABORT, 'poisoned topic'); END`).Error)

	quiz := sampleQuiz("https://example.org/atomic")
	quiz.RelatedTopics[1].Topic = "poison"
	_, err := repo.Insert(context.Background(), quiz)
	require.Error(t, err)

	var count int64
	require.NoError(t, repo.db.Model(&quizRow{}).Where("url = ?", quiz.URL).Count(&count).Error)
	require.Zero(t, count)
	require.NoError(t, repo.db.Model(&questionRow{}).Count(&count).Error)
	require.Zero(t, count)
}
