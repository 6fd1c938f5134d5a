package repo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wiki-quiz/internal/domain"
)

func TestNormalizeQuizCopiesCollections(t *testing.T) {
	entities := domain.KeyEntities{domain.EntityPeople: {"Caesar"}, domain.EntityOrganizations: nil}
	in := domain.Quiz{
		KeyEntities:   entities,
		Questions:     []domain.Question{{Question: "Q?"}},
		RelatedTopics: []domain.RelatedTopic{{Topic: "Rome"}},
	}

	out := normalizeQuiz(in)
	out.Questions[0].ID = 7
	out.RelatedTopics[0].ID = 8

	assert.Nil(t, entities[domain.EntityOrganizations], "карта вызывающего не должна меняться")
	assert.Equal(t, []string{}, out.KeyEntities[domain.EntityOrganizations])
	assert.Equal(t, []string{"Caesar"}, out.KeyEntities[domain.EntityPeople])
	assert.Equal(t, []string{}, out.Questions[0].Options)
	assert.Nil(t, in.Questions[0].Options)
	assert.Zero(t, in.Questions[0].ID)
	assert.Zero(t, in.RelatedTopics[0].ID)
}

func TestNormalizeQuizEmpty(t *testing.T) {
	out := normalizeQuiz(domain.Quiz{})
	require.NotNil(t, out.KeyEntities)
	assert.Equal(t, []string{}, out.Sections)
	assert.Equal(t, []domain.Question{}, out.Questions)
	assert.Equal(t, []domain.RelatedTopic{}, out.RelatedTopics)
}
