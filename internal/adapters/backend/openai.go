package backend

import (
	"context"

	openai "wiki-quiz/internal/infra/openai"
)

type chatClient interface {
	CompleteJSON(ctx context.Context, p openai.Prompt) (string, error)
}

// OpenAI отвечает на промпт через Chat Completions в режиме JSON.
type OpenAI struct {
	client chatClient
	model  string
}

// NewOpenAI создаёт backend поверх клиента OpenAI.
func NewOpenAI(client chatClient, model string) *OpenAI {
	if model == "" {
		model = "gpt-4.1-mini"
	}
	return &OpenAI{client: client, model: model}
}

// Name возвращает провайдера и модель.
func (o *OpenAI) Name() string { return "openai:" + o.model }

// Generate возвращает текст ответа модели.
func (o *OpenAI) Generate(ctx context.Context, prompt string) (string, error) {
	return o.client.CompleteJSON(ctx, openai.Prompt{
		Model:       o.model,
		System:      "You write factual multiple-choice quizzes and answer with JSON only.",
		User:        prompt,
		Temperature: 0.3,
		MaxTokens:   3000,
	})
}
