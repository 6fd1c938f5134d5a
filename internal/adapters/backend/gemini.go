package backend

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"google.golang.org/genai"

	"wiki-quiz/internal/infra/metrics"
)

type geminiModels interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// Gemini отвечает на промпт через Google Gemini API.
type Gemini struct {
	models geminiModels
	model  string
}

// NewGeminiClient создаёт клиента Gemini API по ключу.
func NewGeminiClient(ctx context.Context, apiKey, model string) (*Gemini, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("gemini: new client: %w", err)
	}
	return NewGemini(client.Models, model), nil
}

// NewGemini создаёт backend поверх сервиса моделей.
func NewGemini(models geminiModels, model string) *Gemini {
	if model == "" {
		model = "gemini-2.0-flash"
	}
	return &Gemini{models: models, model: model}
}

// Name возвращает провайдера и модель.
func (g *Gemini) Name() string { return "gemini:" + g.model }

// Generate просит JSON ответ и склеивает текстовые части первого кандидата.
func (g *Gemini) Generate(ctx context.Context, prompt string) (text string, err error) {
	start := time.Now()
	defer func() {
		metrics.ObserveNetworkRequest("gemini", "generate_content", g.model, start, err)
	}()

	resp, err := g.models.GenerateContent(ctx, g.model, genai.Text(prompt), &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
	})
	if err != nil {
		return "", fmt.Errorf("gemini: generate: %w", err)
	}
	metrics.ObserveLLMGeneration(g.model, time.Since(start), 0, 0, 0)
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", errors.New("gemini: пустой ответ")
	}
	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if part != nil {
			b.WriteString(part.Text)
		}
	}
	if strings.TrimSpace(b.String()) == "" {
		return "", errors.New("gemini: пустой ответ")
	}
	return b.String(), nil
}
