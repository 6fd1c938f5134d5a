package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

var (
	NetworkRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "network_request_duration_seconds",
		Help:    "Длительность сетевых запросов",
		Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10, 15, 20, 30, 45, 60, 90, 120},
	}, []string{"component", "operation", "target", "status"})

	NetworkRequestTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "network_request_total",
		Help: "Количество сетевых запросов",
	}, []string{"component", "operation", "target", "status"})

	LLMGenerationDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "llm_generation_duration_seconds",
		Help:    "Длительность генерации ответа LLM",
		Buckets: prometheus.DefBuckets,
	}, []string{"model"})

	LLMTokensTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "llm_tokens_total",
		Help: "Количество токенов, использованных LLM",
	}, []string{"model", "type"})

	QuizRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "quiz_requests_total",
		Help: "Запросы на построение викторины по итогу обработки",
	}, []string{"outcome"})

	QuizSynthesisTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "quiz_synthesis_total",
		Help: "Синтезированные викторины по источнику",
	}, []string{"source"})

	QuizPipelineSeconds = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "quiz_pipeline_seconds",
		Help:    "Время полного цикла загрузка-синтез-сохранение",
		Buckets: prometheus.DefBuckets,
	})

	QuizPersistConflicts = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "quiz_persist_conflicts_total",
		Help: "Конфликты уникальности URL при сохранении викторины",
	})
)

// Исходы обработки запроса на викторину.
const (
	OutcomeCreated      = "created"
	OutcomeExisting     = "existing"
	OutcomeFetchError   = "fetch_error"
	OutcomeParseError   = "normalize_error"
	OutcomePersistError = "persist_error"
)

// MustRegister регистрирует метрики.
func MustRegister(registerer prometheus.Registerer) {
	registerer.MustRegister(
		NetworkRequestDuration,
		NetworkRequestTotal,
		LLMGenerationDuration,
		LLMTokensTotal,
		QuizRequestsTotal,
		QuizSynthesisTotal,
		QuizPipelineSeconds,
		QuizPersistConflicts,
	)
}

// StartServer запускает HTTP сервер с эндпоинтом /metrics.
func StartServer(ctx context.Context, logger zerolog.Logger, addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 5 * time.Second,
	}

	shutdownCtx, cancel := context.WithCancel(context.Background())
	go func() {
		select {
		case <-ctx.Done():
		case <-shutdownCtx.Done():
		}
		shutdownTimeout, timeoutCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer timeoutCancel()
		if err := srv.Shutdown(shutdownTimeout); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error().Err(err).Msg("metrics: graceful shutdown failed")
		}
	}()

	go func() {
		logger.Info().Str("addr", addr).Msg("metrics: server started")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error().Err(err).Msg("metrics: server stopped")
		}
		cancel()
	}()
}

// ObserveNetworkRequest записывает длительность и статус сетевого запроса.
func ObserveNetworkRequest(component, operation, target string, start time.Time, err error) {
	if component == "" {
		component = "unknown"
	}
	if operation == "" {
		operation = "unknown"
	}
	if target == "" {
		target = "unknown"
	}
	status := "success"
	if err != nil {
		status = "error"
	}
	duration := time.Since(start).Seconds()
	NetworkRequestDuration.WithLabelValues(component, operation, target, status).Observe(duration)
	NetworkRequestTotal.WithLabelValues(component, operation, target, status).Inc()
}

// ObserveLLMGeneration записывает длительность и токены генерации LLM.
func ObserveLLMGeneration(model string, duration time.Duration, promptTokens, completionTokens, totalTokens int) {
	if model == "" {
		model = "unknown"
	}
	LLMGenerationDuration.WithLabelValues(model).Observe(duration.Seconds())
	if promptTokens > 0 {
		LLMTokensTotal.WithLabelValues(model, "prompt").Add(float64(promptTokens))
	}
	if completionTokens > 0 {
		LLMTokensTotal.WithLabelValues(model, "completion").Add(float64(completionTokens))
	}
	if totalTokens <= 0 {
		totalTokens = promptTokens + completionTokens
	}
	if totalTokens > 0 {
		LLMTokensTotal.WithLabelValues(model, "total").Add(float64(totalTokens))
	}
}

// IncQuizRequest увеличивает счётчик запросов с указанным исходом.
func IncQuizRequest(outcome string) {
	QuizRequestsTotal.WithLabelValues(outcome).Inc()
}

// IncSynthesis фиксирует источник синтезированной викторины.
func IncSynthesis(source string) {
	QuizSynthesisTotal.WithLabelValues(source).Inc()
}

// ObservePipeline записывает время полного цикла.
func ObservePipeline(start time.Time) {
	QuizPipelineSeconds.Observe(time.Since(start).Seconds())
}

// IncPersistConflict фиксирует проигранную гонку за URL.
func IncPersistConflict() {
	QuizPersistConflicts.Inc()
}
