package fetcher

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/net/html/charset"

	"wiki-quiz/internal/domain"
	"wiki-quiz/internal/infra/metrics"
)

const (
	defaultTimeout  = 15 * time.Second
	defaultMaxBytes = 10 << 20
	maxRedirects    = 10
)

// Options настраивает HTTP загрузчик статей.
type Options struct {
	Timeout   time.Duration
	UserAgent string
	MaxBytes  int64
}

// HTTP загружает HTML разметку статьи одним GET запросом без повторов.
type HTTP struct {
	client    *http.Client
	userAgent string
	maxBytes  int64
}

// NewHTTP создаёт загрузчик.
func NewHTTP(opts Options) *HTTP {
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}
	if opts.MaxBytes <= 0 {
		opts.MaxBytes = defaultMaxBytes
	}
	client := &http.Client{
		Timeout: opts.Timeout,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) >= maxRedirects {
				return http.ErrUseLastResponse
			}
			return nil
		},
	}
	return &HTTP{client: client, userAgent: opts.UserAgent, maxBytes: opts.MaxBytes}
}

// Fetch возвращает тело страницы как строку в UTF-8.
func (f *HTTP) Fetch(ctx context.Context, rawURL string) (markup string, err error) {
	target := "unknown"
	if u, parseErr := url.Parse(rawURL); parseErr == nil && u.Host != "" {
		target = u.Host
	}
	start := time.Now()
	defer func() {
		metrics.ObserveNetworkRequest("http", "fetch_article", target, start, err)
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", &domain.FetchError{URL: rawURL, Err: err}
	}
	if f.userAgent != "" {
		req.Header.Set("User-Agent", f.userAgent)
	}
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	resp, err := f.client.Do(req)
	if err != nil {
		return "", &domain.FetchError{URL: rawURL, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return "", &domain.FetchError{URL: rawURL, StatusCode: resp.StatusCode, Err: errors.New(resp.Status)}
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBytes+1))
	if err != nil {
		return "", &domain.FetchError{URL: rawURL, Err: fmt.Errorf("read body: %w", err)}
	}
	if int64(len(raw)) > f.maxBytes {
		return "", &domain.FetchError{URL: rawURL, Err: fmt.Errorf("body exceeds %d bytes", f.maxBytes)}
	}
	// Лимит относится к байтам ответа, декодированный текст может быть длиннее.
	body, err := charset.NewReader(bytes.NewReader(raw), resp.Header.Get("Content-Type"))
	if err != nil {
		return "", &domain.FetchError{URL: rawURL, Err: fmt.Errorf("decode charset: %w", err)}
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return "", &domain.FetchError{URL: rawURL, Err: fmt.Errorf("decode body: %w", err)}
	}
	return string(data), nil
}
