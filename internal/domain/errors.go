package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrQuizNotFound возвращается, когда викторина не найдена.
	ErrQuizNotFound = errors.New("quiz not found")

	// ErrQuizExists возвращается хранилищем при конфликте уникальности URL.
	ErrQuizExists = errors.New("quiz for url already exists")

	// ErrInvalidURL возвращается для пустого или не-http(s) адреса.
	ErrInvalidURL = errors.New("invalid URL")

	// ErrBackendUnavailable возвращается, когда генеративная модель не настроена.
	ErrBackendUnavailable = errors.New("generative backend is not configured")
)

// FetchError описывает сбой загрузки страницы: транспорт или не-2xx ответ.
type FetchError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetch %s: status %d", e.URL, e.StatusCode)
	}
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// NormalizeError описывает неразбираемую разметку.
type NormalizeError struct {
	URL string
	Err error
}

func (e *NormalizeError) Error() string {
	return fmt.Sprintf("normalize %s: %v", e.URL, e.Err)
}

func (e *NormalizeError) Unwrap() error { return e.Err }

// PersistError описывает сбой хранилища при сохранении викторины.
type PersistError struct {
	URL string
	Err error
}

func (e *PersistError) Error() string {
	return fmt.Sprintf("persist %s: %v", e.URL, e.Err)
}

func (e *PersistError) Unwrap() error { return e.Err }
