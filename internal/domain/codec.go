package domain

import (
	"encoding/json"
	"fmt"
)

// EncodeKeyEntities сериализует сущности для хранения в текстовой колонке.
func EncodeKeyEntities(entities KeyEntities) (string, error) {
	if entities == nil {
		entities = KeyEntities{}
	}
	normalized := make(KeyEntities, len(entities))
	for k, v := range entities {
		if v == nil {
			v = []string{}
		}
		normalized[k] = v
	}
	b, err := json.Marshal(normalized)
	if err != nil {
		return "", fmt.Errorf("encode key entities: %w", err)
	}
	return string(b), nil
}

// DecodeKeyEntities восстанавливает сущности. Пустая строка даёт пустой набор.
func DecodeKeyEntities(raw string) (KeyEntities, error) {
	out := KeyEntities{}
	if raw == "" {
		return out, nil
	}
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return nil, fmt.Errorf("decode key entities: %w", err)
	}
	if out == nil {
		out = KeyEntities{}
	}
	for k, v := range out {
		if v == nil {
			out[k] = []string{}
		}
	}
	return out, nil
}

// EncodeStrings сериализует список строк (разделы, варианты ответа).
func EncodeStrings(values []string) (string, error) {
	if values == nil {
		values = []string{}
	}
	b, err := json.Marshal(values)
	if err != nil {
		return "", fmt.Errorf("encode strings: %w", err)
	}
	return string(b), nil
}

// DecodeStrings восстанавливает список строк, никогда не возвращая nil без ошибки.
func DecodeStrings(raw string) ([]string, error) {
	out := []string{}
	if raw == "" {
		return out, nil
	}
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return nil, fmt.Errorf("decode strings: %w", err)
	}
	if out == nil {
		out = []string{}
	}
	return out, nil
}
