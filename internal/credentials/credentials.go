// Package credentials — хранилище API-ключей перевозчиков, только на чтение.
package credentials

import (
	"strings"
)

// Static is an immutable carrier id -> API key map built from config.
type Static struct {
	keys map[string]string
}

func NewStatic(keys map[string]string) *Static {
	m := make(map[string]string, len(keys))
	for id, k := range keys {
		k = strings.TrimSpace(k)
		if k == "" {
			continue
		}
		m[strings.ToLower(strings.TrimSpace(id))] = k
	}
	return &Static{keys: m}
}

func (s *Static) APIKey(carrierID string) (string, bool) {
	if s == nil {
		return "", false
	}
	k, ok := s.keys[strings.ToLower(carrierID)]
	return k, ok
}

// Configured lists carrier ids that have a key, for startup logging. Keys themselves are never exposed.
func (s *Static) Configured() []string {
	out := make([]string, 0, len(s.keys))
	for id := range s.keys {
		out = append(out, id)
	}
	return out
}
