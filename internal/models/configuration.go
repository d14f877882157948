package models

import "strings"

// GlobalConfiguration — то, что отдаёт источник конфигурации.
type GlobalConfiguration struct {
	Symbols []string `json:"symbols" yaml:"symbols"`
}

// NormalizeSymbols приводит тикеры к верхнему регистру, выкидывает пустые
// и дубли. Порядок сохраняется, пустой список допустим.
func NormalizeSymbols(raw []string) []string {
	out := make([]string, 0, len(raw))
	seen := make(map[string]struct{}, len(raw))
	for _, s := range raw {
		s = strings.ToUpper(strings.TrimSpace(s))
		if s == "" {
			continue
		}
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}
