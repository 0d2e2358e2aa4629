package service

import "strings"

// ParseLabels splits a comma-separated label list. Names are trimmed,
// blank tokens from doubled or trailing commas are dropped, and repeats
// keep their first position.
func ParseLabels(text string) []string {
	return cleanLabels(strings.Split(text, ","))
}

func cleanLabels(names []string) []string {
	seen := make(map[string]struct{}, len(names))
	out := make([]string, 0, len(names))
	for _, n := range names {
		n = strings.TrimSpace(n)
		if n == "" {
			continue
		}
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	return out
}
