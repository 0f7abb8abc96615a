package board

import (
	"strings"

	"github.com/nhle/taskboard/internal/model"
)

// Filter returns the tasks whose name, description or any tag contains query,
// ignoring case. An empty query matches everything. Input order is kept.
func Filter(tasks []model.Task, query string) []model.Task {
	q := strings.ToLower(query)

	out := make([]model.Task, 0, len(tasks))
	for _, t := range tasks {
		if Matches(t, q) {
			out = append(out, t)
		}
	}
	return out
}

// Matches reports whether t matches an already lower-cased query.
func Matches(t model.Task, lowerQuery string) bool {
	if lowerQuery == "" {
		return true
	}
	if strings.Contains(strings.ToLower(t.Name), lowerQuery) {
		return true
	}
	if t.Description != "" && strings.Contains(strings.ToLower(t.Description), lowerQuery) {
		return true
	}
	for _, tag := range t.Tags {
		if strings.Contains(strings.ToLower(tag), lowerQuery) {
			return true
		}
	}
	return false
}
