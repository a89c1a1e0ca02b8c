package task

import (
	"slices"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// Sort keys accepted by SortBy.
const (
	SortByCreatedAt = "createdAt"
	SortByName      = "name"
	SortByDueDate   = "dueDate"
)

// Search returns the tasks whose title or description contains term,
// ignoring case. An empty term matches everything.
func Search(tasks []*Task, term string) []*Task {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return tasks
	}
	result := make([]*Task, 0, len(tasks))
	for _, t := range tasks {
		if strings.Contains(strings.ToLower(t.Title), term) ||
			strings.Contains(strings.ToLower(t.Description), term) {
			result = append(result, t)
		}
	}
	return result
}

// SortBy orders a copy of tasks by key. Unknown keys fall back to
// SortByCreatedAt (newest first). Names use Portuguese collation, ignoring
// case. Tasks without a due date sort last.
func SortBy(tasks []*Task, key string) []*Task {
	sorted := slices.Clone(tasks)
	switch key {
	case SortByName:
		// A Collator keeps internal buffers, so each call gets its own.
		coll := collate.New(language.Portuguese, collate.IgnoreCase)
		slices.SortStableFunc(sorted, func(a, b *Task) int {
			return coll.CompareString(a.Title, b.Title)
		})
	case SortByDueDate:
		slices.SortStableFunc(sorted, func(a, b *Task) int {
			switch {
			case a.DueDate == nil && b.DueDate == nil:
				return 0
			case a.DueDate == nil:
				return 1
			case b.DueDate == nil:
				return -1
			}
			return a.DueDate.Compare(*b.DueDate)
		})
	default:
		slices.SortStableFunc(sorted, func(a, b *Task) int {
			return b.CreatedAt.Compare(a.CreatedAt)
		})
	}
	return sorted
}
