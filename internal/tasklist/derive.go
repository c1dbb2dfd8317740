package tasklist

import (
	"cmp"
	"fmt"
	"slices"
	"strings"

	"tally/internal/task"
)

type SortCriterion int

const (
	SortNone SortCriterion = iota
	SortCreationTime
	SortDeadline
	SortPriority
)

func (s SortCriterion) String() string {
	switch s {
	case SortCreationTime:
		return "creation"
	case SortDeadline:
		return "deadline"
	case SortPriority:
		return "priority"
	default:
		return "none"
	}
}

func ParseSortCriterion(v string) (SortCriterion, error) {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "", "none":
		return SortNone, nil
	case "creation", "created":
		return SortCreationTime, nil
	case "deadline", "due":
		return SortDeadline, nil
	case "priority":
		return SortPriority, nil
	default:
		return SortNone, fmt.Errorf("unknown sort criterion %q", v)
	}
}

// Config is the filter and sort state applied on top of the raw collection.
type Config struct {
	SearchQuery    string
	PriorityFilter *task.Priority
	SortBy         SortCriterion
}

// FilterPatch changes only the fields it sets.
type FilterPatch struct {
	SearchQuery    *string
	PriorityFilter *task.Priority
	ClearPriority  bool
}

func (c Config) apply(p FilterPatch) Config {
	if p.SearchQuery != nil {
		c.SearchQuery = *p.SearchQuery
	}
	if p.ClearPriority {
		c.PriorityFilter = nil
	} else if p.PriorityFilter != nil {
		prio := *p.PriorityFilter
		c.PriorityFilter = &prio
	}
	return c
}

// Matches reports whether t survives the filter half of cfg.
func (c Config) Matches(t task.Task) bool {
	if c.PriorityFilter != nil && t.Priority != *c.PriorityFilter {
		return false
	}
	return strings.Contains(strings.ToLower(t.Title), strings.ToLower(c.SearchQuery))
}

// Derive filters raw by cfg and orders the result. Priority sorts
// high-to-low while the timestamp criteria sort oldest first. Ties keep
// their order in raw. raw is never modified.
func Derive(raw []task.Task, cfg Config) []task.Task {
	out := make([]task.Task, 0, len(raw))
	for _, t := range raw {
		if cfg.Matches(t) {
			out = append(out, t)
		}
	}

	switch cfg.SortBy {
	case SortCreationTime:
		slices.SortStableFunc(out, func(a, b task.Task) int {
			return a.CreatedAt.Compare(b.CreatedAt)
		})
	case SortDeadline:
		slices.SortStableFunc(out, func(a, b task.Task) int {
			return a.Deadline.Compare(b.Deadline)
		})
	case SortPriority:
		slices.SortStableFunc(out, func(a, b task.Task) int {
			return cmp.Compare(b.Priority, a.Priority)
		})
	}
	return out
}
