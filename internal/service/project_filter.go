package service

import (
	"sort"

	"github.com/Marga-Ghale/ora-interior-backend/internal/repository"
	"github.com/Marga-Ghale/ora-interior-backend/internal/types"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

type ProjectFilter struct {
	Status   string
	Priority string
	Search   string
	SortBy   string
}

// Progress is completed/total as a whole percentage; zero when there are no tasks.
func Progress(completed, total int) int {
	if total <= 0 {
		return 0
	}
	if completed > total {
		completed = total
	}
	return (completed*100 + total/2) / total
}

// progressLess orders a before b when a has the strictly higher completion
// ratio. Ratios are compared by cross-multiplication so no rounding applies.
func progressLess(a, b *repository.Project) bool {
	if a.TotalTasks <= 0 || b.TotalTasks <= 0 {
		ra, rb := 0, 0
		if a.TotalTasks > 0 && a.CompletedTasks > 0 {
			ra = 1
		}
		if b.TotalTasks > 0 && b.CompletedTasks > 0 {
			rb = 1
		}
		return ra > rb
	}
	return a.CompletedTasks*b.TotalTasks > b.CompletedTasks*a.TotalTasks
}

// FilterProjects filters then stably sorts a copy of projects.
func FilterProjects(projects []*repository.Project, f ProjectFilter) []*repository.Project {
	out := make([]*repository.Project, 0, len(projects))
	for _, p := range projects {
		if !isWildcard(f.Status) && string(p.Status) != f.Status {
			continue
		}
		if !isWildcard(f.Priority) && string(p.Priority) != f.Priority {
			continue
		}
		if !matchesSearch(f.Search, p.CustomerName, p.Title) {
			continue
		}
		out = append(out, p)
	}

	switch f.SortBy {
	case types.SortByName:
		col := collate.New(language.English, collate.IgnoreCase)
		sort.SliceStable(out, func(i, j int) bool {
			return col.CompareString(out[i].CustomerName, out[j].CustomerName) < 0
		})
	case types.SortByProgress:
		sort.SliceStable(out, func(i, j int) bool {
			return progressLess(out[i], out[j])
		})
	default:
		sort.SliceStable(out, func(i, j int) bool {
			return out[i].UpdatedAt.After(out[j].UpdatedAt)
		})
	}
	return out
}
