package service

import (
	"strings"

	"github.com/Marga-Ghale/ora-interior-backend/internal/repository"
	"github.com/Marga-Ghale/ora-interior-backend/internal/types"
)

// LeadFilter selects leads. Empty or "all" criteria match everything.
type LeadFilter struct {
	Status   string
	Priority string
	Search   string
}

// LeadCounts backs the counters above the lead list.
type LeadCounts struct {
	Total      int `json:"total"`
	New        int `json:"new"`
	Consulting int `json:"consulting"`
	Qualified  int `json:"qualified"`
	Converted  int `json:"converted"`
	Cancelled  int `json:"cancelled"`
}

func isWildcard(v string) bool {
	return v == "" || v == types.FilterAll
}

// matchesSearch is a case-insensitive substring test over any of fields.
func matchesSearch(search string, fields ...string) bool {
	needle := strings.ToLower(search)
	if needle == "" {
		return true
	}
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), needle) {
			return true
		}
	}
	return false
}

// FilterLeads returns the leads matching f in their original order.
// The input slice is not modified.
func FilterLeads(leads []*repository.Lead, f LeadFilter) []*repository.Lead {
	out := make([]*repository.Lead, 0, len(leads))
	for _, l := range leads {
		if !isWildcard(f.Status) && string(l.Status) != f.Status {
			continue
		}
		if !isWildcard(f.Priority) && string(l.Priority) != f.Priority {
			continue
		}
		if !matchesSearch(f.Search, l.CustomerName, l.CustomerEmail) {
			continue
		}
		out = append(out, l)
	}
	return out
}

func CountLeads(leads []*repository.Lead) LeadCounts {
	c := LeadCounts{Total: len(leads)}
	for _, l := range leads {
		switch l.Status {
		case types.LeadNew:
			c.New++
		case types.LeadConsulting:
			c.Consulting++
		case types.LeadQualified:
			c.Qualified++
		case types.LeadConverted:
			c.Converted++
		case types.LeadCancelled:
			c.Cancelled++
		}
	}
	return c
}
