package service

import (
	"testing"

	"github.com/Marga-Ghale/ora-interior-backend/internal/repository"
	"github.com/Marga-Ghale/ora-interior-backend/internal/types"
)

func sampleLeads() []*repository.Lead {
	return []*repository.Lead{
		{ID: "1", CustomerName: "Alice Nguyen", CustomerEmail: "alice@example.com", Status: types.LeadNew, Priority: types.PriorityHigh},
		{ID: "2", CustomerName: "Bob Tran", CustomerEmail: "bob@shop.vn", Status: types.LeadConsulting, Priority: types.PriorityLow},
		{ID: "3", CustomerName: "Carol", CustomerEmail: "carol@EXAMPLE.com", Status: types.LeadNew, Priority: types.PriorityLow},
		{ID: "4", CustomerName: "Dan", CustomerEmail: "dan@example.com", Status: types.LeadConverted, Priority: types.PriorityUrgent},
	}
}

func ids(leads []*repository.Lead) []string {
	out := make([]string, len(leads))
	for i, l := range leads {
		out[i] = l.ID
	}
	return out
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestFilterLeads(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		filter LeadFilter
		want   []string
	}{
		{"empty filter is identity", LeadFilter{}, []string{"1", "2", "3", "4"}},
		{"all is identity", LeadFilter{Status: "all", Priority: "all"}, []string{"1", "2", "3", "4"}},
		{"status", LeadFilter{Status: "new"}, []string{"1", "3"}},
		{"priority", LeadFilter{Priority: "low"}, []string{"2", "3"}},
		{"status and priority", LeadFilter{Status: "new", Priority: "low"}, []string{"3"}},
		{"search name case-insensitive", LeadFilter{Search: "ALICE"}, []string{"1"}},
		{"search email", LeadFilter{Search: "example.com"}, []string{"1", "3", "4"}},
		{"search space is literal", LeadFilter{Search: " "}, []string{"1", "2"}},
		{"no match", LeadFilter{Search: "zzz"}, []string{}},
		{"unknown status", LeadFilter{Status: "archived"}, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := ids(FilterLeads(sampleLeads(), tt.filter))
			if !equalStrings(got, tt.want) {
				t.Errorf("FilterLeads(%+v): got %v, want %v", tt.filter, got, tt.want)
			}
		})
	}
}

func TestFilterLeadsDoesNotMutateInput(t *testing.T) {
	t.Parallel()

	leads := sampleLeads()
	before := ids(leads)
	FilterLeads(leads, LeadFilter{Status: "consulting"})
	if got := ids(leads); !equalStrings(got, before) {
		t.Errorf("input order: got %v, want %v", got, before)
	}
}

func TestCountLeads(t *testing.T) {
	t.Parallel()

	got := CountLeads(sampleLeads())
	want := LeadCounts{Total: 4, New: 2, Consulting: 1, Converted: 1}
	if got != want {
		t.Errorf("CountLeads: got %+v, want %+v", got, want)
	}
}
