package types

import "testing"

func TestLeadStatusBadge(t *testing.T) {
	t.Parallel()

	tests := []struct {
		status LeadStatus
		label  string
		bg     string
	}{
		{LeadNew, "New", "bg-blue-100"},
		{LeadConsulting, "Consulting", "bg-yellow-100"},
		{LeadQualified, "Qualified", "bg-green-100"},
		{LeadConverted, "Converted", "bg-purple-100"},
		{LeadCancelled, "Cancelled", "bg-gray-100"},
		{LeadStatus("archived"), "Unknown", "bg-gray-100"},
		{LeadStatus(""), "Unknown", "bg-gray-100"},
	}

	for _, tt := range tests {
		got := LeadStatusBadge(tt.status)
		if got.Label != tt.label {
			t.Errorf("LeadStatusBadge(%q).Label: got %q, want %q", tt.status, got.Label, tt.label)
		}
		if got.BackgroundColor != tt.bg {
			t.Errorf("LeadStatusBadge(%q).BackgroundColor: got %q, want %q", tt.status, got.BackgroundColor, tt.bg)
		}
	}
}

func TestProjectStatusBadge(t *testing.T) {
	t.Parallel()

	tests := []struct {
		status    ProjectStatus
		label     string
		indicator string
	}{
		{ProjectConsultation, "Consultation", "bg-blue-500"},
		{ProjectProductCuration, "Product Curation", "bg-purple-500"},
		{ProjectFinalizeQuote, "Finalizing Quote", "bg-orange-500"},
		{ProjectCompleted, "Completed", "bg-green-500"},
		{ProjectCancelled, "Cancelled", "bg-gray-500"},
		{ProjectStatus("on_hold"), "Unknown", "bg-gray-500"},
	}

	for _, tt := range tests {
		got := ProjectStatusBadge(tt.status)
		if got.Label != tt.label {
			t.Errorf("ProjectStatusBadge(%q).Label: got %q, want %q", tt.status, got.Label, tt.label)
		}
		if got.IndicatorColor != tt.indicator {
			t.Errorf("ProjectStatusBadge(%q).IndicatorColor: got %q, want %q", tt.status, got.IndicatorColor, tt.indicator)
		}
	}
}

func TestBadgesAreTotal(t *testing.T) {
	t.Parallel()

	for _, s := range ValidLeadStatuses {
		if b := LeadStatusBadge(s); b.Label == "" || b.Label == UnknownBadge.Label {
			t.Errorf("LeadStatusBadge(%q): got %+v, want a dedicated badge", s, b)
		}
	}
	for _, s := range ValidProjectStatuses {
		if b := ProjectStatusBadge(s); b.Label == "" || b.Label == UnknownBadge.Label {
			t.Errorf("ProjectStatusBadge(%q): got %+v, want a dedicated badge", s, b)
		}
	}
	for _, p := range ValidPriorities {
		if b := PriorityBadge(p); b.Label == UnknownBadge.Label {
			t.Errorf("PriorityBadge(%q): got %+v, want a dedicated badge", p, b)
		}
	}
}

func TestTimelineIndex(t *testing.T) {
	t.Parallel()

	if got := TimelineIndex(ProjectFinalizeQuote); got != 2 {
		t.Errorf("TimelineIndex(finalize_quote): got %d, want 2", got)
	}
	if got := TimelineIndex(ProjectCancelled); got != -1 {
		t.Errorf("TimelineIndex(cancelled): got %d, want -1", got)
	}
}
