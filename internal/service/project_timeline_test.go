package service

import (
	"testing"

	"github.com/Marga-Ghale/ora-interior-backend/internal/types"
)

func TestCanTimelineTransition(t *testing.T) {
	t.Parallel()

	tests := []struct {
		from, to types.ProjectStatus
		want     bool
	}{
		{types.ProjectConsultation, types.ProjectConsultation, true},
		{types.ProjectConsultation, types.ProjectProductCuration, true},
		{types.ProjectConsultation, types.ProjectFinalizeQuote, false},
		{types.ProjectConsultation, types.ProjectCompleted, false},
		{types.ProjectFinalizeQuote, types.ProjectCompleted, true},
		{types.ProjectFinalizeQuote, types.ProjectProductCuration, false},
		{types.ProjectCompleted, types.ProjectCompleted, true},
		{types.ProjectConsultation, types.ProjectCancelled, false},
		{types.ProjectCancelled, types.ProjectConsultation, false},
		{types.ProjectStatus("bogus"), types.ProjectConsultation, false},
	}
	for _, tt := range tests {
		if got := CanTimelineTransition(tt.from, tt.to); got != tt.want {
			t.Errorf("CanTimelineTransition(%s, %s): got %v, want %v", tt.from, tt.to, got, tt.want)
		}
	}
}

func TestBuildTimelineFromConsultation(t *testing.T) {
	t.Parallel()

	view := BuildTimeline(types.ProjectConsultation, false)

	wantStates := []string{StepCurrent, StepUpcoming, StepUpcoming, StepUpcoming}
	wantClickable := []bool{true, true, false, false}
	for i, step := range view.Steps {
		if step.State != wantStates[i] {
			t.Errorf("step %d state: got %s, want %s", i, step.State, wantStates[i])
		}
		if step.Clickable != wantClickable[i] {
			t.Errorf("step %d clickable: got %v, want %v", i, step.Clickable, wantClickable[i])
		}
	}
	if view.NextStatus == nil || *view.NextStatus != types.ProjectProductCuration {
		t.Fatalf("NextStatus: got %v, want product_curation", view.NextStatus)
	}
	if view.NextLabel != "Move to Product Curation" {
		t.Errorf("NextLabel: got %q", view.NextLabel)
	}
}

func TestBuildTimelineMidway(t *testing.T) {
	t.Parallel()

	view := BuildTimeline(types.ProjectFinalizeQuote, false)

	wantStates := []string{StepCompleted, StepCompleted, StepCurrent, StepUpcoming}
	wantClickable := []bool{false, false, true, true}
	for i, step := range view.Steps {
		if step.State != wantStates[i] {
			t.Errorf("step %d state: got %s, want %s", i, step.State, wantStates[i])
		}
		if step.Clickable != wantClickable[i] {
			t.Errorf("step %d clickable: got %v, want %v", i, step.Clickable, wantClickable[i])
		}
		if step.Clickable != CanTimelineTransition(view.Current, step.Status) {
			t.Errorf("step %d (%s): clickable disagrees with CanTimelineTransition", i, step.Status)
		}
	}
}

func TestBuildTimelineLocked(t *testing.T) {
	t.Parallel()

	view := BuildTimeline(types.ProjectProductCuration, true)
	for i, step := range view.Steps {
		if step.Clickable {
			t.Errorf("step %d: clickable while locked", i)
		}
	}
	if view.NextStatus != nil {
		t.Errorf("NextStatus: got %v, want nil", *view.NextStatus)
	}
	if view.Steps[0].State != StepCompleted {
		t.Errorf("step 0 state: got %s, want completed", view.Steps[0].State)
	}
}

func TestBuildTimelineCompleted(t *testing.T) {
	t.Parallel()

	view := BuildTimeline(types.ProjectCompleted, false)
	if view.NextStatus != nil {
		t.Errorf("NextStatus at end: got %v, want nil", *view.NextStatus)
	}
	if view.Steps[3].State != StepCurrent {
		t.Errorf("final step: got %s, want current", view.Steps[3].State)
	}
}
