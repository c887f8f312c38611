package service

import (
	"github.com/Marga-Ghale/ora-interior-backend/internal/repository"
	"github.com/Marga-Ghale/ora-interior-backend/internal/types"
)

type timelinePhase struct {
	label         string
	description   string
	estimatedDays int
}

var timelinePhases = map[types.ProjectStatus]timelinePhase{
	types.ProjectConsultation:    {"Consultation", "Initial consultation & survey", 7},
	types.ProjectProductCuration: {"Product Curation", "Selecting & arranging products", 14},
	types.ProjectFinalizeQuote:   {"Finalize & Quote", "Finalizing products & creating quote", 7},
	types.ProjectCompleted:       {"Completed", "Project completed", 0},
}

const (
	StepCompleted = "completed"
	StepCurrent   = "current"
	StepUpcoming  = "upcoming"
)

type TimelineStep struct {
	Status        types.ProjectStatus `json:"status"`
	Label         string              `json:"label"`
	Description   string              `json:"description"`
	EstimatedDays int                 `json:"estimatedDays"`
	State         string              `json:"state"`
	Clickable     bool                `json:"clickable"`
}

type TimelineView struct {
	Current     types.ProjectStatus  `json:"current"`
	Locked      bool                 `json:"locked"`
	Steps       []TimelineStep       `json:"steps"`
	NextStatus  *types.ProjectStatus `json:"nextStatus,omitempty"`
	NextLabel   string               `json:"nextLabel,omitempty"`
	ProgressPct int                  `json:"progress"`
}

// CanTimelineTransition allows staying on the current phase or moving exactly
// one phase forward. Statuses off the timeline never qualify.
func CanTimelineTransition(current, target types.ProjectStatus) bool {
	i := types.TimelineIndex(current)
	j := types.TimelineIndex(target)
	if i < 0 || j < 0 {
		return false
	}
	return j == i || j == i+1
}

// NextTimelineStatus is the quick-advance target, or false at the end of the
// timeline and for statuses off it.
func NextTimelineStatus(current types.ProjectStatus) (types.ProjectStatus, bool) {
	i := types.TimelineIndex(current)
	if i < 0 || i+1 >= len(types.ProjectTimeline) {
		return "", false
	}
	return types.ProjectTimeline[i+1], true
}

// IsProjectLocked is true for terminal projects and for explicitly locked ones.
func IsProjectLocked(p *repository.Project) bool {
	return p.IsLocked || p.Status.IsTerminal()
}

func BuildTimeline(current types.ProjectStatus, locked bool) TimelineView {
	idx := types.TimelineIndex(current)
	view := TimelineView{
		Current: current,
		Locked:  locked,
		Steps:   make([]TimelineStep, 0, len(types.ProjectTimeline)),
	}
	for i, st := range types.ProjectTimeline {
		phase := timelinePhases[st]
		state := StepUpcoming
		switch {
		case idx >= 0 && i < idx:
			state = StepCompleted
		case i == idx:
			state = StepCurrent
		}
		view.Steps = append(view.Steps, TimelineStep{
			Status:        st,
			Label:         phase.label,
			Description:   phase.description,
			EstimatedDays: phase.estimatedDays,
			State:         state,
			Clickable:     !locked && CanTimelineTransition(current, st),
		})
	}
	if !locked {
		if next, ok := NextTimelineStatus(current); ok {
			view.NextStatus = &next
			view.NextLabel = "Move to " + timelinePhases[next].label
		}
	}
	return view
}
