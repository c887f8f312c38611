package types

// Badge is the display metadata for a status pill.
type Badge struct {
	Label           string `json:"label"`
	BackgroundColor string `json:"backgroundColor"`
	TextColor       string `json:"textColor"`
	IndicatorColor  string `json:"indicatorColor"`
}

func badge(label, color string) Badge {
	return Badge{
		Label:           label,
		BackgroundColor: "bg-" + color + "-100",
		TextColor:       "text-" + color + "-800",
		IndicatorColor:  "bg-" + color + "-500",
	}
}

// UnknownBadge is returned for any status outside the known set.
var UnknownBadge = badge("Unknown", "gray")

// LeadStatusBadge never fails; unknown values map to UnknownBadge.
func LeadStatusBadge(s LeadStatus) Badge {
	switch s {
	case LeadNew:
		return badge("New", "blue")
	case LeadConsulting:
		return badge("Consulting", "yellow")
	case LeadQualified:
		return badge("Qualified", "green")
	case LeadConverted:
		return badge("Converted", "purple")
	case LeadCancelled:
		return badge("Cancelled", "gray")
	default:
		return UnknownBadge
	}
}

// ProjectStatusBadge never fails; unknown values map to UnknownBadge.
func ProjectStatusBadge(s ProjectStatus) Badge {
	switch s {
	case ProjectConsultation:
		return badge("Consultation", "blue")
	case ProjectProductCuration:
		return badge("Product Curation", "purple")
	case ProjectFinalizeQuote:
		return badge("Finalizing Quote", "orange")
	case ProjectCompleted:
		return badge("Completed", "green")
	case ProjectCancelled:
		return badge("Cancelled", "gray")
	default:
		return UnknownBadge
	}
}

// PriorityBadge colors lead and project priorities.
func PriorityBadge(p Priority) Badge {
	switch p {
	case PriorityLow:
		return badge("Low", "gray")
	case PriorityMedium:
		return badge("Medium", "blue")
	case PriorityHigh:
		return badge("High", "orange")
	case PriorityUrgent:
		return badge("Urgent", "red")
	default:
		return UnknownBadge
	}
}
