package types

// FilterAll matches every value of a status or priority filter.
const FilterAll = "all"

// Lead Status values
type LeadStatus string

const (
	LeadNew        LeadStatus = "new"
	LeadConsulting LeadStatus = "consulting"
	LeadQualified  LeadStatus = "qualified"
	LeadConverted  LeadStatus = "converted"
	LeadCancelled  LeadStatus = "cancelled"
)

// IsTerminal reports whether the lead has left the active pipeline.
func (s LeadStatus) IsTerminal() bool {
	return s == LeadConverted || s == LeadCancelled
}

// Priority values shared by leads and projects
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

// Project Status values
type ProjectStatus string

const (
	ProjectConsultation    ProjectStatus = "consultation"
	ProjectProductCuration ProjectStatus = "product_curation"
	ProjectFinalizeQuote   ProjectStatus = "finalize_quote"
	ProjectCompleted       ProjectStatus = "completed"
	ProjectCancelled       ProjectStatus = "cancelled"
)

// IsTerminal reports whether no further transitions are allowed.
func (s ProjectStatus) IsTerminal() bool {
	return s == ProjectCompleted || s == ProjectCancelled
}

// ProjectTimeline is the strict forward order of project phases.
// Cancelled is reachable from any non-terminal phase but is not part of it.
var ProjectTimeline = []ProjectStatus{
	ProjectConsultation,
	ProjectProductCuration,
	ProjectFinalizeQuote,
	ProjectCompleted,
}

// TimelineIndex returns the position of s in ProjectTimeline, or -1.
func TimelineIndex(s ProjectStatus) int {
	for i, st := range ProjectTimeline {
		if st == s {
			return i
		}
	}
	return -1
}

// Room types a design request can be scoped to
type RoomType string

const (
	RoomLivingRoom RoomType = "living_room"
	RoomBedroom    RoomType = "bedroom"
	RoomKitchen    RoomType = "kitchen"
	RoomBathroom   RoomType = "bathroom"
	RoomDiningRoom RoomType = "dining_room"
	RoomOffice     RoomType = "office"
	RoomOther      RoomType = "other"
)

// Design Status values
type DesignStatus string

const (
	DesignDraft    DesignStatus = "draft"
	DesignPending  DesignStatus = "pending"
	DesignApproved DesignStatus = "approved"
	DesignRejected DesignStatus = "rejected"
	DesignArchived DesignStatus = "archived"
)

// Quote Status values
type QuoteStatus string

const (
	QuotePendingApproval QuoteStatus = "PENDING_APPROVAL"
	QuoteAdminApproved   QuoteStatus = "ADMIN_APPROVED"
	QuoteRejected        QuoteStatus = "REJECTED"
	QuoteSent            QuoteStatus = "SENT"
	QuoteAccepted        QuoteStatus = "ACCEPTED"
	QuoteExpired         QuoteStatus = "EXPIRED"
)

// User roles
const (
	RoleAdmin    = "admin"
	RoleDesigner = "designer"
	RoleUser     = "user"
)

// Chat sender roles
const (
	SenderDesigner = "designer"
	SenderCustomer = "customer"
	SenderSystem   = "system"
)

// Chat message types
const (
	MessageText    = "text"
	MessageImage   = "image"
	MessageFile    = "file"
	MessageProduct = "product"
	MessageDesign  = "design"
	MessageQuote   = "quote"
	MessageSystem  = "system"
)

// Chat message delivery states
const (
	MessageSent      = "sent"
	MessageDelivered = "delivered"
	MessageRead      = "read"
)

// Project sort keys
const (
	SortByDate     = "date"
	SortByName     = "name"
	SortByProgress = "progress"
)

// Valid values for validation
var ValidLeadStatuses = []LeadStatus{
	LeadNew, LeadConsulting, LeadQualified, LeadConverted, LeadCancelled,
}

var ValidPriorities = []Priority{
	PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent,
}

var ValidProjectStatuses = []ProjectStatus{
	ProjectConsultation, ProjectProductCuration, ProjectFinalizeQuote,
	ProjectCompleted, ProjectCancelled,
}

// ValidRoomTypes is also the canonical display order of room sections.
var ValidRoomTypes = []RoomType{
	RoomLivingRoom, RoomBedroom, RoomKitchen, RoomBathroom,
	RoomDiningRoom, RoomOffice, RoomOther,
}

var ValidMessageTypes = []string{
	MessageText, MessageImage, MessageFile, MessageProduct,
	MessageDesign, MessageQuote, MessageSystem,
}

var ValidRoles = []string{RoleAdmin, RoleDesigner, RoleUser}

// Helper functions for validation
func IsValidLeadStatus(status string) bool {
	for _, s := range ValidLeadStatuses {
		if string(s) == status {
			return true
		}
	}
	return false
}

func IsValidPriority(priority string) bool {
	for _, p := range ValidPriorities {
		if string(p) == priority {
			return true
		}
	}
	return false
}

func IsValidProjectStatus(status string) bool {
	for _, s := range ValidProjectStatuses {
		if string(s) == status {
			return true
		}
	}
	return false
}

func IsValidRoomType(room string) bool {
	for _, r := range ValidRoomTypes {
		if string(r) == room {
			return true
		}
	}
	return false
}

func IsValidMessageType(t string) bool {
	for _, m := range ValidMessageTypes {
		if m == t {
			return true
		}
	}
	return false
}

func IsValidRole(role string) bool {
	for _, r := range ValidRoles {
		if r == role {
			return true
		}
	}
	return false
}
