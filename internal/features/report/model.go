package report

// Metrics summarizes the letters an actor can see.
type Metrics struct {
	TotalLetters             int            `json:"total_letters"`
	ByStatus                 map[string]int `json:"by_status"`
	PendingApprovals         int            `json:"pending_approvals"`
	AverageApprovalTimeHours float64        `json:"average_approval_time_hours"`
	HighPriorityCount        int            `json:"high_priority_count"`
	ConfidentialCount        int            `json:"confidential_count"`
	SignedToday              int            `json:"signed_today"`
}

// ExportColumns is the header row of the letter register export.
var ExportColumns = []string{"Reference", "Subject", "Department", "Status", "Priority", "Created", "Submitted", "Approved", "Signed"}
