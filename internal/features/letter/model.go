package letter

import (
	"time"
)

type Status string

const (
	StatusDraft           Status = "Draft"
	StatusPendingApproval Status = "Pending Approval"
	StatusApproved        Status = "Approved"
	StatusRejected        Status = "Rejected"
	StatusSigned          Status = "Signed"
)

// AllStatuses in lifecycle order.
var AllStatuses = []Status{StatusDraft, StatusPendingApproval, StatusApproved, StatusRejected, StatusSigned}

type StepStatus string

const (
	StepPending  StepStatus = "Pending"
	StepApproved StepStatus = "Approved"
	StepRejected StepStatus = "Rejected"
)

type Priority string

const (
	PriorityLow    Priority = "Low"
	PriorityNormal Priority = "Normal"
	PriorityHigh   Priority = "High"
)

func (p Priority) Valid() bool {
	return p == PriorityLow || p == PriorityNormal || p == PriorityHigh
}

type HistoryAction string

const (
	ActionCreated   HistoryAction = "Created"
	ActionSubmitted HistoryAction = "Submitted"
	ActionApproved  HistoryAction = "Approved"
	ActionRejected  HistoryAction = "Rejected"
	ActionSigned    HistoryAction = "Signed"
	ActionUpdated   HistoryAction = "Updated"
)

type DeliveryMethod string

const (
	DeliveryEmail    DeliveryMethod = "Email"
	DeliveryPostal   DeliveryMethod = "Postal"
	DeliveryInternal DeliveryMethod = "Internal"
)

func (m DeliveryMethod) Valid() bool {
	return m == DeliveryEmail || m == DeliveryPostal || m == DeliveryInternal
}

type DeliveryStatus string

const (
	DeliveryPending  DeliveryStatus = "Pending"
	DeliverySent     DeliveryStatus = "Sent"
	DeliveryReceived DeliveryStatus = "Received"
)

type WorkflowStep struct {
	ID            string     `json:"id" bson:"id"`
	Level         int        `json:"level" bson:"level"`
	ApproverName  string     `json:"approver_name" bson:"approver_name"`
	ApproverEmail string     `json:"approver_email" bson:"approver_email"`
	ApproverRole  string     `json:"approver_role" bson:"approver_role"`
	Status        StepStatus `json:"status" bson:"status"`
	ActedAt       *time.Time `json:"acted_at,omitempty" bson:"acted_at,omitempty"`
	ActedBy       string     `json:"acted_by,omitempty" bson:"acted_by,omitempty"`
	Comments      string     `json:"comments,omitempty" bson:"comments,omitempty"`
}

type HistoryEvent struct {
	ID        string            `json:"id" bson:"id"`
	Action    HistoryAction     `json:"action" bson:"action"`
	Actor     string            `json:"actor" bson:"actor"`
	ActorID   string            `json:"actor_id,omitempty" bson:"actor_id,omitempty"`
	Note      string            `json:"note,omitempty" bson:"note,omitempty"`
	Timestamp time.Time         `json:"timestamp" bson:"timestamp"`
	Metadata  map[string]string `json:"metadata,omitempty" bson:"metadata,omitempty"`
}

type Recipient struct {
	ID             string         `json:"id" bson:"id"`
	Name           string         `json:"name" bson:"name"`
	Email          string         `json:"email,omitempty" bson:"email,omitempty"`
	Organization   string         `json:"organization,omitempty" bson:"organization,omitempty"`
	Department     string         `json:"department,omitempty" bson:"department,omitempty"`
	DeliveryMethod DeliveryMethod `json:"delivery_method" bson:"delivery_method"`
	Status         DeliveryStatus `json:"status" bson:"status"`
	SentAt         *time.Time     `json:"sent_at,omitempty" bson:"sent_at,omitempty"`
	ResponseDue    *time.Time     `json:"response_due,omitempty" bson:"response_due,omitempty"`
}

type Signature struct {
	ID               string    `json:"id" bson:"id"`
	SignedBy         string    `json:"signed_by" bson:"signed_by"`
	SignedByID       string    `json:"signed_by_id" bson:"signed_by_id"`
	SignedByTitle    string    `json:"signed_by_title,omitempty" bson:"signed_by_title,omitempty"`
	SignedAt         time.Time `json:"signed_at" bson:"signed_at"`
	VerificationLink string    `json:"verification_link" bson:"verification_link"`
	QRPayload        string    `json:"qr_payload,omitempty" bson:"qr_payload,omitempty"`
	Checksum         string    `json:"checksum" bson:"checksum"`
	Note             string    `json:"note,omitempty" bson:"note,omitempty"`
}

type Letter struct {
	ID             string            `json:"id" bson:"_id"`
	Reference      string            `json:"reference" bson:"reference"`
	Subject        string            `json:"subject" bson:"subject"`
	Department     string            `json:"department" bson:"department"`
	Body           string            `json:"body" bson:"body"`
	Tags           []string          `json:"tags" bson:"tags"`
	Priority       Priority          `json:"priority" bson:"priority"`
	IsConfidential bool              `json:"is_confidential" bson:"is_confidential"`
	TemplateID     string            `json:"template_id,omitempty" bson:"template_id,omitempty"`
	TemplateName   string            `json:"template_name,omitempty" bson:"template_name,omitempty"`
	MergeValues    map[string]string `json:"merge_values" bson:"merge_values"`

	Status      Status     `json:"status" bson:"status"`
	CreatedBy   string     `json:"created_by" bson:"created_by"`
	CreatedAt   time.Time  `json:"created_at" bson:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at" bson:"updated_at"`
	SubmittedAt *time.Time `json:"submitted_at,omitempty" bson:"submitted_at,omitempty"`
	ApprovedAt  *time.Time `json:"approved_at,omitempty" bson:"approved_at,omitempty"`
	SignedAt    *time.Time `json:"signed_at,omitempty" bson:"signed_at,omitempty"`

	ApprovalChain    string         `json:"approval_chain,omitempty" bson:"approval_chain,omitempty"`
	Workflow         []WorkflowStep `json:"workflow" bson:"workflow"`
	CurrentStepIndex int            `json:"current_step_index" bson:"current_step_index"`
	History          []HistoryEvent `json:"history" bson:"history"`
	Recipients       []Recipient    `json:"recipients" bson:"recipients"`
	Signature        *Signature     `json:"signature,omitempty" bson:"signature,omitempty"`

	Version int64 `json:"version" bson:"version"`
}

// Clone returns a deep copy; stores never hand out their own records.
func (l *Letter) Clone() *Letter {
	if l == nil {
		return nil
	}
	c := *l
	c.Tags = append([]string(nil), l.Tags...)
	if l.MergeValues != nil {
		c.MergeValues = make(map[string]string, len(l.MergeValues))
		for k, v := range l.MergeValues {
			c.MergeValues[k] = v
		}
	}
	c.SubmittedAt = cloneTime(l.SubmittedAt)
	c.ApprovedAt = cloneTime(l.ApprovedAt)
	c.SignedAt = cloneTime(l.SignedAt)

	c.Workflow = make([]WorkflowStep, len(l.Workflow))
	for i, s := range l.Workflow {
		s.ActedAt = cloneTime(s.ActedAt)
		c.Workflow[i] = s
	}
	c.History = make([]HistoryEvent, len(l.History))
	for i, h := range l.History {
		if h.Metadata != nil {
			md := make(map[string]string, len(h.Metadata))
			for k, v := range h.Metadata {
				md[k] = v
			}
			h.Metadata = md
		}
		c.History[i] = h
	}
	c.Recipients = make([]Recipient, len(l.Recipients))
	for i, r := range l.Recipients {
		r.SentAt = cloneTime(r.SentAt)
		r.ResponseDue = cloneTime(r.ResponseDue)
		c.Recipients[i] = r
	}
	if l.Signature != nil {
		sig := *l.Signature
		c.Signature = &sig
	}
	return &c
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}

// CurrentStep returns the first step that is not yet approved, if any.
func (l *Letter) CurrentStep() (*WorkflowStep, bool) {
	if l.CurrentStepIndex < len(l.Workflow) {
		return &l.Workflow[l.CurrentStepIndex], true
	}
	return nil, false
}

// StepByLevel returns the index of the step with the given level or -1.
func (l *Letter) StepByLevel(level int) int {
	for i := range l.Workflow {
		if l.Workflow[i].Level == level {
			return i
		}
	}
	return -1
}

// PendingEmailRecipients lists recipients still waiting for email delivery.
func (l *Letter) PendingEmailRecipients() []Recipient {
	var out []Recipient
	for _, r := range l.Recipients {
		if r.DeliveryMethod == DeliveryEmail && r.Status == DeliveryPending && r.Email != "" {
			out = append(out, r)
		}
	}
	return out
}
