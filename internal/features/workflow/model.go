package workflow

import (
	"time"

	"go-elms/internal/features/letter"
	"go-elms/pkg/condition"
)

type ChainStep struct {
	Level         int    `json:"level"`
	ApproverName  string `json:"approver_name"`
	ApproverEmail string `json:"approver_email"`
	ApproverRole  string `json:"approver_role"`
}

// ApprovalChain is a named, ordered list of approval levels. Criteria select
// the chain for a letter; chains are tried by descending Priority.
type ApprovalChain struct {
	Name        string           `json:"name"`
	Description string           `json:"description,omitempty"`
	Priority    int              `json:"priority"`
	Criteria    *condition.Group `json:"criteria,omitempty"`
	Steps       []ChainStep      `json:"steps"`
}

type Outcome string

const (
	OutcomeApproved Outcome = "Approved"
	OutcomeRejected Outcome = "Rejected"
)

type RecipientInput struct {
	Name           string                `json:"name"`
	Email          string                `json:"email"`
	Organization   string                `json:"organization"`
	Department     string                `json:"department"`
	DeliveryMethod letter.DeliveryMethod `json:"delivery_method"`
	ResponseDue    *time.Time            `json:"response_due,omitempty"`
}

type CreateLetterInput struct {
	Subject        string            `json:"subject"`
	Department     string            `json:"department"`
	TemplateID     string            `json:"template_id"`
	MergeValues    map[string]string `json:"merge_values"`
	Body           string            `json:"body"` // only for letters without a template
	Tags           []string          `json:"tags"`
	Priority       letter.Priority   `json:"priority"`
	IsConfidential bool              `json:"is_confidential"`
	Recipients     []RecipientInput  `json:"recipients"`
}

// EditDraftInput changes only the fields that are set.
type EditDraftInput struct {
	Subject         *string            `json:"subject,omitempty"`
	Department      *string            `json:"department,omitempty"`
	Body            *string            `json:"body,omitempty"`
	MergeValues     map[string]string  `json:"merge_values,omitempty"`
	Tags            *[]string          `json:"tags,omitempty"`
	Priority        *letter.Priority   `json:"priority,omitempty"`
	IsConfidential  *bool              `json:"is_confidential,omitempty"`
	Recipients      *[]RecipientInput  `json:"recipients,omitempty"`
	ExpectedVersion int64              `json:"version,omitempty"`
}

type StepAction struct {
	Level           int     `json:"level"`
	Outcome         Outcome `json:"outcome"`
	Comment         string  `json:"comment"`
	ExpectedVersion int64   `json:"version,omitempty"`
}

type SignRequest struct {
	Note            string `json:"note"`
	ExpectedVersion int64  `json:"version,omitempty"`
}

type SubmitRequest struct {
	ExpectedVersion int64 `json:"version,omitempty"`
}
