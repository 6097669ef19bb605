package template

import (
	"time"

	"go-elms/pkg/utils"
)

// DefaultTemplates are installed when the template repository is empty.
func DefaultTemplates(now time.Time) []*LetterTemplate {
	memo := &LetterTemplate{
		Name:        "Internal Memorandum",
		Category:    "Internal",
		Description: "Use for internal announcements, policy updates, and general communication across departments.",
		Body: `<h2>Internal Memorandum</h2>
<p><strong>To:</strong> {{recipient_name}}, {{recipient_department}}</p>
<p><strong>From:</strong> {{author_name}}, {{author_department}}</p>
<p><strong>Date:</strong> {{current_date}}</p>
<p><strong>Subject:</strong> {{subject_line}}</p>
<p>{{message_body}}</p>
<p>Please contact {{contact_person}} at {{contact_email}} for any clarifications.</p>`,
		Fields: []TemplateField{
			{Key: "recipient_name", Label: "Recipient Name", Required: true},
			{Key: "recipient_department", Label: "Recipient Department"},
			{Key: "author_name", Label: "Author Name", Required: true},
			{Key: "author_department", Label: "Author Department"},
			{Key: "current_date", Label: "Date", Required: true},
			{Key: "subject_line", Label: "Subject Line", Required: true},
			{Key: "message_body", Label: "Message Body", Required: true, Description: "Main content of the memo. You can include bullet points."},
			{Key: "contact_person", Label: "Contact Person"},
			{Key: "contact_email", Label: "Contact Email"},
		},
		Locale: "en-US",
	}

	external := &LetterTemplate{
		Name:        "External Outgoing Letter",
		Category:    "External",
		Description: "Formal communication with external organizations, partners, or clients.",
		Body: `<h2>Official Letter</h2>
<p><strong>Recipient:</strong> {{recipient_name}} ({{recipient_company}})</p>
<p><strong>Addressed On:</strong> {{current_date}}</p>
<p><strong>Reference:</strong> {{reference_number}}</p>
<p><strong>Subject:</strong> {{subject_line}}</p>
<p>{{message_body}}</p>
<p>Sincerely,</p>
<p>{{author_name}}<br/>{{author_title}}<br/>{{author_department}}</p>`,
		Fields: []TemplateField{
			{Key: "recipient_name", Label: "Recipient Name", Required: true},
			{Key: "recipient_company", Label: "Recipient Company"},
			{Key: "current_date", Label: "Date", Required: true},
			{Key: "reference_number", Label: "Reference Number", Required: true},
			{Key: "subject_line", Label: "Subject Line", Required: true},
			{Key: "message_body", Label: "Message Body", Required: true},
			{Key: "author_name", Label: "Author Name", Required: true},
			{Key: "author_title", Label: "Author Title"},
			{Key: "author_department", Label: "Author Department"},
		},
		Locale: "en-US",
	}

	out := []*LetterTemplate{memo, external}
	for _, tpl := range out {
		tpl.ID = utils.Slugify(tpl.Name)
		tpl.CreatedBy = "system"
		tpl.CreatedAt = now
		tpl.UpdatedAt = now
	}
	return out
}
