package delivery

import "time"

type EmailStatus string

const (
	EmailQueued EmailStatus = "queued"
	EmailSent   EmailStatus = "sent"
	EmailFailed EmailStatus = "failed"
)

// Email is one outbound message in the delivery log.
type Email struct {
	ID          string      `bson:"_id" json:"id"`
	LetterID    string      `bson:"letter_id" json:"letter_id"`
	Reference   string      `bson:"reference" json:"reference"`
	RecipientID string      `bson:"recipient_id" json:"recipient_id"`
	From        string      `bson:"from" json:"from"`
	To          []string    `bson:"to" json:"to"`
	Subject     string      `bson:"subject" json:"subject"`
	Attachment  string      `bson:"attachment,omitempty" json:"attachment,omitempty"`
	Status      EmailStatus `bson:"status" json:"status"`
	ErrorMsg    string      `bson:"error_message,omitempty" json:"error_message,omitempty"`
	CreatedAt   time.Time   `bson:"created_at" json:"created_at"`
	SentAt      *time.Time  `bson:"sent_at,omitempty" json:"sent_at,omitempty"`
}

// Message is what a Mailer puts on the wire.
type Message struct {
	From           string
	To             []string
	Subject        string
	TextBody       string
	AttachmentName string
	AttachmentType string
	Attachment     []byte
}

// Result summarises one delivery run.
type Result struct {
	Letters int `json:"letters"`
	Sent    int `json:"sent"`
	Failed  int `json:"failed"`
}

func (r *Result) add(o Result) {
	r.Letters += o.Letters
	r.Sent += o.Sent
	r.Failed += o.Failed
}
