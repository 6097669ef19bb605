package verify

import "time"

// VerificationResult is the public view of a letter. It never carries the
// body or recipients.
type VerificationResult struct {
	Reference    string    `json:"reference"`
	Subject      string    `json:"subject"`
	Date         time.Time `json:"date"`
	Organization string    `json:"organization"`
	SigneeName   string    `json:"signee_name,omitempty"`
	SigneeTitle  string    `json:"signee_title,omitempty"`
	Status       string    `json:"status"`
	Valid        bool      `json:"valid"`
}

const RedactedSubject = "Confidential"
