package letter

import (
	"strings"
	"time"

	"go-elms/pkg/canonhash"
)

type signedRecipient struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

type signedContent struct {
	Reference   string            `json:"reference"`
	Subject     string            `json:"subject"`
	Department  string            `json:"department"`
	Body        string            `json:"body"`
	MergeValues map[string]string `json:"merge_values"`
	Recipients  []signedRecipient `json:"recipients"`
	ApprovedAt  string            `json:"approved_at"`
}

// Checksum digests the content a signature attests to. Timestamps are
// normalized to UTC milliseconds so the value survives a database round trip.
func Checksum(l *Letter) (string, error) {
	content := signedContent{
		Reference:   l.Reference,
		Subject:     l.Subject,
		Department:  l.Department,
		Body:        l.Body,
		MergeValues: l.MergeValues,
		Recipients:  make([]signedRecipient, 0, len(l.Recipients)),
	}
	if content.MergeValues == nil {
		content.MergeValues = map[string]string{}
	}
	for _, r := range l.Recipients {
		content.Recipients = append(content.Recipients, signedRecipient{Name: r.Name, Email: r.Email})
	}
	if l.ApprovedAt != nil {
		content.ApprovedAt = l.ApprovedAt.UTC().Truncate(time.Millisecond).Format(time.RFC3339Nano)
	}

	sum, _, err := canonhash.SumObject(content)
	return sum, err
}

// VerificationLink is the public URL printed on, and encoded into the QR of, a signed letter.
func VerificationLink(baseURL, reference string) string {
	return strings.TrimRight(baseURL, "/") + "/verify/" + reference
}
