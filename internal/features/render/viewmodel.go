package render

import (
	"html"
	"regexp"
	"strings"

	"go-elms/internal/config"
	"go-elms/internal/features/letter"
)

var (
	blockTag = regexp.MustCompile(`(?i)</?(p|div|br|li|h[1-6])[^>]*>`)
	anyTag   = regexp.MustCompile(`<[^>]*>`)
	blankRun = regexp.MustCompile(`\n\s*\n+`)
)

// Paragraphs turns stored body text, which may carry simple markup, into
// plain paragraphs.
func Paragraphs(body string) []string {
	text := blockTag.ReplaceAllString(body, "\n\n")
	text = anyTag.ReplaceAllString(text, "")
	text = html.UnescapeString(text)
	text = strings.ReplaceAll(text, "\r\n", "\n")

	var out []string
	for _, p := range blankRun.Split(text, -1) {
		lines := strings.Split(strings.TrimSpace(p), "\n")
		for i := range lines {
			lines[i] = strings.TrimSpace(lines[i])
		}
		if joined := strings.Join(lines, "\n"); joined != "" {
			out = append(out, joined)
		}
	}
	return out
}

func BuildViewModel(l *letter.Letter, cfg *config.Config) *ViewModel {
	vm := &ViewModel{
		Reference:  l.Reference,
		Date:       l.CreatedAt,
		Subject:    l.Subject,
		Department: l.Department,
		Paragraphs: Paragraphs(l.Body),
		Organization: Organization{
			Name:    cfg.OrgName,
			Address: cfg.OrgAddress,
			Phone:   cfg.OrgPhone,
			Email:   cfg.OrgEmail,
		},
		Confidential:     l.IsConfidential,
		Status:           string(l.Status),
		VerificationLink: letter.VerificationLink(cfg.VerifyBaseURL, l.Reference),
	}
	vm.QRPayload = vm.VerificationLink

	for _, r := range l.Recipients {
		vm.Recipients = append(vm.Recipients, RecipientLine{Name: r.Name, Organization: r.Organization, Department: r.Department})
	}
	if l.Signature != nil {
		vm.Signed = true
		vm.Date = l.Signature.SignedAt
		vm.SigneeName = l.Signature.SignedBy
		vm.SigneeTitle = l.Signature.SignedByTitle
		vm.QRPayload = l.Signature.QRPayload
		vm.VerificationLink = l.Signature.VerificationLink
	}
	return vm
}
