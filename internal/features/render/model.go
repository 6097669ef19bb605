package render

import "time"

type Format string

const (
	FormatHTML Format = "html"
	FormatPDF  Format = "pdf"
	FormatQR   Format = "qr"
)

type Organization struct {
	Name    string
	Address string
	Phone   string
	Email   string
}

type RecipientLine struct {
	Name         string
	Organization string
	Department   string
}

// ViewModel is the single source every renderer reads from.
type ViewModel struct {
	Reference        string
	Date             time.Time
	Subject          string
	Department       string
	Recipients       []RecipientLine
	Paragraphs       []string
	SigneeName       string
	SigneeTitle      string
	Organization     Organization
	QRPayload        string
	VerificationLink string
	Confidential     bool
	Status           string
	Signed           bool
}

// Document is a finished rendering.
type Document struct {
	Format      Format
	ContentType string
	Filename    string
	Data        []byte
}
