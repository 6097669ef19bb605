package render

import (
	"bytes"
	"context"
	"encoding/base64"
	"html/template"
)

var a4Template = template.Must(template.New("letter").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.VM.Reference}}</title>
<style>
@page{size:A4;margin:20mm}
body{font-family:"Times New Roman",serif;font-size:12pt;color:#111;background:#eee;margin:0}
.page{width:210mm;min-height:297mm;margin:10mm auto;padding:20mm;box-sizing:border-box;background:#fff}
.org{border-bottom:2px solid #222;padding-bottom:8px;margin-bottom:16px}
.org h1{font-size:16pt;margin:0}
.meta{display:flex;justify-content:space-between;margin-bottom:16px}
.subject{font-weight:bold;margin:16px 0}
.confidential{color:#b00;font-weight:bold;letter-spacing:2px}
.sign{margin-top:40px;display:flex;justify-content:space-between;align-items:flex-end}
.sign img{width:30mm;height:30mm}
.draft{color:#888}
</style>
</head>
<body>
<div class="page">
  <div class="org">
    <h1>{{.VM.Organization.Name}}</h1>
    {{with .VM.Organization.Address}}<div>{{.}}</div>{{end}}
    {{with .VM.Organization.Phone}}<span>{{.}}</span>{{end}} {{with .VM.Organization.Email}}<span>{{.}}</span>{{end}}
  </div>
  {{if .VM.Confidential}}<div class="confidential">CONFIDENTIAL</div>{{end}}
  <div class="meta">
    <div>No. {{.VM.Reference}}</div>
    <div>{{.VM.Date.Format "02.01.2006"}}</div>
  </div>
  <div class="recipients">
    {{range .VM.Recipients}}<div>{{.Name}}{{with .Department}}, {{.}}{{end}}{{with .Organization}}, {{.}}{{end}}</div>{{end}}
  </div>
  <div class="subject">{{.VM.Subject}}</div>
  {{range .VM.Paragraphs}}<p>{{.}}</p>{{end}}
  <div class="sign">
    {{if .VM.Signed}}
    <div><div>{{.VM.SigneeTitle}}</div><div><strong>{{.VM.SigneeName}}</strong></div></div>
    {{if .QR}}<img src="{{.QR}}" alt="Verification code">{{end}}
    {{else}}
    <div class="draft">{{.VM.Status}}, not signed</div>
    {{end}}
  </div>
</div>
</body>
</html>
`))

type HTMLRenderer struct{}

func (HTMLRenderer) Render(ctx context.Context, vm *ViewModel) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data := struct {
		VM *ViewModel
		QR template.URL
	}{VM: vm}
	if vm.Signed && vm.QRPayload != "" {
		png, err := encodeQR(vm.QRPayload, qrSize)
		if err != nil {
			return nil, err
		}
		data.QR = template.URL("data:image/png;base64," + base64.StdEncoding.EncodeToString(png))
	}

	var buf bytes.Buffer
	if err := a4Template.Execute(&buf, data); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (HTMLRenderer) ContentType() string { return "text/html; charset=utf-8" }
func (HTMLRenderer) Extension() string   { return "html" }
