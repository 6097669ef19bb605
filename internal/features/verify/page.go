package verify

import (
	"html/template"
	"io"
)

var pageTemplate = template.Must(template.New("verify").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>Document verification</title>
<style>
body{font-family:Helvetica,Arial,sans-serif;background:#f4f5f7;margin:0;padding:40px}
.card{max-width:560px;margin:auto;background:#fff;border-radius:8px;padding:32px;box-shadow:0 1px 4px rgba(0,0,0,.1)}
.ok{color:#1a7f37}.bad{color:#cf222e}
dt{font-weight:bold;margin-top:12px}dd{margin:4px 0 0 0}
</style>
</head>
<body>
<div class="card">
{{if .Found}}
  {{if .Result.Valid}}<h1 class="ok">Authentic document</h1>{{else}}<h1 class="bad">Document could not be verified</h1>{{end}}
  <dl>
    <dt>Reference</dt><dd>{{.Result.Reference}}</dd>
    <dt>Subject</dt><dd>{{.Result.Subject}}</dd>
    <dt>Date</dt><dd>{{.Result.Date.Format "02.01.2006"}}</dd>
    {{if .Result.Organization}}<dt>Organization</dt><dd>{{.Result.Organization}}</dd>{{end}}
    {{if .Result.SigneeName}}<dt>Signed by</dt><dd>{{.Result.SigneeName}}{{if .Result.SigneeTitle}}, {{.Result.SigneeTitle}}{{end}}</dd>{{end}}
    <dt>Status</dt><dd>{{.Result.Status}}</dd>
  </dl>
{{else}}
  <h1 class="bad">Document not found</h1>
  <p>No letter is registered under {{.Key}}.</p>
{{end}}
</div>
</body>
</html>
`))

type pageData struct {
	Key    string
	Found  bool
	Result *VerificationResult
}

func renderPage(w io.Writer, key string, res *VerificationResult) error {
	return pageTemplate.Execute(w, pageData{Key: key, Found: res != nil, Result: res})
}
