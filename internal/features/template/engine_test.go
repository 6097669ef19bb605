package template

import (
	"testing"
	"time"

	apperrors "go-elms/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolve(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		values map[string]string
		want   string
	}{
		{"simple", "Hello {{name}}", map[string]string{"name": "Nodira"}, "Hello Nodira"},
		{"whitespace tolerated", "Hello {{  name }}!", map[string]string{"name": "Nodira"}, "Hello Nodira!"},
		{"dotted keys", "{{author.title}}", map[string]string{"author.title": "Direktor"}, "Direktor"},
		{"unknown key becomes empty", "A{{missing}}B", map[string]string{}, "AB"},
		{"nil values", "{{a}} and {{b}}", nil, " and "},
		{"repeated key", "{{x}}-{{x}}", map[string]string{"x": "1"}, "1-1"},
		{"no placeholders", "Plain text {not} {{ }} $x", map[string]string{"x": "y"}, "Plain text {not} {{ }} $x"},
		{"single braces untouched", "{name}", map[string]string{"name": "n"}, "{name}"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Resolve(tt.body, tt.values))
		})
	}
}

func TestResolveIdempotent(t *testing.T) {
	values := map[string]string{"subject_line": "Policy Update", "message_body": "Body"}
	for _, body := range []string{
		"Subject: {{subject_line}}\n{{message_body}} {{other}}",
		"no placeholders here",
		"",
	} {
		once := Resolve(body, values)
		assert.Equal(t, once, Resolve(once, values))
	}
}

func TestResolveScenario(t *testing.T) {
	body := "<p>{{subject_line}}</p><p>{{message_body}}</p>"
	got := Resolve(body, map[string]string{"subject_line": "Policy Update"})
	assert.Contains(t, got, "Policy Update")
	assert.Equal(t, "<p>Policy Update</p><p></p>", got)
}

func TestExtractFields(t *testing.T) {
	got := ExtractFields("{{b}} {{ a }} {{b}} {{c.d}} {{b}}")
	assert.Equal(t, []string{"b", "a", "c.d"}, got)
	assert.Empty(t, ExtractFields("nothing"))
}

func TestValidateDefinition(t *testing.T) {
	valid := func() *LetterTemplate {
		return &LetterTemplate{
			Name: "Memo",
			Body: "{{subject_line}} {{message_body}}",
			Fields: []TemplateField{
				{Key: "subject_line", Required: true},
				{Key: "message_body"},
			},
		}
	}

	require.NoError(t, ValidateDefinition(valid()))

	tests := []struct {
		name   string
		mutate func(*LetterTemplate)
	}{
		{"empty name", func(t *LetterTemplate) { t.Name = " " }},
		{"empty body", func(t *LetterTemplate) { t.Body = "" }},
		{"undeclared placeholder", func(t *LetterTemplate) { t.Body += " {{extra}}" }},
		{"unused declaration", func(t *LetterTemplate) { t.Fields = append(t.Fields, TemplateField{Key: "unused"}) }},
		{"duplicate declaration", func(t *LetterTemplate) { t.Fields = append(t.Fields, TemplateField{Key: "subject_line"}) }},
		{"bad key", func(t *LetterTemplate) { t.Fields[0].Key = "subject line" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tpl := valid()
			tt.mutate(tpl)
			err := ValidateDefinition(tpl)
			assert.True(t, apperrors.IsValidation(err), "got %v", err)
		})
	}
}

func TestValidateValuesAndMissing(t *testing.T) {
	tpl := &LetterTemplate{Fields: []TemplateField{
		{Key: "subject_line", Required: true},
		{Key: "message_body", Required: true},
		{Key: "contact_person"},
	}}

	assert.NoError(t, ValidateValues(tpl, map[string]string{"subject_line": "x"}))
	err := ValidateValues(tpl, map[string]string{"subject_line": "x", "zzz": "1", "aaa": "2"})
	assert.True(t, apperrors.IsValidation(err))
	assert.Contains(t, err.Error(), "aaa, zzz")

	assert.Equal(t, []string{"message_body"}, MissingRequired(tpl, map[string]string{"subject_line": "x", "message_body": "  "}))
	assert.Nil(t, MissingRequired(tpl, map[string]string{"subject_line": "x", "message_body": "y"}))
}

func TestDefaultTemplatesAreValid(t *testing.T) {
	defaults := DefaultTemplates(time.Now())
	require.Len(t, defaults, 2)
	for _, tpl := range defaults {
		assert.NoError(t, ValidateDefinition(tpl), tpl.Name)
		assert.Equal(t, "en-US", tpl.Locale)
	}
	assert.Equal(t, "internal-memorandum", defaults[0].ID)
	assert.Equal(t, "external-outgoing-letter", defaults[1].ID)
}
