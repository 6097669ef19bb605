package template

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	apperrors "go-elms/pkg/errors"
)

var (
	placeholderPattern = regexp.MustCompile(`\{\{\s*([A-Za-z0-9_.]+)\s*\}\}`)
	fieldKeyPattern    = regexp.MustCompile(`^[A-Za-z0-9_.]+$`)
)

// Resolve substitutes every {{ key }} with values[key], or "" when the key is
// absent. Nothing else in body is interpreted.
func Resolve(body string, values map[string]string) string {
	return placeholderPattern.ReplaceAllStringFunc(body, func(match string) string {
		sub := placeholderPattern.FindStringSubmatch(match)
		return values[sub[1]]
	})
}

// ExtractFields returns the distinct placeholder keys in order of first appearance.
func ExtractFields(body string) []string {
	matches := placeholderPattern.FindAllStringSubmatch(body, -1)
	seen := make(map[string]bool, len(matches))
	keys := make([]string, 0, len(matches))
	for _, m := range matches {
		if !seen[m[1]] {
			seen[m[1]] = true
			keys = append(keys, m[1])
		}
	}
	return keys
}

// ValidateDefinition checks a template before it is stored: name and body
// present, declared field keys unique and well formed, and the declared
// keys equal to the placeholders found in the body.
func ValidateDefinition(tpl *LetterTemplate) error {
	if strings.TrimSpace(tpl.Name) == "" {
		return apperrors.NewValidationError("name", "template name is required")
	}
	if strings.TrimSpace(tpl.Body) == "" {
		return apperrors.NewValidationError("body", "template body is required")
	}

	declared := make(map[string]bool, len(tpl.Fields))
	for _, f := range tpl.Fields {
		if !fieldKeyPattern.MatchString(f.Key) {
			return apperrors.NewValidationError("fields", fmt.Sprintf("invalid field key %q", f.Key))
		}
		if declared[f.Key] {
			return apperrors.NewValidationError("fields", fmt.Sprintf("field %q declared twice", f.Key))
		}
		declared[f.Key] = true
	}

	var undeclared []string
	used := make(map[string]bool)
	for _, key := range ExtractFields(tpl.Body) {
		used[key] = true
		if !declared[key] {
			undeclared = append(undeclared, key)
		}
	}
	if len(undeclared) > 0 {
		return apperrors.NewFieldsValidationError(undeclared, "placeholders used in body are not declared as fields")
	}

	var unused []string
	for _, f := range tpl.Fields {
		if !used[f.Key] {
			unused = append(unused, f.Key)
		}
	}
	if len(unused) > 0 {
		return apperrors.NewFieldsValidationError(unused, "declared fields do not appear in body")
	}
	return nil
}

// ValidateValues rejects value keys the template does not declare.
func ValidateValues(tpl *LetterTemplate, values map[string]string) error {
	var unknown []string
	for key := range values {
		if _, ok := tpl.Field(key); !ok {
			unknown = append(unknown, key)
		}
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return apperrors.NewFieldsValidationError(unknown, "merge values reference undeclared fields")
	}
	return nil
}

// MissingRequired lists required fields whose value is absent or blank, in declaration order.
func MissingRequired(tpl *LetterTemplate, values map[string]string) []string {
	var missing []string
	for _, f := range tpl.Fields {
		if f.Required && strings.TrimSpace(values[f.Key]) == "" {
			missing = append(missing, f.Key)
		}
	}
	return missing
}
