package workflow

import (
	"context"
	"fmt"

	"go-elms/internal/features/letter"

	"github.com/d5/tengo/v2"
	"github.com/d5/tengo/v2/stdlib"
)

// ScriptRouter runs a Tengo script that may assign a chain name to the
// global "chain". The script sees the letter as the map "letter".
type ScriptRouter struct {
	source string
}

func NewScriptRouter(source string) (*ScriptRouter, error) {
	r := &ScriptRouter{source: source}
	if _, err := r.compile(&letter.Letter{}); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *ScriptRouter) compile(l *letter.Letter) (*tengo.Compiled, error) {
	script := tengo.NewScript([]byte(r.source))
	script.SetImports(stdlib.GetModuleMap("text", "fmt"))

	tags := make([]interface{}, 0, len(l.Tags))
	for _, t := range l.Tags {
		tags = append(tags, t)
	}
	if err := script.Add("letter", map[string]interface{}{
		"department":   l.Department,
		"priority":     string(l.Priority),
		"confidential": l.IsConfidential,
		"tags":         tags,
		"template_id":  l.TemplateID,
		"subject":      l.Subject,
	}); err != nil {
		return nil, err
	}
	if err := script.Add("chain", ""); err != nil {
		return nil, err
	}

	compiled, err := script.Compile()
	if err != nil {
		return nil, fmt.Errorf("failed to compile routing script: %w", err)
	}
	return compiled, nil
}

// Route returns the chain name chosen by the script, or "" for no opinion.
func (r *ScriptRouter) Route(ctx context.Context, l *letter.Letter) (string, error) {
	compiled, err := r.compile(l)
	if err != nil {
		return "", err
	}
	if err := compiled.RunContext(ctx); err != nil {
		return "", fmt.Errorf("failed to run routing script: %w", err)
	}
	v := compiled.Get("chain")
	if v == nil || v.IsUndefined() {
		return "", nil
	}
	return v.String(), nil
}
