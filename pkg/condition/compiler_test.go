package condition

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
)

func TestCompile(t *testing.T) {
	c := NewCompiler()

	filter, err := c.Compile(&Group{Rules: []Rule{
		{Field: "status", Operator: "eq", Value: "Draft"},
		{Field: "created_by", Operator: "eq", Value: "u-1"},
	}})
	require.NoError(t, err)
	and, ok := filter["$and"].([]bson.M)
	require.True(t, ok)
	assert.Len(t, and, 2)

	empty, err := c.Compile(nil)
	require.NoError(t, err)
	assert.Empty(t, empty)

	_, err = c.Compile(&Group{Rules: []Rule{{Field: "x", Operator: "between", Value: 1}}})
	assert.Error(t, err)
}

func TestEvaluate(t *testing.T) {
	c := NewCompiler()
	fields := map[string]interface{}{
		"department":   "Finance",
		"priority":     "High",
		"confidential": true,
		"tags":         []string{"budget", "q3"},
	}

	tests := []struct {
		name  string
		group *Group
		want  bool
	}{
		{"empty group matches", &Group{}, true},
		{"equals", &Group{Rules: []Rule{{Field: "department", Operator: "equals", Value: "Finance"}}}, true},
		{"bool compared loosely", &Group{Rules: []Rule{{Field: "confidential", Operator: "eq", Value: "true"}}}, true},
		{"slice contains element", &Group{Rules: []Rule{{Field: "tags", Operator: "eq", Value: "q3"}}}, true},
		{"and fails on one rule", &Group{Rules: []Rule{
			{Field: "department", Operator: "eq", Value: "Finance"},
			{Field: "priority", Operator: "eq", Value: "Low"},
		}}, false},
		{"or passes on one rule", &Group{Operator: "OR", Rules: []Rule{
			{Field: "department", Operator: "eq", Value: "Legal"},
			{Field: "priority", Operator: "eq", Value: "High"},
		}}, true},
		{"in list", &Group{Rules: []Rule{{Field: "priority", Operator: "in", Value: []interface{}{"High", "Normal"}}}}, true},
		{"nested group", &Group{Groups: []Group{{Operator: "OR", Rules: []Rule{
			{Field: "department", Operator: "startsWith", Value: "fin"},
		}}}}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := c.Evaluate(tt.group, fields)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
