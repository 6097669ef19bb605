package condition

import (
	"fmt"
	"regexp"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Rule is a single field comparison.
type Rule struct {
	Field    string      `json:"field" bson:"field"`
	Operator string      `json:"operator" bson:"operator"`
	Value    interface{} `json:"value" bson:"value"`
}

// Group combines rules and nested groups with AND (default) or OR.
type Group struct {
	Operator string  `json:"operator,omitempty" bson:"operator,omitempty"`
	Rules    []Rule  `json:"rules,omitempty" bson:"rules,omitempty"`
	Groups   []Group `json:"groups,omitempty" bson:"groups,omitempty"`
}

func (g *Group) IsEmpty() bool {
	return g == nil || (len(g.Rules) == 0 && len(g.Groups) == 0)
}

func (g *Group) isOr() bool {
	return strings.ToUpper(g.Operator) == "OR"
}

type Compiler struct{}

func NewCompiler() *Compiler {
	return &Compiler{}
}

// Compile turns a group into a MongoDB filter document.
func (c *Compiler) Compile(group *Group) (bson.M, error) {
	if group.IsEmpty() {
		return bson.M{}, nil
	}

	var conditions []bson.M

	for _, rule := range group.Rules {
		cond, err := c.compileRule(rule)
		if err != nil {
			return nil, err
		}
		conditions = append(conditions, cond)
	}

	for i := range group.Groups {
		cond, err := c.Compile(&group.Groups[i])
		if err != nil {
			return nil, err
		}
		if len(cond) > 0 {
			conditions = append(conditions, cond)
		}
	}

	if len(conditions) == 0 {
		return bson.M{}, nil
	}

	op := "$and"
	if group.isOr() {
		op = "$or"
	}

	return bson.M{op: conditions}, nil
}

func (c *Compiler) compileRule(rule Rule) (bson.M, error) {
	field := rule.Field
	val := rule.Value

	switch rule.Operator {
	case "eq", "equals":
		return bson.M{field: bson.M{"$eq": val}}, nil
	case "ne", "not_equals":
		return bson.M{field: bson.M{"$ne": val}}, nil
	case "in":
		return bson.M{field: bson.M{"$in": val}}, nil
	case "nin":
		return bson.M{field: bson.M{"$nin": val}}, nil
	case "contains":
		if strVal, ok := val.(string); ok {
			return bson.M{field: bson.M{"$regex": primitive.Regex{Pattern: regexp.QuoteMeta(strVal), Options: "i"}}}, nil
		}
		return nil, fmt.Errorf("contains operator requires string value")
	case "startsWith", "starts_with":
		if strVal, ok := val.(string); ok {
			return bson.M{field: bson.M{"$regex": primitive.Regex{Pattern: "^" + regexp.QuoteMeta(strVal), Options: "i"}}}, nil
		}
		return nil, fmt.Errorf("startsWith operator requires string value")
	default:
		return nil, fmt.Errorf("unknown operator: %s", rule.Operator)
	}
}

// Evaluate matches a group against a flat field map in memory, with the
// same operator set Compile understands. Slice-valued fields match "eq"
// and "contains" when any element matches.
func (c *Compiler) Evaluate(group *Group, fields map[string]interface{}) (bool, error) {
	if group.IsEmpty() {
		return true, nil
	}
	or := group.isOr()

	for _, rule := range group.Rules {
		ok, err := c.evaluateRule(rule, fields)
		if err != nil {
			return false, err
		}
		if or && ok {
			return true, nil
		}
		if !or && !ok {
			return false, nil
		}
	}
	for i := range group.Groups {
		ok, err := c.Evaluate(&group.Groups[i], fields)
		if err != nil {
			return false, err
		}
		if or && ok {
			return true, nil
		}
		if !or && !ok {
			return false, nil
		}
	}
	return !or, nil
}

func (c *Compiler) evaluateRule(rule Rule, fields map[string]interface{}) (bool, error) {
	actual := fields[rule.Field]

	switch rule.Operator {
	case "eq", "equals":
		return anyMatch(actual, func(v interface{}) bool { return equal(v, rule.Value) }), nil
	case "ne", "not_equals":
		return !anyMatch(actual, func(v interface{}) bool { return equal(v, rule.Value) }), nil
	case "in":
		return inList(actual, rule.Value), nil
	case "nin":
		return !inList(actual, rule.Value), nil
	case "contains":
		strVal, ok := rule.Value.(string)
		if !ok {
			return false, fmt.Errorf("contains operator requires string value")
		}
		return anyMatch(actual, func(v interface{}) bool {
			return strings.Contains(strings.ToLower(fmt.Sprint(v)), strings.ToLower(strVal))
		}), nil
	case "startsWith", "starts_with":
		strVal, ok := rule.Value.(string)
		if !ok {
			return false, fmt.Errorf("startsWith operator requires string value")
		}
		return anyMatch(actual, func(v interface{}) bool {
			return strings.HasPrefix(strings.ToLower(fmt.Sprint(v)), strings.ToLower(strVal))
		}), nil
	default:
		return false, fmt.Errorf("unknown operator: %s", rule.Operator)
	}
}

func anyMatch(actual interface{}, pred func(interface{}) bool) bool {
	switch vals := actual.(type) {
	case []string:
		for _, v := range vals {
			if pred(v) {
				return true
			}
		}
		return false
	case []interface{}:
		for _, v := range vals {
			if pred(v) {
				return true
			}
		}
		return false
	default:
		return pred(actual)
	}
}

func inList(actual, list interface{}) bool {
	switch items := list.(type) {
	case []interface{}:
		for _, item := range items {
			if anyMatch(actual, func(v interface{}) bool { return equal(v, item) }) {
				return true
			}
		}
	case []string:
		for _, item := range items {
			if anyMatch(actual, func(v interface{}) bool { return equal(v, item) }) {
				return true
			}
		}
	}
	return false
}

// equal compares loosely so JSON-decoded config values match typed fields.
func equal(a, b interface{}) bool {
	return fmt.Sprint(a) == fmt.Sprint(b)
}
