package template

import "time"

type TemplateField struct {
	Key         string `json:"key" bson:"key"`
	Label       string `json:"label" bson:"label"`
	Required    bool   `json:"required" bson:"required"`
	Description string `json:"description,omitempty" bson:"description,omitempty"`
}

type LetterTemplate struct {
	ID          string          `json:"id" bson:"_id"`
	Name        string          `json:"name" bson:"name"`
	Category    string          `json:"category" bson:"category"`
	Description string          `json:"description" bson:"description"`
	Body        string          `json:"body" bson:"body"`
	Fields      []TemplateField `json:"fields" bson:"fields"`
	Locale      string          `json:"locale" bson:"locale"`
	CreatedBy   string          `json:"created_by,omitempty" bson:"created_by,omitempty"`
	CreatedAt   time.Time       `json:"created_at" bson:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at" bson:"updated_at"`
}

// Field returns the declared field with the given key.
func (t *LetterTemplate) Field(key string) (TemplateField, bool) {
	for _, f := range t.Fields {
		if f.Key == key {
			return f, true
		}
	}
	return TemplateField{}, false
}

func (t *LetterTemplate) clone() *LetterTemplate {
	c := *t
	c.Fields = append([]TemplateField(nil), t.Fields...)
	return &c
}

type PreviewRequest struct {
	Values map[string]string `json:"values"`
}

type PreviewResponse struct {
	Body    string   `json:"body"`
	Missing []string `json:"missing"`
}
