package llm

// BuildContactsJSONSchema returns the response contract as a JSON-Schema map.
// It is sent to the model as a structured output hint and used locally to validate.
func BuildContactsJSONSchema() map[string]any {
	contact := map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties": map[string]any{
			"name":       map[string]any{"type": "string", "minLength": 2, "maxLength": 100},
			"role":       map[string]any{"type": "string", "maxLength": 60},
			"email":      map[string]any{"type": "string", "maxLength": 100, "pattern": `^[A-Za-z0-9][A-Za-z0-9._%+-]*@[A-Za-z0-9][A-Za-z0-9.-]*\.[A-Za-z]{2,}$`},
			"phone":      map[string]any{"type": "string", "pattern": `(?:\d\D*){7,}`},
			"company":    map[string]any{"type": "string", "maxLength": 120},
			"confidence": map[string]any{"type": "number", "minimum": 0.0, "maximum": 1.0},
			"source":     map[string]any{"type": "string"},
		},
		"required": []string{"name"},
	}
	return map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties": map[string]any{
			"contacts": map[string]any{
				"type":  "array",
				"items": contact,
			},
		},
		"required": []string{"contacts"},
	}
}
