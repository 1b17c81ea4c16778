package llm

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/joseph-ayodele/crewsheet/internal/core/fields"
	"github.com/joseph-ayodele/crewsheet/internal/entity"
)

const (
	maxRoleLen    = 60
	maxCompanyLen = 120
	maxNameLen    = 100
)

// SanitizeOptionalFields removes optional contact fields that don't meet the
// stricter schema so the document can still validate. A contact without a
// usable name is dropped entirely; everything else only loses OPTIONALS.
func SanitizeOptionalFields(doc []byte) ([]byte, []string, error) {
	var m struct {
		Contacts []map[string]any `json:"contacts"`
	}
	if err := json.Unmarshal(doc, &m); err != nil {
		return nil, nil, err
	}

	var dropped []string
	kept := make([]map[string]any, 0, len(m.Contacts))
	for i, c := range m.Contacts {
		drop := func(k string) {
			delete(c, k)
			dropped = append(dropped, fmt.Sprintf("contacts[%d].%s", i, k))
		}

		name, _ := c["name"].(string)
		if n := len(strings.TrimSpace(name)); n < 2 || n > maxNameLen {
			dropped = append(dropped, fmt.Sprintf("contacts[%d]", i))
			continue
		}
		if v, ok := c["email"].(string); ok && !fields.IsValidEmail(strings.ToLower(strings.TrimSpace(v))) {
			drop("email")
		}
		if v, ok := c["phone"].(string); ok && len(entity.DigitsOnly(v)) < 7 {
			drop("phone")
		}
		if v, ok := c["role"].(string); ok && len(v) > maxRoleLen {
			drop("role")
		}
		if v, ok := c["company"].(string); ok && len(v) > maxCompanyLen {
			drop("company")
		}
		if v, ok := c["confidence"].(float64); ok {
			switch {
			case v < 0:
				c["confidence"] = 0.0
			case v > 1 && v <= 100:
				// percentages
				c["confidence"] = v / 100
			case v > 100:
				drop("confidence")
			}
		}
		kept = append(kept, c)
	}

	b, err := json.Marshal(map[string]any{"contacts": kept})
	if err != nil {
		return nil, nil, err
	}
	return b, dropped, nil
}
