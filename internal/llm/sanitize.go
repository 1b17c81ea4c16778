package llm

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"maps"
	"regexp"
	"slices"
	"strconv"
	"strings"
)

var reCodeFence = regexp.MustCompile("(?s)^\\s*```(?:json|JSON)?\\s*(.*?)\\s*```\\s*$")

var (
	listSynonyms  = []string{"people", "crew", "results", "data", "items"}
	fieldSynonyms = map[string]string{
		"full_name":     "name",
		"fullname":      "name",
		"title":         "role",
		"position":      "role",
		"job":           "role",
		"job_title":     "role",
		"phone_number":  "phone",
		"mobile":        "phone",
		"cell":          "phone",
		"tel":           "phone",
		"email_address": "email",
		"mail":          "email",
		"organization":  "company",
		"agency":        "company",
		"company_name":  "company",
		"score":         "confidence",
	}
	synonymOrder = slices.Sorted(maps.Keys(fieldSynonyms))
	stringFields = []string{"name", "role", "email", "phone", "company", "source"}
)

// NormalizeAndSanitizeJSON
// - Strips markdown code fences
// - Wraps a bare array as {"contacts": [...]}
// - Renames known synonyms (people -> contacts, full_name -> name, ...)
// - Drops null/empty values, coerces numeric phones and string confidences
// - Removes unknown keys (strict additionalProperties = false friendliness)
func NormalizeAndSanitizeJSON(raw []byte, logger *slog.Logger) ([]byte, []string, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if m := reCodeFence.FindSubmatch(raw); m != nil {
		raw = m[1]
	}

	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, nil, fmt.Errorf("sanitize: decode: %w", err)
	}

	changed := make([]string, 0, 8)
	var list []any
	switch t := doc.(type) {
	case []any:
		list = t
		changed = append(changed, "array->contacts")
	case map[string]any:
		if v, exists := t["contacts"]; exists {
			switch arr := v.(type) {
			case []any:
				list = arr
			case nil:
				list = []any{}
				changed = append(changed, "contacts(null)")
			default:
				return nil, nil, fmt.Errorf("sanitize: contacts is %T", v)
			}
			break
		}
		for _, k := range listSynonyms {
			if v, ok := t[k].([]any); ok {
				list = v
				changed = append(changed, k+"->contacts")
				break
			}
		}
		if list == nil {
			return nil, nil, fmt.Errorf("sanitize: no contacts list")
		}
	default:
		return nil, nil, fmt.Errorf("sanitize: unexpected top-level %T", doc)
	}

	contacts := make([]any, 0, len(list))
	for i, item := range list {
		m, ok := item.(map[string]any)
		if !ok {
			changed = append(changed, fmt.Sprintf("contacts[%d](type)", i))
			continue
		}
		contacts = append(contacts, sanitizeContact(m, i, &changed))
	}

	out, err := json.Marshal(map[string]any{"contacts": contacts})
	if err != nil {
		return nil, changed, fmt.Errorf("sanitize: encode: %w", err)
	}
	if len(changed) > 0 {
		logger.Warn("llm.enhance.normalize_sanitize", "changed", changed)
	}
	return out, changed, nil
}

func sanitizeContact(m map[string]any, idx int, changed *[]string) map[string]any {
	note := func(what string) {
		*changed = append(*changed, fmt.Sprintf("contacts[%d].%s", idx, what))
	}
	for _, from := range synonymOrder {
		to := fieldSynonyms[from]
		if v, ok := m[from]; ok {
			if _, exists := m[to]; !exists {
				m[to] = v
			}
			delete(m, from)
			note(from + "->" + to)
		}
	}

	out := make(map[string]any, len(m))
	for _, k := range stringFields {
		v, ok := m[k]
		if !ok {
			continue
		}
		switch t := v.(type) {
		case string:
			if s := strings.TrimSpace(t); s != "" && !strings.EqualFold(s, "null") {
				out[k] = s
			} else {
				note(k + "(empty)")
			}
		case float64:
			if k == "phone" {
				out[k] = strconv.FormatFloat(t, 'f', 0, 64)
				note(k + "(number)")
			} else {
				note(k + "(type)")
			}
		case nil:
			note(k + "(null)")
		default:
			note(k + "(type)")
		}
	}
	switch t := m["confidence"].(type) {
	case float64:
		out["confidence"] = t
	case string:
		if f, err := strconv.ParseFloat(strings.TrimSpace(t), 64); err == nil {
			out["confidence"] = f
			note("confidence(string)")
		} else {
			note("confidence(invalid)")
		}
	case nil:
	default:
		note("confidence(type)")
	}
	for k := range m {
		if _, ok := out[k]; !ok && k != "confidence" && !isStringField(k) {
			note(k + "(unknown)")
		}
	}
	return out
}

func isStringField(k string) bool {
	return slices.Contains(stringFields, k)
}
