package llm

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/joseph-ayodele/crewsheet/internal/common"
)

// ValidateJSONAgainstSchema validates "data" against "schemaMap".
func ValidateJSONAgainstSchema(schemaMap map[string]any, data []byte) error {
	schema, err := compileSchema(schemaMap)
	if err != nil {
		return err
	}
	return validateWith(schema, data)
}

var contactsSchema = sync.OnceValues(func() (*jsonschema.Schema, error) {
	return compileSchema(BuildContactsJSONSchema())
})

// ValidateContactsJSON validates data against the contacts contract.
func ValidateContactsJSON(data []byte) error {
	schema, err := contactsSchema()
	if err != nil {
		return err
	}
	return validateWith(schema, data)
}

func compileSchema(schemaMap map[string]any) (*jsonschema.Schema, error) {
	b, err := json.Marshal(schemaMap)
	if err != nil {
		return nil, fmt.Errorf("marshal schema: %w", err)
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("schema.json", bytes.NewReader(b)); err != nil {
		return nil, fmt.Errorf("add schema: %w", err)
	}
	schema, err := compiler.Compile("schema.json")
	if err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}
	return schema, nil
}

func validateWith(schema *jsonschema.Schema, data []byte) error {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("%w: unmarshal data: %v", common.ErrSchemaViolation, err)
	}
	if err := schema.Validate(v); err != nil {
		return fmt.Errorf("%w: %v", common.ErrSchemaViolation, err)
	}
	return nil
}
