package scenario

import (
	"encoding/json"
	"fmt"
	"sync"

	jsonschemago "github.com/google/jsonschema-go/jsonschema"
	"github.com/invopop/jsonschema"
)

type compiledSchema struct {
	doc      map[string]any
	resolved *jsonschemago.Resolved
}

var resultSchema = sync.OnceValues(func() (compiledSchema, error) {
	reflector := jsonschema.Reflector{
		DoNotReference:             true,
		RequiredFromJSONSchemaTags: true,
	}
	b, err := reflector.Reflect(&RunResult{}).MarshalJSON()
	if err != nil {
		return compiledSchema{}, err
	}

	var doc map[string]any
	if err := json.Unmarshal(b, &doc); err != nil {
		return compiledSchema{}, err
	}
	var s jsonschemago.Schema
	if err := json.Unmarshal(b, &s); err != nil {
		return compiledSchema{}, fmt.Errorf("load schema: %w", err)
	}
	resolved, err := s.Resolve(nil)
	if err != nil {
		return compiledSchema{}, fmt.Errorf("resolve schema: %w", err)
	}
	return compiledSchema{doc: doc, resolved: resolved}, nil
})

// ResultSchema returns the JSON schema of RunResult as a generic document.
func ResultSchema() (map[string]any, error) {
	s, err := resultSchema()
	if err != nil {
		return nil, err
	}
	return s.doc, nil
}

// ValidateResult checks the serialized form of r against ResultSchema.
func ValidateResult(r RunResult) error {
	b, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("ValidateResult: marshal: %w", err)
	}
	return ValidateJSON(b)
}

// ValidateJSON validates a serialized result document.
func ValidateJSON(data []byte) error {
	s, err := resultSchema()
	if err != nil {
		return fmt.Errorf("ValidateJSON: schema: %w", err)
	}
	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("ValidateJSON: unmarshal: %w", err)
	}
	return s.resolved.Validate(doc)
}
