package llm

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

// compiledSchemas holds compiled schemas by Schema.Name. Names are fixed per
// package-level Schema value, so a name is compiled once per process.
var compiledSchemas sync.Map // name -> *jsonschema.Schema

// validateJSON checks raw against schema and returns *ErrInvalidResponse
// when it is not JSON or does not conform.
func validateJSON(schema *Schema, raw json.RawMessage) error {
	invalid := func(err error) error {
		return &ErrInvalidResponse{Schema: schema.Name, Content: raw, Err: err}
	}

	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return invalid(fmt.Errorf("not JSON: %w", err))
	}

	compiled, err := compileSchema(schema)
	if err != nil {
		return invalid(err)
	}
	if err := compiled.Validate(doc); err != nil {
		return invalid(fmt.Errorf("does not match schema: %w", err))
	}
	return nil
}

func compileSchema(schema *Schema) (*jsonschema.Schema, error) {
	if c, ok := compiledSchemas.Load(schema.Name); ok {
		return c.(*jsonschema.Schema), nil
	}

	// jsonschema wants the decoded JSON form, not Go maps with typed slices.
	b, err := json.Marshal(schema.Definition)
	if err != nil {
		return nil, fmt.Errorf("marshal schema %q: %w", schema.Name, err)
	}
	def, err := jsonschema.UnmarshalJSON(bytes.NewReader(b))
	if err != nil {
		return nil, fmt.Errorf("decode schema %q: %w", schema.Name, err)
	}

	url := "mem://schemas/" + schema.Name + ".json"
	c := jsonschema.NewCompiler()
	if err := c.AddResource(url, def); err != nil {
		return nil, fmt.Errorf("add schema %q: %w", schema.Name, err)
	}
	compiled, err := c.Compile(url)
	if err != nil {
		return nil, fmt.Errorf("compile schema %q: %w", schema.Name, err)
	}

	actual, _ := compiledSchemas.LoadOrStore(schema.Name, compiled)
	return actual.(*jsonschema.Schema), nil
}
