package progress

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

// ErrNotObject is returned by Validate when the payload is valid JSON but not
// a progress object.
var ErrNotObject = errors.New("progress: payload is not a progress object")

const schemaURL = "schema://progress.json"

// storeSchema accepts the current record shape and the legacy boolean shape.
const storeSchema = `{
	"type": "object",
	"additionalProperties": {
		"anyOf": [
			{"type": "boolean"},
			{
				"type": "object",
				"properties": {
					"done":       {"type": ["boolean", "null"]},
					"notes":      {"type": ["string", "null"]},
					"lastReview": {"type": ["integer", "null"]},
					"nextReview": {"type": ["integer", "null"]},
					"interval":   {"type": ["integer", "null"], "minimum": 0}
				}
			}
		]
	}
}`

var compiledSchema = sync.OnceValues(func() (*jsonschema.Schema, error) {
	// The compiler wants a decoded JSON value, not raw bytes.
	var def any
	if err := json.Unmarshal([]byte(storeSchema), &def); err != nil {
		return nil, fmt.Errorf("parse schema definition: %w", err)
	}

	c := jsonschema.NewCompiler()
	if err := c.AddResource(schemaURL, def); err != nil {
		return nil, fmt.Errorf("add resource: %w", err)
	}
	s, err := c.Compile(schemaURL)
	if err != nil {
		return nil, fmt.Errorf("compile: %w", err)
	}
	return s, nil
})

// Validate checks that blob is a JSON object of progress records. It does
// not modify anything and is meant to gate imports.
func Validate(blob []byte) error {
	var parsed any
	if err := json.Unmarshal(blob, &parsed); err != nil {
		return fmt.Errorf("invalid JSON: %w", err)
	}

	schema, err := compiledSchema()
	if err != nil {
		return fmt.Errorf("progress schema: %w", err)
	}
	if err := schema.Validate(parsed); err != nil {
		return fmt.Errorf("%w: %v", ErrNotObject, err)
	}
	return nil
}
