package todo

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"
)

// ErrDeserialization is returned (wrapped) by Decode, and by Adapter.LoadAll, when the stored value is not a valid
// task collection.
var ErrDeserialization = errors.New("malformed task collection")

const collectionSchemaURL = "task-collection.schema.json"

// Extra properties on tasks are allowed and dropped on decode.
const collectionSchema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "array",
  "items": {
    "type": "object",
    "required": ["id", "title", "completed"],
    "properties": {
      "id": {"type": "integer", "minimum": 1},
      "title": {"type": "string", "minLength": 1, "pattern": "\\S"},
      "completed": {"type": "boolean"}
    }
  }
}`

var schema = jsonschema.MustCompileString(collectionSchemaURL, collectionSchema)

// Encode serializes the collection as a JSON array. An empty or nil collection encodes as [].
func Encode(tasks []Task) ([]byte, error) {
	if tasks == nil {
		tasks = []Task{}
	}
	return json.Marshal(tasks)
}

// Decode parses and validates a JSON task collection, as written by Encode. Every error wraps ErrDeserialization.
// Duplicate ids are rejected. The returned tasks are in stored order.
func Decode(b []byte) ([]Task, error) {
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	var doc interface{}
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDeserialization, err)
	}
	if dec.More() {
		return nil, fmt.Errorf("%w: trailing data after collection", ErrDeserialization)
	}
	if err := schema.Validate(doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDeserialization, err)
	}
	var tasks []Task
	if err := json.Unmarshal(b, &tasks); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDeserialization, err)
	}
	seen := make(map[int64]bool, len(tasks))
	for i, t := range tasks {
		if seen[t.ID] {
			return nil, fmt.Errorf("%w: [%d]: duplicate id %d", ErrDeserialization, i, t.ID)
		}
		seen[t.ID] = true
	}
	if tasks == nil {
		tasks = []Task{}
	}
	return tasks, nil
}
