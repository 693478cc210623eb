// Package schema describes the JSON documents accepted by the toolcore CLI.
package schema

import (
	"encoding/json"
	"fmt"
)

// commandRequestSchemaJSON is the draft-07 schema for a command request: an
// argv vector with at least one element, plus optional working directory and
// timeout.
const commandRequestSchemaJSON = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "additionalProperties": false,
  "required": ["argv"],
  "properties": {
    "argv": {
      "type": "array",
      "minItems": 1,
      "items": {"type": "string"}
    },
    "cwd": {"type": "string"},
    "timeout_seconds": {
      "type": "number",
      "exclusiveMinimum": 0
    }
  }
}`

// CommandRequestSchema returns the command request schema as a generic map,
// ready to hand to a JSON schema validator.
func CommandRequestSchema() (map[string]any, error) {
	var schemaMap map[string]any
	if err := json.Unmarshal([]byte(commandRequestSchemaJSON), &schemaMap); err != nil {
		return nil, fmt.Errorf("schema: parse command request schema: %w", err)
	}
	return schemaMap, nil
}
