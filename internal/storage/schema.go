/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * Licensed under the Apache License, Version 2.0.
 */

package storage

import (
	"encoding/json"
	"fmt"
	"strings"

	gojsonschema "github.com/xeipuuv/gojsonschema"
)

// layoutSchema is the JSON Schema for the persisted layout document.
// Validation is advisory: a failing document is logged by the caller and
// then loaded anyway, because a half-valid layout still beats an empty one.
const layoutSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "title": "gridshell layout",
  "type": "object",
  "required": ["id", "name", "tabs"],
  "properties": {
    "id":   {"type": "string", "minLength": 1},
    "name": {"type": "string"},
    "tabs": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["id", "name", "type", "components"],
        "properties": {
          "id":       {"type": "string", "minLength": 1},
          "name":     {"type": "string"},
          "type":     {"enum": ["dynamic", "static"]},
          "closable": {"type": "boolean"},
          "editMode": {"type": "boolean"},
          "components": {
            "type": "array",
            "items": {
              "type": "object",
              "required": ["id", "componentId"],
              "properties": {
                "id":          {"type": "string", "minLength": 1},
                "componentId": {"type": "string", "minLength": 1},
                "grid": {
                  "type": "object",
                  "required": ["x", "y", "w", "h"],
                  "properties": {
                    "x": {"type": "integer", "minimum": 0},
                    "y": {"type": "integer", "minimum": 0},
                    "w": {"type": "integer", "minimum": 1},
                    "h": {"type": "integer", "minimum": 1}
                  }
                },
                "slot": {
                  "type": "object",
                  "required": ["x", "y", "width", "height"],
                  "properties": {
                    "x":      {"type": "number", "minimum": 0, "maximum": 100},
                    "y":      {"type": "number", "minimum": 0, "maximum": 100},
                    "width":  {"type": "number", "minimum": 0, "maximum": 100},
                    "height": {"type": "number", "minimum": 0, "maximum": 100},
                    "locked": {"type": "boolean"},
                    "label":  {"type": "string"}
                  }
                }
              }
            }
          }
        }
      }
    }
  }
}`

// ValidateLayout checks a raw layout payload against the layout schema and
// returns a single error aggregating all violations, or nil.
func ValidateLayout(raw json.RawMessage) error {
	schemaLoader := gojsonschema.NewStringLoader(layoutSchema)
	docLoader := gojsonschema.NewBytesLoader(raw)
	result, err := gojsonschema.Validate(schemaLoader, docLoader)
	if err != nil {
		return fmt.Errorf("schema validation: %w", err)
	}
	if result.Valid() {
		return nil
	}
	msgs := make([]string, 0, len(result.Errors()))
	for _, e := range result.Errors() {
		msgs = append(msgs, e.String())
	}
	return fmt.Errorf("layout document invalid: %s", strings.Join(msgs, "; "))
}
