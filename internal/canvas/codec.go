/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package canvas

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	gojsonschema "github.com/xeipuuv/gojsonschema"
)

var (
	// ErrMalformed is returned when import data is not valid JSON.
	ErrMalformed = errors.New("malformed canvas JSON")
	// ErrInvalidShape is returned when the JSON is well formed but is not a canvas document.
	ErrInvalidShape = errors.New("invalid canvas document")
)

// SchemaJSON is the JSON Schema (draft-07) a strictly imported canvas file must satisfy.
// Extra properties are allowed; they are dropped on import.
const SchemaJSON = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "title": "Lean Canvas",
  "type": "object",
  "required": [
    "problem",
    "existingAlternatives",
    "solution",
    "keyMetrics",
    "uniqueValueProposition",
    "unfairAdvantage",
    "channels",
    "customerSegments",
    "costStructure",
    "revenueStreams"
  ],
  "properties": {
    "problem": {"type": "string"},
    "existingAlternatives": {"type": "string"},
    "solution": {"type": "string"},
    "keyMetrics": {"type": "string"},
    "uniqueValueProposition": {"type": "string"},
    "unfairAdvantage": {"type": "string"},
    "channels": {"type": "string"},
    "customerSegments": {"type": "string"},
    "costStructure": {"type": "string"},
    "revenueStreams": {"type": "string"}
  }
}`

var (
	schemaOnce sync.Once
	schema     *gojsonschema.Schema
	schemaErr  error
)

func compiledSchema() (*gojsonschema.Schema, error) {
	schemaOnce.Do(func() {
		schema, schemaErr = gojsonschema.NewSchema(gojsonschema.NewStringLoader(SchemaJSON))
	})
	return schema, schemaErr
}

// DecodeResult is what Decode extracted from a canvas document.
type DecodeResult struct {
	Record Record
	// Dropped lists keys that were present in the input but not carried into Record:
	// unknown keys in strict mode, non-string values in lenient mode.
	Dropped []string
}

// Decode parses a canvas document.
//
// Strict mode validates data against SchemaJSON and keeps only the ten known keys,
// so the result is always complete. Lenient mode applies whatever object it finds:
// known keys may be missing and unknown string keys are kept. Neither mode returns a
// partial record on error.
func Decode(data []byte, lenient bool) (DecodeResult, error) {
	if !json.Valid(data) {
		var probe any
		err := json.Unmarshal(data, &probe)
		return DecodeResult{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil || raw == nil {
		return DecodeResult{}, fmt.Errorf("%w: top-level value must be an object", ErrInvalidShape)
	}

	if !lenient {
		if err := Validate(data); err != nil {
			return DecodeResult{}, err
		}
	}

	res := DecodeResult{Record: make(Record, len(raw))}
	for k, v := range raw {
		f := Field(k)
		if !lenient && !f.Known() {
			res.Dropped = append(res.Dropped, k)
			continue
		}
		var s string
		if bytes.Equal(bytes.TrimSpace(v), []byte("null")) {
			res.Dropped = append(res.Dropped, k)
			continue
		}
		if err := json.Unmarshal(v, &s); err != nil {
			res.Dropped = append(res.Dropped, k)
			continue
		}
		res.Record[f] = s
	}
	sort.Strings(res.Dropped)
	return res, nil
}

// Validate checks data against SchemaJSON. Violations are joined into one
// ErrInvalidShape error.
func Validate(data []byte) error {
	s, err := compiledSchema()
	if err != nil {
		return fmt.Errorf("compile canvas schema: %w", err)
	}
	result, err := s.Validate(gojsonschema.NewBytesLoader(data))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if result.Valid() {
		return nil
	}
	msgs := make([]string, 0, len(result.Errors()))
	for _, e := range result.Errors() {
		msgs = append(msgs, e.String())
	}
	return fmt.Errorf("%w: %s", ErrInvalidShape, strings.Join(msgs, "; "))
}
