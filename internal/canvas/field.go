/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package canvas holds the Lean Canvas document model and the per-instance state
// manager that keeps it in sync with a rendering surface.
//
// A Manager owns one Record. Surfaces bind a Handle per Field, push edits through
// SetField and register render listeners; the manager schedules the re-render and
// the cursor restoration as one follow-up task after each edit.
package canvas

import (
	"fmt"
	"strings"
)

// Field identifies one text area of the canvas.
type Field string

const (
	Problem                Field = "problem"
	ExistingAlternatives   Field = "existingAlternatives"
	Solution               Field = "solution"
	KeyMetrics             Field = "keyMetrics"
	UniqueValueProposition Field = "uniqueValueProposition"
	UnfairAdvantage        Field = "unfairAdvantage"
	Channels               Field = "channels"
	CustomerSegments       Field = "customerSegments"
	CostStructure          Field = "costStructure"
	RevenueStreams         Field = "revenueStreams"
)

// fields is the canonical order used for JSON output, tab order and schema generation.
var fields = [...]Field{
	Problem,
	ExistingAlternatives,
	Solution,
	KeyMetrics,
	UniqueValueProposition,
	UnfairAdvantage,
	Channels,
	CustomerSegments,
	CostStructure,
	RevenueStreams,
}

type fieldInfo struct {
	label       string
	placeholder string
}

var info = map[Field]fieldInfo{
	Problem:                {"PROBLEM", "List your customers' top 3 problems"},
	ExistingAlternatives:   {"EXISTING ALTERNATIVES", "How these problems are solved today"},
	Solution:               {"SOLUTION", "Outline possible solutions for each problem"},
	KeyMetrics:             {"KEY METRICS", "List the key numbers that tell you how your business is doing"},
	UniqueValueProposition: {"UNIQUE VALUE PROPOSITION", "Single, clear, compelling message that states why you are different and worth paying attention. High-level concept: Your X for Y analogy"},
	UnfairAdvantage:        {"UNFAIR ADVANTAGE", "Something that can't be easily copied or bought"},
	Channels:               {"CHANNELS", "List your path to customers"},
	CustomerSegments:       {"CUSTOMER SEGMENTS", "List your target customers and users. Early Adopters: List the characteristics of your ideal customers"},
	CostStructure:          {"COST STRUCTURE", "List your fixed and variable costs"},
	RevenueStreams:         {"REVENUE STREAMS", "List your sources of revenue"},
}

// Fields returns the ten known fields in canonical order.
func Fields() []Field { return append([]Field(nil), fields[:]...) }

// Known reports whether f is one of the ten canvas fields.
func (f Field) Known() bool {
	_, ok := info[f]
	return ok
}

// Label is the upper-case heading shown above the field.
func (f Field) Label() string {
	if fi, ok := info[f]; ok {
		return fi.label
	}
	return strings.ToUpper(string(f))
}

// Placeholder is the hint shown while the field is empty.
func (f Field) Placeholder() string { return info[f].placeholder }

// Index returns the position of f in canonical order, or -1.
func (f Field) Index() int {
	for i, k := range fields {
		if k == f {
			return i
		}
	}
	return -1
}

// ParseField resolves a field from its JSON key, case-insensitively. Dashes and
// underscores are ignored so "key-metrics" and "KEY_METRICS" both resolve.
func ParseField(s string) (Field, error) {
	norm := strings.NewReplacer("-", "", "_", "", " ", "").Replace(strings.ToLower(strings.TrimSpace(s)))
	for _, f := range fields {
		if strings.ToLower(string(f)) == norm {
			return f, nil
		}
	}
	return "", fmt.Errorf("unknown canvas field %q", s)
}
