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
	"sort"
)

// Record maps fields to their text. A record built by NewRecord, or accepted by a
// strict import, holds exactly the ten known keys. A lenient import may leave
// known keys absent and carry unknown ones.
type Record map[Field]string

// NewRecord returns a record with all ten fields present and empty.
func NewRecord() Record {
	r := make(Record, len(fields))
	for _, f := range fields {
		r[f] = ""
	}
	return r
}

// Get returns the value of f and whether the key is present at all.
func (r Record) Get(f Field) (string, bool) {
	v, ok := r[f]
	return v, ok
}

// Value returns the value of f, empty when absent.
func (r Record) Value(f Field) string { return r[f] }

// Clone returns an independent copy.
func (r Record) Clone() Record {
	if r == nil {
		return nil
	}
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// Equal reports whether both records hold the same keys with the same values.
func (r Record) Equal(o Record) bool {
	if len(r) != len(o) {
		return false
	}
	for k, v := range r {
		ov, ok := o[k]
		if !ok || ov != v {
			return false
		}
	}
	return true
}

// Missing lists the known fields absent from r, in canonical order.
func (r Record) Missing() []Field {
	var out []Field
	for _, f := range fields {
		if _, ok := r[f]; !ok {
			out = append(out, f)
		}
	}
	return out
}

// Unknown lists keys of r that are not canvas fields, sorted.
func (r Record) Unknown() []Field {
	var out []Field
	for k := range r {
		if !k.Known() {
			out = append(out, k)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Complete reports whether r holds exactly the ten known fields.
func (r Record) Complete() bool {
	return len(r.Missing()) == 0 && len(r.Unknown()) == 0
}

// MarshalJSON writes known fields in canonical order, then unknown keys sorted.
func (r Record) MarshalJSON() ([]byte, error) {
	if r == nil {
		return []byte("null"), nil
	}
	var buf bytes.Buffer
	buf.WriteByte('{')
	first := true
	write := func(k Field, v string) error {
		if !first {
			buf.WriteByte(',')
		}
		first = false
		kb, err := json.Marshal(string(k))
		if err != nil {
			return err
		}
		vb, err := json.Marshal(v)
		if err != nil {
			return err
		}
		buf.Write(kb)
		buf.WriteByte(':')
		buf.Write(vb)
		return nil
	}
	for _, f := range fields {
		if v, ok := r[f]; ok {
			if err := write(f, v); err != nil {
				return nil, err
			}
		}
	}
	for _, k := range r.Unknown() {
		if err := write(k, r[k]); err != nil {
			return nil, err
		}
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Encode returns the record as two-space indented JSON with a trailing newline,
// the format of exported canvas files.
func (r Record) Encode() ([]byte, error) {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}
