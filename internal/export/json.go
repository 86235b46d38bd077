/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package export writes a canvas record to files: the JSON document, a PNG of the
// grid, and PDF/SVG renditions of the same grid.
package export

import (
	"fmt"
	"path/filepath"
	"strings"

	"leancanvas/internal/canvas"
	"leancanvas/internal/storage"
)

// DefaultBaseName names exports when the user gives no name.
const DefaultBaseName = "lean-canvas"

// Fixed names of the image and vector artifacts.
const (
	PNGFileName = DefaultBaseName + ".png"
	PDFFileName = DefaultBaseName + ".pdf"
	SVGFileName = DefaultBaseName + ".svg"
)

// FileName returns the JSON download name for base. ".json" is always appended,
// so "plan.json" becomes "plan.json.json".
func FileName(base string) string {
	if strings.TrimSpace(base) == "" {
		base = DefaultBaseName
	}
	return base + ".json"
}

// WriteJSON writes rec as indented JSON to dir/FileName(base) and returns the path.
// An empty dir means the working directory.
func WriteJSON(dir, base string, rec canvas.Record) (string, error) {
	data, err := rec.Encode()
	if err != nil {
		return "", fmt.Errorf("encode record: %w", err)
	}
	if dir == "" {
		dir = "."
	}
	path := filepath.Join(dir, FileName(base))
	if err := storage.WriteFileAtomic(path, data); err != nil {
		return "", fmt.Errorf("write %s: %w", path, err)
	}
	return path, nil
}

// WriteJSONFile writes rec to exactly path, for save dialogs that already chose a
// name. FileName is not applied.
func WriteJSONFile(path string, rec canvas.Record) error {
	data, err := rec.Encode()
	if err != nil {
		return fmt.Errorf("encode record: %w", err)
	}
	return storage.WriteFileAtomic(path, data)
}
