/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package export

import (
	"fmt"
	"path/filepath"
	"strings"

	"leancanvas/internal/canvas"
)

// PresetName represents a named export preset.
type PresetName string

const (
	PresetWeb   PresetName = "web"
	PresetPrint PresetName = "print"
)

// ParsePreset accepts "web" or "print" in any case.
func ParsePreset(s string) (PresetName, error) {
	switch p := PresetName(strings.ToLower(strings.TrimSpace(s))); p {
	case PresetWeb, PresetPrint:
		return p, nil
	default:
		return "", fmt.Errorf("unknown preset %q (want web or print)", s)
	}
}

// BatchOptions controls a batch export.
//
// Outputs land in OutDir/<preset>/ with the fixed artifact names (lean-canvas.png,
// lean-canvas.svg, lean-canvas.pdf) plus the JSON document as FileName(BaseName).
type BatchOptions struct {
	Preset   PresetName
	Formats  []string // allowed: json, png, svg, pdf; empty means preset defaults
	OutDir   string
	BaseName string
	// Scale overrides the preset's PNG scale when > 0.
	Scale float64
	PNG   PNGOptions
}

// BatchExport runs the exports of a preset and returns the written paths in order.
func BatchExport(rec canvas.Record, opt BatchOptions) ([]string, error) {
	if opt.Preset == "" {
		opt.Preset = PresetWeb
	}
	formats := opt.Formats
	if len(formats) == 0 {
		formats = presetDefaultFormats(opt.Preset)
	}
	base := opt.OutDir
	if base == "" {
		base = "."
	}
	outDir := filepath.Join(base, string(opt.Preset))

	var written []string
	for _, f := range formats {
		switch strings.ToLower(strings.TrimSpace(f)) {
		case "json":
			p, err := WriteJSON(outDir, opt.BaseName, rec)
			if err != nil {
				return written, fmt.Errorf("json: %w", err)
			}
			written = append(written, p)
		case "png":
			po := opt.PNG
			po.Scale = presetScale(opt.Preset)
			if opt.Scale > 0 {
				po.Scale = opt.Scale
			}
			p, err := ExportPNG(outDir, rec, po)
			if err != nil {
				return written, fmt.Errorf("png: %w", err)
			}
			written = append(written, p)
		case "svg":
			p := filepath.Join(outDir, SVGFileName)
			if err := ExportSVG(p, rec, SVGOptions{}); err != nil {
				return written, fmt.Errorf("svg: %w", err)
			}
			written = append(written, p)
		case "pdf":
			p := filepath.Join(outDir, PDFFileName)
			if err := ExportPDF(p, rec, PDFOptions{}); err != nil {
				return written, fmt.Errorf("pdf: %w", err)
			}
			written = append(written, p)
		default:
			return written, fmt.Errorf("unknown format: %s", f)
		}
	}
	return written, nil
}

func presetDefaultFormats(p PresetName) []string {
	switch p {
	case PresetWeb:
		return []string{"png", "svg"}
	case PresetPrint:
		return []string{"pdf", "png"}
	default:
		return []string{"png"}
	}
}

func presetScale(p PresetName) float64 {
	if p == PresetPrint {
		return 2
	}
	return 1
}
