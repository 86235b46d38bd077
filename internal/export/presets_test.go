/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package export

import (
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"leancanvas/internal/textlayout"
)

func TestBatchExport_WebPreset(t *testing.T) {
	root := t.TempDir()
	written, err := BatchExport(sampleRecord(), BatchOptions{Preset: PresetWeb, OutDir: root, PNG: smallPNG()})
	if err != nil {
		t.Fatalf("batch export web: %v", err)
	}
	checks := []string{
		filepath.Join(root, "web", PNGFileName),
		filepath.Join(root, "web", SVGFileName),
	}
	if len(written) != len(checks) {
		t.Fatalf("written = %v", written)
	}
	for i, p := range checks {
		if written[i] != p {
			t.Fatalf("written[%d] = %s, want %s", i, written[i], p)
		}
		st, err := os.Stat(p)
		if err != nil {
			t.Fatalf("missing %s: %v", p, err)
		}
		if st.Size() <= 0 {
			t.Fatalf("empty file: %s", p)
		}
	}
}

func TestBatchExport_PrintPresetDoublesPNG(t *testing.T) {
	root := t.TempDir()
	_, err := BatchExport(sampleRecord(), BatchOptions{
		Preset: PresetPrint,
		OutDir: root,
		PNG:    PNGOptions{Width: 300, Height: 200, Provider: textlayout.BasicProvider{}},
	})
	if err != nil {
		t.Fatalf("batch export print: %v", err)
	}
	if _, err := os.Stat(filepath.Join(root, "print", PDFFileName)); err != nil {
		t.Fatalf("pdf missing: %v", err)
	}
	f, err := os.Open(filepath.Join(root, "print", PNGFileName))
	if err != nil {
		t.Fatalf("png missing: %v", err)
	}
	defer f.Close()
	cfg, err := png.DecodeConfig(f)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if cfg.Width != 600 || cfg.Height != 400 {
		t.Fatalf("print png = %dx%d, want 600x400", cfg.Width, cfg.Height)
	}
}

func TestBatchExport_JSONAndUnknownFormat(t *testing.T) {
	root := t.TempDir()
	written, err := BatchExport(sampleRecord(), BatchOptions{Preset: PresetWeb, OutDir: root, Formats: []string{" JSON "}, BaseName: "plan"})
	if err != nil {
		t.Fatalf("json batch: %v", err)
	}
	if len(written) != 1 || filepath.Base(written[0]) != "plan.json" {
		t.Fatalf("written = %v", written)
	}
	if _, err := BatchExport(sampleRecord(), BatchOptions{OutDir: root, Formats: []string{"cbz"}}); err == nil {
		t.Fatalf("expected error for unknown format")
	}
}

func TestParsePreset(t *testing.T) {
	if p, err := ParsePreset(" Print "); err != nil || p != PresetPrint {
		t.Fatalf("ParsePreset(print) = %q, %v", p, err)
	}
	if _, err := ParsePreset("poster"); err == nil {
		t.Fatalf("expected error")
	}
}
