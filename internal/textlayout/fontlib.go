/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package textlayout

import (
	"fmt"
	"os"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
)

// FontLibrary stores parsed OpenType fonts by family and weight.
// NewFontLibrary registers the Go fonts as family "Go" (400 and 700) so exports
// render the same on every machine.
type FontLibrary struct {
	mu    sync.Mutex
	fonts map[fontKey]*opentype.Font
	faces map[faceKey]font.Face
}

type fontKey struct {
	family string
	weight int
}

type faceKey struct {
	fontKey
	sizePt float64
	dpi    float64
}

// DefaultFamily is the family registered from the embedded Go fonts.
const DefaultFamily = "Go"

func NewFontLibrary() *FontLibrary {
	fl := &FontLibrary{fonts: make(map[fontKey]*opentype.Font), faces: make(map[faceKey]font.Face)}
	// The embedded TTFs are known-good; a parse failure here leaves the basicfont fallback.
	_ = fl.LoadBytes(DefaultFamily, 400, goregular.TTF)
	_ = fl.LoadBytes(DefaultFamily, 700, gobold.TTF)
	return fl
}

// LoadTTF loads a font file into the library under the given family/weight.
func (fl *FontLibrary) LoadTTF(family string, weight int, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read font %s: %w", path, err)
	}
	return fl.LoadBytes(family, weight, data)
}

// LoadBytes parses an OpenType/TrueType blob and registers it.
func (fl *FontLibrary) LoadBytes(family string, weight int, data []byte) error {
	f, err := opentype.Parse(data)
	if err != nil {
		return fmt.Errorf("parse font %s/%d: %w", family, weight, err)
	}
	fl.mu.Lock()
	defer fl.mu.Unlock()
	if fl.fonts == nil {
		fl.fonts = make(map[fontKey]*opentype.Font)
		fl.faces = make(map[faceKey]font.Face)
	}
	fl.fonts[fontKey{family: family, weight: weight}] = f
	return nil
}

func (fl *FontLibrary) find(spec FontSpec) (*opentype.Font, fontKey) {
	if f, ok := fl.fonts[fontKey{family: spec.Family, weight: spec.Weight}]; ok {
		return f, fontKey{spec.Family, spec.Weight}
	}
	// Same family, nearest weight.
	var best *opentype.Font
	var bestKey fontKey
	bestDist := -1
	for k, f := range fl.fonts {
		if k.family != spec.Family {
			continue
		}
		d := k.weight - spec.Weight
		if d < 0 {
			d = -d
		}
		if bestDist == -1 || d < bestDist {
			best, bestKey, bestDist = f, k, d
		}
	}
	return best, bestKey
}

// OTProvider resolves FontSpec using a FontLibrary and falls back to another Provider.
type OTProvider struct {
	Lib      *FontLibrary
	DPI      float64 // default 72 if zero
	Fallback Provider
}

func (p OTProvider) Resolve(spec FontSpec) (font.Face, Metrics) {
	if spec.SizePt <= 0 {
		spec.SizePt = 12
	}
	if spec.Family == "" {
		spec.Family = DefaultFamily
	}
	if spec.Weight == 0 {
		spec.Weight = 400
	}
	dpi := p.DPI
	if dpi <= 0 {
		dpi = 72
	}
	if p.Lib != nil {
		if face, ok := p.Lib.face(spec, dpi); ok {
			return face, metricsOf(face)
		}
	}
	fb := p.Fallback
	if fb == nil {
		fb = BasicProvider{}
	}
	return fb.Resolve(spec)
}

func (fl *FontLibrary) face(spec FontSpec, dpi float64) (font.Face, bool) {
	fl.mu.Lock()
	defer fl.mu.Unlock()
	f, key := fl.find(spec)
	if f == nil {
		return nil, false
	}
	fk := faceKey{fontKey: key, sizePt: spec.SizePt, dpi: dpi}
	if face, ok := fl.faces[fk]; ok {
		return face, true
	}
	face, err := opentype.NewFace(f, &opentype.FaceOptions{Size: spec.SizePt, DPI: dpi, Hinting: font.HintingFull})
	if err != nil {
		return nil, false
	}
	fl.faces[fk] = face
	return face, true
}
