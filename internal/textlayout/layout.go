/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package textlayout measures and wraps field text for raster output.
// All measurement goes through a Provider so tests can pin a deterministic face.
package textlayout

import (
	"strings"
	"unicode"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// FontSpec describes a requested font.
type FontSpec struct {
	Family string
	SizePt float64
	Weight int // 100..900
}

// Metrics provides font metrics in pixels for the resolved face.
type Metrics struct {
	Ascent, Descent, LineGap float64
}

// LineHeight is ascent + descent + gap.
func (m Metrics) LineHeight() float64 { return m.Ascent + m.Descent + m.LineGap }

// Provider maps FontSpec to a concrete font.Face.
type Provider interface {
	Resolve(FontSpec) (font.Face, Metrics)
}

// BasicProvider uses x/image/basicfont Face7x13 for deterministic tests.
type BasicProvider struct{}

func (BasicProvider) Resolve(FontSpec) (font.Face, Metrics) {
	f := basicfont.Face7x13
	return f, metricsOf(f)
}

func metricsOf(f font.Face) Metrics {
	m := f.Metrics()
	asc := float64(m.Ascent.Round())
	desc := float64(m.Descent.Round())
	gap := float64(m.Height.Round()) - asc - desc
	if gap < 0 {
		gap = 0
	}
	return Metrics{Ascent: asc, Descent: desc, LineGap: gap}
}

// Box is text wrapped to a width.
type Box struct {
	Lines   []string
	Width   float64 // widest line
	Height  float64
	Metrics Metrics
	// Truncated is set when Fit dropped lines that did not fit the height.
	Truncated bool
}

// Wrap breaks s into lines no wider than maxWidth. Explicit newlines are kept,
// words are broken at spaces, and a word wider than maxWidth is split by rune.
// maxWidth <= 0 disables wrapping.
func Wrap(face font.Face, s string, maxWidth float64) []string {
	d := &font.Drawer{Face: face}
	return WrapFunc(func(t string) float64 { return advance(d, t) }, s, maxWidth)
}

// WrapFunc is Wrap for engines that bring their own measurement (PDF, vector).
func WrapFunc(measure func(string) float64, s string, maxWidth float64) []string {
	var out []string
	for _, para := range strings.Split(strings.ReplaceAll(s, "\r\n", "\n"), "\n") {
		out = append(out, wrapParagraph(measure, para, maxWidth)...)
	}
	return out
}

func wrapParagraph(measure func(string) float64, para string, maxWidth float64) []string {
	if maxWidth <= 0 || measure(para) <= maxWidth {
		return []string{para}
	}
	var lines []string
	var cur strings.Builder
	curW := 0.0
	space := measure(" ")
	flush := func() {
		lines = append(lines, cur.String())
		cur.Reset()
		curW = 0
	}
	for _, word := range strings.FieldsFunc(para, unicode.IsSpace) {
		w := measure(word)
		if w > maxWidth {
			if curW > 0 {
				flush()
			}
			for _, r := range word {
				rw := measure(string(r))
				if curW > 0 && curW+rw > maxWidth {
					flush()
				}
				cur.WriteRune(r)
				curW += rw
			}
			continue
		}
		if curW > 0 && curW+space+w > maxWidth {
			flush()
		}
		if curW > 0 {
			cur.WriteByte(' ')
			curW += space
		}
		cur.WriteString(word)
		curW += w
	}
	if cur.Len() > 0 || len(lines) == 0 {
		flush()
	}
	return lines
}

// Clip keeps at most maxLines of lines, ending the last kept one with an
// ellipsis when something was cut. measure and maxWidth keep the ellipsis inside
// the box. It reports whether lines were dropped.
func Clip(measure func(string) float64, lines []string, maxLines int, maxWidth float64) ([]string, bool) {
	if maxLines < 0 {
		maxLines = 0
	}
	if len(lines) <= maxLines {
		return lines, false
	}
	out := append([]string(nil), lines[:maxLines]...)
	if n := len(out); n > 0 {
		out[n-1] = ellipsize(measure, out[n-1], maxWidth)
	}
	return out, true
}

// Fit wraps s into a box of the given size using the style's face. Lines that do
// not fit the height are dropped and the last kept line ends with an ellipsis.
func Fit(p Provider, st TextStyle, s string, maxWidth, maxHeight float64) Box {
	if p == nil {
		p = BasicProvider{}
	}
	face, met := p.Resolve(st.Font)
	d := &font.Drawer{Face: face}
	measure := func(t string) float64 { return advance(d, t) }
	lines := WrapFunc(measure, s, maxWidth)
	lh := met.LineHeight() + st.Leading
	box := Box{Metrics: met}
	if maxHeight > 0 && lh > 0 {
		lines, box.Truncated = Clip(measure, lines, int(maxHeight/lh), maxWidth)
	}
	box.Lines = lines
	box.Height = float64(len(lines)) * lh
	for _, ln := range lines {
		if w := measure(ln); w > box.Width {
			box.Width = w
		}
	}
	return box
}

func ellipsize(measure func(string) float64, s string, maxWidth float64) string {
	const ell = "…"
	rs := []rune(s)
	for len(rs) > 0 && maxWidth > 0 && measure(string(rs)+ell) > maxWidth {
		rs = rs[:len(rs)-1]
	}
	return string(rs) + ell
}

func advance(d *font.Drawer, s string) float64 {
	return fixedToFloat(d.MeasureString(s))
}

func fixedToFloat(v fixed.Int26_6) float64 { return float64(v) / 64 }

// Measure returns the width of s on a single line and the line height.
func Measure(p Provider, spec FontSpec, s string) (w, h float64) {
	if p == nil {
		p = BasicProvider{}
	}
	face, met := p.Resolve(spec)
	return advance(&font.Drawer{Face: face}, s), met.Ascent + met.Descent
}
