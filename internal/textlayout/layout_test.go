/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package textlayout

import (
	"strings"
	"testing"

	"golang.org/x/image/font/basicfont"
)

// Face7x13 advances every glyph by 7px, which keeps these expectations exact.

func TestWrapBreaksAtSpaces(t *testing.T) {
	lines := Wrap(basicfont.Face7x13, "Hello world from Go", 50)
	want := []string{"Hello", "world", "from Go"}
	if strings.Join(lines, "|") != strings.Join(want, "|") {
		t.Fatalf("Wrap = %q, want %q", lines, want)
	}
}

func TestWrapKeepsNewlinesAndEmptyLines(t *testing.T) {
	lines := Wrap(basicfont.Face7x13, "a\n\nb", 100)
	if len(lines) != 3 || lines[1] != "" {
		t.Fatalf("Wrap = %q", lines)
	}
}

func TestWrapSplitsLongWords(t *testing.T) {
	lines := Wrap(basicfont.Face7x13, "abcdefghij", 35) // 5 glyphs per line
	if len(lines) != 2 || lines[0] != "abcde" || lines[1] != "fghij" {
		t.Fatalf("Wrap = %q", lines)
	}
}

func TestWrapNoLimit(t *testing.T) {
	if lines := Wrap(basicfont.Face7x13, "one two three", 0); len(lines) != 1 {
		t.Fatalf("expected a single line without width limit, got %q", lines)
	}
}

func TestFitTruncatesWithEllipsis(t *testing.T) {
	st := TextStyle{Font: FontSpec{}}
	_, met := BasicProvider{}.Resolve(st.Font)
	box := Fit(BasicProvider{}, st, "aa bb cc dd ee ff", 20, met.LineHeight()*2)
	if len(box.Lines) != 2 || !box.Truncated {
		t.Fatalf("expected two lines and truncation, got %q truncated=%v", box.Lines, box.Truncated)
	}
	if !strings.HasSuffix(box.Lines[1], "…") {
		t.Fatalf("last line should end with an ellipsis: %q", box.Lines[1])
	}
}

func TestLeadingIncreasesHeight(t *testing.T) {
	b0 := Fit(BasicProvider{}, TextStyle{}, "Hello world from Go", 50, 0)
	b1 := Fit(BasicProvider{}, TextStyle{Leading: 4}, "Hello world from Go", 50, 0)
	if !(b1.Height > b0.Height) {
		t.Fatalf("expected leading to increase height: h0=%v h1=%v", b0.Height, b1.Height)
	}
	if b0.Width <= 0 || b0.Width > 50 {
		t.Fatalf("unexpected box width %v", b0.Width)
	}
}

func TestMeasureDeterministic(t *testing.T) {
	w, h := Measure(BasicProvider{}, FontSpec{}, "ABC")
	if w != 21 || h <= 0 {
		t.Fatalf("Measure = %v, %v", w, h)
	}
}

func TestOTProviderUsesEmbeddedGoFont(t *testing.T) {
	otp := OTProvider{Lib: NewFontLibrary()}
	face, _ := otp.Resolve(FontSpec{SizePt: 12})
	if face == basicfont.Face7x13 {
		t.Fatalf("expected the Go font, got basicfont")
	}
	bold, _ := otp.Resolve(FontSpec{SizePt: 12, Weight: 700})
	if bold == face {
		t.Fatalf("bold and regular should resolve to different faces")
	}
	again, _ := otp.Resolve(FontSpec{SizePt: 12})
	if again != face {
		t.Fatalf("faces should be cached per size")
	}
}

func TestOTProviderFallback(t *testing.T) {
	otp := OTProvider{Lib: NewFontLibrary()}
	face, met := otp.Resolve(FontSpec{Family: "Nonexistent", SizePt: 12})
	if face != basicfont.Face7x13 || met.Ascent <= 0 {
		t.Fatalf("expected basicfont fallback, got %T %+v", face, met)
	}
}

func TestBuiltinStyles(t *testing.T) {
	for _, name := range ListStyles() {
		st, ok := GetStyle(name)
		if !ok || st.Font.SizePt <= 0 {
			t.Fatalf("style %s missing or unsized", name)
		}
	}
	body, _ := GetStyle("Body")
	if s := body.Scaled(2); s.Font.SizePt != body.Font.SizePt*2 || s.Leading != body.Leading*2 {
		t.Fatalf("Scaled(2) = %+v", s)
	}
}
