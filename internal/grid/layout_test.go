/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package grid

import (
	"math"
	"testing"

	"leancanvas/internal/canvas"
)

func TestRectContainsAndInset(t *testing.T) {
	r := R(10, 20, 100, 50)
	if !r.Contains(Pt{10, 20}) || !r.Contains(Pt{110, 70}) {
		t.Fatalf("expected edge points to be contained")
	}
	in := r.Inset(5, 5)
	if in.X != 15 || in.Y != 25 || in.W != 90 || in.H != 40 {
		t.Fatalf("unexpected inset: %+v", in)
	}
}

func TestLayoutCoversEveryFieldInOrder(t *testing.T) {
	cells := Layout(Defaults())
	fs := canvas.Fields()
	if len(cells) != len(fs) {
		t.Fatalf("expected %d cells, got %d", len(fs), len(cells))
	}
	for i, c := range cells {
		if c.Field != fs[i] {
			t.Fatalf("cell %d is %s, want %s", i, c.Field, fs[i])
		}
		if c.Rect.W <= 0 || c.Rect.H <= 0 {
			t.Fatalf("cell %s has empty rect %+v", c.Field, c.Rect)
		}
	}
}

func TestLayoutCellsDoNotOverlapAndStayInside(t *testing.T) {
	o := Defaults()
	cells := Layout(o)
	inner := R(0, 0, o.Width, o.Height).Inset(o.Padding, o.Padding)
	const eps = 1e-9
	for i, a := range cells {
		if a.Rect.X < inner.X-eps || a.Rect.Y < inner.Y-eps ||
			a.Rect.X+a.Rect.W > inner.X+inner.W+eps || a.Rect.Y+a.Rect.H > inner.Y+inner.H+eps {
			t.Fatalf("cell %s escapes the board: %+v", a.Field, a.Rect)
		}
		for _, b := range cells[i+1:] {
			ox := math.Min(a.Rect.X+a.Rect.W, b.Rect.X+b.Rect.W) - math.Max(a.Rect.X, b.Rect.X)
			oy := math.Min(a.Rect.Y+a.Rect.H, b.Rect.Y+b.Rect.H) - math.Max(a.Rect.Y, b.Rect.Y)
			if ox > eps && oy > eps {
				t.Fatalf("cells %s and %s overlap", a.Field, b.Field)
			}
		}
	}
}

func TestLayoutStacksProblemOverAlternatives(t *testing.T) {
	cells := Layout(Defaults())
	byField := map[canvas.Field]Rect{}
	for _, c := range cells {
		byField[c.Field] = c.Rect
	}
	p, a := byField[canvas.Problem], byField[canvas.ExistingAlternatives]
	if p.X != a.X || p.W != a.W || a.Y <= p.Y || p.H <= a.H {
		t.Fatalf("problem %+v should sit above a shorter alternatives %+v", p, a)
	}
	if byField[canvas.CostStructure].Y <= byField[canvas.CustomerSegments].Y {
		t.Fatalf("bottom band should be below the top band")
	}
	if f, ok := At(cells, Pt{X: p.X + 1, Y: p.Y + 1}); !ok || f != canvas.Problem {
		t.Fatalf("At() = %s, %v", f, ok)
	}
}

func TestTintKnownAndFallback(t *testing.T) {
	if Tint(canvas.Problem) == Tint(canvas.Solution) {
		t.Fatalf("problem and solution should differ in tint")
	}
	if c := Tint(canvas.Field("x")); c.R != 0xFF || c.G != 0xFF || c.B != 0xFF {
		t.Fatalf("unknown field should be white, got %+v", c)
	}
}
