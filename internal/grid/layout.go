/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package grid is the single description of the Lean Canvas board: where each
// field sits, its tint, and the board background. Every surface and exporter
// lays out from here so they stay in lockstep with the canvas.Field enum.
package grid

import (
	"image/color"

	"leancanvas/internal/canvas"
)

// Options controls the board geometry.
type Options struct {
	Width, Height float64
	// Padding around the board and Gap between areas; p-4/gap-4 at 16px by default.
	Padding float64
	Gap     float64
	// TopShare is the fraction of the inner height given to the five-column band.
	TopShare float64
}

// Cell is one field area.
type Cell struct {
	Field canvas.Field
	Rect  Rect
}

// Defaults returns the proportions used by the PNG export at 1x.
func Defaults() Options {
	return Options{Width: 1600, Height: 1000, Padding: 16, Gap: 16, TopShare: 2.0 / 3.0}
}

// Layout returns one cell per field in canonical field order.
//
// Top band, five equal columns: PROBLEM over EXISTING ALTERNATIVES, SOLUTION over
// KEY METRICS, UNIQUE VALUE PROPOSITION, UNFAIR ADVANTAGE over CHANNELS,
// CUSTOMER SEGMENTS. Bottom band, two equal columns: COST STRUCTURE, REVENUE STREAMS.
func Layout(o Options) []Cell {
	if o.TopShare <= 0 || o.TopShare >= 1 {
		o.TopShare = 2.0 / 3.0
	}
	board := Rect{X: 0, Y: 0, W: o.Width, H: o.Height}.Inset(o.Padding, o.Padding)
	top, bottom := board.splitV(o.TopShare, o.Gap)
	cols := top.splitH(5, o.Gap)
	bcols := bottom.splitH(2, o.Gap)

	problem, alternatives := cols[0].splitV(2.0/3.0, o.Gap)
	solution, metrics := cols[1].splitV(0.5, o.Gap)
	unfair, channels := cols[3].splitV(0.5, o.Gap)

	byField := map[canvas.Field]Rect{
		canvas.Problem:                problem,
		canvas.ExistingAlternatives:   alternatives,
		canvas.Solution:               solution,
		canvas.KeyMetrics:             metrics,
		canvas.UniqueValueProposition: cols[2],
		canvas.UnfairAdvantage:        unfair,
		canvas.Channels:               channels,
		canvas.CustomerSegments:       cols[4],
		canvas.CostStructure:          bcols[0],
		canvas.RevenueStreams:         bcols[1],
	}
	out := make([]Cell, 0, len(byField))
	for _, f := range canvas.Fields() {
		out = append(out, Cell{Field: f, Rect: byField[f]})
	}
	return out
}

// At returns the field whose cell contains p.
func At(cells []Cell, p Pt) (canvas.Field, bool) {
	for _, c := range cells {
		if c.Rect.Contains(p) {
			return c.Field, true
		}
	}
	return "", false
}

// Colors of the board. Tints are the pastel "-100" shades of the web palette.
var (
	Board       = color.RGBA{R: 0xF3, G: 0xF4, B: 0xF6, A: 0xFF}
	Border      = color.RGBA{R: 0xD1, G: 0xD5, B: 0xDB, A: 0xFF}
	Ink         = color.RGBA{R: 0x11, G: 0x18, B: 0x27, A: 0xFF}
	Placeholder = color.RGBA{R: 0x9C, G: 0xA3, B: 0xAF, A: 0xFF}

	red    = color.RGBA{R: 0xFE, G: 0xE2, B: 0xE2, A: 0xFF}
	blue   = color.RGBA{R: 0xDB, G: 0xEA, B: 0xFE, A: 0xFF}
	green  = color.RGBA{R: 0xDC, G: 0xFC, B: 0xE7, A: 0xFF}
	yellow = color.RGBA{R: 0xFE, G: 0xF9, B: 0xC3, A: 0xFF}
	purple = color.RGBA{R: 0xF3, G: 0xE8, B: 0xFF, A: 0xFF}
	orange = color.RGBA{R: 0xFF, G: 0xED, B: 0xD5, A: 0xFF}
	pink   = color.RGBA{R: 0xFC, G: 0xE7, B: 0xF3, A: 0xFF}
)

var tints = map[canvas.Field]color.RGBA{
	canvas.Problem:                red,
	canvas.ExistingAlternatives:   red,
	canvas.Solution:               blue,
	canvas.KeyMetrics:             green,
	canvas.UniqueValueProposition: yellow,
	canvas.UnfairAdvantage:        purple,
	canvas.Channels:               yellow,
	canvas.CustomerSegments:       orange,
	canvas.CostStructure:          pink,
	canvas.RevenueStreams:         green,
}

// Tint returns the background color of a field's area.
func Tint(f canvas.Field) color.RGBA {
	if c, ok := tints[f]; ok {
		return c
	}
	return color.RGBA{R: 0xFF, G: 0xFF, B: 0xFF, A: 0xFF}
}
