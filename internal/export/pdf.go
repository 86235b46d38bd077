/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package export

import (
	"bytes"
	"fmt"
	"image/color"
	"io"

	"github.com/jung-kurt/gofpdf"

	"leancanvas/internal/canvas"
	"leancanvas/internal/grid"
	"leancanvas/internal/storage"
	"leancanvas/internal/textlayout"
	"leancanvas/internal/version"
)

// PDFOptions controls PDF export. Sizes are in points; A4 landscape by default.
type PDFOptions struct {
	PageWidth, PageHeight float64
	LabelSize, BodySize   float64
	HidePlaceholders      bool
	Title                 string
}

func (o PDFOptions) normalized() PDFOptions {
	if o.PageWidth <= 0 || o.PageHeight <= 0 {
		o.PageWidth, o.PageHeight = 842, 595
	}
	if o.LabelSize <= 0 {
		o.LabelSize = 9
	}
	if o.BodySize <= 0 {
		o.BodySize = 8
	}
	if o.Title == "" {
		o.Title = "Lean Canvas"
	}
	return o
}

// WritePDF renders rec as a single landscape page to w.
func WritePDF(w io.Writer, rec canvas.Record, opt PDFOptions) error {
	opt = opt.normalized()
	pdf := gofpdf.NewCustom(&gofpdf.InitType{
		OrientationStr: "L",
		UnitStr:        "pt",
		Size:           gofpdf.SizeType{Wd: opt.PageWidth, Ht: opt.PageHeight},
	})
	pdf.SetTitle(opt.Title, true)
	pdf.SetCreator("leancanvas "+version.String(), true)
	pdf.SetAutoPageBreak(false, 0)
	pdf.AddPage()
	// Core fonts are cp1252; translate so accents survive.
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	setFillColor(pdf, grid.Board)
	pdf.Rect(0, 0, opt.PageWidth, opt.PageHeight, "F")

	lo := grid.Options{Width: opt.PageWidth, Height: opt.PageHeight, Padding: 18, Gap: 8, TopShare: grid.Defaults().TopShare}
	pad := 8.0
	pdf.SetLineWidth(0.75)
	for _, c := range grid.Layout(lo) {
		setFillColor(pdf, grid.Tint(c.Field))
		setDrawColor(pdf, grid.Border)
		pdf.Rect(c.Rect.X, c.Rect.Y, c.Rect.W, c.Rect.H, "FD")

		inner := c.Rect.Inset(pad, pad)
		pdf.SetFont("Helvetica", "B", opt.LabelSize)
		setTextColor(pdf, grid.Ink)
		y := inner.Y + opt.LabelSize
		pdf.Text(inner.X, y, tr(c.Field.Label()))
		y += opt.LabelSize * 0.8

		text, col := rec.Value(c.Field), grid.Ink
		if text == "" {
			if opt.HidePlaceholders {
				continue
			}
			text, col = c.Field.Placeholder(), grid.Placeholder
		}
		pdf.SetFont("Helvetica", "", opt.BodySize)
		setTextColor(pdf, col)
		lh := opt.BodySize * 1.3
		measure := func(s string) float64 { return pdf.GetStringWidth(tr(s)) }
		lines := textlayout.WrapFunc(measure, text, inner.W)
		lines, _ = textlayout.Clip(measure, lines, int((inner.Y+inner.H-y)/lh), inner.W)
		for _, ln := range lines {
			y += lh
			pdf.Text(inner.X, y, tr(ln))
		}
	}
	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("render pdf: %w", err)
	}
	return nil
}

// ExportPDF writes rec to path as a PDF.
func ExportPDF(path string, rec canvas.Record, opt PDFOptions) error {
	var buf bytes.Buffer
	if err := WritePDF(&buf, rec, opt); err != nil {
		return err
	}
	if err := storage.ReplaceFileAtomic(path, buf.Bytes()); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

func setFillColor(pdf *gofpdf.Fpdf, c color.RGBA) { pdf.SetFillColor(int(c.R), int(c.G), int(c.B)) }
func setDrawColor(pdf *gofpdf.Fpdf, c color.RGBA) { pdf.SetDrawColor(int(c.R), int(c.G), int(c.B)) }
func setTextColor(pdf *gofpdf.Fpdf, c color.RGBA) { pdf.SetTextColor(int(c.R), int(c.G), int(c.B)) }
