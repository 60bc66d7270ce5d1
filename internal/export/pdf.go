/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package export

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/jung-kurt/gofpdf"

	"beadboard/internal/domain"
)

// PDFOptions controls the pattern sheet layout. Units are points.
type PDFOptions struct {
	CellSize float64 // square edge per peg, default 12pt
	Margin   float64 // page margin around the grid, default 36pt
	Title    string  // printed above the grid, default "Bead Pattern"
}

func (o *PDFOptions) fillDefaults() {
	if o.CellSize <= 0 {
		o.CellSize = 12
	}
	if o.Margin <= 0 {
		o.Margin = 36
	}
	if o.Title == "" {
		o.Title = "Bead Pattern"
	}
}

// WritePatternPDF renders a design as a single-page pattern sheet: the grid
// as colored squares with hairline peg outlines, followed by a legend of
// palette colors and bead counts. The page is sized to fit the grid.
func WritePatternPDF(d domain.Design, outPath string, opt PDFOptions) error {
	g, err := domain.GridFromDesign(d)
	if err != nil {
		return err
	}
	opt.fillDefaults()
	palette := domain.PaletteFor(d.PaletteVersion)

	counts := g.ColorCounts()
	legend := legendRows(palette, counts)

	const titleH = 24.0
	const legendRowH = 16.0
	gridW := float64(g.Width) * opt.CellSize
	gridH := float64(g.Height) * opt.CellSize
	pageW := gridW + 2*opt.Margin
	pageH := gridH + 2*opt.Margin + titleH + float64(len(legend))*legendRowH + legendRowH

	pdf := gofpdf.NewCustom(&gofpdf.InitType{
		UnitStr: "pt",
		Size:    gofpdf.SizeType{Wd: pageW, Ht: pageH},
	})
	pdf.SetTitle(opt.Title, false)
	pdf.SetAuthor("beadboard", false)
	pdf.SetFont("Helvetica", "", 12)
	pdf.AddPageFormat("", gofpdf.SizeType{Wd: pageW, Ht: pageH})

	pdf.SetFont("Helvetica", "B", 14)
	pdf.Text(opt.Margin, opt.Margin, opt.Title)
	pdf.SetFont("Helvetica", "", 10)
	pdf.Text(opt.Margin, opt.Margin+14, fmt.Sprintf("%d x %d pegs, %d beads", g.Width, g.Height, totalBeads(counts)))

	gridTop := opt.Margin + titleH
	pdf.SetLineWidth(0.3)
	for y := 0; y < g.Height; y++ {
		for x := 0; x < g.Width; x++ {
			v := g.Cells[y*g.Width+x]
			px := opt.Margin + float64(x)*opt.CellSize
			py := gridTop + float64(y)*opt.CellSize
			if v == domain.EmptyCell {
				pdf.SetDrawColor(0xd0, 0xd0, 0xd0)
				pdf.Rect(px, py, opt.CellSize, opt.CellSize, "D")
				continue
			}
			c, ok := domain.ColorByIndex(palette, v)
			if !ok {
				// Out-of-palette values render as a marked square so the
				// sheet is still usable.
				pdf.SetDrawColor(0, 0, 0)
				pdf.Rect(px, py, opt.CellSize, opt.CellSize, "D")
				pdf.Text(px+opt.CellSize/4, py+opt.CellSize*0.75, "?")
				continue
			}
			pdf.SetFillColor(int(c.R), int(c.G), int(c.B))
			pdf.SetDrawColor(0x60, 0x60, 0x60)
			pdf.Rect(px, py, opt.CellSize, opt.CellSize, "FD")
		}
	}

	legendTop := gridTop + gridH + legendRowH
	pdf.SetFont("Helvetica", "", 10)
	for i, row := range legend {
		y := legendTop + float64(i)*legendRowH
		pdf.SetFillColor(int(row.color.R), int(row.color.G), int(row.color.B))
		pdf.SetDrawColor(0x60, 0x60, 0x60)
		pdf.Rect(opt.Margin, y, 10, 10, "FD")
		pdf.Text(opt.Margin+16, y+9, fmt.Sprintf("%s (#%d): %d", row.color.Name, row.color.Index, row.count))
	}

	dir := filepath.Dir(outPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("ensure out dir: %w", err)
	}
	if err := pdf.OutputFileAndClose(outPath); err != nil {
		return fmt.Errorf("write pdf: %w", err)
	}
	return nil
}

type legendRow struct {
	color domain.BeadColor
	count int
}

// legendRows orders used colors by palette index so the sheet is stable
// across exports of the same design.
func legendRows(palette []domain.BeadColor, counts map[byte]int) []legendRow {
	rows := make([]legendRow, 0, len(counts))
	for idx, n := range counts {
		c, ok := domain.ColorByIndex(palette, idx)
		if !ok {
			c = domain.BeadColor{Index: idx, Name: fmt.Sprintf("Unknown %d", idx)}
		}
		rows = append(rows, legendRow{color: c, count: n})
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].color.Index < rows[j].color.Index })
	return rows
}

func totalBeads(counts map[byte]int) int {
	total := 0
	for _, n := range counts {
		total += n
	}
	return total
}
