//go:build fyne && cgo

/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package ui

import (
	"fmt"
	"image"
	"image/color"
	"log/slog"
	"path/filepath"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/widget"

	"beadboard/internal/config"
	"beadboard/internal/crash"
	"beadboard/internal/domain"
	"beadboard/internal/editor"
	"beadboard/internal/export"
	applog "beadboard/internal/log"
	"beadboard/internal/stability"
	"beadboard/internal/storage"
	"beadboard/internal/telemetry"
)

// Run starts the Fyne-based desktop board editor.
func Run(dataDir string) error {
	applog.Init(applog.FromEnv())
	l := applog.WithComponent("ui")
	l.Info("starting UI")

	cfg, err := config.Load()
	if err != nil {
		l.Warn("config load failed, using defaults", slog.Any("err", err))
		cfg = config.Defaults()
	}
	if dataDir == "" {
		dataDir, err = cfg.EffectiveDataDir()
		if err != nil {
			return fmt.Errorf("resolve data dir: %w", err)
		}
	}

	store, err := storage.OpenSQLite(dataDir)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer store.Close()

	ed, err := editor.New(cfg.Editor.DefaultWidth, cfg.Editor.DefaultHeight)
	if err != nil {
		return err
	}
	sync := storage.NewSynchronizer(store, ed, storage.SyncConfig{
		AutosaveDelay:  time.Duration(cfg.Persistence.AutosaveDelayMs) * time.Millisecond,
		GalleryCap:     cfg.Persistence.GalleryCap,
		PaletteVersion: cfg.Editor.PaletteVersion,
	})
	defer sync.Close()
	defer func() { crash.Recover(sync, dataDir) }()

	if ok, err := sync.RestoreCurrent(); err != nil {
		l.Warn("session restore failed", slog.Any("err", err))
	} else if ok {
		l.Info("session restored", slog.String("id", sync.CurrentID()))
	}

	fyneApp := app.NewWithID("beadboard")
	w := fyneApp.NewWindow("Beadboard")
	prefs := fyneApp.Preferences()
	winW := prefs.IntWithFallback("window.width", 1000)
	winH := prefs.IntWithFallback("window.height", 760)
	if winW < 640 {
		winW = 640
	}
	if winH < 480 {
		winH = 480
	}
	w.Resize(fyne.NewSize(float32(winW), float32(winH)))

	status := widget.NewLabel("Ready")
	board := NewBoardCanvas(ed)
	board.showUnstable = prefs.BoolWithFallback("overlay.unstable", false)

	refreshStatus := func() {
		g := ed.Grid()
		dirty := ""
		if sync.Dirty() {
			dirty = " *"
		}
		name := sync.CurrentID()
		if name == "" {
			name = "unsaved draft"
		}
		status.SetText(fmt.Sprintf("%s%s  |  %dx%d  |  %d beads", name, dirty, g.Width, g.Height, totalBeads(g)))
	}

	// Gallery (left pane)
	var entries []domain.DesignIndexEntry
	gallery := widget.NewList(
		func() int { return len(entries) },
		func() fyne.CanvasObject { return widget.NewLabel("") },
		func(i widget.ListItemID, o fyne.CanvasObject) {
			if i < 0 || int(i) >= len(entries) {
				return
			}
			e := entries[i]
			o.(*widget.Label).SetText(fmt.Sprintf("%dx%d  %s", e.Width, e.Height, e.UpdatedAt.Local().Format("Jan 2 15:04")))
		},
	)
	refreshGallery := func() {
		idx, err := sync.Index()
		if err != nil {
			l.Warn("gallery refresh failed", slog.Any("err", err))
			return
		}
		entries = idx
		gallery.Refresh()
	}
	gallery.OnSelected = func(i widget.ListItemID) {
		gallery.Unselect(i)
		if i < 0 || int(i) >= len(entries) {
			return
		}
		if err := sync.Load(entries[i].ID); err != nil {
			dialog.ShowError(err, w)
			return
		}
		telemetry.Event("design_loaded", nil)
		board.Refresh()
		refreshGallery()
		refreshStatus()
	}

	// Toolbar (top)
	toolSelect := widget.NewSelect([]string{"Paint", "Erase", "Pan"}, func(v string) {
		switch v {
		case "Erase":
			ed.SetTool(editor.ToolErase)
		case "Pan":
			ed.SetTool(editor.ToolPan)
		default:
			ed.SetTool(editor.ToolPaint)
		}
	})
	toolSelect.SetSelected("Paint")

	palette := domain.PaletteFor(cfg.Editor.PaletteVersion)
	colorNames := make([]string, len(palette))
	for i, c := range palette {
		colorNames[i] = c.Name
	}
	colorSelect := widget.NewSelect(colorNames, func(v string) {
		for _, c := range palette {
			if c.Name == v {
				ed.SetActiveColor(c.Index)
				return
			}
		}
	})
	colorSelect.SetSelected(colorNames[0])

	afterEdit := func() {
		board.Refresh()
		refreshStatus()
	}
	board.onChanged = afterEdit

	undoBtn := widget.NewButton("Undo", func() { ed.Undo(); afterEdit() })
	redoBtn := widget.NewButton("Redo", func() { ed.Redo(); afterEdit() })
	clearBtn := widget.NewButton("Clear", func() { ed.ClearBoard(); afterEdit() })
	newBtn := widget.NewButton("New", func() {
		if err := sync.CreateNew(cfg.Editor.DefaultWidth, cfg.Editor.DefaultHeight); err != nil {
			dialog.ShowError(err, w)
			return
		}
		afterEdit()
		refreshGallery()
	})
	saveBtn := widget.NewButton("Save", func() {
		id, err := sync.Save()
		if err != nil {
			dialog.ShowError(err, w)
			return
		}
		g := ed.Grid()
		telemetry.Event("design_saved", map[string]any{"w": g.Width, "h": g.Height})
		l.Info("design saved", slog.String("id", id))
		refreshGallery()
		refreshStatus()
	})
	unstableCheck := widget.NewCheck("Show unstable", func(v bool) {
		board.showUnstable = v
		prefs.SetBool("overlay.unstable", v)
		board.Refresh()
	})
	unstableCheck.SetChecked(board.showUnstable)

	exportName := func(ext string) string {
		id := sync.CurrentID()
		if id == "" {
			id = "draft"
		}
		return filepath.Join(dataDir, "exports", fmt.Sprintf("%s-%s.%s", id, time.Now().Format("20060102-150405"), ext))
	}
	currentDesign := func() (domain.Design, error) {
		if err := sync.Flush(); err != nil {
			return domain.Design{}, err
		}
		id := sync.CurrentID()
		if id == "" {
			return domain.Design{}, fmt.Errorf("nothing to export: the board is empty")
		}
		return sync.Get(id)
	}
	exportPDFBtn := widget.NewButton("Pattern PDF", func() {
		d, err := currentDesign()
		if err != nil {
			dialog.ShowError(err, w)
			return
		}
		out := exportName("pdf")
		if err := export.WritePatternPDF(d, out, export.PDFOptions{}); err != nil {
			dialog.ShowError(err, w)
			return
		}
		telemetry.Event("export_pdf", nil)
		status.SetText("Exported " + out)
	})
	exportPNGBtn := widget.NewButton("Preview PNG", func() {
		d, err := currentDesign()
		if err != nil {
			dialog.ShowError(err, w)
			return
		}
		out := exportName("png")
		if err := export.WritePreviewPNG(d, out, export.PNGOptions{MarkUnstable: board.showUnstable}); err != nil {
			dialog.ShowError(err, w)
			return
		}
		telemetry.Event("export_png", nil)
		status.SetText("Exported " + out)
	})

	toolbar := container.NewHBox(
		toolSelect, colorSelect, widget.NewSeparator(),
		undoBtn, redoBtn, clearBtn, widget.NewSeparator(),
		newBtn, saveBtn, widget.NewSeparator(),
		unstableCheck, exportPDFBtn, exportPNGBtn,
	)

	// Keyboard shortcuts
	w.Canvas().AddShortcut(&desktop.CustomShortcut{KeyName: fyne.KeyZ, Modifier: fyne.KeyModifierControl}, func(fyne.Shortcut) {
		ed.Undo()
		afterEdit()
	})
	w.Canvas().AddShortcut(&desktop.CustomShortcut{KeyName: fyne.KeyY, Modifier: fyne.KeyModifierControl}, func(fyne.Shortcut) {
		ed.Redo()
		afterEdit()
	})
	w.Canvas().AddShortcut(&desktop.CustomShortcut{KeyName: fyne.KeyS, Modifier: fyne.KeyModifierControl}, func(fyne.Shortcut) {
		if _, err := sync.Save(); err != nil {
			dialog.ShowError(err, w)
			return
		}
		refreshGallery()
		refreshStatus()
	})

	left := container.NewBorder(widget.NewLabel("Gallery"), nil, nil, nil, gallery)
	content := container.NewBorder(toolbar, status, left, nil, board)
	w.SetContent(content)

	w.SetOnClosed(func() {
		sz := w.Canvas().Size()
		prefs.SetInt("window.width", int(sz.Width))
		prefs.SetInt("window.height", int(sz.Height))
		if err := sync.Flush(); err != nil {
			l.Error("flush on close failed", slog.Any("err", err))
		}
	})

	refreshGallery()
	refreshStatus()
	w.ShowAndRun()
	return nil
}

// BoardCanvas renders the peg grid and turns pointer gestures into editor
// strokes. A drag with the pan tool moves the viewport instead.
type BoardCanvas struct {
	widget.BaseWidget
	ed *editor.Editor

	cellPx       float32
	offsetX      float32
	offsetY      float32
	showUnstable bool
	dragging     bool

	// onChanged runs after every gesture that may have mutated the grid.
	onChanged func()
}

func NewBoardCanvas(ed *editor.Editor) *BoardCanvas {
	bc := &BoardCanvas{ed: ed, cellPx: 20}
	bc.ExtendBaseWidget(bc)
	return bc
}

func (b *BoardCanvas) CreateRenderer() fyne.WidgetRenderer {
	raster := canvas.NewRaster(b.draw)
	return &boardCanvasRenderer{bc: b, raster: raster}
}

// cellAt maps a widget position to a grid index, or -1 when outside.
func (b *BoardCanvas) cellAt(pos fyne.Position) int {
	g := b.ed.Grid()
	col := int((pos.X - b.offsetX) / b.cellPx)
	row := int((pos.Y - b.offsetY) / b.cellPx)
	if pos.X < b.offsetX || pos.Y < b.offsetY || col < 0 || col >= g.Width || row < 0 || row >= g.Height {
		return -1
	}
	return row*g.Width + col
}

func (b *BoardCanvas) Tapped(e *fyne.PointEvent) {
	if b.ed.Tool() == editor.ToolPan {
		return
	}
	idx := b.cellAt(e.Position)
	if idx < 0 {
		return
	}
	b.ed.StartStroke(idx)
	b.ed.EndStroke()
	b.notifyChanged()
}

func (b *BoardCanvas) Dragged(e *fyne.DragEvent) {
	if b.ed.Tool() == editor.ToolPan {
		b.offsetX += e.Dragged.DX
		b.offsetY += e.Dragged.DY
		b.Refresh()
		return
	}
	idx := b.cellAt(e.Position)
	if !b.dragging {
		b.dragging = true
		if idx >= 0 {
			b.ed.StartStroke(idx)
		} else {
			b.ed.StartStroke(-1)
		}
	} else if idx >= 0 {
		b.ed.ContinueStroke(idx)
	}
	b.notifyChanged()
}

func (b *BoardCanvas) DragEnd() {
	if b.dragging {
		b.dragging = false
		b.ed.EndStroke()
		b.notifyChanged()
	}
}

func (b *BoardCanvas) Scrolled(e *fyne.ScrollEvent) {
	b.cellPx += e.Scrolled.DY / 10
	if b.cellPx < 4 {
		b.cellPx = 4
	}
	if b.cellPx > 64 {
		b.cellPx = 64
	}
	b.Refresh()
}

func (b *BoardCanvas) notifyChanged() {
	b.Refresh()
	if b.onChanged != nil {
		b.onChanged()
	}
}

var (
	boardBackground = color.RGBA{R: 30, G: 30, B: 34, A: 255}
	boardEmptyPeg   = color.RGBA{R: 58, G: 58, B: 64, A: 255}
	boardUnstable   = color.RGBA{R: 0xe5, G: 0x39, B: 0x35, A: 255}
)

// draw renders the full board into a pixel buffer. The raster hands us the
// device pixel size, so widget coordinates are rescaled by the pixel ratio.
func (b *BoardCanvas) draw(w, h int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	fill(img, 0, 0, w, h, boardBackground)

	g := b.ed.Grid()
	size := b.Size()
	scale := float32(1)
	if size.Width > 0 {
		scale = float32(w) / size.Width
	}
	cell := b.cellPx * scale
	ox := b.offsetX * scale
	oy := b.offsetY * scale

	palette := domain.PaletteFor("")
	var unstable map[int]struct{}
	if b.showUnstable {
		unstable = stability.FindUnstable(g.Cells, g.Width, g.Height)
	}

	for row := 0; row < g.Height; row++ {
		for col := 0; col < g.Width; col++ {
			x0 := int(ox + float32(col)*cell)
			y0 := int(oy + float32(row)*cell)
			x1 := int(ox + float32(col+1)*cell)
			y1 := int(oy + float32(row+1)*cell)
			if x1 <= 0 || y1 <= 0 || x0 >= w || y0 >= h {
				continue
			}
			idx := row*g.Width + col
			v := g.Cells[idx]
			cellColor := boardEmptyPeg
			if v != domain.EmptyCell {
				if c, ok := domain.ColorByIndex(palette, v); ok {
					cellColor = color.RGBA{R: c.R, G: c.G, B: c.B, A: 255}
				}
			}
			// 1px gap keeps the peg grid visible
			fill(img, x0, y0, x1-1, y1-1, cellColor)
			if unstable != nil {
				if _, bad := unstable[idx]; bad {
					outline(img, x0, y0, x1-1, y1-1, boardUnstable)
				}
			}
		}
	}
	return img
}

func fill(img *image.RGBA, x0, y0, x1, y1 int, c color.RGBA) {
	bounds := img.Bounds()
	if x0 < bounds.Min.X {
		x0 = bounds.Min.X
	}
	if y0 < bounds.Min.Y {
		y0 = bounds.Min.Y
	}
	if x1 > bounds.Max.X {
		x1 = bounds.Max.X
	}
	if y1 > bounds.Max.Y {
		y1 = bounds.Max.Y
	}
	for y := y0; y < y1; y++ {
		for x := x0; x < x1; x++ {
			img.SetRGBA(x, y, c)
		}
	}
}

func outline(img *image.RGBA, x0, y0, x1, y1 int, c color.RGBA) {
	for x := x0; x < x1; x++ {
		img.SetRGBA(x, y0, c)
		img.SetRGBA(x, y1-1, c)
	}
	for y := y0; y < y1; y++ {
		img.SetRGBA(x0, y, c)
		img.SetRGBA(x1-1, y, c)
	}
}

type boardCanvasRenderer struct {
	bc     *BoardCanvas
	raster *canvas.Raster
}

func (r *boardCanvasRenderer) Layout(size fyne.Size) {
	r.raster.Resize(size)
}

func (r *boardCanvasRenderer) MinSize() fyne.Size {
	return fyne.NewSize(320, 320)
}

func (r *boardCanvasRenderer) Refresh() {
	canvas.Refresh(r.raster)
}

func (r *boardCanvasRenderer) Objects() []fyne.CanvasObject {
	return []fyne.CanvasObject{r.raster}
}

func (r *boardCanvasRenderer) Destroy() {}

// totalBeads is the number of occupied pegs, summed across all colors.
func totalBeads(g domain.Grid) int {
	n := 0
	for _, c := range g.ColorCounts() {
		n += c
	}
	return n
}
