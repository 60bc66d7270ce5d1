/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package main

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"beadboard/internal/config"
	"beadboard/internal/crash"
	"beadboard/internal/domain"
	"beadboard/internal/editor"
	"beadboard/internal/export"
	applog "beadboard/internal/log"
	"beadboard/internal/storage"
	"beadboard/internal/telemetry"
	"beadboard/internal/ui"
	"beadboard/internal/version"
)

func usage() {
	fmt.Println("Beadboard — peg board bead art")
	fmt.Printf("Version: %s\n", version.String())
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  beadboard version|-v|--version       Show version")
	fmt.Println("  beadboard list                        List saved designs, newest first")
	fmt.Println("  beadboard show <id>                   Print a design as text")
	fmt.Println("  beadboard delete <id>                 Remove a design and its gallery entry")
	fmt.Println("  beadboard export-pdf <id> <out.pdf>   Write a printable pattern sheet")
	fmt.Println("  beadboard export-png <id> <out.png>   Write a fused preview image")
	fmt.Println("  beadboard ui                          Launch the desktop editor (build with -tags fyne)")
}

func main() {
	applog.Init(applog.FromEnv())
	l := applog.WithComponent("cli")
	defer func() { crash.Recover(nil, "") }()

	args := os.Args
	l.Debug("start", slog.Int("args", len(args)))
	if len(args) > 1 {
		switch args[1] {
		case "version", "--version", "-v":
			fmt.Println("Beadboard — peg board bead art")
			fmt.Println(version.String())
			return
		case "list":
			store, cleanup := mustOpen(l)
			defer cleanup()
			idx, err := store.Index()
			if err != nil {
				fail(l, "list failed", err)
			}
			if len(idx) == 0 {
				fmt.Println("No designs saved yet.")
				return
			}
			for _, e := range idx {
				fmt.Printf("%s  %dx%d  %s\n", e.ID, e.Width, e.Height, e.UpdatedAt.Local().Format("2006-01-02 15:04"))
			}
			return
		case "show":
			if len(args) < 3 {
				fmt.Println("show requires <id>")
				usage()
				os.Exit(2)
			}
			store, cleanup := mustOpen(l)
			defer cleanup()
			printDesign(l, store, args[2])
			return
		case "delete":
			if len(args) < 3 {
				fmt.Println("delete requires <id>")
				usage()
				os.Exit(2)
			}
			store, cleanup := mustOpen(l)
			defer cleanup()
			if err := store.Delete(args[2]); err != nil {
				fail(l, "delete failed", err)
			}
			fmt.Println("Deleted", args[2])
			return
		case "export-pdf":
			if len(args) < 4 {
				fmt.Println("export-pdf requires <id> and <out.pdf>")
				usage()
				os.Exit(2)
			}
			store, cleanup := mustOpen(l)
			defer cleanup()
			d, err := store.Get(args[2])
			if err != nil {
				fail(l, "design not found", err)
			}
			if err := export.WritePatternPDF(d, args[3], export.PDFOptions{}); err != nil {
				fail(l, "export failed", err)
			}
			telemetry.Event("export_pdf", nil)
			fmt.Println("Wrote", args[3])
			return
		case "export-png":
			if len(args) < 4 {
				fmt.Println("export-png requires <id> and <out.png>")
				usage()
				os.Exit(2)
			}
			store, cleanup := mustOpen(l)
			defer cleanup()
			d, err := store.Get(args[2])
			if err != nil {
				fail(l, "design not found", err)
			}
			if err := export.WritePreviewPNG(d, args[3], export.PNGOptions{MarkUnstable: true}); err != nil {
				fail(l, "export failed", err)
			}
			telemetry.Event("export_png", nil)
			fmt.Println("Wrote", args[3])
			return
		case "ui":
			var dir string
			if len(args) >= 3 {
				dir = args[2]
			}
			if err := ui.Run(dir); err != nil {
				fmt.Println("Error:", err)
				os.Exit(1)
			}
			return
		}
	}

	usage()
}

// mustOpen wires the store behind a synchronizer for CLI commands. The
// editor behind it is a throwaway blank board that is never edited, so the
// flush on design switches stays a no-op.
func mustOpen(l *slog.Logger) (*storage.Synchronizer, func()) {
	cfg, err := config.Load()
	if err != nil {
		l.Warn("config load failed, using defaults", slog.Any("err", err))
		cfg = config.Defaults()
	}
	dataDir, err := cfg.EffectiveDataDir()
	if err != nil {
		fail(l, "resolve data dir", err)
	}
	db, err := storage.OpenSQLite(dataDir)
	if err != nil {
		fail(l, "open store", err)
	}
	ed, err := editor.New(1, 1)
	if err != nil {
		_ = db.Close()
		fail(l, "open gallery", err)
	}
	sync := storage.NewSynchronizer(db, ed, storage.SyncConfig{
		AutosaveDelay:  time.Hour,
		GalleryCap:     cfg.Persistence.GalleryCap,
		PaletteVersion: cfg.Editor.PaletteVersion,
	})
	return sync, func() {
		sync.Close()
		_ = db.Close()
	}
}

func printDesign(l *slog.Logger, store *storage.Synchronizer, id string) {
	d, err := store.Get(id)
	if err != nil {
		fail(l, "design not found", err)
	}
	g, err := domain.GridFromDesign(d)
	if err != nil {
		fail(l, "design is corrupt", err)
	}
	fmt.Printf("%s  %dx%d  palette %s\n", d.ID, d.Width, d.Height, d.PaletteVersion)
	for y := 0; y < g.Height; y++ {
		for x := 0; x < g.Width; x++ {
			v := g.Cells[y*g.Width+x]
			if v == 0 {
				fmt.Print(" .")
			} else {
				fmt.Printf("%2d", v)
			}
		}
		fmt.Println()
	}
	for idx, n := range g.ColorCounts() {
		fmt.Printf("color %d: %d beads\n", idx, n)
	}
}

func fail(l *slog.Logger, msg string, err error) {
	l.Error(msg, slog.Any("err", err))
	fmt.Println("Error:", err)
	os.Exit(1)
}
