/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package config

import (
	"testing"

	"gopkg.in/yaml.v3"
)

func TestDefaults(t *testing.T) {
	cfg := Defaults()
	if cfg.Persistence.AutosaveDelayMs != 1000 {
		t.Fatalf("autosave delay default: %d", cfg.Persistence.AutosaveDelayMs)
	}
	if cfg.Persistence.GalleryCap != 30 {
		t.Fatalf("gallery cap default: %d", cfg.Persistence.GalleryCap)
	}
	if cfg.Editor.DefaultWidth <= 0 || cfg.Editor.DefaultHeight <= 0 {
		t.Fatalf("default grid size must be positive")
	}
	if cfg.Editor.PaletteVersion == "" {
		t.Fatalf("palette version default empty")
	}
}

func TestMergeIntoKeepsDefaultsForZeroValues(t *testing.T) {
	dst := Defaults()
	var src AppConfig
	if err := yaml.Unmarshal([]byte("persistence:\n  gallery_cap: 5\n"), &src); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	mergeInto(&dst, &src)
	if dst.Persistence.GalleryCap != 5 {
		t.Fatalf("gallery cap not merged: %d", dst.Persistence.GalleryCap)
	}
	if dst.Persistence.AutosaveDelayMs != 1000 {
		t.Fatalf("autosave delay clobbered: %d", dst.Persistence.AutosaveDelayMs)
	}
	if dst.Editor.DefaultWidth != 29 {
		t.Fatalf("default width clobbered: %d", dst.Editor.DefaultWidth)
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv(EnvAutosaveDelayMs, "250")
	t.Setenv(EnvGalleryCap, "7")
	t.Setenv(EnvTelemetryOptIn, "yes")
	cfg := Defaults()
	applyEnvOverrides(&cfg)
	if cfg.Persistence.AutosaveDelayMs != 250 {
		t.Fatalf("autosave delay override: %d", cfg.Persistence.AutosaveDelayMs)
	}
	if cfg.Persistence.GalleryCap != 7 {
		t.Fatalf("gallery cap override: %d", cfg.Persistence.GalleryCap)
	}
	if !cfg.General.TelemetryOptIn {
		t.Fatalf("telemetry opt-in override not applied")
	}
	if name, ok := EnvOverrideFor("persistence.gallery_cap"); !ok || name != EnvGalleryCap {
		t.Fatalf("EnvOverrideFor mismatch: %s %v", name, ok)
	}
}

func TestEnvOverrideIgnoresInvalidNumbers(t *testing.T) {
	t.Setenv(EnvAutosaveDelayMs, "soon")
	t.Setenv(EnvGalleryCap, "-3")
	cfg := Defaults()
	applyEnvOverrides(&cfg)
	if cfg.Persistence.AutosaveDelayMs != 1000 || cfg.Persistence.GalleryCap != 30 {
		t.Fatalf("invalid env values must be ignored: %+v", cfg.Persistence)
	}
}
