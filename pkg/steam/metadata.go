// Zaparoo Steam Desktop
// Copyright (c) 2026 The Zaparoo Project Contributors.
// SPDX-License-Identifier: GPL-3.0-or-later
//
// This file is part of Zaparoo Steam Desktop.
//
// Zaparoo Steam Desktop is free software: you can redistribute it and/or
// modify it under the terms of the GNU General Public License as published
// by the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// Zaparoo Steam Desktop is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with Zaparoo Steam Desktop.  If not, see <http://www.gnu.org/licenses/>.

package steam

import (
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/ZaparooProject/steam-desktop/internal/vdfbinary"
)

// ErrInconsistentMetadata means appinfo data is not in the shape Steam
// writes it, e.g. a launch entry index that is not a number.
var ErrInconsistentMetadata = errors.New("inconsistent app metadata")

// AppMetadata is one decoded appinfo.vdf record. It is never modified
// after decoding.
type AppMetadata struct {
	data         vdfbinary.Map
	AppID        uint32
	InfoState    uint32
	LastUpdated  uint32
	ChangeNumber uint32
}

// NewAppMetadata wraps an already decoded appinfo tree.
func NewAppMetadata(appID uint32, data vdfbinary.Map) *AppMetadata {
	return &AppMetadata{AppID: appID, data: data}
}

// LaunchEntry is one indexed config/launch entry.
type LaunchEntry struct {
	Index      string
	Executable string // Relative executable path (e.g., "bin\\game.exe")
	Arguments  string
	Type       string // Launch type ("default", "none", "option1", etc.)
	OSList     string // Target OS list ("windows", "linux,macos")
	WorkingDir string
	HasOSList  bool
}

// Common returns the "common" section.
func (m *AppMetadata) Common() (vdfbinary.Map, bool) {
	return m.data.GetMap("common")
}

// Name returns common/name, or an empty string.
func (m *AppMetadata) Name() string {
	common, ok := m.Common()
	if !ok {
		return ""
	}
	name, _ := common.GetString("name")
	return strings.TrimSpace(name)
}

// Type returns common/type as stored, e.g. "Game" or "Tool".
func (m *AppMetadata) Type() (string, bool) {
	common, ok := m.Common()
	if !ok {
		return "", false
	}
	return common.GetString("type")
}

// IsGame reports whether the app has a common section whose type is
// "game" in any case. Apps without a type are never games.
func (m *AppMetadata) IsGame() bool {
	t, ok := m.Type()
	return ok && strings.EqualFold(t, "game")
}

// IconHash returns the content hash stored in common/<field>.
func (m *AppMetadata) IconHash(field string) (string, bool) {
	common, ok := m.Common()
	if !ok {
		return "", false
	}
	hash, ok := common.GetString(field)
	if !ok || hash == "" {
		return "", false
	}
	return hash, true
}

// InstallDir returns config/installdir.
func (m *AppMetadata) InstallDir() (string, bool) {
	cfg, ok := m.data.GetMap("config")
	if !ok {
		return "", false
	}
	dir, ok := cfg.GetString("installdir")
	if !ok || dir == "" {
		return "", false
	}
	return dir, true
}

// LaunchEntries returns config/launch entries ordered by index. Entries
// that are not objects are skipped; an index that is not a decimal number
// is an ErrInconsistentMetadata.
func (m *AppMetadata) LaunchEntries() ([]LaunchEntry, error) {
	cfg, ok := m.data.GetMap("config")
	if !ok {
		return nil, nil
	}
	launch, ok := cfg.GetMap("launch")
	if !ok {
		return nil, nil
	}

	keys := make([]string, 0, len(launch))
	for k := range launch {
		if !isDigits(k) {
			return nil, fmt.Errorf("%w: app %d: launch index %q", ErrInconsistentMetadata, m.AppID, k)
		}
		keys = append(keys, k)
	}
	slices.SortFunc(keys, compareIndex)

	entries := make([]LaunchEntry, 0, len(keys))
	for _, k := range keys {
		raw, ok := launch.GetMap(k)
		if !ok {
			continue
		}

		e := LaunchEntry{Index: k}
		e.Executable, _ = raw.GetString("executable")
		e.Arguments, _ = raw.GetString("arguments")
		e.Type, _ = raw.GetString("type")
		e.WorkingDir, _ = raw.GetString("workingdir")

		// OS list lives in the "config" sub-object
		if sub, ok := raw.GetMap("config"); ok {
			e.OSList, e.HasOSList = sub.GetString("oslist")
		}

		entries = append(entries, e)
	}
	return entries, nil
}

// IsWindows reports whether the executable path uses Windows separators.
// Entries without an OS list are assumed to be Windows-only.
func (e LaunchEntry) IsWindows() bool {
	if !e.HasOSList {
		return true
	}
	return matchesOS(e.OSList, "windows")
}

// ExecutablePath returns the executable as a slash-separated relative path.
func (e LaunchEntry) ExecutablePath() string {
	p := e.Executable
	if e.IsWindows() {
		p = strings.ReplaceAll(p, `\`, "/")
	}
	return strings.TrimLeft(p, "/")
}

// matchesOS checks if the comma-separated oslist contains the target OS.
func matchesOS(oslist, target string) bool {
	for name := range strings.SplitSeq(oslist, ",") {
		if strings.EqualFold(strings.TrimSpace(name), target) {
			return true
		}
	}
	return false
}

// compareIndex orders decimal index keys numerically, falling back to a
// string compare for equal values such as "1" and "01".
func compareIndex(a, b string) int {
	ai, _ := strconv.ParseUint(a, 10, 64)
	bi, _ := strconv.ParseUint(b, 10, 64)
	switch {
	case ai < bi:
		return -1
	case ai > bi:
		return 1
	default:
		return strings.Compare(a, b)
	}
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}
