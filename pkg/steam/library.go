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
	"path/filepath"
	"slices"

	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"
)

var ErrNoLibraries = errors.New("libraryfolders.vdf has no libraryfolders section")

// Library is a directory containing a steamapps tree.
type Library struct {
	Path string
}

// SteamAppsDir returns the library's steamapps directory.
func (l Library) SteamAppsDir() string {
	return filepath.Join(l.Path, "steamapps")
}

// CommonDir returns the directory games are installed under.
func (l Library) CommonDir() string {
	return filepath.Join(l.Path, "steamapps", "common")
}

// LibraryFoldersPath returns the location of the library list under a
// Steam root.
func LibraryFoldersPath(steamRoot string) string {
	return filepath.Join(steamRoot, "steamapps", "libraryfolders.vdf")
}

// Libraries reads libraryfolders.vdf and returns every library, the Steam
// root first. Entries are either a bare path string (older clients) or an
// object with a "path" key. Libraries are deduplicated by resolved path.
func Libraries(fs afero.Fs, steamRoot string) ([]Library, error) {
	m, err := readTextVDF(fs, LibraryFoldersPath(steamRoot))
	if err != nil {
		return nil, fmt.Errorf("read library folders: %w", err)
	}

	lfs, ok := m["libraryfolders"].(map[string]any)
	if !ok {
		return nil, ErrNoLibraries
	}

	keys := make([]string, 0, len(lfs))
	for k := range lfs {
		// contentstatsid and friends
		if isDigits(k) {
			keys = append(keys, k)
		}
	}
	slices.SortFunc(keys, compareIndex)

	seen := make(map[string]struct{}, len(keys)+1)
	libs := make([]Library, 0, len(keys)+1)
	add := func(path string) {
		resolved := resolvePath(fs, path)
		if _, dup := seen[resolved]; dup {
			log.Debug().Str("path", path).Msg("skipping duplicate steam library")
			return
		}
		seen[resolved] = struct{}{}
		libs = append(libs, Library{Path: resolved})
	}

	add(steamRoot)
	for _, id := range keys {
		var path string
		switch v := lfs[id].(type) {
		case string:
			path = v
		case map[string]any:
			path, _ = v["path"].(string)
		}
		if path == "" {
			log.Warn().Str("library", id).Msg("library entry has no path")
			continue
		}
		add(path)
	}

	return libs, nil
}

// resolvePath returns an absolute, cleaned path. Symlinks are only
// followed on the real OS filesystem.
func resolvePath(fs afero.Fs, path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = filepath.Clean(path)
	}
	if _, ok := fs.(*afero.OsFs); ok {
		if target, err := filepath.EvalSymlinks(abs); err == nil {
			return target
		}
	}
	return abs
}
