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
	"iter"
	"os"
	"path/filepath"
	"slices"
	"strconv"

	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"
)

const manifestPattern = "appmanifest_*.acf"

var ErrBadManifest = errors.New("malformed app manifest")

// AppManifest is the subset of an appmanifest_*.acf file the tool reads.
type AppManifest struct {
	Name       string
	InstallDir string
	AppID      uint32
}

// InstalledApp is one manifest found under a library.
type InstalledApp struct {
	Library      Library
	ManifestPath string
	AppID        uint32
}

// ReadAppManifest parses one appmanifest_*.acf file. Only AppState/appid is
// required.
func ReadAppManifest(fs afero.Fs, path string) (AppManifest, error) {
	m, err := readTextVDF(fs, path)
	if err != nil {
		return AppManifest{}, err
	}

	appState, ok := m["appstate"].(map[string]any)
	if !ok {
		return AppManifest{}, fmt.Errorf("%w: %s: AppState not found", ErrBadManifest, path)
	}

	rawID, _ := appState["appid"].(string)
	id, err := strconv.ParseUint(rawID, 10, 32)
	if err != nil || !isDigits(rawID) {
		return AppManifest{}, fmt.Errorf("%w: %s: appid %q", ErrBadManifest, path, rawID)
	}

	name, _ := appState["name"].(string)             //nolint:revive // name is optional
	installDir, _ := appState["installdir"].(string) //nolint:revive // installdir is optional

	return AppManifest{
		AppID:      uint32(id),
		Name:       name,
		InstallDir: installDir,
	}, nil
}

// InstalledApps lazily yields one InstalledApp per manifest in the
// library's steamapps directory, in lexical file name order. A manifest
// that cannot be read is yielded as an error and iteration continues. A
// library without a steamapps directory yields nothing.
func InstalledApps(fs afero.Fs, lib Library) iter.Seq2[InstalledApp, error] {
	return func(yield func(InstalledApp, error) bool) {
		dir := lib.SteamAppsDir()
		entries, err := afero.ReadDir(fs, dir)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				log.Warn().Str("path", dir).Msg("steam library has no steamapps directory")
				return
			}
			yield(InstalledApp{}, fmt.Errorf("list %s: %w", dir, err))
			return
		}

		names := make([]string, 0, len(entries))
		for _, e := range entries {
			if e.IsDir() {
				continue
			}
			if ok, _ := filepath.Match(manifestPattern, e.Name()); ok {
				names = append(names, e.Name())
			}
		}
		slices.Sort(names)

		for _, name := range names {
			path := filepath.Join(dir, name)
			am, err := ReadAppManifest(fs, path)
			if err != nil {
				if !yield(InstalledApp{}, err) {
					return
				}
				continue
			}
			if !yield(InstalledApp{Library: lib, AppID: am.AppID, ManifestPath: path}, nil) {
				return
			}
		}
	}
}
