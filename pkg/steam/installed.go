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
	"path/filepath"

	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"
)

// InstallPath returns where the app's files live inside lib, or false if
// the metadata names no install directory or one outside the library.
func InstallPath(lib Library, meta *AppMetadata) (string, bool) {
	dir, ok := meta.InstallDir()
	if !ok || !filepath.IsLocal(filepath.FromSlash(dir)) {
		return "", false
	}
	return filepath.Join(lib.CommonDir(), filepath.FromSlash(dir)), true
}

// IsInstalled reports whether any launch entry's executable exists under
// the app's install directory in lib. A launch index that is not a number
// returns ErrInconsistentMetadata.
func IsInstalled(fs afero.Fs, lib Library, meta *AppMetadata) (bool, error) {
	root, ok := InstallPath(lib, meta)
	if !ok {
		log.Debug().Uint32("appID", meta.AppID).Msg("no installdir in metadata")
		return false, nil
	}

	isDir, err := afero.IsDir(fs, root)
	if err != nil || !isDir {
		log.Debug().Uint32("appID", meta.AppID).Str("path", root).Msg("install directory missing")
		return false, nil
	}

	entries, err := meta.LaunchEntries()
	if err != nil {
		return false, err
	}

	for _, e := range entries {
		rel := e.ExecutablePath()
		if rel == "" {
			continue
		}
		if !filepath.IsLocal(filepath.FromSlash(rel)) {
			log.Debug().
				Uint32("appID", meta.AppID).
				Str("index", e.Index).
				Str("executable", rel).
				Msg("launch executable outside install directory")
			continue
		}
		exe := filepath.Join(root, filepath.FromSlash(rel))
		fi, err := fs.Stat(exe)
		if err != nil {
			continue
		}
		if fi.Mode().IsRegular() {
			log.Debug().
				Uint32("appID", meta.AppID).
				Str("index", e.Index).
				Str("exe", exe).
				Msg("found launch executable")
			return true, nil
		}
	}

	return false, nil
}
