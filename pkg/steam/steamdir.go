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
	"path/filepath"
	"strconv"

	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"
)

// FlatpakSteamID is the Flatpak app ID for Steam.
const FlatpakSteamID = "com.valvesoftware.Steam"

var ErrSteamNotFound = errors.New("steam installation not found")

// DefaultSteamDirs returns the usual Steam root locations on Linux, most
// common first.
func DefaultSteamDirs(home string) []string {
	return []string{
		filepath.Join(home, ".steam", "steam"),
		filepath.Join(home, ".local", "share", "Steam"),
		filepath.Join(home, ".var", "app", FlatpakSteamID, ".steam", "steam"),
		filepath.Join(home, ".var", "app", FlatpakSteamID, ".local", "share", "Steam"),
		filepath.Join(home, "snap", "steam", "common", ".steam", "steam"),
		"/usr/games/steam",
		"/opt/steam",
	}
}

// FindSteamDir returns the first candidate that looks like a Steam root,
// i.e. has a library list.
func FindSteamDir(fs afero.Fs, candidates []string) (string, error) {
	for _, path := range candidates {
		if ok, _ := afero.Exists(fs, LibraryFoldersPath(path)); ok {
			log.Debug().Msgf("found Steam installation: %s", path)
			return path, nil
		}
	}
	return "", ErrSteamNotFound
}

// BuildRunGameURL builds the Steam URL that launches an app.
func BuildRunGameURL(appID uint32) string {
	return "steam://rungameid/" + strconv.FormatUint(uint64(appID), 10)
}
