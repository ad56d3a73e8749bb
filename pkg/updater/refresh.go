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

package updater

import (
	"context"
	"path/filepath"

	"github.com/ZaparooProject/steam-desktop/pkg/helpers/command"
	"github.com/rs/zerolog/log"
)

// RefreshCaches asks the desktop environment to pick up new entries and
// icons. Missing tools and tool failures are only logged.
func RefreshCaches(ctx context.Context, cmd command.Executor, outputRoot string) {
	tools := [][]string{
		{"update-desktop-database", filepath.Join(outputRoot, "applications")},
		{"gtk-update-icon-cache", "-f", "-t", filepath.Join(outputRoot, "icons", "hicolor")},
	}
	for _, tool := range tools {
		if _, err := cmd.LookPath(tool[0]); err != nil {
			log.Debug().Str("tool", tool[0]).Msg("cache tool not found, skipping")
			continue
		}
		if err := cmd.Run(ctx, tool[0], tool[1:]...); err != nil {
			log.Debug().Err(err).Str("tool", tool[0]).Msg("cache refresh failed")
			continue
		}
		log.Debug().Str("tool", tool[0]).Msg("refreshed cache")
	}
}
