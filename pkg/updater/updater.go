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

// Package updater drives a full pass over a Steam installation, writing a
// desktop entry and icons for every installed game.
package updater

import (
	"context"
	"errors"
	"fmt"

	"github.com/ZaparooProject/steam-desktop/pkg/desktop"
	"github.com/ZaparooProject/steam-desktop/pkg/helpers/command"
	"github.com/ZaparooProject/steam-desktop/pkg/icons"
	"github.com/ZaparooProject/steam-desktop/pkg/steam"
	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"
)

var ErrNoSteamRoot = errors.New("steam root is not a directory")

// Options configures one run.
type Options struct {
	Fs afero.Fs
	// Cmd runs the desktop cache tools; nil uses the real executor.
	Cmd           command.Executor
	SteamRoot     string
	OutputRoot    string
	LaunchCommand string
	MaxIconSize   int
	RefreshCaches bool
}

// Summary counts what a run saw and wrote.
type Summary struct {
	Libraries int
	Apps      int
	Games     int
	Installed int
	Entries   int
	Icons     int
}

type runner struct {
	opts    Options
	reader  *steam.AppInfoReader
	placer  *icons.Placer
	iconDir string
	sum     Summary
}

// Run processes every installed app once. Setup failures, a corrupt
// appinfo.vdf and inconsistent launch metadata abort the run; icon
// problems only affect the app they belong to. Cancellation is checked
// between apps.
//
//nolint:gocritic // options struct copied for immutability
func Run(ctx context.Context, opts Options) (Summary, error) {
	if opts.Fs == nil {
		opts.Fs = afero.NewOsFs()
	}

	if ok, err := afero.DirExists(opts.Fs, opts.SteamRoot); err != nil || !ok {
		return Summary{}, fmt.Errorf("%w: %s", ErrNoSteamRoot, opts.SteamRoot)
	}

	libs, err := steam.Libraries(opts.Fs, opts.SteamRoot)
	if err != nil {
		return Summary{}, err
	}

	reader, err := steam.OpenAppInfo(opts.Fs, steam.AppInfoPath(opts.SteamRoot))
	if err != nil {
		return Summary{}, err
	}
	defer func() {
		if closeErr := reader.Close(); closeErr != nil {
			log.Warn().Err(closeErr).Msg("error closing appinfo.vdf")
		}
	}()
	log.Debug().Int("version", reader.Version()).Uint32("universe", reader.Universe()).
		Msg("opened appinfo.vdf")

	r := &runner{
		opts:    opts,
		reader:  reader,
		iconDir: icons.CacheDir(opts.SteamRoot),
		placer: &icons.Placer{
			Fs:         opts.Fs,
			OutputRoot: opts.OutputRoot,
			MaxSize:    opts.MaxIconSize,
		},
		sum: Summary{Libraries: len(libs)},
	}

	if err := r.walk(ctx, libs); err != nil {
		return r.sum, err
	}

	if opts.RefreshCaches {
		cmd := opts.Cmd
		if cmd == nil {
			cmd = &command.RealExecutor{}
		}
		RefreshCaches(ctx, cmd, opts.OutputRoot)
	}

	stats := reader.Stats()
	log.Info().
		Int("libraries", r.sum.Libraries).
		Int("apps", r.sum.Apps).
		Int("games", r.sum.Games).
		Int("installed", r.sum.Installed).
		Int("entries", r.sum.Entries).
		Int("icons", r.sum.Icons).
		Int("decoded", stats.Decoded).
		Msg("steam desktop update finished")

	return r.sum, nil
}

// walk visits apps library by library. An app ID seen in an earlier
// library wins over later ones.
func (r *runner) walk(ctx context.Context, libs []steam.Library) error {
	owner := make(map[uint32]string)
	for _, lib := range libs {
		log.Debug().Str("path", lib.Path).Msg("scanning steam library")
		for app, err := range steam.InstalledApps(r.opts.Fs, lib) {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return fmt.Errorf("update cancelled: %w", ctxErr)
			}
			if err != nil {
				log.Warn().Err(err).Str("library", lib.Path).Msg("skipping app manifest")
				continue
			}
			if prev, dup := owner[app.AppID]; dup {
				log.Debug().Uint32("appID", app.AppID).Str("library", lib.Path).Str("kept", prev).
					Msg("app installed in more than one library, keeping first")
				continue
			}
			owner[app.AppID] = lib.Path

			r.sum.Apps++
			if err := r.process(app); err != nil {
				return err
			}
		}
	}
	return nil
}

func (r *runner) process(app steam.InstalledApp) error {
	meta, err := r.reader.Lookup(app.AppID)
	if errors.Is(err, steam.ErrAppNotFound) {
		log.Warn().Uint32("appID", app.AppID).Msg("no metadata cached for installed app")
		return nil
	}
	if err != nil {
		return fmt.Errorf("lookup app %d: %w", app.AppID, err)
	}

	if !meta.IsGame() {
		log.Info().Uint32("appID", app.AppID).Str("name", meta.Name()).Msg("skipping, not a game")
		return nil
	}
	r.sum.Games++

	installed, err := steam.IsInstalled(r.opts.Fs, app.Library, meta)
	if err != nil {
		return fmt.Errorf("check app %d: %w", app.AppID, err)
	}
	if !installed {
		log.Info().Uint32("appID", app.AppID).Str("name", meta.Name()).Msg("skipping, not installed")
		return nil
	}
	r.sum.Installed++

	name := meta.Name()
	if name == "" {
		log.Warn().Uint32("appID", app.AppID).Msg("skipping, app has no name")
		return nil
	}
	entry := desktop.NewEntry(app.AppID, name, r.opts.LaunchCommand)
	path, err := desktop.Write(r.opts.Fs, r.opts.OutputRoot, app.AppID, entry)
	if err != nil {
		return fmt.Errorf("app %d: %w", app.AppID, err)
	}
	r.sum.Entries++
	log.Info().Uint32("appID", app.AppID).Str("name", name).Str("path", path).Msg("wrote desktop entry")

	r.placeIcons(app.AppID, meta)
	return nil
}

func (r *runner) placeIcons(appID uint32, meta *steam.AppMetadata) {
	ref, ok := icons.Resolve(r.opts.Fs, r.iconDir, meta)
	if !ok {
		log.Warn().Uint32("appID", appID).Msg("no icon found")
		return
	}

	list, err := icons.Extract(r.opts.Fs, ref)
	if err != nil {
		log.Warn().Err(err).Uint32("appID", appID).Msg("could not read icon container")
		return
	}
	if len(list) == 0 {
		log.Warn().Uint32("appID", appID).Str("container", ref.Path).Msg("no usable icons in container")
		return
	}

	paths, err := r.placer.Place(desktop.IconName(appID), list)
	r.sum.Icons += len(paths)
	if err != nil {
		log.Warn().Err(err).Uint32("appID", appID).Msg("error placing icons")
	}
	log.Debug().Uint32("appID", appID).Str("kind", ref.Kind.String()).Int("count", len(paths)).
		Msg("placed icons")
}
