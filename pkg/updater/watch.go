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
	"fmt"
	"path/filepath"
	"time"

	"github.com/ZaparooProject/steam-desktop/pkg/steam"
	"github.com/fsnotify/fsnotify"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"
)

// DefaultDebounce is the quiet period Watch waits for after the last
// relevant change before starting a run.
const DefaultDebounce = 2 * time.Second

// Watch runs once, then again whenever Steam adds or changes an app
// manifest or the library list. Bursts of events within debounce collapse
// into a single run and runs never overlap. onRun, if set, receives the
// result of every run. Watch returns nil when ctx is cancelled.
//
//nolint:gocritic // options struct copied for immutability
func Watch(ctx context.Context, opts Options, debounce time.Duration, onRun func(Summary, error)) error {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	if opts.Fs == nil {
		opts.Fs = afero.NewOsFs()
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}
	defer func() {
		if closeErr := watcher.Close(); closeErr != nil {
			log.Error().Err(closeErr).Msg("error closing file watcher")
		}
	}()

	w := &libraryWatcher{watcher: watcher, opts: opts, watched: make(map[string]struct{})}
	w.sync()

	run := func() {
		sum, runErr := Run(ctx, opts)
		if runErr != nil && ctx.Err() == nil {
			log.Error().Err(runErr).Msg("steam desktop update failed")
		}
		if onRun != nil {
			onRun(sum, runErr)
		}
	}
	run()

	d := newDebouncer(clockwork.NewRealClock(), debounce)
	defer d.Stop()
	resync := false

	log.Info().Dur("debounce", debounce).Msg("watching steam libraries")
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			relevant, libs := classifyEvent(event)
			if !relevant {
				continue
			}
			log.Debug().Str("path", event.Name).Str("op", event.Op.String()).Msg("steam library change")
			resync = resync || libs
			d.Poke()
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Error().Err(err).Msg("error in watcher")
		case <-d.C():
			if resync {
				w.sync()
				resync = false
			}
			run()
		}
	}
}

// classifyEvent reports whether event should trigger a run, and whether
// it touched the library list.
func classifyEvent(event fsnotify.Event) (relevant, libraries bool) {
	if event.Op == fsnotify.Chmod {
		return false, false
	}
	base := filepath.Base(event.Name)
	if base == "libraryfolders.vdf" {
		return true, true
	}
	if ok, _ := filepath.Match("appmanifest_*.acf", base); ok {
		return true, false
	}
	return false, false
}

type libraryWatcher struct {
	watcher *fsnotify.Watcher
	watched map[string]struct{}
	opts    Options
}

// sync adds a watch on every library's steamapps directory. Directories
// already watched are left alone; removed libraries keep their watch until
// the watcher closes.
func (w *libraryWatcher) sync() {
	dirs := []string{filepath.Dir(steam.LibraryFoldersPath(w.opts.SteamRoot))}

	libs, err := steam.Libraries(w.opts.Fs, w.opts.SteamRoot)
	if err != nil {
		log.Warn().Err(err).Msg("could not list steam libraries to watch")
	}
	for _, lib := range libs {
		dirs = append(dirs, lib.SteamAppsDir())
	}

	for _, dir := range dirs {
		if _, ok := w.watched[dir]; ok {
			continue
		}
		if err := w.watcher.Add(dir); err != nil {
			log.Warn().Err(err).Str("path", dir).Msg("could not watch steam library")
			continue
		}
		w.watched[dir] = struct{}{}
		log.Debug().Str("path", dir).Msg("watching steam library")
	}
}

// debouncer fires once delay has passed since the last Poke.
type debouncer struct {
	clock clockwork.Clock
	timer clockwork.Timer
	delay time.Duration
}

func newDebouncer(clock clockwork.Clock, delay time.Duration) *debouncer {
	return &debouncer{clock: clock, delay: delay}
}

// Poke restarts the quiet period.
func (d *debouncer) Poke() {
	if d.timer == nil {
		d.timer = d.clock.NewTimer(d.delay)
		return
	}
	d.timer.Reset(d.delay)
}

// C fires when the quiet period ends. It is nil until the first Poke.
func (d *debouncer) C() <-chan time.Time {
	if d.timer == nil {
		return nil
	}
	return d.timer.Chan()
}

func (d *debouncer) Stop() {
	if d.timer != nil {
		d.timer.Stop()
	}
}
