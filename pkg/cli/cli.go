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

// Package cli holds the command line surface shared by the steam-desktop
// binary: flags, config overlay and setup of logging.
package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"path/filepath"

	"github.com/ZaparooProject/steam-desktop/pkg/config"
	"github.com/ZaparooProject/steam-desktop/pkg/helpers"
	"github.com/ZaparooProject/steam-desktop/pkg/steam"
	"github.com/ZaparooProject/steam-desktop/pkg/updater"
	"github.com/adrg/xdg"
	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"
)

var ErrTooManyArgs = errors.New("at most one steam root may be given")

type Flags struct {
	set           *flag.FlagSet
	DataDir       *string
	SteamCommand  *string
	ConfigPath    *string
	LogDir        *string
	MaxIconSize   *int
	RefreshCaches *bool
	Watch         *bool
	Debug         *bool
	Version       *bool
}

// SetupFlags defines all CLI flags on set.
func SetupFlags(set *flag.FlagSet) *Flags {
	f := &Flags{
		set:          set,
		DataDir:      new(string),
		SteamCommand: new(string),
	}

	set.StringVar(f.DataDir, "datadir", config.DefaultOutputDir(), "directory that receives applications/ and icons/")
	set.StringVar(f.DataDir, "d", config.DefaultOutputDir(), "shorthand for -datadir")
	set.StringVar(f.SteamCommand, "steam-command", config.BaseDefaults.LaunchCommand,
		"command used in Exec= to open steam:// URLs")
	set.StringVar(f.SteamCommand, "c", config.BaseDefaults.LaunchCommand, "shorthand for -steam-command")

	f.ConfigPath = set.String("config", config.DefaultPath(), "path to the TOML config file")
	f.LogDir = set.String("log-dir", helpers.DefaultLogDir(), "directory for the rotating log file")
	f.MaxIconSize = set.Int("max-icon-size", 0, "largest icon size to place, 0 for native sizes only")
	f.RefreshCaches = set.Bool("refresh-caches", false,
		"run update-desktop-database and gtk-update-icon-cache afterwards")
	f.Watch = set.Bool("watch", false, "keep running and update when Steam installs or removes games")
	f.Debug = set.Bool("debug", false, "enable debug logging")
	f.Version = set.Bool("version", false, "print version and exit")

	return f
}

// Parse parses args and rejects more than one positional argument.
func (f *Flags) Parse(args []string) error {
	if err := f.set.Parse(args); err != nil {
		return fmt.Errorf("parse flags: %w", err)
	}
	if f.set.NArg() > 1 {
		return ErrTooManyArgs
	}
	return nil
}

// SteamRoot returns the positional Steam root, or "".
func (f *Flags) SteamRoot() string {
	return f.set.Arg(0)
}

func (f *Flags) isFlagPassed(names ...string) bool {
	found := false
	f.set.Visit(func(fl *flag.Flag) {
		for _, name := range names {
			if fl.Name == name {
				found = true
			}
		}
	})
	return found
}

// Apply overlays explicitly passed flags on top of vals, so an unset flag
// never clobbers a value from the config file.
//
//nolint:gocritic // config struct copied for immutability
func (f *Flags) Apply(vals config.Values) config.Values {
	if f.isFlagPassed("datadir", "d") || vals.OutputDir == "" {
		vals.OutputDir = *f.DataDir
	}
	if f.isFlagPassed("steam-command", "c") {
		vals.LaunchCommand = *f.SteamCommand
	}
	if f.isFlagPassed("max-icon-size") {
		vals.Icons.MaxSize = *f.MaxIconSize
	}
	if f.isFlagPassed("refresh-caches") {
		vals.RefreshCaches = *f.RefreshCaches
	}
	if f.isFlagPassed("watch") {
		vals.Watch.Enabled = *f.Watch
	}
	if f.isFlagPassed("debug") {
		vals.DebugLogging = *f.Debug
	}
	if root := f.SteamRoot(); root != "" {
		vals.SteamRoot = root
	}
	return vals
}

// ResolveSteamRoot returns configured when set, otherwise the first
// well-known Steam location under home.
func ResolveSteamRoot(fs afero.Fs, configured, home string) (string, error) {
	if configured != "" {
		abs, err := filepath.Abs(configured)
		if err != nil {
			return "", fmt.Errorf("resolve steam root: %w", err)
		}
		return abs, nil
	}
	root, err := steam.FindSteamDir(fs, steam.DefaultSteamDirs(home))
	if err != nil {
		return "", fmt.Errorf("locate steam: %w", err)
	}
	return root, nil
}

// Setup initializes logging and loads the config file with flags applied.
func (f *Flags) Setup(fs afero.Fs, writers []io.Writer) (config.Values, error) {
	if err := helpers.InitLogging(*f.LogDir, writers); err != nil {
		return config.Values{}, fmt.Errorf("initialize logging: %w", err)
	}

	vals, err := config.Load(fs, *f.ConfigPath, config.BaseDefaults)
	if err != nil {
		return config.Values{}, fmt.Errorf("load config: %w", err)
	}
	vals = f.Apply(vals)
	if err := config.Validate(vals); err != nil {
		return config.Values{}, err
	}

	helpers.SetDebug(vals.DebugLogging)
	return vals, nil
}

// Options converts settings into updater options.
//
//nolint:gocritic // config struct copied for immutability
func Options(fs afero.Fs, vals config.Values) (updater.Options, error) {
	root, err := ResolveSteamRoot(fs, vals.SteamRoot, xdg.Home)
	if err != nil {
		return updater.Options{}, err
	}
	return updater.Options{
		Fs:            fs,
		SteamRoot:     root,
		OutputRoot:    vals.OutputDir,
		LaunchCommand: vals.LaunchCommand,
		MaxIconSize:   vals.Icons.MaxSize,
		RefreshCaches: vals.RefreshCaches,
	}, nil
}

// RunApp performs a single update, or keeps watching when enabled.
//
//nolint:gocritic // config struct copied for immutability
func RunApp(ctx context.Context, fs afero.Fs, vals config.Values, out io.Writer) error {
	opts, err := Options(fs, vals)
	if err != nil {
		return err
	}
	log.Info().Str("steamRoot", opts.SteamRoot).Str("output", opts.OutputRoot).Msg("starting update")

	if vals.Watch.Enabled {
		return updater.Watch(ctx, opts, vals.Watch.DebounceDuration(), func(sum updater.Summary, err error) {
			if err == nil {
				printSummary(out, sum)
			}
		})
	}

	sum, err := updater.Run(ctx, opts)
	if err != nil {
		return err
	}
	printSummary(out, sum)
	return nil
}

func printSummary(out io.Writer, sum updater.Summary) {
	_, _ = fmt.Fprintf(out, "%d desktop entries and %d icons written (%d installed games in %d libraries)\n",
		sum.Entries, sum.Icons, sum.Installed, sum.Libraries)
}

// PrintVersion prints the version line if -version was given.
func (f *Flags) PrintVersion(out io.Writer) bool {
	if !*f.Version {
		return false
	}
	_, _ = fmt.Fprintf(out, "%s v%s\n", helpers.AppName, config.AppVersion)
	return true
}
