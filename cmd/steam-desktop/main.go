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

package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/ZaparooProject/steam-desktop/pkg/cli"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"
)

func main() {
	if err := run(); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}

func run() error {
	set := flag.NewFlagSet(os.Args[0], flag.ExitOnError)
	set.Usage = func() {
		_, _ = fmt.Fprintf(set.Output(), "Usage: %s [flags] [steam_root]\n", os.Args[0])
		set.PrintDefaults()
	}
	flags := cli.SetupFlags(set)
	if err := flags.Parse(os.Args[1:]); err != nil {
		return err
	}
	if flags.PrintVersion(os.Stdout) {
		return nil
	}

	fs := afero.NewOsFs()
	logWriters := []io.Writer{zerolog.ConsoleWriter{Out: os.Stderr}}
	vals, err := flags.Setup(fs, logWriters)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := cli.RunApp(ctx, fs, vals, os.Stdout); err != nil {
		log.Error().Err(err).Msg("update failed")
		return err
	}
	return nil
}
