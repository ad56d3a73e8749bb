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

// Package config loads the optional TOML settings file.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ZaparooProject/steam-desktop/pkg/helpers"
	"github.com/adrg/xdg"
	"github.com/go-playground/validator/v10"
	toml "github.com/pelletier/go-toml/v2"
	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"
)

const (
	SchemaVersion = 1
	CfgEnv        = "STEAM_DESKTOP_CFG"
	CfgFile       = "config.toml"
)

var ErrSchemaMismatch = errors.New("schema version mismatch")

type Values struct {
	SteamRoot     string `toml:"steam_root,omitempty"`
	OutputDir     string `toml:"output_dir,omitempty"`
	LaunchCommand string `toml:"launch_command" validate:"required"`
	Icons         Icons  `toml:"icons"`
	Watch         Watch  `toml:"watch"`
	ConfigSchema  int    `toml:"config_schema"`
	DebugLogging  bool   `toml:"debug_logging"`
	RefreshCaches bool   `toml:"refresh_caches"`
}

type Icons struct {
	// MaxSize caps placed icon resolution; 0 places native sizes only.
	MaxSize int `toml:"max_size" validate:"gte=0,lte=1024"`
}

type Watch struct {
	Debounce string `toml:"debounce" validate:"duration"`
	Enabled  bool   `toml:"enabled"`
}

var BaseDefaults = Values{
	ConfigSchema:  SchemaVersion,
	LaunchCommand: "xdg-open",
	Watch: Watch{
		Debounce: "2s",
	},
}

// DebounceDuration returns the parsed watch debounce, falling back to the
// default for an empty value.
func (w Watch) DebounceDuration() time.Duration {
	if w.Debounce == "" {
		w.Debounce = BaseDefaults.Watch.Debounce
	}
	d, err := time.ParseDuration(w.Debounce)
	if err != nil {
		return 2 * time.Second
	}
	return d
}

// DefaultPath returns the config file location, honouring CfgEnv.
func DefaultPath() string {
	if p := os.Getenv(CfgEnv); p != "" {
		return p
	}
	return filepath.Join(xdg.ConfigHome, helpers.AppName, CfgFile)
}

// DefaultOutputDir is where launchers and icons go when nothing else is set.
func DefaultOutputDir() string {
	return xdg.DataHome
}

// Load reads path on top of defaults. A missing file is not an error and
// yields the defaults unchanged.
//
//nolint:gocritic // config struct copied for immutability
func Load(fs afero.Fs, path string, defaults Values) (Values, error) {
	data, err := afero.ReadFile(fs, path)
	if errors.Is(err, os.ErrNotExist) {
		log.Debug().Str("path", path).Msg("no config file, using defaults")
		return defaults, nil
	}
	if err != nil {
		return Values{}, fmt.Errorf("failed to read config file: %w", err)
	}

	// Start with defaults, then unmarshal file values on top.
	vals := defaults
	if err := toml.Unmarshal(data, &vals); err != nil {
		return Values{}, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if vals.ConfigSchema != SchemaVersion {
		log.Error().Msgf(
			"schema version mismatch: got %d, expecting %d",
			vals.ConfigSchema,
			SchemaVersion,
		)
		return Values{}, ErrSchemaMismatch
	}

	if err := Validate(vals); err != nil {
		return Values{}, err
	}
	return vals, nil
}

// Save writes vals to path as TOML.
//
//nolint:gocritic // config struct copied for immutability
func Save(fs afero.Fs, path string, vals Values) error {
	data, err := toml.Marshal(vals)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := helpers.WriteFileAtomic(fs, path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("duration", validateDuration)
	return v
}

// Validate checks field constraints and reports every failing field.
//
//nolint:gocritic // config struct copied for immutability
func Validate(vals Values) error {
	err := validate.Struct(vals)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("validation failed: %w", err)
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s failed %q", fe.Namespace(), fe.Tag()))
	}
	return fmt.Errorf("invalid config: %s", strings.Join(msgs, ", "))
}

func validateDuration(fl validator.FieldLevel) bool {
	val := fl.Field().String()
	if val == "" {
		return true
	}
	d, err := time.ParseDuration(val)
	return err == nil && d >= 0
}
