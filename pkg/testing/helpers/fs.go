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

package helpers

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/afero"
)

// FSHelper provides utilities for filesystem mocking in tests
type FSHelper struct {
	Fs afero.Fs
}

// NewMemoryFS creates a new in-memory filesystem for testing
func NewMemoryFS() *FSHelper {
	return &FSHelper{
		Fs: afero.NewMemMapFs(),
	}
}

// NewOSFS creates a filesystem helper using the real filesystem (for integration tests)
func NewOSFS() *FSHelper {
	return &FSHelper{
		Fs: afero.NewOsFs(),
	}
}

// CreateDirectoryStructure creates a directory tree. String and []byte
// values are files, maps are directories and nil is an empty directory.
func (h *FSHelper) CreateDirectoryStructure(structure map[string]any) error {
	return h.createStructureRecursive("", structure)
}

// createStructureRecursive recursively creates directory structures
func (h *FSHelper) createStructureRecursive(basePath string, structure map[string]any) error {
	for name, content := range structure {
		fullPath := filepath.Join(basePath, name)

		switch v := content.(type) {
		case string:
			if err := h.WriteFile(fullPath, []byte(v)); err != nil {
				return err
			}
		case []byte:
			if err := h.WriteFile(fullPath, v); err != nil {
				return err
			}
		case map[string]any:
			if err := h.Fs.MkdirAll(fullPath, 0o755); err != nil {
				return fmt.Errorf("failed to create directory %s: %w", fullPath, err)
			}
			if err := h.createStructureRecursive(fullPath, v); err != nil {
				return err
			}
		case nil:
			if err := h.Fs.MkdirAll(fullPath, 0o755); err != nil {
				return fmt.Errorf("failed to create empty directory %s: %w", fullPath, err)
			}
		}
	}
	return nil
}

// FileExists checks if a file exists
func (h *FSHelper) FileExists(path string) bool {
	exists, err := afero.Exists(h.Fs, path)
	if err != nil {
		return false
	}
	return exists
}

// ReadFile reads a file and returns its content
func (h *FSHelper) ReadFile(path string) ([]byte, error) {
	data, err := afero.ReadFile(h.Fs, path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", path, err)
	}
	return data, nil
}

// WriteFile writes content to a file, creating parent directories.
func (h *FSHelper) WriteFile(path string, content []byte) error {
	if err := h.Fs.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create directory for file %s: %w", path, err)
	}
	if err := afero.WriteFile(h.Fs, path, content, 0o644); err != nil {
		return fmt.Errorf("failed to write file %s: %w", path, err)
	}
	return nil
}

// ListFiles lists all files in a directory
func (h *FSHelper) ListFiles(path string) ([]string, error) {
	files, err := afero.ReadDir(h.Fs, path)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory %s: %w", path, err)
	}

	fileNames := make([]string, len(files))
	for i, file := range files {
		fileNames[i] = file.Name()
	}

	return fileNames, nil
}

// WriteLibraryFolders writes <steamRoot>/steamapps/libraryfolders.vdf
// listing paths under keys "0", "1", ... When legacy is set, entries are
// bare path strings as written by older clients.
func (h *FSHelper) WriteLibraryFolders(steamRoot string, paths []string, legacy bool) error {
	var sb strings.Builder
	sb.WriteString("\"libraryfolders\"\n{\n")
	sb.WriteString("\t\"contentstatsid\"\t\t\"-1\"\n")
	for i, p := range paths {
		key := strconv.Itoa(i)
		if legacy {
			fmt.Fprintf(&sb, "\t%q\t\t%q\n", key, p)
			continue
		}
		fmt.Fprintf(&sb, "\t%q\n\t{\n\t\t\"path\"\t\t%q\n\t\t\"label\"\t\t\"\"\n\t}\n", key, p)
	}
	sb.WriteString("}\n")

	path := filepath.Join(steamRoot, "steamapps", "libraryfolders.vdf")
	return h.WriteFile(path, []byte(sb.String()))
}

// WriteAppManifest writes <library>/steamapps/appmanifest_<appID>.acf.
func (h *FSHelper) WriteAppManifest(library string, appID uint32, name, installDir string) error {
	content := fmt.Sprintf(`"AppState"
{
	"appid"		"%d"
	"Universe"		"1"
	"name"		%q
	"StateFlags"		"4"
	"installdir"		%q
}
`, appID, name, installDir)

	path := filepath.Join(library, "steamapps", fmt.Sprintf("appmanifest_%d.acf", appID))
	return h.WriteFile(path, []byte(content))
}
