/*
 * Copyright 2025 tomoncle.
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package scripts

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

const (
	DefaultSchemaFile = "01_setting_up.sql"
	DefaultSeedFile   = "02_populate.sql"
	ManifestFile      = "scripts.yaml"

	// OriginEmbedded is the Origin of the set compiled into the binary.
	OriginEmbedded = "embedded"
)

//go:embed sql
var bundled embed.FS

// executable is swapped in tests.
var executable = os.Executable

// Set names the schema-setup and data-seed scripts inside FS. Files are
// not opened until the initializer reads them.
type Set struct {
	FS     fs.FS
	Schema string
	Seed   string
	Origin string
}

// Bundled returns the scripts compiled from the sql directory of this package.
func Bundled() (*Set, error) {
	sub, err := fs.Sub(bundled, "sql")
	if err != nil {
		return nil, err
	}
	return FromFS(sub, OriginEmbedded)
}

// Dir returns the scripts found in dir. A relative dir is resolved against
// the directory of the running executable, not the working directory.
func Dir(dir string) (*Set, error) {
	abs, err := resolveDir(dir)
	if err != nil {
		return nil, err
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("script directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("script directory %s is not a directory", abs)
	}
	return FromFS(os.DirFS(abs), abs)
}

// Resolve picks Dir(dir) when dir is set and Bundled otherwise.
func Resolve(dir string) (*Set, error) {
	if dir == "" {
		return Bundled()
	}
	return Dir(dir)
}

func resolveDir(dir string) (string, error) {
	if filepath.IsAbs(dir) {
		return filepath.Clean(dir), nil
	}
	exe, err := executable()
	if err != nil {
		return "", fmt.Errorf("failed to locate executable: %w", err)
	}
	if resolved, err := filepath.EvalSymlinks(exe); err == nil {
		exe = resolved
	}
	return filepath.Join(filepath.Dir(exe), dir), nil
}

// FromFS builds a set over fsys, reading the optional manifest.
func FromFS(fsys fs.FS, origin string) (*Set, error) {
	m, err := LoadManifest(fsys)
	if err != nil {
		return nil, err
	}
	return &Set{FS: fsys, Schema: m.Schema, Seed: m.Seed, Origin: origin}, nil
}

// Read returns the full text of the named script.
func (s *Set) Read(name string) (string, error) {
	if s == nil || s.FS == nil {
		return "", errors.New("no script set")
	}
	b, err := fs.ReadFile(s.FS, name)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
