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
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"

	"gopkg.in/yaml.v3"
)

// Manifest is the optional scripts.yaml of a script directory. It only
// renames the two scripts; the run order is fixed.
type Manifest struct {
	Schema string `yaml:"schema"`
	Seed   string `yaml:"seed"`
}

func DefaultManifest() Manifest {
	return Manifest{Schema: DefaultSchemaFile, Seed: DefaultSeedFile}
}

// LoadManifest reads ManifestFile from fsys. A missing manifest yields the
// default file names; empty entries fall back to their default.
func LoadManifest(fsys fs.FS) (Manifest, error) {
	m := DefaultManifest()

	data, err := fs.ReadFile(fsys, ManifestFile)
	if errors.Is(err, fs.ErrNotExist) {
		return m, nil
	}
	if err != nil {
		return m, fmt.Errorf("failed to read %s: %w", ManifestFile, err)
	}

	var parsed Manifest
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&parsed); err != nil && !errors.Is(err, io.EOF) {
		return m, fmt.Errorf("failed to parse %s: %w", ManifestFile, err)
	}
	if parsed.Schema != "" {
		m.Schema = parsed.Schema
	}
	if parsed.Seed != "" {
		m.Seed = parsed.Seed
	}

	if err := m.Validate(); err != nil {
		return m, fmt.Errorf("invalid %s: %w", ManifestFile, err)
	}
	return m, nil
}

func (m Manifest) Validate() error {
	for _, name := range []string{m.Schema, m.Seed} {
		if !fs.ValidPath(name) || name == "." {
			return fmt.Errorf("script path %q must be relative to the script directory", name)
		}
	}
	if m.Schema == m.Seed {
		return fmt.Errorf("schema and seed both point at %q", m.Schema)
	}
	return nil
}

