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

package database

import (
	"context"
	"fmt"

	"github.com/tomoncle/sqlinit/scripts"
)

// Initialize connects with cfg, runs set through an Initializer and closes
// the connection. The returned error wraps one of ConnectionError,
// FileAccessError, ExecutionError or CommitError.
func Initialize(ctx context.Context, cfg *ConnectionConfig, set *scripts.Set) error {
	if cfg == nil {
		return fmt.Errorf("database configuration cannot be empty")
	}

	manager := NewManager(cfg)
	if err := manager.Connect(ctx); err != nil {
		return err
	}
	defer func() { _ = manager.Disconnect() }()

	if _, err := NewInitializer(set).Run(ctx, manager.DB()); err != nil {
		return fmt.Errorf("initialization of %q failed: %w", cfg.DBName, err)
	}
	return nil
}
