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
	"database/sql"
	"errors"
	"time"

	"github.com/tomoncle/sqlinit/scripts"
	"github.com/tomoncle/sqlinit/utils"
	"github.com/uptrace/bun"
)

// Initializer runs the schema-setup script and then the data-seed script
// inside one transaction and commits once.
type Initializer struct {
	scripts *scripts.Set
	logger  Logger
}

// ExecutionResult describes one executed script.
type ExecutionResult struct {
	Script       string
	Duration     time.Duration
	RowsAffected int64
}

func NewInitializer(set *scripts.Set) *Initializer {
	return &Initializer{
		scripts: set,
		logger:  GetLogger(),
	}
}

func (i *Initializer) SetLogger(logger Logger) {
	if logger == nil {
		logger = NopLogger()
	}
	i.logger = logger
}

// Run reads both scripts, then executes them on db. Nothing is committed
// unless both scripts succeed; on any error the transaction is rolled back
// before returning.
func (i *Initializer) Run(ctx context.Context, db *bun.DB) ([]ExecutionResult, error) {
	if i.scripts == nil {
		return nil, errors.New("no scripts to execute")
	}
	if db == nil {
		return nil, errors.New("database not connected")
	}

	i.logger.Info("Starting SQL initialization",
		"origin", i.scripts.Origin,
		"schema", i.scripts.Schema,
		"seed", i.scripts.Seed,
	)

	// no statement is sent until both scripts are in memory
	names := []string{i.scripts.Schema, i.scripts.Seed}
	contents := make([]string, len(names))
	for n, name := range names {
		content, err := i.scripts.Read(name)
		if err != nil {
			err = &FileAccessError{Script: name, Err: err}
			i.logger.Error("SQL script failed, nothing committed", "script", name, "error", err)
			return nil, err
		}
		contents[n] = content
	}

	tx, err := db.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return nil, &ConnectionError{Op: "begin transaction", Type: db.Dialect().Name().String(), Err: err}
	}
	defer func() {
		if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
			i.logger.Warn("Rollback failed", "error", err)
		}
	}()

	results := make([]ExecutionResult, 0, len(names))
	for n, name := range names {
		result, err := i.executeScript(ctx, tx, name, contents[n])
		if err != nil {
			i.logger.Error("SQL script failed, nothing committed", "script", name, "error", err)
			return results, err
		}
		results = append(results, result)
		i.logger.Info("SQL script executed",
			"script", result.Script,
			"duration", result.Duration.String(),
			"rows_affected", result.RowsAffected,
		)
	}

	if err := tx.Commit(); err != nil {
		return results, &CommitError{Err: err}
	}

	i.logger.Info("SQL initialization committed", "scripts", len(results))
	return results, nil
}

// executeScript sends the whole text of one script as a single batch.
func (i *Initializer) executeScript(ctx context.Context, tx bun.Tx, name, content string) (ExecutionResult, error) {
	start := time.Now()
	result := ExecutionResult{Script: name}

	res, err := tx.ExecContext(withScript(ctx, name), content)
	if err != nil {
		return result, newExecutionError(name, err)
	}

	// not every driver reports a count for a multi-statement batch
	if n, err := res.RowsAffected(); err == nil {
		result.RowsAffected = n
	}
	result.Duration = utils.Since(start)
	return result, nil
}

