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
	"fmt"
)

// ConnectionError reports a failure to open, verify or begin work on the
// database connection.
type ConnectionError struct {
	Op   string
	Type string
	Host string
	Err  error
}

func (e *ConnectionError) Error() string {
	if e.Host != "" {
		return fmt.Sprintf("database connection failed (%s, %s@%s): %v", e.Op, e.Type, e.Host, e.Err)
	}
	return fmt.Sprintf("database connection failed (%s, %s): %v", e.Op, e.Type, e.Err)
}

func (e *ConnectionError) Unwrap() error { return e.Err }

// FileAccessError reports a script that could not be read.
type FileAccessError struct {
	Script string
	Err    error
}

func (e *FileAccessError) Error() string {
	return fmt.Sprintf("failed to read SQL script %s: %v", e.Script, e.Err)
}

func (e *FileAccessError) Unwrap() error { return e.Err }

// ExecutionError reports a script rejected by the database. Kind is the
// classified driver error, UnknownErr when it could not be classified.
type ExecutionError struct {
	Script string
	Kind   SQLError
	Err    error
}

func (e *ExecutionError) Error() string {
	return fmt.Sprintf("failed to execute SQL script %s (%s): %v", e.Script, e.Kind, e.Err)
}

func (e *ExecutionError) Unwrap() error { return e.Err }

func newExecutionError(script string, err error) *ExecutionError {
	kind, _ := ClassifySQLError(err)
	return &ExecutionError{Script: script, Kind: kind, Err: err}
}

// CommitError reports a failed commit; nothing from the run is durable.
type CommitError struct {
	Err error
}

func (e *CommitError) Error() string {
	return fmt.Sprintf("failed to commit initialization: %v", e.Err)
}

func (e *CommitError) Unwrap() error { return e.Err }
