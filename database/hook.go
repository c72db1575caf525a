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
	"reflect"

	"github.com/fatih/color"
	"github.com/tomoncle/sqlinit/utils"
	"github.com/uptrace/bun"
)

type scriptKey struct{}

// withScript tags ctx with the script name so the hook can report it.
func withScript(ctx context.Context, name string) context.Context {
	return context.WithValue(ctx, scriptKey{}, name)
}

func scriptFrom(ctx context.Context) string {
	if s, ok := ctx.Value(scriptKey{}).(string); ok {
		return s
	}
	return ""
}

// scriptHook logs every batch sent through bun with the script it came from.
type scriptHook struct {
	logger Logger
}

var _ bun.QueryHook = (*scriptHook)(nil)

func newScriptHook(logger Logger) *scriptHook {
	return &scriptHook{logger: logger}
}

func (h *scriptHook) BeforeQuery(ctx context.Context, event *bun.QueryEvent) context.Context {
	return ctx
}

func (h *scriptHook) AfterQuery(ctx context.Context, event *bun.QueryEvent) {
	script := scriptFrom(ctx)
	if script == "" || h.logger == nil {
		return
	}

	duration := utils.Since(event.StartTime)
	if event.Err != nil {
		typ := reflect.TypeOf(event.Err).String()
		h.logger.Warn("Statement batch failed",
			"script", script,
			"duration", duration,
			"error", color.New(color.BgRed).Sprintf(" %s ", typ+": "+event.Err.Error()),
		)
		return
	}
	h.logger.Debug("Statement batch executed",
		"script", script,
		"operation", event.Operation(),
		"bytes", len(event.Query),
		"duration", duration,
	)
}
