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
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/uptrace/bun"
)

// Environment variables controlling query logging at runtime, independent of
// the static configuration: set to "1" to enable, "2" to also log successful
// queries, empty or "0" to disable.
const (
	QueryLogEnv     = "WINGBASE_QUERY_LOG"
	SlowQueryLogEnv = "WINGBASE_SLOW_QUERY_LOG"
)

var querySilentMode bool

// EnableQuerySilence suppresses all query hook output, regardless of
// configuration or environment. Tests use this to keep output clean.
func EnableQuerySilence(b bool) {
	querySilentMode = b
}

var (
	selectColor  = color.New(color.FgGreen)
	insertColor  = color.New(color.FgBlue)
	updateColor  = color.New(color.FgYellow)
	deleteColor  = color.New(color.FgMagenta)
	otherColor   = color.New(color.FgRed)
	labelColor   = color.New(color.FgCyan)
	slowColor    = color.New(color.BgYellow, color.FgBlack)
	failureColor = color.New(color.BgRed, color.FgWhite)
)

func colorizeQuery(event *bun.QueryEvent) string {
	switch event.Operation() {
	case "SELECT":
		return selectColor.Sprint(event.Query)
	case "INSERT":
		return insertColor.Sprint(event.Query)
	case "UPDATE":
		return updateColor.Sprint(event.Query)
	case "DELETE":
		return deleteColor.Sprint(event.Query)
	default:
		return otherColor.Sprint(event.Query)
	}
}

// QueryHook prints executed statements with per-operation coloring. By
// default only failed queries are printed; verbose mode prints everything.
type QueryHook struct {
	envName string
	enabled bool
	verbose bool
	writer  io.Writer
}

var _ bun.QueryHook = (*QueryHook)(nil)

// NewQueryHook builds a hook writing to w, overridable via the QueryLogEnv
// environment variable.
func NewQueryHook(enabled, verbose bool, w io.Writer) *QueryHook {
	if w == nil {
		w = os.Stdout
	}
	return &QueryHook{envName: QueryLogEnv, enabled: enabled, verbose: verbose, writer: w}
}

func (h *QueryHook) BeforeQuery(ctx context.Context, _ *bun.QueryEvent) context.Context {
	return ctx
}

func (h *QueryHook) AfterQuery(_ context.Context, event *bun.QueryEvent) {
	if querySilentMode {
		return
	}
	enabled := h.enabled
	verbose := h.verbose
	if env, ok := os.LookupEnv(h.envName); ok {
		enabled = env != "" && env != "0"
		verbose = env == "2"
	}
	if !enabled {
		return
	}

	if !verbose {
		switch {
		case event.Err == nil, errors.Is(event.Err, sql.ErrNoRows), errors.Is(event.Err, sql.ErrTxDone):
			return
		}
	}

	now := time.Now()
	dur := now.Sub(event.StartTime)

	args := []interface{}{
		now.Format("2006-01-02 15:04:05.000"),
		labelColor.Sprintf("%10s", "[SQL]"),
		fmt.Sprintf("%14s", dur.Round(time.Microsecond)),
		" ", colorizeQuery(event),
	}
	if event.Err != nil {
		args = append(args, "\t", failureColor.Sprintf(" %s ", event.Err.Error()))
	}
	_, _ = fmt.Fprintln(h.writer, args...)
}

// SlowQueryHook prints successful queries whose duration exceeds a threshold.
type SlowQueryHook struct {
	envName  string
	enabled  bool
	slowTime time.Duration
	writer   io.Writer
}

var _ bun.QueryHook = (*SlowQueryHook)(nil)

// NewSlowQueryHook builds a hook flagging queries slower than slowTime,
// overridable via the SlowQueryLogEnv environment variable.
func NewSlowQueryHook(enabled bool, slowTime time.Duration, w io.Writer) *SlowQueryHook {
	if w == nil {
		w = os.Stdout
	}
	return &SlowQueryHook{envName: SlowQueryLogEnv, enabled: enabled, slowTime: slowTime, writer: w}
}

func (h *SlowQueryHook) BeforeQuery(ctx context.Context, _ *bun.QueryEvent) context.Context {
	return ctx
}

func (h *SlowQueryHook) AfterQuery(_ context.Context, event *bun.QueryEvent) {
	if querySilentMode || event.Err != nil {
		return
	}
	enabled := h.enabled
	if env, ok := os.LookupEnv(h.envName); ok {
		enabled = strings.TrimSpace(env) == "1"
	}
	if !enabled {
		return
	}

	duration := time.Since(event.StartTime)
	if duration <= h.slowTime {
		return
	}
	args := []interface{}{
		time.Now().Format("2006-01-02 15:04:05.000"),
		slowColor.Sprintf("%10s", "[SLOW]"),
		fmt.Sprintf("%14s", duration.Round(time.Microsecond)),
		" ", colorizeQuery(event),
	}
	_, _ = fmt.Fprintln(h.writer, args...)
}
