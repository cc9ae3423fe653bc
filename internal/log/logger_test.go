/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package log

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func TestFromEnv(t *testing.T) {
	t.Setenv("OET_LOG_LEVEL", "warn")
	t.Setenv("OET_LOG_FORMAT", "json")
	t.Setenv("OET_LOG_SOURCE", "true")

	opts := FromEnv()
	if opts.Level != "warn" || opts.Format != "json" || !opts.AddSource || opts.File != "" {
		t.Fatalf("FromEnv mismatch: %+v", opts)
	}
	if v := getenv("OET_SOME_UNSET_VAR", "fallback"); v != "fallback" {
		t.Fatalf("getenv fallback failed: %q", v)
	}
}

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"WARN":    slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"":        slog.LevelInfo,
		"bogus":   slog.LevelInfo,
	}
	for in, want := range cases {
		if got := parseLevel(in); got != want {
			t.Fatalf("parseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestConsoleHandlerFiltersAndFormats(t *testing.T) {
	var buf bytes.Buffer
	h := &consoleHandler{level: slog.LevelWarn, w: &buf}

	if h.Enabled(nil, slog.LevelInfo) {
		t.Fatalf("info should not be enabled at warn level")
	}
	if !h.Enabled(nil, slog.LevelError) {
		t.Fatalf("error should be enabled at warn level")
	}

	l := slog.New(h.WithAttrs([]slog.Attr{slog.String("component", "storage")}))
	l.Warn("resync applied", slog.Int("kept", 3), slog.Bool("dirty", true))

	out := buf.String()
	for _, want := range []string{"WRN", "resync applied", "component=storage", "kept=3", "dirty=true"} {
		if !strings.Contains(out, want) {
			t.Fatalf("output %q missing %q", out, want)
		}
	}
}

func TestConsoleHandlerGroups(t *testing.T) {
	var buf bytes.Buffer
	var h slog.Handler = &consoleHandler{level: slog.LevelInfo, w: &buf}
	h = h.WithGroup("sentence")

	l := slog.New(h)
	l.Info("updated", slog.Int("id", 7))
	if !strings.Contains(buf.String(), "sentence.id=7") {
		t.Fatalf("grouped key missing: %q", buf.String())
	}
}

func TestLevelTag(t *testing.T) {
	if levelTag(slog.LevelDebug) != "DBG" || levelTag(slog.LevelInfo) != "INF" ||
		levelTag(slog.LevelWarn) != "WRN" || levelTag(slog.LevelError) != "ERR" {
		t.Fatalf("unexpected level tags")
	}
}
