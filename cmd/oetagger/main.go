/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	"oetagger/internal/command"
	"oetagger/internal/config"
	"oetagger/internal/crash"
	"oetagger/internal/domain"
	applog "oetagger/internal/log"
	"oetagger/internal/storage"
	"oetagger/internal/version"
)

func usage() {
	fmt.Println("OE Tagger — Old English annotation toolkit")
	fmt.Printf("Version: %s\n", version.String())
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  oetagger version|-v|--version                 Show version")
	fmt.Println("  oetagger init <file> <name>                   Create a new project database")
	fmt.Println("  oetagger open <file>                          Open a project and print a summary")
	fmt.Println("  oetagger import <file> <textfile>             Import Old English text as sentences")
	fmt.Println("  oetagger sentences <file>                     List sentences with their tokens")
	fmt.Println("  oetagger update <file> <sentence-id> <text>   Replace a sentence's text, keeping annotations")
	fmt.Println("  oetagger translate <file> <sentence-id> <text> Set a sentence's translation")
	fmt.Println("  oetagger annotate <file> <token-id> <pos>     Tag a token with a part of speech")
	fmt.Println("  oetagger presets import <file> <jsonfile>     Import annotation presets")
	fmt.Println("  oetagger presets export <file>                Print annotation presets as JSON")
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		// fall back to env-only logging, the config error is still reported
		applog.Init(applog.FromEnv())
		applog.L().Warn("config load failed", slog.Any("err", err))
	} else {
		applog.Init(applog.Options{
			Level:     cfg.Logging.Level,
			Format:    cfg.Logging.Format,
			AddSource: cfg.Logging.Source,
			File:      cfg.Logging.File,
		})
	}
	l := applog.WithComponent("cli")
	var s *storage.Store
	defer func() { crash.Recover(s) }()

	args := os.Args
	l.Debug("start", slog.Int("args", len(args)))
	if len(args) < 2 {
		usage()
		return
	}

	ctx := context.Background()
	switch args[1] {
	case "version", "--version", "-v":
		fmt.Println("OE Tagger — Old English annotation toolkit")
		fmt.Println(version.String())
	case "init":
		if len(args) < 4 {
			fmt.Println("init requires <file> and <name>")
			usage()
			os.Exit(2)
		}
		abs, _ := filepath.Abs(args[2])
		l.Info("init project", slog.String("db", abs), slog.String("name", args[3]))
		st, p, err := storage.Create(abs, args[3])
		if err != nil {
			fail(l, "init failed", err)
		}
		s = st
		fmt.Printf("Created project %q at %s\n", p.Name, abs)
	case "open":
		s = mustOpen(l, args, 3, "open requires <file>")
		p, err := s.FirstProject(ctx)
		if err != nil {
			fail(l, "open failed", err)
		}
		sens, err := s.Sentences(ctx, p.ID)
		if err != nil {
			fail(l, "open failed", err)
		}
		fmt.Printf("Opened project: %s\n", p.Name)
		fmt.Printf("Sentences: %d\n", len(sens))
		fmt.Println("Database:", s.Path())
	case "import":
		s = mustOpen(l, args, 4, "import requires <file> and <textfile>")
		data, err := os.ReadFile(args[3])
		if err != nil {
			fail(l, "import failed", err)
		}
		p, err := s.FirstProject(ctx)
		if err != nil {
			fail(l, "import failed", err)
		}
		sens, err := s.ImportText(ctx, p.ID, string(data))
		if err != nil {
			fail(l, "import failed", err)
		}
		fmt.Printf("Imported %d sentences.\n", len(sens))
	case "sentences":
		s = mustOpen(l, args, 3, "sentences requires <file>")
		p, err := s.FirstProject(ctx)
		if err != nil {
			fail(l, "listing failed", err)
		}
		sens, err := s.Sentences(ctx, p.ID)
		if err != nil {
			fail(l, "listing failed", err)
		}
		for _, sen := range sens {
			fmt.Printf("[%d] %s\n", sen.ID, sen.TextOE)
			if sen.TextModern != "" {
				fmt.Printf("    = %s\n", sen.TextModern)
			}
			toks, err := s.Tokens(ctx, sen.ID)
			if err != nil {
				fail(l, "listing failed", err)
			}
			for _, tok := range toks {
				fmt.Printf("    %d:%s", tok.Position, tok.Surface)
			}
			fmt.Println()
		}
	case "update":
		s = mustOpen(l, args, 5, "update requires <file>, <sentence-id> and <text>")
		id := mustID(args[3])
		msgs, err := s.UpdateSentenceText(ctx, id, args[4])
		if err != nil {
			fail(l, "update failed", err)
		}
		fmt.Println("Sentence updated.")
		for _, m := range msgs {
			fmt.Println(" -", m)
		}
	case "annotate":
		s = mustOpen(l, args, 5, "annotate requires <file>, <token-id> and <pos>")
		mgr := command.NewManager(command.Config{})
		cmd := &command.AnnotateToken{
			Store:      s,
			Annotation: domain.Annotation{TokenID: mustID(args[3]), POS: domain.POS(args[4])},
		}
		if err := mgr.Do(ctx, cmd); err != nil {
			fail(l, "annotate failed", err)
		}
		fmt.Printf("Token %d tagged %s.\n", cmd.Annotation.TokenID, cmd.Annotation.POS.Name())
	case "translate":
		s = mustOpen(l, args, 5, "translate requires <file>, <sentence-id> and <text>")
		if err := s.SetTranslation(ctx, mustID(args[3]), args[4]); err != nil {
			fail(l, "translate failed", err)
		}
		fmt.Println("Translation saved.")
	case "presets":
		if len(args) < 3 {
			usage()
			os.Exit(2)
		}
		switch args[2] {
		case "import":
			if len(args) < 5 {
				fmt.Println("presets import requires <file> and <jsonfile>")
				os.Exit(2)
			}
			st, err := storage.Open(args[3])
			if err != nil {
				fail(l, "presets import failed", err)
			}
			s = st
			data, err := os.ReadFile(args[4])
			if err != nil {
				fail(l, "presets import failed", err)
			}
			n, err := s.ImportPresets(ctx, data)
			if err != nil {
				fail(l, "presets import failed", err)
			}
			fmt.Printf("Imported %d presets.\n", n)
		case "export":
			if len(args) < 4 {
				fmt.Println("presets export requires <file>")
				os.Exit(2)
			}
			st, err := storage.Open(args[3])
			if err != nil {
				fail(l, "presets export failed", err)
			}
			s = st
			out, err := s.ExportPresets(ctx)
			if err != nil {
				fail(l, "presets export failed", err)
			}
			fmt.Println(string(out))
		default:
			usage()
			os.Exit(2)
		}
	default:
		usage()
	}
	if s != nil {
		if err := s.Close(); err != nil {
			l.Error("close failed", slog.Any("err", err))
		}
	}
}

func mustOpen(l *slog.Logger, args []string, minArgs int, msg string) *storage.Store {
	if len(args) < minArgs {
		fmt.Println(msg)
		usage()
		os.Exit(2)
	}
	abs, _ := filepath.Abs(args[2])
	s, err := storage.Open(abs)
	if err != nil {
		fail(l, "open failed", err)
	}
	return s
}

func mustID(s string) int64 {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		fmt.Println("Error: invalid id:", s)
		os.Exit(2)
	}
	return id
}

func fail(l *slog.Logger, msg string, err error) {
	l.Error(msg, slog.Any("err", err))
	fmt.Println("Error:", err)
	os.Exit(1)
}
