package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		wantExit bool
		wantCode int
		check    func(*config) bool
	}{
		{name: "help", args: []string{"-h"}, wantExit: true},
		{name: "nothing to run", args: nil, wantExit: true},
		{name: "unknown flag", args: []string{"-bogus"}, wantCode: 2},
		{name: "zero frames", args: []string{"-welcome", "-frames", "0"}, wantCode: 2},
		{name: "zero every", args: []string{"-welcome", "-every", "0"}, wantCode: 2},
		{name: "bad format", args: []string{"-welcome", "-log-format", "xml"}, wantCode: 2},
		{name: "bad level", args: []string{"-welcome", "-log-level", "loud"}, wantCode: 2},
		{name: "positional stage", args: []string{"show.hcl"}, check: func(c *config) bool {
			return c.stage == "show.hcl" && c.frames == 100 && c.every == 1
		}},
		{name: "mixed case", args: []string{"-welcome", "-log-level", "DEBUG", "-log-format", "JSON"}, check: func(c *config) bool {
			return c.logLevel == "debug" && c.logFormat == "json" && c.welcome
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			cfg, exit, err := parse(tt.args, &out)
			if tt.wantCode != 0 {
				var exitErr *ExitError
				if !errors.As(err, &exitErr) || exitErr.Code != tt.wantCode {
					t.Fatalf("err = %v, want exit code %d", err, tt.wantCode)
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if exit != tt.wantExit {
				t.Fatalf("exit = %v, want %v", exit, tt.wantExit)
			}
			if tt.check != nil && !tt.check(cfg) {
				t.Errorf("config = %+v", cfg)
			}
		})
	}
}

func TestRunWelcome(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "frames")
	var out bytes.Buffer
	err := run(context.Background(), &out, []string{"-welcome", "-frames", "5", "-every", "2", "-out", dir, "-log-level", "error"})
	if err != nil {
		t.Fatal(err)
	}

	files, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	var names []string
	for _, f := range files {
		names = append(names, f.Name())
	}
	if want := "frame_00000.png frame_00002.png frame_00004.png"; strings.Join(names, " ") != want {
		t.Errorf("wrote %v, want %s", names, want)
	}
	if !strings.Contains(out.String(), "painted 5 frames, wrote 3") {
		t.Errorf("summary = %q", out.String())
	}
}

func TestRunStage(t *testing.T) {
	var out bytes.Buffer
	err := run(context.Background(), &out, []string{"-stage", "../../stage/testdata/demo.hcl", "-frames", "3", "-log-format", "json"})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), `"msg":"stage: applied"`) {
		t.Errorf("missing stage log in %q", out.String())
	}
	if !strings.Contains(out.String(), "painted 3 frames, wrote 0") {
		t.Errorf("summary = %q", out.String())
	}
}

func TestRunRealtime(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	var out bytes.Buffer
	if err := run(ctx, &out, []string{"-welcome", "-realtime", "-frames", "3", "-log-level", "error"}); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "painted 3 frames") {
		t.Errorf("summary = %q", out.String())
	}
}

func TestRunErrors(t *testing.T) {
	var out bytes.Buffer
	if err := run(context.Background(), &out, []string{"-stage", "missing.hcl"}); err == nil {
		t.Error("missing stage file accepted")
	}

	blocker := filepath.Join(t.TempDir(), "file")
	if err := os.WriteFile(blocker, nil, 0o644); err != nil {
		t.Fatal(err)
	}
	if err := run(context.Background(), &out, []string{"-welcome", "-out", blocker}); err == nil {
		t.Error("output path over a file accepted")
	}
}
