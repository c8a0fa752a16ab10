package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// runCLI executes the root command with args and returns its stdout.
func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()

	// Reset flags to prevent accumulation between tests
	verbose = false
	dxfDir, jsonOutput, timeout = "", false, ""
	fromFrame, toFrame = "wcs", "wcs"
	displacement, tileMode = false, true
	ucsOrigin, viewDir, viewportScale = nil, nil, 1
	if f := transformCmd.Flags().Lookup("tile"); f != nil {
		f.Changed = false
	}

	var out, errOut bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestTransformE2E(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		want    string
		wantErr bool
	}{
		{
			name: "identity",
			args: []string{"transform", "1", "2", "3"},
			want: "1 2 3\n",
		},
		{
			name: "ucs origin",
			args: []string{"transform", "1", "2", "3", "--from", "ucs", "--to", "wcs", "--ucs-origin", "10,0,0"},
			want: "11 2 3\n",
		},
		{
			name: "displacement ignores origin",
			args: []string{"transform", "1", "2", "3", "--from", "ucs", "--to", "wcs", "--ucs-origin", "10,0,0", "-d"},
			want: "1 2 3\n",
		},
		{
			name: "paper space with tile mode off",
			args: []string{"transform", "--tile=false", "--from", "psdcs", "--to", "dcs", "--viewport-scale", "2", "4", "6", "0"},
			want: "2 3 0\n",
		},
		{
			name:    "paper space in tile mode",
			args:    []string{"transform", "--from", "psdcs", "--to", "dcs", "1", "2", "3"},
			wantErr: true,
		},
		{
			name:    "unknown frame",
			args:    []string{"transform", "--from", "nowhere", "1", "2", "3"},
			wantErr: true,
		},
		{
			name:    "bad coordinate",
			args:    []string{"transform", "1", "two", "3"},
			wantErr: true,
		},
		{
			name:    "short ucs origin",
			args:    []string{"transform", "--ucs-origin", "1,2", "1", "2", "3"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := runCLI(t, tt.args...)
			if tt.wantErr {
				if err == nil {
					t.Errorf("Expected error but got none (output %q)", out)
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error: %v\nOutput: %s", err, out)
			}
			if out != tt.want {
				t.Errorf("output = %q, want %q", out, tt.want)
			}
		})
	}
}

func TestProjectE2E(t *testing.T) {
	script := "../../examples/bracket.planproj"

	t.Run("text", func(t *testing.T) {
		out, err := runCLI(t, "project", script)
		if err != nil {
			t.Fatalf("Unexpected error: %v\nOutput: %s", err, out)
		}
		for _, want := range []string{"floor-outline: 8 vertices, closed", "slope-outline:", "footprint: 2 vertices, open"} {
			if !strings.Contains(out, want) {
				t.Errorf("Output missing expected string: %q\nGot:\n%s", want, out)
			}
		}
	})

	t.Run("json", func(t *testing.T) {
		out, err := runCLI(t, "project", "--json", script)
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if !strings.Contains(out, `"name": "footprint"`) {
			t.Errorf("JSON output missing footprint:\n%s", out)
		}
	})

	t.Run("dxf", func(t *testing.T) {
		dir := filepath.Join(t.TempDir(), "out")
		if _, err := runCLI(t, "project", "--dxf", dir, script); err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		for _, name := range []string{"floor-outline.dxf", "slope-outline.dxf", "footprint.dxf"} {
			if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
				t.Errorf("expected %s: %v", name, err)
			}
		}
	})

	t.Run("eval error", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "broken.planproj")
		if err := os.WriteFile(path, []byte("(project (vec3 1 2"), 0o644); err != nil {
			t.Fatal(err)
		}
		out, err := runCLI(t, "project", path)
		if err == nil {
			t.Fatal("Expected error but got none")
		}
		if !strings.Contains(out, "error:") {
			t.Errorf("expected the eval error to be printed, got %q", out)
		}
	})

	t.Run("missing file", func(t *testing.T) {
		if _, err := runCLI(t, "project", filepath.Join(t.TempDir(), "nope.planproj")); err == nil {
			t.Fatal("Expected error but got none")
		}
	})

	t.Run("bad timeout", func(t *testing.T) {
		if _, err := runCLI(t, "project", "--timeout", "soon", script); err == nil {
			t.Fatal("Expected error but got none")
		}
	})
}
