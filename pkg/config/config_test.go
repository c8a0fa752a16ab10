package config

import (
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/chazu/planproj/pkg/geom"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if want := Default(); cfg != want {
		t.Errorf("Load() = %+v, want %+v", cfg, want)
	}
	if got := cfg.Tolerance(); got != geom.JoinTolerance {
		t.Errorf("Tolerance() = %+v, want %+v", got, geom.JoinTolerance)
	}
	if _, ok, _ := cfg.Level(); ok {
		t.Error("logging should be off by default")
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("PLANPROJ_LINEAR_TOL", "1e-6")
	t.Setenv("PLANPROJ_FLATTEN_TOL", "0.01")
	t.Setenv("PLANPROJ_TILE_MODE", "false")
	t.Setenv("PLANPROJ_EVAL_TIMEOUT", "250ms")
	t.Setenv("PLANPROJ_LOG_LEVEL", "debug")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.LinearTol != 1e-6 {
		t.Errorf("LinearTol = %g, want 1e-6", cfg.LinearTol)
	}
	if cfg.FlattenTol != 0.01 {
		t.Errorf("FlattenTol = %g, want 0.01", cfg.FlattenTol)
	}
	if cfg.TileMode {
		t.Error("TileMode = true, want false")
	}
	if cfg.EvalTimeout != 250*time.Millisecond {
		t.Errorf("EvalTimeout = %s, want 250ms", cfg.EvalTimeout)
	}
	level, ok, err := cfg.Level()
	if err != nil || !ok || level != slog.LevelDebug {
		t.Errorf("Level() = %v, %v, %v; want DEBUG, true, nil", level, ok, err)
	}
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name   string
		key    string
		value  string
		expect string
	}{
		{name: "unparseable tolerance", key: "PLANPROJ_LINEAR_TOL", value: "tiny", expect: "parse env:"},
		{name: "zero tolerance", key: "PLANPROJ_ANGULAR_TOL", value: "0", expect: "angular tolerance"},
		{name: "negative flatten tolerance", key: "PLANPROJ_FLATTEN_TOL", value: "-1", expect: "flatten tolerance"},
		{name: "zero timeout", key: "PLANPROJ_EVAL_TIMEOUT", value: "0s", expect: "eval timeout"},
		{name: "unknown log level", key: "PLANPROJ_LOG_LEVEL", value: "chatty", expect: "log level"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			_, err := Load()
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.expect) {
				t.Errorf("error = %v, want containing %q", err, tt.expect)
			}
		})
	}
}

func TestLevelOff(t *testing.T) {
	for _, s := range []string{"", "off", " OFF "} {
		_, ok, err := Config{LogLevel: s}.Level()
		if err != nil || ok {
			t.Errorf("Level(%q) = _, %v, %v; want false, nil", s, ok, err)
		}
	}
}
