package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestParseDefaults(t *testing.T) {
	cfg, err := Parse([]byte("log:\n  verbose: true\n"))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if cfg.Solver.Tolerance != DefaultTolerance {
		t.Errorf("Tolerance = %g, want %g", cfg.Solver.Tolerance, DefaultTolerance)
	}
	if cfg.Solver.MaxIterations != DefaultMaxIterations {
		t.Errorf("MaxIterations = %d, want %d", cfg.Solver.MaxIterations, DefaultMaxIterations)
	}
	if cfg.Solver.Backend != DefaultBackend {
		t.Errorf("Backend = %q, want %q", cfg.Solver.Backend, DefaultBackend)
	}
	if !cfg.Log.Verbose {
		t.Errorf("Verbose not read")
	}
}

func TestParseValues(t *testing.T) {
	data := []byte(`
solver:
  tolerance: 1e-9
  max_iterations: 20
  backend: dense
log:
  prefix: "[mna] "
`)
	cfg, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if cfg.Solver.Tolerance != 1e-9 || cfg.Solver.MaxIterations != 20 || cfg.Solver.Backend != "dense" {
		t.Errorf("solver = %+v", cfg.Solver)
	}
	if cfg.Log.Prefix != "[mna] " {
		t.Errorf("Prefix = %q", cfg.Log.Prefix)
	}
}

func TestParseInvalid(t *testing.T) {
	tests := map[string]string{
		"bad backend":    "solver:\n  backend: klu\n",
		"negative tol":   "solver:\n  tolerance: -1\n",
		"negative iters": "solver:\n  max_iterations: -3\n",
		"malformed yaml": "solver: [\n",
		"wrong type":     "solver:\n  max_iterations: many\n",
	}
	for name, data := range tests {
		t.Run(name, func(t *testing.T) {
			if _, err := Parse([]byte(data)); err == nil {
				t.Errorf("Parse(%q) succeeded", data)
			}
		})
	}
}

func TestSaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg := DefaultConfig()
	cfg.Solver.Backend = "dense"
	cfg.Solver.MaxIterations = 7
	if err := cfg.Save(path); err != nil {
		t.Fatalf("Save: %v", err)
	}

	loaded, gotPath, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("LoadFromPath: %v", err)
	}
	if gotPath != path {
		t.Errorf("path = %q, want %q", gotPath, path)
	}
	if loaded.Solver != cfg.Solver {
		t.Errorf("loaded %+v, saved %+v", loaded.Solver, cfg.Solver)
	}

	if _, _, err := LoadFromPath(filepath.Join(t.TempDir(), "none.yaml")); err == nil {
		t.Errorf("LoadFromPath of a missing file succeeded")
	}
}

func TestLoadFromEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "env.yaml")
	if err := os.WriteFile(path, []byte("solver:\n  tolerance: 1e-7\n"), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	t.Setenv("MNASPICE_CONFIG", path)

	if got := FindConfigPath(); got != path {
		t.Errorf("FindConfigPath() = %q, want %q", got, path)
	}
	cfg, gotPath, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if gotPath != path || cfg.Solver.Tolerance != 1e-7 {
		t.Errorf("Load() = %+v from %q", cfg.Solver, gotPath)
	}
}
