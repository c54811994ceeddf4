package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaultsWithoutFile(t *testing.T) {
	s, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	if s.Order != 25 || s.VarOrder != 5 || s.MaxSteps != 10000 {
		t.Fatalf("unexpected defaults: %+v", s)
	}
	if s.AbsTol != 1e-20 {
		t.Fatalf("expected default abstol 1e-20, got %g", s.AbsTol)
	}
}

func TestLoadOverridesFromFile(t *testing.T) {
	dir := t.TempDir()
	toml := `
order = 30
abstol = 1e-18
parse_eqs = false
nyears_fwd = 12.5
reference_state_km = [1.0, 2.0, 3.0, 4.0, 5.0, 6.0]
perturbation_scales = [1e-8, 1e-8, 1e-8, 1e-8, 1e-8, 1e-8, 1e-13, 1e-14]
`
	if err := os.WriteFile(filepath.Join(dir, "scenario.toml"), []byte(toml), 0o644); err != nil {
		t.Fatal(err)
	}
	s, err := Load(dir)
	if err != nil {
		t.Fatal(err)
	}
	if s.Order != 30 {
		t.Fatalf("expected order override to 30, got %d", s.Order)
	}
	if s.AbsTol != 1e-18 {
		t.Fatalf("expected abstol override, got %g", s.AbsTol)
	}
	if s.ParseEqs {
		t.Fatal("expected parse_eqs override to false")
	}
	if s.NYearsFwd != 12.5 {
		t.Fatalf("expected nyears_fwd override, got %g", s.NYearsFwd)
	}
	if s.ReferenceStateKM != [6]float64{1, 2, 3, 4, 5, 6} {
		t.Fatalf("unexpected reference state: %+v", s.ReferenceStateKM)
	}
	// Unspecified fields should keep their defaults.
	if s.VarOrder != 5 {
		t.Fatalf("expected default varorder to survive partial override, got %d", s.VarOrder)
	}
}

func TestLoadMissingFileFallsBackToDefaults(t *testing.T) {
	s, err := Load(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if s.Order != 25 {
		t.Fatalf("expected defaults when no scenario.toml is present, got order=%d", s.Order)
	}
}
