// Package config loads the scenario parameters of section 6 from a TOML
// file via viper, with environment-variable and CLI-flag override, using
// viper.SetConfigName/AddConfigPath/ReadInConfig against a directory
// supplied by the caller.
package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Scenario holds every CLI-overridable parameter of section 6 plus the
// reference initial state and scaling factors of the "inputs consumed
// from the environment" list.
type Scenario struct {
	JD0         time.Time
	VarOrder    int
	MaxSteps    int
	NYearsBwd   float64
	NYearsFwd   float64
	Order       int
	AbsTol      float64
	ParseEqs    bool
	SSEphFile   string

	// ReferenceStateKM is the asteroid's reference state at JD0, six
	// Cartesian components in km, km/s (section 6 converts to AU,
	// AU/day before use).
	ReferenceStateKM [6]float64

	// PerturbationScales are the jet-transport scale factors of section
	// 6: [1e-8]*6 for position/velocity, 1e-13 for Yarkovsky, 1e-14 for
	// radiation pressure.
	PerturbationScales [8]float64
}

// defaults matches the CLI flag defaults of section 6 exactly.
func defaults() Scenario {
	jd0, _ := time.Parse(time.RFC3339, "2020-12-17T00:00:00Z")
	return Scenario{
		JD0:       jd0,
		VarOrder:  5,
		MaxSteps:  10000,
		NYearsBwd: -18.0,
		NYearsFwd: 9.0,
		Order:     25,
		AbsTol:    1e-20,
		ParseEqs:  true,
		SSEphFile: "./sseph343ast016_p31y_et.jld2",
		PerturbationScales: [8]float64{
			1e-8, 1e-8, 1e-8, 1e-8, 1e-8, 1e-8, 1e-13, 1e-14,
		},
	}
}

// Load reads a scenario TOML file from confDir (a directory containing
// scenario.toml), falling back to built-in defaults for any key the file
// omits. Viper's own env-var binding (APOPHIS_* by default) takes
// precedence over the file.
func Load(confDir string) (Scenario, error) {
	s := defaults()

	v := viper.New()
	v.SetConfigName("scenario")
	v.SetConfigType("toml")
	if confDir != "" {
		v.AddConfigPath(confDir)
	}
	v.SetEnvPrefix("APOPHIS")
	v.AutomaticEnv()

	if confDir != "" {
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return Scenario{}, fmt.Errorf("config: reading %s/scenario.toml: %w", confDir, err)
			}
		}
	}

	if v.IsSet("jd0") {
		jd0, err := time.Parse(time.RFC3339, v.GetString("jd0"))
		if err != nil {
			return Scenario{}, fmt.Errorf("config: invalid jd0: %w", err)
		}
		s.JD0 = jd0
	}
	if v.IsSet("varorder") {
		s.VarOrder = v.GetInt("varorder")
	}
	if v.IsSet("maxsteps") {
		s.MaxSteps = v.GetInt("maxsteps")
	}
	if v.IsSet("nyears_bwd") {
		s.NYearsBwd = v.GetFloat64("nyears_bwd")
	}
	if v.IsSet("nyears_fwd") {
		s.NYearsFwd = v.GetFloat64("nyears_fwd")
	}
	if v.IsSet("order") {
		s.Order = v.GetInt("order")
	}
	if v.IsSet("abstol") {
		s.AbsTol = v.GetFloat64("abstol")
	}
	if v.IsSet("parse_eqs") {
		s.ParseEqs = v.GetBool("parse_eqs")
	}
	if v.IsSet("ss_eph_file") {
		s.SSEphFile = v.GetString("ss_eph_file")
	}
	if v.IsSet("reference_state_km") {
		rs := v.GetFloat64Slice("reference_state_km")
		if len(rs) == 6 {
			copy(s.ReferenceStateKM[:], rs)
		}
	}
	if v.IsSet("perturbation_scales") {
		ps := v.GetFloat64Slice("perturbation_scales")
		if len(ps) == 8 {
			copy(s.PerturbationScales[:], ps)
		}
	}

	return s, nil
}
