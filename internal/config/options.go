// Package config defines the analysis options threaded through a Session:
// the arity ceiling, how often long-running fixed points check for
// cancellation, and the display names of the three always-present builtin
// signatures. Grounded on internal/ext/config.go's yaml.v3-backed Config
// struct in the teacher repo.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// MaxArity is the hard ceiling from spec.md §1/§6: arities are represented
// as bits in a 32-bit word, so this can never exceed 30.
const MaxArity = 30

// Options configures one analysis session. The zero value is invalid; use
// Default() or Load().
type Options struct {
	// MaxArity overrides the arity ceiling downward for embedding contexts
	// (e.g. a constrained visualizer). Must be in [1, config.MaxArity].
	MaxArity int `yaml:"max_arity"`

	// ClosureCancelCheckEvery controls how many fixed-point iterations of
	// Type.Closure run between checks of the cooperative cancellation
	// token (spec.md §5). A value of 1 checks every iteration.
	ClosureCancelCheckEvery int `yaml:"closure_cancel_check_every"`

	// Builtin names, in case a downstream consumer wants non-default
	// display names for the three built-in signatures (spec.md §3).
	UnivName   string `yaml:"univ_name"`
	NoneName   string `yaml:"none_name"`
	SigIntName string `yaml:"sigint_name"`
}

// Default returns the standard options: full MAXARITY, a cancellation
// check on every closure iteration, and Alloy's conventional builtin names.
func Default() Options {
	return Options{
		MaxArity:                MaxArity,
		ClosureCancelCheckEvery: 1,
		UnivName:                "univ",
		NoneName:                "none",
		SigIntName:              "Int",
	}
}

// Validate checks that the options are internally consistent, filling in
// any zero-valued field from Default() first (so a partially-specified YAML
// document is still usable).
func (o *Options) Validate() error {
	def := Default()
	if o.MaxArity == 0 {
		o.MaxArity = def.MaxArity
	}
	if o.ClosureCancelCheckEvery == 0 {
		o.ClosureCancelCheckEvery = def.ClosureCancelCheckEvery
	}
	if o.UnivName == "" {
		o.UnivName = def.UnivName
	}
	if o.NoneName == "" {
		o.NoneName = def.NoneName
	}
	if o.SigIntName == "" {
		o.SigIntName = def.SigIntName
	}
	if o.MaxArity < 1 || o.MaxArity > MaxArity {
		return fmt.Errorf("config: max_arity must be between 1 and %d, got %d", MaxArity, o.MaxArity)
	}
	if o.ClosureCancelCheckEvery < 1 {
		return fmt.Errorf("config: closure_cancel_check_every must be >= 1, got %d", o.ClosureCancelCheckEvery)
	}
	return nil
}

// Load reads a YAML options document from path, applying Default() for any
// field left unspecified.
func Load(path string) (Options, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Options{}, fmt.Errorf("config: reading %s: %w", path, err)
	}
	opts := Default()
	if err := yaml.Unmarshal(data, &opts); err != nil {
		return Options{}, fmt.Errorf("config: parsing %s: %w", path, err)
	}
	if err := opts.Validate(); err != nil {
		return Options{}, err
	}
	return opts, nil
}
