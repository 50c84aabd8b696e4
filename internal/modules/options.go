// Package modules implements CSS modules scoping and utility class extraction
// over a parsed stylesheet.
package modules

import (
	"context"
	"fmt"

	"github.com/yacobolo/cssmod/internal/scope"
)

// UtilityMode selects how utility class names are spelled.
type UtilityMode string

// Utility naming modes
const (
	// ModeReadable spells names as "prop[_value]"
	ModeReadable UtilityMode = "readable"
	// ModeSemiReadable keeps the property and hashes the value
	ModeSemiReadable UtilityMode = "semireadable"
	// ModeEncoded hashes both property and value
	ModeEncoded UtilityMode = "encoded"
)

// DefaultVariablesKey seeds the CSS variable suffix when scoping is enabled
// without an explicit key.
const DefaultVariablesKey = "/"

// ReportFunc receives the final class rename map of a file.
type ReportFunc func(ctx context.Context, filePath string, classes map[string]string) error

// UtilityReportFunc receives the utility table of a file as name -> CSS text.
type UtilityReportFunc func(ctx context.Context, filePath string, utilities map[string]string) error

// Variables configures :root custom property scoping.
type Variables struct {
	Enabled bool
	Key     string // extra seed for the variable suffix; implies Enabled
}

// UtilityOptions configures utility extraction.
type UtilityOptions struct {
	Mode      UtilityMode
	Media     bool // extract nested @media blocks
	Container bool // extract nested @container blocks
	Output    bool // append utility rules to the stylesheet
	Report    UtilityReportFunc
}

// Options is the user-facing configuration. Zero values mean "disabled" or
// "default".
type Options struct {
	ScopeLength  int
	Modules      bool
	CSSVariables Variables
	Utility      *UtilityOptions // nil disables utility extraction
	Report       ReportFunc
}

// Resolved is the immutable configuration the engine runs with.
type Resolved struct {
	ScopeLength  int
	Modules      bool
	Variables    bool
	VariablesKey string
	Utility      *UtilityOptions
	Report       ReportFunc
}

// DefaultUtilityOptions returns the options used when utility extraction is
// switched on without further settings.
func DefaultUtilityOptions() UtilityOptions {
	return UtilityOptions{
		Mode:   ModeSemiReadable,
		Output: true,
	}
}

// ModeForEnvironment picks the naming mode bundler integrations default to:
// semireadable while developing, encoded for production builds.
func ModeForEnvironment(env string) UtilityMode {
	if env == "development" {
		return ModeSemiReadable
	}
	return ModeEncoded
}

// ParseUtilityMode validates a mode name. An empty name yields the default mode.
func ParseUtilityMode(s string) (UtilityMode, error) {
	switch UtilityMode(s) {
	case "":
		return DefaultUtilityOptions().Mode, nil
	case ModeReadable, ModeSemiReadable, ModeEncoded:
		return UtilityMode(s), nil
	}
	return "", fmt.Errorf("unknown utility mode %q (want readable, semireadable or encoded)", s)
}

// Resolve merges opts with defaults.
func Resolve(opts Options) (*Resolved, error) {
	resolved := &Resolved{
		ScopeLength: opts.ScopeLength,
		Modules:     opts.Modules,
		Report:      opts.Report,
	}
	if resolved.ScopeLength <= 0 {
		resolved.ScopeLength = scope.DefaultLength
	}

	if opts.CSSVariables.Enabled || opts.CSSVariables.Key != "" {
		resolved.Variables = true
		resolved.VariablesKey = opts.CSSVariables.Key
		if resolved.VariablesKey == "" {
			resolved.VariablesKey = DefaultVariablesKey
		}
	}

	if opts.Utility != nil {
		utility := *opts.Utility
		mode, err := ParseUtilityMode(string(utility.Mode))
		if err != nil {
			return nil, err
		}
		utility.Mode = mode
		resolved.Utility = &utility
	}

	return resolved, nil
}

// Enabled reports whether any transformation is switched on.
func (r *Resolved) Enabled() bool {
	return r.Modules || r.Variables || r.Utility != nil
}

// targets reports whether utility extraction collects the named at-rule.
func (r *Resolved) targets(atRule string) bool {
	if r.Utility == nil {
		return false
	}
	switch atRule {
	case "media":
		return r.Utility.Media
	case "container":
		return r.Utility.Container
	}
	return false
}
