package modules

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yacobolo/cssmod/internal/scope"
)

func TestResolve(t *testing.T) {
	tests := []struct {
		name  string
		opts  Options
		check func(t *testing.T, r *Resolved)
	}{
		{
			name: "defaults",
			opts: Options{},
			check: func(t *testing.T, r *Resolved) {
				assert.Equal(t, scope.DefaultLength, r.ScopeLength)
				assert.False(t, r.Enabled())
				assert.Nil(t, r.Utility)
			},
		},
		{
			name: "variables without key",
			opts: Options{CSSVariables: Variables{Enabled: true}},
			check: func(t *testing.T, r *Resolved) {
				assert.True(t, r.Variables)
				assert.Equal(t, DefaultVariablesKey, r.VariablesKey)
				assert.True(t, r.Enabled())
			},
		},
		{
			name: "variables key implies enabled",
			opts: Options{CSSVariables: Variables{Key: "theme"}},
			check: func(t *testing.T, r *Resolved) {
				assert.True(t, r.Variables)
				assert.Equal(t, "theme", r.VariablesKey)
			},
		},
		{
			name: "utility mode defaults to semireadable",
			opts: Options{ScopeLength: 5, Utility: &UtilityOptions{Media: true}},
			check: func(t *testing.T, r *Resolved) {
				assert.Equal(t, 5, r.ScopeLength)
				require.NotNil(t, r.Utility)
				assert.Equal(t, ModeSemiReadable, r.Utility.Mode)
				assert.True(t, r.targets("media"))
				assert.False(t, r.targets("container"))
				assert.False(t, r.targets("supports"))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := Resolve(tt.opts)
			require.NoError(t, err)
			tt.check(t, r)
		})
	}
}

func TestResolveCopiesUtilityOptions(t *testing.T) {
	utility := &UtilityOptions{Mode: ModeReadable}
	r, err := Resolve(Options{Utility: utility})
	require.NoError(t, err)

	utility.Mode = ModeEncoded
	assert.Equal(t, ModeReadable, r.Utility.Mode)
}

func TestParseUtilityMode(t *testing.T) {
	for _, mode := range []UtilityMode{ModeReadable, ModeSemiReadable, ModeEncoded} {
		got, err := ParseUtilityMode(string(mode))
		require.NoError(t, err)
		assert.Equal(t, mode, got)
	}

	_, err := ParseUtilityMode("compact")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown utility mode "compact"`)

	_, err = Resolve(Options{Utility: &UtilityOptions{Mode: "compact"}})
	require.Error(t, err)
}

func TestModeForEnvironment(t *testing.T) {
	assert.Equal(t, ModeSemiReadable, ModeForEnvironment("development"))
	assert.Equal(t, ModeEncoded, ModeForEnvironment("production"))
	assert.Equal(t, ModeEncoded, ModeForEnvironment(""))
}
