package compose

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInterpolate(t *testing.T) {
	env := map[string]string{
		"USER":  "postgres",
		"EMPTY": "",
	}
	lookup := func(name string) (string, bool) {
		v, ok := env[name]
		return v, ok
	}

	tests := []struct {
		name     string
		input    string
		expected string
		wantErr  string
	}{
		{name: "no variables", input: "image: postgres", expected: "image: postgres"},
		{name: "simple reference", input: "user: $USER", expected: "user: postgres"},
		{name: "braced reference", input: "user: ${USER}", expected: "user: postgres"},
		{name: "unset expands empty", input: "pw: ${MISSING}", expected: "pw: "},
		{name: "default for unset", input: "pw: ${MISSING:-fallback}", expected: "pw: fallback"},
		{name: "default for empty", input: "pw: ${EMPTY:-fallback}", expected: "pw: fallback"},
		{name: "set wins over default", input: "pw: ${USER:-fallback}", expected: "pw: postgres"},
		{name: "escaped dollar", input: "price: $$5", expected: "price: $5"},
		{name: "dollar before digit passes through", input: "a: $5", expected: "a: $5"},
		{name: "trailing dollar", input: "a: $", expected: "a: $"},
		{name: "name stops at non-name char", input: "$USER/db", expected: "postgres/db"},
		{name: "unterminated brace", input: "a: ${USER", wantErr: "unterminated variable reference"},
		{name: "empty braced name", input: "a: ${}", wantErr: "empty variable name"},
		{name: "invalid braced name", input: "a: ${U-SER}", wantErr: "invalid variable name"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := Interpolate(tt.input, lookup)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, out)
		})
	}
}
