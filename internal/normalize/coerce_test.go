package normalize

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestString(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "", String(nil))
	assert.Equal(t, "text", String("  text "))
	assert.Equal(t, "75.5", String(75.5))
	assert.Equal(t, "true", String(true))
	assert.Equal(t, `{"degree":"BSc"}`, String(map[string]any{"degree": "BSc"}))
	assert.Equal(t, `["a","b"]`, String([]any{"a", "b"}))
}

func TestFloat(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		input  any
		expect float64
	}{
		{name: "number", input: 75.5, expect: 75.5},
		{name: "int", input: 3, expect: 3},
		{name: "numeric string", input: " 80 ", expect: 80},
		{name: "percent string", input: "65%", expect: 65},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.expect, Float(tt.input))
		})
	}

	for _, bad := range []any{nil, "", "high", true, map[string]any{}} {
		assert.True(t, math.IsNaN(Float(bad)), "%v", bad)
	}
}

func TestStrings(t *testing.T) {
	t.Parallel()

	assert.Equal(t, []string{}, Strings(nil))
	assert.Equal(t, []string{"go"}, Strings("go"))
	assert.Equal(t, []string{"go", "5", `{"k":"v"}`}, Strings([]any{"go", "", 5.0, map[string]any{"k": "v"}, nil}))
	assert.Equal(t, []string{"a"}, Strings([]string{" a ", "  "}))
}
