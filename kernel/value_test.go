package kernel_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/AntonStoeckl/domain-kernel-go/kernel"
)

type address struct {
	Street string
	City   string
	Lines  []string
	Extra  map[string]any
}

func Test_Value_MutatingTheRetrievedBundle_IsNotObservable(t *testing.T) {
	original := address{Street: "Main St 1", City: "Berlin", Lines: []string{"c/o Smith"}, Extra: map[string]any{"floor": 3}}
	value := kernel.NewValue(original)

	retrieved := value.Get()
	retrieved.City = "Hamburg"
	retrieved.Lines[0] = "changed"
	retrieved.Extra["floor"] = 99

	assert.Equal(t, original, value.Get())
}

func Test_Value_MutatingTheConstructorInput_IsNotObservable(t *testing.T) {
	bundle := map[string]any{"nested": map[string]any{"n": 1}}
	value := kernel.NewValue(bundle)

	bundle["nested"].(map[string]any)["n"] = 2
	bundle["added"] = true

	assert.Equal(t, map[string]any{"nested": map[string]any{"n": 1}}, value.Get())
}

func Test_Value_Equals(t *testing.T) {
	tests := []struct {
		name     string
		left     kernel.Value[map[string]any]
		right    any
		expected bool
	}{
		{
			name:     "deeply equal nested bundles",
			left:     kernel.NewValue(map[string]any{"a": map[string]any{"b": []int{1, 2}}}),
			right:    kernel.NewValue(map[string]any{"a": map[string]any{"b": []int{1, 2}}}),
			expected: true,
		},
		{
			name:     "independently constructed empty bundles",
			left:     kernel.NewValue(map[string]any{}),
			right:    kernel.NewValue(map[string]any{}),
			expected: true,
		},
		{
			name:     "nil and empty bundle",
			left:     kernel.NewValue[map[string]any](nil),
			right:    kernel.NewValue(map[string]any{}),
			expected: true,
		},
		{
			name:     "bundles containing nil attributes",
			left:     kernel.NewValue(map[string]any{"a": nil}),
			right:    kernel.NewValue(map[string]any{"a": nil}),
			expected: true,
		},
		{
			name:     "nil attribute is not the same as a missing attribute",
			left:     kernel.NewValue(map[string]any{"a": nil}),
			right:    kernel.NewValue(map[string]any{}),
			expected: false,
		},
		{
			name:     "different nested values",
			left:     kernel.NewValue(map[string]any{"a": []int{1, 2}}),
			right:    kernel.NewValue(map[string]any{"a": []int{2, 1}}),
			expected: false,
		},
		{
			name:     "pointer to equal value",
			left:     kernel.NewValue(map[string]any{"a": 1}),
			right:    ptr(kernel.NewValue(map[string]any{"a": 1})),
			expected: true,
		},
		{
			name:     "nil other",
			left:     kernel.NewValue(map[string]any{}),
			right:    nil,
			expected: false,
		},
		{
			name:     "typed nil pointer",
			left:     kernel.NewValue(map[string]any{}),
			right:    (*kernel.Value[map[string]any])(nil),
			expected: false,
		},
		{
			name:     "raw bundle is not a value",
			left:     kernel.NewValue(map[string]any{"a": 1}),
			right:    map[string]any{"a": 1},
			expected: false,
		},
		{
			name:     "value of another bundle type",
			left:     kernel.NewValue(map[string]any{}),
			right:    kernel.NewValue(address{}),
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.left.Equals(tt.right))
		})
	}
}

func Test_Value_Equals_ComparesStructBundlesStructurally(t *testing.T) {
	left := kernel.NewValue(address{Street: "a", Lines: nil})
	right := kernel.NewValue(address{Street: "a", Lines: []string{}})
	other := kernel.NewValue(address{Street: "b"})

	assert.True(t, left.Equals(right))
	assert.False(t, left.Equals(other))
}

func ptr[T any](v T) *T {
	return &v
}
