package endpoint_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/adri3n/eks-alb-cloudfront-controller/internal/endpoint"
)

func TestDesiredStateOf(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		annotations map[string]string
		expected    endpoint.DesiredState
	}{
		{
			name:        "true enables",
			annotations: map[string]string{endpoint.EnabledAnnotation: "true"},
			expected:    endpoint.StateEnabled,
		},
		{
			name:        "mixed case enables",
			annotations: map[string]string{endpoint.EnabledAnnotation: "True"},
			expected:    endpoint.StateEnabled,
		},
		{
			name:        "upper case enables",
			annotations: map[string]string{endpoint.EnabledAnnotation: "TRUE"},
			expected:    endpoint.StateEnabled,
		},
		{
			name:        "false disables",
			annotations: map[string]string{endpoint.EnabledAnnotation: "false"},
			expected:    endpoint.StateDisabled,
		},
		{
			name:        "garbage disables",
			annotations: map[string]string{endpoint.EnabledAnnotation: "yes"},
			expected:    endpoint.StateDisabled,
		},
		{
			name:        "empty value disables",
			annotations: map[string]string{endpoint.EnabledAnnotation: ""},
			expected:    endpoint.StateDisabled,
		},
		{
			name:        "absent key disables",
			annotations: map[string]string{"unrelated": "true"},
			expected:    endpoint.StateDisabled,
		},
		{
			name:        "nil map disables",
			annotations: nil,
			expected:    endpoint.StateDisabled,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.expected, endpoint.DesiredStateOf(tt.annotations))
		})
	}
}

func TestDesiredStateString(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "enabled", endpoint.StateEnabled.String())
	assert.Equal(t, "disabled", endpoint.StateDisabled.String())
}
