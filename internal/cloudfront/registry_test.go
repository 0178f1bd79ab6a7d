package cloudfront_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/adri3n/eks-alb-cloudfront-controller/internal/cloudfront"
)

func TestPluralFor(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name           string
		kind           string
		expectedPlural string
		expectedOK     bool
	}{
		{
			name:           "distribution",
			kind:           "Distribution",
			expectedPlural: "distributions",
			expectedOK:     true,
		},
		{
			name:           "function",
			kind:           "Function",
			expectedPlural: "functions",
			expectedOK:     true,
		},
		{
			name:           "cache policy",
			kind:           "CachePolicy",
			expectedPlural: "cachepolicies",
			expectedOK:     true,
		},
		{
			name:           "origin request policy",
			kind:           "OriginRequestPolicy",
			expectedPlural: "originrequestpolicies",
			expectedOK:     true,
		},
		{
			name:           "key group",
			kind:           "KeyGroup",
			expectedPlural: "keygroups",
			expectedOK:     true,
		},
		{
			name:       "unregistered kind",
			kind:       "ConfigMap",
			expectedOK: false,
		},
		{
			name:       "case sensitive",
			kind:       "distribution",
			expectedOK: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			plural, ok := cloudfront.PluralFor(tt.kind)

			assert.Equal(t, tt.expectedOK, ok)
			assert.Equal(t, tt.expectedPlural, plural)
			assert.Equal(t, tt.expectedOK, cloudfront.IsManaged(tt.kind))
		})
	}
}

func TestKinds(t *testing.T) {
	t.Parallel()

	kinds := cloudfront.Kinds()

	assert.Equal(t, []string{
		"Distribution",
		"Function",
		"CachePolicy",
		"OriginRequestPolicy",
		"KeyGroup",
	}, kinds)

	// Mutating the returned slice must not affect the registry.
	kinds[0] = "mutated"
	assert.Equal(t, "Distribution", cloudfront.Kinds()[0])
}

func TestGVK(t *testing.T) {
	t.Parallel()

	gvk := cloudfront.GVK("Distribution")

	assert.Equal(t, "cloudfront.services.k8s.aws", gvk.Group)
	assert.Equal(t, "v1alpha1", gvk.Version)
	assert.Equal(t, "Distribution", gvk.Kind)

	listGVK := cloudfront.ListGVK("Distribution")
	assert.Equal(t, "DistributionList", listGVK.Kind)
}
