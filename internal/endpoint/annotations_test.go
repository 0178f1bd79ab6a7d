package endpoint_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	networkingv1 "k8s.io/api/networking/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/types"
	"sigs.k8s.io/controller-runtime/pkg/client/fake"

	"github.com/adri3n/eks-alb-cloudfront-controller/internal/endpoint"
)

func newIngress(namespace, name string, annotations map[string]string) *networkingv1.Ingress {
	return &networkingv1.Ingress{
		ObjectMeta: metav1.ObjectMeta{
			Name:        name,
			Namespace:   namespace,
			Annotations: annotations,
		},
	}
}

func TestEnabledFlag(t *testing.T) {
	t.Parallel()

	assert.True(t, endpoint.EnabledFlag(newIngress("ns", "app", map[string]string{
		endpoint.EnabledAnnotation: "true",
	})))
	assert.False(t, endpoint.EnabledFlag(newIngress("ns", "app", nil)))
}

func TestSnapshot(t *testing.T) {
	t.Parallel()

	snapshot := endpoint.Snapshot(newIngress("ns", "app", nil))
	require.NotNil(t, snapshot)
	assert.Empty(t, snapshot)

	snapshot = endpoint.Snapshot(newIngress("ns", "app", map[string]string{"a": "b"}))
	assert.Equal(t, map[string]string{"a": "b"}, snapshot)
}

func TestBackendHostname(t *testing.T) {
	t.Parallel()

	ing := newIngress("ns", "app", nil)
	assert.Empty(t, endpoint.BackendHostname(ing))

	ing.Status.LoadBalancer.Ingress = []networkingv1.IngressLoadBalancerIngress{
		{IP: "10.0.0.1"},
		{Hostname: "alb-123.eu-west-1.elb.amazonaws.com"},
	}
	assert.Equal(t, "alb-123.eu-west-1.elb.amazonaws.com", endpoint.BackendHostname(ing))
}

func TestSetAndClearDNSTarget(t *testing.T) {
	t.Parallel()

	ing := newIngress("ns", "app", map[string]string{
		endpoint.EnabledAnnotation: "true",
	})
	fakeClient := fake.NewClientBuilder().WithObjects(ing).Build()
	annotations := endpoint.NewAnnotations(fakeClient, nil)

	require.NoError(t, annotations.SetDNSTarget(t.Context(), "ns", "app", "d123.cloudfront.net"))

	var fetched networkingv1.Ingress
	require.NoError(t, fakeClient.Get(t.Context(), types.NamespacedName{Namespace: "ns", Name: "app"}, &fetched))
	assert.Equal(t, "d123.cloudfront.net", fetched.Annotations[endpoint.DNSTargetAnnotation])

	// The enablement flag is untouched by the merge patch.
	assert.Equal(t, "true", fetched.Annotations[endpoint.EnabledAnnotation])

	require.NoError(t, annotations.ClearDNSTarget(t.Context(), "ns", "app"))

	require.NoError(t, fakeClient.Get(t.Context(), types.NamespacedName{Namespace: "ns", Name: "app"}, &fetched))
	assert.NotContains(t, fetched.Annotations, endpoint.DNSTargetAnnotation)
	assert.Equal(t, "true", fetched.Annotations[endpoint.EnabledAnnotation])
}

func TestClearDNSTargetAlreadyAbsent(t *testing.T) {
	t.Parallel()

	fakeClient := fake.NewClientBuilder().
		WithObjects(newIngress("ns", "app", nil)).
		Build()
	annotations := endpoint.NewAnnotations(fakeClient, nil)

	require.NoError(t, annotations.ClearDNSTarget(t.Context(), "ns", "app"))
}

func TestSetDNSTargetMissingIngress(t *testing.T) {
	t.Parallel()

	fakeClient := fake.NewClientBuilder().Build()
	annotations := endpoint.NewAnnotations(fakeClient, nil)

	require.Error(t, annotations.SetDNSTarget(t.Context(), "ns", "gone", "d123.cloudfront.net"))
}
