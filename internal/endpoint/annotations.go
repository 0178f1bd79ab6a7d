package endpoint

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/cockroachdb/errors"
	networkingv1 "k8s.io/api/networking/v1"
	"k8s.io/apimachinery/pkg/types"
	"sigs.k8s.io/controller-runtime/pkg/client"

	"github.com/adri3n/eks-alb-cloudfront-controller/internal/metrics"
)

// Annotations patches Ingress metadata through the API server. Patching is
// best-effort from the reconciler's point of view: a failed patch must not
// undo or block the resource convergence that already happened, so callers
// log returned errors instead of escalating them.
type Annotations struct {
	client  client.Client
	metrics metrics.Collector
}

// NewAnnotations creates an Annotations adapter.
func NewAnnotations(c client.Client, collector metrics.Collector) *Annotations {
	if collector == nil {
		collector = metrics.NewNoopCollector()
	}

	return &Annotations{
		client:  c,
		metrics: collector,
	}
}

// EnabledFlag parses the enablement annotation of an Ingress.
// Absent or unparsable values read as false.
func EnabledFlag(ing *networkingv1.Ingress) bool {
	return DesiredStateOf(ing.GetAnnotations()) == StateEnabled
}

// Snapshot returns the annotation map of an Ingress, never nil.
func Snapshot(ing *networkingv1.Ingress) map[string]string {
	annotations := ing.GetAnnotations()
	if annotations == nil {
		return map[string]string{}
	}

	return annotations
}

// BackendHostname returns the first load-balancer hostname assigned to the
// Ingress, or "" while provisioning is still in progress upstream.
func BackendHostname(ing *networkingv1.Ingress) string {
	for _, lb := range ing.Status.LoadBalancer.Ingress {
		if lb.Hostname != "" {
			return lb.Hostname
		}
	}

	return ""
}

// SetDNSTarget points the external-dns target annotation at the given domain.
func (a *Annotations) SetDNSTarget(ctx context.Context, namespace, name, domain string) error {
	return a.Set(ctx, namespace, name, DNSTargetAnnotation, domain)
}

// ClearDNSTarget removes the external-dns target annotation.
func (a *Annotations) ClearDNSTarget(ctx context.Context, namespace, name string) error {
	return a.Clear(ctx, namespace, name, DNSTargetAnnotation)
}

// Set writes one annotation on an Ingress.
func (a *Annotations) Set(ctx context.Context, namespace, name, key, value string) error {
	return a.patchAnnotation(ctx, namespace, name, key, "set", &value)
}

// Clear removes one annotation from an Ingress. Already-absent keys clear
// cleanly.
func (a *Annotations) Clear(ctx context.Context, namespace, name, key string) error {
	return a.patchAnnotation(ctx, namespace, name, key, "clear", nil)
}

// patchAnnotation issues a JSON merge patch; a nil value deletes the key,
// which is also a no-op when the key is already absent.
func (a *Annotations) patchAnnotation(ctx context.Context, namespace, name, key, operation string, value *string) error {
	logger := slog.Default().With(
		"component", "annotations",
		"ingress", namespace+"/"+name,
		"key", key,
	)

	body, err := json.Marshal(map[string]any{
		"metadata": map[string]any{
			"annotations": map[string]*string{
				key: value,
			},
		},
	})
	if err != nil {
		return errors.Wrap(err, "failed to encode annotation patch")
	}

	ing := &networkingv1.Ingress{}
	ing.Name = name
	ing.Namespace = namespace

	if err := a.client.Patch(ctx, ing, client.RawPatch(types.MergePatchType, body)); err != nil {
		a.metrics.RecordAnnotationPatch(ctx, operation, "error")
		logger.Error("failed to patch annotation", "operation", operation, "error", err)

		return errors.Wrapf(err, "failed to %s annotation %s on %s/%s", operation, key, namespace, name)
	}

	a.metrics.RecordAnnotationPatch(ctx, operation, "success")

	if value != nil {
		logger.Info("annotation set", "value", *value)
	} else {
		logger.Info("annotation cleared")
	}

	return nil
}
