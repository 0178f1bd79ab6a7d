package controller

import (
	"context"
	"log/slog"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"github.com/samber/lo"
	networkingv1 "k8s.io/api/networking/v1"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	ctrl "sigs.k8s.io/controller-runtime"
	"sigs.k8s.io/controller-runtime/pkg/client"
	"sigs.k8s.io/controller-runtime/pkg/predicate"

	"github.com/adri3n/eks-alb-cloudfront-controller/internal/cloudfront"
	"github.com/adri3n/eks-alb-cloudfront-controller/internal/endpoint"
	"github.com/adri3n/eks-alb-cloudfront-controller/internal/metrics"
	"github.com/adri3n/eks-alb-cloudfront-controller/internal/store"
	"github.com/adri3n/eks-alb-cloudfront-controller/internal/template"
)

// DefaultResyncInterval is the periodic re-evaluation interval. It is a
// tunable, not a correctness constant: every tick is a full convergence pass
// from current annotations, so a missed tick is only a delay.
const DefaultResyncInterval = 60 * time.Second

// IngressReconciler converges CloudFront custom resources for annotated
// Ingresses.
//
// Key behaviors:
//   - Recomputes the desired state from annotations on every tick, holding
//     no state between ticks beyond what lives in the cluster
//   - Enabled: materializes the template and creates whatever is missing,
//     continue-on-error across resources
//   - Disabled: deletes everything matching the Ingress's name prefix and
//     clears the external-dns target annotation
//   - Never fails a tick: faults are logged and retried by the periodic
//     requeue, so one Ingress's trouble cannot starve the others via backoff
type IngressReconciler struct {
	client.Client

	// Materializer produces the patched resource set from the template.
	Materializer *template.Materializer

	// Store performs CRUD on the ACK CloudFront custom resources.
	Store *store.Store

	// Annotations patches the external-dns target on the Ingress.
	Annotations *endpoint.Annotations

	// Metrics records tick outcomes.
	Metrics metrics.Collector

	// ResyncInterval is the periodic requeue delay between ticks.
	ResyncInterval time.Duration

	// SetDNSTarget gates patching the external-dns target annotation with
	// the provisioned distribution domain.
	SetDNSTarget bool
}

// Reconcile is one tick for one Ingress.
//
//nolint:noinlineerr // inline error handling for controller pattern
func (r *IngressReconciler) Reconcile(ctx context.Context, req ctrl.Request) (ctrl.Result, error) {
	startTime := time.Now()
	requeue := ctrl.Result{RequeueAfter: r.ResyncInterval}
	logger := slog.Default().With("ingress", req.NamespacedName.String(), "tick", uuid.NewString())

	var ing networkingv1.Ingress
	if err := r.Get(ctx, req.NamespacedName, &ing); err != nil {
		if apierrors.IsNotFound(err) {
			// The Ingress is gone; its tick stream ends here. Dependent
			// resources are only removed by a Disabled pass while it lived.
			return ctrl.Result{}, nil
		}

		logger.Error("failed to get ingress", "error", err)
		r.Metrics.RecordReconcileDuration(ctx, metrics.OutcomeError, time.Since(startTime))

		return requeue, nil
	}

	annotations := endpoint.Snapshot(&ing)
	desired := endpoint.DesiredStateOf(annotations)

	logger.Info("processing ingress",
		"desiredState", desired.String(),
		endpoint.EnabledAnnotation, lo.ValueOr(annotations, endpoint.EnabledAnnotation, "not set"),
		endpoint.DNSTargetAnnotation, lo.ValueOr(annotations, endpoint.DNSTargetAnnotation, "not set"),
	)

	var outcome string

	switch desired {
	case endpoint.StateEnabled:
		outcome = r.convergeEnabled(ctx, logger, &ing)
	case endpoint.StateDisabled:
		outcome = r.convergeDisabled(ctx, logger, &ing)
	}

	r.Metrics.RecordReconcileDuration(ctx, outcome, time.Since(startTime))

	return requeue, nil
}

// convergeEnabled drives cluster state toward the full materialized resource
// set. Returns the tick outcome for metrics.
//
//nolint:funcorder // helpers follow Reconcile for readability
func (r *IngressReconciler) convergeEnabled(ctx context.Context, logger *slog.Logger, ing *networkingv1.Ingress) string {
	hostname := endpoint.BackendHostname(ing)
	if hostname == "" {
		// Upstream load balancer provisioning has not finished; nothing can
		// be materialized yet. The next tick retries naturally.
		r.Metrics.RecordDeferredTick(ctx, "no_backend_hostname")
		logger.Info("deferring: no load balancer hostname assigned yet")

		return metrics.OutcomeDeferred
	}

	logger.Info("resolved load balancer hostname", "hostname", hostname)

	resources, err := r.Materializer.Materialize(ctx, ing.Namespace, ing.Name, hostname)
	if err != nil {
		// Undeployable template: a static deployment defect, every tick will
		// fail identically until the template is fixed.
		logger.Error("template materialization failed", "error", err)

		return metrics.OutcomeError
	}

	faults := 0

	for i := range resources {
		if err := r.ensureResource(ctx, &resources[i]); err != nil {
			// Deliberate continue-on-error: one resource's transient fault
			// must not prevent attempting its siblings.
			faults++
		}
	}

	if r.SetDNSTarget {
		r.updateDNSTarget(ctx, logger, ing, resources)
	}

	if faults > 0 {
		logger.Warn("enabled pass completed with faults", "faults", faults, "resources", len(resources))

		return metrics.OutcomeDegraded
	}

	return metrics.OutcomeConverged
}

// ensureResource makes one materialized resource exist: check, then create
// if absent. The existence check is mandatory so repeated Enabled ticks
// never duplicate.
//
//nolint:funcorder // private helper
func (r *IngressReconciler) ensureResource(ctx context.Context, obj *unstructured.Unstructured) error {
	kind := obj.GetKind()

	exists, err := r.Store.Exists(ctx, kind, obj.GetNamespace(), obj.GetName())
	if err != nil {
		return errors.Wrapf(err, "failed to check %s %s/%s", kind, obj.GetNamespace(), obj.GetName())
	}

	if exists {
		slog.Default().Info("resource already exists",
			"component", "engine", "kind", kind, "name", obj.GetName(), "namespace", obj.GetNamespace())

		return nil
	}

	//nolint:wrapcheck // store errors already carry kind/name/namespace context
	return r.Store.Create(ctx, obj)
}

// updateDNSTarget points external-dns at the distribution's provisioned
// domain. Best-effort: the resource convergence that already happened must
// not be blocked by an annotation patch failure.
//
//nolint:funcorder // private helper
func (r *IngressReconciler) updateDNSTarget(
	ctx context.Context,
	logger *slog.Logger,
	ing *networkingv1.Ingress,
	resources []unstructured.Unstructured,
) {
	dist, found := lo.Find(resources, func(obj unstructured.Unstructured) bool {
		return obj.GetKind() == cloudfront.KindDistribution
	})
	if !found {
		return
	}

	live, err := r.Store.Get(ctx, cloudfront.KindDistribution, dist.GetNamespace(), dist.GetName())
	if err != nil {
		logger.Error("failed to read back distribution for dns target", "name", dist.GetName(), "error", err)

		return
	}

	domain, _, err := unstructured.NestedString(live.Object, "status", "domainName")
	if err != nil || domain == "" {
		logger.Info("distribution domain not provisioned yet", "name", dist.GetName())

		return
	}

	if err := r.Annotations.SetDNSTarget(ctx, ing.Namespace, ing.Name, domain); err != nil {
		logger.Error("failed to set dns target annotation", "error", err)
	}
}

// convergeDisabled tears down every resource whose name carries the
// Ingress's derived prefix, across all registered kinds. Prefix matching is
// the reverse lookup standing in for a persisted manifest, which works
// because resource names are derived deterministically.
//
//nolint:funcorder // helpers follow Reconcile for readability
func (r *IngressReconciler) convergeDisabled(ctx context.Context, logger *slog.Logger, ing *networkingv1.Ingress) string {
	prefix := template.NamePrefix(ing.Namespace, ing.Name)
	faults := 0

	for _, kind := range cloudfront.Kinds() {
		names, err := r.Store.ListByPrefix(ctx, kind, ing.Namespace, prefix)
		if err != nil {
			logger.Error("failed to list resources for teardown", "kind", kind, "error", err)

			faults++

			continue
		}

		for _, name := range names {
			if err := r.Store.Delete(ctx, kind, ing.Namespace, name); err != nil {
				faults++
			}
		}
	}

	if err := r.Annotations.ClearDNSTarget(ctx, ing.Namespace, ing.Name); err != nil {
		logger.Error("failed to clear dns target annotation", "error", err)
	}

	if faults > 0 {
		logger.Warn("disabled pass completed with faults", "faults", faults)

		return metrics.OutcomeDegraded
	}

	return metrics.OutcomeConverged
}

// SetupWithManager registers the reconciler. Annotation edits trigger a tick
// immediately; load-balancer status changes are picked up by the periodic
// requeue, which also provides the fixed-interval re-evaluation.
func (r *IngressReconciler) SetupWithManager(mgr ctrl.Manager) error {
	if r.ResyncInterval <= 0 {
		r.ResyncInterval = DefaultResyncInterval
	}

	err := ctrl.NewControllerManagedBy(mgr).
		For(&networkingv1.Ingress{}).
		WithEventFilter(predicate.AnnotationChangedPredicate{}).
		Complete(r)

	return errors.Wrap(err, "failed to setup ingress controller")
}
