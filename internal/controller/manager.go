package controller

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"
	ctrl "sigs.k8s.io/controller-runtime"
	"sigs.k8s.io/controller-runtime/pkg/healthz"
	ctrlmetrics "sigs.k8s.io/controller-runtime/pkg/metrics"
	"sigs.k8s.io/controller-runtime/pkg/metrics/server"

	"github.com/adri3n/eks-alb-cloudfront-controller/internal/endpoint"
	"github.com/adri3n/eks-alb-cloudfront-controller/internal/metrics"
	"github.com/adri3n/eks-alb-cloudfront-controller/internal/store"
	"github.com/adri3n/eks-alb-cloudfront-controller/internal/template"
)

// Config holds all configuration options for the controller manager.
// Values are typically populated from CLI flags or environment variables.
type Config struct {
	// TemplatePath is the location of the multi-document CloudFront
	// template (required).
	TemplatePath string

	// ResyncInterval is the periodic re-evaluation interval per Ingress.
	ResyncInterval time.Duration

	// SetDNSTarget enables patching the external-dns target annotation
	// with the provisioned distribution domain.
	SetDNSTarget bool

	// MetricsAddr is the address for the Prometheus metrics endpoint.
	MetricsAddr string

	// HealthAddr is the address for health and readiness probe endpoints.
	HealthAddr string
}

// Run initializes and starts the controller manager with the provided
// configuration. It constructs every collaborator explicitly (no package
// globals), wires the Ingress reconciler, and blocks until the context is
// cancelled or an error occurs.
//
//nolint:noinlineerr // controller setup requires multiple steps
func Run(ctx context.Context, cfg *Config) error {
	logger := ctrl.Log.WithName("manager")
	logger.Info("initializing controller manager")

	if cfg.TemplatePath == "" {
		return errors.New("template path is required")
	}

	mgr, err := ctrl.NewManager(ctrl.GetConfigOrDie(), ctrl.Options{
		Metrics: server.Options{
			BindAddress: cfg.MetricsAddr,
		},
		HealthProbeBindAddress: cfg.HealthAddr,
	})
	if err != nil {
		return errors.Wrap(err, "failed to create manager")
	}

	collector := metrics.NewCollector(ctrlmetrics.Registry)

	reconciler := &IngressReconciler{
		Client:         mgr.GetClient(),
		Materializer:   template.NewMaterializer(cfg.TemplatePath, collector),
		Store:          store.NewStore(mgr.GetClient(), collector),
		Annotations:    endpoint.NewAnnotations(mgr.GetClient(), collector),
		Metrics:        collector,
		ResyncInterval: cfg.ResyncInterval,
		SetDNSTarget:   cfg.SetDNSTarget,
	}

	if err := reconciler.SetupWithManager(mgr); err != nil {
		return errors.Wrap(err, "failed to setup ingress controller")
	}

	if err := mgr.AddHealthzCheck("healthz", healthz.Ping); err != nil {
		return errors.Wrap(err, "failed to set up health check")
	}

	if err := mgr.AddReadyzCheck("readyz", healthz.Ping); err != nil {
		return errors.Wrap(err, "failed to set up ready check")
	}

	logger.Info("starting manager",
		"templatePath", cfg.TemplatePath,
		"resyncInterval", cfg.ResyncInterval.String(),
		"setDNSTarget", cfg.SetDNSTarget,
	)

	if err := mgr.Start(ctx); err != nil {
		return errors.Wrap(err, "failed to start manager")
	}

	return nil
}
