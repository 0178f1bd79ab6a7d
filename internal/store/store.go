// Package store is a thin idempotent CRUD surface over the ACK CloudFront
// custom resources. It owns no convergence policy: callers decide what to
// create or delete, the store reports discriminated outcomes.
package store

import (
	"context"
	"log/slog"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/samber/lo"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"k8s.io/apimachinery/pkg/types"
	"sigs.k8s.io/controller-runtime/pkg/client"

	"github.com/adri3n/eks-alb-cloudfront-controller/internal/cloudfront"
	"github.com/adri3n/eks-alb-cloudfront-controller/internal/metrics"
)

// Store performs CRUD on managed custom resources through the API server.
// NotFound and AlreadyExists are expected outcomes, not faults: Exists maps
// NotFound to false, Create treats a concurrent-create conflict as already
// satisfied, Delete tolerates already-gone targets. Anything else is a
// transient backend fault returned to the caller, who retries on the next
// tick rather than here.
type Store struct {
	client  client.Client
	metrics metrics.Collector
}

// NewStore creates a Store backed by the given client.
func NewStore(c client.Client, collector metrics.Collector) *Store {
	if collector == nil {
		collector = metrics.NewNoopCollector()
	}

	return &Store{
		client:  c,
		metrics: collector,
	}
}

// Exists reports whether a managed resource is present.
func (s *Store) Exists(ctx context.Context, kind, namespace, name string) (bool, error) {
	_, err := s.Get(ctx, kind, namespace, name)
	if err != nil {
		if apierrors.IsNotFound(err) {
			return false, nil
		}

		return false, err
	}

	return true, nil
}

// Get fetches a managed resource. NotFound is returned as-is so callers can
// discriminate it with apierrors.IsNotFound.
//
//nolint:wrapcheck // NotFound must stay recognizable to apierrors predicates
func (s *Store) Get(ctx context.Context, kind, namespace, name string) (*unstructured.Unstructured, error) {
	obj := &unstructured.Unstructured{}
	obj.SetGroupVersionKind(cloudfront.GVK(kind))

	err := s.client.Get(ctx, types.NamespacedName{Namespace: namespace, Name: name}, obj)
	if err != nil {
		if !apierrors.IsNotFound(err) {
			s.metrics.RecordStoreError(ctx, "get", metrics.ClassifyAPIError(err))
		}

		return nil, err
	}

	return obj, nil
}

// Create submits a materialized resource. The caller is expected to have
// checked Exists first; a lost race against a concurrent creator surfaces as
// AlreadyExists and is logged as already satisfied, not retried.
func (s *Store) Create(ctx context.Context, obj *unstructured.Unstructured) error {
	kind := obj.GetKind()
	logger := s.opLogger(kind, obj.GetNamespace(), obj.GetName())

	err := s.client.Create(ctx, obj)
	if err != nil {
		if apierrors.IsAlreadyExists(err) {
			s.metrics.RecordStoreOperation(ctx, "create", kind, "already_exists")
			logger.Info("resource already exists")

			return nil
		}

		s.metrics.RecordStoreOperation(ctx, "create", kind, "error")
		s.metrics.RecordStoreError(ctx, "create", metrics.ClassifyAPIError(err))
		logger.Error("failed to create resource", "error", err)

		return errors.Wrapf(err, "failed to create %s %s/%s", kind, obj.GetNamespace(), obj.GetName())
	}

	s.metrics.RecordStoreOperation(ctx, "create", kind, "created")
	logger.Info("resource created")

	return nil
}

// ListByPrefix returns the names of managed resources of one kind in a
// namespace whose name starts with the given prefix.
func (s *Store) ListByPrefix(ctx context.Context, kind, namespace, namePrefix string) ([]string, error) {
	list := &unstructured.UnstructuredList{}
	list.SetGroupVersionKind(cloudfront.ListGVK(kind))

	err := s.client.List(ctx, list, client.InNamespace(namespace))
	if err != nil {
		s.metrics.RecordStoreOperation(ctx, "list", kind, "error")
		s.metrics.RecordStoreError(ctx, "list", metrics.ClassifyAPIError(err))

		return nil, errors.Wrapf(err, "failed to list %s in %s", kind, namespace)
	}

	s.metrics.RecordStoreOperation(ctx, "list", kind, "listed")

	names := lo.FilterMap(list.Items, func(item unstructured.Unstructured, _ int) (string, bool) {
		return item.GetName(), strings.HasPrefix(item.GetName(), namePrefix)
	})

	return names, nil
}

// Delete removes a managed resource, tolerating already-gone targets.
func (s *Store) Delete(ctx context.Context, kind, namespace, name string) error {
	logger := s.opLogger(kind, namespace, name)

	obj := &unstructured.Unstructured{}
	obj.SetGroupVersionKind(cloudfront.GVK(kind))
	obj.SetNamespace(namespace)
	obj.SetName(name)

	err := s.client.Delete(ctx, obj)
	if err != nil {
		if apierrors.IsNotFound(err) {
			s.metrics.RecordStoreOperation(ctx, "delete", kind, "already_gone")
			logger.Info("resource already gone")

			return nil
		}

		s.metrics.RecordStoreOperation(ctx, "delete", kind, "error")
		s.metrics.RecordStoreError(ctx, "delete", metrics.ClassifyAPIError(err))
		logger.Error("failed to delete resource", "error", err)

		return errors.Wrapf(err, "failed to delete %s %s/%s", kind, namespace, name)
	}

	s.metrics.RecordStoreOperation(ctx, "delete", kind, "deleted")
	logger.Info("resource deleted")

	return nil
}

func (s *Store) opLogger(kind, namespace, name string) *slog.Logger {
	return slog.Default().With(
		"component", "store",
		"kind", kind,
		"namespace", namespace,
		"name", name,
	)
}
