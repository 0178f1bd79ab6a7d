// Package template materializes the static multi-document CloudFront
// template into concrete custom resources for one Ingress.
package template

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/cockroachdb/errors"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	yamlutil "k8s.io/apimachinery/pkg/util/yaml"

	"github.com/adri3n/eks-alb-cloudfront-controller/internal/cloudfront"
	"github.com/adri3n/eks-alb-cloudfront-controller/internal/metrics"
)

const (
	// DefaultBaseName is used when a template document omits metadata.name.
	DefaultBaseName = "cf-object"

	// yamlBufferSize is the read buffer for the YAML decoder.
	yamlBufferSize = 4096
)

// Materializer turns the template file into a patched resource set for a
// specific (namespace, ingress, backend hostname) triple.
//
// Materialize is a pure function of its arguments plus the file content: the
// template is parsed fresh on every call, so no document tree is ever shared
// between reconciliations.
type Materializer struct {
	// TemplatePath is the location of the multi-document YAML template.
	TemplatePath string

	// Metrics records materialization duration and failures.
	Metrics metrics.Collector
}

// NewMaterializer creates a Materializer for the given template path.
func NewMaterializer(templatePath string, collector metrics.Collector) *Materializer {
	if collector == nil {
		collector = metrics.NewNoopCollector()
	}

	return &Materializer{
		TemplatePath: templatePath,
		Metrics:      collector,
	}
}

// NamePrefix returns the name prefix shared by every resource materialized
// for an Ingress. Teardown finds live dependents by this prefix, which is
// why derived names must stay deterministic.
func NamePrefix(namespace, ingressName string) string {
	return namespace + "-" + ingressName + "-"
}

// ResourceName derives the deterministic name of one materialized resource.
func ResourceName(namespace, ingressName, baseName string) string {
	return NamePrefix(namespace, ingressName) + baseName
}

// OriginID derives the origin identifier cross-referenced inside the
// Distribution document.
func OriginID(namespace, ingressName string) string {
	return NamePrefix(namespace, ingressName) + "origin"
}

// Materialize parses the template and returns the patched resource set for
// the Ingress, preserving document order. Documents whose kind is not in the
// registry are dropped silently. A document that is registered but misses
// the nested fields its kind-specific patch needs is a fatal configuration
// error: the template is undeployable and every tick would fail identically
// until it is fixed.
func (m *Materializer) Materialize(
	ctx context.Context,
	namespace, ingressName, backendHostname string,
) ([]unstructured.Unstructured, error) {
	startTime := time.Now()

	resources, err := m.materialize(namespace, ingressName, backendHostname)
	if err != nil {
		m.Metrics.RecordMaterializeFailure(ctx)

		return nil, err
	}

	m.Metrics.RecordMaterializeDuration(ctx, time.Since(startTime))
	m.Metrics.RecordManagedResources(ctx, len(resources))

	return resources, nil
}

//nolint:noinlineerr // inline error handling keeps the decode loop readable
func (m *Materializer) materialize(namespace, ingressName, backendHostname string) ([]unstructured.Unstructured, error) {
	logger := slog.Default().With("component", "materializer", "ingress", namespace+"/"+ingressName)

	data, err := os.ReadFile(m.TemplatePath)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read template %s", m.TemplatePath)
	}

	decoder := yamlutil.NewYAMLOrJSONDecoder(bytes.NewReader(data), yamlBufferSize)

	var resources []unstructured.Unstructured

	for docIdx := 0; ; docIdx++ {
		var raw map[string]any

		err := decoder.Decode(&raw)
		if errors.Is(err, io.EOF) {
			break
		}

		if err != nil {
			return nil, errors.Wrapf(err, "failed to decode template %s document %d", m.TemplatePath, docIdx)
		}

		if len(raw) == 0 {
			continue
		}

		obj := unstructured.Unstructured{Object: raw}

		kind := obj.GetKind()
		if !cloudfront.IsManaged(kind) {
			logger.Debug("skipping unregistered template document", "kind", kind, "document", docIdx)

			continue
		}

		obj.SetNamespace(namespace)

		baseName := obj.GetName()
		if baseName == "" {
			baseName = DefaultBaseName
		}

		obj.SetName(ResourceName(namespace, ingressName, baseName))

		if kind == cloudfront.KindDistribution {
			if err := patchDistribution(&obj, namespace, ingressName, backendHostname); err != nil {
				return nil, errors.Wrapf(err, "template %s document %d (%s)", m.TemplatePath, docIdx, kind)
			}
		}

		resources = append(resources, obj)
	}

	return resources, nil
}

// patchDistribution rewrites the origin and default-behavior fields of a
// Distribution document so both sides reference the same derived origin id.
func patchDistribution(obj *unstructured.Unstructured, namespace, ingressName, backendHostname string) error {
	originID := OriginID(namespace, ingressName)

	distConfig, err := nestedMap(obj.Object, "spec", "distributionConfig")
	if err != nil {
		return err
	}

	distConfig["comment"] = fmt.Sprintf("CloudFront for ALB %s-%s", namespace, ingressName)

	originsMap, err := nestedMap(distConfig, "origins")
	if err != nil {
		return errors.Wrap(err, "spec.distributionConfig")
	}

	items, ok := originsMap["items"].([]any)
	if !ok || len(items) == 0 {
		return errors.New("malformed distribution: spec.distributionConfig.origins.items is missing or empty")
	}

	origin, ok := items[0].(map[string]any)
	if !ok {
		return errors.New("malformed distribution: spec.distributionConfig.origins.items[0] is not a mapping")
	}

	origin["id"] = originID
	origin["domainName"] = backendHostname

	behavior, err := nestedMap(distConfig, "defaultCacheBehavior")
	if err != nil {
		return errors.Wrap(err, "spec.distributionConfig")
	}

	behavior["targetOriginId"] = originID

	return nil
}

// nestedMap walks a field path expecting mappings all the way down.
//
//nolint:wrapcheck // errors.Newf creates new errors
func nestedMap(root map[string]any, fields ...string) (map[string]any, error) {
	current := root

	for i, field := range fields {
		next, ok := current[field].(map[string]any)
		if !ok {
			return nil, errors.Newf("malformed distribution: %s is missing or not a mapping",
				fieldPath(fields[:i+1]))
		}

		current = next
	}

	return current, nil
}

func fieldPath(fields []string) string {
	path := ""
	for i, field := range fields {
		if i > 0 {
			path += "."
		}

		path += field
	}

	return path
}
