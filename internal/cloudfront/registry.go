// Package cloudfront holds the fixed registry of ACK CloudFront custom
// resource kinds managed by this controller.
package cloudfront

import (
	"k8s.io/apimachinery/pkg/runtime/schema"
)

const (
	// Group is the API group of the ACK CloudFront CRDs.
	Group = "cloudfront.services.k8s.aws"

	// Version is the API version of the ACK CloudFront CRDs.
	Version = "v1alpha1"
)

// CloudFront kind constants for the managed custom resources.
const (
	KindDistribution        = "Distribution"
	KindFunction            = "Function"
	KindCachePolicy         = "CachePolicy"
	KindOriginRequestPolicy = "OriginRequestPolicy"
	KindKeyGroup            = "KeyGroup"
)

// plurals maps a document kind to its API plural collection name.
// Kinds absent from this map are not managed and must be skipped.
//
//nolint:gochecknoglobals // fixed lookup table
var plurals = map[string]string{
	KindDistribution:        "distributions",
	KindFunction:            "functions",
	KindCachePolicy:         "cachepolicies",
	KindOriginRequestPolicy: "originrequestpolicies",
	KindKeyGroup:            "keygroups",
}

// kindOrder is the stable iteration order for teardown passes.
//
//nolint:gochecknoglobals // fixed lookup table
var kindOrder = []string{
	KindDistribution,
	KindFunction,
	KindCachePolicy,
	KindOriginRequestPolicy,
	KindKeyGroup,
}

// PluralFor returns the plural collection name for a kind, and whether the
// kind is managed at all.
func PluralFor(kind string) (string, bool) {
	plural, ok := plurals[kind]

	return plural, ok
}

// IsManaged reports whether the kind is in the registry.
func IsManaged(kind string) bool {
	_, ok := plurals[kind]

	return ok
}

// Kinds returns all managed kinds in a stable order.
func Kinds() []string {
	out := make([]string, len(kindOrder))
	copy(out, kindOrder)

	return out
}

// GroupVersion returns the GroupVersion of the managed CRDs.
func GroupVersion() schema.GroupVersion {
	return schema.GroupVersion{Group: Group, Version: Version}
}

// GVK returns the GroupVersionKind for a managed kind.
func GVK(kind string) schema.GroupVersionKind {
	return GroupVersion().WithKind(kind)
}

// ListGVK returns the GroupVersionKind of the list type for a managed kind.
func ListGVK(kind string) schema.GroupVersionKind {
	return GroupVersion().WithKind(kind + "List")
}
