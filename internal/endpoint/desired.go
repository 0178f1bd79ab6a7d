// Package endpoint reads and patches the Ingress-side surface of the
// controller: the enablement flag, the DNS target annotation and the
// load-balancer backend hostname.
package endpoint

import (
	"strings"
)

// Annotation keys recognized on managed Ingresses.
const (
	// EnabledAnnotation turns CloudFront fronting on for an Ingress when its
	// value is "true" (case-insensitive).
	EnabledAnnotation = "cloudfront.aws.k8s.io/enabled"

	// DNSTargetAnnotation is the external-dns target pointed at the
	// provisioned distribution, and cleared on teardown.
	DNSTargetAnnotation = "external-dns.alpha.kubernetes.io/target"
)

// DesiredState is the convergence target derived from an Ingress's current
// annotations. It is recomputed from scratch on every tick and never stored,
// which keeps the reconciler self-healing across restarts and missed ticks.
type DesiredState int

const (
	// StateDisabled means all managed CloudFront resources for the Ingress
	// must be absent.
	StateDisabled DesiredState = iota

	// StateEnabled means the full materialized resource set must exist.
	StateEnabled
)

// String returns the state name for logging.
func (s DesiredState) String() string {
	if s == StateEnabled {
		return "enabled"
	}

	return "disabled"
}

// DesiredStateOf derives the convergence target from an annotation map.
// Only a case-insensitive "true" enables; anything else, including an absent
// key, disables.
func DesiredStateOf(annotations map[string]string) DesiredState {
	if strings.EqualFold(annotations[EnabledAnnotation], "true") {
		return StateEnabled
	}

	return StateDisabled
}
