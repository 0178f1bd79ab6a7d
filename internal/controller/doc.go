// Package controller contains the reconciliation engine that converges ACK
// CloudFront custom resources for annotated Ingresses, and the manager
// bootstrap that wires it to the cluster.
package controller
