// Package telemetry provides each agent's tracer. No exporter is wired:
// spans are created exactly as apps/*-service's consumers do (see
// sanket-sapate-arc-core's audit-service and trm-service consumers), but
// unless the host process installs a global TracerProvider they are
// no-op spans, and no span context is written to the logs.
package telemetry

import (
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

// Tracer returns the tracer for name, one per agent type (e.g.
// "scan-agent", "policy-agent").
func Tracer(name string) trace.Tracer {
	return otel.Tracer(name)
}
