// Package telemetry sets up the OpenTelemetry trace and metric providers used
// by the chain engine and exposes the Prometheus scrape handler.
package telemetry
