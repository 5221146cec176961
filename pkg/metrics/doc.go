/*
Package metrics exposes Warden's Prometheus instrumentation: gauges
mirroring the latest host sample, tick outcome counters, and the alert
delivery counter, served on an optional /metrics listener.
*/
package metrics
