/*
Package sampler runs Warden's periodic metrics collection loop.

Every interval it snapshots CPU, memory and disk utilization, measures
network throughput across an independent short window, appends one
immutable Sample to the store, mirrors the values into Prometheus
gauges and hands them to the alert policy. A failure anywhere in a tick
(provider errors, the net window, the store write, even a panic) skips
that sample entirely and never stops the timer.
*/
package sampler
