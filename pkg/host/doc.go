/*
Package host wraps gopsutil behind the Provider interface: CPU, memory
and disk utilization percentages, cumulative network counters, and the
host boot time.
*/
package host
