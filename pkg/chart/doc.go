// Package chart renders a metrics window as a dual-axis PNG line
// chart for delivery to the operator chat.
package chart
