/*
Package types defines the core entities shared across Warden's components:
metric samples, issuance requests with their lifecycle states, inline chat
choices, and the domain error sentinels.

Types here carry no behavior beyond trivial accessors; all logic lives in
the owning component packages.
*/
package types
