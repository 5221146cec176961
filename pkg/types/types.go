package types

import (
	"errors"
	"time"
)

// Sample is one timestamped host-metrics observation. Samples are
// append-only: written once per sampling tick, never mutated.
type Sample struct {
	Timestamp   int64   `json:"ts"`
	CPUPct      float64 `json:"cpu"`
	MemPct      float64 `json:"mem"`
	NetInBps    float64 `json:"net_in_bps"`
	NetOutBps   float64 `json:"net_out_bps"`
	DiskUsedPct float64 `json:"disk_used_pct"`
}

// RequestKind identifies what an issuance request asks for
type RequestKind string

const (
	RequestKindCredential RequestKind = "credential"
)

// RequestStatus represents the lifecycle state of an issuance request
type RequestStatus string

const (
	RequestStatusPending  RequestStatus = "pending"
	RequestStatusApproved RequestStatus = "approved"
	RequestStatusRejected RequestStatus = "rejected"
)

// IssuanceRequest tracks one requester's ask for a VPN credential.
// DecidedAt, DecidedBy and IssuedCredentialID are set if and only if
// the status is terminal.
type IssuanceRequest struct {
	ID                 uint64        `json:"id"`
	Kind               RequestKind   `json:"kind"`
	RequesterID        int64         `json:"requester_id"`
	RequesterLabel     string        `json:"requester_label,omitempty"`
	Status             RequestStatus `json:"status"`
	CreatedAt          time.Time     `json:"created_at"`
	DecidedAt          *time.Time    `json:"decided_at,omitempty"`
	DecidedBy          *int64        `json:"decided_by,omitempty"`
	IssuedCredentialID string        `json:"issued_credential_id,omitempty"`
}

// Decided reports whether the request has reached a terminal state
func (r *IssuanceRequest) Decided() bool {
	return r.Status != RequestStatusPending
}

// Choice is one inline option presented to a chat: a human-readable
// label paired with an opaque callback token.
type Choice struct {
	Label string
	Token string
}

// Domain error taxonomy. Expected conditions surface as these
// sentinels so callers can render them without logging noise.
var (
	// ErrNotFound indicates a lookup for an id that does not exist
	ErrNotFound = errors.New("request not found")

	// ErrAlreadyDecided indicates a decision on a request that has
	// already reached a terminal state
	ErrAlreadyDecided = errors.New("request already processed")

	// ErrFeatureDisabled indicates credential issuance is
	// administratively switched off
	ErrFeatureDisabled = errors.New("credential issuance is disabled")

	// ErrNoInbound indicates the proxy configuration holds no inbound
	// definitions to attach a client to
	ErrNoInbound = errors.New("proxy config has no inbounds")

	// ErrExternalConfig indicates the proxy config read, write or
	// restart failed; the affected request stays pending and may be
	// retried
	ErrExternalConfig = errors.New("proxy config update failed")
)
