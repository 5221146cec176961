package storage

import (
	"github.com/wardenhq/warden/pkg/types"
)

// Store defines the persistence interface for Warden's durable state:
// the append-only metrics log, the settings table, and the issuance
// request ledger.
type Store interface {
	// Sample operations
	AppendSample(sample types.Sample) error
	QuerySamples(sinceTS int64) ([]types.Sample, error)

	// Setting operations (string kv, last-write-wins)
	GetSetting(key string) (string, bool, error)
	SetSetting(key, value string) error
	// ClaimSetting sets key to value only if no value exists yet. It
	// returns the value now stored and whether this call stored it.
	ClaimSetting(key, value string) (string, bool, error)

	// Issuance request ledger
	CreateRequest(kind types.RequestKind, requesterID int64, requesterLabel string) (uint64, error)
	GetRequest(id uint64) (*types.IssuanceRequest, error)
	// DecideRequest transitions a pending request to a terminal status.
	// The status check and the transition happen in one write
	// transaction: concurrent decisions on the same id resolve to
	// exactly one winner, the loser sees types.ErrAlreadyDecided.
	DecideRequest(id uint64, status types.RequestStatus, decidedBy int64, credentialID string) error
	PendingRequests() ([]*types.IssuanceRequest, error)

	Close() error
}
