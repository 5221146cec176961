/*
Package storage provides BoltDB-backed persistence for Warden's durable
state: the append-only host-metrics log, the settings table, and the
credential-issuance request ledger.

# Buckets

	samples   key: big-endian unix ts ++ sequence, value: JSON Sample
	settings  key: setting name, value: raw string
	requests  key: big-endian request id, value: JSON IssuanceRequest

All rows are serialized as JSON. The sample key layout preserves
insertion order for rows written within the same second, so range scans
return samples exactly as appended. Request ids come from the bucket
sequence counter and are never reused.

# Transaction model

Reads use db.View (concurrent snapshots), writes use db.Update
(serialized, fsync on commit). DecideRequest relies on this: the
pending-status check and the terminal transition share a single write
transaction, so two simultaneous decisions on one request id resolve to
exactly one winner; the loser observes types.ErrAlreadyDecided.
ClaimSetting uses the same property to make first-claim operator
binding race-free.

Bucket creation in NewBoltStore is idempotent and runs on every
startup; there is no separate migration step.
*/
package storage
