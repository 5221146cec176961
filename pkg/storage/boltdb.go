package storage

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"path/filepath"
	"time"

	"github.com/wardenhq/warden/pkg/types"
	bolt "go.etcd.io/bbolt"
)

var (
	// Bucket names
	bucketSamples  = []byte("samples")
	bucketSettings = []byte("settings")
	bucketRequests = []byte("requests")
)

// BoltStore implements Store using BoltDB
type BoltStore struct {
	db *bolt.DB
}

// NewBoltStore opens (or creates) the BoltDB-backed store. Bucket
// creation is idempotent, so it is safe to call on every startup.
func NewBoltStore(dataDir string) (*BoltStore, error) {
	dbPath := filepath.Join(dataDir, "warden.db")

	db, err := bolt.Open(dbPath, 0600, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		buckets := [][]byte{
			bucketSamples,
			bucketSettings,
			bucketRequests,
		}

		for _, bucket := range buckets {
			if _, err := tx.CreateBucketIfNotExists(bucket); err != nil {
				return fmt.Errorf("failed to create bucket %s: %w", bucket, err)
			}
		}
		return nil
	})

	if err != nil {
		db.Close()
		return nil, err
	}

	return &BoltStore{db: db}, nil
}

// Close closes the database
func (s *BoltStore) Close() error {
	return s.db.Close()
}

// sampleKey builds a bucket key that sorts ascending by timestamp
// with a per-bucket sequence breaking ties, so insertion order is
// preserved for samples sharing one second.
func sampleKey(ts int64, seq uint64) []byte {
	key := make([]byte, 16)
	binary.BigEndian.PutUint64(key[:8], uint64(ts))
	binary.BigEndian.PutUint64(key[8:], seq)
	return key
}

// AppendSample writes one metrics row. Samples are never updated or
// deleted; retention is a deliberate non-feature.
func (s *BoltStore) AppendSample(sample types.Sample) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketSamples)
		seq, err := b.NextSequence()
		if err != nil {
			return err
		}
		data, err := json.Marshal(sample)
		if err != nil {
			return err
		}
		return b.Put(sampleKey(sample.Timestamp, seq), data)
	})
}

// QuerySamples returns all samples with Timestamp >= sinceTS in
// ascending timestamp order.
func (s *BoltStore) QuerySamples(sinceTS int64) ([]types.Sample, error) {
	var samples []types.Sample
	err := s.db.View(func(tx *bolt.Tx) error {
		c := tx.Bucket(bucketSamples).Cursor()
		start := sampleKey(sinceTS, 0)
		for k, v := c.Seek(start); k != nil; k, v = c.Next() {
			var sample types.Sample
			if err := json.Unmarshal(v, &sample); err != nil {
				return err
			}
			samples = append(samples, sample)
		}
		return nil
	})
	return samples, err
}

// GetSetting returns the value for key and whether it exists
func (s *BoltStore) GetSetting(key string) (string, bool, error) {
	var value string
	var found bool
	err := s.db.View(func(tx *bolt.Tx) error {
		data := tx.Bucket(bucketSettings).Get([]byte(key))
		if data != nil {
			value = string(data)
			found = true
		}
		return nil
	})
	return value, found, err
}

// SetSetting upserts a setting (last-write-wins)
func (s *BoltStore) SetSetting(key, value string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketSettings).Put([]byte(key), []byte(value))
	})
}

// ClaimSetting stores value under key only if the key is absent.
// BoltDB serializes write transactions, so two racing claims resolve
// to exactly one winner.
func (s *BoltStore) ClaimSetting(key, value string) (string, bool, error) {
	var current string
	var claimed bool
	err := s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketSettings)
		if existing := b.Get([]byte(key)); existing != nil {
			current = string(existing)
			return nil
		}
		if err := b.Put([]byte(key), []byte(value)); err != nil {
			return err
		}
		current = value
		claimed = true
		return nil
	})
	return current, claimed, err
}

// requestKey encodes a request id as a sortable 8-byte key
func requestKey(id uint64) []byte {
	key := make([]byte, 8)
	binary.BigEndian.PutUint64(key, id)
	return key
}

// CreateRequest inserts a new pending issuance request and returns its
// id. Ids come from the bucket sequence: monotonic and never reused.
func (s *BoltStore) CreateRequest(kind types.RequestKind, requesterID int64, requesterLabel string) (uint64, error) {
	var id uint64
	err := s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketRequests)
		seq, err := b.NextSequence()
		if err != nil {
			return err
		}
		req := types.IssuanceRequest{
			ID:             seq,
			Kind:           kind,
			RequesterID:    requesterID,
			RequesterLabel: requesterLabel,
			Status:         types.RequestStatusPending,
			CreatedAt:      time.Now().UTC(),
		}
		data, err := json.Marshal(&req)
		if err != nil {
			return err
		}
		if err := b.Put(requestKey(seq), data); err != nil {
			return err
		}
		id = seq
		return nil
	})
	return id, err
}

// GetRequest retrieves a request by id
func (s *BoltStore) GetRequest(id uint64) (*types.IssuanceRequest, error) {
	var req types.IssuanceRequest
	err := s.db.View(func(tx *bolt.Tx) error {
		data := tx.Bucket(bucketRequests).Get(requestKey(id))
		if data == nil {
			return types.ErrNotFound
		}
		return json.Unmarshal(data, &req)
	})
	if err != nil {
		return nil, err
	}
	return &req, nil
}

// DecideRequest transitions a pending request to approved or rejected.
// The check and the write share one Update transaction; BoltDB's
// single-writer model makes the transition atomic with respect to any
// concurrent decision on the same id.
func (s *BoltStore) DecideRequest(id uint64, status types.RequestStatus, decidedBy int64, credentialID string) error {
	if status != types.RequestStatusApproved && status != types.RequestStatusRejected {
		return fmt.Errorf("invalid terminal status: %s", status)
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketRequests)
		data := b.Get(requestKey(id))
		if data == nil {
			return types.ErrNotFound
		}
		var req types.IssuanceRequest
		if err := json.Unmarshal(data, &req); err != nil {
			return err
		}
		if req.Status != types.RequestStatusPending {
			return types.ErrAlreadyDecided
		}
		now := time.Now().UTC()
		req.Status = status
		req.DecidedAt = &now
		req.DecidedBy = &decidedBy
		req.IssuedCredentialID = credentialID
		updated, err := json.Marshal(&req)
		if err != nil {
			return err
		}
		return b.Put(requestKey(id), updated)
	})
}

// PendingRequests returns all requests still awaiting a decision, in
// id order.
func (s *BoltStore) PendingRequests() ([]*types.IssuanceRequest, error) {
	var pending []*types.IssuanceRequest
	err := s.db.View(func(tx *bolt.Tx) error {
		c := tx.Bucket(bucketRequests).Cursor()
		for k, v := c.First(); k != nil; k, v = c.Next() {
			var req types.IssuanceRequest
			if err := json.Unmarshal(v, &req); err != nil {
				return err
			}
			if req.Status == types.RequestStatusPending {
				pending = append(pending, &req)
			}
		}
		return nil
	})
	return pending, err
}
