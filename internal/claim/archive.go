package claim

import (
	"encoding/json"
	"fmt"
	"time"

	"go.etcd.io/bbolt"
)

const claimBucket = "claims"

// Record is a submitted claim together with its submission time. The
// timestamp lives here, not on the Claim itself, so claim assembly
// stays idempotent.
type Record struct {
	Claim       Claim     `json:"claim"`
	SubmittedAt time.Time `json:"submitted_at"`
}

// Archive is the durable log of submitted claims.
type Archive interface {
	// SaveRecord stores a submitted claim.
	SaveRecord(record *Record) error

	// GetRecord retrieves a record by claim ID.
	GetRecord(claimID string) (*Record, error)

	// ListRecords returns all archived records.
	ListRecords() ([]*Record, error)

	// Close closes the archive.
	Close() error
}

// BoltArchive implements Archive on a BoltDB file.
type BoltArchive struct {
	db *bbolt.DB
}

// NewBoltArchive opens (or creates) the archive at path.
func NewBoltArchive(path string) (*BoltArchive, error) {
	db, err := bbolt.Open(path, 0600, &bbolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("opening claim archive: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(claimBucket))
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating claim bucket: %w", err)
	}

	return &BoltArchive{db: db}, nil
}

// SaveRecord stores a submitted claim keyed by its claim ID.
func (a *BoltArchive) SaveRecord(record *Record) error {
	return a.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(claimBucket))
		data, err := json.Marshal(record)
		if err != nil {
			return fmt.Errorf("marshaling claim record: %w", err)
		}
		return bucket.Put([]byte(record.Claim.ID), data)
	})
}

// GetRecord retrieves a record by claim ID.
func (a *BoltArchive) GetRecord(claimID string) (*Record, error) {
	var record *Record
	err := a.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(claimBucket))
		data := bucket.Get([]byte(claimID))
		if data == nil {
			return fmt.Errorf("claim not found: %s", claimID)
		}
		return json.Unmarshal(data, &record)
	})
	if err != nil {
		return nil, err
	}
	return record, nil
}

// ListRecords returns all archived records.
func (a *BoltArchive) ListRecords() ([]*Record, error) {
	records := make([]*Record, 0)
	err := a.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(claimBucket))
		return bucket.ForEach(func(k, v []byte) error {
			var record Record
			if err := json.Unmarshal(v, &record); err != nil {
				return fmt.Errorf("unmarshaling claim record: %w", err)
			}
			records = append(records, &record)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return records, nil
}

// Close closes the underlying database.
func (a *BoltArchive) Close() error {
	return a.db.Close()
}
