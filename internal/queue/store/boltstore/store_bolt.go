// Package boltstore provides the durable queue store. BoltDB keeps the
// whole queue in a single file on the device, which is exactly what an
// offline field client needs: no external database process, and every
// mutation is a real transaction that survives app kills.
package boltstore

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	bolt "github.com/boltdb/bolt"

	"multa-gateway/internal/queue"
	"multa-gateway/internal/treasury"
	"multa-gateway/pkg/platform/sentinel"
)

const bucketName = "cola_multas"

// Store implements queue.Store on a Bolt file. Keys are folios; values are
// JSON-encoded queue items. Each mutating method runs inside one db.Update,
// so the read-modify-write is atomic against concurrent drains.
type Store struct {
	db *bolt.DB
}

// Open opens (or creates) the queue file and ensures the bucket exists.
func Open(path string) (*Store, error) {
	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("open queue db: %w", err)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(bucketName))
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("create queue bucket: %w", err)
	}
	return &Store{db: db}, nil
}

// Close releases the file lock.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) Enqueue(_ context.Context, item queue.QueuedViolation) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(bucketName))
		key := []byte(item.Folio())
		if b.Get(key) != nil {
			return fmt.Errorf("%w: folio %s", sentinel.ErrConflict, item.Folio())
		}
		data, err := json.Marshal(item)
		if err != nil {
			return fmt.Errorf("marshal queue item: %w", err)
		}
		return b.Put(key, data)
	})
}

func (s *Store) Get(_ context.Context, folio string) (queue.QueuedViolation, error) {
	var item queue.QueuedViolation
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(bucketName))
		v := b.Get([]byte(folio))
		if v == nil {
			return fmt.Errorf("%w: folio %s", sentinel.ErrNotFound, folio)
		}
		return json.Unmarshal(v, &item)
	})
	return item, err
}

func (s *Store) List(_ context.Context) ([]queue.QueuedViolation, error) {
	var items []queue.QueuedViolation
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(bucketName))
		return b.ForEach(func(_, v []byte) error {
			var item queue.QueuedViolation
			if err := json.Unmarshal(v, &item); err != nil {
				return fmt.Errorf("unmarshal queue item: %w", err)
			}
			items = append(items, item)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	// Bucket iteration is keyed by folio; drain order is by enqueue time.
	sort.Slice(items, func(i, j int) bool {
		return items[i].EnqueuedAt.Before(items[j].EnqueuedAt)
	})
	return items, nil
}

func (s *Store) Transition(_ context.Context, folio string, from, to queue.SubmissionState) error {
	return s.mutate(folio, func(item *queue.QueuedViolation) error {
		if item.State != from {
			return fmt.Errorf("%w: folio %s is %s, expected %s", sentinel.ErrInvalidState, folio, item.State, from)
		}
		item.State = to
		return nil
	})
}

func (s *Store) SetReference(_ context.Context, folio string, ref treasury.PaymentReference) error {
	return s.mutate(folio, func(item *queue.QueuedViolation) error {
		item.Violation.Reference = ref
		return nil
	})
}

func (s *Store) RecordFailure(_ context.Context, folio string, reason string) (int, error) {
	attempts := 0
	err := s.mutate(folio, func(item *queue.QueuedViolation) error {
		item.Attempts++
		item.LastError = reason
		attempts = item.Attempts
		return nil
	})
	return attempts, err
}

func (s *Store) Remove(_ context.Context, folio string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		// Deleting an absent key is a no-op, which is the idempotent
		// behaviour the drain relies on after a crash-redelivered ack.
		return tx.Bucket([]byte(bucketName)).Delete([]byte(folio))
	})
}

func (s *Store) RecoverInFlight(_ context.Context) (int, error) {
	recovered := 0
	err := s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(bucketName))
		return b.ForEach(func(k, v []byte) error {
			var item queue.QueuedViolation
			if err := json.Unmarshal(v, &item); err != nil {
				return fmt.Errorf("unmarshal queue item: %w", err)
			}
			if item.State != queue.StateInFlight {
				return nil
			}
			item.State = queue.StatePending
			data, err := json.Marshal(item)
			if err != nil {
				return fmt.Errorf("marshal queue item: %w", err)
			}
			recovered++
			return b.Put(k, data)
		})
	})
	if err != nil {
		return 0, err
	}
	return recovered, nil
}

// mutate runs one read-modify-write cycle on an item inside a single
// transaction.
func (s *Store) mutate(folio string, fn func(*queue.QueuedViolation) error) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(bucketName))
		key := []byte(folio)
		v := b.Get(key)
		if v == nil {
			return fmt.Errorf("%w: folio %s", sentinel.ErrNotFound, folio)
		}
		var item queue.QueuedViolation
		if err := json.Unmarshal(v, &item); err != nil {
			return fmt.Errorf("unmarshal queue item: %w", err)
		}
		if err := fn(&item); err != nil {
			return err
		}
		data, err := json.Marshal(item)
		if err != nil {
			return fmt.Errorf("marshal queue item: %w", err)
		}
		return b.Put(key, data)
	})
}
