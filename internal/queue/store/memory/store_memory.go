// Package memory provides the in-memory queue store used in tests and in
// ephemeral runs where losing the queue on restart is acceptable.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"multa-gateway/internal/queue"
	"multa-gateway/internal/treasury"
	"multa-gateway/pkg/platform/sentinel"
)

// Store implements queue.Store with a mutex-guarded map. All mutations are
// read-modify-write under one lock, matching the atomicity the durable
// store provides via transactions.
type Store struct {
	mu    sync.RWMutex
	items map[string]queue.QueuedViolation
}

// New creates an empty in-memory store.
func New() *Store {
	return &Store{items: make(map[string]queue.QueuedViolation)}
}

func (s *Store) Enqueue(_ context.Context, item queue.QueuedViolation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	folio := item.Folio()
	if _, exists := s.items[folio]; exists {
		return fmt.Errorf("%w: folio %s", sentinel.ErrConflict, folio)
	}
	s.items[folio] = item
	return nil
}

func (s *Store) Get(_ context.Context, folio string) (queue.QueuedViolation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	item, ok := s.items[folio]
	if !ok {
		return queue.QueuedViolation{}, fmt.Errorf("%w: folio %s", sentinel.ErrNotFound, folio)
	}
	return item, nil
}

func (s *Store) List(_ context.Context) ([]queue.QueuedViolation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	items := make([]queue.QueuedViolation, 0, len(s.items))
	for _, item := range s.items {
		items = append(items, item)
	}
	sort.Slice(items, func(i, j int) bool {
		return items[i].EnqueuedAt.Before(items[j].EnqueuedAt)
	})
	return items, nil
}

func (s *Store) Transition(_ context.Context, folio string, from, to queue.SubmissionState) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	item, ok := s.items[folio]
	if !ok {
		return fmt.Errorf("%w: folio %s", sentinel.ErrNotFound, folio)
	}
	if item.State != from {
		return fmt.Errorf("%w: folio %s is %s, expected %s", sentinel.ErrInvalidState, folio, item.State, from)
	}
	item.State = to
	s.items[folio] = item
	return nil
}

func (s *Store) SetReference(_ context.Context, folio string, ref treasury.PaymentReference) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	item, ok := s.items[folio]
	if !ok {
		return fmt.Errorf("%w: folio %s", sentinel.ErrNotFound, folio)
	}
	item.Violation.Reference = ref
	s.items[folio] = item
	return nil
}

func (s *Store) RecordFailure(_ context.Context, folio string, reason string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	item, ok := s.items[folio]
	if !ok {
		return 0, fmt.Errorf("%w: folio %s", sentinel.ErrNotFound, folio)
	}
	item.Attempts++
	item.LastError = reason
	s.items[folio] = item
	return item.Attempts, nil
}

func (s *Store) Remove(_ context.Context, folio string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.items, folio)
	return nil
}

func (s *Store) RecoverInFlight(_ context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	recovered := 0
	for folio, item := range s.items {
		if item.State == queue.StateInFlight {
			item.State = queue.StatePending
			s.items[folio] = item
			recovered++
		}
	}
	return recovered, nil
}
