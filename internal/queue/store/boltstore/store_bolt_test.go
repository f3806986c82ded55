package boltstore

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"multa-gateway/internal/folio"
	"multa-gateway/internal/queue"
	"multa-gateway/internal/treasury"
	violationModel "multa-gateway/internal/violation/models"
	"multa-gateway/pkg/platform/sentinel"
)

type BoltStoreSuite struct {
	suite.Suite
	store *Store
	path  string
	base  time.Time
}

func TestBoltStoreSuite(t *testing.T) {
	suite.Run(t, new(BoltStoreSuite))
}

func (s *BoltStoreSuite) SetupTest() {
	s.path = filepath.Join(s.T().TempDir(), "cola-multas.db")
	var err error
	s.store, err = Open(s.path)
	s.Require().NoError(err)
	s.base = time.Date(2024, 7, 15, 8, 0, 0, 0, time.UTC)
}

func (s *BoltStoreSuite) TearDownTest() {
	if s.store != nil {
		s.store.Close()
	}
}

func (s *BoltStoreSuite) newItem(n int) queue.QueuedViolation {
	f := folio.Folio(fmt.Sprintf("042030000%04d1", n))
	return queue.QueuedViolation{
		Violation: violationModel.Violation{
			Folio:       f,
			AmountCents: 50000,
			Concept:     "multa de tránsito",
			Reference: treasury.PaymentReference{
				Code:      "1234-5678-9012-3456-7890",
				ExpiresAt: s.base.Add(30 * 24 * time.Hour),
				Origin:    treasury.OriginLocalFallback,
			},
		},
		EnqueuedAt: s.base.Add(time.Duration(n) * time.Second),
		State:      queue.StatePending,
	}
}

func (s *BoltStoreSuite) TestEnqueueGetRoundTrip() {
	ctx := context.Background()
	item := s.newItem(1)

	s.Require().NoError(s.store.Enqueue(ctx, item))

	got, err := s.store.Get(ctx, item.Folio())
	s.Require().NoError(err)
	s.Equal(item.Folio(), got.Folio())
	s.Equal(item.Violation.Reference.Code, got.Violation.Reference.Code)
	s.Equal(queue.StatePending, got.State)
	s.True(got.EnqueuedAt.Equal(item.EnqueuedAt))

	s.Run("duplicate folio conflicts", func() {
		s.ErrorIs(s.store.Enqueue(ctx, item), sentinel.ErrConflict)
	})
}

func (s *BoltStoreSuite) TestListIsFIFO() {
	ctx := context.Background()
	for _, n := range []int{3, 1, 2} {
		s.Require().NoError(s.store.Enqueue(ctx, s.newItem(n)))
	}

	items, err := s.store.List(ctx)
	s.Require().NoError(err)
	s.Require().Len(items, 3)
	s.True(items[0].EnqueuedAt.Before(items[1].EnqueuedAt))
	s.True(items[1].EnqueuedAt.Before(items[2].EnqueuedAt))
}

func (s *BoltStoreSuite) TestTransitionIsCompareAndSwap() {
	ctx := context.Background()
	item := s.newItem(1)
	s.Require().NoError(s.store.Enqueue(ctx, item))

	s.Require().NoError(s.store.Transition(ctx, item.Folio(), queue.StatePending, queue.StateInFlight))
	s.ErrorIs(
		s.store.Transition(ctx, item.Folio(), queue.StatePending, queue.StateInFlight),
		sentinel.ErrInvalidState,
	)
	s.ErrorIs(
		s.store.Transition(ctx, "no-such-folio", queue.StatePending, queue.StateInFlight),
		sentinel.ErrNotFound,
	)
}

func (s *BoltStoreSuite) TestMutationsPersist() {
	ctx := context.Background()
	item := s.newItem(1)
	s.Require().NoError(s.store.Enqueue(ctx, item))

	remote := treasury.PaymentReference{
		Code:        "978200000123456789",
		AmountCents: 50000,
		Origin:      treasury.OriginRemote,
	}
	s.Require().NoError(s.store.SetReference(ctx, item.Folio(), remote))

	attempts, err := s.store.RecordFailure(ctx, item.Folio(), "backend 503")
	s.Require().NoError(err)
	s.Equal(1, attempts)

	got, err := s.store.Get(ctx, item.Folio())
	s.Require().NoError(err)
	s.Equal(remote.Code, got.Violation.Reference.Code)
	s.Equal(treasury.OriginRemote, got.Violation.Reference.Origin)
	s.Equal(1, got.Attempts)
	s.Equal("backend 503", got.LastError)
	s.Equal(item.Folio(), got.Folio(), "mutations never touch the folio")
}

func (s *BoltStoreSuite) TestRemoveIsIdempotent() {
	ctx := context.Background()
	item := s.newItem(1)
	s.Require().NoError(s.store.Enqueue(ctx, item))

	s.Require().NoError(s.store.Remove(ctx, item.Folio()))
	s.Require().NoError(s.store.Remove(ctx, item.Folio()))

	_, err := s.store.Get(ctx, item.Folio())
	s.ErrorIs(err, sentinel.ErrNotFound)
}

// The queue's durability promise: items and their state survive a process
// restart, and whatever was mid-submission comes back as pending.
func (s *BoltStoreSuite) TestSurvivesReopen() {
	ctx := context.Background()
	stranded := s.newItem(1)
	waiting := s.newItem(2)
	s.Require().NoError(s.store.Enqueue(ctx, stranded))
	s.Require().NoError(s.store.Enqueue(ctx, waiting))
	s.Require().NoError(s.store.Transition(ctx, stranded.Folio(), queue.StatePending, queue.StateInFlight))

	s.Require().NoError(s.store.Close())

	reopened, err := Open(s.path)
	s.Require().NoError(err)
	s.store = reopened

	recovered, err := s.store.RecoverInFlight(ctx)
	s.Require().NoError(err)
	s.Equal(1, recovered)

	items, err := s.store.List(ctx)
	s.Require().NoError(err)
	s.Require().Len(items, 2)
	for _, it := range items {
		s.Equal(queue.StatePending, it.State)
	}
}
