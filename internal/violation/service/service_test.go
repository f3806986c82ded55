package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"multa-gateway/internal/folio"
	"multa-gateway/internal/treasury"
	violationModel "multa-gateway/internal/violation/models"
	dErrors "multa-gateway/pkg/domain-errors"
	"multa-gateway/pkg/platform/sentinel"
)

type fakeBackend struct {
	reachable   bool
	submitErr   error
	result      *violationModel.SubmitResult
	submitted   []violationModel.Violation
	probeCalled bool
}

func (f *fakeBackend) Submit(_ context.Context, v violationModel.Violation) (*violationModel.SubmitResult, error) {
	f.submitted = append(f.submitted, v)
	if f.submitErr != nil {
		return nil, f.submitErr
	}
	if f.result != nil {
		return f.result, nil
	}
	return &violationModel.SubmitResult{Folio: v.Folio.String()}, nil
}

func (f *fakeBackend) Reachable(context.Context) bool {
	f.probeCalled = true
	return f.reachable
}

type fakeIssuer struct {
	origin treasury.Origin
	issued []folio.Folio
}

func (f *fakeIssuer) Issue(_ context.Context, fol folio.Folio, amountCents int64, _ string) treasury.PaymentReference {
	f.issued = append(f.issued, fol)
	code := "978200000123456789"
	if f.origin == treasury.OriginLocalFallback {
		code = "1234-5678-9012-3456-7890"
	}
	return treasury.PaymentReference{
		Code:        code,
		AmountCents: amountCents,
		Origin:      f.origin,
	}
}

type fakeQueue struct {
	enqueued []violationModel.Violation
	err      error
}

func (f *fakeQueue) Enqueue(_ context.Context, v violationModel.Violation, _ time.Time) error {
	if f.err != nil {
		return f.err
	}
	f.enqueued = append(f.enqueued, v)
	return nil
}

type FinalizeSuite struct {
	suite.Suite
	backend *fakeBackend
	issuer  *fakeIssuer
	queue   *fakeQueue
	now     time.Time
}

func TestFinalizeSuite(t *testing.T) {
	suite.Run(t, new(FinalizeSuite))
}

func (s *FinalizeSuite) SetupTest() {
	s.backend = &fakeBackend{reachable: true}
	s.issuer = &fakeIssuer{origin: treasury.OriginRemote}
	s.queue = &fakeQueue{}
	s.now = time.Date(2024, 7, 15, 12, 30, 0, 0, time.UTC)
}

func (s *FinalizeSuite) newService() *Service {
	svc, err := New(
		folio.New(folio.DefaultCatalog()),
		s.issuer,
		s.queue,
		s.backend,
		WithClock(func() time.Time { return s.now }),
	)
	s.Require().NoError(err)
	return svc
}

func intPtr(n int) *int { return &n }

func validInput() FinalizeInput {
	return FinalizeInput{
		InfractionTypeID: "semaforo",
		AgentID:          intPtr(42),
		Plate:            "ABC-123-D",
		Vehicle:          "sedán gris",
		Location:         "Av. Juárez y 5 de Mayo",
		Concept:          "multa de tránsito",
		AmountCents:      125000,
	}
}

func (s *FinalizeSuite) TestInputValidation() {
	svc := s.newService()
	ctx := context.Background()

	s.Run("zero amount", func() {
		in := validInput()
		in.AmountCents = 0
		_, err := svc.Finalize(ctx, in)
		s.True(dErrors.HasCode(err, dErrors.CodeBadRequest))
	})

	s.Run("negative amount", func() {
		in := validInput()
		in.AmountCents = -100
		_, err := svc.Finalize(ctx, in)
		s.True(dErrors.HasCode(err, dErrors.CodeBadRequest))
	})

	s.Run("missing concept", func() {
		in := validInput()
		in.Concept = ""
		_, err := svc.Finalize(ctx, in)
		s.True(dErrors.HasCode(err, dErrors.CodeBadRequest))
	})

	s.Run("missing plate", func() {
		in := validInput()
		in.Plate = ""
		_, err := svc.Finalize(ctx, in)
		s.True(dErrors.HasCode(err, dErrors.CodeBadRequest))
	})

	s.Run("validation happens before any side effect", func() {
		s.Empty(s.issuer.issued)
		s.Empty(s.backend.submitted)
		s.Empty(s.queue.enqueued)
	})
}

func (s *FinalizeSuite) TestOnlineSubmission() {
	svc := s.newService()

	result, err := svc.Finalize(context.Background(), validInput())
	s.Require().NoError(err)

	s.Run("disposition is submitted", func() {
		s.Equal(DispositionSubmitted, result.Disposition)
		s.Empty(s.queue.enqueued)
	})

	s.Run("folio is the short online shape", func() {
		s.Len(result.Violation.Folio.String(), 11)
		s.Equal(folio.ModeOnline, result.Violation.Folio.Mode())
		s.True(result.Violation.Folio.Valid())
	})

	s.Run("reference issued before submission", func() {
		s.Require().Len(s.issuer.issued, 1)
		s.Equal(result.Violation.Folio, s.issuer.issued[0])
		s.Require().Len(s.backend.submitted, 1)
		s.Equal(result.Violation.Folio, s.backend.submitted[0].Folio)
		s.NotEmpty(s.backend.submitted[0].Reference.Code)
	})

	s.Run("day-zero discount is 50 percent", func() {
		s.Require().NotNil(result.Discount)
		s.Equal(50, result.Discount.Percentage)
	})
}

func (s *FinalizeSuite) TestOfflineGoesToQueue() {
	s.backend.reachable = false
	s.issuer.origin = treasury.OriginLocalFallback
	svc := s.newService()

	result, err := svc.Finalize(context.Background(), validInput())
	s.Require().NoError(err)

	s.Equal(DispositionQueued, result.Disposition)
	s.Empty(s.backend.submitted, "no submission is attempted offline")
	s.Require().Len(s.queue.enqueued, 1)

	s.Run("folio is the long offline shape", func() {
		s.Len(result.Violation.Folio.String(), 14)
		s.Equal(folio.ModeOffline, result.Violation.Folio.Mode())
		s.True(result.Violation.Folio.Valid())
	})

	s.Run("queued item carries the provisional reference", func() {
		s.Equal(treasury.OriginLocalFallback, s.queue.enqueued[0].Reference.Origin)
		s.Equal(result.Violation.Folio, s.queue.enqueued[0].Folio)
	})
}

func (s *FinalizeSuite) TestSubmitFailureDegradesToQueue() {
	s.backend.submitErr = fmt.Errorf("%w: backend 503", sentinel.ErrUnavailable)
	svc := s.newService()

	result, err := svc.Finalize(context.Background(), validInput())
	s.Require().NoError(err, "a failed submission is not the agent's problem")

	s.Equal(DispositionQueued, result.Disposition)
	s.Require().Len(s.queue.enqueued, 1)
	// Mode was chosen by the probe, so the folio keeps the online shape even
	// though the item ended up queued.
	s.Len(result.Violation.Folio.String(), 11)
}

func (s *FinalizeSuite) TestBackendReferenceAdoptedOverFallback() {
	s.issuer.origin = treasury.OriginLocalFallback
	remote := treasury.PaymentReference{
		Code:   "978200000999999999",
		Origin: treasury.OriginRemote,
	}
	s.backend.result = &violationModel.SubmitResult{Reference: &remote}
	svc := s.newService()

	result, err := svc.Finalize(context.Background(), validInput())
	s.Require().NoError(err)

	s.Equal(DispositionSubmitted, result.Disposition)
	s.Equal(remote.Code, result.Violation.Reference.Code)
	s.Equal(treasury.OriginRemote, result.Violation.Reference.Origin)
}

func (s *FinalizeSuite) TestOwnRemoteReferenceIsKept() {
	other := treasury.PaymentReference{Code: "978200000111111111", Origin: treasury.OriginRemote}
	s.backend.result = &violationModel.SubmitResult{Reference: &other}
	svc := s.newService()

	result, err := svc.Finalize(context.Background(), validInput())
	s.Require().NoError(err)

	// The issuer already produced a real treasury reference; the backend's
	// echo does not replace it.
	s.Equal("978200000123456789", result.Violation.Reference.Code)
}

func (s *FinalizeSuite) TestQueueFailureSurfaces() {
	s.backend.reachable = false
	s.queue.err = fmt.Errorf("disk full")
	svc := s.newService()

	_, err := svc.Finalize(context.Background(), validInput())
	s.True(dErrors.HasCode(err, dErrors.CodeInternal))
}
