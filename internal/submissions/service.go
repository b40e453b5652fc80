// Package submissions records a client accepting a quote and hands it to the
// order service, which creates the authoritative OfferList or Transaction.
package submissions

import (
	"context"
	"fmt"
	"time"

	json "github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/yourusername/resale-pricing/internal/errors"
	"github.com/yourusername/resale-pricing/internal/logger"
	"github.com/yourusername/resale-pricing/internal/models"
	"github.com/yourusername/resale-pricing/internal/quotes"
	"github.com/yourusername/resale-pricing/internal/validator"
)

// Store persists submissions.
type Store interface {
	CreateSubmission(ctx context.Context, sub *models.Submission) error
	GetSubmission(ctx context.Context, submissionID string) (*models.Submission, error)
	GetSubmissionByIdempotencyKey(ctx context.Context, idempotencyKey string) (*models.Submission, error)
	UpdateSubmissionStatus(ctx context.Context, submissionID string, status models.SubmissionStatus, errorMsg string) error
}

// Publisher delivers accepted submissions to the order service.
type Publisher interface {
	EnqueueSubmission(ctx context.Context, job *models.SubmissionJob) error
}

// QuoteSource returns an unexpired quote.
type QuoteSource interface {
	Get(ctx context.Context, quoteID string) (*quotes.Quote, error)
}

// Service accepts quotes.
type Service struct {
	store     Store
	publisher Publisher
	quotes    QuoteSource
	now       func() time.Time
}

// NewService creates a submission service.
func NewService(store Store, publisher Publisher, quotes QuoteSource) *Service {
	return &Service{
		store:     store,
		publisher: publisher,
		quotes:    quotes,
		now:       time.Now,
	}
}

// Accept records the acceptance of req.QuoteID under idempotencyKey and
// queues it. A key that was already used is rejected as a duplicate; a quote
// that is unknown or expired, or whose promocode was rejected, cannot be
// accepted. The store enforces key uniqueness when two requests race past the
// lookup.
func (s *Service) Accept(ctx context.Context, idempotencyKey string, req *models.SubmissionRequest) (*models.SubmissionResponse, error) {
	log := logger.WithContext(ctx)

	if err := validator.ValidateIdempotencyKey(idempotencyKey); err != nil {
		return nil, err
	}
	if err := validator.Struct(req); err != nil {
		return nil, err
	}

	existing, err := s.store.GetSubmissionByIdempotencyKey(ctx, idempotencyKey)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		log.Warn("Duplicate idempotency key", logger.Fields{
			"idempotency_key": idempotencyKey,
			"submission_id":   existing.SubmissionID,
		})
		return nil, errors.ErrDuplicateRequest(idempotencyKey)
	}

	quote, err := s.quotes.Get(ctx, req.QuoteID)
	if err != nil {
		return nil, err
	}
	// The buyer expected the code's discount; they clear it and re-quote.
	if b := quote.Breakdown; b != nil && b.PromocodeRejection != nil {
		return nil, errors.ErrPromocodeRejected(b.PromocodeRejection.Code, b.PromocodeRejection.Reason)
	}

	payload, err := json.Marshal(quote)
	if err != nil {
		return nil, errors.ErrInternalServer("Failed to encode quote", err)
	}

	now := s.now().UTC()
	sub := &models.Submission{
		SubmissionID:   fmt.Sprintf("sub_%s", uuid.New().String()),
		IdempotencyKey: idempotencyKey,
		QuoteID:        quote.QuoteID,
		QuoteType:      string(quote.Type),
		UserID:         req.UserID,
		Total:          quote.Total.Amount.String(),
		Currency:       quote.Total.Currency,
		Status:         models.StatusAccepted,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := s.store.CreateSubmission(ctx, sub); err != nil {
		return nil, err
	}

	job := &models.SubmissionJob{
		SubmissionID: sub.SubmissionID,
		QuoteID:      sub.QuoteID,
		QuoteType:    sub.QuoteType,
		UserID:       sub.UserID,
		Total:        sub.Total,
		Currency:     sub.Currency,
		Payload:      string(payload),
	}
	if err := s.publisher.EnqueueSubmission(ctx, job); err != nil {
		// The submission exists but was never handed off; record that so the
		// client can retry with a new key.
		if updErr := s.store.UpdateSubmissionStatus(ctx, sub.SubmissionID, models.StatusFailed, err.Error()); updErr != nil {
			log.Error("Failed to mark submission failed", logger.Fields{
				"error":         updErr.Error(),
				"submission_id": sub.SubmissionID,
			})
		}
		return nil, err
	}

	if err := s.store.UpdateSubmissionStatus(ctx, sub.SubmissionID, models.StatusQueued, ""); err != nil {
		return nil, err
	}

	log.Info("Submission accepted", logger.Fields{
		"submission_id":   sub.SubmissionID,
		"quote_id":        sub.QuoteID,
		"idempotency_key": idempotencyKey,
	})

	return &models.SubmissionResponse{
		SubmissionID: sub.SubmissionID,
		QuoteID:      sub.QuoteID,
		Status:       models.StatusQueued,
		Message:      "Submission accepted for processing",
	}, nil
}

// Get returns a stored submission.
func (s *Service) Get(ctx context.Context, submissionID string) (*models.Submission, error) {
	return s.store.GetSubmission(ctx, submissionID)
}
