package models

import "time"

// SubmissionStatus is the hand-off state of an accepted quote
type SubmissionStatus string

const (
	StatusAccepted SubmissionStatus = "ACCEPTED"
	StatusQueued   SubmissionStatus = "QUEUED"
	StatusFailed   SubmissionStatus = "FAILED"
)

// Submission records a client accepting a quote. Amounts are decimal strings.
type Submission struct {
	SubmissionID   string           `json:"submission_id" dynamodbav:"submission_id"`
	IdempotencyKey string           `json:"idempotency_key" dynamodbav:"idempotency_key"`
	QuoteID        string           `json:"quote_id" dynamodbav:"quote_id"`
	QuoteType      string           `json:"quote_type" dynamodbav:"quote_type"`
	UserID         int64            `json:"user_id" dynamodbav:"user_id"`
	Total          string           `json:"total" dynamodbav:"total"`
	Currency       string           `json:"currency" dynamodbav:"currency"`
	Status         SubmissionStatus `json:"status" dynamodbav:"status"`
	ErrorMessage   string           `json:"error_message,omitempty" dynamodbav:"error_message,omitempty"`
	CreatedAt      time.Time        `json:"created_at" dynamodbav:"created_at"`
	UpdatedAt      time.Time        `json:"updated_at" dynamodbav:"updated_at"`
}

// SubmissionRequest is the POST /submissions body
type SubmissionRequest struct {
	QuoteID string `json:"quote_id" validate:"required,max=64"`
	UserID  int64  `json:"user_id" validate:"required,gt=0"`
}

// SubmissionResponse is returned once a submission is accepted
type SubmissionResponse struct {
	SubmissionID string           `json:"submission_id"`
	QuoteID      string           `json:"quote_id"`
	Status       SubmissionStatus `json:"status"`
	Message      string           `json:"message"`
}

// SubmissionJob is the SQS message the order service consumes
type SubmissionJob struct {
	SubmissionID string `json:"submission_id"`
	QuoteID      string `json:"quote_id"`
	QuoteType    string `json:"quote_type"`
	UserID       int64  `json:"user_id"`
	Total        string `json:"total"`
	Currency     string `json:"currency"`
	// Payload is the quote body exactly as it was priced.
	Payload string `json:"payload"`
}
