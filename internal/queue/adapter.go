package queue

import (
	"context"

	"github.com/yourusername/resale-pricing/internal/models"
)

// QueueAdapter wraps the SQS client with a known queue URL
type QueueAdapter struct {
	client   *Client
	queueURL string
}

// NewQueueAdapter creates a new queue adapter
func NewQueueAdapter(client *Client, queueURL string) *QueueAdapter {
	return &QueueAdapter{
		client:   client,
		queueURL: queueURL,
	}
}

// EnqueueSubmission hands an accepted submission to the order service
func (qa *QueueAdapter) EnqueueSubmission(ctx context.Context, job *models.SubmissionJob) error {
	return qa.client.SendSubmissionJob(ctx, qa.queueURL, job)
}
