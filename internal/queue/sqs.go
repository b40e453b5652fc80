package queue

import (
	"context"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/sqs"
	"github.com/aws/aws-sdk-go/service/sqs/sqsiface"
	json "github.com/goccy/go-json"

	"github.com/yourusername/resale-pricing/internal/errors"
	"github.com/yourusername/resale-pricing/internal/logger"
	"github.com/yourusername/resale-pricing/internal/models"
)

// maxDelaySeconds is the SQS cap for standard queues.
const maxDelaySeconds = 900

// Client represents an SQS client
type Client struct {
	svc sqsiface.SQSAPI
}

// NewClient creates a new SQS client
func NewClient(region, endpoint string) (*Client, error) {
	cfg := &aws.Config{
		Region: aws.String(region),
	}
	// Override endpoint for local testing
	if endpoint != "" {
		cfg.Endpoint = aws.String(endpoint)
	}

	sess, err := session.NewSession(cfg)
	if err != nil {
		return nil, err
	}

	return &Client{
		svc: sqs.New(sess),
	}, nil
}

// NewClientWithAPI wraps an existing SQS API
func NewClientWithAPI(svc sqsiface.SQSAPI) *Client {
	return &Client{svc: svc}
}

// SendSubmissionJob sends an accepted submission to the queue
func (c *Client) SendSubmissionJob(ctx context.Context, queueURL string, job *models.SubmissionJob) error {
	return c.SendSubmissionJobWithDelay(ctx, queueURL, job, 0)
}

// SendSubmissionJobWithDelay sends an accepted submission to the queue with a delay
func (c *Client) SendSubmissionJobWithDelay(ctx context.Context, queueURL string, job *models.SubmissionJob, delaySeconds int) error {
	body, err := json.Marshal(job)
	if err != nil {
		logger.Error("Failed to marshal submission job", logger.Fields{"error": err.Error()})
		return errors.ErrQueueOperation("marshal", err)
	}

	input := &sqs.SendMessageInput{
		QueueUrl:    aws.String(queueURL),
		MessageBody: aws.String(string(body)),
		MessageAttributes: map[string]*sqs.MessageAttributeValue{
			"SubmissionID": {
				DataType:    aws.String("String"),
				StringValue: aws.String(job.SubmissionID),
			},
			"QuoteType": {
				DataType:    aws.String("String"),
				StringValue: aws.String(job.QuoteType),
			},
			"Currency": {
				DataType:    aws.String("String"),
				StringValue: aws.String(job.Currency),
			},
		},
	}

	if delaySeconds > 0 {
		if delaySeconds > maxDelaySeconds {
			delaySeconds = maxDelaySeconds
		}
		input.DelaySeconds = aws.Int64(int64(delaySeconds))
	}

	result, err := c.svc.SendMessageWithContext(ctx, input)
	if err != nil {
		logger.Error("Failed to send submission job", logger.Fields{
			"error":         err.Error(),
			"submission_id": job.SubmissionID,
			"delay_seconds": delaySeconds,
		})
		return errors.ErrQueueOperation("send", err)
	}

	logger.Info("Submission job sent to queue", logger.Fields{
		"submission_id": job.SubmissionID,
		"message_id":    aws.StringValue(result.MessageId),
		"delay_seconds": delaySeconds,
	})
	return nil
}
