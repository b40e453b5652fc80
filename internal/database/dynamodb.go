package database

import (
	"context"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/dynamodb"
	"github.com/aws/aws-sdk-go/service/dynamodb/dynamodbattribute"
	"github.com/aws/aws-sdk-go/service/dynamodb/dynamodbiface"
	"github.com/aws/aws-sdk-go/service/dynamodb/expression"

	"github.com/yourusername/resale-pricing/internal/errors"
	"github.com/yourusername/resale-pricing/internal/logger"
	"github.com/yourusername/resale-pricing/internal/models"
)

// idempotencyLockPrefix marks the item that reserves an idempotency key. It
// lives in the submissions table beside the submission it points to.
const idempotencyLockPrefix = "idempotency#"

// idempotencyLock reserves an idempotency key for one submission.
type idempotencyLock struct {
	SubmissionID string    `dynamodbav:"submission_id"`
	LockFor      string    `dynamodbav:"lock_for"`
	CreatedAt    time.Time `dynamodbav:"created_at"`
}

func lockID(idempotencyKey string) string {
	return idempotencyLockPrefix + idempotencyKey
}

// NewDynamoDB creates a DynamoDB API client. endpoint overrides the AWS
// endpoint for local testing.
func NewDynamoDB(region, endpoint string) (dynamodbiface.DynamoDBAPI, error) {
	cfg := &aws.Config{
		Region: aws.String(region),
	}
	if endpoint != "" {
		cfg.Endpoint = aws.String(endpoint)
	}

	sess, err := session.NewSession(cfg)
	if err != nil {
		return nil, err
	}
	return dynamodb.New(sess), nil
}

// SubmissionClient stores quote submissions
type SubmissionClient struct {
	svc       dynamodbiface.DynamoDBAPI
	tableName string
}

// NewSubmissionClient creates a submission client over svc
func NewSubmissionClient(svc dynamodbiface.DynamoDBAPI, tableName string) *SubmissionClient {
	return &SubmissionClient{
		svc:       svc,
		tableName: tableName,
	}
}

// CreateSubmission writes sub and the lock on its idempotency key in one
// transaction. Either item already existing fails the whole write as a
// duplicate, so two requests racing on one key cannot both be accepted.
func (c *SubmissionClient) CreateSubmission(ctx context.Context, sub *models.Submission) error {
	av, err := dynamodbattribute.MarshalMap(sub)
	if err != nil {
		logger.Error("Failed to marshal submission", logger.Fields{"error": err.Error()})
		return errors.ErrDatabaseOperation("marshal", err)
	}
	lock, err := dynamodbattribute.MarshalMap(idempotencyLock{
		SubmissionID: lockID(sub.IdempotencyKey),
		LockFor:      sub.SubmissionID,
		CreatedAt:    sub.CreatedAt,
	})
	if err != nil {
		logger.Error("Failed to marshal idempotency lock", logger.Fields{"error": err.Error()})
		return errors.ErrDatabaseOperation("marshal", err)
	}

	notExists := aws.String("attribute_not_exists(submission_id)")
	input := &dynamodb.TransactWriteItemsInput{
		TransactItems: []*dynamodb.TransactWriteItem{
			{Put: &dynamodb.Put{TableName: aws.String(c.tableName), Item: lock, ConditionExpression: notExists}},
			{Put: &dynamodb.Put{TableName: aws.String(c.tableName), Item: av, ConditionExpression: notExists}},
		},
	}

	if _, err := c.svc.TransactWriteItemsWithContext(ctx, input); err != nil {
		if conditionFailed(err) {
			return errors.ErrDuplicateRequest(sub.IdempotencyKey)
		}
		logger.Error("Failed to create submission", logger.Fields{"error": err.Error()})
		return errors.ErrDatabaseOperation("create", err)
	}

	logger.Info("Submission created", logger.Fields{
		"submission_id":   sub.SubmissionID,
		"idempotency_key": sub.IdempotencyKey,
		"quote_id":        sub.QuoteID,
	})
	return nil
}

// conditionFailed reports whether a transaction was cancelled by a failed
// condition check.
func conditionFailed(err error) bool {
	canceled, ok := err.(*dynamodb.TransactionCanceledException)
	if !ok {
		return false
	}
	for _, reason := range canceled.CancellationReasons {
		if reason != nil && aws.StringValue(reason.Code) == "ConditionalCheckFailed" {
			return true
		}
	}
	return false
}

// GetSubmission retrieves a submission by its ID
func (c *SubmissionClient) GetSubmission(ctx context.Context, submissionID string) (*models.Submission, error) {
	if strings.HasPrefix(submissionID, idempotencyLockPrefix) {
		return nil, errors.ErrSubmissionNotFound(submissionID)
	}

	item, err := c.getItem(ctx, submissionID)
	if err != nil {
		logger.Error("Failed to get submission", logger.Fields{"error": err.Error(), "submission_id": submissionID})
		return nil, errors.ErrDatabaseOperation("get", err)
	}
	if item == nil {
		return nil, errors.ErrSubmissionNotFound(submissionID)
	}

	var sub models.Submission
	if err := dynamodbattribute.UnmarshalMap(item, &sub); err != nil {
		logger.Error("Failed to unmarshal submission", logger.Fields{"error": err.Error()})
		return nil, errors.ErrDatabaseOperation("unmarshal", err)
	}

	return &sub, nil
}

// GetSubmissionByIdempotencyKey follows the key's lock to its submission.
// It returns nil without error when the key was never used.
func (c *SubmissionClient) GetSubmissionByIdempotencyKey(ctx context.Context, idempotencyKey string) (*models.Submission, error) {
	item, err := c.getItem(ctx, lockID(idempotencyKey))
	if err != nil {
		logger.Error("Failed to get idempotency lock", logger.Fields{"error": err.Error()})
		return nil, errors.ErrDatabaseOperation("get", err)
	}
	if item == nil {
		return nil, nil // Not found, but not an error
	}

	var lock idempotencyLock
	if err := dynamodbattribute.UnmarshalMap(item, &lock); err != nil {
		logger.Error("Failed to unmarshal idempotency lock", logger.Fields{"error": err.Error()})
		return nil, errors.ErrDatabaseOperation("unmarshal", err)
	}
	return c.GetSubmission(ctx, lock.LockFor)
}

func (c *SubmissionClient) getItem(ctx context.Context, id string) (map[string]*dynamodb.AttributeValue, error) {
	result, err := c.svc.GetItemWithContext(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(c.tableName),
		Key: map[string]*dynamodb.AttributeValue{
			"submission_id": {
				S: aws.String(id),
			},
		},
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return nil, err
	}
	return result.Item, nil
}

// UpdateSubmissionStatus updates the status of a submission
func (c *SubmissionClient) UpdateSubmissionStatus(ctx context.Context, submissionID string, status models.SubmissionStatus, errorMsg string) error {
	update := expression.Set(expression.Name("status"), expression.Value(status)).
		Set(expression.Name("updated_at"), expression.Value(time.Now().UTC()))

	if errorMsg != "" {
		update = update.Set(expression.Name("error_message"), expression.Value(errorMsg))
	}

	expr, err := expression.NewBuilder().WithUpdate(update).Build()
	if err != nil {
		logger.Error("Failed to build update expression", logger.Fields{"error": err.Error()})
		return errors.ErrDatabaseOperation("build_expression", err)
	}

	input := &dynamodb.UpdateItemInput{
		TableName: aws.String(c.tableName),
		Key: map[string]*dynamodb.AttributeValue{
			"submission_id": {
				S: aws.String(submissionID),
			},
		},
		UpdateExpression:          expr.Update(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	}

	if _, err := c.svc.UpdateItemWithContext(ctx, input); err != nil {
		logger.Error("Failed to update submission status", logger.Fields{
			"error":         err.Error(),
			"submission_id": submissionID,
			"status":        status,
		})
		return errors.ErrDatabaseOperation("update", err)
	}

	logger.Info("Submission status updated", logger.Fields{
		"submission_id": submissionID,
		"status":        status,
	})
	return nil
}
