package database

import (
	"context"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/service/dynamodb"
	"github.com/aws/aws-sdk-go/service/dynamodb/dynamodbattribute"
	"github.com/aws/aws-sdk-go/service/dynamodb/dynamodbiface"
	json "github.com/goccy/go-json"

	"github.com/yourusername/resale-pricing/internal/errors"
	"github.com/yourusername/resale-pricing/internal/logger"
	"github.com/yourusername/resale-pricing/internal/quotes"
)

// quoteRecord is the stored form of a quote. The priced body is kept as JSON
// so decimal amounts survive exactly; ttl lets DynamoDB expire the item.
type quoteRecord struct {
	QuoteID   string    `dynamodbav:"quote_id"`
	QuoteType string    `dynamodbav:"quote_type"`
	Currency  string    `dynamodbav:"currency"`
	Total     string    `dynamodbav:"total"`
	Payload   string    `dynamodbav:"payload"`
	CreatedAt time.Time `dynamodbav:"created_at"`
	ExpiresAt time.Time `dynamodbav:"expires_at"`
	TTL       int64     `dynamodbav:"ttl"`
}

// QuoteClient handles quote storage operations
type QuoteClient struct {
	svc       dynamodbiface.DynamoDBAPI
	tableName string
}

// NewQuoteClient creates a new quote database client
func NewQuoteClient(svc dynamodbiface.DynamoDBAPI, tableName string) *QuoteClient {
	return &QuoteClient{
		svc:       svc,
		tableName: tableName,
	}
}

// SaveQuote stores a new quote in DynamoDB
func (c *QuoteClient) SaveQuote(ctx context.Context, quote *quotes.Quote) error {
	payload, err := json.Marshal(quote)
	if err != nil {
		logger.Error("Failed to encode quote", logger.Fields{"error": err.Error()})
		return errors.ErrDatabaseOperation("marshal", err)
	}

	av, err := dynamodbattribute.MarshalMap(quoteRecord{
		QuoteID:   quote.QuoteID,
		QuoteType: string(quote.Type),
		Currency:  quote.Total.Currency,
		Total:     quote.Total.Amount.String(),
		Payload:   string(payload),
		CreatedAt: quote.CreatedAt,
		ExpiresAt: quote.ExpiresAt,
		TTL:       quote.ExpiresAt.Unix(),
	})
	if err != nil {
		logger.Error("Failed to marshal quote", logger.Fields{"error": err.Error()})
		return errors.ErrDatabaseOperation("marshal", err)
	}

	input := &dynamodb.PutItemInput{
		TableName: aws.String(c.tableName),
		Item:      av,
	}

	if _, err := c.svc.PutItemWithContext(ctx, input); err != nil {
		logger.Error("Failed to create quote", logger.Fields{"error": err.Error()})
		return errors.ErrDatabaseOperation("create", err)
	}

	logger.Info("Quote stored", logger.Fields{
		"quote_id":   quote.QuoteID,
		"total":      quote.Total.Amount.String(),
		"expires_at": quote.ExpiresAt,
	})
	return nil
}

// GetQuote retrieves a quote by ID
func (c *QuoteClient) GetQuote(ctx context.Context, quoteID string) (*quotes.Quote, error) {
	input := &dynamodb.GetItemInput{
		TableName: aws.String(c.tableName),
		Key: map[string]*dynamodb.AttributeValue{
			"quote_id": {
				S: aws.String(quoteID),
			},
		},
		ConsistentRead: aws.Bool(true),
	}

	result, err := c.svc.GetItemWithContext(ctx, input)
	if err != nil {
		logger.Error("Failed to get quote", logger.Fields{"error": err.Error(), "quote_id": quoteID})
		return nil, errors.ErrDatabaseOperation("get", err)
	}

	if result.Item == nil {
		return nil, errors.ErrQuoteNotFound(quoteID)
	}

	var rec quoteRecord
	if err := dynamodbattribute.UnmarshalMap(result.Item, &rec); err != nil {
		logger.Error("Failed to unmarshal quote", logger.Fields{"error": err.Error()})
		return nil, errors.ErrDatabaseOperation("unmarshal", err)
	}

	var quote quotes.Quote
	if err := json.Unmarshal([]byte(rec.Payload), &quote); err != nil {
		logger.Error("Failed to decode quote payload", logger.Fields{"error": err.Error(), "quote_id": quoteID})
		return nil, errors.ErrDatabaseOperation("unmarshal", err)
	}

	return &quote, nil
}
