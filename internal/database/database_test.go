package database

import (
	"context"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/request"
	"github.com/aws/aws-sdk-go/service/dynamodb"
	"github.com/aws/aws-sdk-go/service/dynamodb/dynamodbiface"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/resale-pricing/internal/errors"
	"github.com/yourusername/resale-pricing/internal/models"
	"github.com/yourusername/resale-pricing/internal/money"
	"github.com/yourusername/resale-pricing/internal/pricing"
	"github.com/yourusername/resale-pricing/internal/quotes"
)

// fakeDynamo keeps items in memory, keyed by the given hash key attribute.
type fakeDynamo struct {
	dynamodbiface.DynamoDBAPI
	hashKey string
	items   map[string]map[string]*dynamodb.AttributeValue

	lastTransact *dynamodb.TransactWriteItemsInput
	lastUpdate   *dynamodb.UpdateItemInput
}

func newFakeDynamo(hashKey string) *fakeDynamo {
	return &fakeDynamo{hashKey: hashKey, items: make(map[string]map[string]*dynamodb.AttributeValue)}
}

func (f *fakeDynamo) PutItemWithContext(_ aws.Context, in *dynamodb.PutItemInput, _ ...request.Option) (*dynamodb.PutItemOutput, error) {
	key := aws.StringValue(in.Item[f.hashKey].S)
	if in.ConditionExpression != nil {
		if _, exists := f.items[key]; exists {
			return nil, &dynamodb.ConditionalCheckFailedException{}
		}
	}
	f.items[key] = in.Item
	return &dynamodb.PutItemOutput{}, nil
}

func (f *fakeDynamo) GetItemWithContext(_ aws.Context, in *dynamodb.GetItemInput, _ ...request.Option) (*dynamodb.GetItemOutput, error) {
	return &dynamodb.GetItemOutput{Item: f.items[aws.StringValue(in.Key[f.hashKey].S)]}, nil
}

// TransactWriteItemsWithContext applies the puts only if every condition holds.
func (f *fakeDynamo) TransactWriteItemsWithContext(_ aws.Context, in *dynamodb.TransactWriteItemsInput, _ ...request.Option) (*dynamodb.TransactWriteItemsOutput, error) {
	f.lastTransact = in
	reasons := make([]*dynamodb.CancellationReason, len(in.TransactItems))
	failed := false
	for i, item := range in.TransactItems {
		reasons[i] = &dynamodb.CancellationReason{Code: aws.String("None")}
		key := aws.StringValue(item.Put.Item[f.hashKey].S)
		if _, exists := f.items[key]; exists && item.Put.ConditionExpression != nil {
			reasons[i].Code = aws.String("ConditionalCheckFailed")
			failed = true
		}
	}
	if failed {
		return nil, &dynamodb.TransactionCanceledException{CancellationReasons: reasons}
	}
	for _, item := range in.TransactItems {
		f.items[aws.StringValue(item.Put.Item[f.hashKey].S)] = item.Put.Item
	}
	return &dynamodb.TransactWriteItemsOutput{}, nil
}

func (f *fakeDynamo) UpdateItemWithContext(_ aws.Context, in *dynamodb.UpdateItemInput, _ ...request.Option) (*dynamodb.UpdateItemOutput, error) {
	f.lastUpdate = in
	return &dynamodb.UpdateItemOutput{}, nil
}

func TestQuoteClient_RoundTrip(t *testing.T) {
	fake := newFakeDynamo("quote_id")
	client := NewQuoteClient(fake, "quotes")

	created := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	q := &quotes.Quote{
		QuoteID: "quote_1",
		Type:    quotes.TypeSell,
		Total:   money.New(decimal.RequireFromString("891.58"), "SGD"),
		Breakdown: &pricing.Breakdown{
			Kind:  pricing.KindSell,
			Price: decimal.NewFromInt(1000),
			Lines: []pricing.Line{
				{Kind: pricing.LinePrice, Amount: decimal.NewFromInt(1000)},
				{Kind: pricing.LineSellingFee, Amount: decimal.NewFromInt(-60)},
			},
			Total: decimal.RequireFromString("891.58"),
		},
		CreatedAt: created,
		ExpiresAt: created.Add(5 * time.Minute),
	}

	require.NoError(t, client.SaveQuote(context.Background(), q))

	item := fake.items["quote_1"]
	require.NotNil(t, item)
	assert.Equal(t, "891.58", aws.StringValue(item["total"].S))
	assert.Equal(t, "1717243500", aws.StringValue(item["ttl"].N))

	got, err := client.GetQuote(context.Background(), "quote_1")
	require.NoError(t, err)
	assert.Equal(t, quotes.TypeSell, got.Type)
	assert.Equal(t, "SGD", got.Total.Currency)
	assert.True(t, q.Total.Amount.Equal(got.Total.Amount))
	require.NotNil(t, got.Breakdown)
	assert.True(t, decimal.NewFromInt(-60).Equal(got.Breakdown.Line(pricing.LineSellingFee)))
	assert.True(t, q.ExpiresAt.Equal(got.ExpiresAt))
}

func TestQuoteClient_NotFound(t *testing.T) {
	client := NewQuoteClient(newFakeDynamo("quote_id"), "quotes")

	_, err := client.GetQuote(context.Background(), "missing")
	assert.True(t, errors.HasCode(err, errors.CodeQuoteNotFound))
}

func TestSubmissionClient(t *testing.T) {
	fake := newFakeDynamo("submission_id")
	client := NewSubmissionClient(fake, "submissions")
	ctx := context.Background()

	sub := &models.Submission{
		SubmissionID:   "sub_1",
		IdempotencyKey: "idem-key-0001",
		QuoteID:        "quote_1",
		Status:         models.StatusAccepted,
	}
	require.NoError(t, client.CreateSubmission(ctx, sub))
	require.Len(t, fake.lastTransact.TransactItems, 2)
	assert.Contains(t, fake.items, "idempotency#idem-key-0001")

	err := client.CreateSubmission(ctx, sub)
	assert.True(t, errors.HasCode(err, errors.CodeDuplicateRequest))

	got, err := client.GetSubmission(ctx, "sub_1")
	require.NoError(t, err)
	assert.Equal(t, "quote_1", got.QuoteID)

	_, err = client.GetSubmission(ctx, "sub_2")
	assert.True(t, errors.HasCode(err, errors.CodeSubmissionNotFound))

	_, err = client.GetSubmission(ctx, "idempotency#idem-key-0001")
	assert.True(t, errors.HasCode(err, errors.CodeSubmissionNotFound), "lock items are not submissions")

	byKey, err := client.GetSubmissionByIdempotencyKey(ctx, "idem-key-0001")
	require.NoError(t, err)
	require.NotNil(t, byKey)
	assert.Equal(t, "sub_1", byKey.SubmissionID)

	none, err := client.GetSubmissionByIdempotencyKey(ctx, "idem-key-9999")
	require.NoError(t, err)
	assert.Nil(t, none)

	require.NoError(t, client.UpdateSubmissionStatus(ctx, "sub_1", models.StatusQueued, ""))
	assert.Equal(t, "sub_1", aws.StringValue(fake.lastUpdate.Key["submission_id"].S))
	assert.Contains(t, aws.StringValue(fake.lastUpdate.UpdateExpression), "SET")
}

func TestSubmissionClient_KeyReservedAcrossSubmissions(t *testing.T) {
	fake := newFakeDynamo("submission_id")
	client := NewSubmissionClient(fake, "submissions")
	ctx := context.Background()

	first := &models.Submission{SubmissionID: "sub_a", IdempotencyKey: "idem-key-0002", QuoteID: "quote_1"}
	second := &models.Submission{SubmissionID: "sub_b", IdempotencyKey: "idem-key-0002", QuoteID: "quote_1"}

	require.NoError(t, client.CreateSubmission(ctx, first))
	err := client.CreateSubmission(ctx, second)
	assert.True(t, errors.HasCode(err, errors.CodeDuplicateRequest))
	assert.NotContains(t, fake.items, "sub_b", "a rejected submission writes nothing")
}
