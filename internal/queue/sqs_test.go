package queue

import (
	"context"
	"fmt"
	"testing"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/request"
	"github.com/aws/aws-sdk-go/service/sqs"
	"github.com/aws/aws-sdk-go/service/sqs/sqsiface"
	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/resale-pricing/internal/errors"
	"github.com/yourusername/resale-pricing/internal/models"
)

type fakeSQS struct {
	sqsiface.SQSAPI
	sent []*sqs.SendMessageInput
	err  error
}

func (f *fakeSQS) SendMessageWithContext(_ aws.Context, in *sqs.SendMessageInput, _ ...request.Option) (*sqs.SendMessageOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.sent = append(f.sent, in)
	return &sqs.SendMessageOutput{MessageId: aws.String(fmt.Sprintf("msg-%d", len(f.sent)))}, nil
}

func job() *models.SubmissionJob {
	return &models.SubmissionJob{
		SubmissionID: "sub_1",
		QuoteID:      "quote_1",
		QuoteType:    "buy",
		UserID:       42,
		Total:        "1234.50",
		Currency:     "SGD",
		Payload:      `{"quote_id":"quote_1"}`,
	}
}

func TestQueueAdapter_EnqueueSubmission(t *testing.T) {
	fake := &fakeSQS{}
	adapter := NewQueueAdapter(NewClientWithAPI(fake), "http://sqs.local/submissions")

	require.NoError(t, adapter.EnqueueSubmission(context.Background(), job()))
	require.Len(t, fake.sent, 1)

	in := fake.sent[0]
	assert.Equal(t, "http://sqs.local/submissions", aws.StringValue(in.QueueUrl))
	assert.Equal(t, "sub_1", aws.StringValue(in.MessageAttributes["SubmissionID"].StringValue))
	assert.Equal(t, "buy", aws.StringValue(in.MessageAttributes["QuoteType"].StringValue))
	assert.Nil(t, in.DelaySeconds)

	var decoded models.SubmissionJob
	require.NoError(t, json.Unmarshal([]byte(aws.StringValue(in.MessageBody)), &decoded))
	assert.Equal(t, *job(), decoded)
}

func TestClient_DelayIsCapped(t *testing.T) {
	fake := &fakeSQS{}
	client := NewClientWithAPI(fake)

	require.NoError(t, client.SendSubmissionJobWithDelay(context.Background(), "q", job(), 3600))
	assert.Equal(t, int64(maxDelaySeconds), aws.Int64Value(fake.sent[0].DelaySeconds))
}

func TestClient_SendFailure(t *testing.T) {
	client := NewClientWithAPI(&fakeSQS{err: fmt.Errorf("throttled")})

	err := client.SendSubmissionJob(context.Background(), "q", job())
	assert.True(t, errors.HasCode(err, errors.CodeQueue))
}
