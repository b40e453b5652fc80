package api

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/aws/aws-lambda-go/events"
	json "github.com/goccy/go-json"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/resale-pricing/internal/catalog"
	"github.com/yourusername/resale-pricing/internal/errors"
	"github.com/yourusername/resale-pricing/internal/models"
	"github.com/yourusername/resale-pricing/internal/quotes"
	"github.com/yourusername/resale-pricing/internal/submissions"
)

type memSubmissions struct {
	byID map[string]*models.Submission
}

func (m *memSubmissions) CreateSubmission(_ context.Context, sub *models.Submission) error {
	m.byID[sub.SubmissionID] = sub
	return nil
}

func (m *memSubmissions) GetSubmission(_ context.Context, id string) (*models.Submission, error) {
	sub, ok := m.byID[id]
	if !ok {
		return nil, errors.ErrSubmissionNotFound(id)
	}
	return sub, nil
}

func (m *memSubmissions) GetSubmissionByIdempotencyKey(_ context.Context, key string) (*models.Submission, error) {
	for _, sub := range m.byID {
		if sub.IdempotencyKey == key {
			return sub, nil
		}
	}
	return nil, nil
}

func (m *memSubmissions) UpdateSubmissionStatus(_ context.Context, id string, status models.SubmissionStatus, msg string) error {
	m.byID[id].Status = status
	m.byID[id].ErrorMessage = msg
	return nil
}

type nopPublisher struct {
	count int
}

func (p *nopPublisher) EnqueueSubmission(context.Context, *models.SubmissionJob) error {
	p.count++
	return nil
}

func newHandler(t *testing.T) (*Handler, *nopPublisher) {
	t.Helper()
	cat, err := catalog.Load("../catalog/testdata/catalog.yaml")
	require.NoError(t, err)

	quoteSvc := quotes.NewService(cat, quotes.NewMemoryStore(), nil, time.Minute)
	pub := &nopPublisher{}
	subSvc := submissions.NewService(&memSubmissions{byID: make(map[string]*models.Submission)}, pub, quoteSvc)
	return NewHandler(quoteSvc, subSvc), pub
}

const buyBody = `{
	"product": {"id": 501, "collection_ids": [3], "weight": 1200, "volume_weight": 800},
	"size": "US 9",
	"price": "300",
	"buyer_id": 42,
	"currency": "SGD",
	"country_id": 10,
	"payment_method": "card"
}`

func post(path, body string, headers map[string]string) events.APIGatewayProxyRequest {
	return events.APIGatewayProxyRequest{
		HTTPMethod: http.MethodPost,
		Path:       path,
		Body:       body,
		Headers:    headers,
	}
}

func get(path string) events.APIGatewayProxyRequest {
	return events.APIGatewayProxyRequest{HTTPMethod: http.MethodGet, Path: path}
}

func decodeBody(t *testing.T, resp events.APIGatewayProxyResponse, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal([]byte(resp.Body), v))
}

func errorCode(t *testing.T, resp events.APIGatewayProxyResponse) string {
	t.Helper()
	var body errors.ErrorResponse
	decodeBody(t, resp, &body)
	return body.Error.Code
}

func TestHandler_BuyQuoteAndSubmit(t *testing.T) {
	h, pub := newHandler(t)
	ctx := context.Background()

	resp, err := h.HandleRequest(ctx, post("/quotes/buy", buyBody, nil))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode, resp.Body)
	assert.Equal(t, "application/json", resp.Headers["Content-Type"])

	var q quotes.Quote
	decodeBody(t, resp, &q)
	assert.Equal(t, quotes.TypeBuy, q.Type)
	assert.True(t, decimal.RequireFromString("321.58").Equal(q.Total.Amount), q.Total.Amount.String())

	resp, err = h.HandleRequest(ctx, get("/quotes/"+q.QuoteID))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	submit := post("/submissions", `{"quote_id":"`+q.QuoteID+`","user_id":42}`,
		map[string]string{"idempotency-key": "checkout-0001-abcdef"})
	resp, err = h.HandleRequest(ctx, submit)
	require.NoError(t, err)
	require.Equal(t, http.StatusAccepted, resp.StatusCode, resp.Body)
	assert.Equal(t, 1, pub.count)

	var accepted models.SubmissionResponse
	decodeBody(t, resp, &accepted)
	assert.Equal(t, models.StatusQueued, accepted.Status)

	resp, err = h.HandleRequest(ctx, submit)
	require.NoError(t, err)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, errors.CodeDuplicateRequest, errorCode(t, resp))

	resp, err = h.HandleRequest(ctx, events.APIGatewayProxyRequest{
		HTTPMethod:     http.MethodGet,
		Path:           "/submissions/" + accepted.SubmissionID,
		PathParameters: map[string]string{"submission_id": accepted.SubmissionID},
	})
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestHandler_PayoutQuote(t *testing.T) {
	h, _ := newHandler(t)

	body := `{"seller_id":77,"seller_level":1,"tier":"Tier 3","amount":5000,"mode":"requested","currency":"SGD","country_id":10}`
	resp, err := h.HandleRequest(context.Background(), post("/quotes/payout", body, nil))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode, resp.Body)

	var q quotes.Quote
	decodeBody(t, resp, &q)
	require.NotNil(t, q.Payout)
	assert.True(t, decimal.NewFromInt(5).Equal(q.Payout.Fee))
	assert.True(t, decimal.NewFromInt(4995).Equal(q.Total.Amount))
}

func TestHandler_Errors(t *testing.T) {
	h, _ := newHandler(t)
	ctx := context.Background()

	tests := []struct {
		name    string
		request events.APIGatewayProxyRequest
		status  int
		code    string
	}{
		{"unknown route", get("/health"), http.StatusNotFound, "NOT_FOUND"},
		{"nested quote path", get("/quotes/a/b"), http.StatusNotFound, "NOT_FOUND"},
		{"empty body", post("/quotes/sell", "", nil), http.StatusBadRequest, errors.CodeInvalidRequest},
		{"malformed json", post("/quotes/buy", "{", nil), http.StatusBadRequest, errors.CodeInvalidRequest},
		{"validation", post("/quotes/sell", `{"product":{"id":1},"size":"US 9","price":100,"seller_id":7,"currency":"SGD"}`, nil), http.StatusBadRequest, errors.CodeValidation},
		{"unknown currency", post("/quotes/sell", `{"product":{"id":1},"size":"US 9","price":100,"seller_id":7,"currency":"EUR","country_id":10}`, nil), http.StatusUnprocessableEntity, errors.CodeConfiguration},
		{"missing quote", get("/quotes/quote_missing"), http.StatusNotFound, errors.CodeQuoteNotFound},
		{"missing idempotency key", post("/submissions", `{"quote_id":"q","user_id":1}`, nil), http.StatusBadRequest, errors.CodeMissingHeader},
		{"missing submission", get("/submissions/sub_missing"), http.StatusNotFound, errors.CodeSubmissionNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := h.HandleRequest(ctx, tt.request)
			require.NoError(t, err)
			assert.Equal(t, tt.status, resp.StatusCode, resp.Body)
			assert.Equal(t, tt.code, errorCode(t, resp))
		})
	}
}
