// Package api serves the quoting and submission endpoints behind API Gateway.
package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/aws/aws-lambda-go/events"
	json "github.com/goccy/go-json"

	"github.com/yourusername/resale-pricing/internal/errors"
	"github.com/yourusername/resale-pricing/internal/logger"
	"github.com/yourusername/resale-pricing/internal/models"
	"github.com/yourusername/resale-pricing/internal/quotes"
)

const idempotencyHeader = "Idempotency-Key"

var corsHeaders = map[string]string{
	"Access-Control-Allow-Origin":  "*",
	"Access-Control-Allow-Methods": "GET,POST,OPTIONS",
	"Access-Control-Allow-Headers": "Content-Type,X-Amz-Date,Authorization,X-Api-Key,X-Amz-Security-Token,Idempotency-Key",
}

// QuoteService prices requests into stored quotes.
type QuoteService interface {
	QuoteBuy(ctx context.Context, req *models.BuyQuoteRequest) (*quotes.Quote, error)
	QuoteOffer(ctx context.Context, req *models.BuyQuoteRequest) (*quotes.Quote, error)
	QuoteSell(ctx context.Context, req *models.SellQuoteRequest) (*quotes.Quote, error)
	QuoteList(ctx context.Context, req *models.SellQuoteRequest) (*quotes.Quote, error)
	QuotePayout(ctx context.Context, req *models.PayoutQuoteRequest) (*quotes.Quote, error)
	Get(ctx context.Context, quoteID string) (*quotes.Quote, error)
}

// SubmissionService accepts quotes.
type SubmissionService interface {
	Accept(ctx context.Context, idempotencyKey string, req *models.SubmissionRequest) (*models.SubmissionResponse, error)
	Get(ctx context.Context, submissionID string) (*models.Submission, error)
}

// Handler routes API Gateway proxy requests.
type Handler struct {
	quotes      QuoteService
	submissions SubmissionService
}

// NewHandler creates an API handler
func NewHandler(q QuoteService, s SubmissionService) *Handler {
	return &Handler{
		quotes:      q,
		submissions: s,
	}
}

// HandleRequest handles the API Gateway request
func (h *Handler) HandleRequest(ctx context.Context, request events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	if id := request.RequestContext.RequestID; id != "" {
		ctx = logger.ContextWithRequestID(ctx, id)
	}
	logger.WithContext(ctx).Info("Received API request", logger.Fields{
		"path":   request.Path,
		"method": request.HTTPMethod,
	})

	path := strings.TrimRight(request.Path, "/")

	switch request.HTTPMethod {
	case http.MethodPost:
		switch path {
		case "/quotes/buy":
			return h.handleBuyQuote(ctx, request, h.quotes.QuoteBuy)
		case "/quotes/offer":
			return h.handleBuyQuote(ctx, request, h.quotes.QuoteOffer)
		case "/quotes/sell":
			return h.handleSellQuote(ctx, request, h.quotes.QuoteSell)
		case "/quotes/list":
			return h.handleSellQuote(ctx, request, h.quotes.QuoteList)
		case "/quotes/payout":
			return h.handlePayoutQuote(ctx, request)
		case "/submissions":
			return h.handleCreateSubmission(ctx, request)
		}
	case http.MethodGet:
		if id := pathParam(request, "quote_id", "/quotes/"); id != "" {
			return h.handleGetQuote(ctx, id)
		}
		if id := pathParam(request, "submission_id", "/submissions/"); id != "" {
			return h.handleGetSubmission(ctx, id)
		}
	}

	return errorResponse(http.StatusNotFound, "NOT_FOUND", "Endpoint not found")
}

type buyQuoteFunc func(context.Context, *models.BuyQuoteRequest) (*quotes.Quote, error)

type sellQuoteFunc func(context.Context, *models.SellQuoteRequest) (*quotes.Quote, error)

// handleBuyQuote handles POST /quotes/buy and /quotes/offer
func (h *Handler) handleBuyQuote(ctx context.Context, request events.APIGatewayProxyRequest, quote buyQuoteFunc) (events.APIGatewayProxyResponse, error) {
	var req models.BuyQuoteRequest
	if err := decode(request.Body, &req); err != nil {
		return appErrorResponse(ctx, err)
	}
	q, err := quote(ctx, &req)
	if err != nil {
		return appErrorResponse(ctx, err)
	}
	return jsonResponse(http.StatusOK, q)
}

// handleSellQuote handles POST /quotes/sell and /quotes/list
func (h *Handler) handleSellQuote(ctx context.Context, request events.APIGatewayProxyRequest, quote sellQuoteFunc) (events.APIGatewayProxyResponse, error) {
	var req models.SellQuoteRequest
	if err := decode(request.Body, &req); err != nil {
		return appErrorResponse(ctx, err)
	}
	q, err := quote(ctx, &req)
	if err != nil {
		return appErrorResponse(ctx, err)
	}
	return jsonResponse(http.StatusOK, q)
}

// handlePayoutQuote handles POST /quotes/payout
func (h *Handler) handlePayoutQuote(ctx context.Context, request events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	var req models.PayoutQuoteRequest
	if err := decode(request.Body, &req); err != nil {
		return appErrorResponse(ctx, err)
	}
	q, err := h.quotes.QuotePayout(ctx, &req)
	if err != nil {
		return appErrorResponse(ctx, err)
	}
	return jsonResponse(http.StatusOK, q)
}

// handleGetQuote handles GET /quotes/{quote_id}
func (h *Handler) handleGetQuote(ctx context.Context, quoteID string) (events.APIGatewayProxyResponse, error) {
	q, err := h.quotes.Get(ctx, quoteID)
	if err != nil {
		return appErrorResponse(ctx, err)
	}
	return jsonResponse(http.StatusOK, q)
}

// handleCreateSubmission handles POST /submissions
func (h *Handler) handleCreateSubmission(ctx context.Context, request events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	var req models.SubmissionRequest
	if err := decode(request.Body, &req); err != nil {
		return appErrorResponse(ctx, err)
	}
	resp, err := h.submissions.Accept(ctx, header(request, idempotencyHeader), &req)
	if err != nil {
		return appErrorResponse(ctx, err)
	}
	return jsonResponse(http.StatusAccepted, resp)
}

// handleGetSubmission handles GET /submissions/{submission_id}
func (h *Handler) handleGetSubmission(ctx context.Context, submissionID string) (events.APIGatewayProxyResponse, error) {
	sub, err := h.submissions.Get(ctx, submissionID)
	if err != nil {
		return appErrorResponse(ctx, err)
	}
	return jsonResponse(http.StatusOK, sub)
}

func decode(body string, v interface{}) error {
	if strings.TrimSpace(body) == "" {
		return errors.ErrInvalidRequest("Request body is empty", nil)
	}
	if err := json.Unmarshal([]byte(body), v); err != nil {
		return errors.ErrInvalidRequest("Invalid request body", err)
	}
	return nil
}

// pathParam returns the named path parameter, falling back to the path
// segment after prefix. Nested paths are not matched.
func pathParam(request events.APIGatewayProxyRequest, name, prefix string) string {
	if v := request.PathParameters[name]; v != "" {
		return v
	}
	if !strings.HasPrefix(request.Path, prefix) {
		return ""
	}
	rest := strings.TrimRight(strings.TrimPrefix(request.Path, prefix), "/")
	if rest == "" || strings.Contains(rest, "/") {
		return ""
	}
	return rest
}

// header looks a header up case-insensitively; API Gateway may normalize names.
func header(request events.APIGatewayProxyRequest, name string) string {
	if v, ok := request.Headers[name]; ok {
		return v
	}
	for k, v := range request.Headers {
		if strings.EqualFold(k, name) {
			return v
		}
	}
	return ""
}

func jsonResponse(statusCode int, body interface{}) (events.APIGatewayProxyResponse, error) {
	data, err := json.Marshal(body)
	if err != nil {
		logger.Error("Failed to marshal response", logger.Fields{"error": err.Error()})
		return errorResponse(http.StatusInternalServerError, errors.CodeInternal, "Failed to encode response")
	}
	return events.APIGatewayProxyResponse{
		StatusCode: statusCode,
		Headers:    responseHeaders(),
		Body:       string(data),
	}, nil
}

// appErrorResponse maps err to its API error. Errors that are not AppErrors
// are reported as internal errors without their detail.
func appErrorResponse(ctx context.Context, err error) (events.APIGatewayProxyResponse, error) {
	log := logger.WithContext(ctx)

	appErr, ok := errors.As(err)
	if !ok {
		log.Error("Unhandled error", logger.Fields{"error": err.Error()})
		return errorResponse(http.StatusInternalServerError, errors.CodeInternal, "Internal server error")
	}

	fields := logger.Fields{"code": appErr.Code, "error": appErr.Error()}
	if appErr.StatusCode >= http.StatusInternalServerError {
		log.Error("Request failed", fields)
	} else {
		log.Warn("Request rejected", fields)
	}
	return errorResponse(appErr.StatusCode, appErr.Code, appErr.Message)
}

// errorResponse creates an error response
func errorResponse(statusCode int, code, message string) (events.APIGatewayProxyResponse, error) {
	errResp := errors.ErrorResponse{
		Error: errors.ErrorDetail{
			Code:    code,
			Message: message,
		},
	}

	body, _ := json.Marshal(errResp)

	return events.APIGatewayProxyResponse{
		StatusCode: statusCode,
		Headers:    responseHeaders(),
		Body:       string(body),
	}, nil
}

func responseHeaders() map[string]string {
	headers := make(map[string]string, len(corsHeaders)+1)
	for k, v := range corsHeaders {
		headers[k] = v
	}
	headers["Content-Type"] = "application/json"
	return headers
}
