package main

import (
	"context"

	"github.com/aws/aws-lambda-go/lambda"

	"github.com/yourusername/resale-pricing/internal/api"
	"github.com/yourusername/resale-pricing/internal/catalog"
	"github.com/yourusername/resale-pricing/internal/config"
	"github.com/yourusername/resale-pricing/internal/database"
	"github.com/yourusername/resale-pricing/internal/logger"
	"github.com/yourusername/resale-pricing/internal/queue"
	"github.com/yourusername/resale-pricing/internal/quotes"
	"github.com/yourusername/resale-pricing/internal/rates"
	"github.com/yourusername/resale-pricing/internal/submissions"
)

// newHandler wires the API Lambda dependencies
func newHandler(ctx context.Context, cfg *config.Config) (*api.Handler, error) {
	cat, err := catalog.Load(cfg.Catalog.Path)
	if err != nil {
		return nil, err
	}

	dynamo, err := database.NewDynamoDB(cfg.AWS.Region, cfg.Database.Endpoint)
	if err != nil {
		return nil, err
	}
	quoteDB := database.NewQuoteClient(dynamo, cfg.Database.QuoteTableName)
	submissionDB := database.NewSubmissionClient(dynamo, cfg.Database.SubmissionTableName)

	sqsClient, err := queue.NewClient(cfg.AWS.Region, cfg.Queue.Endpoint)
	if err != nil {
		return nil, err
	}
	publisher := queue.NewQueueAdapter(sqsClient, cfg.Queue.SubmissionQueueURL)

	// Crypto estimates are advisory; without an API key they are still
	// attempted against the public endpoint.
	var apiKey string
	if secrets, err := config.NewSecretsClient(cfg.AWS.Region); err == nil {
		if apiKey, err = secrets.GetRatesAPIKey(ctx); err != nil {
			logger.Warn("Rates API key unavailable", logger.Fields{"error": err.Error()})
		}
	}
	rateProvider := rates.NewProvider(
		rates.NewHTTPSource(cfg.Rates.BaseURL, apiKey, cfg.Rates.Timeout),
		cfg.Rates.BaseCurrency,
		cfg.Rates.CacheTTL,
	)

	quoteSvc := quotes.NewService(cat, quoteDB, rateProvider, cfg.Quotes.TTL)
	submissionSvc := submissions.NewService(submissionDB, publisher, quoteSvc)

	return api.NewHandler(quoteSvc, submissionSvc), nil
}

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Error("Failed to load configuration", logger.Fields{"error": err.Error()})
		panic(err)
	}

	// Initialize logger
	log := logger.NewFromString(cfg.Logging.Level)
	logger.SetDefault(log)

	handler, err := newHandler(context.Background(), cfg)
	if err != nil {
		logger.Error("Failed to create handler", logger.Fields{"error": err.Error()})
		panic(err)
	}

	// Start Lambda
	lambda.Start(handler.HandleRequest)
}
