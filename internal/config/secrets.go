package config

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/secretsmanager"
	"github.com/aws/aws-sdk-go/service/secretsmanager/secretsmanageriface"
	json "github.com/goccy/go-json"
)

const ratesAPIKeySecret = "resale-pricing/rates-api-key"

// SecretsClient reads string secrets from AWS Secrets Manager
type SecretsClient struct {
	svc secretsmanageriface.SecretsManagerAPI
}

// NewSecretsClient creates a Secrets Manager client for region
func NewSecretsClient(region string) (*SecretsClient, error) {
	sess, err := session.NewSession(&aws.Config{
		Region: aws.String(region),
	})
	if err != nil {
		return nil, fmt.Errorf("unable to create AWS session: %w", err)
	}
	return &SecretsClient{svc: secretsmanager.New(sess)}, nil
}

// NewSecretsClientWithAPI wraps an existing Secrets Manager API
func NewSecretsClientWithAPI(svc secretsmanageriface.SecretsManagerAPI) *SecretsClient {
	return &SecretsClient{svc: svc}
}

// GetSecretValue retrieves a string secret
func (c *SecretsClient) GetSecretValue(ctx context.Context, secretName string) (string, error) {
	input := &secretsmanager.GetSecretValueInput{
		SecretId: aws.String(secretName),
	}

	result, err := c.svc.GetSecretValueWithContext(ctx, input)
	if err != nil {
		return "", fmt.Errorf("failed to retrieve secret: %w", err)
	}

	// Secrets Manager can store secrets as SecretString or SecretBinary
	if result.SecretString == nil {
		return "", fmt.Errorf("secret is stored as binary, expected string")
	}

	return *result.SecretString, nil
}

// GetRatesAPIKey returns the price API key from RATES_API_KEY or, failing
// that, from Secrets Manager. The secret may be a bare string or a JSON object
// with an "api_key" field.
func (c *SecretsClient) GetRatesAPIKey(ctx context.Context) (string, error) {
	// First, try to get from environment variable (for local development)
	if apiKey := getEnv("RATES_API_KEY", ""); apiKey != "" {
		return apiKey, nil
	}

	secret, err := c.GetSecretValue(ctx, ratesAPIKeySecret)
	if err != nil {
		return "", fmt.Errorf("failed to get rates API key: %w", err)
	}

	if parsed, err := ParseJSONSecret(secret); err == nil {
		if key, ok := parsed["api_key"].(string); ok && key != "" {
			return key, nil
		}
	}
	return secret, nil
}

// ParseJSONSecret parses a JSON secret into a map
func ParseJSONSecret(secretString string) (map[string]interface{}, error) {
	var secretMap map[string]interface{}
	if err := json.Unmarshal([]byte(secretString), &secretMap); err != nil {
		return nil, fmt.Errorf("failed to parse JSON secret: %w", err)
	}
	return secretMap, nil
}
