package config

import (
	"context"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/request"
	"github.com/aws/aws-sdk-go/service/secretsmanager"
	"github.com/aws/aws-sdk-go/service/secretsmanager/secretsmanageriface"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	t.Setenv("QUOTE_TABLE", "quotes-test")
	t.Setenv("CATALOG_PATH", "/etc/catalog.yaml")
	t.Setenv("QUOTE_TTL_SECONDS", "120")
	t.Setenv("SUBMISSION_QUEUE_URL", "http://localhost:4566/queue/submissions")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "quotes-test", cfg.Database.QuoteTableName)
	assert.Equal(t, "submissions", cfg.Database.SubmissionTableName)
	assert.Equal(t, "/etc/catalog.yaml", cfg.Catalog.Path)
	assert.Equal(t, 2*time.Minute, cfg.Quotes.TTL)
	assert.Equal(t, time.Minute, cfg.Rates.CacheTTL)
	assert.Equal(t, "http://localhost:4566/queue/submissions", cfg.Queue.SubmissionQueueURL)
}

func TestLoad_RequiredFields(t *testing.T) {
	t.Setenv("QUOTE_TABLE", "")
	t.Setenv("CATALOG_PATH", "/etc/catalog.yaml")
	_, err := Load()
	assert.ErrorContains(t, err, "QUOTE_TABLE")

	t.Setenv("QUOTE_TABLE", "quotes")
	t.Setenv("CATALOG_PATH", "")
	_, err = Load()
	assert.ErrorContains(t, err, "CATALOG_PATH")
}

func TestLoad_InvalidTTL(t *testing.T) {
	t.Setenv("QUOTE_TABLE", "quotes")
	t.Setenv("CATALOG_PATH", "/etc/catalog.yaml")

	t.Setenv("QUOTE_TTL_SECONDS", "soon")
	_, err := Load()
	assert.ErrorContains(t, err, "must be an integer")

	t.Setenv("QUOTE_TTL_SECONDS", "-5")
	_, err = Load()
	assert.ErrorContains(t, err, "must be positive")
}

type fakeSecrets struct {
	secretsmanageriface.SecretsManagerAPI
	value *string
	asked string
}

func (f *fakeSecrets) GetSecretValueWithContext(_ aws.Context, in *secretsmanager.GetSecretValueInput, _ ...request.Option) (*secretsmanager.GetSecretValueOutput, error) {
	f.asked = aws.StringValue(in.SecretId)
	return &secretsmanager.GetSecretValueOutput{SecretString: f.value}, nil
}

func TestGetRatesAPIKey(t *testing.T) {
	t.Run("environment wins", func(t *testing.T) {
		t.Setenv("RATES_API_KEY", "from-env")
		fake := &fakeSecrets{value: aws.String("from-secret")}

		key, err := NewSecretsClientWithAPI(fake).GetRatesAPIKey(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "from-env", key)
		assert.Empty(t, fake.asked)
	})

	t.Run("plain secret", func(t *testing.T) {
		t.Setenv("RATES_API_KEY", "")
		fake := &fakeSecrets{value: aws.String("plain-key")}

		key, err := NewSecretsClientWithAPI(fake).GetRatesAPIKey(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "plain-key", key)
		assert.Equal(t, ratesAPIKeySecret, fake.asked)
	})

	t.Run("json secret", func(t *testing.T) {
		t.Setenv("RATES_API_KEY", "")
		fake := &fakeSecrets{value: aws.String(`{"api_key":"json-key"}`)}

		key, err := NewSecretsClientWithAPI(fake).GetRatesAPIKey(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "json-key", key)
	})

	t.Run("binary secret", func(t *testing.T) {
		t.Setenv("RATES_API_KEY", "")
		_, err := NewSecretsClientWithAPI(&fakeSecrets{}).GetRatesAPIKey(context.Background())
		assert.ErrorContains(t, err, "binary")
	})
}
