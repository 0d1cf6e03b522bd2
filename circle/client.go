package circle

import (
	"bytes"
	"context"
	"crypto/rsa"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"math/rand"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/TEENet-io/escrow-go/common"
	"github.com/TEENet-io/escrow-go/metrics"
	"github.com/google/uuid"
	logger "github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"
)

const (
	DefaultBaseURL = "https://api.circle.com"

	defaultTimeout     = 30 * time.Second
	defaultMaxRetries  = 4
	defaultBaseBackoff = 1 * time.Second
	maxBackoff         = 32 * time.Second
	maxRetryAfter      = 60 * time.Second
	jitterRange        = 0.1

	contractsEndpoint         = "/v1/w3s/contracts"
	contractExecutionEndpoint = "/v1/w3s/developer/transactions/contractExecution"
	transactionsEndpoint      = "/v1/w3s/transactions"
	publicKeyEndpoint         = "/v1/w3s/config/entity/publicKey"
)

var (
	ErrTransactionNotFound = errors.New("transaction not found")
	ErrContractNotFound    = errors.New("contract not found")
	ErrSchemaMismatch      = errors.New("unexpected circle response schema")
)

type Config struct {
	BaseURL      string
	APIKey       string
	EntitySecret string
	Timeout      time.Duration

	// MaxRetries counts retries after the first attempt
	MaxRetries  int
	BaseBackoff time.Duration
}

// Client is a Circle developer-controlled wallets client. Reads and
// contract executions share one breaker; 429 and 5xx answers are retried
// with exponential backoff.
type Client struct {
	cfg            Config
	httpClient     *http.Client
	circuitBreaker *gobreaker.CircuitBreaker
	metrics        *metrics.Registry

	mu        sync.Mutex
	publicKey *rsa.PublicKey
}

func NewClient(cfg Config) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, common.NewConfigurationError("CIRCLE_API_KEY")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if cfg.Timeout == 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	} else if cfg.MaxRetries == 0 {
		cfg.MaxRetries = defaultMaxRetries
	}
	if cfg.BaseBackoff <= 0 {
		cfg.BaseBackoff = defaultBaseBackoff
	}

	st := gobreaker.Settings{
		Name:        "CircleAPI",
		MaxRequests: 5,
		Interval:    10 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures > 5
		},
		// a definitive client error says nothing about Circle's health
		IsSuccessful: func(err error) bool {
			var apiErr *APIError
			if errors.As(err, &apiErr) {
				return !apiErr.IsRetryable()
			}
			return err == nil
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.WithFields(logger.Fields{
				"name": name,
				"from": from.String(),
				"to":   to.String(),
			}).Warn("circuit breaker state changed")
		},
	}

	return &Client{
		cfg:            cfg,
		httpClient:     &http.Client{Timeout: cfg.Timeout},
		circuitBreaker: gobreaker.NewCircuitBreaker(st),
		metrics:        metrics.Default,
	}, nil
}

func (c *Client) SetMetrics(r *metrics.Registry) {
	c.metrics = r
}

// GetContract returns the on-chain address of a contract imported into
// Circle's smart contract platform.
func (c *Client) GetContract(ctx context.Context, id string) (string, error) {
	if strings.TrimSpace(id) == "" {
		return "", common.NewValidationError("circle contract id is required")
	}

	var data contractData
	err := c.call(ctx, http.MethodGet, contractsEndpoint+"/"+id, nil, &data)
	if isNotFound(err) {
		return "", fmt.Errorf("%w: %s", ErrContractNotFound, id)
	}
	if err != nil {
		return "", err
	}
	if !common.IsHexAddress(data.Contract.ContractAddress) {
		return "", fmt.Errorf("%w: contract.contractAddress is missing", ErrSchemaMismatch)
	}
	return data.Contract.ContractAddress, nil
}

// CreateContractExecution submits a contract call from a developer wallet.
// IdempotencyKey and EntitySecretCiphertext are filled in when empty.
func (c *Client) CreateContractExecution(ctx context.Context, req ContractExecutionRequest) (*ContractExecution, error) {
	if req.WalletID == "" || req.ContractAddress == "" || req.AbiFunctionSignature == "" {
		return nil, common.NewValidationError("walletId, contractAddress and abiFunctionSignature are required")
	}
	if req.IdempotencyKey == "" {
		req.IdempotencyKey = uuid.NewString()
	}
	if req.AbiParameters == nil {
		req.AbiParameters = []interface{}{}
	}
	if req.EntitySecretCiphertext == "" {
		ciphertext, err := c.entitySecretCiphertext(ctx)
		if err != nil {
			return nil, err
		}
		req.EntitySecretCiphertext = ciphertext
	}

	newLogger := logger.WithFields(logger.Fields{
		"wallet_id": req.WalletID,
		"contract":  req.ContractAddress,
		"function":  req.AbiFunctionSignature,
	})

	var res ContractExecution
	err := c.call(ctx, http.MethodPost, contractExecutionEndpoint, req, &res)
	c.metrics.IncChainTx("circle_contract_execution", err)
	if err != nil {
		newLogger.Errorf("failed to create contract execution: %v", err)
		return nil, err
	}
	if res.ID == "" {
		return nil, fmt.Errorf("%w: id is missing", ErrSchemaMismatch)
	}

	newLogger.WithFields(logger.Fields{
		"transaction_id": res.ID,
		"state":          res.State,
	}).Info("contract execution created")
	return &res, nil
}

func (c *Client) GetTransaction(ctx context.Context, id string) (*Transaction, error) {
	if !common.IsUUID(id) {
		return nil, common.NewValidationError("invalid transaction id format")
	}

	var data transactionData
	err := c.call(ctx, http.MethodGet, transactionsEndpoint+"/"+id, nil, &data)
	if isNotFound(err) {
		return nil, ErrTransactionNotFound
	}
	if err != nil {
		return nil, err
	}
	if data.Transaction == nil {
		return nil, ErrTransactionNotFound
	}
	if err := data.Transaction.validate(); err != nil {
		return nil, err
	}
	return data.Transaction, nil
}

// call runs one logical request through the breaker and decodes the "data"
// member of the answer into out.
func (c *Client) call(ctx context.Context, method, endpoint string, in, out interface{}) error {
	_, err := c.circuitBreaker.Execute(func() (interface{}, error) {
		return nil, c.doRequestWithRetry(ctx, method, endpoint, in, out)
	})
	return err
}

func (c *Client) doRequestWithRetry(ctx context.Context, method, endpoint string, in, out interface{}) error {
	requestID := uuid.NewString()
	newLogger := logger.WithFields(logger.Fields{
		"request_id": requestID,
		"method":     method,
		"endpoint":   endpoint,
	})

	var lastErr error
	for attempt := 0; attempt <= c.cfg.MaxRetries; attempt++ {
		if attempt > 0 {
			var retryAfter time.Duration
			var apiErr *APIError
			if errors.As(lastErr, &apiErr) {
				retryAfter = apiErr.RetryAfter
			}
			backoff := c.backoff(attempt-1, retryAfter)
			newLogger.WithFields(logger.Fields{
				"attempt": attempt,
				"backoff": backoff,
			}).Debug("retrying circle request")

			timer := time.NewTimer(backoff)
			select {
			case <-ctx.Done():
				timer.Stop()
				return ctx.Err()
			case <-timer.C:
			}
		}

		err := c.doRequest(ctx, method, endpoint, in, out, requestID)
		if err == nil {
			return nil
		}
		lastErr = err
		if !shouldRetry(err) {
			return err
		}
		newLogger.WithField("attempt", attempt+1).Warnf("circle request failed: %v", err)
	}
	return fmt.Errorf("request failed after %d attempts: %w", c.cfg.MaxRetries+1, lastErr)
}

func (c *Client) doRequest(ctx context.Context, method, endpoint string, in, out interface{}, requestID string) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("marshal request body: %w", err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.cfg.BaseURL+endpoint, body)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", requestID)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read body: %w", err)
	}

	if resp.StatusCode >= 400 {
		return newAPIError(resp, b, requestID)
	}
	if out == nil {
		return nil
	}

	var env envelope
	if err := json.Unmarshal(b, &env); err != nil {
		return fmt.Errorf("%w: %v", ErrSchemaMismatch, err)
	}
	if len(env.Data) == 0 || string(env.Data) == "null" {
		return fmt.Errorf("%w: data is missing", ErrSchemaMismatch)
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("%w: %v", ErrSchemaMismatch, err)
	}
	return nil
}

func newAPIError(resp *http.Response, body []byte, requestID string) *APIError {
	apiErr := &APIError{StatusCode: resp.StatusCode, RequestID: requestID}

	var er errorResponse
	if err := json.Unmarshal(body, &er); err == nil && er.Message != "" {
		apiErr.Code = er.Code
		apiErr.Message = er.Message
	} else {
		apiErr.Message = strings.TrimSpace(string(body))
	}

	if resp.StatusCode == http.StatusTooManyRequests {
		if secs, err := strconv.Atoi(resp.Header.Get("Retry-After")); err == nil && secs > 0 {
			apiErr.RetryAfter = time.Duration(secs) * time.Second
		}
	}
	return apiErr
}

// backoff is BaseBackoff*2^attempt capped at maxBackoff, or the server's
// Retry-After, with ±10% jitter.
func (c *Client) backoff(attempt int, retryAfter time.Duration) time.Duration {
	d := retryAfter
	if d > maxRetryAfter {
		d = maxRetryAfter
	}
	if d <= 0 {
		d = time.Duration(math.Pow(2, float64(attempt))) * c.cfg.BaseBackoff
		if d > maxBackoff {
			d = maxBackoff
		}
	}
	jitter := time.Duration(float64(d) * jitterRange * (rand.Float64()*2 - 1))
	return d + jitter
}

func shouldRetry(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	if errors.Is(err, ErrSchemaMismatch) {
		return false
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.IsRetryable()
	}
	// transport errors
	return true
}

func isNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound
}
