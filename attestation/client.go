package attestation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/TEENet-io/escrow-go/common"
	ethcommon "github.com/ethereum/go-ethereum/common"
	logger "github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"
)

const defaultTimeout = 30 * time.Second

var ErrIrisServer = errors.New("iris server error")

type ClientConfig struct {
	BaseURL           string
	Timeout           time.Duration
	RequestsPerSecond float64
}

// Client talks to Circle's Iris attestation API. Every call is exactly one
// HTTP request; retrying is left to the poller.
type Client struct {
	cfg            ClientConfig
	httpClient     *http.Client
	circuitBreaker *gobreaker.CircuitBreaker
	rateLimiter    *rate.Limiter
}

func NewClient(cfg ClientConfig) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = common.IrisSandboxURL
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if cfg.Timeout == 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.RequestsPerSecond <= 0 {
		cfg.RequestsPerSecond = MaxRequestsPerSecond
	}

	cbSettings := gobreaker.Settings{
		Name:        "IrisAPI",
		MaxRequests: 5,
		Interval:    10 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures > 5
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
		circuitBreaker: gobreaker.NewCircuitBreaker(cbSettings),
		rateLimiter:    rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1),
	}
}

func (c *Client) BaseURL() string {
	return c.cfg.BaseURL
}

type httpResult struct {
	status int
	body   []byte
}

// GetMessages queries /v2/messages/{sourceDomain} for txHash. A non-2xx
// status is returned with a nil error; only transport failures and
// undecodable 2xx bodies are errors.
func (c *Client) GetMessages(ctx context.Context, sourceDomain uint32, txHash ethcommon.Hash) (*MessagesResponse, int, error) {
	endpoint := fmt.Sprintf("%s/v2/messages/%d?transactionHash=%s", c.cfg.BaseURL, sourceDomain, txHash.Hex())

	if err := c.rateLimiter.Wait(ctx); err != nil {
		return nil, 0, fmt.Errorf("rate limiter: %w", err)
	}

	res, err := c.circuitBreaker.Execute(func() (interface{}, error) {
		return c.doRequest(ctx, endpoint)
	})
	if err != nil {
		var hr *httpResult
		if r, ok := res.(*httpResult); ok {
			hr = r
		}
		if hr != nil {
			return nil, hr.status, nil
		}
		return nil, 0, err
	}

	hr := res.(*httpResult)
	if hr.status < 200 || hr.status >= 300 {
		return nil, hr.status, nil
	}

	var resp MessagesResponse
	if err := json.Unmarshal(hr.body, &resp); err != nil {
		return nil, hr.status, fmt.Errorf("unmarshal response: %w", err)
	}
	return &resp, hr.status, nil
}

// Fetch implements Fetcher.
func (c *Client) Fetch(ctx context.Context, sourceDomain uint32, txHash ethcommon.Hash) Observation {
	resp, status, err := c.GetMessages(ctx, sourceDomain, txHash)
	obs := Observation{StatusCode: status, Err: err}
	if resp != nil {
		obs.Messages = resp.Messages
	}
	return obs
}

// doRequest reports 5xx as a breaker failure; 4xx such as a not yet indexed
// tx are ordinary answers.
func (c *Client) doRequest(ctx context.Context, endpoint string) (*httpResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Cache-Control", "no-cache, no-store")
	req.Header.Set("Pragma", "no-cache")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}

	hr := &httpResult{status: resp.StatusCode, body: body}
	if resp.StatusCode >= 500 {
		return hr, fmt.Errorf("%w: status %d", ErrIrisServer, resp.StatusCode)
	}
	return hr, nil
}
