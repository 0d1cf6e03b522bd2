package onramp

import (
	"bytes"
	"context"
	"crypto/ecdsa"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/TEENet-io/escrow-go/common"
	"github.com/golang-jwt/jwt/v5"
	logger "github.com/sirupsen/logrus"
)

const (
	DefaultAPIBaseURL = "https://api.developer.coinbase.com"
	DefaultPayURL     = "https://pay.coinbase.com/buy"

	tokenPath = "/onramp/v1/token"

	jwtIssuer   = "cdp"
	jwtLifetime = 120 * time.Second

	defaultTimeout = 30 * time.Second
)

var (
	ErrSessionToken = errors.New("onramp session token request failed")
)

type Config struct {
	// organizations/{org}/apiKeys/{key}
	KeyName string
	// PEM EC private key; literal "\n" sequences are accepted
	PrivateKey string

	APIBaseURL string
	PayURL     string
	Timeout    time.Duration
}

// Request describes the purchase a user is sent to complete.
type Request struct {
	DestinationAddress string
	Network            string
	Asset              string
	PaymentAmount      string
	PaymentCurrency    string
}

func (r *Request) applyDefaults() {
	if r.Network == "" {
		r.Network = "base"
	}
	if r.Asset == "" {
		r.Asset = "USDC"
	}
	if r.PaymentAmount == "" {
		r.PaymentAmount = "25.00"
	}
	if r.PaymentCurrency == "" {
		r.PaymentCurrency = "USD"
	}
	r.Asset = strings.ToUpper(r.Asset)
	r.PaymentCurrency = strings.ToUpper(r.PaymentCurrency)
}

// Client issues Coinbase onramp session tokens restricted to one address
// and asset, and turns them into buy URLs.
type Client struct {
	cfg        Config
	key        *ecdsa.PrivateKey
	httpClient *http.Client
	now        func() time.Time
}

func NewClient(cfg Config) (*Client, error) {
	if cfg.KeyName == "" {
		return nil, common.NewConfigurationError("CDP_API_KEY_NAME")
	}
	pemKey := strings.ReplaceAll(cfg.PrivateKey, `\n`, "\n")
	key, err := jwt.ParseECPrivateKeyFromPEM([]byte(pemKey))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.NewConfigurationError("CDP_API_KEY_PRIVATE_KEY"), err)
	}

	if cfg.APIBaseURL == "" {
		cfg.APIBaseURL = DefaultAPIBaseURL
	}
	cfg.APIBaseURL = strings.TrimRight(cfg.APIBaseURL, "/")
	if cfg.PayURL == "" {
		cfg.PayURL = DefaultPayURL
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = defaultTimeout
	}

	return &Client{
		cfg:        cfg,
		key:        key,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		now:        time.Now,
	}, nil
}

// URL creates a session token for req and returns the buy URL.
func (c *Client) URL(ctx context.Context, req Request) (string, error) {
	if strings.TrimSpace(req.DestinationAddress) == "" {
		return "", common.NewValidationError("destination_address required")
	}
	req.applyDefaults()

	token, err := c.SessionToken(ctx, req)
	if err != nil {
		return "", err
	}
	return c.buyURL(token, req), nil
}

type sessionAddress struct {
	Address     string   `json:"address"`
	Blockchains []string `json:"blockchains"`
}

type sessionRequest struct {
	Addresses []sessionAddress `json:"addresses"`
	Assets    []string         `json:"assets"`
}

type sessionResponse struct {
	Token string `json:"token"`
}

func (c *Client) SessionToken(ctx context.Context, req Request) (string, error) {
	bearer, err := c.signJWT(http.MethodPost, tokenPath)
	if err != nil {
		return "", err
	}

	body, err := json.Marshal(sessionRequest{
		Addresses: []sessionAddress{{Address: req.DestinationAddress, Blockchains: []string{req.Network}}},
		Assets:    []string{req.Asset},
	})
	if err != nil {
		return "", err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.APIBaseURL+tokenPath, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+bearer)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrSessionToken, err)
	}
	defer resp.Body.Close()

	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read body: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		logger.WithFields(logger.Fields{
			"status": resp.StatusCode,
			"body":   string(b),
		}).Error("session token request rejected")
		return "", fmt.Errorf("%w (%d): %s", ErrSessionToken, resp.StatusCode, strings.TrimSpace(string(b)))
	}

	var sr sessionResponse
	if err := json.Unmarshal(b, &sr); err != nil || sr.Token == "" {
		return "", fmt.Errorf("%w: no token in response", ErrSessionToken)
	}
	return sr.Token, nil
}

// signJWT builds the ES256 bearer Coinbase expects for one request.
func (c *Client) signJWT(method, path string) (string, error) {
	u, err := url.Parse(c.cfg.APIBaseURL)
	if err != nil {
		return "", fmt.Errorf("parse api base url: %w", err)
	}

	nbf := c.now()
	claims := jwt.MapClaims{
		"iss": jwtIssuer,
		"sub": c.cfg.KeyName,
		"nbf": nbf.Unix(),
		"exp": nbf.Add(jwtLifetime).Unix(),
		"uri": method + " " + u.Host + path,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodES256, claims)
	token.Header["kid"] = c.cfg.KeyName
	token.Header["nonce"] = hex.EncodeToString(common.RandBytes(16))

	signed, err := token.SignedString(c.key)
	if err != nil {
		return "", fmt.Errorf("sign onramp jwt: %w", err)
	}
	return signed, nil
}

func (c *Client) buyURL(sessionToken string, req Request) string {
	params := url.Values{}
	params.Set("sessionToken", sessionToken)
	params.Set("presetFiatAmount", req.PaymentAmount)
	params.Set("fiatCurrency", req.PaymentCurrency)
	params.Set("defaultAsset", req.Asset)
	params.Set("defaultNetwork", req.Network)
	params.Set("defaultExperience", "buy")
	params.Set("defaultPaymentMethod", "CARD")
	return c.cfg.PayURL + "?" + params.Encode()
}
