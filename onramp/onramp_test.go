package onramp

import (
	"context"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/x509"
	"encoding/json"
	"encoding/pem"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/TEENet-io/escrow-go/common"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testKeyName = "organizations/org-1/apiKeys/key-1"
	testAddress = "0x5fbdb2315678afecb367f032d93f642f64180aa3"
)

func newTestKey(t *testing.T) (*ecdsa.PrivateKey, string) {
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)
	der, err := x509.MarshalECPrivateKey(key)
	require.NoError(t, err)
	return key, string(pem.EncodeToMemory(&pem.Block{Type: "EC PRIVATE KEY", Bytes: der}))
}

func TestNewClientConfiguration(t *testing.T) {
	_, pemKey := newTestKey(t)

	_, err := NewClient(Config{PrivateKey: pemKey})
	assert.ErrorIs(t, err, common.ErrConfiguration)

	_, err = NewClient(Config{KeyName: testKeyName, PrivateKey: "garbage"})
	assert.ErrorIs(t, err, common.ErrConfiguration)

	// keys stored in env files often carry escaped newlines
	c, err := NewClient(Config{KeyName: testKeyName, PrivateKey: strings.ReplaceAll(pemKey, "\n", `\n`)})
	require.NoError(t, err)
	assert.Equal(t, DefaultAPIBaseURL, c.cfg.APIBaseURL)
}

func TestURL(t *testing.T) {
	key, pemKey := newTestKey(t)
	var hits atomic.Int32

	var srvHost string
	srv := httptest.NewUnstartedServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, tokenPath, r.URL.Path)

		bearer := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
		token, err := jwt.Parse(bearer, func(tok *jwt.Token) (interface{}, error) {
			return &key.PublicKey, nil
		}, jwt.WithValidMethods([]string{"ES256"}))
		if assert.NoError(t, err) {
			claims := token.Claims.(jwt.MapClaims)
			assert.Equal(t, "cdp", claims["iss"])
			assert.Equal(t, testKeyName, claims["sub"])
			assert.Equal(t, "POST "+srvHost+tokenPath, claims["uri"])
			assert.InDelta(t, 120, claims["exp"].(float64)-claims["nbf"].(float64), 0)
			assert.Equal(t, testKeyName, token.Header["kid"])
			assert.Len(t, token.Header["nonce"], 32)
		}

		var body sessionRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, []sessionAddress{{Address: testAddress, Blockchains: []string{"base"}}}, body.Addresses)
		assert.Equal(t, []string{"USDC"}, body.Assets)

		_, _ = w.Write([]byte(`{"token":"sess-123"}`))
	}))
	srvHost = srv.Listener.Addr().String()
	srv.Start()
	defer srv.Close()

	c, err := NewClient(Config{KeyName: testKeyName, PrivateKey: pemKey, APIBaseURL: srv.URL})
	require.NoError(t, err)

	link, err := c.URL(context.Background(), Request{DestinationAddress: testAddress, Asset: "usdc"})
	require.NoError(t, err)
	assert.Equal(t, int32(1), hits.Load())

	parsed, err := url.Parse(link)
	require.NoError(t, err)
	assert.Equal(t, "pay.coinbase.com", parsed.Host)
	assert.Equal(t, "/buy", parsed.Path)
	q := parsed.Query()
	assert.Equal(t, "sess-123", q.Get("sessionToken"))
	assert.Equal(t, "25.00", q.Get("presetFiatAmount"))
	assert.Equal(t, "USD", q.Get("fiatCurrency"))
	assert.Equal(t, "USDC", q.Get("defaultAsset"))
	assert.Equal(t, "base", q.Get("defaultNetwork"))
	assert.Equal(t, "buy", q.Get("defaultExperience"))
	assert.Equal(t, "CARD", q.Get("defaultPaymentMethod"))

	_, err = c.URL(context.Background(), Request{})
	assert.ErrorIs(t, err, common.ErrValidation)
	assert.Equal(t, int32(1), hits.Load())
}

func TestSessionTokenRejected(t *testing.T) {
	_, pemKey := newTestKey(t)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"message":"unauthorized"}`))
	}))
	defer srv.Close()

	c, err := NewClient(Config{KeyName: testKeyName, PrivateKey: pemKey, APIBaseURL: srv.URL})
	require.NoError(t, err)

	_, err = c.URL(context.Background(), Request{DestinationAddress: testAddress})
	require.ErrorIs(t, err, ErrSessionToken)
	assert.Contains(t, err.Error(), "401")
}
