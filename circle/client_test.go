package circle

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"crypto/x509"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"encoding/pem"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/TEENet-io/escrow-go/common"
	"github.com/TEENet-io/escrow-go/metrics"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testAPIKey     = "TEST_API_KEY:abc:def"
	testEscrow     = "0x5fbdb2315678afecb367f032d93f642f64180aa3"
	testToken      = "0x41e94eb019c0762f9bfcf9fb1e58725bfb0e7582"
	testContractID = "0189db84-72b7-7fcc-832b-5bf886b9a0ae"
	testTxID       = "ad3f40ae-9c0e-52cf-816f-a2d3f5d2c4e1"
)

var testEntitySecret = strings.Repeat("ab", 32)

// fakeCircle records what it receives and answers like the w3s API.
type fakeCircle struct {
	t   *testing.T
	key *rsa.PrivateKey

	mu            sync.Mutex
	publicKeyHits int
	executions    []ContractExecutionRequest
	requestIDs    []string
	transaction   map[string]interface{}
}

func newFakeCircle(t *testing.T) (*fakeCircle, *Client) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	f := &fakeCircle{t: t, key: key}

	srv := httptest.NewServer(f)
	t.Cleanup(srv.Close)

	c, err := NewClient(Config{
		BaseURL:      srv.URL,
		APIKey:       testAPIKey,
		EntitySecret: testEntitySecret,
		BaseBackoff:  time.Millisecond,
	})
	require.NoError(t, err)
	c.SetMetrics(metrics.NewRegistry())
	return f, c
}

func (f *fakeCircle) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	assert.Equal(f.t, "Bearer "+testAPIKey, r.Header.Get("Authorization"))
	f.mu.Lock()
	f.requestIDs = append(f.requestIDs, r.Header.Get("X-Request-ID"))
	f.mu.Unlock()

	switch {
	case r.Method == http.MethodGet && r.URL.Path == publicKeyEndpoint:
		f.mu.Lock()
		f.publicKeyHits++
		f.mu.Unlock()
		der, err := x509.MarshalPKIXPublicKey(&f.key.PublicKey)
		assert.NoError(f.t, err)
		pemKey := pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: der})
		writeData(w, map[string]string{"publicKey": string(pemKey)})

	case r.Method == http.MethodGet && r.URL.Path == contractsEndpoint+"/"+testContractID:
		writeData(w, map[string]interface{}{
			"contract": map[string]string{"id": testContractID, "contractAddress": testEscrow},
		})

	case r.Method == http.MethodPost && r.URL.Path == contractExecutionEndpoint:
		var req ContractExecutionRequest
		assert.NoError(f.t, json.NewDecoder(r.Body).Decode(&req))
		f.mu.Lock()
		f.executions = append(f.executions, req)
		f.mu.Unlock()
		writeData(w, map[string]string{"id": testTxID, "state": "INITIATED"})

	case r.Method == http.MethodGet && r.URL.Path == transactionsEndpoint+"/"+testTxID:
		f.mu.Lock()
		tx := f.transaction
		f.mu.Unlock()
		if tx == nil {
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"code":156004,"message":"Cannot find target transaction"}`))
			return
		}
		writeData(w, map[string]interface{}{"transaction": tx})

	default:
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"code":-1,"message":"not found"}`))
	}
}

func (f *fakeCircle) setTransaction(tx map[string]interface{}) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.transaction = tx
}

func (f *fakeCircle) recorded() ([]ContractExecutionRequest, []string, int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]ContractExecutionRequest(nil), f.executions...), append([]string(nil), f.requestIDs...), f.publicKeyHits
}

func (f *fakeCircle) decrypt(t *testing.T, ciphertext string) string {
	b, err := base64.StdEncoding.DecodeString(ciphertext)
	require.NoError(t, err)
	plain, err := rsa.DecryptOAEP(sha256.New(), nil, f.key, b, nil)
	require.NoError(t, err)
	return hex.EncodeToString(plain)
}

func writeData(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]interface{}{"data": data})
}

func TestNewClientRequiresAPIKey(t *testing.T) {
	_, err := NewClient(Config{})
	assert.ErrorIs(t, err, common.ErrConfiguration)
}

func TestGetContract(t *testing.T) {
	f, c := newFakeCircle(t)
	ctx := context.Background()

	addr, err := c.GetContract(ctx, testContractID)
	require.NoError(t, err)
	assert.Equal(t, testEscrow, addr)
	_, ids, _ := f.recorded()
	require.Len(t, ids, 1)
	assert.True(t, common.IsUUID(ids[0]))

	_, err = c.GetContract(ctx, "0189db84-0000-0000-0000-000000000000")
	assert.ErrorIs(t, err, ErrContractNotFound)

	_, err = c.GetContract(ctx, " ")
	assert.ErrorIs(t, err, common.ErrValidation)
}

func TestCreateContractExecution(t *testing.T) {
	f, c := newFakeCircle(t)
	ctx := context.Background()

	req := ContractExecutionRequest{
		WalletID:             "wallet-1",
		ContractAddress:      testEscrow,
		AbiFunctionSignature: "deposit()",
	}
	res, err := c.CreateContractExecution(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, testTxID, res.ID)
	assert.Equal(t, "INITIATED", res.State)

	_, err = c.CreateContractExecution(ctx, req)
	require.NoError(t, err)

	// public key is fetched once, every request carries a fresh secret
	// ciphertext and idempotency key
	executions, _, publicKeyHits := f.recorded()
	assert.Equal(t, 1, publicKeyHits)
	require.Len(t, executions, 2)
	a, b := executions[0], executions[1]
	assert.True(t, common.IsUUID(a.IdempotencyKey))
	assert.NotEqual(t, a.IdempotencyKey, b.IdempotencyKey)
	assert.NotEqual(t, a.EntitySecretCiphertext, b.EntitySecretCiphertext)
	assert.Equal(t, testEntitySecret, f.decrypt(t, a.EntitySecretCiphertext))
	assert.Equal(t, testEntitySecret, f.decrypt(t, b.EntitySecretCiphertext))
	assert.NotNil(t, a.AbiParameters)
	assert.Empty(t, a.AbiParameters)
}

func TestCreateContractExecutionValidation(t *testing.T) {
	f, c := newFakeCircle(t)

	_, err := c.CreateContractExecution(context.Background(), ContractExecutionRequest{WalletID: "wallet-1"})
	assert.ErrorIs(t, err, common.ErrValidation)

	c.cfg.EntitySecret = "not-hex"
	_, err = c.CreateContractExecution(context.Background(), ContractExecutionRequest{
		WalletID:             "wallet-1",
		ContractAddress:      testEscrow,
		AbiFunctionSignature: "deposit()",
	})
	assert.ErrorIs(t, err, common.ErrConfiguration)
	executions, _, _ := f.recorded()
	assert.Empty(t, executions)
}

func TestGetTransaction(t *testing.T) {
	f, c := newFakeCircle(t)
	ctx := context.Background()

	_, err := c.GetTransaction(ctx, testTxID)
	assert.ErrorIs(t, err, ErrTransactionNotFound)

	complete := map[string]interface{}{
		"id":              testTxID,
		"amounts":         []string{"2"},
		"state":           "COMPLETE",
		"createDate":      "2025-01-01T00:00:00Z",
		"blockchain":      "MATIC-AMOY",
		"transactionType": "OUTBOUND",
		"updateDate":      "2025-01-01T00:01:00Z",
		"extra":           "ignored",
	}
	f.setTransaction(complete)
	tx, err := c.GetTransaction(ctx, testTxID)
	require.NoError(t, err)
	assert.Equal(t, testTxID, tx.ID)
	assert.Equal(t, []string{"2"}, tx.Amounts)
	assert.Equal(t, "COMPLETE", tx.State)
	assert.Equal(t, "MATIC-AMOY", tx.Blockchain)

	incomplete := map[string]interface{}{}
	for k, v := range complete {
		if k != "blockchain" {
			incomplete[k] = v
		}
	}
	f.setTransaction(incomplete)
	_, err = c.GetTransaction(ctx, testTxID)
	assert.ErrorIs(t, err, ErrSchemaMismatch)

	_, before, _ := f.recorded()
	_, err = c.GetTransaction(ctx, "not-a-uuid")
	assert.ErrorIs(t, err, common.ErrValidation)
	_, after, _ := f.recorded()
	assert.Len(t, after, len(before))
}

func TestRetry(t *testing.T) {
	var hits, status atomic.Int32
	status.Store(http.StatusServiceUnavailable)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits.Add(1) < 3 {
			w.WriteHeader(int(status.Load()))
			_, _ = w.Write([]byte(`{"code":1,"message":"try later"}`))
			return
		}
		writeData(w, map[string]interface{}{
			"contract": map[string]string{"contractAddress": testEscrow},
		})
	}))
	defer srv.Close()

	c, err := NewClient(Config{BaseURL: srv.URL, APIKey: testAPIKey, BaseBackoff: time.Millisecond})
	require.NoError(t, err)

	addr, err := c.GetContract(context.Background(), testContractID)
	require.NoError(t, err)
	assert.Equal(t, testEscrow, addr)
	assert.Equal(t, int32(3), hits.Load())

	// client errors are final
	hits.Store(0)
	status.Store(http.StatusBadRequest)
	_, err = c.GetContract(context.Background(), testContractID)
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
	assert.Equal(t, "try later", apiErr.Message)
	assert.Equal(t, int32(1), hits.Load())
}

func TestRetryGivesUp(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	c, err := NewClient(Config{BaseURL: srv.URL, APIKey: testAPIKey, MaxRetries: 2, BaseBackoff: time.Millisecond})
	require.NoError(t, err)

	_, err = c.GetContract(context.Background(), testContractID)
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.True(t, apiErr.IsRetryable())
	assert.Equal(t, int32(3), hits.Load())
}

func TestBackoff(t *testing.T) {
	c := &Client{cfg: Config{BaseBackoff: time.Second}}

	for attempt, want := range []time.Duration{time.Second, 2 * time.Second, 4 * time.Second} {
		d := c.backoff(attempt, 0)
		assert.InDelta(t, float64(want), float64(d), float64(want)/10+1)
	}
	assert.InDelta(t, float64(maxBackoff), float64(c.backoff(10, 0)), float64(maxBackoff)/10+1)
	assert.InDelta(t, float64(maxRetryAfter), float64(c.backoff(0, 5*time.Minute)), float64(maxRetryAfter)/10+1)
}

func TestEscrowFunder(t *testing.T) {
	f, c := newFakeCircle(t)
	ctx := context.Background()

	_, err := NewEscrowFunder(c, "")
	assert.ErrorIs(t, err, common.ErrConfiguration)

	funder, err := NewEscrowFunder(c, testToken)
	require.NoError(t, err)

	res, err := funder.ApproveDeposit(ctx, testContractID, "depositor-wallet", decimal.NewFromInt(2))
	require.NoError(t, err)
	assert.Equal(t, testTxID, res.ID)

	res, err = funder.Deposit(ctx, testContractID, "depositor-wallet")
	require.NoError(t, err)
	assert.Equal(t, "INITIATED", res.State)

	executions, _, _ := f.recorded()
	require.Len(t, executions, 2)
	approve, deposit := executions[0], executions[1]

	assert.Equal(t, testToken, approve.ContractAddress)
	assert.Equal(t, "approve(address,uint256)", approve.AbiFunctionSignature)
	assert.Equal(t, []interface{}{testEscrow, "2000000"}, approve.AbiParameters)
	assert.Equal(t, FeeLevelHigh, approve.FeeLevel)
	assert.Equal(t, "depositor-wallet", approve.WalletID)

	assert.Equal(t, testEscrow, deposit.ContractAddress)
	assert.Equal(t, "deposit()", deposit.AbiFunctionSignature)
	assert.Empty(t, deposit.AbiParameters)
	assert.Equal(t, FeeLevelMedium, deposit.FeeLevel)

	_, err = funder.ApproveDeposit(ctx, testContractID, "depositor-wallet", decimal.Zero)
	assert.ErrorIs(t, err, common.ErrValidation)
	executions, _, _ = f.recorded()
	assert.Len(t, executions, 2)
}
