package reporter

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"math/big"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/TEENet-io/escrow-go/attestation"
	"github.com/TEENet-io/escrow-go/circle"
	"github.com/TEENet-io/escrow-go/common"
	"github.com/TEENet-io/escrow-go/escrowman"
	"github.com/TEENet-io/escrow-go/ethtxmanager"
	"github.com/TEENet-io/escrow-go/metrics"
	"github.com/TEENet-io/escrow-go/onramp"
	"github.com/TEENet-io/escrow-go/settlement"
	"github.com/TEENet-io/escrow-go/state"
	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	depositorHex   = "0x1111111111111111111111111111111111111111"
	beneficiaryHex = "0x2222222222222222222222222222222222222222"
	burnHashHex    = "0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"
	txID           = "0b7ff1c6-5c5d-4f25-8a4f-7e6b1f4f2d11"
)

type fakeSettlement struct {
	deploys   int
	finalizes int
	refreshes int

	lastFinalize settlement.FinalizeRequest
	deployErr    error
	finalizeErr  error
	finalized    *ethtxmanager.FinalizeResult

	records   map[string]*state.EscrowRecord
	lastStage escrowman.Stage
}

func (f *fakeSettlement) Record(consultID string) (*state.EscrowRecord, error) {
	rec, ok := f.records[consultID]
	if !ok {
		return nil, state.ErrEscrowNotFound
	}
	return rec, nil
}

func (f *fakeSettlement) Records(stage escrowman.Stage) ([]*state.EscrowRecord, error) {
	f.lastStage = stage
	out := []*state.EscrowRecord{}
	for _, rec := range f.records {
		if rec.Stage == stage {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (f *fakeSettlement) Deploy(_ context.Context, _ string, dep, ben ethcommon.Address, amt decimal.Decimal) (*escrowman.Deployment, error) {
	f.deploys++
	if f.deployErr != nil {
		return nil, f.deployErr
	}
	units, _ := common.ToUSDCUnits(amt)
	return &escrowman.Deployment{
		ContractAddress: ethcommon.HexToAddress("0x3333333333333333333333333333333333333333"),
		DeployTxHash:    ethcommon.HexToHash("0x01"),
		Depositor:       dep,
		Beneficiary:     ben,
		Amount:          units,
	}, nil
}

func (f *fakeSettlement) RefreshStatus(_ context.Context, contract ethcommon.Address) (*escrowman.Status, error) {
	f.refreshes++
	return &escrowman.Status{
		Contract: contract,
		Stage:    escrowman.StageOpen,
		Amount:   big.NewInt(1_000_000),
		Balance:  big.NewInt(0),
	}, nil
}

func (f *fakeSettlement) Finalize(_ context.Context, req settlement.FinalizeRequest) (*settlement.FinalizeOutcome, error) {
	f.finalizes++
	f.lastFinalize = req
	if f.finalizeErr != nil {
		return nil, f.finalizeErr
	}
	res := f.finalized
	if res == nil {
		res = &ethtxmanager.FinalizeResult{MintTxHash: ethcommon.HexToHash("0x02")}
	}
	return &settlement.FinalizeOutcome{
		Attested: &attestation.AttestedMessage{
			Decoded: attestation.DecodedMessageBody{MintRecipient: beneficiaryHex, Amount: "1000000"},
		},
		Result: res,
	}, nil
}

type fakeCircle struct {
	calls int
	err   error
	tx    *circle.Transaction
}

func (f *fakeCircle) ApproveDeposit(_ context.Context, _, _ string, _ decimal.Decimal) (*circle.ContractExecution, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return &circle.ContractExecution{ID: txID, State: "INITIATED"}, nil
}

func (f *fakeCircle) Deposit(_ context.Context, _, _ string) (*circle.ContractExecution, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return &circle.ContractExecution{ID: txID, State: "INITIATED"}, nil
}

func (f *fakeCircle) GetTransaction(_ context.Context, _ string) (*circle.Transaction, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.tx, nil
}

type fakeOnramp struct {
	calls int
	last  onramp.Request
}

func (f *fakeOnramp) URL(_ context.Context, req onramp.Request) (string, error) {
	f.calls++
	f.last = req
	return "https://pay.coinbase.com/buy?sessionToken=abc", nil
}

func newTestRouter(st *fakeSettlement, c *fakeCircle, o *fakeOnramp) (*gin.Engine, *metrics.Registry) {
	gin.SetMode(gin.TestMode)
	m := metrics.NewRegistry()
	h := NewHttpReporter("127.0.0.1", "0", st, m)
	if c != nil {
		h.SetCircle(c, c)
	}
	if o != nil {
		h.SetOnramp(o)
	}
	return h.SetupRouter(), m
}

func doJSON(t *testing.T, r http.Handler, method, path, body string) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()
	var reader *bytes.Reader
	if body != "" {
		reader = bytes.NewReader([]byte(body))
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	out := map[string]interface{}{}
	if rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	}
	return rec, out
}

func TestHello(t *testing.T) {
	r, _ := newTestRouter(&fakeSettlement{}, nil, nil)
	rec, out := doJSON(t, r, http.MethodGet, ROUTE_HELLO, "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "world", out["message"])
	assert.NotEmpty(t, rec.Header().Get(headerRequestID))
}

func TestDeploy(t *testing.T) {
	st := &fakeSettlement{}
	r, _ := newTestRouter(st, nil, nil)

	body := `{"agreement":{"depositor_wallet_address":"` + depositorHex + `","beneficiary_wallet_address":"` + beneficiaryHex + `"},"amountUSDC":2.5}`
	rec, out := doJSON(t, r, http.MethodPost, ROUTE_DEPLOY, body)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, true, out["success"])
	assert.Equal(t, "DEPLOYED", out["status"])
	assert.Equal(t, "0x3333333333333333333333333333333333333333", out["contractAddress"])
	assert.Equal(t, "2.5", out["amount"])
	addrs := out["addresses"].(map[string]interface{})
	assert.Equal(t, depositorHex, addrs["depositor"])
	assert.Equal(t, 1, st.deploys)
}

func TestDeployAcceptsWalletObjects(t *testing.T) {
	st := &fakeSettlement{}
	r, _ := newTestRouter(st, nil, nil)

	body := `{"agreement":{"depositor_wallet_address":{"evmAddress":"0x1111111111111111111111111111111111111111"},` +
		`"beneficiary_wallet_address":{"address":" 0x2222222222222222222222222222222222222222 "}},"amountUSDC":1}`
	rec, out := doJSON(t, r, http.MethodPost, ROUTE_DEPLOY, body)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	addrs := out["addresses"].(map[string]interface{})
	assert.Equal(t, depositorHex, addrs["depositor"])
	assert.Equal(t, beneficiaryHex, addrs["beneficiary"])
	assert.Equal(t, 1, st.deploys)

	body = `{"agreement":{"depositor_wallet_address":{"evmAddress":"0x12"},"beneficiary_wallet_address":"` + beneficiaryHex + `"},"amountUSDC":1}`
	rec, out = doJSON(t, r, http.MethodPost, ROUTE_DEPLOY, body)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Invalid Ethereum address format", out["error"])
	assert.Equal(t, 1, st.deploys)
}

func TestDeployRejectsMalformedInput(t *testing.T) {
	valid := `{"depositor_wallet_address":"` + depositorHex + `","beneficiary_wallet_address":"` + beneficiaryHex + `"}`
	tests := []struct {
		name string
		body string
		msg  string
	}{
		{"missing agreement", `{"amountUSDC":1}`, "Missing required fields"},
		{"missing amount", `{"agreement":` + valid + `}`, "Missing required fields"},
		{"bad depositor", `{"agreement":{"depositor_wallet_address":"0x12","beneficiary_wallet_address":"` + beneficiaryHex + `"},"amountUSDC":1}`, "Invalid Ethereum address format"},
		{"zero amount", `{"agreement":` + valid + `,"amountUSDC":0}`, "amountUSDC must be a positive number"},
		{"negative amount", `{"agreement":` + valid + `,"amountUSDC":-3}`, "amountUSDC must be a positive number"},
		{"not json", `{agreement`, "invalid JSON body"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := &fakeSettlement{}
			r, _ := newTestRouter(st, nil, nil)
			rec, out := doJSON(t, r, http.MethodPost, ROUTE_DEPLOY, tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, tt.msg, out["error"])
			assert.Equal(t, 0, st.deploys)
		})
	}
}

func TestDeployChainFailure(t *testing.T) {
	st := &fakeSettlement{deployErr: &common.ChainRevertError{Reason: "Escrow: amount is zero"}}
	r, _ := newTestRouter(st, nil, nil)

	body := `{"agreement":{"depositor_wallet_address":"` + depositorHex + `","beneficiary_wallet_address":"` + beneficiaryHex + `"},"amountUSDC":1}`
	rec, out := doJSON(t, r, http.MethodPost, ROUTE_DEPLOY, body)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "Failed to deploy escrow contract", out["error"])
	assert.Equal(t, "Escrow: amount is zero", out["details"])
}

func TestEscrowStatus(t *testing.T) {
	st := &fakeSettlement{}
	r, _ := newTestRouter(st, nil, nil)

	rec, _ := doJSON(t, r, http.MethodGet, "/escrow/0x1234/status", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, 0, st.refreshes)

	rec, out := doJSON(t, r, http.MethodGet, "/escrow/"+depositorHex+"/status", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, st.refreshes)
	assert.Equal(t, "OPEN", out["stage"])
	assert.Equal(t, "1", out["amountUSDC"])
}

func TestFinalize(t *testing.T) {
	st := &fakeSettlement{}
	r, _ := newTestRouter(st, nil, nil)

	rec, out := doJSON(t, r, http.MethodPost, ROUTE_FINALIZE, `{"txHash":"`+burnHashHex+`","expectedMintRecipient":"`+beneficiaryHex+`"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, true, out["ok"])
	assert.Equal(t, ethcommon.HexToHash("0x02").Hex(), out["mintTx"])
	decoded := out["decoded"].(map[string]interface{})
	assert.Equal(t, beneficiaryHex, decoded["mintRecipient"])

	assert.Equal(t, ethcommon.HexToHash(burnHashHex), st.lastFinalize.BurnTxHash)
	require.NotNil(t, st.lastFinalize.ExpectedMintRecipient)
	assert.Equal(t, ethcommon.HexToAddress(beneficiaryHex), *st.lastFinalize.ExpectedMintRecipient)
}

func TestFinalizeAlreadyProcessed(t *testing.T) {
	st := &fakeSettlement{finalized: &ethtxmanager.FinalizeResult{AlreadyProcessed: true}}
	r, _ := newTestRouter(st, nil, nil)

	rec, out := doJSON(t, r, http.MethodPost, ROUTE_FINALIZE, `{"txHash":"`+burnHashHex+`"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, ethtxmanager.AlreadyProcessed, out["mintTx"])
	assert.Nil(t, st.lastFinalize.ExpectedMintRecipient)
}

func TestFinalizeRejectsMalformedInput(t *testing.T) {
	tests := []struct {
		name string
		body string
		msg  string
	}{
		{"missing hash", `{}`, "Missing required fields"},
		{"short hash", `{"txHash":"0x1234"}`, "Valid txHash is required"},
		{"bad recipient", `{"txHash":"` + burnHashHex + `","expectedMintRecipient":"nope"}`, "Invalid expectedMintRecipient"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := &fakeSettlement{}
			r, _ := newTestRouter(st, nil, nil)
			rec, out := doJSON(t, r, http.MethodPost, ROUTE_FINALIZE, tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, false, out["ok"])
			assert.Equal(t, tt.msg, out["error"])
			assert.Equal(t, 0, st.finalizes)
		})
	}
}

func TestFinalizeFailure(t *testing.T) {
	st := &fakeSettlement{finalizeErr: &common.AttestationTimeoutError{}}
	r, _ := newTestRouter(st, nil, nil)

	rec, out := doJSON(t, r, http.MethodPost, ROUTE_FINALIZE, `{"txHash":"`+burnHashHex+`"}`)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, false, out["ok"])
	assert.NotEmpty(t, out["error"])

	st.finalizeErr = common.NewValidationError("mint recipient mismatch")
	rec, _ = doJSON(t, r, http.MethodPost, ROUTE_FINALIZE, `{"txHash":"`+burnHashHex+`"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDepositApprove(t *testing.T) {
	c := &fakeCircle{}
	r, _ := newTestRouter(&fakeSettlement{}, c, nil)

	rec, out := doJSON(t, r, http.MethodPost, ROUTE_DEPOSIT_APPROVE, `{"circle_contract_id":"c1","depositor_wallet_id":"w1","amountUSDC":10}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, txID, out["transactionId"])
	assert.Equal(t, "Funds deposit approval initiated", out["message"])

	rec, out = doJSON(t, r, http.MethodPost, ROUTE_DEPOSIT, `{"circle_contract_id":"c1","depositor_wallet_id":"w1"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "Funds deposit transaction initiated", out["message"])
	assert.Equal(t, 2, c.calls)

	rec, out = doJSON(t, r, http.MethodPost, ROUTE_DEPOSIT, `{"depositor_wallet_id":"w1"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Missing required fields", out["error"])

	rec, _ = doJSON(t, r, http.MethodPost, ROUTE_DEPOSIT_APPROVE, `{"circle_contract_id":"c1","depositor_wallet_id":"w1"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, 2, c.calls)
}

func TestDepositFailures(t *testing.T) {
	r, _ := newTestRouter(&fakeSettlement{}, nil, nil)
	rec, out := doJSON(t, r, http.MethodPost, ROUTE_DEPOSIT, `{"circle_contract_id":"c1","depositor_wallet_id":"w1"}`)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "Failed to initiate funds deposit", out["error"])
	assert.Contains(t, out["details"], "CIRCLE_API_KEY")

	c := &fakeCircle{err: &circle.APIError{StatusCode: http.StatusBadRequest, Message: "wallet not found"}}
	r, _ = newTestRouter(&fakeSettlement{}, c, nil)
	rec, out = doJSON(t, r, http.MethodPost, ROUTE_DEPOSIT_APPROVE, `{"circle_contract_id":"c1","depositor_wallet_id":"w1","amountUSDC":1}`)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "Failed to initiate deposit approval", out["error"])
}

func TestTransaction(t *testing.T) {
	c := &fakeCircle{tx: &circle.Transaction{ID: txID, State: "COMPLETE", Blockchain: "MATIC-AMOY"}}
	r, _ := newTestRouter(&fakeSettlement{}, c, nil)

	rec, out := doJSON(t, r, http.MethodGet, "/wallet/transactions/not-a-uuid", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Invalid transaction ID format", out["error"])
	assert.Equal(t, 0, c.calls)

	rec, out = doJSON(t, r, http.MethodGet, "/wallet/transactions/"+txID, "")
	require.Equal(t, http.StatusOK, rec.Code)
	tx := out["transaction"].(map[string]interface{})
	assert.Equal(t, "COMPLETE", tx["state"])

	c.err = circle.ErrTransactionNotFound
	rec, out = doJSON(t, r, http.MethodGet, "/wallet/transactions/"+txID, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Transaction not found", out["error"])

	c.err = errors.New("connection reset")
	rec, _ = doJSON(t, r, http.MethodGet, "/wallet/transactions/"+txID, "")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestOnrampURL(t *testing.T) {
	o := &fakeOnramp{}
	r, _ := newTestRouter(&fakeSettlement{}, nil, o)

	rec, out := doJSON(t, r, http.MethodPost, ROUTE_ONRAMP_URL, `{"network":"base"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "destination_address required", out["error"])
	assert.Equal(t, 0, o.calls)

	rec, out = doJSON(t, r, http.MethodPost, ROUTE_ONRAMP_URL, `{"destination_address":"`+depositorHex+`","asset":"usdc"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.HasPrefix(out["onramp_url"].(string), "https://pay.coinbase.com/buy"))
	assert.Equal(t, depositorHex, o.last.DestinationAddress)
	assert.Equal(t, "usdc", o.last.Asset)

	rec, _ = doJSON(t, r, http.MethodPost, ROUTE_ONRAMP_URL, `{"destination_address":{"evmAddress":"`+strings.ToUpper(beneficiaryHex[2:])+`"}}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code, "0x prefix is required")

	rec, _ = doJSON(t, r, http.MethodPost, ROUTE_ONRAMP_URL, `{"destination_address":{"evmAddress":"`+beneficiaryHex+`"}}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, beneficiaryHex, o.last.DestinationAddress)
	assert.Equal(t, 2, o.calls)
}

func TestConsultRecord(t *testing.T) {
	contract := ethcommon.HexToAddress("0x3333333333333333333333333333333333333333")
	st := &fakeSettlement{records: map[string]*state.EscrowRecord{
		"consult-1": {
			ContractAddress: contract,
			ConsultID:       "consult-1",
			DeployTxHash:    ethcommon.HexToHash("0x01"),
			Depositor:       ethcommon.HexToAddress(depositorHex),
			Beneficiary:     ethcommon.HexToAddress(beneficiaryHex),
			Amount:          big.NewInt(2_000_000),
			Stage:           escrowman.StageFunded,
			BurnTxHash:      ethcommon.HexToHash(burnHashHex),
		},
	}}
	r, _ := newTestRouter(st, nil, nil)

	rec, out := doJSON(t, r, http.MethodGet, "/escrow/consult/consult-1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, contract.Hex(), out["contractAddress"])
	assert.Equal(t, "FUNDED", out["stage"])
	assert.Equal(t, burnHashHex, strings.ToLower(out["burnTxHash"].(string)))

	rec, _ = doJSON(t, r, http.MethodGet, "/escrow/consult/consult-2", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec, out = doJSON(t, r, http.MethodGet, ROUTE_ESCROWS+"?stage=funded", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, escrowman.StageFunded, st.lastStage)
	assert.Len(t, out["escrows"], 1)

	rec, out = doJSON(t, r, http.MethodGet, ROUTE_ESCROWS+"?stage=OPEN", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, out["escrows"], 0)

	rec, _ = doJSON(t, r, http.MethodGet, ROUTE_ESCROWS, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestMetricsRoute(t *testing.T) {
	r, _ := newTestRouter(&fakeSettlement{}, nil, nil)
	doJSON(t, r, http.MethodGet, ROUTE_HELLO, "")

	req := httptest.NewRequest(http.MethodGet, ROUTE_METRICS, nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `route="/hello"`)
}

func TestHttpReader(t *testing.T) {
	st := &fakeSettlement{}
	r, _ := newTestRouter(st, nil, nil)
	srv := httptest.NewServer(r)
	defer srv.Close()

	host, port, err := net.SplitHostPort(srv.Listener.Addr().String())
	require.NoError(t, err)
	reader := NewHttpReader(host, port)

	hello, err := reader.GetHello()
	require.NoError(t, err)
	assert.Contains(t, hello, "world")

	status, err := reader.GetEscrowStatus(context.Background(), depositorHex)
	require.NoError(t, err)
	assert.Equal(t, "OPEN", status["stage"])

	mintTx, err := reader.Finalize(context.Background(), burnHashHex, "")
	require.NoError(t, err)
	assert.Equal(t, ethcommon.HexToHash("0x02").Hex(), mintTx)

	_, err = reader.Finalize(context.Background(), "0x12", "")
	var rerr *ReaderError
	require.ErrorAs(t, err, &rerr)
	assert.Equal(t, http.StatusBadRequest, rerr.StatusCode)
}
