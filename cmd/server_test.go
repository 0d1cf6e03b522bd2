package cmd_test

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"math/big"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TEENet-io/escrow-go/cmd"
	"github.com/TEENet-io/escrow-go/common"
)

// fakeNode answers eth_chainId, which is all the server needs at startup.
func fakeNode(t *testing.T, chainID *big.Int) *httptest.Server {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			ID     json.RawMessage `json:"id"`
			Method string          `json:"method"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		resp := map[string]interface{}{"jsonrpc": "2.0", "id": req.ID}
		if req.Method == "eth_chainId" {
			resp["result"] = "0x" + chainID.Text(16)
		} else {
			resp["error"] = map[string]interface{}{"code": -32601, "message": "method not found"}
		}
		_ = json.NewEncoder(w).Encode(resp)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newKeyHex(t *testing.T) string {
	sk, err := crypto.GenerateKey()
	require.NoError(t, err)
	return hex.EncodeToString(crypto.FromECDSA(sk))
}

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()

	dotenv := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(dotenv, []byte("CIRCLE_BASE_URL=https://circle.example\n"), 0o600))

	file := filepath.Join(dir, "escrow.yaml")
	require.NoError(t, os.WriteFile(file, []byte("HTTP_PORT: \"9000\"\nHTTP_IP: 10.0.0.1\nSOURCE_DOMAIN: \"6\"\n"), 0o600))

	t.Setenv(cmd.ENV_CONFIG_FILE_PATH, file)
	t.Setenv("HTTP_IP", "127.0.0.1")
	t.Setenv("RPC_URL", "http://localhost:8545")
	t.Setenv("CIRCLE_BASE_URL", "")
	os.Unsetenv("CIRCLE_BASE_URL")

	v, err := cmd.LoadConfig(dotenv)
	require.NoError(t, err)

	esc := cmd.PrepareEscrowServerConfig(v)
	assert.Equal(t, "http://localhost:8545", esc.RpcUrl)
	assert.Equal(t, "127.0.0.1", esc.HttpIp, "environment wins over the config file")
	assert.Equal(t, "9000", esc.HttpPort)
	assert.Equal(t, "6", esc.SourceDomain)
	assert.Equal(t, "https://circle.example", esc.CircleBaseUrl)
}

func TestLoadConfigWithoutFiles(t *testing.T) {
	t.Setenv(cmd.ENV_CONFIG_FILE_PATH, filepath.Join(t.TempDir(), "missing.yaml"))
	t.Setenv("HTTP_PORT", "8081")

	v, err := cmd.LoadConfig(filepath.Join(t.TempDir(), ".env"))
	require.NoError(t, err)
	assert.Equal(t, "8081", cmd.PrepareEscrowServerConfig(v).HttpPort)
}

func TestNewEscrowServer(t *testing.T) {
	node := fakeNode(t, common.PolygonAmoyChainID)

	srv, err := cmd.NewEscrowServer(context.Background(), &cmd.EscrowServerConfig{
		RpcUrl:             node.URL,
		DeployerPrivateKey: newKeyHex(t),
		SourcePrivateKey:   newKeyHex(t),
		HttpIp:             "127.0.0.1",
		HttpPort:           "0",
	})
	require.NoError(t, err)
	defer srv.Close()

	assert.Equal(t, 0, srv.DestEnv.ChainID().Cmp(common.PolygonAmoyChainID))
	assert.NotNil(t, srv.MyBurner)
	assert.NotNil(t, srv.MyEthTxMgr.Relayer(), "relayer falls back to the deployer key")

	router := srv.Reporter.SetupRouter()

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/hello", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	// optional integrations are off without credentials
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/wallet/transactions/0b7ff1c6-5c5d-4f25-8a4f-7e6b1f4f2d11", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "CIRCLE_API_KEY")
}

func TestNewEscrowServerWithoutKeys(t *testing.T) {
	node := fakeNode(t, common.PolygonAmoyChainID)

	srv, err := cmd.NewEscrowServer(context.Background(), &cmd.EscrowServerConfig{RpcUrl: node.URL})
	require.NoError(t, err)
	defer srv.Close()

	assert.Nil(t, srv.MyBurner)
	assert.Nil(t, srv.MyEthTxMgr.Relayer())
}

func TestNewEscrowServerRejectsConfig(t *testing.T) {
	node := fakeNode(t, common.PolygonAmoyChainID)

	t.Run("wrong chain", func(t *testing.T) {
		_, err := cmd.NewEscrowServer(context.Background(), &cmd.EscrowServerConfig{
			RpcUrl:          node.URL,
			ExpectedChainId: "84532",
		})
		var mismatch *common.ChainMismatchError
		require.ErrorAs(t, err, &mismatch)
	})

	t.Run("missing rpc", func(t *testing.T) {
		_, err := cmd.NewEscrowServer(context.Background(), &cmd.EscrowServerConfig{})
		assert.ErrorIs(t, err, common.ErrConfiguration)
	})

	t.Run("bad number", func(t *testing.T) {
		_, err := cmd.NewEscrowServer(context.Background(), &cmd.EscrowServerConfig{
			RpcUrl:                 node.URL,
			AttestationMaxAttempts: "many",
		})
		assert.ErrorIs(t, err, common.ErrValidation)
	})

	t.Run("bad key", func(t *testing.T) {
		_, err := cmd.NewEscrowServer(context.Background(), &cmd.EscrowServerConfig{
			RpcUrl:             node.URL,
			DeployerPrivateKey: "0x1234",
		})
		assert.ErrorIs(t, err, common.ErrValidation)
	})
}

func TestEscrowServerRunStops(t *testing.T) {
	node := fakeNode(t, common.PolygonAmoyChainID)

	srv, err := cmd.NewEscrowServer(context.Background(), &cmd.EscrowServerConfig{
		RpcUrl:   node.URL,
		HttpIp:   "127.0.0.1",
		HttpPort: "0",
	})
	require.NoError(t, err)
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Run(ctx) }()

	time.Sleep(100 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}
