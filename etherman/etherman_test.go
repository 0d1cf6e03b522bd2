package etherman

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"testing"

	"github.com/TEENet-io/escrow-go/common"
	"github.com/ethereum/go-ethereum/accounts/abi"
	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChainIDCheck(t *testing.T) {
	sim := NewSimulatedChain()
	defer sim.Close()

	etherman, err := sim.Etherman(nil)
	require.NoError(t, err)
	assert.Equal(t, SimulatedChainID, etherman.ChainID())

	_, err = sim.Etherman(common.PolygonAmoyChainID)
	var mismatch *common.ChainMismatchError
	require.True(t, errors.As(err, &mismatch))
	assert.Equal(t, common.PolygonAmoyChainID, mismatch.Expected)
	assert.Equal(t, SimulatedChainID, mismatch.Actual)
}

func TestNewEthermanWithoutURL(t *testing.T) {
	_, err := NewEtherman(context.Background(), &Config{})
	assert.ErrorIs(t, err, common.ErrConfiguration)
}

func TestWaitMined(t *testing.T) {
	sim := NewSimulatedChain()
	defer sim.Close()
	etherman, err := sim.Etherman(nil)
	require.NoError(t, err)

	ctx := context.Background()
	from := sim.Accounts[0]
	to := sim.Accounts[1].From

	nonce, err := etherman.Client().PendingNonceAt(ctx, from.From)
	require.NoError(t, err)
	gasPrice, err := etherman.Client().SuggestGasPrice(ctx)
	require.NoError(t, err)

	tx := types.NewTx(&types.LegacyTx{
		Nonce:    nonce,
		To:       &to,
		Value:    big.NewInt(1000),
		Gas:      21000,
		GasPrice: gasPrice,
	})
	signed, err := from.Signer(from.From, tx)
	require.NoError(t, err)
	require.NoError(t, etherman.Client().SendTransaction(ctx, signed))
	sim.Backend.Commit()

	receipt, err := etherman.WaitMined(ctx, signed)
	require.NoError(t, err)
	assert.Equal(t, types.ReceiptStatusSuccessful, receipt.Status)

	balance, err := etherman.GetBalance(ctx, to)
	require.NoError(t, err)
	assert.Equal(t, 1, balance.Cmp(big.NewInt(100)))
}

func TestChainRegistry(t *testing.T) {
	sim := NewSimulatedChain()
	defer sim.Close()

	dialed := 0
	registry := NewChainRegistry(func(ctx context.Context, url string) (Backend, error) {
		dialed++
		return sim.Backend.Client(), nil
	})

	ctx := context.Background()
	_, err := registry.Active()
	assert.ErrorIs(t, err, ErrNoActiveChain)

	err = registry.SwitchChain(ctx, SimulatedChainID)
	assert.ErrorIs(t, err, ErrUnrecognizedChain)

	err = registry.AddChain(ctx, &ChainDefinition{ChainID: SimulatedChainID, ChainName: "sim", RPCURL: "sim://"})
	require.NoError(t, err)
	assert.Equal(t, 1, dialed)

	require.NoError(t, registry.SwitchChain(ctx, SimulatedChainID))
	active, err := registry.Active()
	require.NoError(t, err)
	assert.Equal(t, SimulatedChainID, active.ChainID())

	err = registry.AddChain(ctx, BaseSepoliaDefinition("sim://"))
	var mismatch *common.ChainMismatchError
	assert.True(t, errors.As(err, &mismatch))
}

type rpcDataError struct {
	msg  string
	data string
}

func (e *rpcDataError) Error() string          { return e.msg }
func (e *rpcDataError) ErrorData() interface{} { return e.data }

func TestRevertReason(t *testing.T) {
	stringType, err := abi.NewType("string", "", nil)
	require.NoError(t, err)
	packed, err := abi.Arguments{{Type: stringType}}.Pack("Nonce already used")
	require.NoError(t, err)
	selector := crypto.Keccak256([]byte("Error(string)"))[:4]
	data := ethcommon.Bytes2Hex(append(selector, packed...))

	err = fmt.Errorf("estimate gas: %w", &rpcDataError{msg: "execution reverted", data: "0x" + data})
	assert.Equal(t, "Nonce already used", RevertReason(err))

	assert.Equal(t, "Message already processed", RevertReason(errors.New("execution reverted: Message already processed")))
	assert.Equal(t, "boom", RevertReason(errors.New("boom")))
	assert.Equal(t, "", RevertReason(nil))
}

func TestSendError(t *testing.T) {
	dial := errors.Join(ErrEthermanDial, errors.New("dial tcp 127.0.0.1:8545: connect: connection refused"))
	assert.False(t, IsRevert(dial))
	assert.Same(t, dial, SendError(dial))

	timeout := fmt.Errorf("send tx: %w", context.DeadlineExceeded)
	assert.ErrorIs(t, SendError(timeout), context.DeadlineExceeded)
	var revert *common.ChainRevertError
	assert.False(t, errors.As(SendError(timeout), &revert))

	err := SendError(errors.New("execution reverted: not a party"))
	require.True(t, errors.As(err, &revert))
	assert.Equal(t, "not a party", revert.Reason)

	err = SendError(&rpcDataError{msg: "reverted", data: "0x"})
	assert.True(t, errors.As(err, &revert))

	assert.NoError(t, SendError(nil))
}

func TestAuthFromHex(t *testing.T) {
	_, err := AuthFromHex("DEPLOYER_PRIVATE_KEY", "", SimulatedChainID)
	assert.ErrorIs(t, err, common.ErrConfiguration)

	_, err = AuthFromHex("DEPLOYER_PRIVATE_KEY", "0xzz", SimulatedChainID)
	assert.ErrorIs(t, err, common.ErrValidation)

	sk, err := crypto.GenerateKey()
	require.NoError(t, err)
	auth, err := AuthFromHex("DEPLOYER_PRIVATE_KEY", "0x"+ethcommon.Bytes2Hex(crypto.FromECDSA(sk)), SimulatedChainID)
	require.NoError(t, err)
	assert.Equal(t, crypto.PubkeyToAddress(sk.PublicKey), auth.From)
}
