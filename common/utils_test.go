package common

import (
	"encoding/json"
	"errors"
	"math/big"
	"strings"
	"testing"

	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddressToBytes32(t *testing.T) {
	addr := ethcommon.HexToAddress("0x00000000000000000000000000000000000000ff")
	b := AddressToBytes32(addr)
	assert.Equal(t, byte(0xff), b[31])
	for i := 0; i < 12; i++ {
		assert.Equal(t, byte(0), b[i])
	}
	assert.Equal(t, addr, Bytes32ToAddress(b))

	rnd := RandEthAddress()
	assert.Equal(t, rnd, Bytes32ToAddress(AddressToBytes32(rnd)))
}

func TestValidators(t *testing.T) {
	assert.True(t, IsHexAddress("0x"+strings.Repeat("aB", 20)))
	assert.False(t, IsHexAddress(strings.Repeat("ab", 20)))
	assert.False(t, IsHexAddress("0x"+strings.Repeat("ab", 19)))
	assert.False(t, IsHexAddress("0x"+strings.Repeat("zz", 20)))

	assert.True(t, IsTxHash(RandTxHash().Hex()))
	assert.False(t, IsTxHash("0x1234"))
	assert.False(t, IsTxHash(Trim0xPrefix(RandTxHash().Hex())))

	assert.True(t, IsUUID("0f8fad5b-d9cb-469f-a165-70867728950e"))
	assert.False(t, IsUUID("0f8fad5bd9cb469fa16570867728950e"))
	assert.False(t, IsUUID("not-a-uuid"))
}

func TestUSDCUnits(t *testing.T) {
	units, err := ToUSDCUnits(decimal.NewFromInt(2))
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(2_000_000), units)

	units, err = ToUSDCUnits(decimal.RequireFromString("1.2345675"))
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(1_234_568), units)

	_, err = ToUSDCUnits(decimal.NewFromInt(-1))
	assert.ErrorIs(t, err, ErrValidation)

	assert.True(t, decimal.RequireFromString("2.5").Equal(FromUSDCUnits(big.NewInt(2_500_000))))
}

func TestParseUSDCAmount(t *testing.T) {
	d, err := ParseUSDCAmount(" 0.000001 ")
	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("0.000001").Equal(d))

	d, err = ParseUSDCAmount("1.2345675")
	require.NoError(t, err)
	assert.Equal(t, "1.234568", d.String())

	for _, in := range []string{"abc", "", "0", "-1"} {
		_, err = ParseUSDCAmount(in)
		assert.ErrorIs(t, err, ErrValidation, in)
	}
}

func TestWalletAddressNormalization(t *testing.T) {
	mixed := "0xAbCdEf0123456789aBcDeF0123456789AbCdEf01"
	lower := strings.ToLower(mixed)

	var fromString WalletAddress
	require.NoError(t, json.Unmarshal([]byte(`"`+mixed+`"`), &fromString))
	assert.Equal(t, lower, fromString.String())

	var fromObject WalletAddress
	require.NoError(t, json.Unmarshal([]byte(`{"evmAddress":"`+mixed+`"}`), &fromObject))
	assert.Equal(t, fromString, fromObject)

	var bad WalletAddress
	err := json.Unmarshal([]byte(`"0x1234"`), &bad)
	assert.True(t, errors.Is(err, ErrValidation))

	n, err := NormalizeAddress(map[string]interface{}{"evmAddress": mixed})
	require.NoError(t, err)
	assert.Equal(t, ethcommon.HexToAddress(mixed), n.Address())

	_, err = NormalizeAddress(42)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestErrorTaxonomy(t *testing.T) {
	var err error = &InvalidStageError{Stage: "OPEN", Required: "FUNDED"}
	assert.ErrorIs(t, err, ErrInvalidStage)

	err = &UnauthorizedError{Caller: RandEthAddress()}
	assert.ErrorIs(t, err, ErrUnauthorized)

	err = &ChainRevertError{Reason: "Nonce already used"}
	assert.Equal(t, "Nonce already used", ErrorReason(err))

	err = NewConfigurationError("RPC_URL")
	assert.ErrorIs(t, err, ErrConfiguration)
	assert.Contains(t, err.Error(), "RPC_URL is not set")

	mismatch := &ChainMismatchError{Expected: big.NewInt(80002), Actual: big.NewInt(1337)}
	assert.Equal(t, "connected to chainId=1337, expected CHAIN_ID=80002", mismatch.Error())
}
