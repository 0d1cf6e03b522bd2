package attestation

import (
	"math/big"
	"testing"

	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testBurnMessage() *BurnMessage {
	h := &MessageHeader{
		Version:                   1,
		SourceDomain:              6,
		DestinationDomain:         7,
		MinFinalityThreshold:      2000,
		FinalityThresholdExecuted: 2000,
	}
	h.Nonce[31] = 0x2a
	h.Recipient[31] = 0x01

	return &BurnMessage{
		Header:          h,
		Version:         1,
		BurnToken:       ethcommon.HexToAddress("0x036CbD53842c5426634e7929541eC2318f3dCF7e"),
		MintRecipient:   ethcommon.HexToAddress("0x00000000000000000000000000000000000000e5"),
		Amount:          big.NewInt(2_000_000),
		MessageSender:   ethcommon.HexToAddress("0x00000000000000000000000000000000000000a1"),
		MaxFee:          big.NewInt(0),
		FeeExecuted:     big.NewInt(0),
		ExpirationBlock: big.NewInt(0),
		HookData:        []byte{0xde, 0xad},
	}
}

func TestBurnMessageLayout(t *testing.T) {
	raw := testBurnMessage().Encode()
	require.Len(t, raw, headerLen+burnBodyLen+2)

	// fixed offsets
	assert.Equal(t, []byte{0, 0, 0, 6}, raw[4:8])
	assert.Equal(t, []byte{0, 0, 0, 7}, raw[8:12])
	assert.Equal(t, byte(0x2a), raw[43])

	got, err := ParseBurnMessage(raw)
	require.NoError(t, err)
	assert.Equal(t, uint32(6), got.Header.SourceDomain)
	assert.Equal(t, uint32(7), got.Header.DestinationDomain)
	assert.Equal(t, uint32(2000), got.Header.MinFinalityThreshold)
	assert.Equal(t, ethcommon.HexToAddress("0x00000000000000000000000000000000000000e5"), got.MintRecipient)
	assert.Equal(t, int64(2_000_000), got.Amount.Int64())
	assert.Equal(t, []byte{0xde, 0xad}, got.HookData)

	d := got.Decoded()
	assert.Equal(t, "2000000", d.Amount)
	assert.Equal(t, got.MintRecipient.Hex(), d.MintRecipient)
}

func TestParseShortMessages(t *testing.T) {
	_, err := ParseMessageHeader(make([]byte, headerLen-1))
	assert.ErrorIs(t, err, ErrMessageTooShort)

	_, err = ParseBurnMessage(make([]byte, headerLen+10))
	assert.ErrorIs(t, err, ErrBodyTooShort)

	h, err := ParseMessageHeader(make([]byte, headerLen))
	require.NoError(t, err)
	assert.Empty(t, h.Body)
}

func TestToAttestedDecodesBodyWhenIrisOmitsIt(t *testing.T) {
	raw := testBurnMessage().Encode()
	m := Message{
		Message:     ethcommon.Bytes2Hex(raw),
		Attestation: "0x0102",
		Status:      StatusComplete,
		CctpVersion: "2",
	}

	got, err := toAttested(m)
	require.NoError(t, err)
	assert.Equal(t, raw, got.Message)
	assert.Equal(t, "2000000", got.Decoded.Amount)
}
