package Escrow

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseArtifact(t *testing.T) {
	hardhat := []byte(`{"abi":[],"bytecode":"0x6080604052"}`)
	a, err := ParseArtifact(hardhat)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x60, 0x80, 0x60, 0x40, 0x52}, a.Bytecode)

	foundry := []byte(`{"abi":[],"bytecode":{"object":"0x6080604052","sourceMap":""}}`)
	a, err = ParseArtifact(foundry)
	require.NoError(t, err)
	assert.Len(t, a.Bytecode, 5)

	_, err = ParseArtifact([]byte(`{"abi":[],"bytecode":"0x"}`))
	assert.ErrorIs(t, err, ErrEmptyBytecode)

	_, err = ParseArtifact([]byte(`not json`))
	assert.Error(t, err)
}

func TestEscrowABI(t *testing.T) {
	parsed, err := EscrowMetaData.GetAbi()
	require.NoError(t, err)
	for _, m := range []string{
		"stage", "depositor", "beneficiary", "amount",
		"depositorReleaseOk", "beneficiaryReleaseOk", "depositorRefundOk", "beneficiaryRefundOk",
		"deposit", "approveRelease", "approveRefund",
	} {
		_, ok := parsed.Methods[m]
		assert.True(t, ok, m)
	}
	assert.Len(t, parsed.Constructor.Inputs, 3)
}
