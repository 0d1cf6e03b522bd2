package etherman

import (
	"crypto/ecdsa"
	"math/big"
	"strings"

	"github.com/TEENet-io/escrow-go/common"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/crypto"
)

// NewAuth creates a keyed transactor. It panics on a nil key, which is a
// programming error rather than a runtime condition.
func NewAuth(sk *ecdsa.PrivateKey, chainID *big.Int) *bind.TransactOpts {
	auth, err := bind.NewKeyedTransactorWithChainID(sk, chainID)
	if err != nil {
		panic(err)
	}
	return auth
}

// StringToPrivateKey parses a hex encoded secp256k1 key, with or without 0x.
func StringToPrivateKey(s string) (*ecdsa.PrivateKey, error) {
	return crypto.HexToECDSA(common.Trim0xPrefix(strings.TrimSpace(s)))
}

// AuthFromHex builds a transactor from a configured key; name is the config
// key reported when the value is missing.
func AuthFromHex(name, hexKey string, chainID *big.Int) (*bind.TransactOpts, error) {
	if strings.TrimSpace(hexKey) == "" {
		return nil, common.NewConfigurationError(name)
	}
	sk, err := StringToPrivateKey(hexKey)
	if err != nil {
		return nil, common.NewValidationError("%s is not a valid private key", name)
	}
	return bind.NewKeyedTransactorWithChainID(sk, chainID)
}
