package etherman

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	logger "github.com/sirupsen/logrus"
)

// RealEthChain is a connected chain plus the server controlled account that
// signs on it (escrow deployer, CCTP relayer or burner).
type RealEthChain struct {
	Etherman    *Etherman
	ChainId     *big.Int
	CoreAccount *bind.TransactOpts
}

// rpcURL: the json rpc to connect to.
// keyName/privKey: config key and hex value of the signing key; an empty key
// is a configuration error.
// expectedChainID: nil to accept whatever the node reports.
func NewRealEthChain(
	ctx context.Context,
	rpcURL string,
	keyName string,
	privKey string,
	expectedChainID *big.Int,
) (*RealEthChain, error) {
	etherman, err := NewEtherman(ctx, &Config{URL: rpcURL, ExpectedChainID: expectedChainID})
	if err != nil {
		return nil, err
	}

	chainID := etherman.ChainID()
	coreAccount, err := AuthFromHex(keyName, privKey, chainID)
	if err != nil {
		etherman.Close()
		return nil, err
	}

	logger.WithFields(logger.Fields{
		"chain_id": chainID,
		"account":  coreAccount.From.Hex(),
	}).Info("connected to chain")

	return &RealEthChain{
		Etherman:    etherman,
		ChainId:     chainID,
		CoreAccount: coreAccount,
	}, nil
}

func (c *RealEthChain) Close() {
	c.Etherman.Close()
}
