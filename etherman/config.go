package etherman

import "math/big"

type Config struct {
	// URL is the URL of the Ethereum node
	URL string

	// ExpectedChainID, if set, must match eth_chainId of the node
	ExpectedChainID *big.Int
}
