package burner

import (
	"math/big"

	"github.com/TEENet-io/escrow-go/common"
	"github.com/TEENet-io/escrow-go/etherman"
	ethcommon "github.com/ethereum/go-ethereum/common"
)

type Config struct {
	// Chain the burn happens on; added to the wallet when unknown
	SourceChain *etherman.ChainDefinition

	// CCTP domain of the chain the escrow lives on
	DestinationDomain uint32

	BurnToken      ethcommon.Address
	TokenMessenger ethcommon.Address

	// zero selects the no-fee standard transfer tier
	MaxFee *big.Int

	MinFinalityThreshold uint32

	// Set allowance to zero before raising it, for tokens that refuse a
	// non-zero to non-zero approve
	ResetStaleAllowance bool
}

// DefaultConfig burns USDC on Base Sepolia for a mint on Polygon Amoy.
func DefaultConfig(sourceRPC string) *Config {
	return &Config{
		SourceChain:          etherman.BaseSepoliaDefinition(sourceRPC),
		DestinationDomain:    common.PolygonAmoyDomain,
		BurnToken:            ethcommon.HexToAddress(common.BaseSepoliaUSDC),
		TokenMessenger:       ethcommon.HexToAddress(common.TokenMessengerV2Testnet),
		MaxFee:               big.NewInt(0),
		MinFinalityThreshold: common.StandardMinFinality,
	}
}
