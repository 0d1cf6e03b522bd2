package escrowman

import (
	"math/big"

	ethcommon "github.com/ethereum/go-ethereum/common"
)

type Config struct {
	// Chain the escrow must be deployed on; nil skips the check
	ExpectedChainID *big.Int

	// Settlement token (USDC on the destination chain)
	Token ethcommon.Address

	// Build artifact holding the escrow creation bytecode
	ArtifactPath string

	// Creation bytecode; takes precedence over ArtifactPath when set
	Bytecode []byte
}
