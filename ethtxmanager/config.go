package ethtxmanager

import (
	"math/big"
	"time"

	"github.com/TEENet-io/escrow-go/common"
	ethcommon "github.com/ethereum/go-ethereum/common"
)

type Config struct {
	// MessageTransmitterV2 on the destination chain
	Transmitter ethcommon.Address

	ExpectedChainID *big.Int

	// Confirm an "already processed" revert by reading usedNonces before
	// reporting success
	VerifyAlreadyProcessed bool

	// Frequency to resolve submissions left pending
	FrequencyToMonitorPendingTxs time.Duration

	// A pending submission whose nonce is still unused after this long is
	// marked reverted so that it can be retried
	TimeoutOnMonitoringPendingTxs time.Duration
}

func DefaultConfig() *Config {
	return &Config{
		Transmitter:            ethcommon.HexToAddress(common.MessageTransmitterV2Testnet),
		ExpectedChainID:        common.PolygonAmoyChainID,
		VerifyAlreadyProcessed: true,

		FrequencyToMonitorPendingTxs:  30 * time.Second,
		TimeoutOnMonitoringPendingTxs: 10 * time.Minute,
	}
}
